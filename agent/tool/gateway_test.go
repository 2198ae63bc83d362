package tool

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	contractx "github.com/wrenhealth/concierge/agent/contract"
	"github.com/wrenhealth/concierge/agent/profile"
	rosterx "github.com/wrenhealth/concierge/agent/roster"
)

func newTestGateway(t *testing.T, now time.Time) *Gateway {
	t.Helper()

	store, err := profile.NewFileStore(filepath.Join(t.TempDir(), "profile.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	profiles := profile.NewManager(store, nil, profile.WithClock(func() time.Time { return now }))
	return NewGateway(Config{}, nil, profiles, nil)
}

func TestAllowed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		roleID string
		tool   string
		want   bool
	}{
		{rosterx.RolePharmacy, PharmacyLocations, true},
		{rosterx.RolePharmacy, DrugInteractions, false},
		{rosterx.RoleTime, CurrentTimeInfo, true},
		{rosterx.RoleMedication, MedicationInsurance, true},
		{rosterx.RoleMedication, DrugInteractions, true},
		{rosterx.RoleAppointment, InNetworkHospitals, true},
		{rosterx.RoleAppointment, AppointmentAvailability, true},
		{rosterx.RoleCoordinator, PharmacyLocations, false},
		{rosterx.RoleSafety, CurrentTimeInfo, false},
		{rosterx.RolePharmacy, "made_up_tool", false},
	}

	for _, tt := range tests {
		if got := Allowed(tt.roleID, tt.tool); got != tt.want {
			t.Fatalf("Allowed(%s, %s) = %v, want %v", tt.roleID, tt.tool, got, tt.want)
		}
	}
}

func TestExecuteRejectsForbiddenTool(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, time.Now())

	_, err := g.Execute(context.Background(), rosterx.RolePharmacy, []contractx.ToolRequest{
		{Tool: DrugInteractions, Args: map[string]any{"medication": "ibuprofen"}},
	})
	if !errors.Is(err, contractx.ErrToolNotAllowed) {
		t.Fatalf("expected ErrToolNotAllowed, got %v", err)
	}
}

func TestExecuteCurrentTimeInfo(t *testing.T) {
	t.Parallel()

	// Saturday afternoon in the default profile timezone.
	now := time.Date(2025, time.June, 14, 21, 30, 0, 0, time.UTC)
	g := newTestGateway(t, now)

	results, err := g.Execute(context.Background(), rosterx.RoleTime, []contractx.ToolRequest{
		{Tool: CurrentTimeInfo},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].Error != "" {
		t.Fatalf("unexpected tool error: %s", results[0].Error)
	}

	payload, ok := results[0].Result.(map[string]any)
	if !ok {
		t.Fatalf("unexpected result type %T", results[0].Result)
	}
	if payload["timezone"] != "America/Los_Angeles" {
		t.Fatalf("unexpected timezone %v", payload["timezone"])
	}
	if payload["day_of_week"] != "Saturday" {
		t.Fatalf("unexpected weekday %v", payload["day_of_week"])
	}
	if payload["is_weekend"] != true || payload["is_business_day"] != false {
		t.Fatalf("weekend flags wrong: %v", payload)
	}
}

func TestExecuteAppointmentAvailability(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 16, 17, 0, 0, 0, time.UTC)
	g := newTestGateway(t, now)

	results, err := g.Execute(context.Background(), rosterx.RoleAppointment, []contractx.ToolRequest{
		{Tool: AppointmentAvailability, Args: map[string]any{"specialty": "Dermatology"}},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if results[0].Error != "" {
		t.Fatalf("unexpected tool error: %s", results[0].Error)
	}

	payload, ok := results[0].Result.(map[string]any)
	if !ok {
		t.Fatalf("unexpected result type %T", results[0].Result)
	}
	if payload["specialty"] != "Dermatology" {
		t.Fatalf("unexpected specialty %v", payload["specialty"])
	}
	slots, ok := payload["slots"].([]AppointmentSlot)
	if !ok {
		t.Fatalf("unexpected slots type %T", payload["slots"])
	}
	if len(slots) != maxAppointmentSlots {
		t.Fatalf("expected %d slots, got %d", maxAppointmentSlots, len(slots))
	}
}

func TestExecuteMissingMedicationDegrades(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, time.Now())

	results, err := g.Execute(context.Background(), rosterx.RoleMedication, []contractx.ToolRequest{
		{Tool: DrugInteractions},
	})
	if err != nil {
		t.Fatalf("a handler failure must not fail the batch: %v", err)
	}
	if results[0].Error == "" {
		t.Fatalf("expected an error payload for the missing argument")
	}
}

func TestInfosForRole(t *testing.T) {
	t.Parallel()

	if infos := InfosForRole(rosterx.RoleCoordinator); len(infos) != 0 {
		t.Fatalf("coordinator should have no tools, got %d", len(infos))
	}

	infos := InfosForRole(rosterx.RoleMedication)
	if len(infos) != 2 {
		t.Fatalf("expected 2 medication tools, got %d", len(infos))
	}
	for _, info := range infos {
		if !Allowed(rosterx.RoleMedication, info.Name) {
			t.Fatalf("tool %s is bound but not allowed", info.Name)
		}
	}
}
