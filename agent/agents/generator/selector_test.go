package generator

import (
	"errors"
	"testing"

	contractx "github.com/wrenhealth/concierge/agent/contract"
)

func TestParseSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{name: "plain json", content: `{"next_speaker": "HealthCoordinator"}`, want: "HealthCoordinator"},
		{name: "fenced json", content: "```json\n{\"next_speaker\": \"PharmacySpecialist\"}\n```", want: "PharmacySpecialist"},
		{name: "none keyword", content: `{"next_speaker": "none"}`, want: ""},
		{name: "empty speaker", content: `{"next_speaker": ""}`, want: ""},
		{name: "garbage", content: "the next speaker should be the coordinator", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseSelection(tt.content)
			if tt.wantErr {
				if !errors.Is(err, contractx.ErrSchemaViolation) {
					t.Fatalf("expected ErrSchemaViolation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSelection() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("parseSelection() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCandidateIDs(t *testing.T) {
	t.Parallel()

	roster := []contractx.RoleDescription{
		{ID: "SafetyGuardrail", Tier: 0},
		{ID: "HealthCoordinator", Tier: 2},
		{ID: "PharmacySpecialist", Tier: 3},
	}

	got := candidateIDs(contractx.SelectionRequest{
		Roster:          roster,
		LastSpeaker:     "HealthCoordinator",
		RepeatForbidden: true,
	})
	if len(got) != 2 {
		t.Fatalf("expected the last speaker excluded, got %v", got)
	}
	for _, id := range got {
		if id == "HealthCoordinator" {
			t.Fatalf("last speaker survived exclusion: %v", got)
		}
	}

	// The sole eligible role may repeat.
	got = candidateIDs(contractx.SelectionRequest{
		Roster:          roster[:1],
		LastSpeaker:     "SafetyGuardrail",
		RepeatForbidden: true,
	})
	if len(got) != 1 || got[0] != "SafetyGuardrail" {
		t.Fatalf("sole role should remain eligible, got %v", got)
	}
}
