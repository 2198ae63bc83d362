package conversation

import (
	"testing"

	rosterx "github.com/wrenhealth/concierge/agent/roster"
	statex "github.com/wrenhealth/concierge/agent/state"
)

func TestIsTermination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		msg    statex.Message
		stop   bool
		reason TerminationReason
	}{
		{
			name:   "safety crisis",
			msg:    statex.Message{RoleID: rosterx.RoleSafety, Content: "Please call or text 988 right now."},
			stop:   true,
			reason: ReasonCrisis,
		},
		{
			name: "safety clearance does not stop",
			msg:  statex.Message{RoleID: rosterx.RoleSafety, Content: "SafetyGuardrail sees no crisis here."},
		},
		{
			name:   "emergency determination",
			msg:    statex.Message{RoleID: rosterx.RoleEmergency, Content: "⚠️ This sounds serious. Call 911 now."},
			stop:   true,
			reason: ReasonEmergency,
		},
		{
			name: "emergency warning without action marker",
			msg:  statex.Message{RoleID: rosterx.RoleEmergency, Content: "⚠️ Keep an eye on this and rest."},
		},
		{
			name:   "coordinator question",
			msg:    statex.Message{RoleID: rosterx.RoleCoordinator, Content: "How long have you had the headache?"},
			stop:   true,
			reason: ReasonCoordinator,
		},
		{
			name: "coordinator statement continues",
			msg:  statex.Message{RoleID: rosterx.RoleCoordinator, Content: "Thanks for sharing that."},
		},
		{
			name:   "specialist handoff",
			msg:    statex.Message{RoleID: rosterx.RolePharmacy, Content: "HealthCoordinator, I've provided the pharmacy options."},
			stop:   true,
			reason: ReasonHandoff,
		},
		{
			name: "crisis number from wrong role continues",
			msg:  statex.Message{RoleID: rosterx.RoleTime, Content: "It is 9:88 somewhere, 988 jokes aside."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			stop, reason := IsTermination(tt.msg)
			if stop != tt.stop {
				t.Fatalf("IsTermination() stop = %v, want %v", stop, tt.stop)
			}
			want := tt.reason
			if !tt.stop {
				want = ReasonNone
			}
			if reason != want {
				t.Fatalf("IsTermination() reason = %q, want %q", reason, want)
			}
		})
	}
}

func TestIsDetermination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  statex.Message
		want bool
	}{
		{
			name: "safety crisis",
			msg:  statex.Message{RoleID: rosterx.RoleSafety, Content: "Call 988 now."},
			want: true,
		},
		{
			name: "safety clearance",
			msg:  statex.Message{RoleID: rosterx.RoleSafety, Content: "SafetyGuardrail sees no crisis, though 988 is always available."},
			want: false,
		},
		{
			name: "emergency warning without call marker",
			msg:  statex.Message{RoleID: rosterx.RoleEmergency, Content: "⚠️ Watch for worsening symptoms."},
			want: true,
		},
		{
			name: "emergency clearance",
			msg:  statex.Message{RoleID: rosterx.RoleEmergency, Content: "EmergencyTriage sees no emergency."},
			want: false,
		},
		{
			name: "coordinator never determines",
			msg:  statex.Message{RoleID: rosterx.RoleCoordinator, Content: "⚠️ 988 911"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsDetermination(tt.msg); got != tt.want {
				t.Fatalf("IsDetermination() = %v, want %v", got, tt.want)
			}
		})
	}
}
