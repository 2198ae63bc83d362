package conversation

import (
	"strings"

	rosterx "github.com/wrenhealth/concierge/agent/roster"
	statex "github.com/wrenhealth/concierge/agent/state"
)

// TerminationReason explains why a round ended, for logging and metrics.
type TerminationReason string

const (
	ReasonNone        TerminationReason = ""
	ReasonCrisis      TerminationReason = "crisis"
	ReasonEmergency   TerminationReason = "emergency"
	ReasonCoordinator TerminationReason = "coordinator_question"
	ReasonHandoff     TerminationReason = "handoff"
	ReasonRoundCap    TerminationReason = "round_cap"
	ReasonNoSelection TerminationReason = "no_selection"
	ReasonGenFailure  TerminationReason = "generation_failure"
)

// IsTermination reports whether the newest message ends the round, and why.
// The rules, in order: a safety-role crisis response, an emergency-role
// determination, a coordinator question back to the user, or a specialist
// hand-off from any role.
func IsTermination(msg statex.Message) (bool, TerminationReason) {
	content := msg.Content

	if msg.RoleID == rosterx.RoleSafety && strings.Contains(content, MarkerCrisis) {
		return true, ReasonCrisis
	}
	if msg.RoleID == rosterx.RoleEmergency &&
		strings.Contains(content, MarkerEmergencyWarn) &&
		strings.Contains(content, MarkerEmergencyCall) {
		return true, ReasonEmergency
	}
	if msg.RoleID == rosterx.RoleCoordinator && strings.Contains(content, "?") {
		return true, ReasonCoordinator
	}
	if strings.Contains(content, MarkerHandoff) {
		return true, ReasonHandoff
	}
	return false, ReasonNone
}

// IsDetermination reports whether a message is a surfaced tier-0 or tier-1
// determination (not a clearance). Once one appears in a round, no
// lower-tier role may be selected after it.
func IsDetermination(msg statex.Message) bool {
	switch msg.RoleID {
	case rosterx.RoleSafety:
		return strings.Contains(msg.Content, MarkerCrisis) &&
			!strings.Contains(msg.Content, ClearanceNoCrisis)
	case rosterx.RoleEmergency:
		return strings.Contains(msg.Content, MarkerEmergencyWarn) &&
			!strings.Contains(msg.Content, ClearanceNoEmergency)
	default:
		return false
	}
}
