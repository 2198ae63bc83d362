package conversation

import (
	"strings"

	rosterx "github.com/wrenhealth/concierge/agent/roster"
	statex "github.com/wrenhealth/concierge/agent/state"
)

// NextPhase derives the coordinator phase implied by the latest coordinator
// message. The session applies it through AdvancePhase, which refuses to
// move backwards, so a late allergy question cannot drag a delegating
// conversation back to information gathering.
func NextPhase(current statex.Phase, msg statex.Message) statex.Phase {
	if msg.RoleID != rosterx.RoleCoordinator {
		return current
	}
	content := strings.ToLower(msg.Content)

	if delegatesToSpecialist(msg.Content) {
		return statex.PhaseDelegate
	}
	if strings.Contains(content, "otc") || strings.Contains(content, "you could try") {
		return statex.PhaseSuggestOTC
	}
	if strings.Contains(content, "allerg") && strings.Contains(content, "?") {
		return statex.PhaseGatherAllergies
	}
	return current
}

func delegatesToSpecialist(content string) bool {
	for _, id := range []string{
		rosterx.RolePharmacy,
		rosterx.RoleTime,
		rosterx.RoleMedication,
		rosterx.RoleAppointment,
	} {
		if strings.Contains(content, id) {
			return true
		}
	}
	return false
}
