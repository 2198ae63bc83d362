package roster

import (
	"fmt"
	"strings"

	promptx "github.com/wrenhealth/concierge/agent/prompt"
)

// Role ids. RoleUser and RoleToolLog are pseudo-entries in the transcript,
// never scheduled to speak.
const (
	RoleUser    = "User"
	RoleToolLog = "ToolLog"

	RoleSafety      = "SafetyGuardrail"
	RoleEmergency   = "EmergencyTriage"
	RoleCoordinator = "HealthCoordinator"
	RolePharmacy    = "PharmacySpecialist"
	RoleTime        = "TimeSpecialist"
	RoleMedication  = "MedicationSpecialist"
	RoleAppointment = "AppointmentSpecialist"
)

// Priority tiers. Lower preempts higher within a round.
const (
	TierSafety      = 0
	TierEmergency   = 1
	TierCoordinator = 2
	TierPharmacy    = 3
	TierTime        = 4
	TierMedication  = 5
	TierAppointment = 6
)

// Role is one conversational role: a unique id, a priority tier, a system
// directive consumed by the generation service, and a one-line description
// used for speaker selection.
type Role struct {
	ID          string
	Tier        int
	Description string
	Directive   string
}

// Roster is the fixed, ordered role table. Order follows tier.
type Roster []Role

// New builds the seven-role roster with directives from the prompt set.
func New(prompts promptx.Set) Roster {
	return Roster{
		{ID: RoleSafety, Tier: TierSafety, Directive: prompts.Safety,
			Description: "Crisis counselor. Speaks only for genuine mental health or safety crises."},
		{ID: RoleEmergency, Tier: TierEmergency, Directive: prompts.Emergency,
			Description: "Triage nurse. Speaks only for serious medical symptoms needing urgent attention."},
		{ID: RoleCoordinator, Tier: TierCoordinator, Directive: prompts.Coordinator,
			Description: "Warm healthcare coordinator. Guides the conversation and delegates to specialists."},
		{ID: RolePharmacy, Tier: TierPharmacy, Directive: prompts.Pharmacy,
			Description: "Finds nearby pharmacies with hours and distance."},
		{ID: RoleTime, Tier: TierTime, Directive: prompts.Time,
			Description: "Answers time and date questions."},
		{ID: RoleMedication, Tier: TierMedication, Directive: prompts.Medication,
			Description: "Checks medication coverage and drug interactions."},
		{ID: RoleAppointment, Tier: TierAppointment, Directive: prompts.Appointment,
			Description: "Finds doctors and available appointment slots."},
	}
}

// Validate checks roster invariants: ids unique and non-empty, tiers ordered.
func (r Roster) Validate() error {
	seen := make(map[string]struct{}, len(r))
	for _, role := range r {
		id := strings.TrimSpace(role.ID)
		if id == "" {
			return fmt.Errorf("roster: role id is empty")
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("roster: duplicate role id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ByID returns the role with the given id.
func (r Roster) ByID(id string) (Role, bool) {
	for _, role := range r {
		if role.ID == id {
			return role, true
		}
	}
	return Role{}, false
}

// Contains reports whether id names a roster role.
func (r Roster) Contains(id string) bool {
	_, ok := r.ByID(id)
	return ok
}

// Eligible returns the roles whose tier is at most maxTier. A negative
// maxTier means no preemption is active and every role is eligible.
func (r Roster) Eligible(maxTier int) Roster {
	if maxTier < 0 {
		return r
	}
	out := make(Roster, 0, len(r))
	for _, role := range r {
		if role.Tier <= maxTier {
			out = append(out, role)
		}
	}
	return out
}

// SpecialistIDs returns the ids of the coordinator and the four specialists,
// the roles whose messages are eligible for display extraction.
func SpecialistIDs() []string {
	return []string{RoleCoordinator, RolePharmacy, RoleTime, RoleMedication, RoleAppointment}
}
