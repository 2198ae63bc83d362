package conversation

// Marker and phrase constants. These strings are a load-bearing contract:
// termination, preemption and response extraction all classify messages by
// substring search against them, and tests pin the exact text. Change them
// only in lockstep with the role directives that instruct the generation
// service to emit them.
const (
	// MarkerCrisis appears in every safety-role crisis response (the 988
	// Suicide & Crisis Lifeline number).
	MarkerCrisis = "988"

	// MarkerEmergencyWarn and the action markers together identify an
	// emergency-role determination.
	MarkerEmergencyWarn = "⚠️"
	MarkerEmergencyCall = "911"
	MarkerEmergencyER   = "ER"

	// MarkerHandoff appears in every specialist hand-off phrase.
	MarkerHandoff = "I've provided"

	// Clearance fragments emitted by the triage roles when they find
	// nothing to flag.
	ClearanceNoCrisis    = "sees no crisis"
	ClearanceNoEmergency = "sees no emergency"
)

// Full hand-off and trailer phrases stripped from display text.
var stripPhrases = []string{
	"HealthCoordinator, I've provided the pharmacy options.",
	"HealthCoordinator, I've provided the time.",
	"HealthCoordinator, I've provided the medication information.",
	"HealthCoordinator, I've provided the appointment options.",
	"SafetyGuardrail has detected a crisis.",
	"EmergencyTriage has flagged this as urgent.",
}

// FallbackReply is returned when no transcript message qualifies for
// display.
const FallbackReply = "I'm here to help. What's on your mind?"

// minDisplayLength is the shortest content (exclusive) a coordinator or
// specialist message must exceed to qualify for display.
const minDisplayLength = 10
