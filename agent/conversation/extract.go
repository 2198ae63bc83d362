package conversation

import (
	"strings"

	rosterx "github.com/wrenhealth/concierge/agent/roster"
	statex "github.com/wrenhealth/concierge/agent/state"
)

// Reply is the single extracted display response plus its alert flags.
type Reply struct {
	Text      string `json:"text"`
	Crisis    bool   `json:"crisis"`
	Emergency bool   `json:"emergency"`
}

// Extract scans the round's messages in reverse and picks the single
// response to surface, in priority order: a safety-role crisis message, an
// emergency-role determination, then the most recent substantial
// coordinator/specialist message that is not a clearance. Tool-log entries,
// user entries and empty contents are skipped. Hand-off and trailer phrases
// are stripped from the returned text. When nothing qualifies, the fixed
// fallback prompt is returned.
func Extract(messages []statex.Message) Reply {
	displayRoles := make(map[string]struct{}, 5)
	for _, id := range rosterx.SpecialistIDs() {
		displayRoles[id] = struct{}{}
	}

	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		content := msg.Content

		if msg.RoleID == rosterx.RoleUser || msg.RoleID == rosterx.RoleToolLog || content == "" {
			continue
		}

		if msg.RoleID == rosterx.RoleSafety && strings.Contains(content, MarkerCrisis) {
			return Reply{Text: stripMarkers(content), Crisis: true}
		}

		if msg.RoleID == rosterx.RoleEmergency &&
			strings.Contains(content, MarkerEmergencyWarn) &&
			(strings.Contains(content, MarkerEmergencyCall) || strings.Contains(content, MarkerEmergencyER)) {
			return Reply{Text: stripMarkers(content), Emergency: true}
		}

		if _, ok := displayRoles[msg.RoleID]; ok {
			if strings.Contains(content, ClearanceNoCrisis) || strings.Contains(content, ClearanceNoEmergency) {
				continue
			}
			if len(content) > minDisplayLength {
				return Reply{Text: stripMarkers(content)}
			}
		}
	}

	return Reply{Text: FallbackReply}
}

func stripMarkers(content string) string {
	for _, phrase := range stripPhrases {
		content = strings.ReplaceAll(content, phrase, "")
	}
	return strings.TrimSpace(content)
}
