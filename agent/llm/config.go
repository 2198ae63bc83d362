package llm

import (
	"strings"

	rosterx "github.com/wrenhealth/concierge/agent/roster"
	"github.com/wrenhealth/concierge/pkg/openrouter"
)

// Config is the model configuration for every role, a shared base plus
// optional per-role model overrides. The selector runs at temperature zero
// regardless of the base temperature so speaker choice stays stable.
type Config struct {
	openrouter.Config

	SafetyModel      string `split_words:"true"`
	EmergencyModel   string `split_words:"true"`
	CoordinatorModel string `split_words:"true"`
	SpecialistModel  string `split_words:"true"`
	SelectorModel    string `split_words:"true"`
}

// ForRole returns the openrouter config for one role, with its model
// override applied when set.
func (c Config) ForRole(roleID string) openrouter.Config {
	out := c.Config

	var override string
	switch roleID {
	case rosterx.RoleSafety:
		override = c.SafetyModel
	case rosterx.RoleEmergency:
		override = c.EmergencyModel
	case rosterx.RoleCoordinator:
		override = c.CoordinatorModel
	default:
		override = c.SpecialistModel
	}
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		out.Model = trimmed
	}
	return out
}

// ForSelector returns the config used for speaker selection.
func (c Config) ForSelector() openrouter.Config {
	out := c.Config
	out.Temperature = 0
	if trimmed := strings.TrimSpace(c.SelectorModel); trimmed != "" {
		out.Model = trimmed
	}
	return out
}
