package profile

import (
	"context"
	"fmt"
	"strings"
)

// StoreConfig selects and configures the profile persistence backend.
type StoreConfig struct {
	Backend     string `split_words:"true" default:"file"`
	FilePath    string `split_words:"true" default:"patient_profile.json"`
	PostgresDSN string `split_words:"true"`
}

// NewStore builds the configured store. Backends: "file" (JSON document) and
// "postgres" (single-row bun table).
func NewStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "file":
		return NewFileStore(cfg.FilePath)
	case "postgres":
		return NewBunStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("profile: unknown backend %q", cfg.Backend)
	}
}
