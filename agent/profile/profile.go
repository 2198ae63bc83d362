package profile

import (
	"context"
	"errors"
	"strings"
)

var ErrProfileNotFound = errors.New("patient profile not found")

// PatientProfile is the flat persisted patient record. Single-tenant: one
// profile per deployment.
type PatientProfile struct {
	Name      string   `json:"name"`
	HomeCity  string   `json:"home_city"`
	ZipCode   string   `json:"zip_code"`
	Insurance string   `json:"insurance"`
	Allergies []string `json:"allergies"`
	Timezone  string   `json:"timezone,omitempty"`
}

// Defaults returns the profile used when nothing has been persisted yet.
func Defaults() PatientProfile {
	return PatientProfile{
		Name:      "Patient A",
		HomeCity:  "San Jose, CA",
		ZipCode:   "95054",
		Insurance: "United Health Care",
		Allergies: []string{},
		Timezone:  "America/Los_Angeles",
	}
}

// AllergiesText renders the allergy list for prompt context.
func (p PatientProfile) AllergiesText() string {
	return strings.Join(p.Allergies, ", ")
}

// Store persists the single patient profile. Save is an atomic overwrite:
// a reader never observes a partially written record.
type Store interface {
	Load(ctx context.Context) (PatientProfile, error)
	Save(ctx context.Context, p PatientProfile) error
}

// ParseAllergies splits comma-separated free text into a clean list.
func ParseAllergies(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
