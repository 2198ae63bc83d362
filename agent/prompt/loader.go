package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/safety.txt
	safetyRaw string

	//go:embed template/emergency.txt
	emergencyRaw string

	//go:embed template/coordinator.txt
	coordinatorRaw string

	//go:embed template/pharmacy.txt
	pharmacyRaw string

	//go:embed template/time.txt
	timeRaw string

	//go:embed template/medication.txt
	medicationRaw string

	//go:embed template/appointment.txt
	appointmentRaw string

	//go:embed template/selector.txt
	selectorRaw string
)

// Set holds the loaded role directives plus the speaker-selector prompt.
type Set struct {
	Safety      string
	Emergency   string
	Coordinator string
	Pharmacy    string
	Time        string
	Medication  string
	Appointment string
	Selector    string
}

// Load returns the embedded prompt set with trimmed content. Safe to call
// concurrently; embedding is compile-time and trimming is cheap.
func Load() Set {
	return Set{
		Safety:      strings.TrimSpace(safetyRaw),
		Emergency:   strings.TrimSpace(emergencyRaw),
		Coordinator: strings.TrimSpace(coordinatorRaw),
		Pharmacy:    strings.TrimSpace(pharmacyRaw),
		Time:        strings.TrimSpace(timeRaw),
		Medication:  strings.TrimSpace(medicationRaw),
		Appointment: strings.TrimSpace(appointmentRaw),
		Selector:    strings.TrimSpace(selectorRaw),
	}
}
