package tool

import (
	"testing"

	"github.com/wrenhealth/concierge/pkg/healthapi"
)

func TestFormatDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		route *healthapi.Route
		want  string
	}{
		{name: "nil route degrades", route: nil, want: "N/A"},
		{name: "one kilometer", route: &healthapi.Route{DistanceMeters: 1000}, want: "0.6 miles"},
		{name: "ten kilometers", route: &healthapi.Route{DistanceMeters: 10000}, want: "6.2 miles"},
		{name: "zero", route: &healthapi.Route{}, want: "0.0 miles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatDistance(tt.route); got != tt.want {
				t.Fatalf("FormatDistance() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDriveTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		route *healthapi.Route
		want  string
	}{
		{name: "nil route degrades", route: nil, want: "N/A"},
		{name: "rounds down", route: &healthapi.Route{DurationSeconds: 89}, want: "1 min"},
		{name: "rounds up", route: &healthapi.Route{DurationSeconds: 91}, want: "2 min"},
		{name: "quarter hour", route: &healthapi.Route{DurationSeconds: 900}, want: "15 min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatDriveTime(tt.route); got != tt.want {
				t.Fatalf("FormatDriveTime() = %q, want %q", got, tt.want)
			}
		})
	}
}
