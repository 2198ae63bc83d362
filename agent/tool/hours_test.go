package tool

import "testing"

func TestParseOpeningHours(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec string
		hour int
		want HoursStatus
	}{
		{name: "empty", spec: "", hour: 12, want: HoursUnknown},
		{name: "always open", spec: "24/7", hour: 3, want: HoursOpen},
		{name: "simple range open", spec: "Mo-Su 09:00-21:00", hour: 12, want: HoursOpen},
		{name: "simple range closed", spec: "Mo-Su 09:00-21:00", hour: 22, want: HoursClosed},
		{name: "closes at boundary", spec: "09:00-21:00", hour: 21, want: HoursClosed},
		{name: "opens at boundary", spec: "09:00-21:00", hour: 9, want: HoursOpen},
		{name: "bare hours", spec: "9-17", hour: 10, want: HoursOpen},
		{name: "overnight open late", spec: "22:00-06:00", hour: 23, want: HoursOpen},
		{name: "overnight open early", spec: "22:00-06:00", hour: 2, want: HoursOpen},
		{name: "overnight closed", spec: "22:00-06:00", hour: 12, want: HoursClosed},
		{name: "unparseable", spec: "sunrise to sunset", hour: 12, want: HoursUnknown},
		{name: "nonsense hours", spec: "95:00-99:00", hour: 12, want: HoursUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseOpeningHours(tt.spec, tt.hour); got != tt.want {
				t.Fatalf("ParseOpeningHours(%q, %d) = %q, want %q", tt.spec, tt.hour, got, tt.want)
			}
		})
	}
}
