package tool

import (
	"regexp"
	"strconv"
	"strings"
)

// HoursStatus is the open/closed verdict for a place at a given hour.
type HoursStatus string

const (
	HoursOpen    HoursStatus = "Open now"
	HoursClosed  HoursStatus = "Closed now"
	HoursUnknown HoursStatus = "Hours unknown"
)

var hoursRangePattern = regexp.MustCompile(`(\d{1,2}):?(\d{2})?\s*[-–]\s*(\d{1,2}):?(\d{2})?`)

// ParseOpeningHours interprets an OSM opening_hours value against the
// current hour. Only the first HH-HH or HH:MM-HH:MM range is considered;
// richer syntaxes (per-day rules, breaks) report HoursUnknown rather than
// guessing. A closing hour before the opening hour means the place stays
// open past midnight.
func ParseOpeningHours(spec string, currentHour int) HoursStatus {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return HoursUnknown
	}
	if strings.Contains(spec, "24/7") {
		return HoursOpen
	}

	m := hoursRangePattern.FindStringSubmatch(spec)
	if m == nil {
		return HoursUnknown
	}
	open, err1 := strconv.Atoi(m[1])
	close, err2 := strconv.Atoi(m[3])
	if err1 != nil || err2 != nil || open > 23 || close > 23 {
		return HoursUnknown
	}

	if close < open {
		// Overnight range, e.g. 22-06.
		if currentHour >= open || currentHour < close {
			return HoursOpen
		}
		return HoursClosed
	}
	if currentHour >= open && currentHour < close {
		return HoursOpen
	}
	return HoursClosed
}
