package tool

import (
	"fmt"
	"math"

	"github.com/wrenhealth/concierge/pkg/healthapi"
)

const metersPerKilometer = 1000.0

// kilometersToMiles converts at the conventional 0.621371 factor.
const kilometersToMiles = 0.621371

// routeUnknown is the sentinel used when routing fails; the reply degrades
// instead of erroring.
const routeUnknown = "N/A"

// FormatDistance renders a route distance as miles with one decimal.
func FormatDistance(r *healthapi.Route) string {
	if r == nil {
		return routeUnknown
	}
	miles := r.DistanceMeters / metersPerKilometer * kilometersToMiles
	return fmt.Sprintf("%.1f miles", miles)
}

// FormatDriveTime renders a route duration as whole minutes.
func FormatDriveTime(r *healthapi.Route) string {
	if r == nil {
		return routeUnknown
	}
	minutes := int(math.Round(r.DurationSeconds / 60))
	return fmt.Sprintf("%d min", minutes)
}
