package healthapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Route is a driving route between two points, in OSRM's native units.
type Route struct {
	DistanceMeters  float64 `json:"distance"`
	DurationSeconds float64 `json:"duration"`
}

// GetRoute asks OSRM for a driving route. Callers degrade to sentinel values
// on error; this method just reports the failure.
func (c *Client) GetRoute(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (*Route, error) {
	// OSRM expects lon,lat pairs.
	target := fmt.Sprintf("%s/%f,%f;%f,%f",
		strings.TrimRight(strings.TrimSpace(c.cfg.RoutingURL), "/"),
		fromLon, fromLat, toLon, toLat,
	)

	raw, err := c.routingBreaker.Execute(func() ([]byte, error) {
		return c.get(ctx, c.httpClient, target, url.Values{"overview": {"false"}})
	})
	if err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}

	var parsed struct {
		Routes []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"routes"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("route: decode response: %w", err)
	}
	if len(parsed.Routes) == 0 {
		return nil, fmt.Errorf("route: %w", ErrNotFound)
	}

	return &Route{
		DistanceMeters:  parsed.Routes[0].Distance,
		DurationSeconds: parsed.Routes[0].Duration,
	}, nil
}
