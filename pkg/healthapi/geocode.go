package healthapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var ErrNotFound = errors.New("healthapi: no results")

// Location is a geocoded point.
type Location struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Display string  `json:"display"`
}

// Geocode resolves a free-text location (city or 5-digit US zip code) via
// Nominatim. A bare zip code is suffixed with ", USA" before lookup.
func (c *Client) Geocode(ctx context.Context, location string) (*Location, error) {
	query := strings.TrimSpace(location)
	if query == "" {
		return nil, errors.New("healthapi: location is empty")
	}
	if isZipCode(query) {
		query += ", USA"
	}

	params := url.Values{
		"q":            {query},
		"format":       {"json"},
		"limit":        {"5"},
		"countrycodes": {"us"},
	}
	raw, err := c.get(ctx, c.httpClient, strings.TrimSpace(c.cfg.NominatimURL), params)
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}

	var results []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("geocode: decode response: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("geocode %q: %w", location, ErrNotFound)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: parse lat: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: parse lon: %w", err)
	}

	display := strings.TrimSpace(results[0].DisplayName)
	if display == "" {
		display = location
	}
	return &Location{Lat: lat, Lon: lon, Display: display}, nil
}

func isZipCode(s string) bool {
	if len(s) != 5 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
