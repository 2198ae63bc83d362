package healthapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Place is a pharmacy, hospital or clinic returned by Overpass.
type Place struct {
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Address      string  `json:"address"`
	Phone        string  `json:"phone"`
	OpeningHours string  `json:"opening_hours,omitempty"`
}

type overpassResponse struct {
	Elements []struct {
		Lat  float64           `json:"lat"`
		Lon  float64           `json:"lon"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// FindPharmacies returns up to count pharmacies within 10km of the point.
func (c *Client) FindPharmacies(ctx context.Context, lat, lon float64, count int) ([]Place, error) {
	if count <= 0 {
		count = 5
	}
	query := fmt.Sprintf(`
	[out:json][timeout:25];
	node["amenity"="pharmacy"](around:10000,%f,%f);
	out body %d;
	`, lat, lon, count*3)

	return c.queryPlaces(ctx, query, count, func(tags map[string]string) (string, string) {
		return tags["name"], "pharmacy"
	})
}

// FindHospitals returns up to count hospitals and clinics within 15km.
func (c *Client) FindHospitals(ctx context.Context, lat, lon float64, count int) ([]Place, error) {
	if count <= 0 {
		count = 5
	}
	query := fmt.Sprintf(`
	[out:json][timeout:25];
	(
	  node["amenity"="hospital"](around:15000,%f,%f);
	  node["healthcare"="clinic"](around:15000,%f,%f);
	);
	out body %d;
	`, lat, lon, lat, lon, count*3)

	return c.queryPlaces(ctx, query, count, func(tags map[string]string) (string, string) {
		kind := tags["amenity"]
		if kind == "" {
			kind = tags["healthcare"]
		}
		if kind == "" {
			kind = "clinic"
		}
		return tags["name"], kind
	})
}

func (c *Client) queryPlaces(
	ctx context.Context,
	query string,
	count int,
	classify func(tags map[string]string) (name, kind string),
) ([]Place, error) {
	raw, err := c.placesBreaker.Execute(func() ([]byte, error) {
		return c.postForm(ctx, c.longClient, strings.TrimSpace(c.cfg.OverpassURL), url.Values{"data": {query}})
	})
	if err != nil {
		return nil, fmt.Errorf("place search: %w", err)
	}

	var parsed overpassResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("place search: decode response: %w", err)
	}

	places := make([]Place, 0, count)
	for _, elem := range parsed.Elements {
		if len(places) >= count {
			break
		}
		name, kind := classify(elem.Tags)
		if name == "" {
			if kind == "pharmacy" {
				name = "Local Pharmacy"
			} else {
				name = "Healthcare Facility"
			}
		}
		places = append(places, Place{
			Name:         name,
			Kind:         kind,
			Lat:          elem.Lat,
			Lon:          elem.Lon,
			Address:      formatAddress(elem.Tags),
			Phone:        tagOr(elem.Tags, "phone", "N/A"),
			OpeningHours: elem.Tags["opening_hours"],
		})
	}
	return places, nil
}

func formatAddress(tags map[string]string) string {
	parts := make([]string, 0, 4)
	for _, key := range []string{"addr:housenumber", "addr:street", "addr:city", "addr:state"} {
		if v := tags[key]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return "Address not available"
	}
	return strings.Join(parts, ", ")
}

func tagOr(tags map[string]string, key, fallback string) string {
	if v := tags[key]; v != "" {
		return v
	}
	return fallback
}
