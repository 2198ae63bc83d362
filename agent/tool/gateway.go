package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wrenhealth/concierge/agent/contract"
	"github.com/wrenhealth/concierge/agent/profile"
	"github.com/wrenhealth/concierge/pkg/healthapi"
	"github.com/wrenhealth/concierge/pkg/observability"
)

// Config tunes the tool handlers.
type Config struct {
	MajorInsurers []string `split_words:"true" default:"united,blue cross,aetna,cigna,humana,kaiser,medicare,medicaid"`
	PlaceCount    int      `split_words:"true" default:"5"`
}

// Gateway executes tool requests on behalf of roles. It enforces the
// per-role capability sets and converts handler failures into result
// payloads so a flaky upstream degrades the answer instead of killing the
// turn.
type Gateway struct {
	cfg      Config
	api      *healthapi.Client
	profiles *profile.Manager
	metrics  *observability.Metrics
}

func NewGateway(cfg Config, api *healthapi.Client, profiles *profile.Manager, metrics *observability.Metrics) *Gateway {
	return &Gateway{cfg: cfg, api: api, profiles: profiles, metrics: metrics}
}

// Execute resolves each request in order. A capability violation fails the
// whole batch; a handler failure only fails its own entry.
func (g *Gateway) Execute(ctx context.Context, roleID string, reqs []contract.ToolRequest) ([]contract.ToolResult, error) {
	results := make([]contract.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		if !Allowed(roleID, req.Tool) {
			g.count(req.Tool, "forbidden")
			return nil, fmt.Errorf("role %s invoking %s: %w", roleID, req.Tool, contract.ErrToolNotAllowed)
		}

		res := contract.ToolResult{Tool: req.Tool, Args: req.Args}
		payload, err := g.dispatch(ctx, req)
		if err != nil {
			log.Warn().Err(err).Str("tool", req.Tool).Str("role", roleID).Msg("tool call failed")
			g.count(req.Tool, "error")
			res.Error = err.Error()
		} else {
			g.count(req.Tool, "ok")
			res.Result = payload
		}
		results = append(results, res)
	}
	return results, nil
}

func (g *Gateway) count(tool, outcome string) {
	if g.metrics != nil {
		g.metrics.ToolCalls.WithLabelValues(tool, outcome).Inc()
	}
}

func (g *Gateway) dispatch(ctx context.Context, req contract.ToolRequest) (any, error) {
	switch req.Tool {
	case PharmacyLocations:
		return g.pharmacyLocations(ctx, req.Args)
	case CurrentTimeInfo:
		return g.currentTimeInfo(ctx)
	case MedicationInsurance:
		return g.medicationInsurance(ctx, req.Args)
	case DrugInteractions:
		return g.drugInteractions(ctx, req.Args)
	case InNetworkHospitals:
		return g.inNetworkHospitals(ctx, req.Args)
	case AppointmentAvailability:
		return g.appointmentAvailability(ctx, req.Args)
	default:
		return nil, fmt.Errorf("unknown tool %q", req.Tool)
	}
}

type placeEntry struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Distance  string `json:"distance"`
	DriveTime string `json:"drive_time"`
	Status    string `json:"status,omitempty"`
}

func (g *Gateway) pharmacyLocations(ctx context.Context, args map[string]any) (any, error) {
	location, err := g.resolveLocation(ctx, args)
	if err != nil {
		return nil, err
	}
	count := intArg(args, "count", g.cfg.PlaceCount)

	origin, err := g.api.Geocode(ctx, location)
	if err != nil {
		return nil, err
	}
	pharmacies, err := g.api.FindPharmacies(ctx, origin.Lat, origin.Lon, count)
	if err != nil {
		return nil, err
	}

	hour := time.Now().Hour()
	if ti, err := g.profiles.TimeInfo(ctx); err == nil {
		hour = ti.Hour
	}

	entries := make([]placeEntry, 0, len(pharmacies))
	for _, p := range pharmacies {
		entry := g.placeEntry(ctx, origin, p)
		entry.Status = string(ParseOpeningHours(p.OpeningHours, hour))
		entries = append(entries, entry)
	}
	return map[string]any{
		"location":   origin.Display,
		"pharmacies": entries,
	}, nil
}

func (g *Gateway) inNetworkHospitals(ctx context.Context, args map[string]any) (any, error) {
	location, err := g.resolveLocation(ctx, args)
	if err != nil {
		return nil, err
	}
	count := intArg(args, "count", g.cfg.PlaceCount)

	insurance := stringArg(args, "insurance", "")
	if insurance == "" {
		if p, err := g.profiles.Get(ctx); err == nil {
			insurance = p.Insurance
		}
	}

	origin, err := g.api.Geocode(ctx, location)
	if err != nil {
		return nil, err
	}
	hospitals, err := g.api.FindHospitals(ctx, origin.Lat, origin.Lon, count)
	if err != nil {
		return nil, err
	}

	entries := make([]placeEntry, 0, len(hospitals))
	for _, h := range hospitals {
		entries = append(entries, g.placeEntry(ctx, origin, h))
	}
	return map[string]any{
		"location":  origin.Display,
		"insurance": insurance,
		"note":      fmt.Sprintf("Confirm network status with %s before visiting.", insurance),
		"hospitals": entries,
	}, nil
}

func (g *Gateway) placeEntry(ctx context.Context, origin *healthapi.Location, p healthapi.Place) placeEntry {
	route, err := g.api.GetRoute(ctx, origin.Lat, origin.Lon, p.Lat, p.Lon)
	if err != nil {
		log.Debug().Err(err).Str("place", p.Name).Msg("route lookup failed")
		route = nil
	}
	return placeEntry{
		Name:      p.Name,
		Kind:      p.Kind,
		Address:   p.Address,
		Phone:     p.Phone,
		Distance:  FormatDistance(route),
		DriveTime: FormatDriveTime(route),
	}
}

func (g *Gateway) currentTimeInfo(ctx context.Context) (any, error) {
	ti, err := g.profiles.TimeInfo(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"timezone":        ti.Timezone,
		"current_time":    ti.Now.Format("Monday, January 2, 2006 at 3:04 PM"),
		"hour":            ti.Hour,
		"day_of_week":     ti.DayOfWeek,
		"is_weekend":      ti.IsWeekend,
		"is_business_day": ti.IsBusinessDay,
	}, nil
}

func (g *Gateway) medicationInsurance(ctx context.Context, args map[string]any) (any, error) {
	medication := stringArg(args, "medication", "")
	if medication == "" {
		return nil, errors.New("medication is required")
	}
	insurance := stringArg(args, "insurance", "")
	if insurance == "" {
		p, err := g.profiles.Get(ctx)
		if err != nil {
			return nil, err
		}
		insurance = p.Insurance
	}

	label, err := g.api.DrugLabel(ctx, medication)
	if err != nil {
		if !errors.Is(err, healthapi.ErrNotFound) {
			return nil, err
		}
		label = nil
	}

	cov := ClassifyCoverage(label, insurance, g.cfg.MajorInsurers)
	if cov.Medication == "" {
		cov.Medication = medication
	}
	return cov, nil
}

func (g *Gateway) drugInteractions(ctx context.Context, args map[string]any) (any, error) {
	medication := stringArg(args, "medication", "")
	if medication == "" {
		return nil, errors.New("medication is required")
	}

	interactions, err := g.api.GetInteractions(ctx, medication)
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"medication":   medication,
		"interactions": interactions,
		"count":        len(interactions),
	}
	if len(interactions) == 0 {
		out["note"] = "No known interactions found. Always confirm with a pharmacist."
	}
	return out, nil
}

func (g *Gateway) appointmentAvailability(ctx context.Context, args map[string]any) (any, error) {
	ti, err := g.profiles.TimeInfo(ctx)
	if err != nil {
		return nil, err
	}
	specialty := stringArg(args, "specialty", "")
	slots := GenerateAppointmentSlots(ti.Now, specialty)
	return map[string]any{
		"specialty": slots[0].Specialty,
		"slots":     slots,
	}, nil
}

func (g *Gateway) resolveLocation(ctx context.Context, args map[string]any) (string, error) {
	if loc := stringArg(args, "location", ""); loc != "" {
		return loc, nil
	}
	p, err := g.profiles.Get(ctx)
	if err != nil {
		return "", err
	}
	if p.ZipCode != "" {
		return p.ZipCode, nil
	}
	return p.HomeCity, nil
}

func stringArg(args map[string]any, key, fallback string) string {
	if args == nil {
		return fallback
	}
	if v, ok := args[key].(string); ok {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func intArg(args map[string]any, key string, fallback int) int {
	if args == nil {
		return fallback
	}
	switch v := args[key].(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return fallback
}
