package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wrenhealth/concierge/pkg/geoip"
)

// TimeInfo is the patient-local clock snapshot handed to tool handlers and
// prompt context.
type TimeInfo struct {
	Timezone      string
	Now           time.Time
	Hour          int
	DayOfWeek     string
	IsWeekend     bool
	IsBusinessDay bool
}

// Manager serializes every read and write of the patient profile. It is the
// one resource shared across sessions, so all mutations funnel through its
// mutex and persist immediately.
type Manager struct {
	mu       sync.Mutex
	store    Store
	detector *geoip.Detector
	now      func() time.Time

	cached   PatientProfile
	loaded   bool
	detected bool
}

type ManagerOption func(*Manager)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

func NewManager(store Store, detector *geoip.Detector, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    store,
		detector: detector,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the current profile, loading it from the store on first use.
// A missing record yields the defaults without persisting them.
func (m *Manager) Get(ctx context.Context) (PatientProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(ctx)
}

func (m *Manager) getLocked(ctx context.Context) (PatientProfile, error) {
	if m.loaded {
		return m.cached, nil
	}

	p, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			return PatientProfile{}, err
		}
		p = Defaults()
	}
	if p.Timezone == "" {
		p.Timezone = Defaults().Timezone
	} else {
		m.detected = true
	}
	m.cached = p
	m.loaded = true
	return m.cached, nil
}

// Put replaces the whole profile and persists it.
func (m *Manager) Put(ctx context.Context, p PatientProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.Allergies == nil {
		p.Allergies = []string{}
	}
	if p.Timezone == "" {
		p.Timezone = m.cached.Timezone
		if p.Timezone == "" {
			p.Timezone = Defaults().Timezone
		}
	}
	if err := m.store.Save(ctx, p); err != nil {
		return err
	}
	m.cached = p
	m.loaded = true
	return nil
}

func (m *Manager) SetHomeCity(ctx context.Context, city string) error {
	return m.update(ctx, func(p *PatientProfile) { p.HomeCity = city })
}

func (m *Manager) SetZipCode(ctx context.Context, zip string) error {
	return m.update(ctx, func(p *PatientProfile) { p.ZipCode = zip })
}

func (m *Manager) SetInsurance(ctx context.Context, insurance string) error {
	return m.update(ctx, func(p *PatientProfile) { p.Insurance = insurance })
}

func (m *Manager) SetAllergies(ctx context.Context, allergies []string) error {
	if allergies == nil {
		allergies = []string{}
	}
	return m.update(ctx, func(p *PatientProfile) { p.Allergies = allergies })
}

func (m *Manager) update(ctx context.Context, mutate func(*PatientProfile)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.getLocked(ctx)
	if err != nil {
		return err
	}
	mutate(&p)
	if err := m.store.Save(ctx, p); err != nil {
		return err
	}
	m.cached = p
	return nil
}

// DetectTimezone resolves the patient timezone through the IP geolocation
// chain once per process and persists the result. Later calls are no-ops.
func (m *Manager) DetectTimezone(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.detected || m.detector == nil {
		return
	}
	m.detected = true

	p, err := m.getLocked(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("timezone detection skipped, profile unavailable")
		return
	}

	tz := m.detector.Detect(ctx)
	if tz == p.Timezone {
		return
	}
	p.Timezone = tz
	if err := m.store.Save(ctx, p); err != nil {
		log.Warn().Err(err).Str("timezone", tz).Msg("failed to persist detected timezone")
		return
	}
	m.cached = p
	log.Info().Str("timezone", tz).Msg("patient timezone detected")
}

// TimeInfo reports the current time in the patient's timezone. An
// unloadable timezone falls back to UTC rather than failing the turn.
func (m *Manager) TimeInfo(ctx context.Context) (TimeInfo, error) {
	p, err := m.Get(ctx)
	if err != nil {
		return TimeInfo{}, err
	}

	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", p.Timezone).Msg("unknown timezone, using UTC")
		loc = time.UTC
	}

	now := m.now().In(loc)
	weekday := now.Weekday()
	weekend := weekday == time.Saturday || weekday == time.Sunday
	return TimeInfo{
		Timezone:      p.Timezone,
		Now:           now,
		Hour:          now.Hour(),
		DayOfWeek:     weekday.String(),
		IsWeekend:     weekend,
		IsBusinessDay: !weekend,
	}, nil
}

// Context renders the profile block injected into every role directive.
func (m *Manager) Context(ctx context.Context) (string, error) {
	p, err := m.Get(ctx)
	if err != nil {
		return "", err
	}

	allergies := p.AllergiesText()
	if allergies == "" {
		allergies = "none on file"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Patient profile:\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Name)
	fmt.Fprintf(&b, "- Home city: %s\n", p.HomeCity)
	fmt.Fprintf(&b, "- Zip code: %s\n", p.ZipCode)
	fmt.Fprintf(&b, "- Insurance: %s\n", p.Insurance)
	fmt.Fprintf(&b, "- Known allergies: %s\n", allergies)
	fmt.Fprintf(&b, "- Timezone: %s", p.Timezone)
	return b.String(), nil
}
