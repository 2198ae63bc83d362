package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const maxResponseSizeBytes = 1 << 20

// Config for the IP-geolocation timezone lookup chain.
type Config struct {
	Providers       []string      `split_words:"true" default:"https://ipapi.co/json/,https://ipinfo.io/json"`
	Timeout         time.Duration `split_words:"true" default:"3s"`
	DefaultTimezone string        `split_words:"true" default:"America/Los_Angeles"`
}

// Detector resolves the local IANA timezone by asking a chain of
// IP-geolocation providers. Lookup failures are expected and swallowed;
// the chain degrades to a fixed default.
type Detector struct {
	providers  []string
	defaultTZ  string
	httpClient *http.Client
}

func NewDetector(cfg Config) *Detector {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	providers := make([]string, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			providers = append(providers, trimmed)
		}
	}

	defaultTZ := strings.TrimSpace(cfg.DefaultTimezone)
	if defaultTZ == "" {
		defaultTZ = "America/Los_Angeles"
	}

	return &Detector{
		providers:  providers,
		defaultTZ:  defaultTZ,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Detect returns the first timezone reported by the provider chain, or the
// configured default when every provider fails. It never returns an error.
func (d *Detector) Detect(ctx context.Context) string {
	for _, provider := range d.providers {
		tz, err := d.lookup(ctx, provider)
		if err != nil {
			log.Debug().Err(err).Str("provider", provider).Msg("timezone lookup failed")
			continue
		}
		if tz != "" {
			log.Info().Str("timezone", tz).Str("provider", provider).Msg("timezone detected")
			return tz
		}
	}

	log.Info().Str("timezone", d.defaultTZ).Msg("timezone detection failed, using default")
	return d.defaultTZ
}

func (d *Detector) lookup(ctx context.Context, provider string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, provider, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http status=%d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var payload struct {
		Timezone string `json:"timezone"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return strings.TrimSpace(payload.Timezone), nil
}
