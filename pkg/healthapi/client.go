package healthapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

const (
	userAgent            = "WrenHealthConcierge/1.0"
	maxResponseSizeBytes = 4 << 20
)

// Config holds the base URLs of the free health-data upstreams.
type Config struct {
	NominatimURL string        `split_words:"true" default:"https://nominatim.openstreetmap.org/search"`
	OverpassURL  string        `split_words:"true" default:"https://overpass-api.de/api/interpreter"`
	RoutingURL   string        `split_words:"true" default:"https://router.project-osrm.org/route/v1/driving"`
	RxNormURL    string        `split_words:"true" default:"https://rxnav.nlm.nih.gov/REST"`
	OpenFDAURL   string        `split_words:"true" default:"https://api.fda.gov/drug/label.json"`
	Timeout      time.Duration `split_words:"true" default:"10s"`
	LongTimeout  time.Duration `split_words:"true" default:"25s"`
}

// Client talks to the external health-data collaborators: Nominatim
// (geocoding), Overpass (place search), OSRM (routing), OpenFDA (drug labels)
// and RxNorm (interactions). The place and routing upstreams sit behind
// circuit breakers; callers are expected to degrade to sentinel values when
// a call fails.
type Client struct {
	cfg        Config
	httpClient *http.Client
	longClient *http.Client

	placesBreaker  *gobreaker.CircuitBreaker[[]byte]
	routingBreaker *gobreaker.CircuitBreaker[[]byte]
}

// Option customizes a Client.
type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
			c.longClient = client
		}
	}
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	for _, base := range []string{cfg.NominatimURL, cfg.OverpassURL, cfg.RoutingURL, cfg.RxNormURL, cfg.OpenFDAURL} {
		if strings.TrimSpace(base) == "" {
			return nil, errors.New("healthapi: all upstream urls are required")
		}
		if _, err := url.ParseRequestURI(strings.TrimSpace(base)); err != nil {
			return nil, fmt.Errorf("healthapi: invalid upstream url %q: %w", base, err)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	longTimeout := cfg.LongTimeout
	if longTimeout <= 0 {
		longTimeout = 25 * time.Second
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		longClient: &http.Client{Timeout: longTimeout},
	}
	c.placesBreaker = newBreaker("healthapi:places")
	c.routingBreaker = newBreaker("healthapi:routing")

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})
}

func (c *Client) get(ctx context.Context, client *http.Client, rawURL string, params url.Values) ([]byte, error) {
	target := rawURL
	if len(params) > 0 {
		target = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	return c.do(client, req)
}

func (c *Client) postForm(ctx context.Context, client *http.Client, rawURL string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(client, req)
}

func (c *Client) do(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("http status=%d body=%s", resp.StatusCode, truncate(raw, 256))
	}
	return raw, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
