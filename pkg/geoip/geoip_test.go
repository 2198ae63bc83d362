package geoip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectFirstProviderWins(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"timezone":"America/New_York"}`))
	}))
	defer srv.Close()

	d := NewDetector(Config{Providers: []string{srv.URL}})
	if got := d.Detect(context.Background()); got != "America/New_York" {
		t.Fatalf("Detect() = %q", got)
	}
}

func TestDetectFallsThroughChain(t *testing.T) {
	t.Parallel()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer broken.Close()

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer empty.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"timezone":"Europe/Berlin"}`))
	}))
	defer working.Close()

	d := NewDetector(Config{Providers: []string{broken.URL, empty.URL, working.URL}})
	if got := d.Detect(context.Background()); got != "Europe/Berlin" {
		t.Fatalf("Detect() = %q", got)
	}
}

func TestDetectUsesDefaultWhenChainFails(t *testing.T) {
	t.Parallel()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	d := NewDetector(Config{
		Providers:       []string{broken.URL},
		DefaultTimezone: "America/Chicago",
	})
	if got := d.Detect(context.Background()); got != "America/Chicago" {
		t.Fatalf("Detect() = %q", got)
	}

	// No providers at all still yields the default.
	d = NewDetector(Config{DefaultTimezone: "UTC"})
	if got := d.Detect(context.Background()); got != "UTC" {
		t.Fatalf("Detect() = %q", got)
	}
}
