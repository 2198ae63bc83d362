package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/wrenhealth/concierge/agent/agents/orchestrator"
	contractx "github.com/wrenhealth/concierge/agent/contract"
	"github.com/wrenhealth/concierge/agent/profile"
	promptx "github.com/wrenhealth/concierge/agent/prompt"
	rosterx "github.com/wrenhealth/concierge/agent/roster"
	statex "github.com/wrenhealth/concierge/agent/state"
)

type scriptedGenerator struct {
	speaker string
	content string
}

func (g *scriptedGenerator) SelectNext(ctx context.Context, req contractx.SelectionRequest) (string, error) {
	return g.speaker, nil
}

func (g *scriptedGenerator) ProduceTurn(ctx context.Context, req contractx.TurnRequest) (contractx.TurnResponse, error) {
	return contractx.TurnResponse{Content: g.content}, nil
}

type noopTools struct{}

func (noopTools) Execute(ctx context.Context, roleID string, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	return nil, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := profile.NewFileStore(filepath.Join(t.TempDir(), "profile.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	profiles := profile.NewManager(store, nil)

	gen := &scriptedGenerator{
		speaker: rosterx.RoleCoordinator,
		content: "What symptoms are you experiencing today?",
	}
	orch, err := orchestrator.New(
		orchestrator.Config{},
		statex.NewRegistry(nil),
		rosterx.New(promptx.Load()),
		gen,
		noopTools{},
		profiles,
		nil,
	)
	if err != nil {
		t.Fatalf("orchestrator.New() error = %v", err)
	}

	return New(Config{Addr: ":0"}, orch, profiles)
}

func TestSendMessageEndpoint(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestServer(t).Router())
	defer srv.Close()

	body := bytes.NewBufferString(`{"text":"I have a headache"}`)
	resp, err := http.Post(srv.URL+"/v1/sessions/s1/messages", "application/json", body)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var out struct {
		SessionID string `json:"session_id"`
		Reply     string `json:"reply"`
		Crisis    bool   `json:"crisis"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.SessionID != "s1" {
		t.Fatalf("session id = %q", out.SessionID)
	}
	if out.Reply != "What symptoms are you experiencing today?" {
		t.Fatalf("reply = %q", out.Reply)
	}
	if out.Reason != "coordinator_question" {
		t.Fatalf("reason = %q", out.Reason)
	}
}

func TestSendMessageEndpointRejectsEmptyText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestServer(t).Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/sessions/s1/messages", "application/json",
		bytes.NewBufferString(`{"text":"   "}`))
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestResetEndpoint(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestServer(t).Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/sessions/s1/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestProfileEndpoints(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestServer(t).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/profile")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	var p profile.PatientProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	resp.Body.Close()
	if p.Name != "Patient A" {
		t.Fatalf("expected defaults, got %+v", p)
	}

	p.Insurance = "Cigna"
	raw, _ := json.Marshal(p)
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/v1/profile", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/profile")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if p.Insurance != "Cigna" {
		t.Fatalf("update not persisted: %+v", p)
	}
}

func TestPatchProfileEndpoint(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestServer(t).Router())
	defer srv.Close()

	body := bytes.NewBufferString(`{"insurance":"Cigna","allergies":"penicillin, sulfa"}`)
	req, err := http.NewRequest(http.MethodPatch, srv.URL+"/v1/profile", body)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PATCH status = %d", resp.StatusCode)
	}

	var p profile.PatientProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if p.Insurance != "Cigna" {
		t.Fatalf("insurance not updated: %+v", p)
	}
	if len(p.Allergies) != 2 || p.Allergies[0] != "penicillin" || p.Allergies[1] != "sulfa" {
		t.Fatalf("allergies not parsed: %v", p.Allergies)
	}
	if p.Name != "Patient A" || p.ZipCode != "95054" {
		t.Fatalf("untouched fields should keep their values: %+v", p)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestServer(t).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
