package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/wrenhealth/concierge/agent/agents/orchestrator"
	contractx "github.com/wrenhealth/concierge/agent/contract"
	"github.com/wrenhealth/concierge/agent/profile"
	"github.com/wrenhealth/concierge/pkg/observability"
)

type Config struct {
	Addr string `split_words:"true" default:":8080"`
}

// Server exposes the concierge over HTTP: one endpoint to converse, one to
// reset a session, and a small profile CRUD surface.
type Server struct {
	cfg          Config
	orchestrator *orchestrator.Orchestrator
	profiles     *profile.Manager
}

func New(cfg Config, orch *orchestrator.Orchestrator, profiles *profile.Manager) *Server {
	return &Server{cfg: cfg, orchestrator: orch, profiles: profiles}
}

func (s *Server) Addr() string {
	return s.cfg.Addr
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/sessions/{id}/messages", s.handleSendMessage)
	r.Post("/v1/sessions/{id}/reset", s.handleResetSession)
	r.Get("/v1/profile", s.handleGetProfile)
	r.Put("/v1/profile", s.handlePutProfile)
	r.Patch("/v1/profile", s.handlePatchProfile)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type messageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Crisis    bool   `json:"crisis"`
	Emergency bool   `json:"emergency"`
	Rounds    int    `json:"rounds"`
	Reason    string `json:"reason,omitempty"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}

	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}

	result, err := s.orchestrator.SendMessage(r.Context(), sessionID, req.Text)
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		log.Error().Err(err).Str("session", sessionID).Msg("message handling failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to handle message")
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{
		SessionID: result.SessionID,
		Reply:     result.Reply.Text,
		Crisis:    result.Reply.Crisis,
		Emergency: result.Reply.Emergency,
		Rounds:    result.Rounds,
		Reason:    string(result.Reason),
	})
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}
	if err := s.orchestrator.ResetSession(sessionID); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "status": "reset"})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.Get(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("profile load failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load profile")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var p profile.PatientProfile
	if err := decodeJSON(r, &p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(p.Name) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	if err := s.profiles.Put(r.Context(), p); err != nil {
		log.Error().Err(err).Msg("profile save failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save profile")
		return
	}

	updated, err := s.profiles.Get(r.Context())
	if err != nil {
		respondJSON(w, http.StatusOK, p)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// profilePatchRequest updates individual profile fields; absent fields are
// left untouched. Allergies arrive as comma-separated text.
type profilePatchRequest struct {
	HomeCity  *string `json:"home_city"`
	ZipCode   *string `json:"zip_code"`
	Insurance *string `json:"insurance"`
	Allergies *string `json:"allergies"`
}

func (s *Server) handlePatchProfile(w http.ResponseWriter, r *http.Request) {
	var req profilePatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	ctx := r.Context()
	var err error
	if req.HomeCity != nil {
		err = s.profiles.SetHomeCity(ctx, strings.TrimSpace(*req.HomeCity))
	}
	if err == nil && req.ZipCode != nil {
		err = s.profiles.SetZipCode(ctx, strings.TrimSpace(*req.ZipCode))
	}
	if err == nil && req.Insurance != nil {
		err = s.profiles.SetInsurance(ctx, strings.TrimSpace(*req.Insurance))
	}
	if err == nil && req.Allergies != nil {
		err = s.profiles.SetAllergies(ctx, profile.ParseAllergies(*req.Allergies))
	}
	if err != nil {
		log.Error().Err(err).Msg("profile patch failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update profile")
		return
	}

	updated, err := s.profiles.Get(ctx)
	if err != nil {
		log.Error().Err(err).Msg("profile load failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load profile")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
