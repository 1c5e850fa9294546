package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/corexlabs/corexurl/internal/relay"
	"github.com/corexlabs/corexurl/pkg/corexid"
)

// registerRequest is the body of POST {base}/register.
type registerRequest struct {
	URL string `json:"url"`
}

// proxyJSONRequest is the body of POST {base}/proxy-json.
type proxyJSONRequest struct {
	JSON any `json:"json"`
}

// errorResponse is the structured error envelope shared by all endpoints.
type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Details   string `json:"details,omitempty"`
	Provided  string `json:"provided,omitempty"`
	CorexID   string `json:"corexId,omitempty"`
	Path      string `json:"path,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// handleRegister masks a single URL. Validation happens before any side
// effect: no identifier is allocated for an invalid request.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid Request",
			Details: "A valid URL string is required in the request body",
		})
		return
	}

	if req.URL == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid Request",
			Details: "A valid URL string is required in the request body",
		})
		return
	}

	parsed, err := url.Parse(req.URL)
	if err != nil || parsed.Host == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid URL Format",
			Details: "Please provide a valid HTTP(S) URL",
		})
		return
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:    "Invalid Protocol",
			Details:  "Only HTTP and HTTPS protocols are supported",
			Provided: parsed.Scheme,
		})
		return
	}

	reg, err := s.masker.Register(r.Context(), req.URL, s.baseURL(r))
	if err != nil {
		s.log.Error().Err(err).Msg("url registration failed")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to register URL. Please try again later.",
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"corexId":  reg.CorexID,
		"corexUrl": reg.CorexURL,
		"message":  "URL successfully masked",
	})
}

// handleProxyJSON masks every maskable URL inside an arbitrary JSON value.
func (s *Server) handleProxyJSON(w http.ResponseWriter, r *http.Request) {
	var req proxyJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid or missing JSON",
			Details: "Please provide a valid JSON object in the request body",
		})
		return
	}

	switch req.JSON.(type) {
	case map[string]any, []any:
		// Structured value, proceed.
	default:
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid or missing JSON",
			Details: "Please provide a valid JSON object in the request body",
		})
		return
	}

	wrapped, err := s.masker.MaskJSON(r.Context(), req.JSON, s.baseURL(r))
	if err != nil {
		s.log.Error().Err(err).Msg("json masking failed")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to proxy JSON. Please try again later.",
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"wrappedJson": wrapped,
		"message":     "All URLs successfully masked",
	})
}

// handleStream resolves a masked identifier and relays the origin bytes.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")

	err := s.relay.Stream(w, r, idParam)
	switch {
	case err == nil:
		return
	case errors.Is(err, relay.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{
			Error:   "Not Found",
			Message: "Corex resource not found",
			CorexID: corexid.TrimExtension(idParam),
		})
	case errors.Is(err, relay.ErrUpstream):
		s.writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:   "Bad Gateway",
			Message: "Failed to fetch upstream resource",
		})
	default:
		s.log.Error().Err(err).Str("corex_id", idParam).Msg("stream resolution failed")
		s.writeInternalError(w, err)
	}
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleNotFound answers unmatched routes with the JSON envelope.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusNotFound, errorResponse{
		Error:   "Not Found",
		Message: "The requested endpoint does not exist",
		Path:    r.URL.Path,
	})
}

// writeInternalError emits the 500 envelope. Development mode echoes the
// failure detail; production stays generic.
func (s *Server) writeInternalError(w http.ResponseWriter, cause any) {
	message := "An unexpected error occurred"
	if s.cfg.IsDevelopment() {
		message = fmt.Sprint(cause)
	}
	s.writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:     "Internal Server Error",
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are out; nothing left to do but log.
		s.log.Debug().Err(err).Msg("failed to encode response")
	}
}
