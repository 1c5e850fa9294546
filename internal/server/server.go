// Package server provides the public HTTP surface of the Corex proxy:
// registration, JSON masking and the streaming endpoint.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/corexlabs/corexurl/internal/config"
	"github.com/corexlabs/corexurl/internal/masker"
	"github.com/corexlabs/corexurl/internal/relay"
)

// Server wires the masking service and the streaming relay into an HTTP
// server.
type Server struct {
	cfg    *config.Config
	masker *masker.Service
	relay  *relay.Relay
	log    zerolog.Logger
	router *chi.Mux
	server *http.Server
}

// New creates a fully routed server.
func New(cfg *config.Config, maskSvc *masker.Service, streamRelay *relay.Relay, log zerolog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		masker: maskSvc,
		relay:  streamRelay,
		log:    log.With().Str("component", "server").Logger(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(hlog.NewHandler(s.log))
	r.Use(hlog.AccessHandler(func(req *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(req).Info().
			Str("request_id", middleware.GetReqID(req.Context())).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Int("status", status).
			Int("bytes", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(s.recoverer)

	r.Route(cfg.Server.BasePath, func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/proxy-json", s.handleProxyJSON)
		r.Get("/{id}", s.handleStream)
	})
	r.Get("/health", s.handleHealth)
	if cfg.Metrics.Enabled {
		r.Method(http.MethodGet, cfg.Metrics.Endpoint, promhttp.Handler())
	}
	r.NotFound(s.handleNotFound)

	s.router = r
	s.server = &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: r,
		// No WriteTimeout: media streams are long-lived by design.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.log.Info().Str("listen", s.server.Addr).Msg("server starting")
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// baseURL reconstructs the externally visible base for masked URLs from
// the inbound request, so the same deployment works on localhost and
// behind a fronting proxy.
func (s *Server) baseURL(r *http.Request) string {
	proto := "http"
	if r.TLS != nil {
		proto = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		proto = forwarded
	}
	return proto + "://" + r.Host + s.cfg.Server.BasePath
}

// recoverer converts panics into the JSON 500 envelope instead of a bare
// connection reset.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.log.Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Msg("panic recovered")
				s.writeInternalError(w, rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
