// Package audit records a structured trail of masking and streaming
// activity. Audit events are operational history, distinct from debug
// logging: they answer "which mapping was created when, and who streamed
// what", not "what is the process doing".
package audit

import (
	"github.com/rs/zerolog"
)

// EventType identifies the kind of audit event.
type EventType string

const (
	EventURLRegistered EventType = "url_registered"
	EventJSONMasked    EventType = "json_masked"
	EventStreamServed  EventType = "stream_served"
	EventUpstreamError EventType = "upstream_error"
	EventStoreError    EventType = "store_error"
)

// Config holds audit logger settings.
type Config struct {
	// Enabled enables/disables the audit trail.
	Enabled bool `yaml:"enabled"`

	// IncludeOriginURLs includes original URLs in audit events. Off by
	// default: the whole point of the proxy is to keep origin URLs out
	// of sight, and that includes log sinks.
	IncludeOriginURLs bool `yaml:"include_origin_urls"`
}

// DefaultConfig returns the default audit configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:           true,
		IncludeOriginURLs: false,
	}
}

// Logger writes audit events through zerolog.
type Logger struct {
	log     zerolog.Logger
	enabled bool
	origins bool
}

// NewLogger creates a new audit logger on top of the given zerolog logger.
func NewLogger(cfg *Config, log zerolog.Logger) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Logger{
		log:     log.With().Str("component", "audit").Logger(),
		enabled: cfg.Enabled,
		origins: cfg.IncludeOriginURLs,
	}
}

// URLRegistered records the creation of a single mapping.
func (l *Logger) URLRegistered(corexID, originURL string) {
	if !l.enabled {
		return
	}
	ev := l.log.Info().
		Str("event", string(EventURLRegistered)).
		Str("corex_id", corexID)
	if l.origins {
		ev = ev.Str("origin_url", originURL)
	}
	ev.Msg("mapping created")
}

// JSONMasked records one JSON masking pass and how many leaves it replaced.
func (l *Logger) JSONMasked(masked int) {
	if !l.enabled {
		return
	}
	l.log.Info().
		Str("event", string(EventJSONMasked)).
		Int("masked_leaves", masked).
		Msg("json document masked")
}

// StreamServed records a completed (or client-aborted) stream.
func (l *Logger) StreamServed(corexID string, status int, bytes int64, durationMs float64) {
	if !l.enabled {
		return
	}
	l.log.Info().
		Str("event", string(EventStreamServed)).
		Str("corex_id", corexID).
		Int("status", status).
		Int64("bytes", bytes).
		Float64("duration_ms", durationMs).
		Msg("stream served")
}

// UpstreamError records a failed upstream fetch.
func (l *Logger) UpstreamError(corexID string, err error) {
	if !l.enabled {
		return
	}
	l.log.Warn().
		Str("event", string(EventUpstreamError)).
		Str("corex_id", corexID).
		Err(err).
		Msg("upstream fetch failed")
}

// StoreError records a mapping store failure.
func (l *Logger) StoreError(corexID string, err error) {
	if !l.enabled {
		return
	}
	l.log.Error().
		Str("event", string(EventStoreError)).
		Str("corex_id", corexID).
		Err(err).
		Msg("mapping store failure")
}
