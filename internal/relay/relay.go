// Package relay resolves Corex identifiers and streams the original
// resource back to the client, preserving range-request and
// partial-content semantics.
package relay

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/corexlabs/corexurl/internal/audit"
	"github.com/corexlabs/corexurl/internal/metrics"
	"github.com/corexlabs/corexurl/internal/storage"
	"github.com/corexlabs/corexurl/pkg/corexid"
)

var (
	// ErrNotFound indicates the identifier was never registered.
	ErrNotFound = errors.New("corex identifier not found")

	// ErrUpstream indicates the origin was unreachable or answered with a
	// non-success, non-partial status.
	ErrUpstream = errors.New("upstream fetch failed")
)

// relayedHeaders is the whitelist of upstream response headers passed
// through to the client.
var relayedHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Accept-Ranges",
	"Content-Range",
	"Content-Disposition",
}

// Options tunes the upstream HTTP client.
type Options struct {
	// ConnectTimeout bounds dialing and the TLS handshake. The overall
	// request is deliberately unbounded: streams can run for hours.
	ConnectTimeout time.Duration

	// ResponseHeaderTimeout bounds the wait for upstream response headers.
	ResponseHeaderTimeout time.Duration
}

// DefaultOptions returns conservative upstream client settings.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout:        10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}
}

// Relay resolves identifiers against the mapping store and relays origin
// bytes downstream.
type Relay struct {
	store  storage.Store
	client *http.Client
	audit  *audit.Logger
	log    zerolog.Logger
}

// New creates a new streaming relay.
func New(store storage.Store, auditLog *audit.Logger, log zerolog.Logger, opts Options) *Relay {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: opts.ConnectTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   opts.ConnectTimeout,
		ResponseHeaderTimeout: opts.ResponseHeaderTimeout,
		MaxIdleConnsPerHost:   8,
	}

	return &Relay{
		store: store,
		// No Client.Timeout: it would cut long-running media streams.
		// Redirects are followed, matching the original fetch semantics.
		client: &http.Client{Transport: transport},
		audit:  auditLog,
		log:    log.With().Str("component", "relay").Logger(),
	}
}

// Stream resolves idParam (an identifier, possibly suffixed with a
// cosmetic extension) and relays the origin resource to w. Errors are
// returned only while the response is still unwritten; once headers are
// sent, failures terminate the stream and are logged.
func (rl *Relay) Stream(w http.ResponseWriter, r *http.Request, idParam string) error {
	start := time.Now()
	id := corexid.TrimExtension(idParam)

	origin, found, err := rl.store.Get(r.Context(), id)
	if err != nil {
		metrics.RecordStreamOutcome("store_error")
		rl.audit.StoreError(id, err)
		return fmt.Errorf("failed to resolve %s: %w", id, err)
	}
	if !found {
		metrics.RecordStreamOutcome("not_found")
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	target, err := appendPassthroughQuery(origin, r.URL.Query())
	if err != nil {
		metrics.RecordStreamOutcome("upstream_error")
		rl.audit.UpstreamError(id, err)
		return fmt.Errorf("%w: stored url is not parseable", ErrUpstream)
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		metrics.RecordStreamOutcome("upstream_error")
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	// Forward the Range header verbatim so seeking works.
	if rangeHeader := r.Header.Get("Range"); rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := rl.client.Do(req)
	if err != nil {
		metrics.RecordStreamOutcome("upstream_error")
		rl.audit.UpstreamError(id, err)
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	metrics.UpstreamDuration.Observe(time.Since(start).Seconds())

	if !isRelayableStatus(resp.StatusCode) {
		metrics.RecordStreamOutcome("upstream_error")
		err := fmt.Errorf("%w: upstream returned status %d", ErrUpstream, resp.StatusCode)
		rl.audit.UpstreamError(id, err)
		return err
	}

	for _, name := range relayedHeaders {
		if value := resp.Header.Get(name); value != "" {
			w.Header().Set(name, value)
		}
	}

	// Security and caching headers on every relayed response. Mappings
	// are immutable, so aggressive caching is safe.
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Frame-Options", "SAMEORIGIN")

	status := resp.StatusCode
	if resp.Header.Get("Content-Range") != "" {
		status = http.StatusPartialContent
	}
	w.WriteHeader(status)

	// From here on the response is committed: copy failures (downstream
	// disconnect, upstream abort) can only end the stream. The request
	// context cancels the upstream fetch when the client goes away.
	written, copyErr := io.Copy(w, resp.Body)

	metrics.RecordStreamOutcome("ok")
	metrics.RecordStreamBytes(written)
	rl.audit.StreamServed(id, status, written, float64(time.Since(start).Milliseconds()))

	if copyErr != nil {
		rl.log.Debug().
			Str("corex_id", id).
			Int64("bytes", written).
			Err(copyErr).
			Msg("stream ended early")
	}
	return nil
}

// isRelayableStatus reports whether an upstream status can be relayed:
// any success, plus 206 for range responses.
func isRelayableStatus(status int) bool {
	if status == http.StatusPartialContent {
		return true
	}
	return status >= 200 && status <= 299
}

// appendPassthroughQuery appends the caller's query parameters to the
// stored origin URL without dropping any parameter already present, so
// signed-URL tokens supplied by the caller flow through.
func appendPassthroughQuery(origin string, passthrough url.Values) (string, error) {
	if len(passthrough) == 0 {
		return origin, nil
	}

	u, err := url.Parse(origin)
	if err != nil {
		return "", err
	}

	q := u.Query()
	for key, values := range passthrough {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
