package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newCapturedLogger(cfg *Config) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(cfg, zerolog.New(&buf)), &buf
}

func TestLogger_URLRegistered_RedactsOrigin(t *testing.T) {
	logger, buf := newCapturedLogger(DefaultConfig())

	logger.URLRegistered("cx_abc123", "https://cdn.example.com/secret-signed-url.mp4")

	out := buf.String()
	if !strings.Contains(out, "cx_abc123") {
		t.Errorf("audit output missing corex_id: %s", out)
	}
	if strings.Contains(out, "secret-signed-url") {
		t.Errorf("audit output leaked origin url: %s", out)
	}
}

func TestLogger_URLRegistered_IncludeOrigins(t *testing.T) {
	logger, buf := newCapturedLogger(&Config{Enabled: true, IncludeOriginURLs: true})

	logger.URLRegistered("cx_abc123", "https://cdn.example.com/clip.mp4")

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("failed to unmarshal audit event: %v", err)
	}
	if event["origin_url"] != "https://cdn.example.com/clip.mp4" {
		t.Errorf("origin_url = %v, want stored url", event["origin_url"])
	}
	if event["event"] != string(EventURLRegistered) {
		t.Errorf("event = %v, want %q", event["event"], EventURLRegistered)
	}
}

func TestLogger_Disabled(t *testing.T) {
	logger, buf := newCapturedLogger(&Config{Enabled: false})

	logger.URLRegistered("cx_abc123", "https://cdn.example.com/clip.mp4")
	logger.JSONMasked(3)
	logger.StreamServed("cx_abc123", 206, 1024, 12.5)
	logger.UpstreamError("cx_abc123", errors.New("boom"))

	if buf.Len() != 0 {
		t.Errorf("disabled audit logger wrote output: %s", buf.String())
	}
}

func TestLogger_StreamServed(t *testing.T) {
	logger, buf := newCapturedLogger(DefaultConfig())

	logger.StreamServed("cx_abc123", 206, 4096, 33.1)

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("failed to unmarshal audit event: %v", err)
	}
	if event["status"] != float64(206) {
		t.Errorf("status = %v, want 206", event["status"])
	}
	if event["bytes"] != float64(4096) {
		t.Errorf("bytes = %v, want 4096", event["bytes"])
	}
}
