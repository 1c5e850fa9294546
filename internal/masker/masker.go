// Package masker allocates Corex identifiers for original URLs and builds
// the masked URLs handed back to clients. It covers both the explicit
// register operation and the recursive JSON masking walk.
package masker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/corexlabs/corexurl/internal/audit"
	"github.com/corexlabs/corexurl/internal/classify"
	"github.com/corexlabs/corexurl/internal/metrics"
	"github.com/corexlabs/corexurl/internal/storage"
	"github.com/corexlabs/corexurl/pkg/corexid"
)

// Registration is the result of masking a single URL.
type Registration struct {
	CorexID  string
	CorexURL string
}

// Service coordinates identifier generation, classification and storage.
type Service struct {
	store storage.Store
	ids   *corexid.Generator
	audit *audit.Logger
	log   zerolog.Logger
}

// NewService creates a new masking service.
func NewService(store storage.Store, auditLog *audit.Logger, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		ids:   corexid.NewGenerator(),
		audit: auditLog,
		log:   log.With().Str("component", "masker").Logger(),
	}
}

// Register masks a single URL unconditionally: unlike the JSON walker it
// does not gate on classification, because the caller explicitly asked for
// this URL to be masked. The only failure mode is a store failure, in which
// case no masked URL is returned.
func (s *Service) Register(ctx context.Context, rawURL, baseURL string) (Registration, error) {
	reg, err := s.register(ctx, rawURL, baseURL)
	if err != nil {
		return Registration{}, err
	}
	metrics.RegistrationsTotal.Inc()
	return reg, nil
}

// register allocates an identifier, persists the mapping and builds the
// masked URL. Shared by Register and the JSON walker.
func (s *Service) register(ctx context.Context, rawURL, baseURL string) (Registration, error) {
	id := s.ids.Generate()
	ext := classify.DetectExtension(rawURL)

	if err := s.store.Put(ctx, id, rawURL); err != nil {
		s.audit.StoreError(id, err)
		return Registration{}, fmt.Errorf("failed to store mapping: %w", err)
	}

	s.audit.URLRegistered(id, rawURL)
	return Registration{
		CorexID:  id,
		CorexURL: baseURL + "/" + id + ext,
	}, nil
}

// MaskJSON deep-copies a decoded JSON value, replacing every maskable
// string leaf with a freshly registered masked URL. The output always has
// the same shape as the input; only maskable string leaves change. Each
// occurrence of a URL masks independently, so the same literal URL
// appearing twice yields two distinct identifiers.
func (s *Service) MaskJSON(ctx context.Context, value any, baseURL string) (any, error) {
	var masked int
	out, err := s.maskValue(ctx, value, baseURL, &masked)
	if err != nil {
		return nil, err
	}
	s.audit.JSONMasked(masked)
	return out, nil
}

// maskValue is a structural recursion over the decoded-JSON variant:
// objects map value-wise, arrays element-wise, maskable strings are
// replaced, everything else passes through unchanged.
func (s *Service) maskValue(ctx context.Context, value any, baseURL string, masked *int) (any, error) {
	switch v := value.(type) {
	case string:
		if !classify.IsMaskable(v) {
			return v, nil
		}
		reg, err := s.register(ctx, v, baseURL)
		if err != nil {
			return nil, err
		}
		*masked++
		metrics.MaskedLeavesTotal.Inc()
		return reg.CorexURL, nil

	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			replaced, err := s.maskValue(ctx, item, baseURL, masked)
			if err != nil {
				return nil, err
			}
			out[i] = replaced
		}
		return out, nil

	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			replaced, err := s.maskValue(ctx, item, baseURL, masked)
			if err != nil {
				return nil, err
			}
			out[key] = replaced
		}
		return out, nil

	default:
		// Numbers, booleans and nulls pass through unchanged.
		return v, nil
	}
}
