package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"media-resolver/internal/filesystem"
	"media-resolver/internal/logging"
	"media-resolver/internal/mediatypes"
	"media-resolver/internal/metrics"
)

// Validate confirms that a previously recorded file URI still resolves
// to a readable, non-empty file. A stale URI triggers a best-effort
// recovery through the media index; permission errors surface directly
// without a recovery attempt.
func (s *Service) Validate(ctx context.Context, uri string) ValidationResult {
	return s.validate(ctx, uri, MatchHint{Title: filepath.Base(uri)})
}

// validate is Validate with a caller-supplied recovery hint. Callers
// that hold cached size or creation metadata pass it through so the
// index matcher can recover renamed files, not just moved ones.
func (s *Service) validate(ctx context.Context, uri string, hint MatchHint) ValidationResult {
	info, err := filesystem.Stat(s.fs, uri)
	switch {
	case err == nil:
		if info.IsDir() || info.Size() == 0 {
			metrics.ValidationsTotal.WithLabelValues("empty").Inc()
			return ValidationResult{FailureReason: FailureEmpty}
		}
		metrics.ValidationsTotal.WithLabelValues("valid").Inc()
		return ValidationResult{IsValid: true, EffectiveURI: uri}

	case errors.Is(err, os.ErrPermission):
		metrics.ValidationsTotal.WithLabelValues("permission_denied").Inc()
		return ValidationResult{FailureReason: FailurePermissionDenied}

	case errors.Is(err, os.ErrNotExist):
		return s.recover(ctx, uri, hint)

	default:
		logging.Warn("validation probe failed for %q: %v", uri, err)
		metrics.ValidationsTotal.WithLabelValues("not_found").Inc()
		return ValidationResult{FailureReason: FailureNotFound}
	}
}

// recover re-queries the media index for an asset matching the stale
// URI's cached metadata. The recovered path must itself be a live,
// non-empty, supported file before it is reported as effective.
func (s *Service) recover(ctx context.Context, uri string, hint MatchHint) ValidationResult {
	metrics.ValidationRecoveriesTotal.WithLabelValues("attempted").Inc()

	recovered, err := s.source.FindMatch(ctx, hint)
	if err != nil {
		metrics.ValidationRecoveriesTotal.WithLabelValues("failure").Inc()
		metrics.ValidationsTotal.WithLabelValues("not_found").Inc()
		return ValidationResult{FailureReason: FailureNotFound}
	}

	info, err := filesystem.Stat(s.fs, recovered)
	if err != nil || info.IsDir() || info.Size() == 0 {
		metrics.ValidationRecoveriesTotal.WithLabelValues("failure").Inc()
		metrics.ValidationsTotal.WithLabelValues("not_found").Inc()
		return ValidationResult{FailureReason: FailureNotFound}
	}

	if _, supported := mediatypes.Classify(recovered); !supported {
		metrics.ValidationRecoveriesTotal.WithLabelValues("failure").Inc()
		metrics.ValidationsTotal.WithLabelValues("unsupported").Inc()
		return ValidationResult{FailureReason: FailureUnsupported}
	}

	logging.Info("recovered stale reference %q -> %q", uri, recovered)
	metrics.ValidationRecoveriesTotal.WithLabelValues("success").Inc()
	metrics.ValidationsTotal.WithLabelValues("recovered").Inc()
	return ValidationResult{IsValid: true, EffectiveURI: recovered}
}

// FilterValid validates every candidate's URI and drops the ones that
// no longer resolve. Recovered candidates keep their place in the list
// with the URI rewritten to the recovered location.
func (s *Service) FilterValid(ctx context.Context, candidates []Candidate) []Candidate {
	valid := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		hint := MatchHint{
			Title:        filepath.Base(c.FileURI),
			SizeBytes:    c.DeviceMetadata.FileSizeBytes,
			CreationTime: c.DeviceMetadata.CreationTime,
		}
		result := s.validate(ctx, c.FileURI, hint)
		if !result.IsValid {
			logging.Debug("dropping candidate %s: %s", c.ID, result.FailureReason)
			continue
		}
		c.FileURI = result.EffectiveURI
		valid = append(valid, c)
	}
	return valid
}
