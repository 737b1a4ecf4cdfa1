package config

import (
	"context"

	"github.com/phuslu/log"

	"github.com/sagearbor/ai-skill-eval-kit/internal/lazy"
	"github.com/sagearbor/ai-skill-eval-kit/internal/logging"
)

// Source loads a provider's document once and hands out the cached result.
// Failures are memoized as "use defaults" and never surface to callers.
type Source struct {
	provider Provider
	logger   *log.Logger
	value    *lazy.Value[*Document]
}

// NewSource wraps p. A nil provider yields the built-in defaults.
func NewSource(p Provider, logger *log.Logger) *Source {
	s := &Source{provider: p, logger: logging.OrNop(logger)}
	s.value = lazy.New(s.load)
	return s
}

func (s *Source) load(ctx context.Context) (*Document, error) {
	if s.provider == nil {
		return nil, ErrNotConfigured
	}
	doc, err := s.provider.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("provider", s.provider.Name()).Msg("configuration unavailable, using built-in defaults")
		return nil, err
	}
	s.logger.Debug().Str("provider", s.provider.Name()).Msg("configuration loaded")
	return doc, nil
}

// Document returns the loaded document, or nil when the defaults apply. A
// cancelled ctx also yields nil for this caller.
func (s *Source) Document(ctx context.Context) *Document {
	doc, err := s.value.Get(ctx)
	if err != nil {
		return nil
	}
	return doc
}
