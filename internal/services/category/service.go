package category

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rokyuddin/billping-api/internal/metrics"
)

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
}

// Service suggests a spending category for a subscription name, caching
// suggestions so repeated names skip the LLM round trip.
type Service struct {
	client suggester
	cache  cacheStore
	log    zerolog.Logger
	m      *metrics.Metrics
}

func NewService(client suggester, cache cacheStore, logger zerolog.Logger, m *metrics.Metrics) *Service {
	logger = logger.With().Str("component", "CategoryService").Logger()
	return &Service{client: client, cache: cache, log: logger, m: m}
}

func cacheKey(name string) string {
	return "category:" + strings.ToLower(strings.TrimSpace(name))
}

func (s *Service) Suggest(ctx context.Context, name string) (string, error) {
	key := cacheKey(name)

	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		s.m.CategoryLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}

	suggestion, err := s.client.Suggest(ctx, name)
	if err != nil {
		s.log.Error().Err(err).Ctx(ctx).
			Str("name", name).
			Msg("category suggestion failed")
		s.m.CategoryLookups.WithLabelValues("error").Inc()
		return "", err
	}
	s.m.CategoryLookups.WithLabelValues("miss").Inc()

	if err := s.cache.Set(ctx, key, suggestion); err != nil {
		// cache write failure is not worth failing the request
		s.log.Warn().Err(err).Ctx(ctx).
			Str("name", name).
			Msg("failed to cache category suggestion")
	}

	return suggestion, nil
}
