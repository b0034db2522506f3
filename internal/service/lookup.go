package service

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/rootmarks/rootmarks-server/internal/cache"
	"github.com/rootmarks/rootmarks-server/internal/domain"
	domainerrors "github.com/rootmarks/rootmarks-server/internal/errors"
	"github.com/rootmarks/rootmarks-server/internal/metrics"
	"github.com/rootmarks/rootmarks-server/internal/normalize"
)

// MaxLookupQueryLength bounds lookup queries, in characters.
const MaxLookupQueryLength = 200

const lookupCacheNamespace = "lookup"

// BookSearcher finds candidate books for a free-text query.
type BookSearcher interface {
	Search(ctx context.Context, query string) ([]domain.BookCandidate, error)
}

// LookupCache stores lookup results between calls.
type LookupCache interface {
	Get(key []byte, dest any) error
	Set(key []byte, value any) error
}

// LookupService searches an external catalog for books to add.
type LookupService struct {
	searcher BookSearcher
	cache    LookupCache
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewLookupService creates a lookup service. cache and m may be nil.
func NewLookupService(searcher BookSearcher, cache LookupCache, m *metrics.Metrics, logger *slog.Logger) *LookupService {
	return &LookupService{
		searcher: searcher,
		cache:    cache,
		metrics:  m,
		logger:   logger,
	}
}

// Search returns candidates for query. Queries that normalize to the same
// key share a cache entry. Upstream failures surface as a retryable
// unavailable error.
func (s *LookupService) Search(ctx context.Context, query string) ([]domain.BookCandidate, error) {
	query = normalize.Text(query)
	if query == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed: query is required",
			map[string]string{"query": "is required"})
	}
	if utf8.RuneCountInString(query) > MaxLookupQueryLength {
		return nil, domainerrors.Validationf("query must not exceed %d characters", MaxLookupQueryLength)
	}

	key := cache.Key(lookupCacheNamespace, normalize.Key(query))

	if s.cache != nil {
		var cached []domain.BookCandidate
		err := s.cache.Get(key, &cached)
		switch {
		case err == nil:
			s.metrics.LookupCacheResult(true)
			s.logger.Debug("lookup cache hit", "query", query)
			return cached, nil
		case !errors.Is(err, cache.ErrMiss):
			s.logger.Warn("lookup cache read failed", "error", err)
		}
		s.metrics.LookupCacheResult(false)
	}

	candidates, err := s.searcher.Search(ctx, query)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.metrics.UpstreamError(metrics.ServiceGoogleBooks)
		s.logger.Error("book lookup failed", "query", query, "error", err)
		return nil, domainerrors.Unavailable("book lookup", err)
	}
	if candidates == nil {
		candidates = []domain.BookCandidate{}
	}

	if s.cache != nil {
		if err := s.cache.Set(key, candidates); err != nil {
			s.logger.Warn("lookup cache write failed", "error", err)
		}
	}

	return candidates, nil
}
