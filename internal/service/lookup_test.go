package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootmarks/rootmarks-server/internal/cache"
	"github.com/rootmarks/rootmarks-server/internal/domain"
	domainerrors "github.com/rootmarks/rootmarks-server/internal/errors"
	"github.com/rootmarks/rootmarks-server/internal/metrics"
)

type fakeSearcher struct {
	calls   atomic.Int32
	results []domain.BookCandidate
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]domain.BookCandidate, error) {
	f.calls.Add(1)
	f.queries = append(f.queries, query)
	return f.results, f.err
}

func newLookup(t *testing.T, searcher BookSearcher) (*LookupService, *metrics.Metrics) {
	t.Helper()
	c, err := cache.Open(cache.Options{InMemory: true}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	m := metrics.New()
	return NewLookupService(searcher, c, m, discardLogger()), m
}

func TestLookup_RejectsEmptyQuery(t *testing.T) {
	searcher := &fakeSearcher{}
	svc, _ := newLookup(t, searcher)

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := svc.Search(context.Background(), q)
		assert.True(t, errors.Is(err, domainerrors.ErrValidation))
	}
	_, err := svc.Search(context.Background(), strings.Repeat("a", MaxLookupQueryLength+1))
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	assert.Zero(t, searcher.calls.Load())
}

func TestLookup_CachesByNormalizedQuery(t *testing.T) {
	pages := 412
	searcher := &fakeSearcher{results: []domain.BookCandidate{
		{ID: "vol-1", Title: "Dune", Author: "Frank Herbert", PageCount: &pages},
	}}
	svc, m := newLookup(t, searcher)
	ctx := context.Background()

	first, err := svc.Search(ctx, "  Dune   Herbert ")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, []string{"Dune Herbert"}, searcher.queries)

	second, err := svc.Search(ctx, "dune herbert")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.NotNil(t, second[0].PageCount)
	assert.Equal(t, 412, *second[0].PageCount)

	assert.Equal(t, int32(1), searcher.calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LookupCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LookupCache.WithLabelValues("miss")))
}

func TestLookup_NoMatchesIsEmpty(t *testing.T) {
	svc, _ := newLookup(t, &fakeSearcher{})

	got, err := svc.Search(context.Background(), "zzzz qqqq")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLookup_UpstreamFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("connection refused")}
	svc, m := newLookup(t, searcher)

	_, err := svc.Search(context.Background(), "dune")
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeUnavailable, domainErr.Code)
	assert.Equal(t, http.StatusBadGateway, domainErr.HTTPStatus())
	assert.NotContains(t, domainErr.Message, "connection refused")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamErrors.WithLabelValues(metrics.ServiceGoogleBooks)))

	// Failures are not cached.
	searcher.err = nil
	_, err = svc.Search(context.Background(), "dune")
	require.NoError(t, err)
	assert.Equal(t, int32(2), searcher.calls.Load())
}

func TestLookup_WithoutCache(t *testing.T) {
	searcher := &fakeSearcher{}
	svc := NewLookupService(searcher, nil, nil, discardLogger())

	_, err := svc.Search(context.Background(), "dune")
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), "dune")
	require.NoError(t, err)
	assert.Equal(t, int32(2), searcher.calls.Load())
}
