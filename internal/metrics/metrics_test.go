package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	return newWithRegistry(prometheus.NewRegistry())
}

func TestMetrics_Counters(t *testing.T) {
	m := newTestMetrics(t)

	m.BookFinished(256)
	m.BadgeAwarded("first-book", 50)
	m.BadgeAwarded("first-book", 50)
	m.LookupCacheResult(true)
	m.LookupCacheResult(false)
	m.LookupCacheResult(false)
	m.UpstreamError(ServiceGoogleBooks)
	m.PlantScanned()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BooksFinished))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BadgesAwarded.WithLabelValues("first-book")))
	assert.Equal(t, 256.0, testutil.ToFloat64(m.XPCredited.WithLabelValues(SourceBook)))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.XPCredited.WithLabelValues(SourceBadge)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LookupCache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LookupCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamErrors.WithLabelValues(ServiceGoogleBooks)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PlantScans))
}

func TestMetrics_ObserveRequest(t *testing.T) {
	m := newTestMetrics(t)

	m.ObserveRequest(http.MethodGet, "/api/v1/books", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.BookFinished(10)
		m.BadgeAwarded("x", 1)
		m.LookupCacheResult(true)
		m.UpstreamError(ServiceAnalyzer)
		m.PlantScanned()
		m.ObserveRequest("GET", "/", 200, time.Second)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.BookFinished(60)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "rootmarks_books_finished_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
