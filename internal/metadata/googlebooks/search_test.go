package googlebooks

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootmarks/rootmarks-server/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Config{
		Endpoint:   srv.URL + "/",
		HTTPClient: srv.Client(),
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestSearch_MapsVolumes(t *testing.T) {
	var gotPath, gotQuery, gotMax string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotMax = r.URL.Query().Get("maxResults")
		writeJSON(t, w, map[string]any{
			"totalItems": 2,
			"items": []map[string]any{
				{
					"id": "vol-1",
					"volumeInfo": map[string]any{
						"title":         "Dune",
						"authors":       []string{"Frank Herbert", "Brian Herbert"},
						"pageCount":     412,
						"description":   "<p>Desert <b>planet</b>.</p>",
						"publishedDate": "1965",
						"imageLinks":    map[string]any{"thumbnail": "http://books.google.com/dune.jpg"},
					},
				},
				{"id": "vol-2", "volumeInfo": map[string]any{}},
			},
		})
	})

	got, err := c.Search(context.Background(), "dune")
	require.NoError(t, err)

	assert.Equal(t, "/books/v1/volumes", gotPath)
	assert.Equal(t, "dune", gotQuery)
	assert.Equal(t, "5", gotMax)

	require.Len(t, got, 2)
	dune := got[0]
	assert.Equal(t, "vol-1", dune.ID)
	assert.Equal(t, "Dune", dune.Title)
	assert.Equal(t, "Frank Herbert, Brian Herbert", dune.Author)
	require.NotNil(t, dune.PageCount)
	assert.Equal(t, 412, *dune.PageCount)
	assert.Equal(t, "https://books.google.com/dune.jpg", dune.CoverURL)
	assert.Equal(t, "Desert **planet**.", dune.Description)
	assert.Equal(t, "1965", dune.PublishedDate)

	bare := got[1]
	assert.Equal(t, domain.UnknownTitle, bare.Title)
	assert.Equal(t, domain.UnknownAuthor, bare.Author)
	assert.Nil(t, bare.PageCount)
	assert.Empty(t, bare.CoverURL)
}

func TestSearch_NoItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"totalItems": 0})
	})

	got, err := c.Search(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_TruncatesDescription(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"items": []map[string]any{{
				"id":         "long",
				"volumeInfo": map[string]any{"title": "Long", "description": strings.Repeat("a", 500)},
			}},
		})
	})

	got, err := c.Search(context.Background(), "long")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Description, 200)
}

func TestSearch_UpstreamError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"code":403,"message":"quota"}}`, http.StatusForbidden)
	})

	_, err := c.Search(context.Background(), "dune")
	assert.Error(t, err)
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestSearch_CanceledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Search(ctx, "dune")
	assert.Error(t, err)
}
