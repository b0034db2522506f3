package cache

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Title string `json:"title"`
	Pages int    `json:"pages"`
}

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := Open(Options{InMemory: true, TTL: ttl}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache_SetGet(t *testing.T) {
	c := newTestCache(t, time.Hour)
	key := Key("lookup", "dune")

	require.NoError(t, c.Set(key, []entry{{Title: "Dune", Pages: 412}}))

	var got []entry
	require.NoError(t, c.Get(key, &got))
	assert.Equal(t, []entry{{Title: "Dune", Pages: 412}}, got)
}

func TestCache_Miss(t *testing.T) {
	c := newTestCache(t, time.Hour)

	var got []entry
	err := c.Get(Key("lookup", "missing"), &got)
	assert.True(t, errors.Is(err, ErrMiss))
}

func TestCache_Delete(t *testing.T) {
	c := newTestCache(t, 0)
	key := Key("lookup", "gone")
	require.NoError(t, c.Set(key, entry{Title: "Gone"}))

	require.NoError(t, c.Delete(key))

	var got entry
	assert.ErrorIs(t, c.Get(key, &got), ErrMiss)
}

func TestCache_PersistsOnDisk(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	key := Key("lookup", "hobbit")

	c, err := Open(Options{Path: dir, TTL: time.Hour}, logger)
	require.NoError(t, err)
	require.NoError(t, c.Set(key, entry{Title: "The Hobbit"}))
	require.NoError(t, c.Close())

	reopened, err := Open(Options{Path: dir, TTL: time.Hour}, logger)
	require.NoError(t, err)
	defer reopened.Close()

	var got entry
	require.NoError(t, reopened.Get(key, &got))
	assert.Equal(t, "The Hobbit", got.Title)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("lookup", "a", "b"), Key("lookup", "a", "b"))
	assert.NotEqual(t, Key("lookup", "ab"), Key("lookup", "a", "b"))
	assert.NotEqual(t, Key("lookup", "a"), Key("other", "a"))
	assert.Contains(t, string(Key("lookup", "x")), "lookup:")
}
