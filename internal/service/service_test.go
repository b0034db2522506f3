package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rootmarks/rootmarks-server/internal/catalog"
	"github.com/rootmarks/rootmarks-server/internal/domain"
	"github.com/rootmarks/rootmarks-server/internal/metrics"
	"github.com/rootmarks/rootmarks-server/internal/sse"
	"github.com/rootmarks/rootmarks-server/internal/store"
	"github.com/rootmarks/rootmarks-server/internal/store/sqlite"
	"github.com/rootmarks/rootmarks-server/internal/validation"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(e sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	store    *sqlite.Store
	emitter  *recordingEmitter
	metrics  *metrics.Metrics
	profiles *ProfileService
	badges   *BadgeService
	books    *BookService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.UpsertBadges(context.Background(), catalog.Default()))
	return s
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, openTestStore(t))
}

func newTestEnvWithStore(t *testing.T, s store.Store) *testEnv {
	t.Helper()
	logger := discardLogger()
	emitter := &recordingEmitter{}
	m := metrics.New()

	badges := NewBadgeService(s, emitter, m, logger)
	env := &testEnv{
		emitter:  emitter,
		metrics:  m,
		profiles: NewProfileService(s, logger),
		badges:   badges,
		books:    NewBookService(s, badges, validation.New(), emitter, m, logger),
	}
	if sq, ok := s.(*sqlite.Store); ok {
		env.store = sq
	}
	return env
}

func (e *testEnv) newReader(t *testing.T, userID string) *domain.Profile {
	t.Helper()
	p, err := e.profiles.GetOrCreateProfile(context.Background(), userID, userID)
	require.NoError(t, err)
	return p
}

func (e *testEnv) addBook(t *testing.T, userID string, pages int) *domain.Book {
	t.Helper()
	b, err := e.books.AddBook(context.Background(), userID, AddBookInput{
		Title:      "Book",
		Author:     "Author",
		TotalPages: pages,
	})
	require.NoError(t, err)
	return b
}
