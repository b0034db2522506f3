package catalog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootmarks/rootmarks-server/internal/domain"
	"github.com/rootmarks/rootmarks-server/internal/sse"
	"github.com/rootmarks/rootmarks-server/internal/store/sqlite"
)

type fakeReplacer struct {
	mu    sync.Mutex
	calls [][]*domain.Badge
	err   error
}

func (f *fakeReplacer) ReplaceBadges(_ context.Context, badges []*domain.Badge) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.calls = append(f.calls, badges)
	return 0, nil
}

func (f *fakeReplacer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeReplacer) last() []*domain.Badge {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (f *fakeEmitter) Emit(e sse.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const twoBadges = `
badges:
  - id: one
    name: One
    requirement_type: books_read
    requirement_value: 1
  - id: pages
    name: Pages
    requirement_type: pages_read
    requirement_value: 100
    difficulty: hard
    xp_reward: 75
`

func TestDefault(t *testing.T) {
	badges := Default()
	require.Len(t, badges, 8)

	assert.Equal(t, "first-book", badges[0].ID)
	assert.Equal(t, domain.RequirementBooksRead, badges[0].RequirementType)
	assert.Equal(t, 1, badges[0].RequirementValue)

	icons := make(map[string]bool)
	for i, b := range badges {
		assert.Equal(t, i, b.Position)
		icons[b.Icon] = true
	}
	for _, icon := range []string{"book", "book-open", "library", "file-text", "scroll", "trophy", "crown", "star"} {
		assert.True(t, icons[icon], "missing icon %s", icon)
	}
}

func TestParse(t *testing.T) {
	badges, err := Parse([]byte(twoBadges))
	require.NoError(t, err)
	require.Len(t, badges, 2)

	assert.Equal(t, domain.DifficultyNormal, badges[0].Difficulty)
	assert.Equal(t, domain.DefaultBadgeXPReward, badges[0].XPReward())
	assert.Equal(t, 75, badges[1].XPReward())
	assert.Equal(t, 1, badges[1].Position)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"null badges", "badges:\n"},
		{"no badges key", "{}"},
		{"unknown field", "badges:\n  - id: a\n    name: A\n    requirement_type: books_read\n    requirement_value: 1\n    colour: red\n"},
		{"unknown kind", "badges:\n  - id: a\n    name: A\n    requirement_type: minutes_read\n    requirement_value: 1\n"},
		{"zero threshold", "badges:\n  - id: a\n    name: A\n    requirement_type: books_read\n    requirement_value: 0\n"},
		{"bad difficulty", "badges:\n  - id: a\n    name: A\n    requirement_type: books_read\n    requirement_value: 1\n    difficulty: mythic\n"},
		{"duplicate id", "badges:\n  - id: a\n    name: A\n    requirement_type: books_read\n    requirement_value: 1\n  - id: a\n    name: B\n    requirement_type: pages_read\n    requirement_value: 5\n"},
		{"not yaml", "badges: [oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParse_EmptyListIsValid(t *testing.T) {
	badges, err := Parse([]byte("badges: []"))
	require.NoError(t, err)
	assert.Empty(t, badges)
}

func TestLoad(t *testing.T) {
	badges, err := Load("")
	require.NoError(t, err)
	assert.Len(t, badges, 8)

	path := filepath.Join(t.TempDir(), "badges.yaml")
	require.NoError(t, os.WriteFile(path, []byte(twoBadges), 0o600))
	badges, err = Load(path)
	require.NoError(t, err)
	assert.Len(t, badges, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSyncer_Sync(t *testing.T) {
	store := &fakeReplacer{}
	emitter := &fakeEmitter{}
	s := NewSyncer(store, "", emitter, discardLogger())

	n, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, 1, store.count())

	require.Len(t, emitter.events, 1)
	assert.Equal(t, sse.EventCatalogUpdated, emitter.events[0].Type)
	assert.Empty(t, emitter.events[0].UserID)
}

func TestSyncer_SyncInvalidFileKeepsStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badges.yaml")
	require.NoError(t, os.WriteFile(path, []byte("badges:\n  - id: a\n"), 0o600))

	store := &fakeReplacer{}
	_, err := NewSyncer(store, path, nil, discardLogger()).Sync(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, store.count())
}

func TestSyncer_SyncRetiresRemovedBadges(t *testing.T) {
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "badges.yaml")
	require.NoError(t, os.WriteFile(path, []byte(twoBadges), 0o600))
	s := NewSyncer(st, path, nil, discardLogger())

	_, err = s.Sync(ctx)
	require.NoError(t, err)

	onlyPages := "badges:\n  - id: pages\n    name: Pages\n    requirement_type: pages_read\n    requirement_value: 100\n"
	require.NoError(t, os.WriteFile(path, []byte(onlyPages), 0o600))
	n, err := s.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	badges, err := st.ListBadges(ctx)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, "pages", badges[0].ID)
	assert.Equal(t, 0, badges[0].Position)

	require.NoError(t, os.WriteFile(path, []byte("badges: []"), 0o600))
	n, err = s.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	badges, err = st.ListBadges(ctx)
	require.NoError(t, err)
	assert.Empty(t, badges)
}

func TestSyncer_WatchResyncsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badges.yaml")
	require.NoError(t, os.WriteFile(path, []byte(twoBadges), 0o600))

	store := &fakeReplacer{}
	s := NewSyncer(store, path, nil, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, 10*time.Millisecond) }()

	single := "badges:\n  - id: solo\n    name: Solo\n    requirement_type: books_read\n    requirement_value: 3\n"

	// Rewrite until the watcher has registered and picked the change up.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(single), 0o600)
		return store.count() > 0
	}, 3*time.Second, 50*time.Millisecond)

	last := store.last()
	require.Len(t, last, 1)
	assert.Equal(t, "solo", last[0].ID)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestSyncer_WatchRequiresPath(t *testing.T) {
	s := NewSyncer(&fakeReplacer{}, "", nil, discardLogger())
	assert.Error(t, s.Watch(context.Background(), 0))
}
