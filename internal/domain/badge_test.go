package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []*Badge {
	return []*Badge{
		{ID: "first-book", Name: "First Book", RequirementType: RequirementBooksRead, RequirementValue: 1, XPRewardValue: 50},
		{ID: "page-turner", Name: "Page Turner", RequirementType: RequirementPagesRead, RequirementValue: 500},
		{ID: "bookworm", Name: "Bookworm", RequirementType: RequirementBooksRead, RequirementValue: 5, XPRewardValue: 100},
		{ID: "mystery", Name: "Mystery", RequirementType: RequirementKind("streak_days"), RequirementValue: 1},
	}
}

func TestBadge_XPRewardDefault(t *testing.T) {
	assert.Equal(t, 50, (&Badge{}).XPReward())
	assert.Equal(t, 50, (&Badge{XPRewardValue: -3}).XPReward())
	assert.Equal(t, 250, (&Badge{XPRewardValue: 250}).XPReward())
}

func TestBadge_QualifiedBy(t *testing.T) {
	tests := []struct {
		name  string
		badge Badge
		stats ReadingStats
		want  bool
	}{
		{"books below", Badge{RequirementType: RequirementBooksRead, RequirementValue: 5}, ReadingStats{BooksRead: 4}, false},
		{"books equal", Badge{RequirementType: RequirementBooksRead, RequirementValue: 5}, ReadingStats{BooksRead: 5}, true},
		{"books above", Badge{RequirementType: RequirementBooksRead, RequirementValue: 5}, ReadingStats{BooksRead: 9}, true},
		{"pages ignores books", Badge{RequirementType: RequirementPagesRead, RequirementValue: 100}, ReadingStats{BooksRead: 500}, false},
		{"pages equal", Badge{RequirementType: RequirementPagesRead, RequirementValue: 100}, ReadingStats{PagesRead: 100}, true},
		{"unknown kind", Badge{RequirementType: "hours_read", RequirementValue: 1}, ReadingStats{BooksRead: 99, PagesRead: 99}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.badge.QualifiedBy(tt.stats))
		})
	}
}

func TestQualifyingBadges_AllNewInCatalogOrder(t *testing.T) {
	got := QualifyingBadges(testCatalog(), EarnedSet{}, ReadingStats{BooksRead: 5, PagesRead: 600})

	ids := make([]string, 0, len(got))
	for _, b := range got {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"first-book", "page-turner", "bookworm"}, ids)
}

func TestQualifyingBadges_SkipsEarned(t *testing.T) {
	earned := NewEarnedSet([]*EarnedBadge{{BadgeID: "first-book", EarnedAt: time.Now()}})

	got := QualifyingBadges(testCatalog(), earned, ReadingStats{BooksRead: 1})
	assert.Empty(t, got)
}

func TestFirstQualifyingBadge(t *testing.T) {
	catalog := testCatalog()
	stats := ReadingStats{BooksRead: 5, PagesRead: 600}

	first := FirstQualifyingBadge(catalog, EarnedSet{}, stats)
	require.NotNil(t, first)
	assert.Equal(t, "first-book", first.ID)

	earned := EarnedSet{"first-book": time.Now()}
	next := FirstQualifyingBadge(catalog, earned, stats)
	require.NotNil(t, next)
	assert.Equal(t, "page-turner", next.ID)

	assert.Nil(t, FirstQualifyingBadge(catalog, EarnedSet{}, ReadingStats{}))
}

func TestBadge_Validate(t *testing.T) {
	valid := Badge{ID: "b", Name: "B", RequirementType: RequirementPagesRead, RequirementValue: 10, Difficulty: DifficultyHard}
	assert.NoError(t, valid.Validate())

	noDifficulty := valid
	noDifficulty.Difficulty = ""
	assert.NoError(t, noDifficulty.Validate())

	cases := map[string]func(b *Badge){
		"missing id":         func(b *Badge) { b.ID = "" },
		"missing name":       func(b *Badge) { b.Name = "" },
		"unknown kind":       func(b *Badge) { b.RequirementType = "minutes" },
		"zero threshold":     func(b *Badge) { b.RequirementValue = 0 },
		"unknown difficulty": func(b *Badge) { b.Difficulty = "mythic" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			b := valid
			mutate(&b)
			assert.Error(t, b.Validate())
		})
	}
}

func TestMarkEarned(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := MarkEarned(testCatalog(), EarnedSet{"bookworm": at})

	require.Len(t, entries, 4)
	assert.False(t, entries[0].Earned)
	assert.Nil(t, entries[0].EarnedAt)
	assert.True(t, entries[2].Earned)
	require.NotNil(t, entries[2].EarnedAt)
	assert.Equal(t, at, *entries[2].EarnedAt)
}
