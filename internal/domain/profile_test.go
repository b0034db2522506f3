package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProfile_Defaults(t *testing.T) {
	p := NewProfile("user-1", "reader")

	assert.Equal(t, "user-1", p.ID)
	assert.Equal(t, DefaultAvatar, p.AvatarID)
	assert.Zero(t, p.ExperiencePoints)
	assert.Equal(t, 1, p.Level().Level)
}

func TestProfile_Stats(t *testing.T) {
	p := &Profile{TotalBooksRead: 3, TotalPagesRead: 900, ExperiencePoints: 600}

	assert.Equal(t, ReadingStats{BooksRead: 3, PagesRead: 900}, p.Stats())
	assert.Equal(t, "Adept Reader", p.Level().Title)
}

func TestAvatars(t *testing.T) {
	all := Avatars()
	assert.Len(t, all, 16)
	assert.Equal(t, DefaultAvatar, all[0].ID)

	fox, ok := LookupAvatar("fox")
	assert.True(t, ok)
	assert.Equal(t, "Clever Fox", fox.Name)

	_, ok = LookupAvatar("kraken")
	assert.False(t, ok)
}

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name       string
		analysis   string
		wantStatus string
	}{
		{"first line", "Healthy\nWater weekly.", "Healthy"},
		{"skips blank lines", "\n\n  Needs water  \nMore tips", "Needs water"},
		{"strips markdown", "**Mildly stressed**\n- Move to shade", "Mildly stressed"},
		{"heading", "## Overwatered\nLet soil dry.", "Overwatered"},
		{"empty", "   ", UnknownHealthStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, tips := ParseAnalysis(tt.analysis)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, strings.TrimSpace(tt.analysis), tips)
		})
	}
}
