package domain

import (
	"fmt"
	"time"
)

// DefaultBadgeXPReward is credited when a badge definition carries no reward.
const DefaultBadgeXPReward = 50

// RequirementKind names the reading statistic a badge is measured against.
type RequirementKind string

// Known requirement kinds. Anything else never qualifies.
const (
	RequirementBooksRead RequirementKind = "books_read"
	RequirementPagesRead RequirementKind = "pages_read"
)

// Valid reports whether the kind is one the evaluator understands.
func (k RequirementKind) Valid() bool {
	return k == RequirementBooksRead || k == RequirementPagesRead
}

// Difficulty is a display-only grade for a badge.
type Difficulty string

// Badge difficulty grades.
const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyNormal    Difficulty = "normal"
	DifficultyHard      Difficulty = "hard"
	DifficultyLegendary Difficulty = "legendary"
)

// Valid reports whether d is a known grade.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyLegendary:
		return true
	}
	return false
}

// Badge is an immutable catalog definition.
type Badge struct {
	ID               string          `json:"id" yaml:"id"`
	Name             string          `json:"name" yaml:"name"`
	Description      string          `json:"description" yaml:"description"`
	Icon             string          `json:"icon" yaml:"icon"`
	RequirementType  RequirementKind `json:"requirement_type" yaml:"requirement_type"`
	RequirementValue int             `json:"requirement_value" yaml:"requirement_value"`
	Difficulty       Difficulty      `json:"difficulty" yaml:"difficulty"`
	XPRewardValue    int             `json:"xp_reward" yaml:"xp_reward"`
	Position         int             `json:"position" yaml:"-"`
}

// XPReward returns the XP credited on award, falling back to the default.
func (b *Badge) XPReward() int {
	if b.XPRewardValue <= 0 {
		return DefaultBadgeXPReward
	}
	return b.XPRewardValue
}

// QualifiedBy reports whether stats meet the badge's threshold.
func (b *Badge) QualifiedBy(stats ReadingStats) bool {
	switch b.RequirementType {
	case RequirementBooksRead:
		return stats.BooksRead >= b.RequirementValue
	case RequirementPagesRead:
		return stats.PagesRead >= b.RequirementValue
	default:
		return false
	}
}

// Validate checks a definition before it enters the catalog.
func (b *Badge) Validate() error {
	switch {
	case b.ID == "":
		return fmt.Errorf("badge id is required")
	case b.Name == "":
		return fmt.Errorf("badge %s: name is required", b.ID)
	case !b.RequirementType.Valid():
		return fmt.Errorf("badge %s: unknown requirement type %q", b.ID, b.RequirementType)
	case b.RequirementValue <= 0:
		return fmt.Errorf("badge %s: requirement value must be positive", b.ID)
	case b.Difficulty != "" && !b.Difficulty.Valid():
		return fmt.Errorf("badge %s: unknown difficulty %q", b.ID, b.Difficulty)
	}
	return nil
}

// EarnedBadge records that a user earned a badge. At most one exists per
// (UserID, BadgeID).
type EarnedBadge struct {
	UserID   string    `json:"user_id"`
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
	Badge    *Badge    `json:"badge,omitempty"`
}

// EarnedSet indexes earned badge ids.
type EarnedSet map[string]time.Time

// NewEarnedSet builds an EarnedSet from earned relations.
func NewEarnedSet(earned []*EarnedBadge) EarnedSet {
	set := make(EarnedSet, len(earned))
	for _, e := range earned {
		set[e.BadgeID] = e.EarnedAt
	}
	return set
}

// Has reports whether badgeID was earned.
func (s EarnedSet) Has(badgeID string) bool {
	_, ok := s[badgeID]
	return ok
}

// QualifyingBadges returns every catalog badge, in catalog order, that the
// stats satisfy and that has not been earned yet.
func QualifyingBadges(catalog []*Badge, earned EarnedSet, stats ReadingStats) []*Badge {
	var out []*Badge
	for _, b := range catalog {
		if earned.Has(b.ID) {
			continue
		}
		if b.QualifiedBy(stats) {
			out = append(out, b)
		}
	}
	return out
}

// FirstQualifyingBadge returns the first badge QualifyingBadges would return,
// or nil. It serves callers that award one badge per event.
func FirstQualifyingBadge(catalog []*Badge, earned EarnedSet, stats ReadingStats) *Badge {
	for _, b := range catalog {
		if !earned.Has(b.ID) && b.QualifiedBy(stats) {
			return b
		}
	}
	return nil
}

// CatalogEntry is a badge with the viewer's earned marker.
type CatalogEntry struct {
	Badge
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

// MarkEarned pairs every catalog badge with its earned state.
func MarkEarned(catalog []*Badge, earned EarnedSet) []CatalogEntry {
	out := make([]CatalogEntry, 0, len(catalog))
	for _, b := range catalog {
		entry := CatalogEntry{Badge: *b}
		if at, ok := earned[b.ID]; ok {
			entry.Earned = true
			entry.EarnedAt = &at
		}
		out = append(out, entry)
	}
	return out
}
