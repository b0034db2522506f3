package domain

import "time"

// Profile is a reader's gamification state. XP never decreases.
type Profile struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	TotalBooksRead   int       `json:"total_books_read"`
	TotalPagesRead   int       `json:"total_pages_read"`
	ExperiencePoints int       `json:"experience_points"`
	AvatarID         AvatarID  `json:"avatar_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewProfile creates an empty profile for userID with the default avatar.
func NewProfile(userID, username string) *Profile {
	now := time.Now()
	return &Profile{
		ID:        userID,
		Username:  username,
		AvatarID:  DefaultAvatar,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Stats returns the statistics badges are evaluated against.
func (p *Profile) Stats() ReadingStats {
	return ReadingStats{BooksRead: p.TotalBooksRead, PagesRead: p.TotalPagesRead}
}

// Level resolves the profile's current tier.
func (p *Profile) Level() LevelInfo {
	return ResolveLevel(p.ExperiencePoints)
}

// ReadingStats are the counters badge requirements compare against.
type ReadingStats struct {
	BooksRead int `json:"books_read"`
	PagesRead int `json:"pages_read"`
}

// ProfileCredit is an additive change to a profile. Negative values are
// never produced by the services.
type ProfileCredit struct {
	Books int
	Pages int
	XP    int
}
