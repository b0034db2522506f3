package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rootmarks/rootmarks-server/internal/domain"
	"github.com/rootmarks/rootmarks-server/internal/store"
)

// profileColumns must match the scan order in scanProfile.
const profileColumns = `id, username, total_books_read, total_pages_read, experience_points, avatar_id, created_at, updated_at`

func scanProfile(scanner interface{ Scan(dest ...any) error }) (*domain.Profile, error) {
	var (
		p         domain.Profile
		avatarID  string
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&p.ID,
		&p.Username,
		&p.TotalBooksRead,
		&p.TotalPagesRead,
		&p.ExperiencePoints,
		&avatarID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.AvatarID = domain.AvatarID(avatarID)
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfile retrieves a profile by user ID.
func (q *queries) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, userID)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProfile inserts a new profile.
func (q *queries) CreateProfile(ctx context.Context, p *domain.Profile) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Username,
		p.TotalBooksRead,
		p.TotalPagesRead,
		p.ExperiencePoints,
		string(p.AvatarID),
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithCause(err)
	}
	return err
}

// UpdateProfileAvatar sets the profile's avatar.
func (q *queries) UpdateProfileAvatar(ctx context.Context, userID string, avatar domain.AvatarID) error {
	result, err := q.q.ExecContext(ctx,
		`UPDATE profiles SET avatar_id = ?, updated_at = ? WHERE id = ?`,
		string(avatar), formatTime(time.Now()), userID)
	if err != nil {
		return err
	}
	return expectOne(result)
}

// CreditProfile increments the profile counters in one statement so
// concurrent credits never lose an update.
func (q *queries) CreditProfile(ctx context.Context, userID string, c domain.ProfileCredit) error {
	result, err := q.q.ExecContext(ctx, `
		UPDATE profiles SET
			total_books_read  = total_books_read + ?,
			total_pages_read  = total_pages_read + ?,
			experience_points = experience_points + ?,
			updated_at        = ?
		WHERE id = ?`,
		c.Books, c.Pages, c.XP, formatTime(time.Now()), userID)
	if err != nil {
		return err
	}
	return expectOne(result)
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY failure.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}
