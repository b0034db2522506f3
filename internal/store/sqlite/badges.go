package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rootmarks/rootmarks-server/internal/domain"
	"github.com/rootmarks/rootmarks-server/internal/store"
)

const badgeColumns = `id, name, description, icon, requirement_type, requirement_value, difficulty, xp_reward, position`

func scanBadge(scanner interface{ Scan(dest ...any) error }) (*domain.Badge, error) {
	var (
		b           domain.Badge
		requirement string
		difficulty  string
	)

	err := scanner.Scan(
		&b.ID,
		&b.Name,
		&b.Description,
		&b.Icon,
		&requirement,
		&b.RequirementValue,
		&difficulty,
		&b.XPRewardValue,
		&b.Position,
	)
	if err != nil {
		return nil, err
	}

	b.RequirementType = domain.RequirementKind(requirement)
	b.Difficulty = domain.Difficulty(difficulty)
	return &b, nil
}

// ListBadges returns the catalog in catalog order.
func (q *queries) ListBadges(ctx context.Context) ([]*domain.Badge, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+badgeColumns+` FROM badges WHERE retired = 0 ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	badges := make([]*domain.Badge, 0)
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// UpsertBadges inserts or replaces definitions and reactivates retired
// ones. Position follows slice order.
func (q *queries) UpsertBadges(ctx context.Context, badges []*domain.Badge) error {
	for i, b := range badges {
		difficulty := b.Difficulty
		if difficulty == "" {
			difficulty = domain.DifficultyNormal
		}

		_, err := q.q.ExecContext(ctx, `
			INSERT INTO badges (`+badgeColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				icon = excluded.icon,
				requirement_type = excluded.requirement_type,
				requirement_value = excluded.requirement_value,
				difficulty = excluded.difficulty,
				xp_reward = excluded.xp_reward,
				position = excluded.position,
				retired = 0`,
			b.ID,
			b.Name,
			b.Description,
			b.Icon,
			string(b.RequirementType),
			b.RequirementValue,
			string(difficulty),
			b.XPReward(),
			i,
		)
		if err != nil {
			return fmt.Errorf("upsert badge %s: %w", b.ID, err)
		}
	}
	return nil
}

// RetireBadgesExcept hides every active badge not listed in keep from the
// catalog. Earned rows stay so a reader's history survives a catalog edit.
func (q *queries) RetireBadgesExcept(ctx context.Context, keep []string) (int, error) {
	query := `UPDATE badges SET retired = 1 WHERE retired = 0`
	args := make([]any, 0, len(keep))
	if len(keep) > 0 {
		query += ` AND id NOT IN (?` + strings.Repeat(", ?", len(keep)-1) + `)`
		for _, id := range keep {
			args = append(args, id)
		}
	}

	result, err := q.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retire badges: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ReplaceBadges makes badges the whole active catalog atomically.
func (s *Store) ReplaceBadges(ctx context.Context, badges []*domain.Badge) (int, error) {
	keep := make([]string, 0, len(badges))
	for _, b := range badges {
		keep = append(keep, b.ID)
	}

	var retired int
	err := s.InTx(ctx, func(tx store.Tx) error {
		if err := tx.UpsertBadges(ctx, badges); err != nil {
			return err
		}
		var err error
		retired, err = tx.RetireBadgesExcept(ctx, keep)
		return err
	})
	if err != nil {
		return 0, err
	}
	return retired, nil
}

// ListEarnedBadges returns the user's awards with their definitions, oldest first.
func (q *queries) ListEarnedBadges(ctx context.Context, userID string) ([]*domain.EarnedBadge, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT ub.earned_at, b.id, b.name, b.description, b.icon, b.requirement_type,
			b.requirement_value, b.difficulty, b.xp_reward, b.position
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = ?
		ORDER BY ub.earned_at, b.position`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	earned := make([]*domain.EarnedBadge, 0)
	for rows.Next() {
		var (
			e           domain.EarnedBadge
			b           domain.Badge
			earnedAt    string
			requirement string
			difficulty  string
		)
		if err := rows.Scan(
			&earnedAt, &b.ID, &b.Name, &b.Description, &b.Icon, &requirement,
			&b.RequirementValue, &difficulty, &b.XPRewardValue, &b.Position,
		); err != nil {
			return nil, err
		}
		b.RequirementType = domain.RequirementKind(requirement)
		b.Difficulty = domain.Difficulty(difficulty)

		if e.EarnedAt, err = parseTime(earnedAt); err != nil {
			return nil, err
		}
		e.UserID = userID
		e.BadgeID = b.ID
		e.Badge = &b
		earned = append(earned, &e)
	}
	return earned, rows.Err()
}

// InsertEarnedBadge records an award, reporting false when it already exists.
func (q *queries) InsertEarnedBadge(ctx context.Context, userID, badgeID string, earnedAt time.Time) (bool, error) {
	result, err := q.q.ExecContext(ctx, `
		INSERT INTO user_badges (user_id, badge_id, earned_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, badge_id) DO NOTHING`,
		userID, badgeID, formatTime(earnedAt))
	if err != nil {
		return false, fmt.Errorf("insert earned badge: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
