package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rootmarks/rootmarks-server/internal/domain"
	"github.com/rootmarks/rootmarks-server/internal/metrics"
	"github.com/rootmarks/rootmarks-server/internal/sse"
	"github.com/rootmarks/rootmarks-server/internal/store"
)

// BadgeService evaluates and awards badges.
type BadgeService struct {
	store   store.Store
	emitter sse.Emitter
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewBadgeService creates a new badge service. emitter and m may be nil.
func NewBadgeService(store store.Store, emitter sse.Emitter, m *metrics.Metrics, logger *slog.Logger) *BadgeService {
	return &BadgeService{
		store:   store,
		emitter: emitter,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// BadgeCatalog is the full catalog as seen by one user.
type BadgeCatalog struct {
	Badges      []domain.CatalogEntry `json:"badges"`
	EarnedCount int                   `json:"earned_count"`
	Total       int                   `json:"total"`
	Stats       domain.ReadingStats   `json:"stats"`
}

// Catalog returns every badge with the user's earned markers and the stats
// progress is measured against.
func (s *BadgeService) Catalog(ctx context.Context, userID string) (*BadgeCatalog, error) {
	var (
		badges  []*domain.Badge
		earned  []*domain.EarnedBadge
		profile *domain.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		badges, err = s.store.ListBadges(gctx)
		if err != nil {
			return fmt.Errorf("list badges: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		earned, err = s.store.ListEarnedBadges(gctx, userID)
		if err != nil {
			return fmt.Errorf("list earned badges: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		profile, err = s.store.GetProfile(gctx, userID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("get profile: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var stats domain.ReadingStats
	if profile != nil {
		stats = profile.Stats()
	}

	entries := domain.MarkEarned(badges, domain.NewEarnedSet(earned))
	count := 0
	for _, e := range entries {
		if e.Earned {
			count++
		}
	}

	return &BadgeCatalog{
		Badges:      entries,
		EarnedCount: count,
		Total:       len(entries),
		Stats:       stats,
	}, nil
}

// Award grants badge to the user and credits its XP. It reports false,
// without error, when the user already holds the badge.
func (s *BadgeService) Award(ctx context.Context, userID string, badge *domain.Badge) (bool, error) {
	var awarded bool
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		awarded, err = s.award(ctx, tx, userID, badge, s.now())
		return err
	})
	if err != nil {
		return false, err
	}

	if awarded {
		s.notify(userID, []*domain.Badge{badge})
	}
	return awarded, nil
}

// AwardResult describes the badges granted by one evaluation.
type AwardResult struct {
	Awarded     []*domain.Badge  `json:"badges_awarded"`
	XPGained    int              `json:"xp_gained"`
	LevelBefore domain.LevelInfo `json:"level_before"`
	LevelAfter  domain.LevelInfo `json:"level_after"`
	Profile     *domain.Profile  `json:"profile"`
}

// CheckAndAward evaluates the catalog against the user's current stats and
// awards everything newly earned.
func (s *BadgeService) CheckAndAward(ctx context.Context, userID string) (*AwardResult, error) {
	result := AwardResult{Awarded: []*domain.Badge{}}

	err := s.store.InTx(ctx, func(tx store.Tx) error {
		profile, err := tx.GetProfile(ctx, userID)
		if err != nil {
			return notFound(err, "profile %s not found", userID)
		}
		result.LevelBefore = profile.Level()

		awarded, xp, err := s.evaluateAndAward(ctx, tx, userID, profile.Stats(), s.now())
		if err != nil {
			return err
		}
		result.Awarded = append(result.Awarded, awarded...)
		result.XPGained = xp

		if len(awarded) > 0 {
			if profile, err = tx.GetProfile(ctx, userID); err != nil {
				return fmt.Errorf("reload profile: %w", err)
			}
		}
		result.Profile = profile
		result.LevelAfter = profile.Level()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(userID, result.Awarded)
	s.notifyLevel(userID, result.LevelBefore, result.LevelAfter)
	return &result, nil
}

// evaluateAndAward awards every badge stats newly qualify for, in catalog
// order, and returns them with the XP they credited.
func (s *BadgeService) evaluateAndAward(ctx context.Context, tx store.Tx, userID string, stats domain.ReadingStats, at time.Time) ([]*domain.Badge, int, error) {
	catalog, err := tx.ListBadges(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list badges: %w", err)
	}
	earned, err := tx.ListEarnedBadges(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("list earned badges: %w", err)
	}

	var (
		awarded []*domain.Badge
		xp      int
	)
	for _, badge := range domain.QualifyingBadges(catalog, domain.NewEarnedSet(earned), stats) {
		ok, err := s.award(ctx, tx, userID, badge, at)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			awarded = append(awarded, badge)
			xp += badge.XPReward()
		}
	}
	return awarded, xp, nil
}

// award inserts the earned relation and, only when it was new, credits XP.
func (s *BadgeService) award(ctx context.Context, tx store.Tx, userID string, badge *domain.Badge, at time.Time) (bool, error) {
	inserted, err := tx.InsertEarnedBadge(ctx, userID, badge.ID, at)
	if err != nil {
		return false, fmt.Errorf("record badge %s: %w", badge.ID, err)
	}
	if !inserted {
		s.logger.Debug("badge already earned", "user_id", userID, "badge_id", badge.ID)
		return false, nil
	}

	if err := tx.CreditProfile(ctx, userID, domain.ProfileCredit{XP: badge.XPReward()}); err != nil {
		return false, fmt.Errorf("credit badge xp: %w", err)
	}
	return true, nil
}

// notify publishes committed awards.
func (s *BadgeService) notify(userID string, badges []*domain.Badge) {
	for _, b := range badges {
		s.logger.Info("badge awarded", "user_id", userID, "badge_id", b.ID, "xp", b.XPReward())
		s.metrics.BadgeAwarded(b.ID, b.XPReward())
		if s.emitter != nil {
			s.emitter.Emit(sse.NewBadgeEarnedEvent(userID, *b))
		}
	}
}

func (s *BadgeService) notifyLevel(userID string, before, after domain.LevelInfo) {
	if after.Level <= before.Level {
		return
	}
	s.logger.Info("level up", "user_id", userID, "from", before.Level, "to", after.Level)
	if s.emitter != nil {
		s.emitter.Emit(sse.NewLevelUpEvent(userID, before, after))
	}
}
