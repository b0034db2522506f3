package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/rootmarks/rootmarks-server/internal/domain"
	domainerrors "github.com/rootmarks/rootmarks-server/internal/errors"
	"github.com/rootmarks/rootmarks-server/internal/store"
)

// ProfileService manages reader profiles.
type ProfileService struct {
	store  store.Store
	logger *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(store store.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: store, logger: logger}
}

// GetOrCreateProfile returns the user's profile, creating an empty one on
// first access. Concurrent first accesses converge on the same row.
func (s *ProfileService) GetOrCreateProfile(ctx context.Context, userID, username string) (*domain.Profile, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	profile = domain.NewProfile(userID, username)
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.store.GetProfile(ctx, userID)
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}

	s.logger.Info("created profile", "user_id", userID)
	return profile, nil
}

// SelectAvatar sets the profile picture. Unknown ids are a validation error.
func (s *ProfileService) SelectAvatar(ctx context.Context, userID string, avatarID domain.AvatarID) (*domain.Profile, error) {
	if _, ok := domain.LookupAvatar(avatarID); !ok {
		return nil, domainerrors.Validationf("unknown avatar %q", avatarID)
	}

	if err := s.store.UpdateProfileAvatar(ctx, userID, avatarID); err != nil {
		return nil, notFound(err, "profile %s not found", userID)
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, notFound(err, "profile %s not found", userID)
	}
	return profile, nil
}

// ProfileSummary is everything the profile screen renders.
type ProfileSummary struct {
	Profile       *domain.Profile    `json:"profile"`
	Avatar        domain.Avatar      `json:"avatar"`
	Level         domain.LevelInfo   `json:"level"`
	BadgesEarned  int                `json:"badges_earned"`
	BooksReading  int                `json:"books_reading"`
	BooksFinished int                `json:"books_finished"`
	Tiers         []domain.LevelTier `json:"tiers"`
}

// Summary loads the profile with its level, badge count, and shelf counts.
func (s *ProfileService) Summary(ctx context.Context, userID string) (*ProfileSummary, error) {
	var (
		profile *domain.Profile
		earned  []*domain.EarnedBadge
		counts  map[domain.BookStatus]int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.store.GetProfile(gctx, userID)
		if err != nil {
			return notFound(err, "profile %s not found", userID)
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
		counts, err = s.store.CountBooksByStatus(gctx, userID)
		if err != nil {
			return fmt.Errorf("count books: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	avatar, ok := domain.LookupAvatar(profile.AvatarID)
	if !ok {
		avatar, _ = domain.LookupAvatar(domain.DefaultAvatar)
	}

	return &ProfileSummary{
		Profile:       profile,
		Avatar:        avatar,
		Level:         profile.Level(),
		BadgesEarned:  len(earned),
		BooksReading:  counts[domain.BookStatusReading],
		BooksFinished: counts[domain.BookStatusFinished],
		Tiers:         domain.LevelTiers(),
	}, nil
}
