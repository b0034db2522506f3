package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rootmarks/rootmarks-server/internal/domain"
	domainerrors "github.com/rootmarks/rootmarks-server/internal/errors"
	"github.com/rootmarks/rootmarks-server/internal/id"
	"github.com/rootmarks/rootmarks-server/internal/metrics"
	"github.com/rootmarks/rootmarks-server/internal/normalize"
	"github.com/rootmarks/rootmarks-server/internal/sse"
	"github.com/rootmarks/rootmarks-server/internal/store"
	"github.com/rootmarks/rootmarks-server/internal/validation"
)

// BookService manages a reader's shelf and runs the completion workflow.
type BookService struct {
	store     store.Store
	badges    *BadgeService
	validator *validation.Validator
	emitter   sse.Emitter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewBookService creates a new book service. emitter and m may be nil.
func NewBookService(
	store store.Store,
	badges *BadgeService,
	validator *validation.Validator,
	emitter sse.Emitter,
	m *metrics.Metrics,
	logger *slog.Logger,
) *BookService {
	return &BookService{
		store:     store,
		badges:    badges,
		validator: validator,
		emitter:   emitter,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// AddBookInput describes a book to put on the shelf.
type AddBookInput struct {
	Title      string `json:"title" validate:"notblank,max=300"`
	Author     string `json:"author" validate:"notblank,max=200"`
	TotalPages int    `json:"total_pages" validate:"gt=0,lte=100000"`
	CoverURL   string `json:"cover_url,omitempty" validate:"omitempty,http_url,max=2048"`
}

// AddBook normalizes and validates input, then stores a new reading book.
func (s *BookService) AddBook(ctx context.Context, userID string, in AddBookInput) (*domain.Book, error) {
	in.Title = normalize.Text(in.Title)
	in.Author = normalize.Text(in.Author)
	in.CoverURL = normalize.HTTPS(normalize.Text(in.CoverURL))

	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, err
	}

	book := domain.NewBook(bookID, userID, in.Title, in.Author, in.TotalPages, in.CoverURL)
	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("book added", "user_id", userID, "book_id", book.ID, "pages", book.TotalPages)
	return book, nil
}

// ListBooks returns the user's books, newest first.
func (s *BookService) ListBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// GetBook returns one of the user's books.
func (s *BookService) GetBook(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, userID, bookID)
	if err != nil {
		return nil, notFound(err, "book %s not found", bookID)
	}
	return book, nil
}

// UpdateProgress records pages read. Values above the page count are
// clamped; finished books cannot change.
func (s *BookService) UpdateProgress(ctx context.Context, userID, bookID string, pagesRead int) (*domain.Book, error) {
	if err := s.validator.Var("pages_read", pagesRead, "gte=0"); err != nil {
		return nil, err
	}

	var book *domain.Book
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		b, err := tx.GetBook(ctx, userID, bookID)
		if err != nil {
			return notFound(err, "book %s not found", bookID)
		}
		if b.IsFinished() {
			return domainerrors.Conflictf("book %s is already finished", bookID)
		}

		b.SetPagesRead(pagesRead)
		b.UpdatedAt = s.now()
		if err := tx.SetBookProgress(ctx, userID, bookID, b.PagesRead, b.Progress, b.UpdatedAt); err != nil {
			return bookWriteError(err, bookID)
		}
		book = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateRating sets a 0-5 rating. Finished books may be rated.
func (s *BookService) UpdateRating(ctx context.Context, userID, bookID string, rating int) (*domain.Book, error) {
	if err := s.validator.Var("rating", rating, fmt.Sprintf("gte=%d,lte=%d", domain.MinRating, domain.MaxRating)); err != nil {
		return nil, err
	}

	var book *domain.Book
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		now := s.now()
		if err := tx.SetBookRating(ctx, userID, bookID, rating, now); err != nil {
			return bookWriteError(err, bookID)
		}
		b, err := tx.GetBook(ctx, userID, bookID)
		if err != nil {
			return fmt.Errorf("reload book: %w", err)
		}
		book = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook removes a book. Credit already earned from it is kept.
func (s *BookService) DeleteBook(ctx context.Context, userID, bookID string) error {
	if err := s.store.DeleteBook(ctx, userID, bookID); err != nil {
		return notFound(err, "book %s not found", bookID)
	}
	s.logger.Info("book deleted", "user_id", userID, "book_id", bookID)
	return nil
}

// FinishResult is the outcome of the completion workflow.
type FinishResult struct {
	Book          *domain.Book     `json:"book"`
	BookXP        int              `json:"book_xp"`
	XPGained      int              `json:"xp_gained"`
	BadgesAwarded []*domain.Badge  `json:"badges_awarded"`
	LevelBefore   domain.LevelInfo `json:"level_before"`
	LevelAfter    domain.LevelInfo `json:"level_after"`
	Profile       *domain.Profile  `json:"profile"`
}

// LeveledUp reports whether the workflow moved the reader into a new tier.
func (r *FinishResult) LeveledUp() bool {
	return r.LevelAfter.Level > r.LevelBefore.Level
}

// FinishBook marks a book finished, credits the reader, and awards every
// badge the new totals qualify for, all in one transaction. Finishing a
// finished book is a conflict and credits nothing.
func (s *BookService) FinishBook(ctx context.Context, userID, bookID string) (*FinishResult, error) {
	result := FinishResult{BadgesAwarded: []*domain.Badge{}}

	err := s.store.InTx(ctx, func(tx store.Tx) error {
		book, err := tx.GetBook(ctx, userID, bookID)
		if err != nil {
			return notFound(err, "book %s not found", bookID)
		}
		if book.IsFinished() {
			return domainerrors.Conflictf("book %s is already finished", bookID)
		}

		profile, err := tx.GetProfile(ctx, userID)
		if err != nil {
			return notFound(err, "profile %s not found", userID)
		}
		result.LevelBefore = profile.Level()

		now := s.now()
		if err := tx.MarkBookFinished(ctx, userID, bookID, now); err != nil {
			return bookWriteError(err, bookID)
		}
		book.Finish(now)

		xp := book.FinishXP()
		credit := domain.ProfileCredit{Books: 1, Pages: book.TotalPages, XP: xp}
		if err := tx.CreditProfile(ctx, userID, credit); err != nil {
			return fmt.Errorf("credit profile: %w", err)
		}

		// Badges are evaluated against the credited totals.
		if profile, err = tx.GetProfile(ctx, userID); err != nil {
			return fmt.Errorf("reload profile: %w", err)
		}

		awarded, badgeXP, err := s.badges.evaluateAndAward(ctx, tx, userID, profile.Stats(), now)
		if err != nil {
			return err
		}
		if len(awarded) > 0 {
			if profile, err = tx.GetProfile(ctx, userID); err != nil {
				return fmt.Errorf("reload profile: %w", err)
			}
			result.BadgesAwarded = awarded
		}

		result.Book = book
		result.BookXP = xp
		result.XPGained = xp + badgeXP
		result.Profile = profile
		result.LevelAfter = profile.Level()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book finished",
		"user_id", userID,
		"book_id", bookID,
		"xp_gained", result.XPGained,
		"badges", len(result.BadgesAwarded),
		"leveled_up", result.LeveledUp())

	s.metrics.BookFinished(result.BookXP)
	if s.emitter != nil {
		s.emitter.Emit(sse.NewBookFinishedEvent(userID, result.Book, result.BookXP))
	}
	s.badges.notify(userID, result.BadgesAwarded)
	s.badges.notifyLevel(userID, result.LevelBefore, result.LevelAfter)

	return &result, nil
}
