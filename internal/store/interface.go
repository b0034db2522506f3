// Package store defines the persistence interface for Rootmarks.
package store

import (
	"context"
	"time"

	"github.com/rootmarks/rootmarks-server/internal/domain"
)

// Store is the record store. Every repository method is also available inside
// a transaction through InTx.
type Store interface {
	Tx

	// InTx runs fn in a single transaction. It commits when fn returns nil and
	// rolls back otherwise.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// ReplaceBadges makes badges the whole active catalog in one
	// transaction and reports how many stored badges it retired.
	ReplaceBadges(ctx context.Context, badges []*domain.Badge) (int, error)

	Ping(ctx context.Context) error
	Close() error
}

// Tx is the set of repositories that can participate in a transaction.
type Tx interface {
	ProfileStore
	BookStore
	BadgeStore
	PlantScanStore
}

// ProfileStore persists reader profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	// CreateProfile returns ErrAlreadyExists when the id is taken.
	CreateProfile(ctx context.Context, profile *domain.Profile) error
	UpdateProfileAvatar(ctx context.Context, userID string, avatar domain.AvatarID) error
	// CreditProfile adds credit to the profile counters atomically.
	CreditProfile(ctx context.Context, userID string, credit domain.ProfileCredit) error
}

// BookStore persists books. Reads are scoped to the owning user.
type BookStore interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, userID, bookID string) (*domain.Book, error)
	// ListBooks returns the user's books newest first.
	ListBooks(ctx context.Context, userID string) ([]*domain.Book, error)
	// SetBookProgress records pages read on a book that is still being read.
	// It returns ErrConflict when the book is finished.
	SetBookProgress(ctx context.Context, userID, bookID string, pagesRead, progress int, at time.Time) error
	SetBookRating(ctx context.Context, userID, bookID string, rating int, at time.Time) error
	// MarkBookFinished moves a reading book to finished with every page read.
	// It returns ErrConflict when the book is already finished.
	MarkBookFinished(ctx context.Context, userID, bookID string, at time.Time) error
	DeleteBook(ctx context.Context, userID, bookID string) error
	CountBooksByStatus(ctx context.Context, userID string) (map[domain.BookStatus]int, error)
}

// BadgeStore persists the badge catalog and earned relations.
type BadgeStore interface {
	// ListBadges returns the active catalog in catalog order.
	ListBadges(ctx context.Context) ([]*domain.Badge, error)
	// UpsertBadges inserts or replaces definitions, assigning Position from
	// slice order. Upserted badges are active.
	UpsertBadges(ctx context.Context, badges []*domain.Badge) error
	// RetireBadgesExcept retires every active badge whose id is not in keep
	// and reports how many it retired. Earned rows are kept.
	RetireBadgesExcept(ctx context.Context, keep []string) (int, error)
	ListEarnedBadges(ctx context.Context, userID string) ([]*domain.EarnedBadge, error)
	// InsertEarnedBadge records an award. It reports false without error when
	// the user already holds the badge.
	InsertEarnedBadge(ctx context.Context, userID, badgeID string, earnedAt time.Time) (bool, error)
}

// PlantScanStore persists plant scans.
type PlantScanStore interface {
	CreatePlantScan(ctx context.Context, scan *domain.PlantScan) error
	GetPlantScan(ctx context.Context, userID, scanID string) (*domain.PlantScan, error)
	// ListPlantScans returns the user's scans newest first.
	ListPlantScans(ctx context.Context, userID string) ([]*domain.PlantScan, error)
}
