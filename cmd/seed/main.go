// Package main seeds a local Rootmarks database for development.
//
// It syncs the badge catalog, creates a reader profile with a few books
// (finishing some of them so XP, levels and badges are populated) and
// prints a bearer token for that reader.
//
// Usage:
//
//	DATA_PATH=~/Rootmarks go run ./cmd/seed
//	DATA_PATH=~/Rootmarks go run ./cmd/seed -user reader-2 -finish 3
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rootmarks/rootmarks-server/internal/auth"
	"github.com/rootmarks/rootmarks-server/internal/catalog"
	"github.com/rootmarks/rootmarks-server/internal/config"
	"github.com/rootmarks/rootmarks-server/internal/logger"
	"github.com/rootmarks/rootmarks-server/internal/service"
	"github.com/rootmarks/rootmarks-server/internal/store/sqlite"
	"github.com/rootmarks/rootmarks-server/internal/validation"
)

var sampleBooks = []service.AddBookInput{
	{Title: "The Secret Garden", Author: "Frances Hodgson Burnett", TotalPages: 331},
	{Title: "The Overstory", Author: "Richard Powers", TotalPages: 502},
	{Title: "Braiding Sweetgrass", Author: "Robin Wall Kimmerer", TotalPages: 408},
	{Title: "The Hidden Life of Trees", Author: "Peter Wohlleben", TotalPages: 288},
	{Title: "Piranesi", Author: "Susanna Clarke", TotalPages: 272},
}

func main() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	userID := fs.String("user", "dev-reader", "User ID to seed")
	username := fs.String("username", "Dev Reader", "Display name for the token")
	finish := fs.Int("finish", 2, "How many of the sample books to finish")
	ttl := fs.Duration("ttl", 30*24*time.Hour, "Token lifetime")
	_ = fs.Parse(os.Args[1:])

	// Everything else comes from the environment and .env, like the server.
	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	if err := os.MkdirAll(cfg.Data.BasePath, 0o750); err != nil {
		lg.WithError(err).WithField("path", cfg.Data.BasePath).Fatal("Failed to create data path")
	}

	fmt.Printf("Opening database at: %s\n", cfg.Data.DatabasePath())
	st, err := sqlite.Open(cfg.Data.DatabasePath(), lg.Logger)
	if err != nil {
		lg.WithError(err).Fatal("Failed to open store")
	}
	defer st.Close()

	ctx := context.Background()

	count, err := catalog.NewSyncer(st, cfg.Catalog.Path, nil, lg.Logger).Sync(ctx)
	if err != nil {
		lg.WithError(err).Fatal("Failed to sync badge catalog")
	}
	fmt.Printf("Synced %d badges\n", count)

	profiles := service.NewProfileService(st, lg.Logger)
	badges := service.NewBadgeService(st, nil, nil, lg.Logger)
	books := service.NewBookService(st, badges, validation.New(), nil, nil, lg.Logger)

	if _, err := profiles.GetOrCreateProfile(ctx, *userID, *username); err != nil {
		lg.WithError(err).WithField("user_id", *userID).Fatal("Failed to create profile")
	}

	for n, in := range sampleBooks {
		book, err := books.AddBook(ctx, *userID, in)
		if err != nil {
			lg.WithError(err).WithField("title", in.Title).Fatal("Failed to add book")
		}
		fmt.Printf("  + %s\n", book.Title)

		if n >= *finish {
			continue
		}
		result, err := books.FinishBook(ctx, *userID, book.ID)
		if err != nil {
			lg.WithError(err).WithFields(map[string]any{"book_id": book.ID, "title": in.Title}).Fatal("Failed to finish book")
		}
		fmt.Printf("    finished: +%d XP, level %d, %d badge(s)\n",
			result.XPGained, result.LevelAfter.Level, len(result.BadgesAwarded))
		if result.LeveledUp() {
			fmt.Printf("    level up: %s\n", result.LevelAfter.Title)
		}
	}

	summary, err := profiles.Summary(ctx, *userID)
	if err != nil {
		lg.WithError(err).WithField("user_id", *userID).Fatal("Failed to load profile")
	}
	fmt.Printf("\n%s: level %d, %d XP, %d books, %d pages\n",
		*userID, summary.Level.Level, summary.Profile.ExperiencePoints,
		summary.Profile.TotalBooksRead, summary.Profile.TotalPagesRead)

	key, err := auth.ResolveKey(cfg.Auth.TokenKey, cfg.Data.BasePath)
	if err != nil {
		lg.WithError(err).Fatal("Failed to resolve token key")
	}
	tokens, err := auth.NewTokenService(key, cfg.Auth.Issuer, cfg.Auth.Audience)
	if err != nil {
		lg.WithError(err).Fatal("Failed to create token service")
	}
	token, err := tokens.Mint(*userID, *username, *ttl)
	if err != nil {
		lg.WithError(err).Fatal("Failed to mint token")
	}

	fmt.Printf("\nAuthorization: Bearer %s\n", token)
}
