// Package service holds the Rootmarks business workflows. Handlers call
// services; services own transactions, validation, and side effects.
package service

import (
	"errors"
	"fmt"

	domainerrors "github.com/rootmarks/rootmarks-server/internal/errors"
	"github.com/rootmarks/rootmarks-server/internal/store"
)

// notFound maps a store miss to a domain not-found error and wraps anything
// else with context.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFoundf(format, args...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// bookWriteError maps a failed book write. Only a missing book reads as not
// found; a write refused by the book's state is a conflict.
func bookWriteError(err error, bookID string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFoundf("book %s not found", bookID)
	case errors.Is(err, store.ErrConflict):
		return domainerrors.Conflictf("book %s is already finished", bookID)
	default:
		return fmt.Errorf("update book: %w", err)
	}
}
