package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rootmarks/rootmarks-server/internal/domain"
	"github.com/rootmarks/rootmarks-server/internal/store"
)

// bookColumns must match the scan order in scanBook.
const bookColumns = `id, user_id, title, author, total_pages, pages_read, progress, rating,
	status, cover_url, created_at, updated_at, finished_at`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b          domain.Book
		status     string
		coverURL   sql.NullString
		createdAt  string
		updatedAt  string
		finishedAt sql.NullString
	)

	err := scanner.Scan(
		&b.ID,
		&b.UserID,
		&b.Title,
		&b.Author,
		&b.TotalPages,
		&b.PagesRead,
		&b.Progress,
		&b.Rating,
		&status,
		&coverURL,
		&createdAt,
		&updatedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Status = domain.BookStatus(status)
	b.CoverURL = coverURL.String
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if b.FinishedAt, err = parseNullableTime(finishedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBook inserts a new book.
func (q *queries) CreateBook(ctx context.Context, b *domain.Book) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.UserID,
		b.Title,
		b.Author,
		b.TotalPages,
		b.PagesRead,
		b.Progress,
		b.Rating,
		string(b.Status),
		nullString(b.CoverURL),
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
		nullTimeString(b.FinishedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// GetBook retrieves a book owned by userID.
func (q *queries) GetBook(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	row := q.q.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ? AND user_id = ?`, bookID, userID)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBooks returns the user's books newest first.
func (q *queries) ListBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := make([]*domain.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// SetBookProgress records pages read on a book that is still being read.
func (q *queries) SetBookProgress(ctx context.Context, userID, bookID string, pagesRead, progress int, at time.Time) error {
	result, err := q.q.ExecContext(ctx, `
		UPDATE books SET pages_read = ?, progress = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND status = 'reading'`,
		pagesRead, progress, formatTime(at), bookID, userID)
	if err != nil {
		return fmt.Errorf("update book progress: %w", err)
	}
	return q.expectReadingBook(ctx, result, userID, bookID)
}

// SetBookRating sets the rating of a book in either state.
func (q *queries) SetBookRating(ctx context.Context, userID, bookID string, rating int, at time.Time) error {
	result, err := q.q.ExecContext(ctx, `
		UPDATE books SET rating = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		rating, formatTime(at), bookID, userID)
	if err != nil {
		return fmt.Errorf("update book rating: %w", err)
	}
	return expectOne(result)
}

// MarkBookFinished moves a reading book to its terminal state.
func (q *queries) MarkBookFinished(ctx context.Context, userID, bookID string, at time.Time) error {
	ts := formatTime(at)
	result, err := q.q.ExecContext(ctx, `
		UPDATE books SET pages_read = total_pages, progress = 100, status = 'finished',
			finished_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND status = 'reading'`,
		ts, ts, bookID, userID)
	if err != nil {
		return fmt.Errorf("finish book: %w", err)
	}
	return q.expectReadingBook(ctx, result, userID, bookID)
}

// expectReadingBook tells a missing book apart from a finished one when a
// status-guarded update matched nothing.
func (q *queries) expectReadingBook(ctx context.Context, result sql.Result, userID, bookID string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var status string
	err = q.q.QueryRowContext(ctx,
		`SELECT status FROM books WHERE id = ? AND user_id = ?`, bookID, userID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	return store.ErrConflict
}

// DeleteBook removes a book owned by userID.
func (q *queries) DeleteBook(ctx context.Context, userID, bookID string) error {
	result, err := q.q.ExecContext(ctx, `DELETE FROM books WHERE id = ? AND user_id = ?`, bookID, userID)
	if err != nil {
		return err
	}
	return expectOne(result)
}

// CountBooksByStatus returns the number of the user's books per status.
func (q *queries) CountBooksByStatus(ctx context.Context, userID string) (map[domain.BookStatus]int, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM books WHERE user_id = ? GROUP BY status`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[domain.BookStatus]int{
		domain.BookStatusReading:  0,
		domain.BookStatusFinished: 0,
	}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.BookStatus(status)] = n
	}
	return counts, rows.Err()
}
