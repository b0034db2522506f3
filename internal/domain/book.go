package domain

import (
	"math"
	"time"
)

// BookStatus is the reading lifecycle state. Finished is terminal.
type BookStatus string

// Book statuses.
const (
	BookStatusReading  BookStatus = "reading"
	BookStatusFinished BookStatus = "finished"
)

// Rating bounds. Zero means unrated.
const (
	MinRating = 0
	MaxRating = 5
)

// Completion XP: half a point per page, rounded down, plus a flat bonus.
const (
	finishXPPerPage = 0.5
	finishXPBonus   = 50
)

// Book is a book on a user's shelf.
type Book struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	TotalPages int        `json:"total_pages"`
	PagesRead  int        `json:"pages_read"`
	Progress   int        `json:"progress"`
	Rating     int        `json:"rating"`
	Status     BookStatus `json:"status"`
	CoverURL   string     `json:"cover_url,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewBook creates an unread book in the reading state.
func NewBook(id, userID, title, author string, totalPages int, coverURL string) *Book {
	now := time.Now()
	return &Book{
		ID:         id,
		UserID:     userID,
		Title:      title,
		Author:     author,
		TotalPages: totalPages,
		Status:     BookStatusReading,
		CoverURL:   coverURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsFinished reports whether the book reached its terminal state.
func (b *Book) IsFinished() bool {
	return b.Status == BookStatusFinished
}

// SetPagesRead clamps pages into [0, TotalPages] and recomputes progress.
func (b *Book) SetPagesRead(pages int) {
	b.PagesRead = max(0, min(pages, b.TotalPages))
	b.Progress = ProgressPercent(b.PagesRead, b.TotalPages)
	b.UpdatedAt = time.Now()
}

// Finish moves the book to its terminal state with every page read.
func (b *Book) Finish(at time.Time) {
	b.PagesRead = b.TotalPages
	b.Progress = 100
	b.Status = BookStatusFinished
	b.FinishedAt = &at
	b.UpdatedAt = at
}

// FinishXP is the XP credited for finishing the book.
func (b *Book) FinishXP() int {
	return FinishXP(b.TotalPages)
}

// ProgressPercent is round(read/total*100), or 0 when total is not positive.
func ProgressPercent(read, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(read) / float64(total) * 100))
}

// FinishXP is floor(totalPages*0.5) + 50.
func FinishXP(totalPages int) int {
	if totalPages < 0 {
		totalPages = 0
	}
	return int(math.Floor(float64(totalPages)*finishXPPerPage)) + finishXPBonus
}

// ValidRating reports whether r is within the rating scale.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
