// Package sse streams celebration events (finished books, earned badges,
// level ups) to connected clients over Server-Sent Events.
package sse

import (
	"time"

	"github.com/rootmarks/rootmarks-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventBookFinished is sent when a book completes.
	EventBookFinished EventType = "book.finished"
	// EventBadgeEarned is sent once per newly awarded badge.
	EventBadgeEarned EventType = "badge.earned"
	// EventLevelUp is sent when a credit moves the profile into a new tier.
	EventLevelUp EventType = "level.up"
	// EventCatalogUpdated is broadcast after the badge catalog is re-synced.
	EventCatalogUpdated EventType = "catalog.updated"
	// EventHeartbeat keeps idle connections open.
	EventHeartbeat EventType = "heartbeat"
)

// Event is one message on the stream. UserID scopes delivery and is never
// sent to the client; empty means every connected client.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
	UserID    string    `json:"-"`
}

// BookFinishedEventData is the payload for book.finished.
type BookFinishedEventData struct {
	BookID   string `json:"book_id"`
	Title    string `json:"title"`
	Pages    int    `json:"pages"`
	XPGained int    `json:"xp_gained"`
}

// BadgeEarnedEventData is the payload for badge.earned.
type BadgeEarnedEventData struct {
	Badge    domain.Badge `json:"badge"`
	XPGained int          `json:"xp_gained"`
}

// LevelUpEventData is the payload for level.up.
type LevelUpEventData struct {
	From  int              `json:"from"`
	To    int              `json:"to"`
	Level domain.LevelInfo `json:"level"`
}

// CatalogUpdatedEventData is the payload for catalog.updated.
type CatalogUpdatedEventData struct {
	Badges int `json:"badges"`
}

// HeartbeatEventData is the payload for heartbeat.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewBookFinishedEvent creates a book.finished event for userID.
func NewBookFinishedEvent(userID string, book *domain.Book, xp int) Event {
	return Event{
		Type:      EventBookFinished,
		UserID:    userID,
		Timestamp: time.Now(),
		Data: BookFinishedEventData{
			BookID:   book.ID,
			Title:    book.Title,
			Pages:    book.TotalPages,
			XPGained: xp,
		},
	}
}

// NewBadgeEarnedEvent creates a badge.earned event for userID.
func NewBadgeEarnedEvent(userID string, badge domain.Badge) Event {
	return Event{
		Type:      EventBadgeEarned,
		UserID:    userID,
		Timestamp: time.Now(),
		Data:      BadgeEarnedEventData{Badge: badge, XPGained: badge.XPReward()},
	}
}

// NewLevelUpEvent creates a level.up event for userID.
func NewLevelUpEvent(userID string, before, after domain.LevelInfo) Event {
	return Event{
		Type:      EventLevelUp,
		UserID:    userID,
		Timestamp: time.Now(),
		Data:      LevelUpEventData{From: before.Level, To: after.Level, Level: after},
	}
}

// NewCatalogUpdatedEvent creates a broadcast catalog.updated event.
func NewCatalogUpdatedEvent(count int) Event {
	return Event{
		Type:      EventCatalogUpdated,
		Timestamp: time.Now(),
		Data:      CatalogUpdatedEventData{Badges: count},
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Timestamp: now,
		Data:      HeartbeatEventData{ServerTime: now},
	}
}
