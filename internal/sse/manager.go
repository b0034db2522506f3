package sse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultHeartbeat = 30 * time.Second
	queueSize        = 256
	clientBuffer     = 32
)

// Client is one open event stream. A reader may have several (phone and
// browser), each receiving the same celebrations.
type Client struct {
	ID          string
	UserID      string
	ConnectedAt time.Time
	Events      chan Event
	Done        chan struct{}
}

// Emitter publishes events. Services depend on this rather than *Manager.
type Emitter interface {
	Emit(event Event)
}

// Manager fans events out to connected readers. Events with a UserID reach
// only that reader's streams; events without one reach everybody.
type Manager struct {
	logger    *slog.Logger
	heartbeat time.Duration
	queue     chan Event
	wg        sync.WaitGroup

	mu     sync.RWMutex
	byUser map[string]map[string]*Client
	byID   map[string]*Client

	closeMu sync.RWMutex
	closed  bool
}

// NewManager creates a new SSE Manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:    logger,
		heartbeat: defaultHeartbeat,
		queue:     make(chan Event, queueSize),
		byUser:    make(map[string]map[string]*Client),
		byID:      make(map[string]*Client),
	}
}

// Start runs the delivery loop until ctx is done or Shutdown drains the
// queue. Call once, in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	defer m.wg.Done()
	defer m.dropAll()

	ticker := time.NewTicker(m.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-m.queue:
			if !ok {
				return
			}
			m.deliver(event)

		case <-ticker.C:
			m.deliver(NewHeartbeatEvent())

		case <-ctx.Done():
			m.logger.Info("SSE manager stopping")
			return
		}
	}
}

// Shutdown stops accepting events, waits for queued ones to go out and
// disconnects every client.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.closeMu.Lock()
	if m.closed {
		m.closeMu.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	m.closeMu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		m.logger.Warn("SSE shutdown timed out, queued events may be lost")
		return ctx.Err()
	}
}

func (m *Manager) deliver(event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	targets := m.byID
	if event.UserID != "" {
		targets = m.byUser[event.UserID]
	}

	dropped := 0
	for _, client := range targets {
		select {
		case client.Events <- event:
		default:
			dropped++
		}
	}

	if event.Type == EventHeartbeat {
		return
	}
	m.logger.Debug("event delivered",
		slog.String("event_type", string(event.Type)),
		slog.String("user_id", event.UserID),
		slog.Int("streams", len(targets)),
		slog.Int("dropped", dropped))
}

// Connect opens a stream for userID.
func (m *Manager) Connect(userID string) *Client {
	client := &Client{
		ID:          uuid.NewString(),
		UserID:      userID,
		ConnectedAt: time.Now(),
		Events:      make(chan Event, clientBuffer),
		Done:        make(chan struct{}),
	}

	m.mu.Lock()
	streams, ok := m.byUser[userID]
	if !ok {
		streams = make(map[string]*Client)
		m.byUser[userID] = streams
	}
	streams[client.ID] = client
	m.byID[client.ID] = client
	m.mu.Unlock()

	m.logger.Info("SSE client connected",
		slog.String("client_id", client.ID),
		slog.String("user_id", userID))
	return client
}

// Disconnect closes a stream. Unknown ids are ignored.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	client, ok := m.byID[clientID]
	if ok {
		m.remove(client)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	m.logger.Info("SSE client disconnected",
		slog.String("client_id", clientID),
		slog.Duration("duration", time.Since(client.ConnectedAt)))
}

// remove must be called with mu held.
func (m *Manager) remove(client *Client) {
	delete(m.byID, client.ID)
	if streams := m.byUser[client.UserID]; streams != nil {
		delete(streams, client.ID)
		if len(streams) == 0 {
			delete(m.byUser, client.UserID)
		}
	}
	close(client.Done)
	close(client.Events)
}

// Emit queues an event. Events emitted after Shutdown are dropped.
func (m *Manager) Emit(event Event) {
	// Held through the send so Shutdown cannot close the queue underneath it.
	m.closeMu.RLock()
	defer m.closeMu.RUnlock()

	if m.closed {
		return
	}

	select {
	case m.queue <- event:
	default:
		m.logger.Error("SSE event queue full, dropping event",
			slog.String("event_type", string(event.Type)))
	}
}

// ClientCount returns the number of open streams.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// ReaderCount returns the number of distinct readers with an open stream.
func (m *Manager) ReaderCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byUser)
}

func (m *Manager) dropAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, client := range m.byID {
		m.remove(client)
	}
}
