// Package eventbus fans pipeline events out to live WebSocket subscribers of a
// session, replaying recent history to new subscribers before streaming.
package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// DefaultCatchupLimit is how many recent pipeline events a new subscriber
// receives before live streaming begins (spec: "last N (default 50)").
const DefaultCatchupLimit = 50

// CatchupEvent is one replayed pipeline event, shaped for JSON delivery.
type CatchupEvent struct {
	SequenceNumber int64          `json:"sequence_number"`
	Payload        map[string]any `json:"payload"`
}

// CatchupQuerier fetches the recent pipeline-event history for a session,
// oldest-first, capped at limit. Implemented by internal/store.
type CatchupQuerier interface {
	GetRecentEvents(ctx context.Context, sessionID string, limit int) ([]CatchupEvent, error)
}

// SettingsSnapshotter resolves the current effective settings for a session,
// sent to a subscriber immediately on connect.
type SettingsSnapshotter interface {
	SnapshotSettings(ctx context.Context, sessionID string) (map[string]any, error)
}

// Manager manages live WebSocket subscribers, grouped by session id.
// One process-wide Manager instance backs every session.
type Manager struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]*subscriber // session_id -> connection_id -> subscriber

	catchup      CatchupQuerier
	settings     SettingsSnapshotter
	catchupLimit int
	writeTimeout time.Duration
}

type subscriber struct {
	id     string
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager constructs a Manager. catchupLimit <= 0 uses DefaultCatchupLimit.
func NewManager(catchup CatchupQuerier, settings SettingsSnapshotter, writeTimeout time.Duration, catchupLimit int) *Manager {
	if catchupLimit <= 0 {
		catchupLimit = DefaultCatchupLimit
	}
	return &Manager{
		subscribers:  make(map[string]map[string]*subscriber),
		catchup:      catchup,
		settings:     settings,
		catchupLimit: catchupLimit,
		writeTimeout: writeTimeout,
	}
}

// HandleConnection owns a WebSocket connection for the lifetime of the
// subscription to sessionID. It blocks until the connection closes.
func (m *Manager) HandleConnection(parentCtx context.Context, sessionID string, conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(parentCtx)
	sub := &subscriber{id: uuid.NewString(), conn: conn, ctx: ctx, cancel: cancel}

	m.register(sessionID, sub)
	defer m.unregister(sessionID, sub)

	if m.settings != nil {
		if snap, err := m.settings.SnapshotSettings(ctx, sessionID); err == nil {
			m.sendJSON(sub, map[string]any{"type": "settings_snapshot", "session_id": sessionID, "settings": snap})
		}
	}
	m.replay(ctx, sessionID, sub)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var msg struct {
			Action string `json:"action"`
		}
		if json.Unmarshal(data, &msg) != nil {
			continue
		}
		if msg.Action == "ping" {
			m.sendJSON(sub, map[string]string{"type": "pong"})
		}
	}
}

// Broadcast delivers event (already-marshalled JSON) to every live subscriber
// of sessionID. Non-blocking from the producer's point of view: a subscriber
// that cannot accept the write within writeTimeout is dropped.
func (m *Manager) Broadcast(sessionID string, event []byte) {
	m.mu.RLock()
	subs := m.subscribers[sessionID]
	snapshot := make([]*subscriber, 0, len(subs))
	for _, s := range subs {
		snapshot = append(snapshot, s)
	}
	m.mu.RUnlock()

	for _, s := range snapshot {
		if err := m.sendRaw(s, event); err != nil {
			slog.Warn("dropping websocket subscriber after failed send", "session_id", sessionID, "connection_id", s.id, "error", err)
			m.unregister(sessionID, s)
		}
	}
}

// SubscriberCount reports how many live subscribers a session currently has.
func (m *Manager) SubscriberCount(sessionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers[sessionID])
}

func (m *Manager) register(sessionID string, s *subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subscribers[sessionID] == nil {
		m.subscribers[sessionID] = make(map[string]*subscriber)
	}
	m.subscribers[sessionID][s.id] = s
}

func (m *Manager) unregister(sessionID string, s *subscriber) {
	m.mu.Lock()
	if subs, ok := m.subscribers[sessionID]; ok {
		delete(subs, s.id)
		if len(subs) == 0 {
			delete(m.subscribers, sessionID)
		}
	}
	m.mu.Unlock()

	s.cancel()
	_ = s.conn.Close(websocket.StatusNormalClosure, "")
}

func (m *Manager) replay(ctx context.Context, sessionID string, s *subscriber) {
	if m.catchup == nil {
		return
	}
	events, err := m.catchup.GetRecentEvents(ctx, sessionID, m.catchupLimit)
	if err != nil {
		slog.Error("catchup query failed", "session_id", sessionID, "error", err)
		return
	}
	for _, evt := range events {
		payload, err := json.Marshal(evt.Payload)
		if err != nil {
			continue
		}
		if err := m.sendRaw(s, payload); err != nil {
			return
		}
	}
}

func (m *Manager) sendJSON(s *subscriber, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = m.sendRaw(s, data)
}

func (m *Manager) sendRaw(s *subscriber, data []byte) error {
	writeCtx, cancel := context.WithTimeout(s.ctx, m.writeTimeout)
	defer cancel()
	return s.conn.Write(writeCtx, websocket.MessageText, data)
}
