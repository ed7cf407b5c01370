package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/eyeward-labs/overseer/internal/eventbus"
)

// PipelineEvent is one append-only entry in a session's event journal: an
// Eye response or a lifecycle transition, recorded in call order (spec.md
// §4.6).
type PipelineEvent struct {
	SequenceNumber int64
	SessionID      uuid.UUID
	ToolName       string
	StatusCode     string
	Payload        map[string]any
	CreatedAt      time.Time
}

// EventRepository persists the pipeline-event journal and backs the event
// bus's catch-up replay.
type EventRepository struct {
	db *sql.DB
}

// Append inserts the next event for a session, assigning it the next
// sequence number in a single statement so concurrent appends on different
// sessions never contend and appends on the same session serialize through
// the row lock implied by the UNIQUE (session_id, sequence_number)
// constraint retried by the caller's pipeline state-machine CAS loop.
func (r *EventRepository) Append(ctx context.Context, sessionID uuid.UUID, toolName, statusCode string, payload map[string]any) (*PipelineEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	evt := &PipelineEvent{SessionID: sessionID, ToolName: toolName, StatusCode: statusCode, Payload: payload}
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO pipeline_events (session_id, sequence_number, tool_name, status_code, payload)
		 SELECT $1, COALESCE(MAX(sequence_number), 0) + 1, $2, $3, $4
		 FROM pipeline_events WHERE session_id = $1
		 RETURNING sequence_number, created_at`,
		sessionID, toolName, statusCode, raw,
	).Scan(&evt.SequenceNumber, &evt.CreatedAt)
	if err != nil {
		return nil, err
	}
	return evt, nil
}

// ListEvents pages through a session's event journal ordered oldest-first,
// optionally bounded by [fromTS, toTS), for GET /session/{id}/events
// (spec.md §6.1). A zero fromTS/toTS leaves that bound open.
func (r *EventRepository) ListEvents(ctx context.Context, sessionID uuid.UUID, limit int, fromTS, toTS time.Time) ([]*PipelineEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT sequence_number, tool_name, status_code, payload, created_at
		 FROM pipeline_events
		 WHERE session_id = $1
		   AND ($2::timestamptz IS NULL OR created_at >= $2)
		   AND ($3::timestamptz IS NULL OR created_at < $3)
		 ORDER BY sequence_number ASC LIMIT $4`,
		sessionID, nullableTime(fromTS), nullableTime(toTS), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*PipelineEvent
	for rows.Next() {
		evt := &PipelineEvent{SessionID: sessionID}
		var raw []byte
		if err := rows.Scan(&evt.SequenceNumber, &evt.ToolName, &evt.StatusCode, &raw, &evt.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &evt.Payload); err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// GetRecentEvents returns a session's last limit events, oldest first,
// satisfying eventbus.CatchupQuerier for new WebSocket subscribers.
func (r *EventRepository) GetRecentEvents(ctx context.Context, sessionID string, limit int) ([]eventbus.CatchupEvent, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = eventbus.DefaultCatchupLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT sequence_number, tool_name, status_code, payload, created_at
		 FROM pipeline_events WHERE session_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		id, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recent []eventbus.CatchupEvent
	for rows.Next() {
		var (
			seq        int64
			tool       string
			statusCode string
			raw        []byte
			createdAt  time.Time
		)
		if err := rows.Scan(&seq, &tool, &statusCode, &raw, &createdAt); err != nil {
			return nil, err
		}
		var payload map[string]any
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, err
		}
		recent = append(recent, eventbus.CatchupEvent{SequenceNumber: seq, Payload: payload})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows arrived newest-first; reverse in place to replay in call order.
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	return recent, nil
}
