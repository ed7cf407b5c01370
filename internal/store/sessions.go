package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is one validation-pipeline run: a tenant-scoped sequence of Eye
// calls constrained by an allowlist of next permitted tools .
type Session struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	ProfileName     string
	Status          string
	NextTools       []string
	LastBranch      string
	BudgetCallsUsed int
	BudgetCallsMax  int
	Metadata        map[string]any
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SessionSettings is the resolved-and-override pair persisted alongside a
// session so a restart or a new WebSocket subscriber can recover it without
// re-running the settings resolver .
type SessionSettings struct {
	SessionID uuid.UUID
	Overrides map[string]any
	Resolved  map[string]any
	UpdatedAt time.Time
}

// SessionRepository persists sessions and their settings.
type SessionRepository struct {
	db *sql.DB
}

// Create inserts a new session in its initial state.
func (r *SessionRepository) Create(ctx context.Context, s *Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
	nextTools, err := json.Marshal(s.NextTools)
	if err != nil {
		return err
	}
	metadata, err := json.Marshal(s.Metadata)
	if err != nil {
		return err
	}

	return r.db.QueryRowContext(ctx,
		`INSERT INTO sessions (id, tenant_id, profile_name, status, next_tools, last_branch,
		                       budget_calls_used, budget_calls_max, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		s.ID, s.TenantID, s.ProfileName, s.Status, nextTools, s.LastBranch,
		s.BudgetCallsUsed, s.BudgetCallsMax, metadata,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// GetByID fetches a session, scoped to its tenant to enforce isolation.
func (r *SessionRepository) GetByID(ctx context.Context, tenantID, sessionID uuid.UUID) (*Session, error) {
	s := &Session{ID: sessionID, TenantID: tenantID}
	var nextTools, metadata []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT profile_name, status, next_tools, last_branch, budget_calls_used,
		        budget_calls_max, metadata, created_at, updated_at
		 FROM sessions WHERE id = $1 AND tenant_id = $2`,
		sessionID, tenantID,
	).Scan(&s.ProfileName, &s.Status, &nextTools, &s.LastBranch, &s.BudgetCallsUsed,
		&s.BudgetCallsMax, &metadata, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(nextTools, &s.NextTools); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metadata, &s.Metadata); err != nil {
		return nil, err
	}
	return s, nil
}

// ListByTenant returns a tenant's sessions, most recently updated first.
func (r *SessionRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, profile_name, status, next_tools, last_branch, budget_calls_used,
		        budget_calls_max, metadata, created_at, updated_at
		 FROM sessions WHERE tenant_id = $1 ORDER BY updated_at DESC LIMIT $2`,
		tenantID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s := &Session{TenantID: tenantID}
		var nextTools, metadata []byte
		if err := rows.Scan(&s.ID, &s.ProfileName, &s.Status, &nextTools, &s.LastBranch,
			&s.BudgetCallsUsed, &s.BudgetCallsMax, &metadata, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(nextTools, &s.NextTools); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(metadata, &s.Metadata); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// AdvanceState applies a pipeline transition under optimistic concurrency:
// the update only takes effect if the session's next_tools still matches
// expectedNextTools at the time of the write, so two concurrent Eye calls on
// the same session can never both advance it ("single-writer per
// session" invariant, enforced without a distributed lock).
func (r *SessionRepository) AdvanceState(ctx context.Context, tenantID, sessionID uuid.UUID, expectedNextTools, newNextTools []string, newStatus, newBranch string, budgetCallsUsed int) error {
	expected, err := json.Marshal(expectedNextTools)
	if err != nil {
		return err
	}
	next, err := json.Marshal(newNextTools)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET status = $1, next_tools = $2, last_branch = $3,
		                     budget_calls_used = $4, updated_at = now()
		 WHERE id = $5 AND tenant_id = $6 AND next_tools = $7`,
		newStatus, next, newBranch, budgetCallsUsed, sessionID, tenantID, expected,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// UpsertSettings persists the resolved settings snapshot for a session.
func (r *SessionRepository) UpsertSettings(ctx context.Context, sessionID uuid.UUID, overrides, resolved map[string]any) error {
	overridesRaw, err := json.Marshal(overrides)
	if err != nil {
		return err
	}
	resolvedRaw, err := json.Marshal(resolved)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO session_settings (session_id, overrides, resolved)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (session_id)
		 DO UPDATE SET overrides = EXCLUDED.overrides, resolved = EXCLUDED.resolved, updated_at = now()`,
		sessionID, overridesRaw, resolvedRaw,
	)
	return err
}

// GetSettings fetches a session's persisted settings snapshot.
func (r *SessionRepository) GetSettings(ctx context.Context, sessionID uuid.UUID) (*SessionSettings, error) {
	s := &SessionSettings{SessionID: sessionID}
	var overridesRaw, resolvedRaw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT overrides, resolved, updated_at FROM session_settings WHERE session_id = $1`,
		sessionID,
	).Scan(&overridesRaw, &resolvedRaw, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(overridesRaw, &s.Overrides); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resolvedRaw, &s.Resolved); err != nil {
		return nil, err
	}
	return s, nil
}
