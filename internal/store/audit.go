package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// AuditRecord is one policy-layer decision: an allow or a specific denial
// reason, recorded regardless of outcome, carrying the full context spec.md
// §4.3 requires (method, path, status, tool, branch, tenant, session, role,
// budget_tokens, hashed key). The raw secret is never recorded.
type AuditRecord struct {
	ID           int64
	TenantID     uuid.UUID
	SessionID    *uuid.UUID
	APIKeyID     *uuid.UUID
	KeyHash      string
	Role         string
	Method       string
	Path         string
	Status       int
	ToolName     string
	Branch       string
	BudgetTokens int
	Decision     string
	Reason       string
	CreatedAt    time.Time
}

// AuditRepository appends to the audit journal. Rows are never updated or
// deleted by application code.
type AuditRepository struct {
	db *sql.DB
}

// Record appends one audit entry.
func (r *AuditRepository) Record(ctx context.Context, rec AuditRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit (tenant_id, session_id, api_key_id, key_hash, role, method, path, status, tool_name, branch, budget_tokens, decision, reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.TenantID, rec.SessionID, rec.APIKeyID, rec.KeyHash, rec.Role, rec.Method, rec.Path,
		rec.Status, rec.ToolName, rec.Branch, rec.BudgetTokens, rec.Decision, rec.Reason,
	)
	return err
}

// ListBySession returns a session's audit trail, oldest first.
func (r *AuditRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*AuditRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tenant_id, session_id, api_key_id, key_hash, role, method, path, status, tool_name, branch, budget_tokens, decision, reason, created_at
		 FROM audit WHERE session_id = $1 ORDER BY created_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*AuditRecord
	for rows.Next() {
		rec := &AuditRecord{}
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.SessionID, &rec.APIKeyID, &rec.KeyHash, &rec.Role,
			&rec.Method, &rec.Path, &rec.Status, &rec.ToolName, &rec.Branch, &rec.BudgetTokens,
			&rec.Decision, &rec.Reason, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
