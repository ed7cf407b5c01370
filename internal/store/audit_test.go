package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAuditRepository_Record(t *testing.T) {
	client, mock := newMockClient(t)
	tenantID := uuid.New()

	mock.ExpectExec(`INSERT INTO audit`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := client.Audit.Record(context.Background(), AuditRecord{
		TenantID: tenantID,
		ToolName: "sharingan",
		Decision: "allow",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_ListBySession(t *testing.T) {
	client, mock := newMockClient(t)
	sessionID := uuid.New()

	mock.ExpectQuery(`SELECT id, tenant_id, session_id, api_key_id, key_hash, role, method, path, status, tool_name, branch, budget_tokens, decision, reason, created_at FROM audit`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tenant_id", "session_id", "api_key_id", "key_hash", "role", "method", "path",
			"status", "tool_name", "branch", "budget_tokens", "decision", "reason", "created_at",
		}).AddRow(int64(1), uuid.New(), sessionID, nil, "", "admin", "POST", "/session/x/navigator",
			200, "sharingan", "code", 0, "allow", "", time.Now()))

	records, err := client.Audit.ListBySession(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "allow", records[0].Decision)
}
