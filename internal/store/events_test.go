package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestEventRepository_Append(t *testing.T) {
	client, mock := newMockClient(t)
	sessionID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO pipeline_events`).
		WillReturnRows(sqlmock.NewRows([]string{"sequence_number", "created_at"}).AddRow(int64(1), now))

	evt, err := client.Events.Append(context.Background(), sessionID, "sharingan", "OK_APPROVE",
		map[string]any{"confidence": 0.9})
	require.NoError(t, err)
	require.Equal(t, int64(1), evt.SequenceNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_GetRecentEvents_ReversesToCallOrder(t *testing.T) {
	client, mock := newMockClient(t)
	sessionID := uuid.New()

	mock.ExpectQuery(`SELECT sequence_number, tool_name, status_code, payload, created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"sequence_number", "tool_name", "status_code", "payload", "created_at"}).
			AddRow(int64(2), "byakugan", "OK_APPROVE", `{}`, time.Now()).
			AddRow(int64(1), "sharingan", "OK_APPROVE", `{}`, time.Now()))

	events, err := client.Events.GetRecentEvents(context.Background(), sessionID.String(), 50)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, int64(1), events[0].SequenceNumber)
	require.Equal(t, int64(2), events[1].SequenceNumber)
}

func TestEventRepository_GetRecentEvents_InvalidSessionID(t *testing.T) {
	client, _ := newMockClient(t)
	_, err := client.Events.GetRecentEvents(context.Background(), "not-a-uuid", 10)
	require.Error(t, err)
}

func TestEventRepository_ListEvents_OldestFirst(t *testing.T) {
	client, mock := newMockClient(t)
	sessionID := uuid.New()

	mock.ExpectQuery(`SELECT sequence_number, tool_name, status_code, payload, created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"sequence_number", "tool_name", "status_code", "payload", "created_at"}).
			AddRow(int64(1), "sharingan/clarify", "OK_NO_CLARIFICATION_NEEDED", `{}`, time.Now()).
			AddRow(int64(2), "helper/rewrite_prompt", "OK_PROMPT_READY", `{}`, time.Now()))

	events, err := client.Events.ListEvents(context.Background(), sessionID, 100, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, int64(1), events[0].SequenceNumber)
	require.Equal(t, int64(2), events[1].SequenceNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}
