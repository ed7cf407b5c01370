package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	echo "github.com/labstack/echo/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eyeward-labs/overseer/internal/store"
)

func sessionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"profile_name", "status", "next_tools", "last_branch",
		"budget_calls_used", "budget_calls_max", "metadata", "created_at", "updated_at",
	}).AddRow("enterprise", "active", []byte(`["sharingan/clarify"]`), "", 0, 0, []byte(`{}`), time.Now(), time.Now())
}

func TestListEventsHandler(t *testing.T) {
	s, mock := newTestServer(t)
	tenantID, sessionID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT profile_name, status, next_tools`).WillReturnRows(sessionRows())
	mock.ExpectQuery(`SELECT sequence_number, tool_name, status_code, payload, created_at\s+FROM pipeline_events`).
		WillReturnRows(sqlmock.NewRows([]string{"sequence_number", "tool_name", "status_code", "payload", "created_at"}).
			AddRow(int64(1), "sharingan/clarify", "OK_NO_CLARIFICATION_NEEDED", []byte(`{}`), time.Now()))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/session/"+sessionID.String()+"/events", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sessionID.String())
	c.Set(string(apiKeyContextKey), &store.APIKey{TenantID: tenantID, Role: store.RoleConsumer})

	require.NoError(t, s.listEventsHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp EventsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "sharingan/clarify", resp.Events[0].ToolName)
}

func TestClarificationsHandler(t *testing.T) {
	s, mock := newTestServer(t)
	tenantID, sessionID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT profile_name, status, next_tools`).WillReturnRows(sessionRows())
	mock.ExpectQuery(`INSERT INTO pipeline_events`).
		WillReturnRows(sqlmock.NewRows([]string{"sequence_number", "created_at"}).AddRow(int64(2), time.Now()))

	body, err := json.Marshal(ClarificationRequest{AnswersMD: "N/A"})
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/session/"+sessionID.String()+"/clarifications", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sessionID.String())
	c.Set(string(apiKeyContextKey), &store.APIKey{TenantID: tenantID, Role: store.RoleConsumer})

	require.NoError(t, s.clarificationsHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResubmitHandler(t *testing.T) {
	t.Run("tool in allowlist succeeds", func(t *testing.T) {
		s, mock := newTestServer(t)
		tenantID, sessionID := uuid.New(), uuid.New()

		mock.ExpectQuery(`SELECT profile_name, status, next_tools`).WillReturnRows(sessionRows())
		mock.ExpectQuery(`INSERT INTO pipeline_events`).
			WillReturnRows(sqlmock.NewRows([]string{"sequence_number", "created_at"}).AddRow(int64(3), time.Now()))

		body, err := json.Marshal(ResubmitRequest{Tool: "sharingan/clarify"})
		require.NoError(t, err)

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/session/"+sessionID.String()+"/resubmit", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(sessionID.String())
		c.Set(string(apiKeyContextKey), &store.APIKey{TenantID: tenantID, Role: store.RoleConsumer})

		require.NoError(t, s.resubmitHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("tool not in allowlist conflicts", func(t *testing.T) {
		s, mock := newTestServer(t)
		tenantID, sessionID := uuid.New(), uuid.New()

		mock.ExpectQuery(`SELECT profile_name, status, next_tools`).WillReturnRows(sessionRows())

		body, err := json.Marshal(ResubmitRequest{Tool: "jogan/confirm_intent"})
		require.NoError(t, err)

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/session/"+sessionID.String()+"/resubmit", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(sessionID.String())
		c.Set(string(apiKeyContextKey), &store.APIKey{TenantID: tenantID, Role: store.RoleConsumer})

		err = s.resubmitHandler(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
	})
}
