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

func TestCreateSessionHandler(t *testing.T) {
	s, mock := newTestServer(t)
	tenantID := uuid.New()

	mock.ExpectQuery(`INSERT INTO sessions`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))
	mock.ExpectQuery(`SELECT id, settings, created_at, updated_at FROM profiles`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "settings", "created_at", "updated_at"}))
	mock.ExpectQuery(`INSERT INTO profiles`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(uuid.New(), time.Now(), time.Now()))
	mock.ExpectExec(`INSERT INTO session_settings`).WillReturnResult(sqlmock.NewResult(0, 1))

	body, err := json.Marshal(CreateSessionRequest{Profile: "enterprise"})
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/session", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(string(apiKeyContextKey), &store.APIKey{TenantID: tenantID, Role: store.RoleConsumer})

	err = s.createSessionHandler(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp CreateSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "enterprise", resp.Profile)
	assert.NotEmpty(t, resp.NextTools)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListSessionsHandler(t *testing.T) {
	s, mock := newTestServer(t)
	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT id, profile_name, status, next_tools`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "profile_name", "status", "next_tools", "last_branch",
			"budget_calls_used", "budget_calls_max", "metadata", "created_at", "updated_at",
		}).AddRow(uuid.New(), "enterprise", "active", []byte(`["sharingan/clarify"]`), "", 0, 0, []byte(`{}`), time.Now(), time.Now()))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/sessions?limit=10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(string(apiKeyContextKey), &store.APIKey{TenantID: tenantID, Role: store.RoleConsumer})

	require.NoError(t, s.listSessionsHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "enterprise", resp[0].ProfileName)
}

func TestGetSessionHandler(t *testing.T) {
	tenantID, sessionID := uuid.New(), uuid.New()

	t.Run("not found", func(t *testing.T) {
		s, mock := newTestServer(t)
		mock.ExpectQuery(`SELECT profile_name, status, next_tools`).
			WillReturnRows(sqlmock.NewRows([]string{
				"profile_name", "status", "next_tools", "last_branch",
				"budget_calls_used", "budget_calls_max", "metadata", "created_at", "updated_at",
			}))

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/sessions/"+sessionID.String(), nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(sessionID.String())
		c.Set(string(apiKeyContextKey), &store.APIKey{TenantID: tenantID, Role: store.RoleConsumer})

		err := s.getSessionHandler(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		s, _ := newTestServer(t)
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/sessions/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("not-a-uuid")
		c.Set(string(apiKeyContextKey), &store.APIKey{TenantID: tenantID, Role: store.RoleConsumer})

		err := s.getSessionHandler(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestResolveCallerTenant(t *testing.T) {
	s, mock := newTestServer(t)
	ownTenant := uuid.New()

	t.Run("non-admin always uses own tenant", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		key := &store.APIKey{TenantID: ownTenant, Role: store.RoleConsumer}
		got, err := s.resolveCallerTenant(c, key, "someone-elses-tenant")
		require.NoError(t, err)
		assert.Equal(t, ownTenant, got)
	})

	t.Run("admin with blank name falls back to own tenant", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		key := &store.APIKey{TenantID: ownTenant, Role: store.RoleAdmin}
		got, err := s.resolveCallerTenant(c, key, "")
		require.NoError(t, err)
		assert.Equal(t, ownTenant, got)
	})

	t.Run("admin resolves named tenant", func(t *testing.T) {
		otherTenant := uuid.New()
		mock.ExpectQuery(`SELECT id, created_at FROM tenants`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(otherTenant, time.Now()))

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		key := &store.APIKey{TenantID: ownTenant, Role: store.RoleAdmin}
		got, err := s.resolveCallerTenant(c, key, "acme")
		require.NoError(t, err)
		assert.Equal(t, otherTenant, got)
	})
}
