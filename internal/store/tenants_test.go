package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func newMockClient(t *testing.T) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewClientFromDB(db), mock
}

func TestTenantRepository_Create(t *testing.T) {
	client, mock := newMockClient(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO tenants`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	tenant, err := client.Tenants.Create(context.Background(), "acme")
	require.NoError(t, err)
	require.Equal(t, "acme", tenant.Name)
	require.Equal(t, now, tenant.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantRepository_Create_Duplicate(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectQuery(`INSERT INTO tenants`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	_, err := client.Tenants.Create(context.Background(), "acme")
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestTenantRepository_GetByID_NotFound(t *testing.T) {
	client, mock := newMockClient(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT name, created_at FROM tenants`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"name", "created_at"}))

	_, err := client.Tenants.GetByID(context.Background(), id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTenantRepository_GetByName(t *testing.T) {
	client, mock := newMockClient(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT id, created_at FROM tenants`).
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id, now))

	tenant, err := client.Tenants.GetByName(context.Background(), "acme")
	require.NoError(t, err)
	require.Equal(t, id, tenant.ID)
}
