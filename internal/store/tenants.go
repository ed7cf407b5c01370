package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Tenant is an isolated namespace under which sessions, api keys, and
// profiles are scoped .
type Tenant struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// TenantRepository persists tenants.
type TenantRepository struct {
	db *sql.DB
}

// Create inserts a new tenant.
func (r *TenantRepository) Create(ctx context.Context, name string) (*Tenant, error) {
	t := &Tenant{ID: uuid.New(), Name: name}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tenants (id, name) VALUES ($1, $2) RETURNING created_at`,
		t.ID, t.Name,
	).Scan(&t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return t, nil
}

// GetByID fetches a tenant by id.
func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	t := &Tenant{ID: id}
	err := r.db.QueryRowContext(ctx,
		`SELECT name, created_at FROM tenants WHERE id = $1`, id,
	).Scan(&t.Name, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetByName fetches a tenant by its unique name.
func (r *TenantRepository) GetByName(ctx context.Context, name string) (*Tenant, error) {
	t := &Tenant{Name: name}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM tenants WHERE name = $1`, name,
	).Scan(&t.ID, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}
