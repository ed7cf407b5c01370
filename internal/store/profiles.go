package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Profile is a named, tenant-scoped bundle of settings overrides that sits
// between system defaults and a session override .
type Profile struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	Settings  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileRepository persists profiles.
type ProfileRepository struct {
	db *sql.DB
}

// GetByName fetches a tenant's profile by name. Returns ErrNotFound if the
// tenant has never persisted a profile under that name — callers fall back
// to the built-in profile table and persist it on first use .
func (r *ProfileRepository) GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*Profile, error) {
	p := &Profile{TenantID: tenantID, Name: name}
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT id, settings, created_at, updated_at FROM profiles WHERE tenant_id = $1 AND name = $2`,
		tenantID, name,
	).Scan(&p.ID, &raw, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &p.Settings); err != nil {
		return nil, err
	}
	return p, nil
}

// Upsert creates or replaces a tenant's named profile, used both for
// explicit profile management and to persist a built-in profile the first
// time a session references it by name.
func (r *ProfileRepository) Upsert(ctx context.Context, tenantID uuid.UUID, name string, settings map[string]any) (*Profile, error) {
	raw, err := json.Marshal(settings)
	if err != nil {
		return nil, err
	}

	p := &Profile{ID: uuid.New(), TenantID: tenantID, Name: name, Settings: settings}
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO profiles (id, tenant_id, name, settings)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (tenant_id, name)
		 DO UPDATE SET settings = EXCLUDED.settings, updated_at = now()
		 RETURNING id, created_at, updated_at`,
		p.ID, tenantID, name, raw,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListByTenant returns every profile a tenant has persisted.
func (r *ProfileRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, settings, created_at, updated_at FROM profiles WHERE tenant_id = $1 ORDER BY name`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p := &Profile{TenantID: tenantID}
		var raw []byte
		if err := rows.Scan(&p.ID, &p.Name, &raw, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &p.Settings); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
