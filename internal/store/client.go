// Package store provides the Postgres-backed persistence layer: sessions,
// session settings, the append-only pipeline-event log, api keys, tenants,
// profiles, and the audit journal .
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

//go:embed migrations
var migrationsFS embed.FS

// Client wraps the raw *sql.DB with the repositories built on top of it.
type Client struct {
	db *sql.DB

	Sessions  *SessionRepository
	Events    *EventRepository
	APIKeys   *APIKeyRepository
	Tenants   *TenantRepository
	Profiles  *ProfileRepository
	Audit     *AuditRepository
}

// DB returns the underlying connection pool, for health checks.
func (c *Client) DB() *sql.DB { return c.db }

// Close closes the underlying connection pool.
func (c *Client) Close() error { return c.db.Close() }

// NewClient opens a pooled Postgres connection, applies pending migrations,
// and wires the repository set, following the connection-pool-then-migrate
// idiom of pkg/database/client.go minus the generated-ORM wrapping (see
// DESIGN.md).
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db, cfg.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Client{
		db:       db,
		Sessions: &SessionRepository{db: db},
		Events:   &EventRepository{db: db},
		APIKeys:  &APIKeyRepository{db: db},
		Tenants:  &TenantRepository{db: db},
		Profiles: &ProfileRepository{db: db},
		Audit:    &AuditRepository{db: db},
	}, nil
}

// NewClientFromDB wraps an already-open *sql.DB (used by tests against a
// pre-provisioned database).
func NewClientFromDB(db *sql.DB) *Client {
	return &Client{
		db:       db,
		Sessions: &SessionRepository{db: db},
		Events:   &EventRepository{db: db},
		APIKeys:  &APIKeyRepository{db: db},
		Tenants:  &TenantRepository{db: db},
		Profiles: &ProfileRepository{db: db},
		Audit:    &AuditRepository{db: db},
	}
}

// runMigrations applies embedded SQL migrations with golang-migrate, using
// the embed-FS + iofs-source pattern from pkg/database/client.go.
func runMigrations(db *sql.DB, database string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, database, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Do not call m.Close(): it would close the shared *sql.DB via the
	// postgres driver. Only the source side needs releasing.
	return sourceDriver.Close()
}
