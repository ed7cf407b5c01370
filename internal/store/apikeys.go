package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// APIKeyPrefix marks every raw key so logs and dashboards can display a
// identifiable fragment without ever printing the secret itself.
const APIKeyPrefix = "ovs_"

// Role is the closed set of roles an api key may carry (spec.md §3).
type Role string

const (
	RoleConsumer Role = "consumer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// APIKeyLimits is the closed bag of optional per-key restrictions layered
// on top of the gateway's global defaults (spec.md §4.3): tenant/tool/
// branch allowlists, a rate-limit override, and per-request/daily budget
// caps. A zero value of any field means "use the gateway default".
type APIKeyLimits struct {
	Tenants             []string `json:"tenants,omitempty"`
	Tools               []string `json:"tools,omitempty"`
	Branches            []string `json:"branches,omitempty"`
	RatePerMinute       int      `json:"rate_per_minute,omitempty"`
	BudgetMaxPerRequest int      `json:"budget_max_per_request,omitempty"`
	BudgetDaily         int      `json:"budget_daily,omitempty"`
}

// APIKey is the persisted record backing policy-layer authentication. Only
// the SHA-256 hash of the raw key is stored.
type APIKey struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	KeyHash    string
	KeyPrefix  string
	Label      string
	Role       Role
	Limits     APIKeyLimits
	ExpiresAt  *time.Time
	RevokedAt  *time.Time
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// APIKeyRepository persists api keys.
type APIKeyRepository struct {
	db *sql.DB
}

// GenerateAPIKey produces a new raw key plus its persisted record. The raw
// key is returned exactly once; only its hash is ever stored, grounded on
// the r3e-network-service_layer gateway's crypto/rand-then-SHA-256 pattern.
func (r *APIKeyRepository) GenerateAPIKey(ctx context.Context, tenantID uuid.UUID, label string, role Role, limits APIKeyLimits, expiresAt *time.Time) (rawKey string, key *APIKey, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("generating api key: %w", err)
	}
	rawKey = APIKeyPrefix + hex.EncodeToString(raw)
	hash := HashAPIKey(rawKey)

	limitsRaw, err := json.Marshal(limits)
	if err != nil {
		return "", nil, err
	}
	if role == "" {
		role = RoleConsumer
	}

	k := &APIKey{
		ID:        uuid.New(),
		TenantID:  tenantID,
		KeyHash:   hash,
		KeyPrefix: rawKey[:len(APIKeyPrefix)+8],
		Label:     label,
		Role:      role,
		Limits:    limits,
		ExpiresAt: expiresAt,
	}
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO api_keys (id, tenant_id, key_hash, key_prefix, label, role, limits, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at`,
		k.ID, k.TenantID, k.KeyHash, k.KeyPrefix, k.Label, string(k.Role), limitsRaw, k.ExpiresAt,
	).Scan(&k.CreatedAt)
	if err != nil {
		return "", nil, err
	}
	return rawKey, k, nil
}

// HashAPIKey computes the lookup hash for a raw key.
func HashAPIKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

// Authenticate looks up a key by its raw value and touches its last-used
// timestamp. It distinguishes an unknown key (ErrNotFound, maps to HTTP
// 401) from a revoked (ErrKeyRevoked) or expired (ErrKeyExpired) one (both
// map to HTTP 403), per spec.md §4.3 step 1.
func (r *APIKeyRepository) Authenticate(ctx context.Context, rawKey string) (*APIKey, error) {
	hash := HashAPIKey(rawKey)
	k := &APIKey{KeyHash: hash}
	var limitsRaw []byte
	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, key_prefix, label, role, limits, expires_at, revoked_at, last_used_at, created_at
		 FROM api_keys WHERE key_hash = $1`, hash,
	).Scan(&k.ID, &k.TenantID, &k.KeyPrefix, &k.Label, &role, &limitsRaw, &k.ExpiresAt, &k.RevokedAt, &k.LastUsedAt, &k.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	k.Role = Role(role)
	if len(limitsRaw) > 0 {
		if err := json.Unmarshal(limitsRaw, &k.Limits); err != nil {
			return nil, err
		}
	}

	if k.RevokedAt != nil {
		return nil, ErrKeyRevoked
	}
	now := time.Now().UTC()
	if k.ExpiresAt != nil && k.ExpiresAt.Before(now) {
		return nil, ErrKeyExpired
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used_at = $1 WHERE id = $2`, now, k.ID,
	); err != nil {
		return nil, err
	}
	k.LastUsedAt = &now
	return k, nil
}

// Revoke marks a key as revoked; it can no longer authenticate.
func (r *APIKeyRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE api_keys SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByTenant returns every key belonging to a tenant, newest first.
func (r *APIKeyRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*APIKey, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tenant_id, key_prefix, label, role, limits, expires_at, revoked_at, last_used_at, created_at
		 FROM api_keys WHERE tenant_id = $1 ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*APIKey
	for rows.Next() {
		k := &APIKey{}
		var limitsRaw []byte
		var role string
		if err := rows.Scan(&k.ID, &k.TenantID, &k.KeyPrefix, &k.Label, &role, &limitsRaw, &k.ExpiresAt, &k.RevokedAt, &k.LastUsedAt, &k.CreatedAt); err != nil {
			return nil, err
		}
		k.Role = Role(role)
		if len(limitsRaw) > 0 {
			if err := json.Unmarshal(limitsRaw, &k.Limits); err != nil {
				return nil, err
			}
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
