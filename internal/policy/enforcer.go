// Package policy gates every Eye call behind API-key authentication, tenant
// isolation, tool/branch eligibility, rate limiting, and a token budget
// check, recording an audit entry for every decision regardless of outcome
// (spec.md §4.3).
package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/eyeward-labs/overseer/internal/envelope"
	"github.com/eyeward-labs/overseer/internal/store"
	"github.com/google/uuid"
)

var (
	ErrUnauthenticated  = errors.New("policy: missing or unrecognized api key")
	ErrKeyRevoked       = errors.New("policy: api key revoked")
	ErrKeyExpired       = errors.New("policy: api key expired")
	ErrWrongTenant      = errors.New("policy: tenant mismatch")
	ErrTenantForbidden  = errors.New("policy: tenant not in key allowlist")
	ErrUnknownTool      = errors.New("policy: unrecognized tool name")
	ErrToolForbidden    = errors.New("policy: tool not in key allowlist")
	ErrBranchForbidden  = errors.New("policy: branch not in key allowlist")
	ErrRateLimited      = errors.New("policy: rate limit exceeded")
	ErrBudgetPerRequest = errors.New("policy: per-request budget exceeded")
	ErrBudgetDaily      = errors.New("policy: daily budget exceeded")
)

const (
	decisionAllow = "allow"
	decisionDeny  = "deny"
)

// APIKeyAuthenticator is the subset of *store.APIKeyRepository Enforcer
// needs.
type APIKeyAuthenticator interface {
	Authenticate(ctx context.Context, rawKey string) (*store.APIKey, error)
}

// AuditRecorder is the subset of *store.AuditRepository Enforcer needs.
type AuditRecorder interface {
	Record(ctx context.Context, rec store.AuditRecord) error
}

// Limits configures the gateway-wide defaults applied when an api key's own
// Limits leave a field at its zero value (spec.md §4.3: "Default (used when
// a limit is absent from the key)").
type Limits struct {
	RatePerMinute       int
	RateWindow          time.Duration
	BudgetMaxPerRequest int
	BudgetDaily         int
}

// DefaultLimits allows 60 Eye calls per API key per minute and a generous
// per-request/daily token ceiling, the same order of magnitude as a single
// host agent working through one pipeline run.
func DefaultLimits() Limits {
	return Limits{
		RatePerMinute:       60,
		RateWindow:          time.Minute,
		BudgetMaxPerRequest: 50_000,
		BudgetDaily:         1_000_000,
	}
}

// Enforcer is the policy layer: one instance is shared across all requests.
type Enforcer struct {
	Keys    APIKeyAuthenticator
	Audit   AuditRecorder
	Counter Counter
	Limits  Limits
}

// NewEnforcer constructs an Enforcer with the default gateway limits.
func NewEnforcer(keys APIKeyAuthenticator, audit AuditRecorder, counter Counter) *Enforcer {
	return &Enforcer{Keys: keys, Audit: audit, Counter: counter, Limits: DefaultLimits()}
}

// Authenticate resolves a raw API key to its tenant-scoped record,
// distinguishing a missing key (401) from a revoked or expired one (403) per
// spec.md §4.3 step 1.
func (e *Enforcer) Authenticate(ctx context.Context, rawKey string) (*store.APIKey, error) {
	key, err := e.Keys.Authenticate(ctx, rawKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrUnauthenticated
	case errors.Is(err, store.ErrKeyRevoked):
		return nil, ErrKeyRevoked
	case errors.Is(err, store.ErrKeyExpired):
		return nil, ErrKeyExpired
	case err != nil:
		return nil, err
	}
	return key, nil
}

// Request carries the facts about one incoming call the Enforcer needs to
// run the full gate order of spec.md §4.3 steps 2-5.
type Request struct {
	Method        string
	Path          string
	RequestTenant uuid.UUID // context.tenant, the tenant the caller asserts
	SessionID     *uuid.UUID
	Tool          envelope.ToolName
	BudgetTokens  int
}

// Authorize runs the full gate order for one Eye call: tenant isolation,
// tool/branch allow, rate limiting, and token budget. It always writes
// exactly one audit record, whatever the outcome.
func (e *Enforcer) Authorize(ctx context.Context, key *store.APIKey, req Request) error {
	branch := string(envelope.ToolBranch[req.Tool])

	deny := func(reason string, err error) error {
		e.audit(ctx, key, req, decisionDeny, 0, reason)
		return err
	}

	// Step 2: tenant guard. Admins bypass the bound-tenant check entirely.
	if key.Role != store.RoleAdmin && key.TenantID != req.RequestTenant {
		return deny("tenant mismatch", ErrWrongTenant)
	}
	if len(key.Limits.Tenants) > 0 && !slices.Contains(key.Limits.Tenants, req.RequestTenant.String()) {
		return deny("tenant not in key allowlist", ErrTenantForbidden)
	}

	// Step 3: tool and branch allow.
	if !req.Tool.IsValid() {
		return deny("unrecognized tool", ErrUnknownTool)
	}
	if len(key.Limits.Tools) > 0 && !slices.Contains(key.Limits.Tools, string(req.Tool)) {
		return deny("tool not in key allowlist", ErrToolForbidden)
	}
	if len(key.Limits.Branches) > 0 && !slices.Contains(key.Limits.Branches, branch) {
		return deny("branch not in key allowlist", ErrBranchForbidden)
	}

	// Step 4: rate limit, sliding fixed window keyed by (key_id, window).
	perMinute := key.Limits.RatePerMinute
	if perMinute <= 0 {
		perMinute = e.Limits.RatePerMinute
	}
	rateKey := fmt.Sprintf("apikey:rate:%s", key.ID)
	if _, allowed := e.Counter.Incr(rateKey, e.Limits.RateWindow, perMinute); !allowed {
		return deny("rate limit exceeded", ErrRateLimited)
	}

	// Step 5: budget guard, per-request then rolling UTC-day cumulative.
	maxPerRequest := key.Limits.BudgetMaxPerRequest
	if maxPerRequest <= 0 {
		maxPerRequest = e.Limits.BudgetMaxPerRequest
	}
	if req.BudgetTokens > maxPerRequest {
		return deny("per-request budget exceeded", ErrBudgetPerRequest)
	}

	dailyMax := key.Limits.BudgetDaily
	if dailyMax <= 0 {
		dailyMax = e.Limits.BudgetDaily
	}
	budgetKey := fmt.Sprintf("apikey:budget:%s:%s", key.ID, utcDay())
	if _, allowed := e.Counter.IncrBy(budgetKey, untilNextUTCDay(), req.BudgetTokens, dailyMax); !allowed {
		return deny("daily budget exceeded", ErrBudgetDaily)
	}

	e.audit(ctx, key, req, decisionAllow, 200, "")
	return nil
}

func (e *Enforcer) audit(ctx context.Context, key *store.APIKey, req Request, decision string, status int, reason string) {
	branch := string(envelope.ToolBranch[req.Tool])
	keyID := key.ID
	rec := store.AuditRecord{
		TenantID:     req.RequestTenant,
		SessionID:    req.SessionID,
		APIKeyID:     &keyID,
		KeyHash:      key.KeyHash,
		Role:         string(key.Role),
		Method:       req.Method,
		Path:         req.Path,
		Status:       status,
		ToolName:     string(req.Tool),
		Branch:       branch,
		BudgetTokens: req.BudgetTokens,
		Decision:     decision,
		Reason:       reason,
	}
	// An audit-write failure must never mask the policy decision already
	// made and returned to the caller; log it and move on.
	if err := e.Audit.Record(ctx, rec); err != nil {
		slog.Error("policy: failed to record audit entry", "tenant_id", req.RequestTenant, "tool", req.Tool, "decision", decision, "error", err)
	}
}

func utcDay() string {
	return time.Now().UTC().Format("2006-01-02")
}

func untilNextUTCDay() time.Duration {
	now := time.Now().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	return next.Sub(now)
}
