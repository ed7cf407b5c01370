package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/eyeward-labs/overseer/internal/envelope"
	"github.com/eyeward-labs/overseer/internal/store"
	"github.com/google/uuid"
)

// ErrToolNotAllowed is returned when a session's current allowlist does not
// include the tool the caller is attempting to invoke.
var ErrToolNotAllowed = errors.New("pipeline: tool not permitted for current session state")

// ErrBudgetExhausted is returned when a session has used its full call
// budget and the caller attempts to advance it further.
var ErrBudgetExhausted = errors.New("pipeline: session call budget exhausted")

const maxAdvanceRetries = 5

// SessionStore is the persistence surface Engine needs; satisfied by
// *store.SessionRepository.
type SessionStore interface {
	GetByID(ctx context.Context, tenantID, sessionID uuid.UUID) (*store.Session, error)
	AdvanceState(ctx context.Context, tenantID, sessionID uuid.UUID, expectedNextTools, newNextTools []string, newStatus, newBranch string, budgetCallsUsed int) error
}

// Engine advances a session's allowlist in response to an Eye's verdict.
type Engine struct {
	Sessions SessionStore
}

// NewEngine constructs an Engine backed by sessions.
func NewEngine(sessions SessionStore) *Engine {
	return &Engine{Sessions: sessions}
}

// StartAllowlist is the tool set a freshly created session may call first.
func StartAllowlist() []string { return toolNames(start) }

// Advance validates that tool is currently permitted, applies resp's
// outcome to compute the next allowlist, and persists the transition under
// optimistic concurrency, retrying a bounded number of times if another
// call raced it.
func (e *Engine) Advance(ctx context.Context, tenantID, sessionID uuid.UUID, tool envelope.ToolName, resp envelope.Envelope) (*store.Session, error) {
	for attempt := 0; attempt < maxAdvanceRetries; attempt++ {
		session, err := e.Sessions.GetByID(ctx, tenantID, sessionID)
		if err != nil {
			return nil, err
		}

		if !containsTool(session.NextTools, tool) {
			return nil, fmt.Errorf("%w: %s not in %v", ErrToolNotAllowed, tool, session.NextTools)
		}
		if session.BudgetCallsMax > 0 && session.BudgetCallsUsed >= session.BudgetCallsMax {
			return nil, ErrBudgetExhausted
		}

		nextTools, status, branch := e.nextState(session, tool, resp)
		budgetUsed := session.BudgetCallsUsed + 1

		err = e.Sessions.AdvanceState(ctx, tenantID, sessionID, session.NextTools, toolNames(nextTools), status, branch, budgetUsed)
		if errors.Is(err, store.ErrConcurrentModification) {
			continue
		}
		if err != nil {
			return nil, err
		}

		session.NextTools = toolNames(nextTools)
		session.Status = status
		session.LastBranch = branch
		session.BudgetCallsUsed = budgetUsed
		return session, nil
	}
	return nil, fmt.Errorf("pipeline: could not advance session %s after %d attempts (concurrent writers)", sessionID, maxAdvanceRetries)
}

// nextState computes the allowlist, status, and branch a session should
// hold after tool runs. The machine advances on completion regardless of
// resp.OK (spec.md §4.2): a failing call still moves the session forward,
// since every post-Jōgan tool holds the same full allowlist open and a
// pre-Jōgan failure is resolved by resubmitting through the single
// documented successor, not by re-running the tool that just failed.
func (e *Engine) nextState(session *store.Session, tool envelope.ToolName, resp envelope.Envelope) (nextTools []envelope.ToolName, status, branch string) {
	branch = session.LastBranch

	if tool == envelope.ToolSharinganClarify && resp.OK {
		codeRelated, _ := resp.Data[string(envelope.DataIsCodeRelated)].(bool)
		if codeRelated {
			branch = string(envelope.BranchCode)
		} else {
			branch = string(envelope.BranchText)
		}
	}

	if tool == envelope.ToolJoganConfirmIntent || isPostJogan(tool) {
		status = StatusActive
		if resp.OK && (tool == envelope.ToolRinneganFinalApproval || tool == envelope.ToolByakuganConsistency) {
			status = StatusComplete
		}
		return postJoganAllowlist, status, branch
	}

	if next, ok := nextFor[tool]; ok {
		return next, StatusActive, branch
	}
	return nil, StatusComplete, branch
}
