package pipeline

import (
	"context"
	"testing"

	"github.com/eyeward-labs/overseer/internal/envelope"
	"github.com/eyeward-labs/overseer/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, ms *MemoryStore) (uuid.UUID, uuid.UUID) {
	t.Helper()
	tenantID := uuid.New()
	sessionID := uuid.New()
	ms.Put(&store.Session{
		ID:             sessionID,
		TenantID:       tenantID,
		Status:         StatusActive,
		NextTools:      StartAllowlist(),
		BudgetCallsMax: 100,
	})
	return tenantID, sessionID
}

func TestEngine_Advance_RejectsDisallowedTool(t *testing.T) {
	ms := NewMemoryStore()
	engine := NewEngine(ms)
	tenantID, sessionID := newTestSession(t, ms)

	_, err := engine.Advance(context.Background(), tenantID, sessionID, envelope.ToolJoganConfirmIntent,
		envelope.Build(envelope.TagJogan, true, envelope.OKIntentConfirmed, "", nil, envelope.NextCallPlanRequirements))

	require.ErrorIs(t, err, ErrToolNotAllowed)
}

func TestEngine_Advance_SharinganBranchesToCode(t *testing.T) {
	ms := NewMemoryStore()
	engine := NewEngine(ms)
	tenantID, sessionID := newTestSession(t, ms)

	resp := envelope.Build(envelope.TagSharingan, true, envelope.OKNoClarificationNeeded, "", map[string]any{
		string(envelope.DataIsCodeRelated): true,
	}, envelope.NextFollowCodeBranch)

	session, err := engine.Advance(context.Background(), tenantID, sessionID, envelope.ToolSharinganClarify, resp)
	require.NoError(t, err)
	assert.Equal(t, string(envelope.BranchCode), session.LastBranch)
	assert.Equal(t, []string{string(envelope.ToolPromptHelperRewrite)}, session.NextTools)
	assert.Equal(t, 1, session.BudgetCallsUsed)
}

func TestEngine_Advance_FailureHoldsPostJoganSetOpen(t *testing.T) {
	ms := NewMemoryStore()
	engine := NewEngine(ms)
	tenantID, sessionID := newTestSession(t, ms)
	ms.Put(&store.Session{ID: sessionID, TenantID: tenantID, Status: StatusActive,
		NextTools: toolNames(postJoganAllowlist), BudgetCallsMax: 10})

	resp := envelope.Build(envelope.TagRinneganPlanReview, false, envelope.EPlanIncomplete, "", nil, envelope.NextResubmitPlan)
	session, err := engine.Advance(context.Background(), tenantID, sessionID, envelope.ToolRinneganPlanReview, resp)
	require.NoError(t, err)
	assert.Equal(t, toolNames(postJoganAllowlist), session.NextTools)
	assert.Equal(t, StatusActive, session.Status)
}

func TestEngine_Advance_InterleavesPostJoganTools(t *testing.T) {
	ms := NewMemoryStore()
	engine := NewEngine(ms)
	tenantID, sessionID := newTestSession(t, ms)
	ms.Put(&store.Session{ID: sessionID, TenantID: tenantID, Status: StatusActive,
		NextTools: toolNames(postJoganAllowlist), BudgetCallsMax: 10})

	// A host may jump straight to review_tests right after review_scaffold,
	// skipping review_impl for now — the allowlist must not have narrowed.
	resp := envelope.Build(envelope.TagMangekyoTests, true, envelope.OKTestsApproved, "", nil, envelope.NextGoToDocs)
	session, err := engine.Advance(context.Background(), tenantID, sessionID, envelope.ToolMangekyoReviewTests, resp)
	require.NoError(t, err)
	assert.Equal(t, toolNames(postJoganAllowlist), session.NextTools)
}

func TestEngine_Advance_JoganOpensFullPostJoganSet(t *testing.T) {
	ms := NewMemoryStore()
	engine := NewEngine(ms)
	tenantID, sessionID := newTestSession(t, ms)
	ms.Put(&store.Session{ID: sessionID, TenantID: tenantID, Status: StatusActive,
		NextTools: []string{string(envelope.ToolJoganConfirmIntent)}, BudgetCallsMax: 10})

	resp := envelope.Build(envelope.TagJogan, true, envelope.OKIntentConfirmed, "", nil, envelope.NextCallPlanRequirements)
	session, err := engine.Advance(context.Background(), tenantID, sessionID, envelope.ToolJoganConfirmIntent, resp)
	require.NoError(t, err)
	assert.Equal(t, toolNames(postJoganAllowlist), session.NextTools)
	assert.Equal(t, StatusActive, session.Status)
}

func TestEngine_Advance_FinalApprovalCompletesSession(t *testing.T) {
	ms := NewMemoryStore()
	engine := NewEngine(ms)
	tenantID, sessionID := newTestSession(t, ms)
	ms.Put(&store.Session{ID: sessionID, TenantID: tenantID, Status: StatusActive,
		NextTools: toolNames(postJoganAllowlist), LastBranch: string(envelope.BranchCode), BudgetCallsMax: 10})

	resp := envelope.Build(envelope.TagRinneganFinal, true, envelope.OKAllApproved, "", nil, envelope.NextReturnDeliverable)
	session, err := engine.Advance(context.Background(), tenantID, sessionID, envelope.ToolRinneganFinalApproval, resp)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, session.Status)
	assert.Equal(t, toolNames(postJoganAllowlist), session.NextTools)
}

func TestEngine_Advance_FailedFinalApprovalStaysActive(t *testing.T) {
	ms := NewMemoryStore()
	engine := NewEngine(ms)
	tenantID, sessionID := newTestSession(t, ms)
	ms.Put(&store.Session{ID: sessionID, TenantID: tenantID, Status: StatusActive,
		NextTools: toolNames(postJoganAllowlist), LastBranch: string(envelope.BranchCode), BudgetCallsMax: 10})

	resp := envelope.Build(envelope.TagRinneganFinal, false, envelope.EPlanIncomplete, "", nil, envelope.NextResubmitPlan)
	session, err := engine.Advance(context.Background(), tenantID, sessionID, envelope.ToolRinneganFinalApproval, resp)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, session.Status)
	assert.Equal(t, toolNames(postJoganAllowlist), session.NextTools)
}

func TestEngine_Advance_BudgetExhausted(t *testing.T) {
	ms := NewMemoryStore()
	engine := NewEngine(ms)
	tenantID := uuid.New()
	sessionID := uuid.New()
	ms.Put(&store.Session{ID: sessionID, TenantID: tenantID, Status: StatusActive,
		NextTools: StartAllowlist(), BudgetCallsMax: 1, BudgetCallsUsed: 1})

	resp := envelope.Build(envelope.TagOverseer, true, envelope.OKOverseerGuide, "", nil, envelope.NextBeginWithSharingan)
	_, err := engine.Advance(context.Background(), tenantID, sessionID, envelope.ToolOverseerNavigator, resp)
	require.ErrorIs(t, err, ErrBudgetExhausted)
}
