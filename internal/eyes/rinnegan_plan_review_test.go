package eyes

import (
	"testing"

	"github.com/eyeward-labs/overseer/internal/envelope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completePlanMD = `## High-Level Overview
We will add retries.

## File Impact Table
| Path | Change | Risk |
| --- | --- | --- |
| internal/client/http.go | modify | low |

## Step-by-step Implementation Plan
1. Add backoff helper.

## Error Handling & Edge Cases
Handle context cancellation.

## Test Strategy
Unit tests for backoff timing.

## Rollback Plan
Revert the commit.

## Documentation Updates
Update the client README.`

func TestReviewPlan_Approved(t *testing.T) {
	env := ReviewPlan(RequestContext{}, PlanReviewRequest{PlanMD: completePlanMD, ReasoningMD: "considered alternatives"})
	require.True(t, env.OK)
	assert.Equal(t, envelope.OKPlanApproved, env.Code)
	assert.Equal(t, envelope.NextGoToMangekyoScaffold, env.Next)
}

func TestReviewPlan_MissingSection(t *testing.T) {
	env := ReviewPlan(RequestContext{}, PlanReviewRequest{PlanMD: "## High-Level Overview\nonly this.", ReasoningMD: "why"})
	assert.False(t, env.OK)
	assert.Equal(t, envelope.EPlanIncomplete, env.Code)
	assert.Equal(t, envelope.NextResubmitPlan, env.Next)
}

func TestReviewPlan_RollbackOptedOut(t *testing.T) {
	ctx := RequestContext{Settings: map[string]any{"require_rollback": false}}
	planMinusRollback := `## High-Level Overview
x

## File Impact Table
| Path | Change | Risk |
| --- | --- | --- |
| a.go | modify | low |

## Step-by-step Implementation Plan
1. x

## Error Handling & Edge Cases
x

## Test Strategy
x

## Documentation Updates
x`
	env := ReviewPlan(ctx, PlanReviewRequest{PlanMD: planMinusRollback, ReasoningMD: "why"})
	assert.True(t, env.OK)
}

func TestReviewPlan_MissingReasoning(t *testing.T) {
	env := ReviewPlan(RequestContext{}, PlanReviewRequest{PlanMD: completePlanMD, ReasoningMD: ""})
	assert.False(t, env.OK)
	assert.Equal(t, envelope.EReasoningMissing, env.Code)
}
