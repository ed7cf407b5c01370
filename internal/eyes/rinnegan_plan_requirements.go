package eyes

import "github.com/eyeward-labs/overseer/internal/envelope"

const planSchemaMD = `### Plan schema

A submitted plan must contain these sections, each with its own heading:

- High-Level Overview
- File Impact Table (a Markdown table: path | change type | risk)
- Step-by-step Implementation Plan
- Error Handling & Edge Cases
- Test Strategy
- Rollback Plan (unless the session has disabled it)
- Documentation Updates`

const planExampleMD = `## High-Level Overview
...

## File Impact Table
| Path | Change | Risk |
| --- | --- | --- |
| internal/foo/foo.go | modify | low |

## Step-by-step Implementation Plan
1. ...

## Error Handling & Edge Cases
...

## Test Strategy
...

## Rollback Plan
...

## Documentation Updates
...`

const planAcceptanceCriteriaMD = `- Every required section is present with a non-empty body.
- The File Impact Table is a real Markdown table (header row plus divider row).
- reasoning_md is attached when resubmitting to plan_review.`

// PlanRequirements answers rinnegan/plan_requirements: a stateless
// emission of the plan schema, an example, and acceptance criteria
// (original_source/eyes/rinnegan/plan_requirements.py).
func PlanRequirements() envelope.Envelope {
	return envelope.Build(envelope.TagRinneganPlanRequirements, true, envelope.OKSchemaEmitted,
		"### Plan schema emitted", map[string]any{
			string(envelope.DataExpectedSchemaMD):     planSchemaMD,
			string(envelope.DataExampleMD):             planExampleMD,
			string(envelope.DataAcceptanceCriteriaMD): planAcceptanceCriteriaMD,
		}, envelope.NextSubmitPlanReview)
}
