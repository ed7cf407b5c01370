package eyes

import (
	"regexp"
	"strings"

	"github.com/eyeward-labs/overseer/internal/envelope"
)

var schemaSectionLabels = []string{
	"High-Level Overview",
	"File Impact Table",
	"Step-by-step Implementation Plan",
	"Error Handling & Edge Cases",
	"Test Strategy",
	"Rollback Plan",
	"Documentation Updates",
}

var fileImpactTablePattern = regexp.MustCompile(`(?m)^\s*\|.+\|\s*\n\s*\|[\s:|-]+\|\s*$`)

// PlanReviewRequest is the rinnegan/plan_review payload.
type PlanReviewRequest struct {
	PlanMD      string `json:"plan_md"`
	ReasoningMD string `json:"reasoning_md"`
}

// ReviewPlan answers rinnegan/plan_review: checks every required section
// heading is present, the file impact table is a real Markdown table, and
// reasoning_md was attached (original_source/eyes/rinnegan/plan_review.py).
func ReviewPlan(ctx RequestContext, req PlanReviewRequest) envelope.Envelope {
	if env, ok := Guard(envelope.TagRinneganPlanReview, ctx, req.ReasoningMD, req.PlanMD); !ok {
		return env
	}

	requireRollback := true
	if v, ok := ctx.Settings["require_rollback"].(bool); ok {
		requireRollback = v
	}

	var checklist, issues strings.Builder
	var fixes []string
	for _, label := range schemaSectionLabels {
		if label == "Rollback Plan" && !requireRollback {
			continue
		}
		if strings.Contains(req.PlanMD, label) {
			checklist.WriteString("- [x] " + label + "\n")
		} else {
			checklist.WriteString("- [ ] " + label + "\n")
			issues.WriteString("Missing section: " + label + "\n")
			fixes = append(fixes, "Add a \""+label+"\" section.")
		}
	}

	if strings.Contains(req.PlanMD, "File Impact Table") && !fileImpactTablePattern.MatchString(req.PlanMD) {
		issues.WriteString("File Impact Table is not a valid Markdown table (header + divider row required).\n")
		fixes = append(fixes, "Format the File Impact Table as a Markdown table with a header and divider row.")
	}

	if issues.Len() > 0 {
		return envelope.Build(envelope.TagRinneganPlanReview, false, envelope.EPlanIncomplete,
			"### Plan incomplete", map[string]any{
				string(envelope.DataChecklistMD):       checklist.String(),
				string(envelope.DataIssuesMD):           issues.String(),
				string(envelope.DataFixInstructionsMD): strings.Join(fixes, "\n"),
			}, envelope.NextResubmitPlan)
	}

	return envelope.Build(envelope.TagRinneganPlanReview, true, envelope.OKPlanApproved,
		"### Plan approved", map[string]any{
			string(envelope.DataChecklistMD): checklist.String(),
			string(envelope.DataApproved):     true,
		}, envelope.NextGoToMangekyoScaffold)
}
