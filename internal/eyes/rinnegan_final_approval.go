package eyes

import (
	"strings"

	"github.com/eyeward-labs/overseer/internal/envelope"
)

// FinalApprovalRequest is the rinnegan/final_approval payload: the
// accumulated approval state from every earlier gate in the code branch,
// plus the text branch's evidence and consistency gates. Approval needs all
// seven gates true, so neither branch's gates alone close out this tool.
type FinalApprovalRequest struct {
	PlanApproved     bool `json:"plan_approved"`
	ScaffoldApproved bool `json:"scaffold_approved"`
	ImplApproved     bool `json:"impl_approved"`
	TestsApproved    bool `json:"tests_approved"`
	DocsApproved     bool `json:"docs_approved"`
	TextValidated    bool `json:"text_validated"`
	Consistent       bool `json:"consistent"`
}

type finalGate struct {
	label string
	ok    bool
}

// FinalApproval answers rinnegan/final_approval: every phase gate must
// have passed before the deliverable can be returned
// (original_source/eyes/rinnegan/final_approval.py).
func FinalApproval(req FinalApprovalRequest) envelope.Envelope {
	gates := []finalGate{
		{"Plan", req.PlanApproved},
		{"Scaffold", req.ScaffoldApproved},
		{"Implementation", req.ImplApproved},
		{"Tests", req.TestsApproved},
		{"Docs", req.DocsApproved},
		{"Evidence", req.TextValidated},
		{"Consistency", req.Consistent},
	}

	var summary strings.Builder
	allOK := true
	for _, g := range gates {
		status := "OK"
		if !g.ok {
			status = "Pending"
			allOK = false
		}
		summary.WriteString("- " + g.label + ": " + status + "\n")
	}

	if !allOK {
		return envelope.Build(envelope.TagRinneganFinal, false, envelope.EPhasesIncomplete,
			"### Phases incomplete\n"+summary.String(),
			map[string]any{
				string(envelope.DataSummaryMD): summary.String(),
			}, envelope.NextCompletePhases)
	}

	return envelope.Build(envelope.TagRinneganFinal, true, envelope.OKAllApproved,
		"### All gates approved\n"+summary.String(),
		map[string]any{
			string(envelope.DataSummaryMD): summary.String(),
		}, envelope.NextReturnDeliverable)
}
