package eyes

import (
	"fmt"

	"github.com/eyeward-labs/overseer/internal/envelope"
)

// NavigatorRequest is the overseer/navigator payload: an optional
// free-text goal the host agent wants oriented on.
type NavigatorRequest struct {
	Goal string `json:"goal"`
}

const pipelineContractMD = `### Third Eye pipeline contract

Every call returns an envelope: ` + "`tag, ok, code, md, data, next`" + `.
` + "`ok=false`" + ` always means revise and resubmit to the same tool; never
advance past a failing gate.

1. sharingan/clarify — classify ambiguity, branch into code or text.
2. helper/rewrite_prompt — restructure the goal plus any clarifications.
3. jogan/confirm_intent — confirm the restructured prompt before planning.
4. Code branch: rinnegan/plan_requirements -> rinnegan/plan_review ->
   mangekyo/review_scaffold -> mangekyo/review_impl -> mangekyo/review_tests
   -> mangekyo/review_docs -> rinnegan/final_approval.
5. Text branch: tenseigan/validate_claims -> byakugan/consistency_check.`

// Navigate answers overseer/navigator: a static orientation response,
// optionally echoing the caller's goal (original_source/eyes/overseer.py).
func Navigate(req NavigatorRequest) envelope.Envelope {
	md := pipelineContractMD
	if req.Goal != "" {
		md = fmt.Sprintf("Goal received: %s\n\n%s", req.Goal, pipelineContractMD)
	}
	return envelope.Build(envelope.TagOverseer, true, envelope.OKOverseerGuide, md,
		map[string]any{
			string(envelope.DataPolicyMD): "Never skip a gate. Every `ok=false` response must be resolved before moving on.",
		},
		envelope.NextBeginWithSharingan)
}
