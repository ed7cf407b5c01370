// Package pipeline implements the per-session Eye-call state machine: which
// tool a session is allowed to call next, and how a successful or failing
// Eye response advances (or holds) that allowlist.
package pipeline

import "github.com/eyeward-labs/overseer/internal/envelope"

const (
	StatusActive   = "active"
	StatusComplete = "complete"
	StatusAborted  = "aborted"
)

// start is the allowlist every new session begins with: only the
// orientation call and the ambiguity classifier are valid first moves.
var start = []envelope.ToolName{envelope.ToolOverseerNavigator, envelope.ToolSharinganClarify}

// postJoganAllowlist is the full set of code- and text-branch tools opened
// up once jogan/confirm_intent has run. The host may call any of these, in
// any order, for as long as the session remains active — the allowlist
// never narrows back down to a single tool (spec.md §4.2: "any post-Jōgan
// tool -> the same post-Jōgan set; host may interleave branch tools until
// final"), sorted lexicographically for determinism.
var postJoganAllowlist = []envelope.ToolName{
	envelope.ToolByakuganConsistency,
	envelope.ToolMangekyoReviewDocs,
	envelope.ToolMangekyoReviewImpl,
	envelope.ToolMangekyoReviewScaffold,
	envelope.ToolMangekyoReviewTests,
	envelope.ToolRinneganFinalApproval,
	envelope.ToolRinneganPlanReqs,
	envelope.ToolRinneganPlanReview,
	envelope.ToolTenseiganValidateClaims,
}

// isPostJogan reports whether tool belongs to the open post-Jōgan set.
func isPostJogan(tool envelope.ToolName) bool {
	for _, t := range postJoganAllowlist {
		if t == tool {
			return true
		}
	}
	return false
}

// nextFor maps every pre-Jōgan tool to the single successor the session
// advances to once it completes, regardless of its ok value (spec.md §4.2:
// "on completion (regardless of ok value) the machine advances").
var nextFor = map[envelope.ToolName][]envelope.ToolName{
	envelope.ToolOverseerNavigator:   {envelope.ToolSharinganClarify},
	envelope.ToolSharinganClarify:    {envelope.ToolPromptHelperRewrite},
	envelope.ToolPromptHelperRewrite: {envelope.ToolJoganConfirmIntent},
}

func toolNames(tools []envelope.ToolName) []string {
	out := make([]string, len(tools))
	for i, t := range tools {
		out[i] = string(t)
	}
	return out
}

func containsTool(tools []string, tool envelope.ToolName) bool {
	for _, t := range tools {
		if t == string(tool) {
			return true
		}
	}
	return false
}
