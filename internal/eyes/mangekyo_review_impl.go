package eyes

import (
	"strings"

	"github.com/eyeward-labs/overseer/internal/envelope"
)

// MangekyoImplRequest is the mangekyo/review_impl payload.
type MangekyoImplRequest struct {
	DiffsMD     string `json:"diffs_md"`
	ReasoningMD string `json:"reasoning_md"`
}

// ReviewImpl answers mangekyo/review_impl: requires at least one fenced
// diff block before approving (original_source/eyes/mangekyo/review_impl.py).
func ReviewImpl(ctx RequestContext, req MangekyoImplRequest) envelope.Envelope {
	if env, ok := Guard(envelope.TagMangekyoImpl, ctx, req.ReasoningMD, req.DiffsMD); !ok {
		return env
	}

	strictness := mangekyoStrictness(ctx)

	if !strings.Contains(req.DiffsMD, "```diff") {
		return envelope.Build(envelope.TagMangekyoImpl, false, envelope.EImplIssues,
			"### Implementation issues\nNo fenced `diff` block was found in diffs_md.",
			map[string]any{
				string(envelope.DataMangekyoStrictness): strictness,
			}, envelope.NextResubmitImpl)
	}

	return envelope.Build(envelope.TagMangekyoImpl, true, envelope.OKImplApproved,
		"### Implementation approved", map[string]any{
			string(envelope.DataMangekyoStrictness): strictness,
		}, envelope.NextGoToTests)
}
