package eyes

import "github.com/eyeward-labs/overseer/internal/envelope"

var docsMarkers = []string{"readme", "docs/", "doc/", "documentation"}

// MangekyoDocsRequest is the mangekyo/review_docs payload.
type MangekyoDocsRequest struct {
	DiffsMD     string `json:"diffs_md"`
	ReasoningMD string `json:"reasoning_md"`
}

// ReviewDocs answers mangekyo/review_docs: requires evidence that
// documentation was touched alongside the change
// (original_source/eyes/mangekyo/review_docs.py).
func ReviewDocs(ctx RequestContext, req MangekyoDocsRequest) envelope.Envelope {
	if env, ok := Guard(envelope.TagMangekyoDocs, ctx, req.ReasoningMD, req.DiffsMD); !ok {
		return env
	}

	strictness := mangekyoStrictness(ctx)

	if !containsAny(req.DiffsMD, docsMarkers) {
		return envelope.Build(envelope.TagMangekyoDocs, false, envelope.EDocsMissing,
			"### Docs missing\nNo documentation file reference was found in diffs_md.",
			map[string]any{
				string(envelope.DataMangekyoStrictness): strictness,
			}, envelope.NextResubmitDocs)
	}

	return envelope.Build(envelope.TagMangekyoDocs, true, envelope.OKDocsApproved,
		"### Docs approved", map[string]any{
			string(envelope.DataMangekyoStrictness): strictness,
		}, envelope.NextGoToFinal)
}
