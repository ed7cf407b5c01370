package eyes

import (
	"fmt"
	"strings"

	"github.com/eyeward-labs/overseer/internal/envelope"
)

// ScaffoldFile is one entry in a mangekyo/review_scaffold payload's files
// list.
type ScaffoldFile struct {
	Path   string `json:"path"`
	Change string `json:"change"`
}

// MangekyoScaffoldRequest is the mangekyo/review_scaffold payload.
type MangekyoScaffoldRequest struct {
	Files       []ScaffoldFile `json:"files"`
	ReasoningMD string         `json:"reasoning_md"`
}

func mangekyoStrictness(ctx RequestContext) string {
	settings, _ := ctx.Settings["mangekyo"].(map[string]any)
	if settings == nil {
		return "normal"
	}
	if level, ok := settings["strictness"].(string); ok {
		switch level {
		case "lenient", "normal", "strict":
			return level
		}
	}
	return "normal"
}

func duplicatePaths(files []ScaffoldFile) []string {
	seen := map[string]int{}
	var dupes []string
	for _, f := range files {
		seen[f.Path]++
		if seen[f.Path] == 2 {
			dupes = append(dupes, f.Path)
		}
	}
	return dupes
}

// ReviewScaffold answers mangekyo/review_scaffold: rejects duplicate file
// paths, otherwise builds a per-file checklist; the session's configured
// strictness is reported in the data but does not change the checklist
// (original_source/eyes/mangekyo/review_scaffold.py).
func ReviewScaffold(ctx RequestContext, req MangekyoScaffoldRequest) envelope.Envelope {
	if env, ok := Guard(envelope.TagMangekyoScaffold, ctx, req.ReasoningMD); !ok {
		return env
	}

	strictness := mangekyoStrictness(ctx)

	if dupes := duplicatePaths(req.Files); len(dupes) > 0 {
		return envelope.Build(envelope.TagMangekyoScaffold, false, envelope.EScaffoldIssues,
			"### Scaffold issues\nDuplicate file paths: "+strings.Join(dupes, ", "),
			map[string]any{
				string(envelope.DataMangekyoStrictness): strictness,
			}, envelope.NextResubmitScaffold)
	}

	var checklist strings.Builder
	for _, f := range req.Files {
		checklist.WriteString(fmt.Sprintf("- [ ] %s (%s)\n", f.Path, f.Change))
	}

	return envelope.Build(envelope.TagMangekyoScaffold, true, envelope.OKScaffoldApproved,
		"### Scaffold approved", map[string]any{
			string(envelope.DataChecklistMD):         checklist.String(),
			string(envelope.DataMangekyoStrictness): strictness,
		}, envelope.NextGoToImpl)
}
