package eyes

import (
	"strings"

	"github.com/eyeward-labs/overseer/internal/envelope"
)

const defaultConsistencyTolerance = 0.85

// ByakuganRequest is the byakugan/consistency_check payload.
type ByakuganRequest struct {
	CurrentMD   string `json:"current_md"`
	PriorMD     string `json:"prior_md"`
	ReasoningMD string `json:"reasoning_md"`
}

func consistencyScore(text string) (float64, []string) {
	score := 1.0
	var issues []string

	if todoPattern.MatchString(text) {
		score -= 0.4
		issues = append(issues, "Unresolved TODO/TBD/FIXME marker found.")
	}

	for _, pair := range contradictionPairs {
		if pair[0].MatchString(text) && pair[1].MatchString(text) {
			score -= 0.3
			issues = append(issues, "Contradictory phrasing: \""+pair[0].String()+"\" alongside \""+pair[1].String()+"\".")
		}
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "no change") && containsAny(text, changeKeywords) {
		score -= 0.2
		issues = append(issues, "\"no change\" stated alongside a change keyword.")
	}

	return clamp01(score), issues
}

// CheckConsistency answers byakugan/consistency_check: scores the current
// draft against known contradiction markers and the tolerance configured
// for the session (original_source/eyes/byakugan.py).
func CheckConsistency(ctx RequestContext, req ByakuganRequest) envelope.Envelope {
	if env, ok := Guard(envelope.TagByakugan, ctx, req.ReasoningMD, req.CurrentMD, req.PriorMD); !ok {
		return env
	}

	tolerance := ctx.SettingFloat("consistency_tolerance", defaultConsistencyTolerance)
	score, issues := consistencyScore(req.CurrentMD + "\n" + req.PriorMD)

	if len(issues) > 0 && score < tolerance {
		return envelope.Build(envelope.TagByakugan, false, envelope.EContradictionFound,
			"### Contradictions detected\n"+strings.Join(issues, "\n"),
			map[string]any{
				string(envelope.DataConsistencyScore): score,
				string(envelope.DataConsistent):        false,
			}, envelope.NextFixContradictions)
	}

	return envelope.Build(envelope.TagByakugan, true, envelope.OKConsistent,
		"### Consistent", map[string]any{
			string(envelope.DataConsistencyScore): score,
			string(envelope.DataConsistent):        true,
		}, envelope.NextReturnDeliverable)
}
