package eyes

import (
	"strings"

	"github.com/eyeward-labs/overseer/internal/envelope"
)

const defaultCitationCutoff = 0.80

// Citation is one entry of a tenseigan/validate_claims payload's citations
// list.
type Citation struct {
	Claim      string   `json:"claim"`
	Source     string   `json:"source"`
	Confidence *float64 `json:"confidence"`
}

// TenseiganRequest is the tenseigan/validate_claims payload.
type TenseiganRequest struct {
	DraftMD     string     `json:"draft_md"`
	Citations   []Citation `json:"citations"`
	ReasoningMD string     `json:"reasoning_md"`
}

// ValidateClaims answers tenseigan/validate_claims: requires a citations
// table in the draft and rejects any citation whose confidence falls
// below the session's cutoff, treating a missing confidence as 0.0
// (original_source/eyes/tenseigan.py).
func ValidateClaims(ctx RequestContext, req TenseiganRequest) envelope.Envelope {
	if env, ok := Guard(envelope.TagTenseigan, ctx, req.ReasoningMD, req.DraftMD); !ok {
		return env
	}

	lower := strings.ToLower(req.DraftMD)
	if !strings.Contains(lower, "### citations") || !strings.Contains(req.DraftMD, "|") {
		return envelope.Build(envelope.TagTenseigan, false, envelope.ECitationsMissing,
			"### Citations missing\ndraft_md must include a \"### Citations\" section with a Markdown table.",
			map[string]any{}, envelope.NextAddCitations)
	}

	cutoff := ctx.SettingFloat("citation_cutoff", defaultCitationCutoff)

	var weak []string
	for _, c := range req.Citations {
		confidence := 0.0
		if c.Confidence != nil {
			confidence = *c.Confidence
		}
		if confidence < cutoff || strings.TrimSpace(c.Source) == "" {
			weak = append(weak, c.Claim)
		}
	}

	if len(weak) > 0 {
		return envelope.Build(envelope.TagTenseigan, false, envelope.ECitationsMissing,
			"### Weak citations\nThe following claims lack a sufficiently confident source: "+strings.Join(weak, "; "),
			map[string]any{
				string(envelope.DataClaimsMD): strings.Join(weak, "\n"),
			}, envelope.NextAddCitations)
	}

	return envelope.Build(envelope.TagTenseigan, true, envelope.OKTextValidated,
		"### Text validated", map[string]any{
			string(envelope.DataCitationsMD): req.DraftMD,
		}, envelope.NextGoToByakugan)
}
