package eyes

import (
	"strings"

	"github.com/eyeward-labs/overseer/internal/envelope"
)

var joganRequiredSections = []string{"ROLE:", "TASK:", "CONTEXT:", "REQUIREMENTS:", "OUTPUT:"}

// JoganRequest is the jogan/confirm_intent payload.
type JoganRequest struct {
	RefinedPromptMD  string `json:"refined_prompt_md"`
	EstimatedTokens  int    `json:"estimated_tokens"`
}

func missingSections(md string, sections []string) []string {
	upper := strings.ToUpper(md)
	var missing []string
	for _, section := range sections {
		if !strings.Contains(upper, section) {
			missing = append(missing, section)
		}
	}
	return missing
}

// ConfirmIntent answers jogan/confirm_intent: verifies the restructured
// prompt carries every required section header and a positive token
// estimate before letting the caller proceed to planning or drafting
// (original_source/eyes/jogan.py).
func ConfirmIntent(req JoganRequest) envelope.Envelope {
	if env, ok := PromptGuard(envelope.TagJogan, req.RefinedPromptMD); !ok {
		return env
	}

	missing := missingSections(req.RefinedPromptMD, joganRequiredSections)
	if len(missing) > 0 || req.EstimatedTokens <= 0 {
		var issues strings.Builder
		issues.WriteString("### Intent not confirmed\n")
		if len(missing) > 0 {
			issues.WriteString("Missing sections: ")
			issues.WriteString(strings.Join(missing, ", "))
			issues.WriteString("\n")
		}
		if req.EstimatedTokens <= 0 {
			issues.WriteString("estimated_tokens must be positive.\n")
		}
		return envelope.Build(envelope.TagJogan, false, envelope.EIntentUnconfirmed,
			issues.String(), map[string]any{
				string(envelope.DataIntentConfirmed): false,
			}, envelope.NextRerunJogan)
	}

	return envelope.Build(envelope.TagJogan, true, envelope.OKIntentConfirmed,
		"### Intent confirmed", map[string]any{
			string(envelope.DataIntentConfirmed): true,
			string(envelope.DataConfirmationMD):  "All required sections present; token estimate is positive.",
		}, envelope.NextCallPlanRequirements)
}
