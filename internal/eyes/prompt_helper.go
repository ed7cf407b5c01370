package eyes

import (
	"strings"

	"github.com/eyeward-labs/overseer/internal/envelope"
)

// PromptHelperRequest is the helper/rewrite_prompt payload.
type PromptHelperRequest struct {
	UserPrompt             string `json:"user_prompt"`
	ClarificationAnswersMD string `json:"clarification_answers_md"`
}

func sanitizedBullets(md string) string {
	lines := strings.Split(md, "\n")
	var out strings.Builder
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "-")
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out.WriteString("- ")
		out.WriteString(line)
		out.WriteString("\n")
	}
	return out.String()
}

// RewritePrompt answers helper/rewrite_prompt: folds the user's original
// ask and any clarification answers into a structured ROLE/TASK/CONTEXT/
// REQUIREMENTS/OUTPUT prompt (original_source/eyes/helper/rewrite_prompt.py).
func RewritePrompt(req PromptHelperRequest) envelope.Envelope {
	if env, ok := PromptGuard(envelope.TagPromptHelper, req.UserPrompt, req.ClarificationAnswersMD); !ok {
		return env
	}

	var md strings.Builder
	md.WriteString("ROLE:\nYou are an engineering assistant executing a validated task.\n\n")
	md.WriteString("TASK:\n")
	md.WriteString(strings.TrimSpace(req.UserPrompt))
	md.WriteString("\n\n")
	md.WriteString("CONTEXT:\n")
	if answers := sanitizedBullets(req.ClarificationAnswersMD); answers != "" {
		md.WriteString(answers)
	} else {
		md.WriteString("- No clarifications were required.\n")
	}
	md.WriteString("\nREQUIREMENTS:\n- Follow the pipeline's validation gates in order.\n- Do not skip a failing gate.\n\n")
	md.WriteString("OUTPUT:\nA confirmed intent ready for planning or drafting.\n")

	return envelope.Build(envelope.TagPromptHelper, true, envelope.OKPromptReady,
		"### Prompt rewritten", map[string]any{
			string(envelope.DataPromptMD): md.String(),
		}, envelope.NextSendToJogan)
}
