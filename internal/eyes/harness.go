// Package eyes implements the 13 deterministic Eye validators and the
// shared request-handling harness every one of them runs through, modeled
// on original_source/src/third_eye/eyes/_shared.py.
package eyes

import (
	"strings"

	"github.com/eyeward-labs/overseer/internal/envelope"
)

// RequestContext is the envelope's session/context block, carried on every
// Eye call.
type RequestContext struct {
	SessionID    string
	UserID       string
	Lang         string
	BudgetTokens int
	Settings     map[string]any
}

// SettingString reads a string-typed setting, defaulting to fallback when
// absent or of the wrong type.
func (c RequestContext) SettingString(key, fallback string) string {
	if c.Settings == nil {
		return fallback
	}
	if v, ok := c.Settings[key].(string); ok {
		return v
	}
	return fallback
}

// SettingFloat reads a float-typed setting clamped to [0, 1], defaulting to
// fallback when absent or unparseable.
func (c RequestContext) SettingFloat(key string, fallback float64) float64 {
	if c.Settings == nil {
		return fallback
	}
	switch v := c.Settings[key].(type) {
	case float64:
		return clamp01(v)
	case int:
		return clamp01(float64(v))
	default:
		return fallback
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// promptInjectionPatterns are substrings that mark a request as attempting
// to override the host's system instructions (original_source/src/third_eye/constants.py PROMPT_INJECTION_PATTERNS, a guard the
// reference implementation declares but never wires into a handler).
var promptInjectionPatterns = []string{
	"ignore previous instructions",
	"forget the previous",
	"disregard all prior",
	"system prompt",
	"developer prompt",
	"begin_system_prompt",
	"end_system_prompt",
}

// PromptGuard scans free-text request fields for known prompt-injection
// markers. ok=false means the request must be rejected with E_PROMPT_GUARD
// before the Eye's own logic ever runs.
func PromptGuard(tag envelope.EyeTag, fields ...string) (envelope.Envelope, bool) {
	for _, field := range fields {
		lower := strings.ToLower(field)
		for _, pattern := range promptInjectionPatterns {
			if strings.Contains(lower, pattern) {
				return envelope.Build(tag, false, envelope.EPromptGuard,
					"### Prompt Guard\nRequest text matches a known prompt-injection pattern.",
					map[string]any{"issues_md": "Rewrite the request to remove unsafe or meta-instructions."},
					envelope.NextRewriteRequest), false
			}
		}
	}
	return envelope.Envelope{}, true
}

// reasoningRequired lists every Eye tag whose request must carry a
// non-empty reasoning_md before its own validation logic runs.
var reasoningRequired = map[envelope.EyeTag]struct {
	details string
	next    envelope.NextAction
}{
	envelope.TagRinneganPlanReview:  {"(capture rationale, trade-offs, and open questions).", envelope.NextResubmitPlan},
	envelope.TagMangekyoScaffold:    {"(explain file coverage, sequencing, and risks).", envelope.NextResubmitScaffold},
	envelope.TagMangekyoImpl:        {"(design choices, trade-offs, risks).", envelope.NextResubmitImpl},
	envelope.TagMangekyoTests:       {"(outline coverage strategy and risk mitigation).", envelope.NextResubmitTests},
	envelope.TagMangekyoDocs:        {"(call out updated sections and communication).", envelope.NextResubmitDocs},
	envelope.TagTenseigan:           {"(describe evidence searches and verification heuristics).", envelope.NextAddCitations},
	envelope.TagByakugan:            {"(reference comparison sources and rationale).", envelope.NextFixContradictions},
}

// EnforceReasoning returns a rejection envelope when tag requires
// reasoning_md and reasoningMD is blank; ok=true means the caller may
// proceed.
func EnforceReasoning(tag envelope.EyeTag, reasoningMD string) (envelope.Envelope, bool) {
	meta, required := reasoningRequired[tag]
	if !required {
		return envelope.Envelope{}, true
	}
	if strings.TrimSpace(reasoningMD) != "" {
		return envelope.Envelope{}, true
	}
	return envelope.Build(tag, false, envelope.EReasoningMissing,
		"### Rejected\n`reasoning_md` is required "+meta.details,
		map[string]any{}, meta.next), false
}

// BudgetGuard rejects a request whose declared token budget has gone
// negative. A budget of exactly zero means "unset" and is never enforced.
func BudgetGuard(tag envelope.EyeTag, budgetTokens int) (envelope.Envelope, bool) {
	if budgetTokens == 0 {
		return envelope.Envelope{}, true
	}
	if budgetTokens < 0 {
		return envelope.Build(tag, false, envelope.EBudgetExceeded,
			"### Budget Exceeded\nAvailable token budget is negative. Increase the budget or split the request.",
			map[string]any{string(envelope.DataBudgetTokens): budgetTokens},
			"Adjust budget_tokens and retry."), false
	}
	return envelope.Envelope{}, true
}

// Guard runs the universal pre-handler checks in the harness's fixed order:
// prompt injection, reasoning requirement, then budget (the prompt guard short-circuits everything else). The
// first failing guard short-circuits; ok=false means its envelope must be
// returned as-is.
func Guard(tag envelope.EyeTag, ctx RequestContext, reasoningMD string, textFields ...string) (envelope.Envelope, bool) {
	if env, ok := PromptGuard(tag, append(textFields, reasoningMD)...); !ok {
		return env, false
	}
	if env, ok := EnforceReasoning(tag, reasoningMD); !ok {
		return env, false
	}
	if env, ok := BudgetGuard(tag, ctx.BudgetTokens); !ok {
		return env, false
	}
	return envelope.Envelope{}, true
}
