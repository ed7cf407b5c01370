package eyes

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/eyeward-labs/overseer/internal/envelope"
)

const defaultAmbiguityThreshold = 0.35

// SharinganRequest is the sharingan/clarify payload.
type SharinganRequest struct {
	Goal string `json:"goal"`
}

// Validate rejects an empty goal before scoring.
func (r SharinganRequest) Validate() error {
	if strings.TrimSpace(r.Goal) == "" {
		return fmt.Errorf("goal must not be empty")
	}
	return nil
}

// hasVerbLikeToken reports whether goal contains a token that reads as an
// imperative verb: one ending in "-ing", or a member of imperativeHints
// (spec.md §4.4.2).
func hasVerbLikeToken(goal string) bool {
	for _, word := range strings.Fields(goal) {
		token := strings.ToLower(strings.Trim(word, ".,:;?!"))
		if token == "" {
			continue
		}
		if strings.HasSuffix(token, "ing") {
			return true
		}
		for _, hint := range imperativeHints {
			if token == hint {
				return true
			}
		}
	}
	return false
}

func ambiguityScore(goal string) float64 {
	words := strings.Fields(goal)
	wordCount := len(words)

	var score float64
	switch {
	case wordCount < 8:
		score += 0.4
	case wordCount < 15:
		score += 0.25
	case wordCount < 40:
		score += 0.1
	}

	if strings.Count(goal, "?") == 0 {
		score += 0.05
	}

	score += float64(countOccurrences(goal, vagueWords)) * 0.12
	score += float64(countOccurrences(goal, unspecifiedWords)) * 0.10

	if !hasVerbLikeToken(goal) {
		score += 0.10
	}

	return clamp01(score)
}

// isCodeRelated classifies goal as code-related if any tooling, artifact,
// tech, extension, fence, or strong-action signal is present. Weak action
// words only count toward the verdict alongside another such signal
// (spec.md §4.4.2).
func isCodeRelated(goal string) bool {
	lower := strings.ToLower(goal)
	hasSignal := containsAny(lower, codeToolingKeywords) ||
		containsAny(lower, codeArtifactKeywords) ||
		containsAny(lower, codeTechKeywords) ||
		codeExtensionPattern.MatchString(lower) ||
		codeFencePattern.MatchString(goal) ||
		containsAny(lower, strongActionWords)
	if hasSignal {
		return true
	}
	return containsAny(lower, weakActionWords) && hasSignal
}

func clarificationCount(score float64) int {
	x := int(math.Ceil(score * 5))
	if x < 2 {
		return 2
	}
	if x > 6 {
		return 6
	}
	return x
}

// Clarify answers sharingan/clarify: scores goal ambiguity, classifies the
// code/text branch, and either asks for clarification or clears the caller
// through (original_source/eyes/sharingan.py).
func Clarify(ctx RequestContext, req SharinganRequest) envelope.Envelope {
	if env, ok := PromptGuard(envelope.TagSharingan, req.Goal); !ok {
		return env
	}

	threshold := ctx.SettingFloat("ambiguity_threshold", defaultAmbiguityThreshold)
	score := ambiguityScore(req.Goal)
	codeRelated := isCodeRelated(req.Goal)
	ambiguous := score >= threshold

	data := map[string]any{
		string(envelope.DataScore):         score,
		string(envelope.DataAmbiguous):      ambiguous,
		string(envelope.DataIsCodeRelated):  codeRelated,
		string(envelope.DataToolVersion):    envelope.ToolVersion[envelope.ToolSharinganClarify],
	}

	if ambiguous {
		x := clarificationCount(score)
		var questions strings.Builder
		questions.WriteString("### Clarifying questions\n")
		for i := 1; i <= x; i++ {
			questions.WriteString(strconv.Itoa(i))
			questions.WriteString(". What specifically should change, and where?\n")
		}
		data[string(envelope.DataQuestionsMD)] = questions.String()
		data[string(envelope.DataX)] = x
		return envelope.Build(envelope.TagSharingan, false, envelope.ENeedsClarification,
			"### Ambiguous request\nThe goal is too vague to act on safely. Answer the questions below.",
			data, envelope.NextAskClarifications)
	}

	next := envelope.NextFollowTextBranch
	if codeRelated {
		next = envelope.NextFollowCodeBranch
	}
	return envelope.Build(envelope.TagSharingan, true, envelope.OKNoClarificationNeeded,
		"### Clear enough\nThe goal carries sufficient detail to proceed without clarification.",
		data, next)
}
