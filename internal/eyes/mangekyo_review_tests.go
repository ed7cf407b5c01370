package eyes

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/eyeward-labs/overseer/internal/envelope"
)

var coveragePattern = regexp.MustCompile(`(?i)(lines|branches)\s*:\s*(\d+)%`)

type coverageThreshold struct {
	lines, branches int
}

var coverageThresholds = map[string]coverageThreshold{
	"lenient": {lines: 70, branches: 55},
	"normal":  {lines: 75, branches: 60},
	"strict":  {lines: 85, branches: 75},
}

// MangekyoTestsRequest is the mangekyo/review_tests payload.
type MangekyoTestsRequest struct {
	CoverageSummaryMD string `json:"coverage_summary_md"`
	ReasoningMD       string `json:"reasoning_md"`
}

func parseCoverage(summary string) (lines, branches int, found bool) {
	for _, match := range coveragePattern.FindAllStringSubmatch(summary, -1) {
		pct, err := strconv.Atoi(match[2])
		if err != nil {
			continue
		}
		found = true
		switch strings.ToLower(match[1]) {
		case "lines":
			lines = pct
		case "branches":
			branches = pct
		}
	}
	return lines, branches, found
}

// ReviewTests answers mangekyo/review_tests: parses a coverage summary and
// enforces the line/branch thresholds for the session's configured
// strictness (original_source/eyes/mangekyo/review_tests.py).
func ReviewTests(ctx RequestContext, req MangekyoTestsRequest) envelope.Envelope {
	if env, ok := Guard(envelope.TagMangekyoTests, ctx, req.ReasoningMD); !ok {
		return env
	}

	strictness := mangekyoStrictness(ctx)
	gate := coverageThresholds[strictness]
	lines, branches, found := parseCoverage(req.CoverageSummaryMD)

	if !found || lines < gate.lines || branches < gate.branches {
		return envelope.Build(envelope.TagMangekyoTests, false, envelope.ETestsInsufficient,
			"### Coverage insufficient\nRequire at least lines:"+strconv.Itoa(gate.lines)+"% branches:"+strconv.Itoa(gate.branches)+"%.",
			map[string]any{
				string(envelope.DataCoverageGate):        gate.lines,
				string(envelope.DataMangekyoStrictness): strictness,
			}, envelope.NextResubmitTests)
	}

	return envelope.Build(envelope.TagMangekyoTests, true, envelope.OKTestsApproved,
		"### Tests approved", map[string]any{
			string(envelope.DataCoverageGate):        gate.lines,
			string(envelope.DataMangekyoStrictness): strictness,
		}, envelope.NextGoToDocs)
}
