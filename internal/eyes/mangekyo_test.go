package eyes

import (
	"testing"

	"github.com/eyeward-labs/overseer/internal/envelope"
	"github.com/stretchr/testify/assert"
)

func TestReviewScaffold_DuplicatePathRejected(t *testing.T) {
	req := MangekyoScaffoldRequest{
		Files:       []ScaffoldFile{{Path: "a.go", Change: "modify"}, {Path: "a.go", Change: "modify"}},
		ReasoningMD: "why",
	}
	env := ReviewScaffold(RequestContext{}, req)
	assert.False(t, env.OK)
	assert.Equal(t, envelope.EScaffoldIssues, env.Code)
}

func TestReviewScaffold_Approved(t *testing.T) {
	req := MangekyoScaffoldRequest{
		Files:       []ScaffoldFile{{Path: "a.go", Change: "modify"}, {Path: "b.go", Change: "create"}},
		ReasoningMD: "why",
	}
	env := ReviewScaffold(RequestContext{}, req)
	assert.True(t, env.OK)
	assert.Equal(t, "normal", env.Data[string(envelope.DataMangekyoStrictness)])
}

func TestReviewImpl_NoDiffRejected(t *testing.T) {
	env := ReviewImpl(RequestContext{}, MangekyoImplRequest{DiffsMD: "no diff here", ReasoningMD: "why"})
	assert.False(t, env.OK)
	assert.Equal(t, envelope.EImplIssues, env.Code)
}

func TestReviewImpl_Approved(t *testing.T) {
	env := ReviewImpl(RequestContext{}, MangekyoImplRequest{DiffsMD: "```diff\n+line\n```", ReasoningMD: "why"})
	assert.True(t, env.OK)
}

func TestReviewTests_InsufficientCoverage(t *testing.T) {
	env := ReviewTests(RequestContext{}, MangekyoTestsRequest{CoverageSummaryMD: "lines: 50% branches: 40%", ReasoningMD: "why"})
	assert.False(t, env.OK)
	assert.Equal(t, envelope.ETestsInsufficient, env.Code)
}

func TestReviewTests_StrictRequiresHigherCoverage(t *testing.T) {
	ctx := RequestContext{Settings: map[string]any{"mangekyo": map[string]any{"strictness": "strict"}}}
	env := ReviewTests(ctx, MangekyoTestsRequest{CoverageSummaryMD: "lines: 80% branches: 65%", ReasoningMD: "why"})
	assert.False(t, env.OK, "80/65 clears normal but not strict")
}

func TestReviewTests_Approved(t *testing.T) {
	env := ReviewTests(RequestContext{}, MangekyoTestsRequest{CoverageSummaryMD: "Lines: 90% Branches: 80%", ReasoningMD: "why"})
	assert.True(t, env.OK)
}

func TestReviewDocs_MissingDocsRejected(t *testing.T) {
	env := ReviewDocs(RequestContext{}, MangekyoDocsRequest{DiffsMD: "```diff\n+code only\n```", ReasoningMD: "why"})
	assert.False(t, env.OK)
	assert.Equal(t, envelope.EDocsMissing, env.Code)
}

func TestReviewDocs_Approved(t *testing.T) {
	env := ReviewDocs(RequestContext{}, MangekyoDocsRequest{DiffsMD: "updated README.md", ReasoningMD: "why"})
	assert.True(t, env.OK)
	assert.Equal(t, envelope.NextGoToFinal, env.Next)
}
