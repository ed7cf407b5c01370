package eyes

import (
	"testing"

	"github.com/eyeward-labs/overseer/internal/envelope"
	"github.com/stretchr/testify/assert"
)

func TestRewritePrompt_StructuresSections(t *testing.T) {
	req := PromptHelperRequest{
		UserPrompt:             "Add retries to the HTTP client.",
		ClarificationAnswersMD: "- timeout is 5s\n- only retry on 5xx",
	}
	env := RewritePrompt(req)
	assert.True(t, env.OK)
	assert.Equal(t, envelope.OKPromptReady, env.Code)
	md := env.Data[string(envelope.DataPromptMD)].(string)
	assert.Contains(t, md, "ROLE:")
	assert.Contains(t, md, "TASK:")
	assert.Contains(t, md, "timeout is 5s")
}

func TestRewritePrompt_NoClarificationsNeeded(t *testing.T) {
	env := RewritePrompt(PromptHelperRequest{UserPrompt: "Add retries."})
	md := env.Data[string(envelope.DataPromptMD)].(string)
	assert.Contains(t, md, "No clarifications were required")
}
