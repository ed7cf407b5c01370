package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eyeward-labs/overseer/internal/envelope"
	"github.com/eyeward-labs/overseer/internal/eyes"
)

func TestDispatchEye_AllTools(t *testing.T) {
	ctx := eyes.RequestContext{SessionID: "s1", Lang: "en", BudgetTokens: 1000}

	for tool, tag := range envelope.ToolEyeTag {
		t.Run(string(tool), func(t *testing.T) {
			payload := json.RawMessage(canonicalExample(tool))
			resp, err := dispatchEye(tool, ctx, payload)
			require.NoError(t, err)
			assert.Equal(t, tag, resp.Tag)
		})
	}
}

func TestDispatchEye_UnknownTool(t *testing.T) {
	ctx := eyes.RequestContext{SessionID: "s1"}
	_, err := dispatchEye(envelope.ToolName("not/a/tool"), ctx, json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestDispatchEye_BadPayload(t *testing.T) {
	ctx := eyes.RequestContext{SessionID: "s1"}
	_, err := dispatchEye(envelope.ToolSharinganClarify, ctx, json.RawMessage(`not json`))
	assert.Error(t, err)
}

func TestSchemaErrorEnvelope(t *testing.T) {
	resp := schemaErrorEnvelope(envelope.ToolRinneganPlanReview)
	assert.False(t, resp.OK)
	assert.Equal(t, envelope.EBadPayloadSchema, resp.Code)
	assert.Equal(t, envelope.TagRinneganPlanReview, resp.Tag)
	assert.Equal(t, envelope.NextResendValidPayload, resp.Next)
	assert.Contains(t, resp.MD, "plan_md")
}

func TestMergeReasoningMD(t *testing.T) {
	t.Run("no reasoning supplied leaves payload untouched", func(t *testing.T) {
		payload := json.RawMessage(`{"plan_md":"x"}`)
		got := mergeReasoningMD(payload, "")
		assert.Equal(t, payload, got)
	})

	t.Run("injects top-level reasoning into payload when absent", func(t *testing.T) {
		payload := json.RawMessage(`{"plan_md":"x"}`)
		got := mergeReasoningMD(payload, "top level reasoning")

		var m map[string]any
		require.NoError(t, json.Unmarshal(got, &m))
		assert.Equal(t, "top level reasoning", m["reasoning_md"])
		assert.Equal(t, "x", m["plan_md"])
	})

	t.Run("payload's own reasoning_md wins", func(t *testing.T) {
		payload := json.RawMessage(`{"plan_md":"x","reasoning_md":"payload reasoning"}`)
		got := mergeReasoningMD(payload, "top level reasoning")

		var m map[string]any
		require.NoError(t, json.Unmarshal(got, &m))
		assert.Equal(t, "payload reasoning", m["reasoning_md"])
	})
}

func TestEnvelopeToMap(t *testing.T) {
	resp := envelope.Build(envelope.TagOverseer, true, envelope.OKOverseerGuide, "hello", nil, envelope.NextBeginWithSharingan)
	m, err := envelopeToMap(resp)
	require.NoError(t, err)
	assert.Equal(t, "hello", m["md"])
	assert.Equal(t, true, m["ok"])
}
