package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v5"
	"github.com/google/uuid"

	"github.com/eyeward-labs/overseer/internal/envelope"
	"github.com/eyeward-labs/overseer/internal/eyes"
	"github.com/eyeward-labs/overseer/internal/pipeline"
	"github.com/eyeward-labs/overseer/internal/policy"
	"github.com/eyeward-labs/overseer/internal/store"
)

// invokeEyeHandler handles POST /eyes/{tool-path}: authorizes the call,
// decodes the per-Eye payload, runs the matching validator, advances the
// session's pipeline state, and journals + broadcasts the result
// (spec.md §6.1, §6.2).
func (s *Server) invokeEyeHandler(c *echo.Context) error {
	key := callerKey(c)
	tool := envelope.ToolName(strings.TrimPrefix(c.Param("*"), "/"))

	var req EyeRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Detail: "invalid request body"})
	}

	sessionID, err := uuid.Parse(req.Context.SessionID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Detail: "invalid context.session_id"})
	}

	ctx := c.Request().Context()
	tenantID := key.TenantID
	if req.Context.Tenant != "" {
		if tenantID, err = s.resolveRequestTenant(ctx, req.Context.Tenant); err != nil {
			return mapError(err)
		}
	}

	policyReq := policy.Request{
		Method:        c.Request().Method,
		Path:          c.Request().URL.Path,
		RequestTenant: tenantID,
		SessionID:     &sessionID,
		Tool:          tool,
		BudgetTokens:  req.Context.BudgetTokens,
	}
	if err := s.enforcer.Authorize(ctx, key, policyReq); err != nil {
		return mapError(err)
	}

	// The effective settings snapshot is always server-resolved; any
	// context.settings the caller sent is ignored (spec.md §4.5 — settings
	// are changed via PUT /session/{id}/settings, not smuggled into an Eye
	// call).
	effectiveSettings, err := s.settings.SnapshotSettings(ctx, sessionID.String())
	if err != nil {
		return mapError(err)
	}

	reqCtx := eyes.RequestContext{
		SessionID:    req.Context.SessionID,
		UserID:       req.Context.UserID,
		Lang:         req.Context.Lang,
		BudgetTokens: req.Context.BudgetTokens,
		Settings:     effectiveSettings,
	}

	payload := mergeReasoningMD(req.Payload, req.ReasoningMD)
	resp, err := dispatchEye(tool, reqCtx, payload)
	if err != nil {
		return c.JSON(http.StatusOK, schemaErrorEnvelope(tool))
	}
	if _, stamped := resp.Data[string(envelope.DataToolVersion)]; !stamped {
		if resp.Data == nil {
			resp.Data = map[string]any{}
		}
		resp.Data[string(envelope.DataToolVersion)] = envelope.ToolVersion[tool]
	}

	if _, err := s.pipeline.Advance(ctx, tenantID, sessionID, tool, resp); err != nil {
		if errors.Is(err, pipeline.ErrToolNotAllowed) || errors.Is(err, pipeline.ErrBudgetExhausted) {
			expected := []string{}
			if current, getErr := s.store.Sessions.GetByID(ctx, tenantID, sessionID); getErr == nil {
				expected = current.NextTools
			}
			return echo.NewHTTPError(http.StatusConflict, PipelineConflictResponse{Message: err.Error(), ExpectedNext: expected})
		}
		return mapError(err)
	}

	payloadMap, err := envelopeToMap(resp)
	if err != nil {
		return mapError(err)
	}
	evt, err := s.store.Events.Append(ctx, sessionID, string(tool), string(resp.Code), payloadMap)
	if err != nil {
		return mapError(err)
	}

	s.events.Broadcast(sessionID.String(), mustJSON(map[string]any{
		"type":            "pipeline_event",
		"session_id":      sessionID.String(),
		"sequence_number": evt.SequenceNumber,
		"payload":         payloadMap,
	}))

	return c.JSON(http.StatusOK, resp)
}

// resolveRequestTenant maps the optional context.tenant name in an Eye
// request to a tenant id. An unknown name resolves to uuid.Nil, which
// Authorize's tenant guard then rejects as a mismatch unless the caller is
// an admin key. A blank name means "my own tenant": invokeEyeHandler uses
// the key's TenantID for it and does not call this function (a blank name
// passed here resolves to uuid.Nil). An unrecognized name is deliberately
// not distinguished from "wrong tenant" in the response, so a caller can
// never probe for which tenant names exist.
func (s *Server) resolveRequestTenant(ctx context.Context, name string) (uuid.UUID, error) {
	if name == "" {
		return uuid.Nil, nil
	}
	t, err := s.store.Tenants.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}
	return t.ID, nil
}

func envelopeToMap(resp envelope.Envelope) (map[string]any, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// mergeReasoningMD copies the envelope's top-level reasoning_md into the
// per-Eye payload when the payload itself does not already carry one,
// reconciling spec.md §6.2's top-level field with the per-Eye request
// structs that each declare their own reasoning_md.
func mergeReasoningMD(payload json.RawMessage, reasoningMD string) json.RawMessage {
	if reasoningMD == "" {
		return payload
	}
	var m map[string]any
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &m); err != nil {
			return payload
		}
	}
	if m == nil {
		m = map[string]any{}
	}
	if _, ok := m["reasoning_md"]; ok {
		return payload
	}
	m["reasoning_md"] = reasoningMD
	out, err := json.Marshal(m)
	if err != nil {
		return payload
	}
	return out
}

// dispatchEye decodes payload into the request type for tool and runs the
// matching validator. A non-nil error means payload failed to decode
// (spec.md §7 kind 3: schema error).
func dispatchEye(tool envelope.ToolName, ctx eyes.RequestContext, payload json.RawMessage) (envelope.Envelope, error) {
	switch tool {
	case envelope.ToolOverseerNavigator:
		var req eyes.NavigatorRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return envelope.Envelope{}, err
		}
		return eyes.Navigate(req), nil

	case envelope.ToolSharinganClarify:
		var req eyes.SharinganRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return envelope.Envelope{}, err
		}
		return eyes.Clarify(ctx, req), nil

	case envelope.ToolPromptHelperRewrite:
		var req eyes.PromptHelperRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return envelope.Envelope{}, err
		}
		return eyes.RewritePrompt(req), nil

	case envelope.ToolJoganConfirmIntent:
		var req eyes.JoganRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return envelope.Envelope{}, err
		}
		return eyes.ConfirmIntent(req), nil

	case envelope.ToolRinneganPlanReqs:
		return eyes.PlanRequirements(), nil

	case envelope.ToolRinneganPlanReview:
		var req eyes.PlanReviewRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return envelope.Envelope{}, err
		}
		return eyes.ReviewPlan(ctx, req), nil

	case envelope.ToolRinneganFinalApproval:
		var req eyes.FinalApprovalRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return envelope.Envelope{}, err
		}
		return eyes.FinalApproval(req), nil

	case envelope.ToolMangekyoReviewScaffold:
		var req eyes.MangekyoScaffoldRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return envelope.Envelope{}, err
		}
		return eyes.ReviewScaffold(ctx, req), nil

	case envelope.ToolMangekyoReviewImpl:
		var req eyes.MangekyoImplRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return envelope.Envelope{}, err
		}
		return eyes.ReviewImpl(ctx, req), nil

	case envelope.ToolMangekyoReviewTests:
		var req eyes.MangekyoTestsRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return envelope.Envelope{}, err
		}
		return eyes.ReviewTests(ctx, req), nil

	case envelope.ToolMangekyoReviewDocs:
		var req eyes.MangekyoDocsRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return envelope.Envelope{}, err
		}
		return eyes.ReviewDocs(ctx, req), nil

	case envelope.ToolTenseiganValidateClaims:
		var req eyes.TenseiganRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return envelope.Envelope{}, err
		}
		return eyes.ValidateClaims(ctx, req), nil

	case envelope.ToolByakuganConsistency:
		var req eyes.ByakuganRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return envelope.Envelope{}, err
		}
		return eyes.CheckConsistency(ctx, req), nil

	default:
		return envelope.Envelope{}, errUnknownToolDispatch
	}
}

var errUnknownToolDispatch = errors.New("api: no dispatch entry for tool")

// canonicalExample renders a representative payload for tool, embedded in
// the E_BAD_PAYLOAD_SCHEMA envelope's md so the caller can see the
// expected shape without consulting external docs (spec.md §7 kind 3).
func canonicalExample(tool envelope.ToolName) string {
	var v any
	switch tool {
	case envelope.ToolOverseerNavigator:
		v = eyes.NavigatorRequest{Goal: "Fix the header padding on mobile."}
	case envelope.ToolSharinganClarify:
		v = eyes.SharinganRequest{Goal: "Fix the header padding on mobile."}
	case envelope.ToolPromptHelperRewrite:
		v = eyes.PromptHelperRequest{UserPrompt: "Fix the header padding on mobile.", ClarificationAnswersMD: "N/A"}
	case envelope.ToolJoganConfirmIntent:
		v = eyes.JoganRequest{RefinedPromptMD: "### Refined Prompt\n...", EstimatedTokens: 500}
	case envelope.ToolRinneganPlanReqs:
		v = map[string]any{}
	case envelope.ToolRinneganPlanReview:
		v = eyes.PlanReviewRequest{PlanMD: "### High-Level Overview\n...", ReasoningMD: "### Reasoning\n..."}
	case envelope.ToolRinneganFinalApproval:
		v = eyes.FinalApprovalRequest{PlanApproved: true, ScaffoldApproved: true, ImplApproved: true, TestsApproved: true, DocsApproved: true}
	case envelope.ToolMangekyoReviewScaffold:
		v = eyes.MangekyoScaffoldRequest{ReasoningMD: "### Reasoning\n..."}
	case envelope.ToolMangekyoReviewImpl:
		v = eyes.MangekyoImplRequest{DiffsMD: "```diff\n...\n```", ReasoningMD: "### Reasoning\n..."}
	case envelope.ToolMangekyoReviewTests:
		v = eyes.MangekyoTestsRequest{CoverageSummaryMD: "lines: 90%\nbranches: 85%", ReasoningMD: "### Reasoning\n..."}
	case envelope.ToolMangekyoReviewDocs:
		v = eyes.MangekyoDocsRequest{DiffsMD: "```diff\n...\n```", ReasoningMD: "### Reasoning\n..."}
	case envelope.ToolTenseiganValidateClaims:
		v = eyes.TenseiganRequest{DraftMD: "...", ReasoningMD: "### Reasoning\n..."}
	case envelope.ToolByakuganConsistency:
		v = eyes.ByakuganRequest{CurrentMD: "...", PriorMD: "...", ReasoningMD: "### Reasoning\n..."}
	default:
		v = map[string]any{}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func schemaErrorEnvelope(tool envelope.ToolName) envelope.Envelope {
	tag, ok := envelope.ToolEyeTag[tool]
	if !ok {
		tag = envelope.TagOverseer
	}
	return envelope.Build(tag, false, envelope.EBadPayloadSchema,
		"### Invalid Payload\nExpected payload shape:\n```json\n"+canonicalExample(tool)+"\n```",
		map[string]any{}, envelope.NextResendValidPayload)
}
