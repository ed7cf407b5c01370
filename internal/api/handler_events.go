package api

import (
	"net/http"
	"strconv"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/google/uuid"
)

// listEventsHandler handles GET /session/{id}/events?limit=&from_ts=&to_ts=.
func (s *Server) listEventsHandler(c *echo.Context) error {
	key := callerKey(c)
	tenantID, err := s.resolveCallerTenant(c, key, c.QueryParam("tenant"))
	if err != nil {
		return mapError(err)
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Detail: "invalid session id"})
	}

	ctx := c.Request().Context()
	if _, err := s.store.Sessions.GetByID(ctx, tenantID, sessionID); err != nil {
		return mapError(err)
	}

	limit := 100
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	fromTS := parseUnixQueryParam(c.QueryParam("from_ts"))
	toTS := parseUnixQueryParam(c.QueryParam("to_ts"))

	events, err := s.store.Events.ListEvents(ctx, sessionID, limit, fromTS, toTS)
	if err != nil {
		return mapError(err)
	}

	out := make([]EventResponse, 0, len(events))
	for _, evt := range events {
		out = append(out, EventResponse{
			SequenceNumber: evt.SequenceNumber,
			ToolName:       evt.ToolName,
			StatusCode:     evt.StatusCode,
			Payload:        evt.Payload,
			CreatedAt:      evt.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, EventsResponse{Events: out})
}

func parseUnixQueryParam(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(n, 0).UTC()
}

// clarificationsHandler handles POST /session/{id}/clarifications: the host
// agent forwards the user's answers to the ambiguity questions Sharingan
// raised, journaled as a user_input event for the WebSocket/event-log
// timeline.
func (s *Server) clarificationsHandler(c *echo.Context) error {
	key := callerKey(c)
	tenantID, err := s.resolveCallerTenant(c, key, c.QueryParam("tenant"))
	if err != nil {
		return mapError(err)
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Detail: "invalid session id"})
	}

	var req ClarificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Detail: "invalid request body"})
	}

	ctx := c.Request().Context()
	if _, err := s.store.Sessions.GetByID(ctx, tenantID, sessionID); err != nil {
		return mapError(err)
	}

	payload := map[string]any{"answers_md": req.AnswersMD}
	evt, err := s.store.Events.Append(ctx, sessionID, "host/clarifications", "user_input", payload)
	if err != nil {
		return mapError(err)
	}

	s.events.Broadcast(sessionID.String(), mustJSON(map[string]any{
		"type":            "user_input",
		"session_id":      sessionID.String(),
		"sequence_number": evt.SequenceNumber,
		"payload":         payload,
	}))

	return c.JSON(http.StatusOK, EventResponse{
		SequenceNumber: evt.SequenceNumber,
		ToolName:       evt.ToolName,
		StatusCode:     evt.StatusCode,
		Payload:        evt.Payload,
		CreatedAt:      evt.CreatedAt,
	})
}

// resubmitHandler handles POST /session/{id}/resubmit: the host agent signals
// it is retrying a tool after addressing a prior Eye's rejection, journaled
// so the event timeline records the retry even though the pipeline's
// NextTools allowlist already permits the call.
func (s *Server) resubmitHandler(c *echo.Context) error {
	key := callerKey(c)
	tenantID, err := s.resolveCallerTenant(c, key, c.QueryParam("tenant"))
	if err != nil {
		return mapError(err)
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Detail: "invalid session id"})
	}

	var req ResubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Detail: "invalid request body"})
	}

	ctx := c.Request().Context()
	sess, err := s.store.Sessions.GetByID(ctx, tenantID, sessionID)
	if err != nil {
		return mapError(err)
	}
	if !contains(sess.NextTools, req.Tool) {
		return echo.NewHTTPError(http.StatusConflict, PipelineConflictResponse{
			Message:      "tool not in session's current allowlist",
			ExpectedNext: sess.NextTools,
		})
	}

	payload := map[string]any{"tool": req.Tool}
	evt, err := s.store.Events.Append(ctx, sessionID, "host/resubmit", "resubmit_requested", payload)
	if err != nil {
		return mapError(err)
	}

	s.events.Broadcast(sessionID.String(), mustJSON(map[string]any{
		"type":            "resubmit_requested",
		"session_id":      sessionID.String(),
		"sequence_number": evt.SequenceNumber,
		"payload":         payload,
	}))

	return c.JSON(http.StatusOK, EventResponse{
		SequenceNumber: evt.SequenceNumber,
		ToolName:       evt.ToolName,
		StatusCode:     evt.StatusCode,
		Payload:        evt.Payload,
		CreatedAt:      evt.CreatedAt,
	})
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
