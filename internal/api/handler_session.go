package api

import (
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"
	"github.com/google/uuid"

	"github.com/eyeward-labs/overseer/internal/pipeline"
	"github.com/eyeward-labs/overseer/internal/store"
)

// resolveCallerTenant answers the tenant id a request operates under.
// Non-admin keys are always scoped to their own tenant, regardless of any
// ?tenant= query param or body field they supply. Admin keys may act on
// behalf of another tenant by naming it; an empty name falls back to the
// admin key's own tenant.
func (s *Server) resolveCallerTenant(c *echo.Context, key *store.APIKey, tenantName string) (uuid.UUID, error) {
	if key.Role != store.RoleAdmin || tenantName == "" {
		return key.TenantID, nil
	}
	t, err := s.store.Tenants.GetByName(c.Request().Context(), tenantName)
	if err != nil {
		return uuid.Nil, err
	}
	return t.ID, nil
}

// createSessionHandler handles POST /session.
func (s *Server) createSessionHandler(c *echo.Context) error {
	key := callerKey(c)

	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Detail: "invalid request body"})
	}
	if req.Profile == "" {
		req.Profile = s.defaultProfile
	}

	tenantID, err := s.resolveCallerTenant(c, key, req.Tenant)
	if err != nil {
		return mapError(err)
	}

	ctx := c.Request().Context()
	sess := &store.Session{
		TenantID:        tenantID,
		ProfileName:     req.Profile,
		Status:          pipeline.StatusActive,
		NextTools:       pipeline.StartAllowlist(),
		BudgetCallsMax:  0,
	}
	if err := s.store.Sessions.Create(ctx, sess); err != nil {
		return mapError(err)
	}

	resolved, err := s.settings.Update(ctx, tenantID, sess.ID, req.Profile, req.Overrides)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, CreateSessionResponse{
		SessionID: sess.ID.String(),
		Profile:   req.Profile,
		Settings:  resolved,
		Provider:  "overseer",
		PortalURL: s.portalURL,
		NextTools: sess.NextTools,
	})
}

// listSessionsHandler handles GET /sessions?limit=N.
func (s *Server) listSessionsHandler(c *echo.Context) error {
	key := callerKey(c)
	tenantID, err := s.resolveCallerTenant(c, key, c.QueryParam("tenant"))
	if err != nil {
		return mapError(err)
	}

	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	sessions, err := s.store.Sessions.ListByTenant(c.Request().Context(), tenantID, limit)
	if err != nil {
		return mapError(err)
	}

	out := make([]SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toSessionResponse(sess))
	}
	return c.JSON(http.StatusOK, out)
}

// getSessionHandler handles GET /sessions/{id}.
func (s *Server) getSessionHandler(c *echo.Context) error {
	key := callerKey(c)
	tenantID, err := s.resolveCallerTenant(c, key, c.QueryParam("tenant"))
	if err != nil {
		return mapError(err)
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Detail: "invalid session id"})
	}

	sess, err := s.store.Sessions.GetByID(c.Request().Context(), tenantID, sessionID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(sess))
}

// updateSettingsHandler handles PUT /session/{id}/settings (admin only).
func (s *Server) updateSettingsHandler(c *echo.Context) error {
	key := callerKey(c)
	tenantID, err := s.resolveCallerTenant(c, key, c.QueryParam("tenant"))
	if err != nil {
		return mapError(err)
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Detail: "invalid session id"})
	}

	var req UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Detail: "invalid request body"})
	}

	// Confirm the session exists under this tenant before replacing its
	// settings; also gives us the profile name to keep when req.Profile is
	// left blank (a partial-override-only update).
	sess, err := s.store.Sessions.GetByID(c.Request().Context(), tenantID, sessionID)
	if err != nil {
		return mapError(err)
	}
	profile := req.Profile
	if profile == "" {
		profile = sess.ProfileName
	}

	resolved, err := s.settings.Update(c.Request().Context(), tenantID, sessionID, profile, req.Overrides)
	if err != nil {
		return mapError(err)
	}

	s.events.Broadcast(sessionID.String(), mustJSON(map[string]any{
		"type":       "settings_update",
		"session_id": sessionID.String(),
		"settings":   resolved,
	}))

	return c.JSON(http.StatusOK, SettingsResponse{SessionID: sessionID.String(), Settings: resolved})
}

func toSessionResponse(sess *store.Session) SessionResponse {
	return SessionResponse{
		ID:              sess.ID.String(),
		ProfileName:     sess.ProfileName,
		Status:          sess.Status,
		NextTools:       sess.NextTools,
		LastBranch:      sess.LastBranch,
		BudgetCallsUsed: sess.BudgetCallsUsed,
		BudgetCallsMax:  sess.BudgetCallsMax,
		Metadata:        sess.Metadata,
		CreatedAt:       sess.CreatedAt,
		UpdatedAt:       sess.UpdatedAt,
	}
}
