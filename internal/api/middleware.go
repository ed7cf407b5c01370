package api

import (
	"errors"

	echo "github.com/labstack/echo/v5"

	"github.com/eyeward-labs/overseer/internal/policy"
	"github.com/eyeward-labs/overseer/internal/store"
)

type contextKey string

const apiKeyContextKey contextKey = "overseer_api_key"

// errAdminRequired is returned by requireAdmin for a non-admin key;
// mapError turns it into a 403.
var errAdminRequired = errors.New("api: admin role required")

// securityHeaders sets standard hardening response headers on every
// response.
func securityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			return next(c)
		}
	}
}

// authenticate extracts X-API-Key, resolves it through the policy
// enforcer, and stores the resulting key on the request context for
// downstream handlers. Every route except the two health endpoints uses
// this middleware, including the WebSocket upgrade, so callers must set
// X-API-Key on the handshake request rather than after the fact.
func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		raw := c.Request().Header.Get("X-API-Key")
		if raw == "" {
			return mapError(policy.ErrUnauthenticated)
		}
		key, err := s.enforcer.Authenticate(c.Request().Context(), raw)
		if err != nil {
			return mapError(err)
		}
		c.Set(string(apiKeyContextKey), key)
		return next(c)
	}
}

// requireAdmin rejects any caller whose key is not store.RoleAdmin. Must
// run after authenticate.
func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		key := callerKey(c)
		if key.Role != store.RoleAdmin {
			return mapError(errAdminRequired)
		}
		return next(c)
	}
}

// callerKey returns the authenticated key authenticate attached to c. Only
// valid on routes chained behind authenticate.
func callerKey(c *echo.Context) *store.APIKey {
	key, _ := c.Get(string(apiKeyContextKey)).(*store.APIKey)
	return key
}
