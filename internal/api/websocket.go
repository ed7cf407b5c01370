package api

import (
	echo "github.com/labstack/echo/v5"
	"github.com/google/uuid"

	"github.com/coder/websocket"
)

// wsHandler upgrades GET /ws/pipeline/{id} to a WebSocket and streams the
// session's settings snapshot, catch-up replay, and live pipeline events
// (spec.md §6.1, §4.4).
func (s *Server) wsHandler(c *echo.Context) error {
	key := callerKey(c)
	tenantID, err := s.resolveCallerTenant(c, key, c.QueryParam("tenant"))
	if err != nil {
		return mapError(err)
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(400, ErrorResponse{Detail: "invalid session id"})
	}
	if _, err := s.store.Sessions.GetByID(c.Request().Context(), tenantID, sessionID); err != nil {
		return mapError(err)
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		return err
	}

	// HandleConnection blocks until the connection closes.
	s.events.HandleConnection(c.Request().Context(), sessionID.String(), conn)
	return nil
}
