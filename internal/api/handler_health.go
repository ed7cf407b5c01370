package api

import (
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/eyeward-labs/overseer/internal/store"
)

// healthLiveHandler handles GET /health/live: the process is up and
// serving, with no dependency checks.
func (s *Server) healthLiveHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
}

// healthReadyHandler handles GET /health/ready: the backing store is
// reachable.
func (s *Server) healthReadyHandler(c *echo.Context) error {
	ctx, cancel := timeoutCtx(c.Request().Context(), 5*time.Second)
	defer cancel()

	status, err := store.Health(ctx, s.store.DB())
	if err != nil || status.Status != "healthy" {
		return c.JSON(http.StatusServiceUnavailable, ReadyResponse{Status: "unhealthy"})
	}
	return c.JSON(http.StatusOK, ReadyResponse{Status: "healthy", OpenConnections: status.OpenConnections})
}
