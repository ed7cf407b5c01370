// Package api implements the gateway's HTTP and WebSocket surface: session
// lifecycle, the 13 Eye invocation endpoints, pipeline event pagination,
// and health checks (spec.md §6).
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/eyeward-labs/overseer/internal/eventbus"
	"github.com/eyeward-labs/overseer/internal/pipeline"
	"github.com/eyeward-labs/overseer/internal/policy"
	"github.com/eyeward-labs/overseer/internal/settings"
	"github.com/eyeward-labs/overseer/internal/store"
)

// Server is the gateway's HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server

	store    *store.Client
	enforcer *policy.Enforcer
	pipeline *pipeline.Engine
	settings *settings.Service
	events   *eventbus.Manager

	defaultProfile string
	portalURL      string
}

// NewServer wires a Server against the gateway's core services.
func NewServer(storeClient *store.Client, enforcer *policy.Enforcer, eng *pipeline.Engine, settingsSvc *settings.Service, events *eventbus.Manager, defaultProfile, portalURL string) *Server {
	e := echo.New()

	s := &Server{
		echo:           e,
		store:          storeClient,
		enforcer:       enforcer,
		pipeline:       eng,
		settings:       settingsSvc,
		events:         events,
		defaultProfile: defaultProfile,
		portalURL:      portalURL,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.Use(middleware.BodyLimit(2 * 1024 * 1024))
	s.echo.Use(securityHeaders())

	s.echo.GET("/health/live", s.healthLiveHandler)
	s.echo.GET("/health/ready", s.healthReadyHandler)

	s.echo.POST("/session", s.createSessionHandler, s.authenticate)
	s.echo.GET("/sessions", s.listSessionsHandler, s.authenticate)
	s.echo.GET("/sessions/:id", s.getSessionHandler, s.authenticate)
	s.echo.PUT("/session/:id/settings", s.updateSettingsHandler, s.authenticate, s.requireAdmin)

	s.echo.POST("/eyes/*", s.invokeEyeHandler, s.authenticate)

	s.echo.GET("/session/:id/events", s.listEventsHandler, s.authenticate)
	s.echo.POST("/session/:id/clarifications", s.clarificationsHandler, s.authenticate)
	s.echo.POST("/session/:id/resubmit", s.resubmitHandler, s.authenticate)

	s.echo.GET("/ws/pipeline/:id", s.wsHandler, s.authenticate)
}

// Start starts the HTTP server on addr (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener, used
// by tests that bind an OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// timeoutCtx bounds a request-scoped operation against a store dependency.
func timeoutCtx(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, d)
}
