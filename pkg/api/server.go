// Package api exposes the HTTP surface: alert ingestion, session history,
// cancel/resume controls, system introspection, and the WebSocket upgrade
// for live event streaming.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/database"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/mcp"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/queue"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/services"
)

// Server wires the echo router to the domain services. Construction takes
// the mandatory collaborators; optional ones (health monitor, warnings,
// event publisher) arrive via setters before Start.
type Server struct {
	cfg                *config.Config
	dbClient           *database.Client
	alertService       *services.AlertService
	sessionService     *services.SessionService
	stageService       *services.StageService
	interactionService *services.InteractionService
	workerPool         *queue.WorkerPool
	connManager        *events.ConnectionManager

	warningService *services.SystemWarningsService
	healthMonitor  *mcp.HealthMonitor
	publisher      *events.EventPublisher

	echo   *echo.Echo
	server *http.Server
	logger *slog.Logger
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(
	cfg *config.Config,
	dbClient *database.Client,
	alertService *services.AlertService,
	sessionService *services.SessionService,
	stageService *services.StageService,
	interactionService *services.InteractionService,
	workerPool *queue.WorkerPool,
	connManager *events.ConnectionManager,
) *Server {
	s := &Server{
		cfg:                cfg,
		dbClient:           dbClient,
		alertService:       alertService,
		sessionService:     sessionService,
		stageService:       stageService,
		interactionService: interactionService,
		workerPool:         workerPool,
		connManager:        connManager,
		echo:               echo.New(),
		logger:             slog.Default().With("component", "api"),
	}
	s.registerRoutes()
	return s
}

// SetHealthMonitor wires the MCP health monitor (optional: absent when no
// MCP servers are configured).
func (s *Server) SetHealthMonitor(m *mcp.HealthMonitor) { s.healthMonitor = m }

// SetWarningsService wires the startup/system warnings registry.
func (s *Server) SetWarningsService(w *services.SystemWarningsService) { s.warningService = w }

// SetEventPublisher wires the publisher used for cancel fan-out and
// lifecycle events emitted at the API boundary.
func (s *Server) SetEventPublisher(p *events.EventPublisher) { s.publisher = p }

func (s *Server) registerRoutes() {
	e := s.echo
	e.Use(s.requestLogger())
	e.Use(securityHeaders())

	e.GET("/health", s.healthHandler)

	v1 := e.Group("/api/v1")
	v1.POST("/alerts", s.submitAlertHandler)
	v1.GET("/alert-types", s.alertTypesHandler)

	v1.GET("/history/sessions", s.listSessionsHandler)
	v1.GET("/history/sessions/:id", s.getSessionHandler)
	v1.POST("/history/sessions/:id/cancel", s.cancelSessionHandler)
	v1.POST("/history/sessions/:id/resume", s.resumeSessionHandler)
	v1.POST("/history/sessions/:id/stages/:execution_id/cancel", s.cancelStageHandler)

	v1.GET("/system/warnings", s.systemWarningsHandler)
	v1.GET("/system/mcp-servers", s.mcpServersHandler)
	v1.GET("/system/default-tools", s.defaultToolsHandler)

	v1.GET("/ws", s.wsHandler)
}

// requestLogger logs one line per request at debug, upgraded to warn for
// 5xx responses. The WebSocket route is skipped (it would log once on
// close, long after the upgrade).
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			if c.Request().URL.Path == "/api/v1/ws" {
				return next(c)
			}
			start := time.Now()
			err := next(c)
			status := 0
			if resp, _ := echo.UnwrapResponse(c.Response()); resp != nil {
				status = resp.Status
			}
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
			}
			attrs := []any{
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if status >= 500 {
				s.logger.Warn("Request failed", attrs...)
			} else {
				s.logger.Debug("Request", attrs...)
			}
			return err
		}
	}
}

// Start listens on addr and serves until Shutdown. Blocks.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.StartWithListener(ln)
}

// StartWithListener serves on an existing listener. Tests use this with a
// 127.0.0.1:0 listener to get a random port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.server = &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.server.Serve(ln)
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for httptest-based handler tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
