package api

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/database"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/version"
)

const (
	healthStatusHealthy   = "healthy"
	healthStatusDegraded  = "degraded"
	healthStatusUnhealthy = "unhealthy"
)

// healthHandler handles GET /health. It checks only tarsy's own
// components, database and worker pool; external dependencies (MCP
// servers, LLM providers) stay out so the orchestrator does not restart
// tarsy over someone else's outage.
func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]HealthCheck)
	status := healthStatusHealthy

	// A dead database means dead, not degraded.
	if _, err := database.Health(reqCtx, s.dbClient.DB()); err != nil {
		status = healthStatusUnhealthy
		checks["database"] = HealthCheck{Status: healthStatusUnhealthy, Message: err.Error()}
	} else {
		checks["database"] = HealthCheck{Status: healthStatusHealthy}
	}

	if s.workerPool != nil {
		checks["worker_pool"] = s.workerPoolCheck(reqCtx, &status)
	}

	httpStatus := http.StatusOK
	if status == healthStatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, &HealthResponse{
		Status:  status,
		Version: version.GitCommit,
		Checks:  checks,
	})
}

// workerPoolCheck reports the pool's health and downgrades the overall
// status to degraded when the pool is struggling. A struggling pool is
// not fatal: inflight sessions continue and the API keeps serving.
func (s *Server) workerPoolCheck(ctx context.Context, status *string) HealthCheck {
	poolHealth := s.workerPool.Health(ctx)
	if poolHealth == nil || poolHealth.IsHealthy {
		return HealthCheck{Status: healthStatusHealthy}
	}

	if *status == healthStatusHealthy {
		*status = healthStatusDegraded
	}
	msg := healthStatusUnhealthy
	if poolHealth.DBError != "" {
		msg = poolHealth.DBError
	}
	return HealthCheck{Status: healthStatusDegraded, Message: msg}
}
