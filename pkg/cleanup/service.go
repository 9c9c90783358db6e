// Package cleanup enforces data retention in the background.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/services"
)

// Service runs the retention sweeps:
//   - hard-deletes sessions past the retention window (cascading to
//     stage executions and interactions)
//   - deletes Event rows past their TTL (events are a streaming backlog,
//     not an audit log)
//
// Sessions and events age on independent schedules, so each sweep has its
// own ticker. All sweeps are idempotent and safe to run from multiple
// replicas concurrently.
type Service struct {
	config         *config.RetentionConfig
	sessionService *services.SessionService
	eventService   *services.EventService
	logger         *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a new cleanup service.
func NewService(
	cfg *config.RetentionConfig,
	sessionService *services.SessionService,
	eventService *services.EventService,
) *Service {
	return &Service{
		config:         cfg,
		sessionService: sessionService,
		eventService:   eventService,
		logger:         slog.Default().With("component", "cleanup"),
	}
}

// Start launches the background retention loops.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	s.logger.Info("Cleanup service started",
		"session_retention_days", s.config.SessionRetentionDays,
		"event_retention", s.config.EventRetention,
		"event_cleanup_interval", s.config.EventCleanupInterval,
		"session_cleanup_interval", s.config.SessionCleanupInterval)
}

// Stop signals the cleanup loops to exit and waits for them to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.logger.Info("Cleanup service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	// One pass up front so a replica that restarts after a long outage
	// catches up immediately instead of waiting out a full interval.
	s.sweepSessions()
	s.sweepEvents()

	sessionTicker := time.NewTicker(s.config.SessionCleanupInterval)
	defer sessionTicker.Stop()
	eventTicker := time.NewTicker(s.config.EventCleanupInterval)
	defer eventTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sessionTicker.C:
			s.sweepSessions()
		case <-eventTicker.C:
			s.sweepEvents()
		}
	}
}

// sweepSessions hard-deletes sessions older than the retention window.
// Cascading foreign keys remove their stage executions and interactions
// in the same statement.
func (s *Service) sweepSessions() {
	// Sweeps run on a background context: they must complete even while
	// the process is draining for shutdown.
	count, err := s.sessionService.DeleteSessionsOlderThan(context.Background(), s.config.SessionRetentionDays)
	if err != nil {
		s.logger.Error("Retention: session delete failed", "error", err)
		return
	}
	if count > 0 {
		s.logger.Info("Retention: deleted expired sessions", "count", count)
	}
}

// sweepEvents deletes event rows older than the event TTL.
func (s *Service) sweepEvents() {
	count, err := s.eventService.DeleteEventsBefore(context.Background(), s.config.EventRetention)
	if err != nil {
		s.logger.Error("Retention: event cleanup failed", "error", err)
		return
	}
	if count > 0 {
		s.logger.Info("Retention: deleted expired events", "count", count)
	}
}
