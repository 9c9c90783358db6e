// Package queue implements the worker pool that drains pending alert
// sessions and the chain executor that processes each claimed session.
//
// Every replica runs one WorkerPool. Workers claim pending sessions with
// FOR UPDATE SKIP LOCKED (via SessionService), execute the session's chain
// snapshot, and write the terminal status. Cross-replica cancellation
// arrives on the "cancellations" NOTIFY channel; orphaned sessions from
// dead replicas are recovered by a background sweeper.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/alertsession"
)

// ErrNoSessionsAvailable indicates the pending queue is empty.
var ErrNoSessionsAvailable = errors.New("no pending sessions available")

// ErrAtCapacity indicates the global in-progress limit has been reached.
var ErrAtCapacity = errors.New("worker pool at capacity")

// SessionExecutor processes one claimed session to a terminal (or paused)
// outcome. Implemented by ChainExecutor; tests substitute mocks.
type SessionExecutor interface {
	// Execute runs the session's chain. ctx carries the session timeout
	// and the cancellation signal. Always returns a non-nil result; all
	// stage and interaction records are written during execution. The
	// caller performs the session-level status write.
	Execute(ctx context.Context, session *ent.AlertSession) *ExecutionResult
}

// ExecutionResult is the session-level outcome of a chain execution.
type ExecutionResult struct {
	// Status is paused or one of the terminal statuses
	// (completed/failed/cancelled/timed_out). Never pending/in_progress.
	Status alertsession.Status

	// FinalAnalysis is the last stage's output (completed sessions).
	FinalAnalysis string

	// ExecutiveSummary is the condensed final analysis, empty when
	// generation failed (the session still completes).
	ExecutiveSummary string

	// ErrorMessage describes the failure for failed/cancelled/timed_out.
	ErrorMessage string
}

// Paused reports whether the session paused at max iterations instead of
// reaching a terminal status.
func (r *ExecutionResult) Paused() bool {
	return r.Status == alertsession.StatusPaused
}

// WorkerStatus describes what a worker goroutine is currently doing.
type WorkerStatus string

const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusPolling WorkerStatus = "polling"
	WorkerStatusBusy    WorkerStatus = "busy"
	WorkerStatusStopped WorkerStatus = "stopped"
)

// WorkerHealth is a point-in-time snapshot of one worker.
type WorkerHealth struct {
	ID                int          `json:"id"`
	Status            WorkerStatus `json:"status"`
	CurrentSessionID  string       `json:"current_session_id,omitempty"`
	SessionsProcessed int64        `json:"sessions_processed"`
	LastActivity      time.Time    `json:"last_activity"`
}

// PoolHealth is the worker pool section of the health endpoint.
type PoolHealth struct {
	IsHealthy        bool           `json:"is_healthy"`
	DBReachable      bool           `json:"db_reachable"`
	DBError          string         `json:"db_error,omitempty"`
	PodID            string         `json:"pod_id"`
	ActiveWorkers    int            `json:"active_workers"`
	TotalWorkers     int            `json:"total_workers"`
	ActiveSessions   int            `json:"active_sessions"`
	MaxConcurrent    int            `json:"max_concurrent"`
	QueueDepth       int            `json:"queue_depth"`
	WorkerStats      []WorkerHealth `json:"worker_stats"`
	LastOrphanScan   time.Time      `json:"last_orphan_scan"`
	OrphansRecovered int64          `json:"orphans_recovered"`
}
