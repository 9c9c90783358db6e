package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/services"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/session"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/slack"
)

// PoolDeps carries the optional collaborators of a WorkerPool. Publisher
// and ConnManager are nil in tests that don't exercise events; Slack is nil
// when notifications are not configured.
type PoolDeps struct {
	Publisher   agent.EventPublisher
	ConnManager *events.ConnectionManager
	Tracker     *session.CancellationTracker
	Slack       *slack.Service
}

// WorkerPool runs the claim workers and the orphan sweeper for one replica.
type WorkerPool struct {
	podID        string
	cfg          *config.QueueConfig
	executor     SessionExecutor
	publisher    agent.EventPublisher
	connMgr      *events.ConnectionManager
	tracker      *session.CancellationTracker
	slack        *slack.Service
	sessions     *services.SessionService
	stages       *services.StageService
	eventService *services.EventService
	logger       *slog.Logger

	workers     []*Worker
	runCancel   context.CancelFunc
	wg          sync.WaitGroup
	stopOnce    sync.Once
	unsubscribe func()

	mu      sync.Mutex
	started bool
	active  map[string]context.CancelFunc

	orphanMu         sync.Mutex
	lastOrphanScan   time.Time
	orphansRecovered int64
}

// NewWorkerPool creates a pool. Start must be called to begin claiming.
func NewWorkerPool(podID string, client *ent.Client, cfg *config.QueueConfig, executor SessionExecutor, deps PoolDeps) *WorkerPool {
	if cfg == nil {
		cfg = config.DefaultQueueConfig()
	}
	tracker := deps.Tracker
	if tracker == nil {
		tracker = session.NewCancellationTracker()
	}
	return &WorkerPool{
		podID:        podID,
		cfg:          cfg,
		executor:     executor,
		publisher:    deps.Publisher,
		connMgr:      deps.ConnManager,
		tracker:      tracker,
		slack:        deps.Slack,
		sessions:     services.NewSessionService(client),
		stages:       services.NewStageService(client),
		eventService: services.NewEventService(client),
		active:       make(map[string]context.CancelFunc),
		logger:       slog.With("component", "worker-pool", "pod_id", podID),
	}
}

// Start subscribes to the cancellations channel and launches the workers
// and the orphan sweeper.
func (p *WorkerPool) Start() error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return fmt.Errorf("worker pool already started")
	}
	p.started = true
	p.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.Background())
	p.runCancel = cancel

	if p.connMgr != nil {
		unsub, err := p.connMgr.SubscribeLocal(events.CancellationsChannel, p.handleCancelEvent)
		if err != nil {
			return fmt.Errorf("failed to subscribe to cancellations: %w", err)
		}
		p.unsubscribe = unsub
	}

	for i := 1; i <= p.cfg.WorkerCount; i++ {
		w := newWorker(i, p)
		p.workers = append(p.workers, w)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.run(runCtx)
		}()
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runOrphanDetection(runCtx)
	}()

	p.logger.Info("Worker pool started",
		"workers", p.cfg.WorkerCount,
		"max_concurrent", p.cfg.MaxConcurrentSessions)
	return nil
}

// Stop drains the pool: workers stop claiming immediately, in-flight
// sessions run until they finish or ctx expires. After the deadline the
// remaining session contexts are cancelled and the unwind is awaited.
func (p *WorkerPool) Stop(ctx context.Context) error {
	var err error
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping worker pool")
		if p.unsubscribe != nil {
			p.unsubscribe()
		}
		if p.runCancel != nil {
			p.runCancel()
		}

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			p.logger.Info("Worker pool stopped")
			return
		case <-ctx.Done():
		}

		p.mu.Lock()
		remaining := len(p.active)
		for _, cancel := range p.active {
			cancel()
		}
		p.mu.Unlock()
		p.logger.Warn("Shutdown deadline reached, cancelling in-flight sessions",
			"count", remaining)
		<-done
		err = ctx.Err()
	})
	return err
}

// CancelSession cancels the in-flight run for sessionID when this pool owns
// it. The tracker is marked before the context is cancelled so terminal
// classification sees an operator cancel rather than a timeout. Reports
// whether the session was found locally.
func (p *WorkerPool) CancelSession(sessionID string) bool {
	p.mu.Lock()
	cancel, ok := p.active[sessionID]
	p.mu.Unlock()
	if !ok {
		return false
	}
	p.tracker.MarkCancelled(sessionID)
	cancel()
	p.logger.Info("Cancelled in-flight session", "session_id", sessionID)
	return true
}

// handleCancelEvent applies a session.cancel_requested notification. Every
// replica receives the broadcast; only the owner finds the session in its
// active map.
func (p *WorkerPool) handleCancelEvent(payload []byte) {
	var evt events.CancelRequestedPayload
	if err := json.Unmarshal(payload, &evt); err != nil {
		p.logger.Warn("Failed to decode cancel event", "error", err)
		return
	}
	if evt.SessionID == "" {
		return
	}
	p.CancelSession(evt.SessionID)
}

func (p *WorkerPool) registerSession(sessionID string, cancel context.CancelFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active[sessionID] = cancel
}

func (p *WorkerPool) unregisterSession(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, sessionID)
}

// ownsSession reports whether this pool is currently executing sessionID.
func (p *WorkerPool) ownsSession(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.active[sessionID]
	return ok
}

// Health reports pool state plus a DB reachability probe (the queue depth
// query doubles as the probe).
func (p *WorkerPool) Health(ctx context.Context) *PoolHealth {
	h := &PoolHealth{
		PodID:         p.podID,
		TotalWorkers:  len(p.workers),
		MaxConcurrent: p.cfg.MaxConcurrentSessions,
	}

	pending, err := p.sessions.CountPendingSessions(ctx)
	if err != nil {
		h.DBError = err.Error()
	} else {
		h.DBReachable = true
		h.QueueDepth = pending
	}

	p.mu.Lock()
	h.ActiveSessions = len(p.active)
	started := p.started
	p.mu.Unlock()

	for _, w := range p.workers {
		wh := w.Health()
		if wh.Status == WorkerStatusBusy {
			h.ActiveWorkers++
		}
		h.WorkerStats = append(h.WorkerStats, wh)
	}

	p.orphanMu.Lock()
	h.LastOrphanScan = p.lastOrphanScan
	h.OrphansRecovered = p.orphansRecovered
	p.orphanMu.Unlock()

	h.IsHealthy = started && h.DBReachable
	return h
}
