package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// defaultPollInterval bounds delivery latency in polling mode.
const defaultPollInterval = time.Second

// pollBatchSize caps rows fetched per tick so a busy channel cannot
// monopolize the connection.
const pollBatchSize = 500

// PollingListener tails the events table for stores without NOTIFY support.
// One poll loop per subscribed channel, advancing a cursor by event id.
// Delivery is identical to NotifyListener except for latency (bounded by
// the poll interval) and transient events, which are never persisted and
// therefore never seen in polling mode.
type PollingListener struct {
	db       *sql.DB
	target   Broadcaster
	interval time.Duration

	mu    sync.Mutex
	tails map[string]*channelTail

	baseCtx context.Context
	running atomic.Bool
}

// channelTail is the shutdown handle for one channel's poll loop.
type channelTail struct {
	cancel context.CancelFunc
	done   chan struct{}
}

var _ Listener = (*PollingListener)(nil)

// NewPollingListener creates a listener that polls the events table.
// A non-positive interval selects the default.
func NewPollingListener(db *sql.DB, target Broadcaster, interval time.Duration) *PollingListener {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &PollingListener{
		db:       db,
		target:   target,
		interval: interval,
		tails:    make(map[string]*channelTail),
	}
}

// Start records the base context for poll loops. No connection is
// established up front; each loop uses the shared pool.
func (l *PollingListener) Start(ctx context.Context) error {
	l.baseCtx = ctx
	l.running.Store(true)
	slog.Info("PollingListener started", "interval", l.interval)
	return nil
}

// Subscribe starts a poll loop for the channel. The cursor begins at the
// channel's current head: history is the catchup path's job, the tail only
// delivers what is published from now on.
func (l *PollingListener) Subscribe(ctx context.Context, channel string) error {
	if !l.running.Load() {
		return fmt.Errorf("polling listener not started")
	}

	l.mu.Lock()
	if _, exists := l.tails[channel]; exists {
		l.mu.Unlock()
		return nil // Already tailing
	}
	l.mu.Unlock()

	var cursor int64
	err := l.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id), 0) FROM events WHERE channel = $1`, channel,
	).Scan(&cursor)
	if err != nil {
		return fmt.Errorf("failed to position poll cursor for %s: %w", channel, err)
	}

	loopCtx, cancel := context.WithCancel(l.baseCtx)
	tail := &channelTail{cancel: cancel, done: make(chan struct{})}

	l.mu.Lock()
	if _, exists := l.tails[channel]; exists {
		// Lost the race to another subscriber
		l.mu.Unlock()
		cancel()
		return nil
	}
	l.tails[channel] = tail
	l.mu.Unlock()

	go func() {
		defer close(tail.done)
		l.tailLoop(loopCtx, channel, cursor)
	}()

	slog.Debug("Polling channel", "channel", channel, "cursor", cursor)
	return nil
}

// Unsubscribe stops the channel's poll loop and waits for it to exit.
func (l *PollingListener) Unsubscribe(_ context.Context, channel string) error {
	l.mu.Lock()
	tail, exists := l.tails[channel]
	if exists {
		delete(l.tails, channel)
	}
	l.mu.Unlock()

	if exists {
		tail.cancel()
		<-tail.done
	}
	return nil
}

// Stop shuts down all poll loops.
func (l *PollingListener) Stop(_ context.Context) {
	l.running.Store(false)

	l.mu.Lock()
	tails := make([]*channelTail, 0, len(l.tails))
	for ch, tail := range l.tails {
		tails = append(tails, tail)
		delete(l.tails, ch)
	}
	l.mu.Unlock()

	for _, tail := range tails {
		tail.cancel()
		<-tail.done
	}
}

// tailLoop polls for events after the cursor and broadcasts them in id order.
func (l *PollingListener) tailLoop(ctx context.Context, channel string, cursor int64) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		next, err := l.deliverBatch(ctx, channel, cursor)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("Poll query failed", "channel", channel, "error", err)
			continue
		}
		cursor = next
	}
}

// deliverBatch fetches one batch after the cursor, broadcasts each row with
// db_event_id injected, and returns the new cursor position.
func (l *PollingListener) deliverBatch(ctx context.Context, channel string, cursor int64) (int64, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, payload FROM events WHERE channel = $1 AND id > $2 ORDER BY id ASC LIMIT $3`,
		channel, cursor, pollBatchSize,
	)
	if err != nil {
		return cursor, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return cursor, err
		}

		// Stored payloads don't carry db_event_id; add it like the NOTIFY
		// path does so clients can track their catchup position.
		var m map[string]any
		if err := json.Unmarshal(payload, &m); err != nil {
			slog.Warn("Skipping undecodable event payload", "channel", channel, "event_id", id, "error", err)
			cursor = id
			continue
		}
		m["db_event_id"] = id
		enriched, err := json.Marshal(m)
		if err != nil {
			cursor = id
			continue
		}

		l.target.Broadcast(channel, enriched)
		cursor = id
	}

	return cursor, rows.Err()
}
