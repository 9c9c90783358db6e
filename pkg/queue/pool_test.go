package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/session"
)

// newBarePool builds a pool without DB-backed services, enough for the
// registration and cancellation paths.
func newBarePool() *WorkerPool {
	return &WorkerPool{
		tracker: session.NewCancellationTracker(),
		active:  make(map[string]context.CancelFunc),
		logger:  slog.Default(),
	}
}

func TestPoolRegisterAndCancelSession(t *testing.T) {
	pool := newBarePool()

	ctx, cancel := context.WithCancel(context.Background())
	pool.registerSession("session-1", cancel)

	assert.True(t, pool.CancelSession("session-1"))
	assert.Error(t, ctx.Err(), "registered context should be cancelled")

	assert.False(t, pool.CancelSession("unknown"))
}

func TestPoolCancelSessionMarksTracker(t *testing.T) {
	pool := newBarePool()

	_, cancel := context.WithCancel(context.Background())
	pool.registerSession("session-1", cancel)

	require.True(t, pool.CancelSession("session-1"))

	// The tracker mark is what distinguishes an operator cancel from a
	// timeout when the executor sees its context die.
	assert.True(t, pool.tracker.IsCancelled("session-1"))
	assert.False(t, pool.tracker.IsCancelled("session-2"))
}

func TestPoolUnregisterSession(t *testing.T) {
	pool := newBarePool()

	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.registerSession("session-1", cancel)
	assert.True(t, pool.ownsSession("session-1"))

	pool.unregisterSession("session-1")
	assert.False(t, pool.ownsSession("session-1"))
	assert.False(t, pool.CancelSession("session-1"))
}

func TestPoolHandleCancelEvent(t *testing.T) {
	pool := newBarePool()

	ctx, cancel := context.WithCancel(context.Background())
	pool.registerSession("session-1", cancel)

	payload, err := json.Marshal(events.CancelRequestedPayload{
		Type:      events.EventTypeCancelRequested,
		SessionID: "session-1",
	})
	require.NoError(t, err)

	pool.handleCancelEvent(payload)
	assert.Error(t, ctx.Err(), "cancel broadcast should cancel the owned session")

	// Malformed payloads and empty session ids are ignored.
	pool.handleCancelEvent([]byte("not json"))
	pool.handleCancelEvent([]byte(`{"type":"session.cancel_requested"}`))
}

func TestPoolStopTwiceDoesNotPanic(t *testing.T) {
	pool := newBarePool()

	require.NoError(t, pool.Stop(context.Background()))
	assert.NotPanics(t, func() { _ = pool.Stop(context.Background()) })
}
