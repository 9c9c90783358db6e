package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// catchupLimit caps how many events one catchup response carries. A client
// that missed more than this gets a catchup.overflow telling it to reload
// over REST instead.
const catchupLimit = 100

// listenTimeout bounds a LISTEN command issued while subscribing. A stalled
// connection would otherwise block the subscribing goroutine, and with it
// the client's read loop, forever.
const listenTimeout = 10 * time.Second

// CatchupEvent is one row from the catchup query.
type CatchupEvent struct {
	ID      int64
	Payload map[string]interface{}
}

// CatchupQuerier fetches missed events for catchup. Implemented by EventService.
type CatchupQuerier interface {
	GetCatchupEvents(ctx context.Context, channel string, sinceID int64, limit int) ([]CatchupEvent, error)
}

// ConnectionManager tracks the WebSocket connections of one process and
// their channel subscriptions. It also takes in-process subscriptions via
// SubscribeLocal, which is how the worker pool watches the cancellations
// channel without opening a socket to itself.
type ConnectionManager struct {
	connections map[string]*Connection // keyed by connection ID
	mu          sync.RWMutex

	channels  map[string]map[string]bool // channel to set of connection IDs
	channelMu sync.RWMutex

	localSubs   map[string]map[int]func(payload []byte) // channel to subscriber id to callback
	nextLocalID int
	localMu     sync.Mutex

	catchupQuerier CatchupQuerier

	// Set via SetListener after construction.
	listener   Listener
	listenerMu sync.RWMutex

	writeTimeout time.Duration
}

// Connection is one WebSocket client.
//
// subscriptions is accessed WITHOUT a lock. This is safe because all reads
// and writes (subscribe, unsubscribe, unregisterConnection) happen on the
// single goroutine owning this connection: HandleConnection's read loop and
// its deferred cleanup. Mutating a Connection from any other goroutine, say
// for an admin kick feature, would require putting a mutex around
// subscriptions first.
type Connection struct {
	ID            string
	Conn          *websocket.Conn
	subscriptions map[string]bool
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewConnectionManager creates an empty manager.
func NewConnectionManager(catchupQuerier CatchupQuerier, writeTimeout time.Duration) *ConnectionManager {
	return &ConnectionManager{
		connections:    make(map[string]*Connection),
		channels:       make(map[string]map[string]bool),
		localSubs:      make(map[string]map[int]func([]byte)),
		catchupQuerier: catchupQuerier,
		writeTimeout:   writeTimeout,
	}
}

// SetListener wires in the Listener used for dynamic LISTEN/UNLISTEN.
// Called once during startup, after both sides exist.
func (m *ConnectionManager) SetListener(l Listener) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.listener = l
}

func (m *ConnectionManager) currentListener() Listener {
	m.listenerMu.RLock()
	defer m.listenerMu.RUnlock()
	return m.listener
}

// HandleConnection runs one WebSocket connection from upgrade to close.
// Called by the WebSocket HTTP handler; blocks for the connection's life.
func (m *ConnectionManager) HandleConnection(parentCtx context.Context, conn *websocket.Conn) {
	connID := uuid.New().String()
	ctx, cancel := context.WithCancel(parentCtx)

	c := &Connection{
		ID:            connID,
		Conn:          conn,
		subscriptions: make(map[string]bool),
		ctx:           ctx,
		cancel:        cancel,
	}

	m.registerConnection(c)
	defer m.unregisterConnection(c)

	m.sendJSON(c, map[string]string{
		"type":          "connection.established",
		"connection_id": connID,
	})

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("Invalid WebSocket message",
				"connection_id", connID, "error", err)
			continue
		}

		m.handleClientMessage(ctx, c, &msg)
	}
}

// Broadcast delivers an event payload to every connection and in-process
// callback subscribed to the channel.
func (m *ConnectionManager) Broadcast(channel string, event []byte) {
	m.channelMu.RLock()
	connIDs := m.channels[channel]
	ids := make([]string, 0, len(connIDs))
	for id := range connIDs {
		ids = append(ids, id)
	}
	m.channelMu.RUnlock()

	// Snapshot the connection pointers, then send with no locks held. A
	// slow client can stall a write for up to writeTimeout, which must not
	// block register/unregister.
	m.mu.RLock()
	conns := make([]*Connection, 0, len(ids))
	for _, id := range ids {
		if conn, ok := m.connections[id]; ok {
			conns = append(conns, conn)
		}
	}
	m.mu.RUnlock()

	for _, conn := range conns {
		if err := m.sendRaw(conn, event); err != nil {
			slog.Warn("Failed to send to WebSocket client",
				"connection_id", conn.ID, "error", err)
		}
	}

	m.localMu.Lock()
	callbacks := make([]func([]byte), 0, len(m.localSubs[channel]))
	for _, fn := range m.localSubs[channel] {
		callbacks = append(callbacks, fn)
	}
	m.localMu.Unlock()

	for _, fn := range callbacks {
		fn(event)
	}
}

// SubscribeLocal registers an in-process callback for a channel, issuing
// LISTEN if needed, and returns a cancel function that removes the
// subscription. The worker pool uses this for the cancellations channel.
func (m *ConnectionManager) SubscribeLocal(channel string, fn func(payload []byte)) (func(), error) {
	m.localMu.Lock()
	id := m.nextLocalID
	m.nextLocalID++
	subs, exists := m.localSubs[channel]
	if !exists {
		subs = make(map[int]func([]byte))
		m.localSubs[channel] = subs
	}
	subs[id] = fn
	m.localMu.Unlock()

	// Listener.Subscribe is idempotent, so no first-subscriber bookkeeping.
	if l := m.currentListener(); l != nil {
		listenCtx, listenCancel := context.WithTimeout(context.Background(), listenTimeout)
		defer listenCancel()
		if err := l.Subscribe(listenCtx, channel); err != nil {
			m.removeLocal(channel, id)
			return nil, fmt.Errorf("LISTEN on channel %s: %w", channel, err)
		}
	}

	cancel := func() {
		m.removeLocal(channel, id)
		m.maybeUnlisten(channel)
	}
	return cancel, nil
}

func (m *ConnectionManager) removeLocal(channel string, id int) {
	m.localMu.Lock()
	defer m.localMu.Unlock()
	if subs, ok := m.localSubs[channel]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(m.localSubs, channel)
		}
	}
}

// ActiveConnections returns how many WebSocket connections are open.
func (m *ConnectionManager) ActiveConnections() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// subscriberCount returns the WebSocket subscriber count for a channel.
// Tests poll this instead of sleeping.
func (m *ConnectionManager) subscriberCount(channel string) int {
	m.channelMu.RLock()
	defer m.channelMu.RUnlock()
	return len(m.channels[channel])
}

func (m *ConnectionManager) handleClientMessage(ctx context.Context, c *Connection, msg *ClientMessage) {
	switch msg.Action {
	case "subscribe":
		if msg.Channel == "" {
			m.sendJSON(c, map[string]string{"type": "error", "message": "channel is required for subscribe"})
			return
		}
		if err := m.subscribe(c, msg.Channel); err != nil {
			m.sendJSON(c, map[string]string{
				"type":    "subscription.error",
				"channel": msg.Channel,
				"message": "failed to subscribe to channel",
			})
			return
		}
		m.sendJSON(c, map[string]string{
			"type":    "subscription.confirmed",
			"channel": msg.Channel,
		})
		// Late subscribers get every prior event replayed automatically.
		m.handleCatchup(ctx, c, msg.Channel, 0)

	case "unsubscribe":
		if msg.Channel == "" {
			m.sendJSON(c, map[string]string{"type": "error", "message": "channel is required for unsubscribe"})
			return
		}
		m.unsubscribe(c, msg.Channel)

	case "catchup":
		if msg.Channel == "" {
			m.sendJSON(c, map[string]string{"type": "error", "message": "channel is required for catchup"})
			return
		}
		if msg.LastEventID != nil {
			m.handleCatchup(ctx, c, msg.Channel, *msg.LastEventID)
		}

	case "ping":
		m.sendJSON(c, map[string]string{"type": "pong"})
	}
}

// subscribe records the connection on the channel and, for the first
// subscriber, issues LISTEN synchronously. Completing LISTEN before
// returning guarantees the auto-catchup that follows runs with LISTEN
// active, so no event published between the two can slip through.
//
// A LISTEN failure comes back as an error so the caller reports it rather
// than sending a false subscription.confirmed.
func (m *ConnectionManager) subscribe(c *Connection, channel string) error {
	m.channelMu.Lock()
	needsListen := false
	if _, exists := m.channels[channel]; !exists {
		m.channels[channel] = make(map[string]bool)
		needsListen = true
	}
	m.channels[channel][c.ID] = true
	m.channelMu.Unlock()

	if needsListen {
		if l := m.currentListener(); l != nil {
			listenCtx, listenCancel := context.WithTimeout(context.Background(), listenTimeout)
			defer listenCancel()
			if err := l.Subscribe(listenCtx, channel); err != nil {
				slog.Error("Failed to LISTEN on channel", "channel", channel, "error", err)
				m.cleanupFailedChannel(c, channel)
				return fmt.Errorf("LISTEN on channel %s: %w", channel, err)
			}
		}
	}

	c.subscriptions[channel] = true
	return nil
}

// cleanupFailedChannel removes every WebSocket subscriber from a channel
// after a LISTEN failure and tells each affected connection (the triggering
// one hears about it from the caller's error return).
//
// While channelMu was released and l.Subscribe was running, other
// goroutines may have subscribed to the same channel. They saw it already
// existed, skipped LISTEN, and reported success — so they now hold a
// subscription.confirmed with no PG LISTEN behind it. This helper evicts
// them.
//
// Client-side contract: an orphaned connection may observe
// subscription.confirmed, then catchup events, then subscription.error.
// That only happens during transient LISTEN failures. Clients must treat
// subscription.error as authoritative: discard prior events for the channel
// and re-subscribe with back-off or fall back to REST polling.
//
// Affected connections may keep a stale c.subscriptions[channel] entry.
// Harmless: Broadcast consults m.channels (now deleted), and unsubscribe /
// unregisterConnection tolerate missing channel entries.
func (m *ConnectionManager) cleanupFailedChannel(triggering *Connection, channel string) {
	m.channelMu.Lock()
	affectedIDs := make([]string, 0, len(m.channels[channel]))
	for connID := range m.channels[channel] {
		if connID != triggering.ID {
			affectedIDs = append(affectedIDs, connID)
		}
	}
	delete(m.channels, channel)
	m.channelMu.Unlock()

	if len(affectedIDs) == 0 {
		return
	}

	m.mu.RLock()
	conns := make([]*Connection, 0, len(affectedIDs))
	for _, id := range affectedIDs {
		if conn, ok := m.connections[id]; ok {
			conns = append(conns, conn)
		}
	}
	m.mu.RUnlock()

	for _, conn := range conns {
		slog.Warn("Removing orphaned subscriber after LISTEN failure",
			"connection_id", conn.ID, "channel", channel)
		m.sendJSON(conn, map[string]string{
			"type":    "subscription.error",
			"channel": channel,
			"message": "channel listen failed; subscription removed",
		})
	}
}

// unsubscribe drops the connection from a channel, releasing LISTEN when it
// was the last subscriber.
func (m *ConnectionManager) unsubscribe(c *Connection, channel string) {
	m.channelMu.Lock()
	if subs, exists := m.channels[channel]; exists {
		delete(subs, c.ID)
		if len(subs) == 0 {
			delete(m.channels, channel)
			m.maybeUnlisten(channel)
		}
	}
	m.channelMu.Unlock()

	delete(c.subscriptions, channel)
}

// maybeUnlisten issues UNLISTEN once nothing subscribes to a channel. The
// goroutine re-checks both subscriber maps first, which protects a rapid
// unsubscribe/resubscribe cycle (React StrictMode double-render does this)
// from dropping the LISTEN:
//
//	subscribe → LISTEN active
//	unsubscribe → goroutine: UNLISTEN (deferred)
//	resubscribe → channel re-added to m.channels
//	goroutine → sees resubscribed → skips UNLISTEN
func (m *ConnectionManager) maybeUnlisten(channel string) {
	l := m.currentListener()
	if l == nil {
		return
	}

	go func() {
		m.channelMu.RLock()
		_, resubscribed := m.channels[channel]
		m.channelMu.RUnlock()
		if resubscribed {
			return
		}
		m.localMu.Lock()
		hasLocal := len(m.localSubs[channel]) > 0
		m.localMu.Unlock()
		if hasLocal {
			return
		}
		if err := l.Unsubscribe(context.Background(), channel); err != nil {
			slog.Error("Failed to UNLISTEN channel", "channel", channel, "error", err)
		}
	}()
}

// handleCatchup replays events newer than lastEventID to the client.
func (m *ConnectionManager) handleCatchup(ctx context.Context, c *Connection, channel string, lastEventID int64) {
	if m.catchupQuerier == nil {
		return
	}

	// One row past the limit reveals overflow.
	events, err := m.catchupQuerier.GetCatchupEvents(ctx, channel, lastEventID, catchupLimit+1)
	if err != nil {
		slog.Error("Catchup query failed", "channel", channel, "error", err)
		return
	}

	hasMore := len(events) > catchupLimit
	if hasMore {
		events = events[:catchupLimit]
	}

	// db_event_id is absent from the stored payload (publish time adds it
	// to the NOTIFY payload only), so inject it from the row ID here.
	for _, evt := range events {
		evt.Payload["db_event_id"] = evt.ID
		payload, err := json.Marshal(evt.Payload)
		if err != nil {
			continue
		}
		if err := m.sendRaw(c, payload); err != nil {
			slog.Warn("Failed to send catchup event",
				"connection_id", c.ID, "error", err)
			return
		}
	}

	// Past the limit, the client should reload over REST rather than
	// paginate catchup requests.
	if hasMore {
		m.sendJSON(c, map[string]interface{}{
			"type":     "catchup.overflow",
			"channel":  channel,
			"has_more": true,
		})
	}
}

func (m *ConnectionManager) registerConnection(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[c.ID] = c
}

// unregisterConnection removes a connection and its subscriptions.
// Unsubscribing first is mandatory: a dangling channel entry would keep
// LISTEN active and Broadcast would keep trying a dead socket.
func (m *ConnectionManager) unregisterConnection(c *Connection) {
	for ch := range c.subscriptions {
		m.unsubscribe(c, ch)
	}

	m.mu.Lock()
	delete(m.connections, c.ID)
	m.mu.Unlock()

	c.cancel()
	_ = c.Conn.Close(websocket.StatusNormalClosure, "")
}

func (m *ConnectionManager) sendJSON(c *Connection, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("Failed to marshal WebSocket message",
			"connection_id", c.ID, "error", err)
		return
	}
	if err := m.sendRaw(c, data); err != nil {
		slog.Warn("Failed to send WebSocket message",
			"connection_id", c.ID, "error", err)
	}
}

// sendRaw writes bytes to one connection under the write timeout.
func (m *ConnectionManager) sendRaw(c *Connection, data []byte) error {
	writeCtx, cancel := context.WithTimeout(c.ctx, m.writeTimeout)
	defer cancel()
	return c.Conn.Write(writeCtx, websocket.MessageText, data)
}
