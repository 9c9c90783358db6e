package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// WSEvent is one message received over the WebSocket.
type WSEvent struct {
	Type     string                 `json:"type"`
	Raw      json.RawMessage        // wire bytes as received
	Parsed   map[string]interface{} // decoded form for assertions
	Received time.Time
}

// WSClient connects to the TARSy WebSocket endpoint and records every
// event a background reader sees.
type WSClient struct {
	conn   *websocket.Conn
	events []WSEvent
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	doneCh chan struct{}
}

// WSConnect dials the test server and starts the collecting goroutine.
func WSConnect(ctx context.Context, wsURL string) (*WSClient, error) {
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{})
	if err != nil {
		return nil, fmt.Errorf("WebSocket dial: %w", err)
	}

	clientCtx, cancel := context.WithCancel(ctx)
	c := &WSClient{
		conn:   conn,
		ctx:    clientCtx,
		cancel: cancel,
		doneCh: make(chan struct{}),
	}

	go c.readLoop()

	return c, nil
}

// Subscribe sends a subscribe action for the given channel.
func (c *WSClient) Subscribe(channel string) error {
	return c.Send(map[string]string{
		"action":  "subscribe",
		"channel": channel,
	})
}

// Send writes any client message (catchup, ping, unsubscribe).
func (c *WSClient) Send(msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.conn.Write(c.ctx, websocket.MessageText, data)
}

// poll re-checks cond every 25ms until it succeeds or the timeout hits.
func poll(timeout time.Duration, cond func() bool) error {
	deadline := time.After(timeout)
	tick := time.NewTicker(25 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-deadline:
			return fmt.Errorf("timeout")
		case <-tick.C:
			if cond() {
				return nil
			}
		}
	}
}

// WaitForEvent blocks until an event matching the predicate arrives.
func (c *WSClient) WaitForEvent(predicate func(WSEvent) bool, timeout time.Duration) (*WSEvent, error) {
	var match *WSEvent
	err := poll(timeout, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i := range c.events {
			if predicate(c.events[i]) {
				evt := c.events[i]
				match = &evt
				return true
			}
		}
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("timeout waiting for event (collected %d events)", len(c.Events()))
	}
	return match, nil
}

// WaitForEventType blocks until an event with the given type arrives.
func (c *WSClient) WaitForEventType(eventType string, timeout time.Duration) (*WSEvent, error) {
	return c.WaitForEvent(func(e WSEvent) bool {
		return e.Type == eventType
	}, timeout)
}

// WaitForSessionEvent blocks until a lifecycle event of the given type
// arrives for the given session, ignoring other sessions on the channel.
func (c *WSClient) WaitForSessionEvent(eventType, sessionID string, timeout time.Duration) (*WSEvent, error) {
	return c.WaitForEvent(func(e WSEvent) bool {
		return e.Type == eventType && e.Parsed["session_id"] == sessionID
	}, timeout)
}

// CollectUntil gathers events until the predicate accepts the collected
// set, returning whatever was gathered either way.
func (c *WSClient) CollectUntil(predicate func(events []WSEvent) bool, timeout time.Duration) ([]WSEvent, error) {
	var evts []WSEvent
	err := poll(timeout, func() bool {
		evts = c.Events()
		return predicate(evts)
	})
	if err != nil {
		return c.Events(), fmt.Errorf("timeout waiting for condition (collected %d events)", len(c.Events()))
	}
	return evts, nil
}

// Events returns a snapshot of everything collected so far.
func (c *WSClient) Events() []WSEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]WSEvent, len(c.events))
	copy(result, c.events)
	return result
}

// EventsByType returns the collected events with the given type.
func (c *WSClient) EventsByType(eventType string) []WSEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result []WSEvent
	for _, e := range c.events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

// Close tears down the connection and waits for the reader to exit.
func (c *WSClient) Close() error {
	c.cancel()
	_ = c.conn.CloseNow()
	<-c.doneCh
	return nil
}

func (c *WSClient) readLoop() {
	defer close(c.doneCh)
	for {
		_, data, err := c.conn.Read(c.ctx)
		if err != nil {
			return // closed or cancelled
		}

		var parsed map[string]interface{}
		if err := json.Unmarshal(data, &parsed); err != nil {
			continue // ignore malformed frames
		}

		evt := WSEvent{
			Raw:      json.RawMessage(data),
			Parsed:   parsed,
			Received: time.Now(),
		}
		if t, ok := parsed["type"].(string); ok {
			evt.Type = t
		}

		c.mu.Lock()
		c.events = append(c.events, evt)
		c.mu.Unlock()
	}
}
