package events_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/database"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/services"
	testdb "github.com/rsoaresd/tarsy-bot-sub007/test/database"
	"github.com/rsoaresd/tarsy-bot-sub007/test/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// streamingTestEnv wires the full event pipeline against a real database:
// publisher -> events table + NOTIFY -> listener -> manager -> WebSocket.
type streamingTestEnv struct {
	dbClient     *database.Client
	publisher    *events.EventPublisher
	eventService *services.EventService
	manager      *events.ConnectionManager
	server       *httptest.Server
	sessionID    string
	channel      string
}

func newStreamingTestEnv(t *testing.T) *streamingTestEnv {
	t.Helper()
	ctx := context.Background()

	dbClient := testdb.NewTestClient(t)
	eventService := services.NewEventService(dbClient.Client)
	manager := events.NewConnectionManager(eventService, 5*time.Second)

	// The listener needs its own connection (LISTEN ties up the whole
	// connection), so it gets the base connection string rather than the
	// schema-scoped pool. NOTIFY channels are database-global anyway.
	listener := events.NewNotifyListener(util.GetBaseConnectionString(t), manager)
	require.NoError(t, listener.Start(ctx))
	manager.SetListener(listener)
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		listener.Stop(stopCtx)
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		manager.HandleConnection(r.Context(), conn)
	}))
	t.Cleanup(server.Close)

	sessionID := uuid.NewString()
	return &streamingTestEnv{
		dbClient:     dbClient,
		publisher:    events.NewEventPublisher(dbClient.DB()),
		eventService: eventService,
		manager:      manager,
		server:       server,
		sessionID:    sessionID,
		channel:      events.SessionChannel(sessionID),
	}
}

// dial opens a WebSocket connection and consumes the connection.established
// greeting.
func (env *streamingTestEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })

	msg := readEvent(t, conn)
	require.Equal(t, "connection.established", msg["type"])
	return conn
}

func sendMessage(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

// readEventForSession skips events belonging to other sessions. Needed on
// shared channels (sessions, cancellations) where unrelated traffic may
// interleave.
func readEventForSession(t *testing.T, conn *websocket.Conn, sessionID string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		msg := readEvent(t, conn)
		if msg["session_id"] == sessionID {
			return msg
		}
	}
	t.Fatalf("no event for session %s within deadline", sessionID)
	return nil
}

func assertNoEvent(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.Error(t, err, "expected no further events, got: %s", string(data))
}

// subscribeChannel waits for the confirmation, which the manager sends only
// after LISTEN is active. Events published after this call are guaranteed to
// reach the connection.
func subscribeChannel(t *testing.T, conn *websocket.Conn, channel string) {
	t.Helper()
	sendMessage(t, conn, map[string]any{"action": "subscribe", "channel": channel})
	msg := readEvent(t, conn)
	require.Equal(t, "subscription.confirmed", msg["type"])
	require.Equal(t, channel, msg["channel"])
}

func TestIntegration_PublisherPersistsAndNotifies(t *testing.T) {
	env := newStreamingTestEnv(t)
	ctx := context.Background()

	conn := env.dial(t)
	subscribeChannel(t, conn, env.channel)

	err := env.publisher.PublishStageStatus(ctx, env.sessionID, events.StageStatusPayload{
		Type:        events.EventTypeStageStarted,
		SessionID:   env.sessionID,
		ExecutionID: "exec-1",
		StageID:     "investigate",
		StageName:   "Investigate",
		StageIndex:  0,
		AgentName:   "KubernetesAgent",
		Status:      "active",
	})
	require.NoError(t, err)

	err = env.publisher.PublishStageStatus(ctx, env.sessionID, events.StageStatusPayload{
		Type:        events.EventTypeStageCompleted,
		SessionID:   env.sessionID,
		ExecutionID: "exec-1",
		StageID:     "investigate",
		StageName:   "Investigate",
		StageIndex:  0,
		AgentName:   "KubernetesAgent",
		Status:      "completed",
	})
	require.NoError(t, err)

	// Live delivery in publish order, each carrying its catchup cursor.
	first := readEvent(t, conn)
	assert.Equal(t, events.EventTypeStageStarted, first["type"])
	assert.Equal(t, env.sessionID, first["session_id"])
	require.NotNil(t, first["db_event_id"])

	second := readEvent(t, conn)
	assert.Equal(t, events.EventTypeStageCompleted, second["type"])
	require.NotNil(t, second["db_event_id"])
	assert.Greater(t, second["db_event_id"].(float64), first["db_event_id"].(float64))

	// Both rows persisted with ids matching the wire copies.
	rows, err := env.eventService.GetEventsAfter(ctx, env.channel, 0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(first["db_event_id"].(float64)), rows[0].ID)
	assert.Equal(t, int64(second["db_event_id"].(float64)), rows[1].ID)
	assert.Equal(t, events.EventTypeStageStarted, rows[0].Payload["type"])
	assert.Equal(t, events.EventTypeStageCompleted, rows[1].Payload["type"])
}

func TestIntegration_SessionLifecycleOnGlobalChannel(t *testing.T) {
	env := newStreamingTestEnv(t)
	ctx := context.Background()

	global := env.dial(t)
	subscribeChannel(t, global, events.GlobalSessionsChannel)

	detail := env.dial(t)
	subscribeChannel(t, detail, env.channel)

	err := env.publisher.PublishSessionStatus(ctx, env.sessionID, events.SessionStatusPayload{
		Type:      events.EventTypeSessionCreated,
		SessionID: env.sessionID,
		Status:    "pending",
		AlertType: "kubernetes",
		ChainID:   "k8s-analysis",
	})
	require.NoError(t, err)

	// List-page subscribers get the persisted copy with a catchup cursor.
	msg := readEventForSession(t, global, env.sessionID)
	assert.Equal(t, events.EventTypeSessionCreated, msg["type"])
	assert.Equal(t, "pending", msg["status"])
	require.NotNil(t, msg["db_event_id"])

	// Detail-page subscribers get a transient copy without one.
	detailMsg := readEvent(t, detail)
	assert.Equal(t, events.EventTypeSessionCreated, detailMsg["type"])
	assert.Equal(t, env.sessionID, detailMsg["session_id"])
	assert.Nil(t, detailMsg["db_event_id"])

	// Durable row lives on the global channel only.
	sessionRows, err := env.eventService.GetEventsAfter(ctx, env.channel, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, sessionRows)

	globalRows, err := env.eventService.GetEventsAfter(ctx, events.GlobalSessionsChannel, 0, 100)
	require.NoError(t, err)
	found := false
	for _, row := range globalRows {
		if row.Payload["session_id"] == env.sessionID {
			found = true
			assert.Equal(t, events.EventTypeSessionCreated, row.Payload["type"])
		}
	}
	assert.True(t, found, "session.created row missing from sessions channel")
}

func TestIntegration_TransientChunksNotPersisted(t *testing.T) {
	env := newStreamingTestEnv(t)
	ctx := context.Background()

	conn := env.dial(t)
	subscribeChannel(t, conn, env.channel)

	err := env.publisher.PublishStreamChunk(ctx, env.sessionID, events.StreamChunkPayload{
		Type:          events.EventTypeStreamChunk,
		SessionID:     env.sessionID,
		InteractionID: "llm-1",
		StreamType:    events.StreamTypeThought,
		Content:       "I need to check the pod status",
	})
	require.NoError(t, err)

	msg := readEvent(t, conn)
	assert.Equal(t, events.EventTypeStreamChunk, msg["type"])
	assert.Equal(t, events.StreamTypeThought, msg["stream_type"])
	assert.Equal(t, "I need to check the pod status", msg["content"])
	assert.Nil(t, msg["db_event_id"])

	// Chunks carry accumulated content: each one restates the full text so far.
	err = env.publisher.PublishStreamChunk(ctx, env.sessionID, events.StreamChunkPayload{
		Type:          events.EventTypeStreamChunk,
		SessionID:     env.sessionID,
		InteractionID: "llm-1",
		StreamType:    events.StreamTypeThought,
		Content:       "I need to check the pod status. Listing pods in the namespace now.",
	})
	require.NoError(t, err)

	msg2 := readEvent(t, conn)
	assert.Equal(t, "I need to check the pod status. Listing pods in the namespace now.", msg2["content"])

	// Nothing reached the event log.
	rows, err := env.eventService.GetEventsAfter(ctx, env.channel, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestIntegration_CatchupFromRealDB(t *testing.T) {
	env := newStreamingTestEnv(t)
	ctx := context.Background()

	// Backlog exists before any subscriber connects.
	for i := 1; i <= 3; i++ {
		err := env.publisher.PublishLLMInteraction(ctx, env.sessionID, events.LLMInteractionPayload{
			Type:            events.EventTypeLLMInteraction,
			SessionID:       env.sessionID,
			InteractionID:   fmt.Sprintf("llm-%d", i),
			InteractionType: "investigation",
			ModelName:       "test-model",
			Success:         true,
		})
		require.NoError(t, err)
	}

	conn := env.dial(t)
	subscribeChannel(t, conn, env.channel)

	// Auto-catchup replays the backlog in id order.
	var ids []int64
	for i := 0; i < 3; i++ {
		msg := readEvent(t, conn)
		assert.Equal(t, events.EventTypeLLMInteraction, msg["type"])
		require.NotNil(t, msg["db_event_id"])
		ids = append(ids, int64(msg["db_event_id"].(float64)))
	}
	assert.Less(t, ids[0], ids[1])
	assert.Less(t, ids[1], ids[2])

	// Explicit catchup from a cursor delivers only what follows it.
	sendMessage(t, conn, map[string]any{
		"action":        "catchup",
		"channel":       env.channel,
		"last_event_id": ids[0],
	})

	replay1 := readEvent(t, conn)
	assert.Equal(t, float64(ids[1]), replay1["db_event_id"])
	replay2 := readEvent(t, conn)
	assert.Equal(t, float64(ids[2]), replay2["db_event_id"])

	assertNoEvent(t, conn)
}

func TestIntegration_CancelRequestedReachesLocalSubscribers(t *testing.T) {
	env := newStreamingTestEnv(t)
	ctx := context.Background()

	received := make(chan []byte, 1)
	cancelSub, err := env.manager.SubscribeLocal(events.CancellationsChannel, func(payload []byte) {
		var msg map[string]any
		if json.Unmarshal(payload, &msg) == nil && msg["session_id"] == env.sessionID {
			select {
			case received <- payload:
			default:
			}
		}
	})
	require.NoError(t, err)
	t.Cleanup(cancelSub)

	require.NoError(t, env.publisher.PublishCancelRequested(ctx, env.sessionID))

	select {
	case payload := <-received:
		var msg map[string]any
		require.NoError(t, json.Unmarshal(payload, &msg))
		assert.Equal(t, events.EventTypeCancelRequested, msg["type"])
		require.NotNil(t, msg["db_event_id"])
	case <-time.After(5 * time.Second):
		t.Fatal("cancel request not delivered to local subscriber")
	}

	// Durable, so polling replicas can pick it up from the table too.
	rows, err := env.eventService.GetEventsAfter(ctx, events.CancellationsChannel, 0, 100)
	require.NoError(t, err)
	found := false
	for _, row := range rows {
		if row.Payload["session_id"] == env.sessionID {
			found = true
		}
	}
	assert.True(t, found, "cancel request row missing from cancellations channel")
}

func TestIntegration_OversizedPayloadTruncatedOnWire(t *testing.T) {
	env := newStreamingTestEnv(t)
	ctx := context.Background()

	conn := env.dial(t)
	subscribeChannel(t, conn, env.channel)

	longError := strings.Repeat("x", 9000)
	err := env.publisher.PublishStageStatus(ctx, env.sessionID, events.StageStatusPayload{
		Type:         events.EventTypeStageCompleted,
		SessionID:    env.sessionID,
		ExecutionID:  "exec-1",
		StageID:      "investigate",
		StageName:    "Investigate",
		StageIndex:   0,
		Status:       "failed",
		ErrorMessage: longError,
	})
	require.NoError(t, err)

	// The wire copy is a routing envelope; the body is dropped.
	msg := readEvent(t, conn)
	assert.Equal(t, true, msg["truncated"])
	assert.Equal(t, events.EventTypeStageCompleted, msg["type"])
	assert.Equal(t, env.sessionID, msg["session_id"])
	require.NotNil(t, msg["db_event_id"])
	assert.Nil(t, msg["error_message"])

	// The full payload is recoverable through catchup.
	id := int64(msg["db_event_id"].(float64))
	evts, err := env.eventService.GetCatchupEvents(ctx, env.channel, id-1, 10)
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, id, evts[0].ID)
	assert.Equal(t, longError, evts[0].Payload["error_message"])
}

func TestIntegration_PollingListenerDeliversPersistedEvents(t *testing.T) {
	env := newStreamingTestEnv(t)
	ctx := context.Background()

	// A second manager wired to a polling listener, the way a replica without
	// NOTIFY support would run.
	pollManager := events.NewConnectionManager(env.eventService, 5*time.Second)
	poll := events.NewPollingListener(env.dbClient.DB(), pollManager, 50*time.Millisecond)
	require.NoError(t, poll.Start(ctx))
	pollManager.SetListener(poll)
	t.Cleanup(func() { poll.Stop(ctx) })

	received := make(chan []byte, 4)
	cancelSub, err := pollManager.SubscribeLocal(env.channel, func(payload []byte) {
		received <- payload
	})
	require.NoError(t, err)
	t.Cleanup(cancelSub)

	err = env.publisher.PublishStageStatus(ctx, env.sessionID, events.StageStatusPayload{
		Type:        events.EventTypeStageStarted,
		SessionID:   env.sessionID,
		ExecutionID: "exec-1",
		StageID:     "investigate",
		StageName:   "Investigate",
		StageIndex:  0,
		Status:      "active",
	})
	require.NoError(t, err)

	err = env.publisher.PublishStageStatus(ctx, env.sessionID, events.StageStatusPayload{
		Type:        events.EventTypeStageCompleted,
		SessionID:   env.sessionID,
		ExecutionID: "exec-1",
		StageID:     "investigate",
		StageName:   "Investigate",
		StageIndex:  0,
		Status:      "completed",
	})
	require.NoError(t, err)

	for _, want := range []string{events.EventTypeStageStarted, events.EventTypeStageCompleted} {
		select {
		case payload := <-received:
			var msg map[string]any
			require.NoError(t, json.Unmarshal(payload, &msg))
			assert.Equal(t, want, msg["type"])
			require.NotNil(t, msg["db_event_id"])
		case <-time.After(5 * time.Second):
			t.Fatalf("polling listener did not deliver %s", want)
		}
	}
}
