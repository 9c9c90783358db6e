// Package e2e contains end-to-end tests that exercise the full system:
// HTTP API → alert service → worker pool → chain executor → agents →
// scripted LLM → in-memory MCP → PostgreSQL → event pipeline → WebSocket.
//
// Only the outermost boundaries are replaced with test doubles (LLM
// responses are scripted, MCP servers run in-memory); everything in
// between is the production wiring.
package e2e

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/api"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/database"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/mcp"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/queue"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/services"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/session"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/slack"
	testdb "github.com/rsoaresd/tarsy-bot-sub007/test/database"
	"github.com/rsoaresd/tarsy-bot-sub007/test/e2e/testdata/configs"
	"github.com/rsoaresd/tarsy-bot-sub007/test/util"
)

// TestApp is a fully wired application instance backed by a per-test
// database schema and a real HTTP listener on a random port.
type TestApp struct {
	T      *testing.T
	Config *config.Config
	PodID  string

	DB  *database.Client
	Ent *ent.Client

	LLM        agent.LLMClient
	MCPFactory *mcp.ClientFactory

	Publisher   *events.EventPublisher
	ConnManager *events.ConnectionManager

	Sessions     *services.SessionService
	Stages       *services.StageService
	Interactions *services.InteractionService
	Events       *services.EventService
	Alerts       *services.AlertService

	Pool   *queue.WorkerPool
	Server *api.Server

	BaseURL string
	WSURL   string
}

type testAppOptions struct {
	cfg            *config.Config
	llm            agent.LLMClient
	mcpServers     map[string]map[string]mcpsdk.ToolHandler
	dbClient       *database.Client
	podID          string
	slackService   *slack.Service
	workerCount    int
	maxConcurrent  int
	maxQueueSize   int
	sessionTimeout time.Duration
}

// TestAppOption customizes the harness.
type TestAppOption func(*testAppOptions)

// WithConfig uses the given application config instead of the default
// single-stage chain.
func WithConfig(cfg *config.Config) TestAppOption {
	return func(o *testAppOptions) { o.cfg = cfg }
}

// WithLLMClient injects the scripted LLM client.
func WithLLMClient(llm agent.LLMClient) TestAppOption {
	return func(o *testAppOptions) { o.llm = llm }
}

// WithMCPServers starts in-memory MCP servers (serverID → toolName → handler).
func WithMCPServers(servers map[string]map[string]mcpsdk.ToolHandler) TestAppOption {
	return func(o *testAppOptions) { o.mcpServers = servers }
}

// WithDBClient supplies the app's database client. Multi-replica tests
// use it to point several pods at one schema, each with its own pool.
func WithDBClient(db *database.Client) TestAppOption {
	return func(o *testAppOptions) { o.dbClient = db }
}

// WithPodID overrides the pod identity (default "e2e-pod").
func WithPodID(podID string) TestAppOption {
	return func(o *testAppOptions) { o.podID = podID }
}

// WithSlackService wires a Slack notifier into the worker pool.
func WithSlackService(s *slack.Service) TestAppOption {
	return func(o *testAppOptions) { o.slackService = s }
}

// WithWorkerCount overrides the per-pod worker goroutine count.
func WithWorkerCount(n int) TestAppOption {
	return func(o *testAppOptions) { o.workerCount = n }
}

// WithMaxConcurrentSessions overrides the global concurrency cap.
func WithMaxConcurrentSessions(n int) TestAppOption {
	return func(o *testAppOptions) { o.maxConcurrent = n }
}

// WithMaxQueueSize overrides the alert intake queue cap.
func WithMaxQueueSize(n int) TestAppOption {
	return func(o *testAppOptions) { o.maxQueueSize = n }
}

// WithSessionTimeout overrides the per-session execution deadline.
func WithSessionTimeout(d time.Duration) TestAppOption {
	return func(o *testAppOptions) { o.sessionTimeout = d }
}

// NewTestApp wires up the application with production components and starts
// it. All resources are released through t.Cleanup in reverse order.
func NewTestApp(t *testing.T, opts ...TestAppOption) *TestApp {
	t.Helper()

	o := &testAppOptions{podID: "e2e-pod"}
	for _, opt := range opts {
		opt(o)
	}

	cfg := o.cfg
	if cfg == nil {
		cfg = configs.SingleStageConfig()
	}
	applyQueueDefaults(cfg, o)

	dbClient := o.dbClient
	if dbClient == nil {
		dbClient = testdb.NewTestClient(t)
	}
	entClient := dbClient.Client

	// Event pipeline: durable rows + NOTIFY fan-out + WS connection manager.
	publisher := events.NewEventPublisher(dbClient.DB())
	eventService := services.NewEventService(entClient)
	connManager := events.NewConnectionManager(eventService, 5*time.Second)

	listener := events.NewNotifyListener(util.GetBaseConnectionString(t), connManager)
	require.NoError(t, listener.Start(context.Background()))
	connManager.SetListener(listener)
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		listener.Stop(stopCtx)
	})

	// Core services.
	sessionService := services.NewSessionService(entClient)
	stageService := services.NewStageService(entClient)
	interactionService := services.NewInteractionService(entClient)
	alertService := services.NewAlertService(
		sessionService, cfg.ChainRegistry, cfg.Defaults, nil, cfg.Queue.MaxQueueSize, publisher)

	// MCP: in-memory servers when configured, otherwise a factory over the
	// configured registry so agents without tools still resolve.
	var mcpFactory *mcp.ClientFactory
	if len(o.mcpServers) > 0 {
		mcpFactory = SetupInMemoryMCP(t, o.mcpServers)
	} else {
		mcpFactory = mcp.NewClientFactory(cfg.MCPServerRegistry, nil)
	}

	llm := o.llm
	if llm == nil {
		llm = NewScriptedLLMClient()
	}

	tracker := session.NewCancellationTracker()
	executor := queue.NewChainExecutor(cfg, entClient, llm, publisher, mcpFactory, tracker)
	pool := queue.NewWorkerPool(o.podID, entClient, cfg.Queue, executor, queue.PoolDeps{
		Publisher:   publisher,
		ConnManager: connManager,
		Tracker:     tracker,
		Slack:       o.slackService,
	})
	require.NoError(t, pool.Start())
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = pool.Stop(stopCtx)
	})

	server := api.NewServer(cfg, dbClient, alertService, sessionService,
		stageService, interactionService, pool, connManager)
	server.SetEventPublisher(publisher)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		if serveErr := server.StartWithListener(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			t.Logf("test server exited: %v", serveErr)
		}
	}()
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	})

	addr := ln.Addr().String()
	return &TestApp{
		T:            t,
		Config:       cfg,
		PodID:        o.podID,
		DB:           dbClient,
		Ent:          entClient,
		LLM:          llm,
		MCPFactory:   mcpFactory,
		Publisher:    publisher,
		ConnManager:  connManager,
		Sessions:     sessionService,
		Stages:       stageService,
		Interactions: interactionService,
		Events:       eventService,
		Alerts:       alertService,
		Pool:         pool,
		Server:       server,
		BaseURL:      "http://" + addr,
		WSURL:        "ws://" + addr + "/api/v1/ws",
	}
}

// applyQueueDefaults fills in fast polling intervals suited for tests and
// applies harness overrides. Test configs usually omit the queue section.
func applyQueueDefaults(cfg *config.Config, o *testAppOptions) {
	if cfg.Defaults == nil {
		cfg.Defaults = &config.Defaults{}
	}
	if cfg.Queue == nil {
		cfg.Queue = &config.QueueConfig{}
	}
	q := cfg.Queue
	if q.WorkerCount == 0 {
		q.WorkerCount = 2
	}
	if q.MaxConcurrentSessions == 0 {
		q.MaxConcurrentSessions = 10
	}
	if q.PollInterval == 0 {
		q.PollInterval = 50 * time.Millisecond
	}
	if q.HeartbeatInterval == 0 {
		q.HeartbeatInterval = time.Second
	}
	if q.SessionTimeout == 0 {
		q.SessionTimeout = 30 * time.Second
	}
	if q.GracefulShutdownTimeout == 0 {
		q.GracefulShutdownTimeout = 10 * time.Second
	}
	// Orphan detection stays out of the way unless a test tunes it down.
	if q.OrphanDetectionInterval == 0 {
		q.OrphanDetectionInterval = time.Hour
	}
	if q.OrphanThreshold == 0 {
		q.OrphanThreshold = time.Hour
	}

	if o.workerCount > 0 {
		q.WorkerCount = o.workerCount
	}
	if o.maxConcurrent > 0 {
		q.MaxConcurrentSessions = o.maxConcurrent
	}
	if o.maxQueueSize > 0 {
		q.MaxQueueSize = o.maxQueueSize
	}
	if o.sessionTimeout > 0 {
		q.SessionTimeout = o.sessionTimeout
	}
}
