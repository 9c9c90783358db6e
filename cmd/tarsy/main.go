// TARSy orchestrator server — provides HTTP API, manages queue workers,
// and orchestrates session processing.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/api"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/cleanup"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/database"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/llm"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/masking"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/mcp"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/queue"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/services"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/session"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/slack"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// resolvePodID determines the pod identifier for multi-replica coordination.
// Priority: POD_ID env > HOSTNAME env > "local"
func resolvePodID() string {
	if id := os.Getenv("POD_ID"); id != "" {
		return id
	}
	if hostname := os.Getenv("HOSTNAME"); hostname != "" {
		return hostname
	}
	return "local"
}

func main() {
	// Parse command-line flags
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	// Load .env file from config directory
	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment",
			"path", envPath, "error", err)
	} else {
		slog.Info("Loaded environment", "path", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	podID := resolvePodID()

	slog.Info("Starting TARSy",
		"http_port", httpPort,
		"pod_id", podID,
		"config_dir", *configDir)

	ctx := context.Background()

	// 1. Initialize configuration
	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize database
	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		slog.Error("Failed to load database config", "error", err)
		os.Exit(1)
	}

	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			slog.Error("Error closing database client", "error", err)
		}
	}()
	slog.Info("Connected to PostgreSQL database")

	// 3. Initialize masking service and domain services
	maskingService := masking.NewService(
		cfg.MCPServerRegistry,
		masking.AlertMaskingConfig{
			Enabled:      cfg.Defaults.AlertMasking.Enabled,
			PatternGroup: cfg.Defaults.AlertMasking.PatternGroup,
		},
	)

	sessionService := services.NewSessionService(dbClient.Client)
	stageService := services.NewStageService(dbClient.Client)
	interactionService := services.NewInteractionService(dbClient.Client)
	eventService := services.NewEventService(dbClient.Client)
	warningsService := services.NewSystemWarningsService()
	for _, w := range cfg.Warnings {
		warningsService.AddWarning(w.Category, w.Message, w.Details, w.ServerID)
	}

	// 4. Initialize streaming infrastructure
	eventPublisher := events.NewEventPublisher(dbClient.DB())
	connManager := events.NewConnectionManager(eventService, 10*time.Second)

	// NOTIFY needs a dedicated connection outside the pool; polling mode
	// tails the events table instead (for Postgres-compatible stores
	// without LISTEN support).
	var listener events.Listener
	if getEnv("EVENT_LISTENER", "notify") == "polling" {
		listener = events.NewPollingListener(dbClient.DB(), connManager, 0)
	} else {
		listener = events.NewNotifyListener(dbConfig.DSN(), connManager)
	}
	if err := listener.Start(ctx); err != nil {
		slog.Error("Failed to start event listener", "error", err)
		os.Exit(1)
	}
	defer listener.Stop(ctx)
	connManager.SetListener(listener)
	slog.Info("Streaming infrastructure initialized")

	alertService := services.NewAlertService(
		sessionService, cfg.ChainRegistry, cfg.Defaults, maskingService,
		cfg.Queue.MaxQueueSize, eventPublisher)

	// 5. One-time startup orphan pass: fail sessions this pod abandoned in
	// a previous life, before workers start claiming.
	if err := queue.CleanupStartupOrphans(ctx, dbClient.Client, podID, eventPublisher); err != nil {
		slog.Error("Failed to clean up startup orphans", "error", err)
		// Non-fatal — the periodic orphan sweeper covers the rest
	}

	// 6. Initialize LLM client
	llmClient := llm.NewClient(cfg.LLMProviderRegistry)
	defer func() {
		if err := llmClient.Close(); err != nil {
			slog.Error("Error closing LLM client", "error", err)
		}
	}()
	slog.Info("LLM client initialized")

	// 7. Initialize MCP infrastructure
	mcpFactory := mcp.NewClientFactory(cfg.MCPServerRegistry, maskingService)

	// Eager MCP validation: verify all configured servers can connect.
	// If any server fails, the process exits — prevents silent broken configs.
	mcpServerIDs := cfg.AllMCPServerIDs()
	if len(mcpServerIDs) > 0 {
		validationClient, mcpErr := mcpFactory.CreateClient(ctx, mcpServerIDs)
		if mcpErr != nil {
			slog.Error("MCP startup validation failed", "error", mcpErr)
			os.Exit(1)
		}
		failed := validationClient.FailedServers()
		if len(failed) > 0 {
			slog.Error("MCP servers failed startup validation", "failed_servers", failed)
			_ = validationClient.Close()
			os.Exit(1)
		}
		_ = validationClient.Close()
		slog.Info("MCP servers validated", "count", len(mcpServerIDs))
	}

	// Start HealthMonitor (background goroutine)
	var healthMonitor *mcp.HealthMonitor
	if len(mcpServerIDs) > 0 {
		healthMonitor = mcp.NewHealthMonitor(mcpFactory, cfg.MCPServerRegistry, warningsService)
		healthMonitor.Start(ctx)
		defer healthMonitor.Stop()
		slog.Info("MCP health monitor started")
	}

	// 8. Slack notifications (nil service when not configured — all calls
	// become no-ops)
	var slackService *slack.Service
	if cfg.Slack != nil && cfg.Slack.Enabled {
		slackService = slack.NewService(slack.ServiceConfig{
			Token:        os.Getenv(cfg.Slack.TokenEnv),
			Channel:      cfg.Slack.Channel,
			DashboardURL: cfg.DashboardURL,
		})
		if slackService == nil {
			slog.Warn("Slack notifications enabled but token or channel missing")
		} else {
			slog.Info("Slack notifications enabled", "channel", cfg.Slack.Channel)
		}
	}

	// 9. Start worker pool (before HTTP server, so a queued backlog drains
	// even if the listener socket fails)
	tracker := session.NewCancellationTracker()
	executor := queue.NewChainExecutor(cfg, dbClient.Client, llmClient, eventPublisher, mcpFactory, tracker)

	workerPool := queue.NewWorkerPool(podID, dbClient.Client, cfg.Queue, executor, queue.PoolDeps{
		Publisher:   eventPublisher,
		ConnManager: connManager,
		Tracker:     tracker,
		Slack:       slackService,
	})
	if err := workerPool.Start(); err != nil {
		slog.Error("Failed to start worker pool", "error", err)
		os.Exit(1)
	}

	// 10. Background retention sweeps
	cleanupService := cleanup.NewService(cfg.Retention, sessionService, eventService)
	cleanupService.Start(ctx)

	// 11. Create HTTP server
	httpServer := api.NewServer(cfg, dbClient, alertService, sessionService,
		stageService, interactionService, workerPool, connManager)
	if healthMonitor != nil {
		httpServer.SetHealthMonitor(healthMonitor)
	}
	httpServer.SetWarningsService(warningsService)
	httpServer.SetEventPublisher(eventPublisher)

	// 12. Start HTTP server (non-blocking)
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + httpPort
		slog.Info("HTTP server listening", "addr", addr)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	slog.Info("TARSy started successfully",
		"pod_id", podID,
		"workers", cfg.Queue.WorkerCount)

	// 13. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 14. Graceful shutdown: stop accepting HTTP first, then drain workers.
	httpShutdownCtx, httpCancel := context.WithTimeout(ctx, 5*time.Second)
	defer httpCancel()
	if err := httpServer.Shutdown(httpShutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	workerShutdownCtx, workerCancel := context.WithTimeout(ctx, cfg.Queue.GracefulShutdownTimeout)
	defer workerCancel()
	if err := workerPool.Stop(workerShutdownCtx); err != nil {
		slog.Warn("Worker pool shutdown incomplete — orphan recovery will pick up the rest", "error", err)
	} else {
		slog.Info("Worker pool stopped gracefully")
	}

	cleanupService.Stop()

	slog.Info("Shutdown complete")
}
