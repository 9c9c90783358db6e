package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/alertsession"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/stageexecution"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	agentctx "github.com/rsoaresd/tarsy-bot-sub007/pkg/agent/context"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent/controller"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent/prompt"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/mcp"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/services"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/session"
)

// ChainExecutor runs a session's chain from its frozen definition snapshot:
// sequential stages, parallel branches with synthesis, and the closing
// executive summary. One instance is shared by all workers; per-session
// state lives in the DB records it writes.
type ChainExecutor struct {
	cfg           *config.Config
	client        *ent.Client
	llmClient     agent.LLMClient
	publisher     agent.EventPublisher
	mcpFactory    *mcp.ClientFactory
	tracker       *session.CancellationTracker
	agentFactory  *agent.AgentFactory
	promptBuilder agent.PromptBuilder
	sessions      *services.SessionService
	stages        *services.StageService
	interactions  *services.InteractionService
	logger        *slog.Logger
}

// NewChainExecutor creates the executor with its full dependency set.
// A nil tracker gets a private one, which classifies every external
// cancellation as a timeout.
func NewChainExecutor(
	cfg *config.Config,
	client *ent.Client,
	llmClient agent.LLMClient,
	publisher agent.EventPublisher,
	mcpFactory *mcp.ClientFactory,
	tracker *session.CancellationTracker,
) *ChainExecutor {
	if tracker == nil {
		tracker = session.NewCancellationTracker()
	}
	return &ChainExecutor{
		cfg:           cfg,
		client:        client,
		llmClient:     llmClient,
		publisher:     publisher,
		mcpFactory:    mcpFactory,
		tracker:       tracker,
		agentFactory:  agent.NewAgentFactory(controller.NewFactory()),
		promptBuilder: prompt.NewPromptBuilder(cfg.MCPServerRegistry),
		sessions:      services.NewSessionService(client),
		stages:        services.NewStageService(client),
		interactions:  services.NewInteractionService(client),
		logger:        slog.Default().With("component", "chain_executor"),
	}
}

// Execute runs the chain for a claimed session and returns the outcome the
// worker writes as session status. The chain definition comes from the
// session snapshot, never the live registry, so config reloads cannot
// change a running session.
func (e *ChainExecutor) Execute(ctx context.Context, sess *ent.AlertSession) *ExecutionResult {
	log := e.logger.With("session_id", sess.ID, "chain_id", sess.ChainID)

	chain, err := chainFromSnapshot(sess.ChainDefinition)
	if err != nil {
		return &ExecutionResult{
			Status:       alertsession.StatusFailed,
			ErrorMessage: fmt.Sprintf("invalid chain definition: %v", err),
		}
	}

	selection, err := models.ParseMCPSelectionConfig(sess.McpSelection)
	if err != nil {
		// Selection was validated at submit; corruption here means a bad
		// manual edit. Fall back to chain-configured servers.
		log.Warn("Ignoring invalid MCP selection on session", "error", err)
		selection = nil
	}

	pauseMeta, err := models.ParsePauseMetadata(sess.PauseMetadata)
	if err != nil {
		log.Warn("Pause metadata is corrupted, running chain from scratch", "error", err)
		pauseMeta = nil
	}

	// A resumed session reuses its existing stage execution records:
	// completed stages are skipped, paused branches rehydrate their
	// conversations, finished branches keep their results.
	var prior map[int][]*ent.StageExecution
	if len(pauseMeta) > 0 {
		records, err := e.stages.GetStageExecutions(ctx, sess.ID)
		if err != nil {
			return &ExecutionResult{
				Status:       alertsession.StatusFailed,
				ErrorMessage: fmt.Sprintf("failed to load stage executions for resume: %v", err),
			}
		}
		prior = groupByStageIndex(records)
	}

	var completed []agentctx.StageResult
	finalAnalysis := ""

	for i := range chain.Stages {
		stageCfg := chain.Stages[i]
		stageID := stageIdentifier(i, stageCfg.Name)

		if root := rootExecution(prior[i]); root != nil && stageSucceeded(root.Status) {
			out, err := models.ParseStageOutput(root.StageOutput)
			if err != nil {
				log.Warn("Failed to parse prior stage output", "stage_id", stageID, "error", err)
			}
			completed = append(completed, agentctx.StageResult{
				StageName:     stageCfg.Name,
				FinalAnalysis: out.FinalAnswer,
			})
			finalAnalysis = out.FinalAnswer
			continue
		}

		if err := e.sessions.UpdateSessionProgress(ctx, sess.ID, i, stageID); err != nil {
			log.Warn("Failed to update session progress", "stage_id", stageID, "error", err)
		}

		log.Info("Running stage",
			"stage_id", stageID,
			"stage_index", i,
			"stage_name", stageCfg.Name,
			"parallel", stageCfg.IsParallel())

		res := e.runStage(ctx, sess, chain, i, stageID, agentctx.BuildStageContext(completed), selection, pauseMeta, prior[i])

		if res.status == stageexecution.StatusPaused {
			if err := e.sessions.SetPauseMetadata(ctx, sess.ID, res.pauses); err != nil {
				// Without the snapshot a resume would restart the stage
				// blind; fail instead of leaving a dead-end pause.
				log.Error("Failed to persist pause metadata", "stage_id", stageID, "error", err)
				return &ExecutionResult{
					Status:       alertsession.StatusFailed,
					ErrorMessage: fmt.Sprintf("failed to persist pause state: %v", err),
				}
			}
			log.Info("Session paused at stage", "stage_id", stageID, "paused_executions", len(res.pauses))
			return &ExecutionResult{Status: alertsession.StatusPaused}
		}

		if !stageSucceeded(res.status) {
			status := sessionStatusFromStage(res.status)
			errMsg := e.stageFailureMessage(stageCfg.Name, res)
			log.Warn("Stage ended the session",
				"stage_id", stageID, "stage_status", res.status, "session_status", status)
			return &ExecutionResult{Status: status, ErrorMessage: errMsg}
		}

		// The pause snapshot is consumed once its stage finishes.
		if len(pauseMeta) > 0 {
			if err := e.sessions.ClearPauseMetadata(ctx, sess.ID); err != nil {
				log.Warn("Failed to clear pause metadata", "error", err)
			}
			pauseMeta = nil
		}

		completed = append(completed, agentctx.StageResult{
			StageName:     stageCfg.Name,
			FinalAnalysis: res.finalAnalysis,
		})
		finalAnalysis = res.finalAnalysis
	}

	summary, sumErr := e.generateExecutiveSummary(ctx, sess, chain, finalAnalysis)
	if sumErr != nil {
		// Fail-open: the investigation succeeded, only the summary is missing.
		log.Warn("Executive summary generation failed", "error", sumErr)
	}
	e.writeFinalAnalysis(sess.ID, finalAnalysis, summary, sumErr)

	return &ExecutionResult{
		Status:           alertsession.StatusCompleted,
		FinalAnalysis:    finalAnalysis,
		ExecutiveSummary: summary,
	}
}

// stageFailureMessage composes the session error message for a stage that
// ended the chain.
func (e *ChainExecutor) stageFailureMessage(stageName string, res stageOutcome) string {
	switch res.status {
	case stageexecution.StatusCancelled:
		return "Session cancelled by user"
	case stageexecution.StatusTimedOut:
		return fmt.Sprintf("Session timed out during stage '%s'", stageName)
	}
	if res.errorMessage != "" {
		return fmt.Sprintf("Stage '%s' failed: %s", stageName, res.errorMessage)
	}
	return fmt.Sprintf("Stage '%s' failed", stageName)
}

// writeFinalAnalysis persists the chain conclusion on the session. The
// session may already be past its deadline, so the write runs on its own
// context.
func (e *ChainExecutor) writeFinalAnalysis(sessionID, finalAnalysis, summary string, sumErr error) {
	writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := e.client.AlertSession.UpdateOneID(sessionID)
	if finalAnalysis != "" {
		update.SetFinalAnalysis(finalAnalysis)
	}
	if summary != "" {
		update.SetFinalAnalysisSummary(summary)
	}
	if sumErr != nil {
		update.SetExecutiveSummaryError(sumErr.Error())
	}
	if err := update.Exec(writeCtx); err != nil {
		e.logger.Error("Failed to write final analysis",
			"session_id", sessionID, "error", err)
	}
}

// publishStageStatus fills the timestamp and publishes, logging instead of
// failing: a lost live event never aborts an investigation.
func (e *ChainExecutor) publishStageStatus(ctx context.Context, sessionID string, payload events.StageStatusPayload) {
	payload.Timestamp = events.EventTimestamp()
	if err := e.publisher.PublishStageStatus(ctx, sessionID, payload); err != nil {
		e.logger.Warn("Failed to publish stage status event",
			"session_id", sessionID, "event_type", payload.Type, "error", err)
	}
}

// terminalCtx returns a context for record writes that must survive session
// cancellation or timeout.
func terminalCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), terminalWriteTimeout)
}
