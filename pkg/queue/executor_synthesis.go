package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/stageexecution"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	agentctx "github.com/rsoaresd/tarsy-bot-sub007/pkg/agent/context"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
)

// executiveSummaryMaxTokens caps the closing summary. It is a few
// sentences for Slack and dashboard cards, not an analysis.
const executiveSummaryMaxTokens = 150

// runSynthesisStage merges the parallel branches' investigations into the
// stage's conclusion. The synthesis record sits at the same stage index as
// the parent but carries no parallel index, making it the stage's root
// record, which is what resume and downstream context look for.
func (e *ChainExecutor) runSynthesisStage(
	ctx context.Context,
	sess *ent.AlertSession,
	chain *config.ChainConfig,
	stageIndex int,
	stageID string,
	branches []branchOutcome,
	pauseMeta models.PauseMetadata,
	prior []*ent.StageExecution,
) stageOutcome {
	stageCfg := chain.Stages[stageIndex]

	resolved, err := agent.ResolveSynthesisConfig(e.cfg, chain, stageCfg)
	if err != nil {
		return failedStage("failed to resolve synthesis configuration: %v", err)
	}

	spec := branchSpec{
		displayName: resolved.AgentName,
		resolved:    resolved,
	}
	if root := rootExecution(prior); root != nil {
		spec.executionID = root.ID
		spec.exists = true
		if st, ok := pauseMeta[root.ID]; ok {
			spec.resume = &st
		}
	} else {
		spec.executionID = uuid.New().String()
	}

	if !spec.exists {
		_, err := e.stages.CreateStageExecution(ctx, models.CreateStageExecutionRequest{
			ExecutionID:       spec.executionID,
			SessionID:         sess.ID,
			StageID:           stageID,
			StageIndex:        stageIndex,
			StageName:         stageCfg.Name,
			Agent:             resolved.AgentName,
			IterationStrategy: strPtr(string(resolved.IterationStrategy)),
			ParallelType:      "single",
		})
		if err != nil {
			return failedStage("failed to create synthesis record: %v", err)
		}
	}

	e.publishStageStatus(ctx, sess.ID, events.StageStatusPayload{
		Type:        events.EventTypeStageStarted,
		SessionID:   sess.ID,
		ExecutionID: spec.executionID,
		StageID:     stageID,
		StageName:   stageCfg.Name,
		StageIndex:  stageIndex,
		AgentName:   resolved.AgentName,
		Status:      "active",
	})

	out := e.runBranch(ctx, branchRun{
		sess:             sess,
		stageID:          stageID,
		stageIndex:       stageIndex,
		spec:             spec,
		prevStageContext: e.buildSynthesisContext(ctx, branches),
		synthesis:        true,
	})
	out = e.finishBranch(sess.ID, stageID, stageCfg.Name, stageIndex, out)

	if out.status == stageexecution.StatusPaused {
		return stageOutcome{
			status: stageexecution.StatusPaused,
			pauses: models.PauseMetadata{out.executionID: *out.pause},
		}
	}
	return stageOutcome{
		status:        out.status,
		finalAnalysis: out.finalAnswer,
		errorMessage:  out.errorMessage,
	}
}

// buildSynthesisContext loads each branch's recorded interactions and
// formats the combined investigation history for the synthesis prompt.
// Failed branches are included: a partial parallel stage still synthesizes
// whatever its branches uncovered.
func (e *ChainExecutor) buildSynthesisContext(ctx context.Context, branches []branchOutcome) string {
	investigations := make([]agentctx.BranchInvestigation, 0, len(branches))
	for _, br := range branches {
		items, err := e.interactions.ListForExecution(ctx, br.executionID)
		if err != nil {
			e.logger.Warn("Failed to load branch interactions for synthesis",
				"execution_id", br.executionID, "error", err)
			continue
		}
		investigations = append(investigations, agentctx.BranchInvestigation{
			AgentName:   br.agentName,
			ExecutionID: br.executionID,
			Items:       items,
		})
	}
	return agentctx.FormatInvestigationContext(investigations)
}

// generateExecutiveSummary produces the short closing summary from the final
// analysis. Failures are recorded and reported to the caller but never fail
// the session; the analysis itself is already safe.
func (e *ChainExecutor) generateExecutiveSummary(
	ctx context.Context,
	sess *ent.AlertSession,
	chain *config.ChainConfig,
	finalAnalysis string,
) (string, error) {
	if finalAnalysis == "" {
		return "", nil
	}

	providerName := chain.ExecutiveSummaryProvider
	if providerName == "" {
		providerName = chain.LLMProvider
	}
	if providerName == "" {
		providerName = e.cfg.Defaults.LLMProvider
	}
	provider, err := e.cfg.GetLLMProvider(providerName)
	if err != nil {
		return "", fmt.Errorf("executive summary provider %q not found: %w", providerName, err)
	}

	messages := []agent.ConversationMessage{
		{Role: agent.RoleSystem, Content: e.promptBuilder.BuildExecutiveSummarySystemPrompt()},
		{Role: agent.RoleUser, Content: e.promptBuilder.BuildExecutiveSummaryUserPrompt(finalAnalysis)},
	}

	start := time.Now()
	summary, genErr := e.callForSummary(ctx, sess.ID, providerName, provider, messages)
	e.recordSummaryInteraction(sess.ID, providerName, provider.Model, messages, summary, time.Since(start), genErr)

	if genErr != nil {
		return "", genErr
	}
	return summary, nil
}

// callForSummary makes the summary LLM call and drains the stream. Tool and
// thinking chunks are ignored; only text matters here.
func (e *ChainExecutor) callForSummary(
	ctx context.Context,
	sessionID string,
	providerName string,
	provider *config.LLMProviderConfig,
	messages []agent.ConversationMessage,
) (string, error) {
	ch, err := e.llmClient.Generate(ctx, &agent.GenerateInput{
		SessionID: sessionID,
		Messages:  messages,
		Provider:  providerName,
		Config:    provider,
		MaxTokens: executiveSummaryMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("executive summary call failed: %w", err)
	}

	var text strings.Builder
	var genErr error
	for chunk := range ch {
		switch c := chunk.(type) {
		case *agent.TextChunk:
			text.WriteString(c.Content)
		case *agent.ErrorChunk:
			genErr = fmt.Errorf("executive summary stream error: %s", c.Message)
		}
	}
	if genErr != nil {
		return "", genErr
	}

	summary := strings.TrimSpace(text.String())
	if summary == "" {
		return "", fmt.Errorf("executive summary response was empty")
	}
	return summary, nil
}

// recordSummaryInteraction writes the summary call to the audit trail. The
// record hangs off the session, not a stage execution.
func (e *ChainExecutor) recordSummaryInteraction(
	sessionID string,
	providerName string,
	modelName string,
	messages []agent.ConversationMessage,
	summary string,
	duration time.Duration,
	genErr error,
) {
	conversation := make([]map[string]any, 0, len(messages)+1)
	for _, m := range messages {
		conversation = append(conversation, map[string]any{
			"role":    m.Role,
			"content": m.Content,
		})
	}
	if summary != "" {
		conversation = append(conversation, map[string]any{
			"role":    agent.RoleAssistant,
			"content": summary,
		})
	}

	req := models.CreateLLMInteractionRequest{
		SessionID:       sessionID,
		DurationMs:      duration.Milliseconds(),
		InteractionType: "final_analysis_summary",
		ModelName:       modelName,
		Provider:        providerName,
		StepDescription: "Executive summary of final analysis",
		Conversation:    conversation,
	}
	if genErr != nil {
		req.ErrorMessage = genErr.Error()
	}

	rec, err := e.interactions.CreateLLMInteraction(context.Background(), req)
	if err != nil {
		e.logger.Warn("Failed to record executive summary interaction",
			"session_id", sessionID, "error", err)
		return
	}

	payload := events.LLMInteractionPayload{
		Type:            events.EventTypeLLMInteraction,
		SessionID:       sessionID,
		InteractionID:   rec.ID,
		InteractionType: "final_analysis_summary",
		StepDescription: req.StepDescription,
		ModelName:       modelName,
		Success:         genErr == nil,
		Timestamp:       events.EventTimestamp(),
	}
	if genErr != nil {
		payload.ErrorMessage = genErr.Error()
	}
	pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.publisher.PublishLLMInteraction(pubCtx, sessionID, payload); err != nil {
		e.logger.Warn("Failed to publish executive summary event",
			"session_id", sessionID, "error", err)
	}
}
