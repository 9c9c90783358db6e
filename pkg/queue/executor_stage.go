package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/stageexecution"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
)

// stageOutcome is the result of one chain stage. For parallel stages it
// reflects the synthesis conclusion, not the raw branch aggregate.
type stageOutcome struct {
	status        stageexecution.Status
	finalAnalysis string
	errorMessage  string

	// pauses holds the resume snapshots, keyed by execution ID, when
	// status is paused.
	pauses models.PauseMetadata
}

func failedStage(format string, args ...any) stageOutcome {
	return stageOutcome{
		status:       stageexecution.StatusFailed,
		errorMessage: fmt.Sprintf(format, args...),
	}
}

// branchSpec describes one agent execution to run (or reuse) within a stage.
type branchSpec struct {
	executionID string
	agentCfg    config.StageAgentConfig
	displayName string // replica branches get "{Agent}-{i}"
	index       int    // 1-based for parallel branches, 0 otherwise
	resolved    *agent.ResolvedAgentConfig
	resume      *models.PausedExecutionState

	// Prior record state on resume. exists means the record is reused
	// instead of created.
	exists      bool
	priorStatus stageexecution.Status
	priorOutput map[string]any
}

// branchOutcome is the result of one agent execution within a stage.
type branchOutcome struct {
	index        int
	executionID  string
	agentName    string
	status       stageexecution.Status
	finalAnswer  string
	errorMessage string
	pause        *models.PausedExecutionState
}

func (e *ChainExecutor) runStage(
	ctx context.Context,
	sess *ent.AlertSession,
	chain *config.ChainConfig,
	stageIndex int,
	stageID string,
	prevContext string,
	selection *models.MCPSelectionConfig,
	pauseMeta models.PauseMetadata,
	prior []*ent.StageExecution,
) stageOutcome {
	stageCfg := chain.Stages[stageIndex]
	if stageCfg.IsParallel() {
		return e.runParallelStage(ctx, sess, chain, stageIndex, stageID, prevContext, selection, pauseMeta, prior)
	}
	return e.runSingleStage(ctx, sess, chain, stageIndex, stageID, prevContext, selection, pauseMeta, prior)
}

func (e *ChainExecutor) runSingleStage(
	ctx context.Context,
	sess *ent.AlertSession,
	chain *config.ChainConfig,
	stageIndex int,
	stageID string,
	prevContext string,
	selection *models.MCPSelectionConfig,
	pauseMeta models.PauseMetadata,
	prior []*ent.StageExecution,
) stageOutcome {
	stageCfg := chain.Stages[stageIndex]
	agentCfg := stageCfg.Agents[0]

	resolved, err := agent.ResolveAgentConfig(e.cfg, chain, stageCfg, agentCfg)
	if err != nil {
		return failedStage("failed to resolve agent configuration: %v", err)
	}
	if selection != nil {
		resolved.ApplyAlertNativeTools(selection.NativeTools)
	}

	spec := branchSpec{
		agentCfg:    agentCfg,
		displayName: agentCfg.Name,
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
			Agent:             agentCfg.Name,
			IterationStrategy: strPtr(string(resolved.IterationStrategy)),
			ParallelType:      "single",
		})
		if err != nil {
			return failedStage("failed to create stage execution record: %v", err)
		}
	}

	e.publishStageStatus(ctx, sess.ID, events.StageStatusPayload{
		Type:        events.EventTypeStageStarted,
		SessionID:   sess.ID,
		ExecutionID: spec.executionID,
		StageID:     stageID,
		StageName:   stageCfg.Name,
		StageIndex:  stageIndex,
		AgentName:   agentCfg.Name,
		Status:      "active",
	})

	out := e.runBranch(ctx, branchRun{
		sess:             sess,
		stageID:          stageID,
		stageIndex:       stageIndex,
		spec:             spec,
		prevStageContext: prevContext,
		selection:        selection,
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

func (e *ChainExecutor) runParallelStage(
	ctx context.Context,
	sess *ent.AlertSession,
	chain *config.ChainConfig,
	stageIndex int,
	stageID string,
	prevContext string,
	selection *models.MCPSelectionConfig,
	pauseMeta models.PauseMetadata,
	prior []*ent.StageExecution,
) stageOutcome {
	stageCfg := chain.Stages[stageIndex]

	specs, parallelType, err := e.buildBranchSpecs(chain, stageCfg, selection, pauseMeta, prior)
	if err != nil {
		return failedStage("%v", err)
	}

	parentID := ""
	parentExists := false
	if parent := parentExecution(prior); parent != nil {
		parentID = parent.ID
		parentExists = true
	} else {
		parentID = uuid.New().String()
	}

	if !parentExists {
		_, err := e.stages.CreateStageExecution(ctx, models.CreateStageExecutionRequest{
			ExecutionID:   parentID,
			SessionID:     sess.ID,
			StageID:       stageID,
			StageIndex:    stageIndex,
			StageName:     stageCfg.Name,
			Agent:         parentAgentLabel(stageCfg, len(specs)),
			ParallelIndex: intPtr(0),
			ParallelType:  parallelType,
		})
		if err != nil {
			return failedStage("failed to create parallel parent record: %v", err)
		}
	}
	if _, err := e.stages.StartExecution(ctx, parentID); err != nil {
		return failedStage("failed to start parallel parent: %v", err)
	}

	e.publishStageStatus(ctx, sess.ID, events.StageStatusPayload{
		Type:        events.EventTypeStageStarted,
		SessionID:   sess.ID,
		ExecutionID: parentID,
		StageID:     stageID,
		StageName:   stageCfg.Name,
		StageIndex:  stageIndex,
		AgentName:   parentAgentLabel(stageCfg, len(specs)),
		Status:      "active",
	})

	results := make([]branchOutcome, len(specs))
	var wg sync.WaitGroup

	for bi := range specs {
		spec := specs[bi]

		// Resume: finished branches keep their recorded results.
		if spec.exists && isTerminalStageStatus(spec.priorStatus) {
			results[bi] = e.outcomeFromPrior(spec)
			continue
		}

		if !spec.exists {
			_, err := e.stages.CreateStageExecution(ctx, models.CreateStageExecutionRequest{
				ExecutionID:            spec.executionID,
				SessionID:              sess.ID,
				StageID:                stageID,
				StageIndex:             stageIndex,
				StageName:              stageCfg.Name,
				Agent:                  spec.displayName,
				IterationStrategy:      strPtr(string(spec.resolved.IterationStrategy)),
				ParentStageExecutionID: strPtr(parentID),
				ParallelIndex:          intPtr(spec.index),
				ParallelType:           parallelType,
			})
			if err != nil {
				results[bi] = branchOutcome{
					index:        spec.index,
					executionID:  spec.executionID,
					agentName:    spec.displayName,
					status:       stageexecution.StatusFailed,
					errorMessage: fmt.Sprintf("failed to create branch record: %v", err),
				}
				continue
			}
		}

		e.publishStageStatus(ctx, sess.ID, events.StageStatusPayload{
			Type:          events.EventTypeStageStarted,
			SessionID:     sess.ID,
			ExecutionID:   spec.executionID,
			StageID:       stageID,
			StageName:     stageCfg.Name,
			StageIndex:    stageIndex,
			ParallelIndex: intPtr(spec.index),
			AgentName:     spec.displayName,
			Status:        "active",
		})

		wg.Add(1)
		go func(bi int, spec branchSpec) {
			defer wg.Done()
			out := e.runBranch(ctx, branchRun{
				sess:              sess,
				stageID:           stageID,
				stageIndex:        stageIndex,
				spec:              spec,
				prevStageContext:  prevContext,
				selection:         selection,
				parentExecutionID: parentID,
			})
			results[bi] = e.finishBranch(sess.ID, stageID, stageCfg.Name, stageIndex, out)
		}(bi, spec)
	}
	wg.Wait()

	wctx, cancel := terminalCtx()
	defer cancel()

	// Pause dominates: any paused branch pauses the whole session so the
	// operator resumes all branches together.
	pauses := models.PauseMetadata{}
	for _, out := range results {
		if out.status == stageexecution.StatusPaused && out.pause != nil {
			pauses[out.executionID] = *out.pause
		}
	}
	if len(pauses) > 0 {
		if err := e.stages.PauseExecution(wctx, parentID, 0); err != nil {
			return failedStage("failed to pause parallel parent: %v", err)
		}
		e.publishStageStatus(wctx, sess.ID, events.StageStatusPayload{
			Type:        events.EventTypeStageCompleted,
			SessionID:   sess.ID,
			ExecutionID: parentID,
			StageID:     stageID,
			StageName:   stageCfg.Name,
			StageIndex:  stageIndex,
			Status:      string(stageexecution.StatusPaused),
		})
		return stageOutcome{status: stageexecution.StatusPaused, pauses: pauses}
	}

	policy := stageCfg.SuccessPolicy
	if policy == "" {
		policy = e.cfg.Defaults.SuccessPolicy
	}
	parent, err := e.stages.FinalizeParent(wctx, parentID, successPolicyString(policy))
	if err != nil {
		return failedStage("failed to finalize parallel stage: %v", err)
	}

	parentErr := ""
	if parent.ErrorMessage != nil {
		parentErr = *parent.ErrorMessage
	}
	e.publishStageStatus(wctx, sess.ID, events.StageStatusPayload{
		Type:         events.EventTypeStageCompleted,
		SessionID:    sess.ID,
		ExecutionID:  parentID,
		StageID:      stageID,
		StageName:    stageCfg.Name,
		StageIndex:   stageIndex,
		Status:       string(parent.Status),
		ErrorMessage: parentErr,
	})

	if !stageSucceeded(parent.Status) {
		return stageOutcome{status: parent.Status, errorMessage: parentErr}
	}

	return e.runSynthesisStage(ctx, sess, chain, stageIndex, stageID, results, pauseMeta, prior)
}

// buildBranchSpecs expands the stage's agent entries (or replica count) into
// branch specs with resolved configs and any reusable prior records.
func (e *ChainExecutor) buildBranchSpecs(
	chain *config.ChainConfig,
	stageCfg config.StageConfig,
	selection *models.MCPSelectionConfig,
	pauseMeta models.PauseMetadata,
	prior []*ent.StageExecution,
) ([]branchSpec, string, error) {
	var entries []config.StageAgentConfig
	parallelType := "multi_agent"
	if len(stageCfg.Agents) > 1 {
		entries = stageCfg.Agents
	} else {
		parallelType = "replica"
		for i := 0; i < stageCfg.Replicas; i++ {
			entries = append(entries, stageCfg.Agents[0])
		}
	}

	specs := make([]branchSpec, 0, len(entries))
	for i, agentCfg := range entries {
		resolved, err := agent.ResolveAgentConfig(e.cfg, chain, stageCfg, agentCfg)
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve configuration for agent %q: %w", agentCfg.Name, err)
		}
		if selection != nil {
			resolved.ApplyAlertNativeTools(selection.NativeTools)
		}

		display := agentCfg.Name
		if parallelType == "replica" {
			display = fmt.Sprintf("%s-%d", agentCfg.Name, i+1)
		}

		spec := branchSpec{
			agentCfg:    agentCfg,
			displayName: display,
			index:       i + 1,
			resolved:    resolved,
		}
		if rec := branchExecution(prior, i+1); rec != nil {
			spec.executionID = rec.ID
			spec.exists = true
			spec.priorStatus = rec.Status
			spec.priorOutput = rec.StageOutput
			if st, ok := pauseMeta[rec.ID]; ok {
				spec.resume = &st
			}
		} else {
			spec.executionID = uuid.New().String()
		}
		specs = append(specs, spec)
	}
	return specs, parallelType, nil
}

// outcomeFromPrior converts a finished branch's stored record into an
// outcome without re-running the agent.
func (e *ChainExecutor) outcomeFromPrior(spec branchSpec) branchOutcome {
	out, err := models.ParseStageOutput(spec.priorOutput)
	if err != nil {
		e.logger.Warn("Failed to parse prior branch output",
			"execution_id", spec.executionID, "error", err)
	}
	return branchOutcome{
		index:        spec.index,
		executionID:  spec.executionID,
		agentName:    spec.displayName,
		status:       spec.priorStatus,
		finalAnswer:  out.FinalAnswer,
		errorMessage: out.ErrorMessage,
	}
}

// parentAgentLabel names the parent record for dashboards.
func parentAgentLabel(stageCfg config.StageConfig, branches int) string {
	if len(stageCfg.Agents) > 1 {
		names := make([]string, 0, len(stageCfg.Agents))
		for _, ag := range stageCfg.Agents {
			names = append(names, ag.Name)
		}
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s x%d", stageCfg.Agents[0].Name, branches)
}

// branchRun bundles the inputs for one agent execution.
type branchRun struct {
	sess              *ent.AlertSession
	stageID           string
	stageIndex        int
	spec              branchSpec
	prevStageContext  string
	selection         *models.MCPSelectionConfig
	parentExecutionID string

	// synthesis runs tool-less on the investigation transcripts.
	synthesis bool
}

// runBranch executes one agent and classifies the outcome. The terminal
// record write happens in finishBranch, not here.
func (e *ChainExecutor) runBranch(ctx context.Context, run branchRun) branchOutcome {
	out := branchOutcome{
		index:       run.spec.index,
		executionID: run.spec.executionID,
		agentName:   run.spec.displayName,
	}
	resolved := run.spec.resolved

	var toolExec agent.ToolExecutor
	var failedServers map[string]string
	if !run.synthesis {
		serverIDs, toolFilter := resolveMCPSelection(resolved.MCPServers, run.selection)
		executor, client, err := e.mcpFactory.CreateToolExecutor(ctx, serverIDs, toolFilter)
		if err != nil {
			out.status = stageexecution.StatusFailed
			out.errorMessage = fmt.Sprintf("failed to initialize MCP tools: %v", err)
			return out
		}
		defer func() {
			if err := executor.Close(); err != nil {
				e.logger.Warn("Failed to close MCP tool executor",
					"execution_id", run.spec.executionID, "error", err)
			}
		}()
		toolExec = executor
		failedServers = client.FailedServers()
		if len(failedServers) > 0 {
			e.logger.Warn("Running with partially initialized MCP servers",
				"session_id", run.sess.ID,
				"execution_id", run.spec.executionID,
				"failed_servers", len(failedServers))
		}
	}

	runbook := ""
	if run.sess.RunbookURL != nil {
		runbook = *run.sess.RunbookURL
	}

	execCtx := &agent.ExecutionContext{
		SessionID:         run.sess.ID,
		StageID:           run.stageID,
		ExecutionID:       run.spec.executionID,
		AgentName:         run.spec.displayName,
		StageIndex:        run.stageIndex,
		ParallelIndex:     run.spec.index,
		ParentExecutionID: run.parentExecutionID,
		AlertData:         run.sess.AlertData,
		AlertType:         run.sess.AlertType,
		RunbookContent:    runbook,
		Config:            resolved,
		LLMClient:         e.llmClient,
		ToolExecutor:      toolExec,
		EventPublisher:    e.publisher,
		Services:          &agent.ServiceBundle{Interaction: e.interactions, Stage: e.stages},
		PromptBuilder:     e.promptBuilder,
		ResumeState:       run.spec.resume,
		FailedServers:     failedServers,
	}

	ag, err := e.agentFactory.CreateAgent(execCtx)
	if err != nil {
		out.status = stageexecution.StatusFailed
		out.errorMessage = fmt.Sprintf("failed to create agent: %v", err)
		return out
	}

	result, err := ag.Execute(ctx, execCtx, run.prevStageContext)
	if err != nil {
		out.status = stageexecution.StatusFailed
		out.errorMessage = err.Error()
		return out
	}

	status := stageStatusFromAgent(result.Status)
	// Cancelled is provisional: only a tracked user cancel keeps it.
	// Everything else that killed the context was the session deadline.
	if status == stageexecution.StatusCancelled && !e.tracker.IsCancelled(run.sess.ID) {
		status = stageexecution.StatusTimedOut
	}
	out.status = status
	out.finalAnswer = result.FinalAnalysis
	if result.Error != nil {
		out.errorMessage = result.Error.Error()
	}

	if status == stageexecution.StatusPaused {
		out.pause = result.PauseState
		if out.pause == nil {
			// No snapshot means the resume starts the conversation over.
			out.pause = &models.PausedExecutionState{
				ExecutionID: run.spec.executionID,
				StageID:     run.stageID,
				StageIndex:  run.stageIndex,
				Reason:      models.PauseReasonMaxIterations,
			}
		}
	}
	return out
}

// finishBranch writes the branch's terminal or paused record and publishes
// the stage event. Runs on a fresh context so cancelled sessions still get
// their records written.
func (e *ChainExecutor) finishBranch(sessionID, stageID, stageName string, stageIndex int, out branchOutcome) branchOutcome {
	wctx, cancel := terminalCtx()
	defer cancel()

	var parallelIndex *int
	if out.index > 0 {
		parallelIndex = intPtr(out.index)
	}

	if out.status == stageexecution.StatusPaused {
		iteration := 0
		if out.pause != nil {
			iteration = out.pause.CurrentIteration
		}
		if err := e.stages.PauseExecution(wctx, out.executionID, iteration); err != nil {
			e.logger.Error("Failed to write pause record",
				"execution_id", out.executionID, "error", err)
			out.status = stageexecution.StatusFailed
			out.errorMessage = fmt.Sprintf("failed to write pause record: %v", err)
			out.pause = nil
			return out
		}
	} else {
		output, err := models.StageOutput{
			Status:       string(out.status),
			FinalAnswer:  out.finalAnswer,
			ErrorMessage: out.errorMessage,
		}.ToMap()
		if err != nil {
			e.logger.Warn("Failed to encode stage output",
				"execution_id", out.executionID, "error", err)
		}
		if err := e.stages.CompleteExecution(wctx, out.executionID, out.status, output, out.errorMessage); err != nil {
			e.logger.Error("Failed to write stage execution result",
				"execution_id", out.executionID, "error", err)
			out.status = stageexecution.StatusFailed
			out.errorMessage = fmt.Sprintf("failed to write execution result: %v", err)
		}
	}

	e.publishStageStatus(wctx, sessionID, events.StageStatusPayload{
		Type:          events.EventTypeStageCompleted,
		SessionID:     sessionID,
		ExecutionID:   out.executionID,
		StageID:       stageID,
		StageName:     stageName,
		StageIndex:    stageIndex,
		ParallelIndex: parallelIndex,
		AgentName:     out.agentName,
		Status:        string(out.status),
		ErrorMessage:  out.errorMessage,
	})
	return out
}
