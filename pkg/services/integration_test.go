package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsoaresd/tarsy-bot-sub007/ent/alertsession"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/stageexecution"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
	testdb "github.com/rsoaresd/tarsy-bot-sub007/test/database"
)

// TestServiceIntegration drives a session through the same sequence of
// service calls a worker performs, checking that the audit trail the
// dashboard reads comes out consistent.
func TestServiceIntegration(t *testing.T) {
	client := testdb.NewTestClient(t)
	ctx := context.Background()

	sessionService := NewSessionService(client.Client)
	stageService := NewStageService(client.Client)
	interactionService := NewInteractionService(client.Client)
	eventService := NewEventService(client.Client)

	t.Run("full session lifecycle", func(t *testing.T) {
		// 1. Submit and claim
		req := newSessionRequest()
		req.AlertData = "Pod crashing in production namespace"
		req.AlertType = "kubernetes"
		req.ChainID = "k8s-analysis"
		req.ChainDefinition = map[string]any{"ID": "k8s-analysis"}
		session, err := sessionService.CreateSession(ctx, req)
		require.NoError(t, err)

		claimed, err := sessionService.ClaimNextPendingSession(ctx, "pod-1")
		require.NoError(t, err)
		require.NotNil(t, claimed)
		require.Equal(t, session.ID, claimed.ID)

		// 2. Open the first stage
		execID := uuid.New().String()
		strategy := "react"
		exec, err := stageService.CreateStageExecution(ctx, models.CreateStageExecutionRequest{
			ExecutionID:       execID,
			SessionID:         session.ID,
			StageID:           "stage-0-analysis",
			StageIndex:        0,
			StageName:         "analysis",
			Agent:             "KubernetesAgent",
			IterationStrategy: &strategy,
		})
		require.NoError(t, err)
		assert.Equal(t, stageexecution.StatusPending, exec.Status)

		err = sessionService.UpdateSessionProgress(ctx, session.ID, 0, "stage-0-analysis")
		require.NoError(t, err)

		started, err := stageService.StartExecution(ctx, execID)
		require.NoError(t, err)
		assert.Equal(t, stageexecution.StatusActive, started.Status)
		assert.NotNil(t, started.StartedAtUs)

		// 3. Record the agent's reasoning transcript
		_, err = interactionService.CreateLLMInteraction(ctx, models.CreateLLMInteractionRequest{
			InteractionID:    uuid.New().String(),
			SessionID:        session.ID,
			StageExecutionID: &execID,
			TimestampUs:      time.Now().UnixMicro(),
			DurationMs:       1200,
			InteractionType:  "investigation",
			ModelName:        "gpt-5",
			Provider:         "openai",
			StepDescription:  "Initial analysis",
			Conversation: []map[string]any{
				{"role": "user", "content": "Analyze the pod crash"},
				{"role": "assistant", "content": "Checking pod status"},
			},
		})
		require.NoError(t, err)

		_, err = interactionService.CreateMCPInteraction(ctx, models.CreateMCPInteractionRequest{
			RequestID:         uuid.New().String(),
			SessionID:         session.ID,
			StageExecutionID:  &execID,
			TimestampUs:       time.Now().UnixMicro(),
			DurationMs:        40,
			CommunicationType: "tool_call",
			ServerName:        "kubernetes-server",
			ToolName:          "get_pods",
			ToolArguments:     map[string]any{"namespace": "production"},
			ToolResult:        map[string]any{"pods": []string{"pod-1", "pod-2"}},
			Success:           true,
		})
		require.NoError(t, err)

		// 4. Close the stage with its structured output
		output, err := models.StageOutput{
			Status:      "completed",
			FinalAnswer: "Pod crashed due to OOM",
		}.ToMap()
		require.NoError(t, err)
		err = stageService.CompleteExecution(ctx, execID, stageexecution.StatusCompleted, output, "")
		require.NoError(t, err)

		// 5. Publish a progress event the way the executor does
		channel := events.SessionChannel(session.ID)
		_, err = eventService.CreateEvent(ctx, channel, map[string]any{
			"type":       string(events.EventTypeStageCompleted),
			"session_id": session.ID,
			"status":     "completed",
		})
		require.NoError(t, err)

		// 6. Terminal status
		err = sessionService.UpdateSessionStatus(ctx, session.ID, alertsession.StatusCompleted, "")
		require.NoError(t, err)

		// 7. The dashboard view: stages, interactions, catchup events
		stages, err := stageService.GetStageExecutions(ctx, session.ID)
		require.NoError(t, err)
		require.Len(t, stages, 1)
		assert.Equal(t, stageexecution.StatusCompleted, stages[0].Status)
		assert.Equal(t, "Pod crashed due to OOM", stages[0].StageOutput["final_answer"])
		assert.NotNil(t, stages[0].DurationMs)

		interactions, err := interactionService.ListForSession(ctx, session.ID)
		require.NoError(t, err)
		require.Len(t, interactions, 2)
		assert.Equal(t, "llm", interactions[0].Type)
		assert.Equal(t, "mcp", interactions[1].Type)

		perExecution, err := interactionService.ListForExecution(ctx, execID)
		require.NoError(t, err)
		assert.Len(t, perExecution, 2)

		catchup, err := eventService.GetCatchupEvents(ctx, channel, 0, 100)
		require.NoError(t, err)
		require.Len(t, catchup, 1)
		assert.Equal(t, string(events.EventTypeStageCompleted), catchup[0].Payload["type"])

		final, err := sessionService.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, alertsession.StatusCompleted, final.Status)
		assert.NotNil(t, final.CompletedAtUs)

		// 8. Event retention after the session ends
		deleted, err := eventService.DeleteEventsForChannel(ctx, channel)
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)
	})

	t.Run("parallel stage aggregation", func(t *testing.T) {
		req := newSessionRequest()
		session, err := sessionService.CreateSession(ctx, req)
		require.NoError(t, err)

		// Parent record plus two branches
		parentID := uuid.New().String()
		zero := 0
		_, err = stageService.CreateStageExecution(ctx, models.CreateStageExecutionRequest{
			ExecutionID:   parentID,
			SessionID:     session.ID,
			StageID:       "stage-0-investigate",
			StageIndex:    0,
			StageName:     "investigate",
			Agent:         "KubernetesAgent, LogAgent",
			ParallelIndex: &zero,
			ParallelType:  "multi_agent",
		})
		require.NoError(t, err)
		_, err = stageService.StartExecution(ctx, parentID)
		require.NoError(t, err)

		branchIDs := make([]string, 2)
		for i, agentName := range []string{"KubernetesAgent", "LogAgent"} {
			branchIDs[i] = uuid.New().String()
			index := i + 1
			_, err = stageService.CreateStageExecution(ctx, models.CreateStageExecutionRequest{
				ExecutionID:            branchIDs[i],
				SessionID:              session.ID,
				StageID:                "stage-0-investigate",
				StageIndex:             0,
				StageName:              "investigate",
				Agent:                  agentName,
				ParentStageExecutionID: &parentID,
				ParallelIndex:          &index,
				ParallelType:           "multi_agent",
			})
			require.NoError(t, err)
			_, err = stageService.StartExecution(ctx, branchIDs[i])
			require.NoError(t, err)
		}

		// One branch succeeds, one fails
		okOutput, err := models.StageOutput{Status: "completed", FinalAnswer: "disk full"}.ToMap()
		require.NoError(t, err)
		err = stageService.CompleteExecution(ctx, branchIDs[0], stageexecution.StatusCompleted, okOutput, "")
		require.NoError(t, err)
		err = stageService.CompleteExecution(ctx, branchIDs[1], stageexecution.StatusFailed, nil, "log store unreachable")
		require.NoError(t, err)

		parent, err := stageService.FinalizeParent(ctx, parentID, SuccessPolicyAny)
		require.NoError(t, err)
		assert.Equal(t, stageexecution.StatusPartial, parent.Status)

		branches, err := stageService.GetBranches(ctx, parentID)
		require.NoError(t, err)
		require.Len(t, branches, 2)
		assert.Equal(t, branchIDs[0], branches[0].ID)
		assert.Equal(t, branchIDs[1], branches[1].ID)
	})
}
