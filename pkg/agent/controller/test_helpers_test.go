package controller

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/alertsession"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/stageexecution"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent/prompt"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/services"
	"github.com/rsoaresd/tarsy-bot-sub007/test/util"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
)

type mockLLMResponse struct {
	chunks []agent.Chunk
	err    error
}

// mockLLMClient is a test mock for agent.LLMClient.
// NOTE: Not safe for concurrent use. callCount and lastInput are mutated
// without synchronization. This is fine as long as controllers call Generate
// sequentially (which they currently do).
type mockLLMClient struct {
	responses []mockLLMResponse
	callCount int
	lastInput *agent.GenerateInput

	// capture enables recording all inputs across calls (not just the last one).
	capture        bool
	capturedInputs []*agent.GenerateInput

	// onGenerate is called before processing the response, allowing tests to
	// perform side-effects (e.g. cancel a context) at call time.
	onGenerate func(callIndex int)
}

func (m *mockLLMClient) Generate(_ context.Context, input *agent.GenerateInput) (<-chan agent.Chunk, error) {
	idx := m.callCount
	m.callCount++
	m.lastInput = input
	if m.capture {
		m.capturedInputs = append(m.capturedInputs, input)
	}
	if m.onGenerate != nil {
		m.onGenerate(idx)
	}

	if idx >= len(m.responses) {
		return nil, fmt.Errorf("no more mock responses (call %d)", idx+1)
	}

	r := m.responses[idx]
	if r.err != nil {
		return nil, r.err
	}

	ch := make(chan agent.Chunk, len(r.chunks))
	for _, c := range r.chunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func (m *mockLLMClient) Close() error { return nil }

// mockToolExecutor is a test mock for agent.ToolExecutor.
type mockToolExecutor struct {
	tools   []agent.ToolDefinition
	results map[string]*agent.ToolResult
}

func (m *mockToolExecutor) Execute(_ context.Context, call agent.ToolCall) (*agent.ToolResult, error) {
	result, ok := m.results[call.Name]
	if !ok {
		return nil, fmt.Errorf("unexpected tool call: %s", call.Name)
	}
	return &agent.ToolResult{
		CallID:  call.ID,
		Name:    call.Name,
		Content: result.Content,
		IsError: result.IsError,
	}, nil
}

func (m *mockToolExecutor) ListTools(_ context.Context) ([]agent.ToolDefinition, error) {
	return m.tools, nil
}

func (m *mockToolExecutor) Close() error { return nil }

// mockToolExecutorFunc is a flexible test mock that allows custom execute functions.
type mockToolExecutorFunc struct {
	tools     []agent.ToolDefinition
	executeFn func(ctx context.Context, call agent.ToolCall) (*agent.ToolResult, error)
}

func (m *mockToolExecutorFunc) Execute(ctx context.Context, call agent.ToolCall) (*agent.ToolResult, error) {
	return m.executeFn(ctx, call)
}

func (m *mockToolExecutorFunc) ListTools(_ context.Context) ([]agent.ToolDefinition, error) {
	return m.tools, nil
}

func (m *mockToolExecutorFunc) Close() error { return nil }

// mockEventPublisher records published payloads for assertions.
// NOTE: Not safe for concurrent use, same caveat as mockLLMClient.
type mockEventPublisher struct {
	sessionStatus   []events.SessionStatusPayload
	stageStatus     []events.StageStatusPayload
	llmInteractions []events.LLMInteractionPayload
	mcpInteractions []events.MCPInteractionPayload
	streamChunks    []events.StreamChunkPayload

	// publishErr, when set, is returned from every publish method.
	publishErr error
}

func (m *mockEventPublisher) PublishSessionStatus(_ context.Context, _ string, payload events.SessionStatusPayload) error {
	m.sessionStatus = append(m.sessionStatus, payload)
	return m.publishErr
}

func (m *mockEventPublisher) PublishStageStatus(_ context.Context, _ string, payload events.StageStatusPayload) error {
	m.stageStatus = append(m.stageStatus, payload)
	return m.publishErr
}

func (m *mockEventPublisher) PublishLLMInteraction(_ context.Context, _ string, payload events.LLMInteractionPayload) error {
	m.llmInteractions = append(m.llmInteractions, payload)
	return m.publishErr
}

func (m *mockEventPublisher) PublishMCPInteraction(_ context.Context, _ string, payload events.MCPInteractionPayload) error {
	m.mcpInteractions = append(m.mcpInteractions, payload)
	return m.publishErr
}

func (m *mockEventPublisher) PublishStreamChunk(_ context.Context, _ string, payload events.StreamChunkPayload) error {
	m.streamChunks = append(m.streamChunks, payload)
	return m.publishErr
}

// newTestExecCtx creates a test ExecutionContext backed by a real test database
// with an AlertSession and active StageExecution row. The ent client is
// returned for direct row assertions.
// Defaults: MaxIterations=20, IterationTimeout=120s, ForceConclusion=true.
// Tests that need different limits should override execCtx.Config fields.
func newTestExecCtx(t *testing.T, llm agent.LLMClient, toolExec agent.ToolExecutor) (*agent.ExecutionContext, *ent.Client) {
	t.Helper()

	entClient, _ := util.SetupTestDatabase(t)
	svc := &agent.ServiceBundle{
		Interaction: services.NewInteractionService(entClient),
		Stage:       services.NewStageService(entClient),
	}

	ctx := context.Background()

	sessionID := uuid.New().String()
	_, err := entClient.AlertSession.Create().
		SetID(sessionID).
		SetAlertID(uuid.New().String()).
		SetAlertData("Test alert: CPU high on prod-server-1").
		SetAgentType("TestAgent").
		SetAlertType("test-alert").
		SetChainID("test-chain").
		SetStatus(alertsession.StatusInProgress).
		SetAuthor("test").
		Save(ctx)
	require.NoError(t, err)

	execID := uuid.New().String()
	_, err = entClient.StageExecution.Create().
		SetID(execID).
		SetSessionID(sessionID).
		SetStageID("investigate").
		SetStageIndex(0).
		SetStageName("Investigate").
		SetAgent("TestAgent").
		SetIterationStrategy(stageexecution.IterationStrategyReact).
		SetStatus(stageexecution.StatusActive).
		Save(ctx)
	require.NoError(t, err)

	testRegistry := config.NewMCPServerRegistry(map[string]*config.MCPServerConfig{})
	pb := prompt.NewPromptBuilder(testRegistry)

	return &agent.ExecutionContext{
		SessionID:   sessionID,
		StageID:     "investigate",
		ExecutionID: execID,
		AgentName:   "TestAgent",
		StageIndex:  0,
		AlertData:   "Test alert: CPU high on prod-server-1",
		AlertType:   "test-alert",
		Config: &agent.ResolvedAgentConfig{
			AgentName:          "TestAgent",
			IterationStrategy:  config.IterationStrategyReact,
			LLMProvider:        &config.LLMProviderConfig{Model: "test-model"},
			LLMProviderName:    "test-provider",
			MaxIterations:      20,
			IterationTimeout:   120 * time.Second,
			ForceConclusion:    true,
			CustomInstructions: "You are a test agent.",
		},
		LLMClient:     llm,
		ToolExecutor:  toolExec,
		PromptBuilder: pb,
		Services:      svc,
	}, entClient
}

// textChunks builds a single-text-chunk LLM response.
func textChunks(text string) []agent.Chunk {
	return []agent.Chunk{&agent.TextChunk{Content: text}}
}
