package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/llminteraction"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/mcpinteraction"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
)

// InteractionService records the audit trail of LLM and MCP calls.
// Writes are retried once on failure; callers treat a final error as
// log-and-drop, never as a reason to abort the investigation.
type InteractionService struct {
	client *ent.Client
}

// NewInteractionService creates a new InteractionService
func NewInteractionService(client *ent.Client) *InteractionService {
	return &InteractionService{client: client}
}

// CreateLLMInteraction records an LLM call, successful or failed
func (s *InteractionService) CreateLLMInteraction(httpCtx context.Context, req models.CreateLLMInteractionRequest) (*ent.LLMInteraction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	interactionID := req.InteractionID
	if interactionID == "" {
		interactionID = uuid.New().String()
	}
	timestampUs := req.TimestampUs
	if timestampUs == 0 {
		timestampUs = time.Now().UnixMicro()
	}

	build := func() *ent.LLMInteractionCreate {
		builder := s.client.LLMInteraction.Create().
			SetID(interactionID).
			SetSessionID(req.SessionID).
			SetTimestampUs(timestampUs).
			SetInteractionType(llminteraction.InteractionType(req.InteractionType)).
			SetModelName(req.ModelName).
			SetProvider(req.Provider).
			SetConversation(req.Conversation)

		if req.StageExecutionID != nil {
			builder = builder.SetStageExecutionID(*req.StageExecutionID)
		}
		if req.DurationMs > 0 {
			builder = builder.SetDurationMs(int(req.DurationMs))
		}
		if req.StepDescription != "" {
			builder = builder.SetStepDescription(req.StepDescription)
		}
		if req.ThinkingContent != "" {
			builder = builder.SetThinkingContent(req.ThinkingContent)
		}
		if req.ResponseMetadata != nil {
			builder = builder.SetResponseMetadata(req.ResponseMetadata)
		}
		if req.MCPEventID != "" {
			builder = builder.SetMcpEventID(req.MCPEventID)
		}
		if req.NativeToolsCfg != nil {
			builder = builder.SetNativeToolsConfig(req.NativeToolsCfg)
		}
		if req.ErrorMessage != "" {
			builder = builder.SetErrorMessage(req.ErrorMessage)
		}
		return builder
	}

	interaction, err := build().Save(ctx)
	if err != nil {
		// One retry; constraint errors are not transient
		if ent.IsConstraintError(err) {
			return nil, fmt.Errorf("failed to create LLM interaction: %w", err)
		}
		interaction, err = build().Save(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM interaction: %w", err)
		}
	}

	return interaction, nil
}

// CreateMCPInteraction records an MCP call or tool listing
func (s *InteractionService) CreateMCPInteraction(httpCtx context.Context, req models.CreateMCPInteractionRequest) (*ent.MCPInteraction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	timestampUs := req.TimestampUs
	if timestampUs == 0 {
		timestampUs = time.Now().UnixMicro()
	}

	build := func() *ent.MCPInteractionCreate {
		builder := s.client.MCPInteraction.Create().
			SetID(requestID).
			SetSessionID(req.SessionID).
			SetTimestampUs(timestampUs).
			SetCommunicationType(mcpinteraction.CommunicationType(req.CommunicationType)).
			SetServerName(req.ServerName).
			SetSuccess(req.Success)

		if req.StageExecutionID != nil {
			builder = builder.SetStageExecutionID(*req.StageExecutionID)
		}
		if req.DurationMs > 0 {
			builder = builder.SetDurationMs(int(req.DurationMs))
		}
		if req.ToolName != "" {
			builder = builder.SetToolName(req.ToolName)
		}
		if req.ToolArguments != nil {
			builder = builder.SetToolArguments(req.ToolArguments)
		}
		if req.ToolResult != nil {
			builder = builder.SetToolResult(req.ToolResult)
		}
		if req.AvailableTools != nil {
			builder = builder.SetAvailableTools(req.AvailableTools)
		}
		if req.ErrorMessage != "" {
			builder = builder.SetErrorMessage(req.ErrorMessage)
		}
		return builder
	}

	interaction, err := build().Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			return nil, fmt.Errorf("failed to create MCP interaction: %w", err)
		}
		interaction, err = build().Save(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create MCP interaction: %w", err)
		}
	}

	return interaction, nil
}

// GetLLMInteraction retrieves a single LLM interaction
func (s *InteractionService) GetLLMInteraction(ctx context.Context, interactionID string) (*ent.LLMInteraction, error) {
	interaction, err := s.client.LLMInteraction.Get(ctx, interactionID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get LLM interaction: %w", err)
	}

	return interaction, nil
}

// ListForSession merges LLM and MCP interactions for a session into one
// timeline ordered by timestamp_us.
func (s *InteractionService) ListForSession(ctx context.Context, sessionID string) ([]models.InteractionListItem, error) {
	llms, err := s.client.LLMInteraction.Query().
		Where(llminteraction.SessionIDEQ(sessionID)).
		Order(ent.Asc(llminteraction.FieldTimestampUs)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get LLM interactions: %w", err)
	}

	mcps, err := s.client.MCPInteraction.Query().
		Where(mcpinteraction.SessionIDEQ(sessionID)).
		Order(ent.Asc(mcpinteraction.FieldTimestampUs)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get MCP interactions: %w", err)
	}

	items := make([]models.InteractionListItem, 0, len(llms)+len(mcps))
	for _, in := range llms {
		items = append(items, models.InteractionListItem{
			Type:        "llm",
			TimestampUs: in.TimestampUs,
			LLM:         in,
		})
	}
	for _, in := range mcps {
		items = append(items, models.InteractionListItem{
			Type:        "mcp",
			TimestampUs: in.TimestampUs,
			MCP:         in,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TimestampUs < items[j].TimestampUs
	})

	return items, nil
}

// ListForExecution returns the merged LLM and MCP interactions recorded
// against one stage execution, ordered by timestamp. Feeds the synthesis
// prompt with a branch's full reasoning transcript.
func (s *InteractionService) ListForExecution(ctx context.Context, stageExecutionID string) ([]models.InteractionListItem, error) {
	llms, err := s.client.LLMInteraction.Query().
		Where(llminteraction.StageExecutionIDEQ(stageExecutionID)).
		Order(ent.Asc(llminteraction.FieldTimestampUs)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get LLM interactions: %w", err)
	}

	mcps, err := s.client.MCPInteraction.Query().
		Where(mcpinteraction.StageExecutionIDEQ(stageExecutionID)).
		Order(ent.Asc(mcpinteraction.FieldTimestampUs)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get MCP interactions: %w", err)
	}

	items := make([]models.InteractionListItem, 0, len(llms)+len(mcps))
	for _, in := range llms {
		items = append(items, models.InteractionListItem{
			Type:        "llm",
			TimestampUs: in.TimestampUs,
			LLM:         in,
		})
	}
	for _, in := range mcps {
		items = append(items, models.InteractionListItem{
			Type:        "mcp",
			TimestampUs: in.TimestampUs,
			MCP:         in,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TimestampUs < items[j].TimestampUs
	})

	return items, nil
}
