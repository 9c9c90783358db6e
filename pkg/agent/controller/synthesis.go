package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
)

// SynthesisController implements a tool-less, single LLM call that merges
// parallel investigation results into one analysis. Used for both the
// "synthesis" and "synthesis-native-thinking" strategies; the difference is
// the provider configured in LLMProviderConfig.
type SynthesisController struct{}

// NewSynthesisController creates a new synthesis controller.
func NewSynthesisController() *SynthesisController {
	return &SynthesisController{}
}

// Run executes a single LLM call to synthesize previous stage results.
func (c *SynthesisController) Run(
	ctx context.Context,
	execCtx *agent.ExecutionContext,
	prevStageContext string,
) (*agent.ExecutionResult, error) {
	if execCtx.PromptBuilder == nil {
		return nil, fmt.Errorf("PromptBuilder is nil: cannot build synthesis messages")
	}
	messages := execCtx.PromptBuilder.BuildSynthesisMessages(execCtx, prevStageContext)

	startTime := time.Now()
	interactionID := generateInteractionID()

	callCtx, callCancel := context.WithTimeout(ctx, execCtx.Config.IterationTimeout)
	defer callCancel()

	// Single LLM call, no tools
	resp, err := callLLMWithStreaming(callCtx, execCtx, &agent.GenerateInput{
		SessionID:           execCtx.SessionID,
		ExecutionID:         execCtx.ExecutionID,
		Messages:            messages,
		Provider:            execCtx.Config.LLMProviderName,
		Config:              execCtx.Config.LLMProvider,
		NativeToolsOverride: execCtx.Config.NativeToolsOverride,
	}, streamOptions{
		InteractionID: interactionID,
		TextType:      events.StreamTypeFinalAnswer,
		ThinkingType:  events.StreamTypeNativeThinking,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		recordLLMInteraction(ctx, execCtx, interactionID, "investigation", "Synthesis", messages, nil, startTime, err)
		return nil, fmt.Errorf("synthesis LLM call failed: %w", err)
	}

	// Fall back to thinking text when the model produced only ThinkingChunks
	finalAnalysis := resp.Text
	if finalAnalysis == "" && resp.ThinkingText != "" {
		finalAnalysis = resp.ThinkingText
	}
	if finalAnalysis == "" {
		emptyErr := fmt.Errorf("synthesis produced empty analysis")
		recordLLMInteraction(ctx, execCtx, interactionID, "investigation", "Synthesis", messages, resp, startTime, emptyErr)
		return nil, emptyErr
	}

	// Store the fallback text so the persisted conversation isn't empty
	storeResp := resp
	if resp.Text == "" {
		respCopy := *resp
		respCopy.Text = finalAnalysis
		storeResp = &respCopy
	}
	recordLLMInteraction(ctx, execCtx, interactionID, "investigation", "Synthesis", messages, storeResp, startTime, nil)

	return &agent.ExecutionResult{
		Status:        agent.ExecutionStatusCompleted,
		FinalAnalysis: finalAnalysis,
		TokensUsed:    tokenUsageFromResp(resp),
	}, nil
}
