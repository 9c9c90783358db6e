package agent

import (
	"context"
	"fmt"
)

// ToolExecutor is how iteration controllers reach tools without knowing
// about MCP. The production implementation lives in pkg/mcp.
type ToolExecutor interface {
	// Execute runs one tool call; the result content is always text, either
	// tool output or an error description.
	Execute(ctx context.Context, call ToolCall) (*ToolResult, error)

	// ListTools returns the tool definitions visible to this execution,
	// nil when no tools are configured.
	ListTools(ctx context.Context) ([]ToolDefinition, error)

	// Close releases transports and subprocesses.
	Close() error
}

// ToolResult is the outcome of a single tool call.
type ToolResult struct {
	CallID  string // matches ToolCall.ID
	Name    string // "server.tool"
	Content string
	IsError bool
}

// StubToolExecutor answers every call with a canned response. Tests use it
// where tool plumbing is not under test.
type StubToolExecutor struct {
	tools []ToolDefinition
}

// NewStubToolExecutor creates a stub advertising the given tools.
func NewStubToolExecutor(tools []ToolDefinition) *StubToolExecutor {
	return &StubToolExecutor{tools: tools}
}

func (s *StubToolExecutor) Execute(_ context.Context, call ToolCall) (*ToolResult, error) {
	return &ToolResult{
		CallID:  call.ID,
		Name:    call.Name,
		Content: fmt.Sprintf("[stub] Tool %q called with args: %s", call.Name, call.Arguments),
	}, nil
}

func (s *StubToolExecutor) ListTools(_ context.Context) ([]ToolDefinition, error) {
	return s.tools, nil
}

func (s *StubToolExecutor) Close() error { return nil }
