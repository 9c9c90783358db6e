package e2e

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
)

// LLMScriptEntry is one canned LLM response. Exactly one of Chunks, Text
// or Error should be set.
type LLMScriptEntry struct {
	Chunks []agent.Chunk // returned as-is
	Text   string        // shorthand, wrapped as TextChunk + UsageChunk
	Error  error         // Generate fails with this error

	// Test synchronization knobs.
	BlockUntilCancelled bool            // park Generate until ctx is cancelled
	WaitCh              <-chan struct{} // park Generate until closed, then respond
	OnBlock             chan<- struct{} // signalled when Generate parks on either of the above
}

// ScriptedLLMClient is an agent.LLMClient driven by scripted entries.
// Dispatch is two-tier: entries registered per agent name serve parallel
// stages (where call order is nondeterministic), and a sequential list
// serves everything else.
type ScriptedLLMClient struct {
	mu             sync.Mutex
	sequential     []LLMScriptEntry
	seqIndex       int
	routes         map[string][]LLMScriptEntry // per-agent scripts
	routeIndex     map[string]int
	capturedInputs []*agent.GenerateInput
}

func NewScriptedLLMClient() *ScriptedLLMClient {
	return &ScriptedLLMClient{
		routes:     make(map[string][]LLMScriptEntry),
		routeIndex: make(map[string]int),
	}
}

// AddSequential appends to the ordered fallback script. Single-agent
// stages, synthesis, executive summaries and summarization all consume
// from here.
func (c *ScriptedLLMClient) AddSequential(entry LLMScriptEntry) {
	c.sequential = append(c.sequential, entry)
}

// AddRouted appends to the script for one agent, matched by the name in
// its system prompt. Parallel stages use this to give each agent its own
// responses.
func (c *ScriptedLLMClient) AddRouted(agentName string, entry LLMScriptEntry) {
	c.routes[agentName] = append(c.routes[agentName], entry)
}

// Generate implements agent.LLMClient.
func (c *ScriptedLLMClient) Generate(ctx context.Context, input *agent.GenerateInput) (<-chan agent.Chunk, error) {
	c.mu.Lock()
	c.capturedInputs = append(c.capturedInputs, input)
	entry, err := c.nextEntry(input)
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}

	if entry.BlockUntilCancelled {
		// Mimic a real client whose context dies mid-call.
		if entry.OnBlock != nil {
			entry.OnBlock <- struct{}{}
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}

	if entry.WaitCh != nil {
		if entry.OnBlock != nil {
			entry.OnBlock <- struct{}{}
		}
		select {
		case <-entry.WaitCh:
			// released, respond normally below
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if entry.Error != nil {
		return nil, entry.Error
	}

	chunks := entry.Chunks
	if len(chunks) == 0 && entry.Text != "" {
		chunks = []agent.Chunk{
			&agent.TextChunk{Content: entry.Text},
			&agent.UsageChunk{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
		}
	}

	ch := make(chan agent.Chunk, len(chunks))
	for _, chunk := range chunks {
		ch <- chunk
	}
	close(ch)
	return ch, nil
}

// Close implements agent.LLMClient.
func (c *ScriptedLLMClient) Close() error { return nil }

// CallCount reports how many times Generate has been called.
func (c *ScriptedLLMClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.capturedInputs)
}

// nextEntry picks the next entry, routed script first, sequential list
// as fallback. Caller holds c.mu.
func (c *ScriptedLLMClient) nextEntry(input *agent.GenerateInput) (*LLMScriptEntry, error) {
	agentName := extractAgentName(input)

	if agentName != "" {
		if entries, ok := c.routes[agentName]; ok {
			if idx := c.routeIndex[agentName]; idx < len(entries) {
				c.routeIndex[agentName] = idx + 1
				return &entries[idx], nil
			}
		}
	}

	if c.seqIndex < len(c.sequential) {
		entry := &c.sequential[c.seqIndex]
		c.seqIndex++
		return entry, nil
	}

	return nil, fmt.Errorf("ScriptedLLMClient: no more entries (agent=%q, sequential=%d/%d)",
		agentName, c.seqIndex, len(c.sequential))
}

// extractAgentName pulls the agent name out of the system prompt. Custom
// instructions land under "## Agent-Specific Instructions", so the search
// is narrowed to that section first; otherwise the generic "You are an
// expert SRE" line from the shared instructions would match.
func extractAgentName(input *agent.GenerateInput) string {
	for _, msg := range input.Messages {
		if msg.Role != agent.RoleSystem {
			continue
		}

		content := msg.Content
		if idx := strings.Index(content, "## Agent-Specific Instructions"); idx >= 0 {
			content = content[idx:]
		}

		idx := strings.Index(content, "You are ")
		if idx < 0 {
			return ""
		}
		rest := content[idx+len("You are "):]
		end := len(rest)
		for i, ch := range rest {
			if ch == '.' || ch == ',' || ch == '\n' {
				end = i
				break
			}
		}
		return strings.TrimSpace(rest[:end])
	}
	return ""
}
