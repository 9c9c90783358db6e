package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubToolExecutor_Execute(t *testing.T) {
	stub := NewStubToolExecutor([]ToolDefinition{
		{Name: "k8s.get_pods", Description: "Get pods"},
	})

	result, err := stub.Execute(context.Background(), ToolCall{
		ID:        "call-1",
		Name:      "k8s.get_pods",
		Arguments: `{"namespace": "default"}`,
	})

	require.NoError(t, err)
	assert.Equal(t, "call-1", result.CallID)
	assert.Equal(t, "k8s.get_pods", result.Name)
	assert.False(t, result.IsError)
	// Canned content echoes the call so test transcripts stay readable.
	assert.Contains(t, result.Content, "[stub]")
	assert.Contains(t, result.Content, "k8s.get_pods")
	assert.Contains(t, result.Content, "namespace")
}

func TestStubToolExecutor_ListTools(t *testing.T) {
	t.Run("returns configured tools", func(t *testing.T) {
		stub := NewStubToolExecutor([]ToolDefinition{
			{Name: "k8s.get_pods", Description: "Get pods"},
			{Name: "k8s.get_logs", Description: "Get logs"},
		})

		listed, err := stub.ListTools(context.Background())
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, "k8s.get_pods", listed[0].Name)
	})

	t.Run("no tools configured", func(t *testing.T) {
		stub := NewStubToolExecutor(nil)

		listed, err := stub.ListTools(context.Background())
		require.NoError(t, err)
		assert.Nil(t, listed)
	})
}
