package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := NewValidationError("agent", "test-agent", "mcp_servers", errors.New("base error"))
		msg := err.Error()
		for _, part := range []string{"agent", "test-agent", "mcp_servers", "base error"} {
			assert.Contains(t, msg, part)
		}
	})

	t.Run("chain component", func(t *testing.T) {
		err := NewValidationError("chain", "k8s-chain", "stages", errors.New("invalid stage"))
		msg := err.Error()
		for _, part := range []string{"chain", "k8s-chain", "stages", "invalid stage"} {
			assert.Contains(t, msg, part)
		}
	})
}

func TestValidationError_Unwrap(t *testing.T) {
	base := errors.New("base error")
	err := NewValidationError("test", "test-id", "field", base)

	assert.Equal(t, base, err.Unwrap())
	assert.True(t, errors.Is(err, base))
}

func TestLoadError_Error(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		cause    error
		contains []string
	}{
		{
			name:     "missing file",
			file:     "tarsy.yaml",
			cause:    errors.New("file not found"),
			contains: []string{"failed to load", "tarsy.yaml", "file not found"},
		},
		{
			name:     "parse failure",
			file:     "llm-providers.yaml",
			cause:    errors.New("yaml: unmarshal error"),
			contains: []string{"failed to load", "llm-providers.yaml", "unmarshal error"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := NewLoadError(tc.file, tc.cause).Error()
			for _, part := range tc.contains {
				assert.Contains(t, msg, part)
			}
		})
	}
}

func TestLoadError_Unwrap(t *testing.T) {
	base := errors.New("base error")
	err := NewLoadError("test.yaml", base)

	assert.Equal(t, base, err.Unwrap())
	assert.True(t, errors.Is(err, base))
}
