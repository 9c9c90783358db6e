package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected RecoveryAction
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: NoRetry,
		},
		{
			name:     "context canceled",
			err:      context.Canceled,
			expected: NoRetry,
		},
		{
			name:     "context deadline exceeded",
			err:      context.DeadlineExceeded,
			expected: NoRetry,
		},
		{
			name:     "wrapped context canceled",
			err:      errors.Join(errors.New("call failed"), context.Canceled),
			expected: NoRetry,
		},
		{
			name:     "io.EOF - connection",
			err:      io.EOF,
			expected: RetryNewSession,
		},
		{
			name:     "io.ErrUnexpectedEOF",
			err:      io.ErrUnexpectedEOF,
			expected: RetryNewSession,
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp 127.0.0.1:8080: connection refused"),
			expected: RetryNewSession,
		},
		{
			name:     "connection reset",
			err:      errors.New("read tcp: connection reset by peer"),
			expected: RetryNewSession,
		},
		{
			name:     "broken pipe",
			err:      errors.New("write: broken pipe"),
			expected: RetryNewSession,
		},
		{
			name:     "closed network connection",
			err:      errors.New("use of closed network connection"),
			expected: RetryNewSession,
		},
		{
			name:     "closed stream",
			err:      errors.New("stream closed by server"),
			expected: RetryNewSession,
		},
		{
			name:     "MCP method not found",
			err:      errors.New("JSON-RPC error: method not found"),
			expected: NoRetry,
		},
		{
			name:     "MCP invalid params",
			err:      errors.New("invalid params: missing required field"),
			expected: NoRetry,
		},
		{
			name:     "unknown error",
			err:      errors.New("something unexpected happened"),
			expected: NoRetry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestClassifyError_HTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected RecoveryAction
	}{
		{
			name:     "401 unauthorized",
			err:      errors.New(`initialize: broken session: 401 Unauthorized`),
			expected: NoRetry,
		},
		{
			name:     "403 forbidden",
			err:      errors.New(`POST failed: 403 Forbidden`),
			expected: NoRetry,
		},
		{
			name:     "invalid credentials",
			err:      errors.New("authentication failed: invalid credentials"),
			expected: NoRetry,
		},
		{
			name:     "429 rate limited",
			err:      errors.New(`POST failed: 429 Too Many Requests`),
			expected: RetrySameSession,
		},
		{
			name:     "rate limit text",
			err:      errors.New("server rate limit exceeded"),
			expected: RetrySameSession,
		},
		{
			name:     "404 session expired",
			err:      errors.New(`broken session: 404 Not Found`),
			expected: RetryNewSession,
		},
		{
			name:     "session not found",
			err:      errors.New("session not found"),
			expected: RetryNewSession,
		},
		{
			name:     "500 internal server error",
			err:      errors.New(`POST failed: 500 Internal Server Error`),
			expected: RetryNewSession,
		},
		{
			name:     "502 bad gateway",
			err:      errors.New(`POST failed: 502 Bad Gateway`),
			expected: RetryNewSession,
		},
		{
			name:     "503 service unavailable",
			err:      errors.New(`POST failed: 503 Service Unavailable`),
			expected: RetryNewSession,
		},
		{
			name:     "504 gateway timeout",
			err:      errors.New(`POST failed: 504 Gateway Timeout`),
			expected: RetryNewSession,
		},
		{
			name:     "wrapped 503",
			err:      fmt.Errorf("call tool: %w", errors.New("unexpected status 503")),
			expected: RetryNewSession,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// mockNetError implements net.Error for testing.
type mockNetError struct {
	msg       string
	timeout   bool
	temporary bool
}

func (e *mockNetError) Error() string   { return e.msg }
func (e *mockNetError) Timeout() bool   { return e.timeout }
func (e *mockNetError) Temporary() bool { return e.temporary }

// Ensure mockNetError implements net.Error at compile time.
var _ net.Error = (*mockNetError)(nil)

func TestClassifyError_NetError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected RecoveryAction
	}{
		{
			name:     "net timeout",
			err:      &mockNetError{msg: "i/o timeout", timeout: true},
			expected: NoRetry,
		},
		{
			name:     "net non-timeout",
			err:      &mockNetError{msg: "connection refused", timeout: false},
			expected: RetryNewSession,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestRecoveryActionString(t *testing.T) {
	assert.Equal(t, "no_retry", NoRetry.String())
	assert.Equal(t, "retry_same_session", RetrySameSession.String())
	assert.Equal(t, "retry_new_session", RetryNewSession.String())
}
