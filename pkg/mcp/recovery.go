package mcp

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"
)

// RecoveryAction determines how to handle an MCP operation failure.
type RecoveryAction int

const (
	// NoRetry — the error is not recoverable (bad request, auth failure, timeout).
	NoRetry RecoveryAction = iota
	// RetrySameSession — transient error, retry with existing session (rate limit).
	RetrySameSession
	// RetryNewSession — transport failure, recreate session and retry.
	RetryNewSession
)

// String returns a log-friendly name for the action.
func (a RecoveryAction) String() string {
	switch a {
	case RetrySameSession:
		return "retry_same_session"
	case RetryNewSession:
		return "retry_new_session"
	default:
		return "no_retry"
	}
}

// Recovery configuration constants.
const (
	// MaxRetries is the number of retry attempts after the initial failure.
	MaxRetries = 1

	// ReinitTimeout is the deadline for recreating an MCP session during recovery.
	ReinitTimeout = 10 * time.Second

	// OperationTimeout is the per-call deadline for CallTool and ListTools.
	// Some tools are legitimately slow; the per-iteration LLM timeout is the
	// hard ceiling above this.
	OperationTimeout = 60 * time.Second

	// RetryBackoffMin is the minimum jittered backoff before a rate-limit retry.
	RetryBackoffMin = 250 * time.Millisecond

	// RetryBackoffMax is the maximum jittered backoff before a rate-limit retry.
	RetryBackoffMax = 750 * time.Millisecond

	// MCPInitTimeout is the per-server initialization timeout (transport + handshake).
	MCPInitTimeout = 30 * time.Second

	// MCPHealthPingTimeout is the health check ping timeout.
	MCPHealthPingTimeout = 5 * time.Second

	// MCPHealthInterval is the health check loop interval.
	MCPHealthInterval = 15 * time.Second
)

// ClassifyError determines the recovery action for an MCP operation error.
//
// Classification rules:
//   - auth failures (401/403) are never retried
//   - rate limits (429) retry once on the same session after a jittered sleep
//   - session loss (HTTP 404, upstream 5xx, closed streams, transport drops)
//     retries once after the session is recreated
//   - JSON-RPC semantic errors and anything unrecognized are not retried
func ClassifyError(err error) RecoveryAction {
	if err == nil {
		return NoRetry
	}

	// Context errors — no retry
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NoRetry
	}

	msg := strings.ToLower(err.Error())

	// Auth errors — check before transport classes so "401 Unauthorized"
	// surfaced through an HTTP transport is never retried
	if isAuthError(msg) {
		return NoRetry
	}

	// Rate limiting — retry on the same session after a short sleep
	if isRateLimitError(msg) {
		return RetrySameSession
	}

	// Session loss surfaced as an HTTP status (streamable/SSE transports
	// report the response status in the error text)
	if isSessionLostError(msg) {
		return RetryNewSession
	}

	// Network errors — check timeout vs connection
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return NoRetry // Timeout: don't retry (could be slow server)
		}
		return RetryNewSession
	}

	// Connection-level errors — retry with new session
	if isConnectionError(err, msg) {
		return RetryNewSession
	}

	// MCP JSON-RPC errors — generally not retryable
	if isMCPProtocolError(msg) {
		return NoRetry
	}

	// Default: no retry (unknown errors are not safe to retry)
	return NoRetry
}

// isAuthError detects credential failures (HTTP 401/403).
// Matches the status text reported by HTTP transports.
func isAuthError(msg string) bool {
	authErrors := []string{
		"401 unauthorized",
		"403 forbidden",
		"status 401",
		"status 403",
		"authentication failed",
		"invalid credentials",
	}
	for _, e := range authErrors {
		if strings.Contains(msg, e) {
			return true
		}
	}
	return false
}

// isRateLimitError detects HTTP 429 responses.
func isRateLimitError(msg string) bool {
	rateLimitErrors := []string{
		"429 too many requests",
		"too many requests",
		"status 429",
		"rate limit",
	}
	for _, e := range rateLimitErrors {
		if strings.Contains(msg, e) {
			return true
		}
	}
	return false
}

// isSessionLostError detects session expiry (HTTP 404 on an established
// streamable session) and upstream server failures (5xx).
func isSessionLostError(msg string) bool {
	sessionLostErrors := []string{
		"404 not found",
		"session not found",
		"session expired",
		"500 internal server error",
		"502 bad gateway",
		"503 service unavailable",
		"504 gateway timeout",
		"status 404",
		"status 500",
		"status 502",
		"status 503",
		"status 504",
	}
	for _, e := range sessionLostErrors {
		if strings.Contains(msg, e) {
			return true
		}
	}
	return false
}

// isConnectionError detects connection-level transport failures.
func isConnectionError(err error, msg string) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	connectionErrors := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"connection closed",
		"closed network connection",
		"stream closed",
		"no such host",
	}
	for _, e := range connectionErrors {
		if strings.Contains(msg, e) {
			return true
		}
	}
	return false
}

// isMCPProtocolError detects MCP JSON-RPC protocol errors from the SDK.
// These are client-side errors like bad request, method not found, etc.
func isMCPProtocolError(msg string) bool {
	protocolIndicators := []string{
		"method not found",
		"invalid params",
		"invalid request",
		"parse error",
	}
	for _, indicator := range protocolIndicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
