package mcp

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// charsPerToken is the rough characters-per-token ratio for English text,
// good enough for threshold checks.
const charsPerToken = 4

// DefaultStorageMaxTokens caps tool output persisted to interaction records,
// keeping the dashboard from rendering huge blobs.
const DefaultStorageMaxTokens = 8000

// DefaultSummarizationMaxTokens caps tool output fed to the summarization
// model so prompt plus output stays inside the context window.
const DefaultSummarizationMaxTokens = 100000

// EstimateTokens approximates the token count of text at ~4 chars/token.
// An exact count would need a tokenizer dependency for no real gain; the
// thresholds this feeds are soft limits.
//
// len(text) is bytes, so multi-byte UTF-8 content (CJK, emoji) overestimates
// the count. That errs toward summarizing early rather than missing it.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// truncateAtLineBoundary cuts content to at most maxChars bytes, backing up
// to the previous newline so indented JSON, YAML, or log lines are not split,
// and never splitting a multi-byte UTF-8 rune. A marker noting the original
// and limit sizes is appended.
func truncateAtLineBoundary(content string, maxChars int, marker string) string {
	if maxChars <= 0 || len(content) <= maxChars {
		return content
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	truncated := content[:cut]
	if idx := strings.LastIndex(truncated, "\n"); idx > 0 {
		truncated = truncated[:idx]
	}
	return truncated + fmt.Sprintf(
		"\n\n[TRUNCATED: %s — Original size: %s, limit: %s]",
		marker, formatSize(len(content)), formatSize(maxChars),
	)
}

// formatSize renders bytes below 1KB as-is so small content never shows "0KB".
func formatSize(bytes int) string {
	if bytes < 1024 {
		return fmt.Sprintf("%dB", bytes)
	}
	return fmt.Sprintf("%dKB", bytes/1024)
}

// TruncateForStorage bounds tool output headed for interaction records and
// llm_tool_call completion content. Applied to every raw result, whether or
// not summarization runs.
func TruncateForStorage(content string) string {
	return truncateAtLineBoundary(content, DefaultStorageMaxTokens*charsPerToken,
		"Output exceeded storage display limit")
}

// TruncateForSummarization bounds tool output before it goes to the
// summarization model. The limit is much larger than storage truncation so
// the summarizer sees as much data as the context window allows.
func TruncateForSummarization(content string) string {
	return truncateAtLineBoundary(content, DefaultSummarizationMaxTokens*charsPerToken,
		"Output exceeded summarization input limit")
}
