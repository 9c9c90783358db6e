package mcp

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"single char", "a", 1},
		{"exactly one token", "abcd", 1},
		{"rounds up", "abcde", 2},
		{"two tokens", "abcdefgh", 2},
		{"sentence", "Hello world, this is a test.", 7},
		{"multi-byte counts bytes", "こんにちは世界", 6}, // 21 UTF-8 bytes
		{"1000 chars", strings.Repeat("a", 1000), 250},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EstimateTokens(tc.input))
		})
	}
}

func TestTruncateAtLineBoundary(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		maxChars int
		marker   string
		want     string // empty means only the generic checks apply
	}{
		{
			name:     "below limit unchanged",
			content:  "short text",
			maxChars: 100,
			marker:   "test",
			want:     "short text",
		},
		{
			name:     "at limit unchanged",
			content:  "abcde",
			maxChars: 5,
			marker:   "test",
			want:     "abcde",
		},
		{
			name:     "zero limit disables truncation",
			content:  "some text",
			maxChars: 0,
			marker:   "test",
			want:     "some text",
		},
		{
			name:     "negative limit disables truncation",
			content:  "some text",
			maxChars: -5,
			marker:   "test",
			want:     "some text",
		},
		{
			name:     "cuts at newline boundary",
			content:  "line1\nline2\nline3\nline4",
			maxChars: 15,
			marker:   "test marker",
			want:     "line1\nline2\n\n[TRUNCATED: test marker — Original size: 23B, limit: 15B]",
		},
		{
			name:     "hard cut when no newline available",
			content:  "abcdefghijklmnopqrstuvwxyz",
			maxChars: 10,
			marker:   "hard cut",
			want:     "abcdefghij\n\n[TRUNCATED: hard cut — Original size: 26B, limit: 10B]",
		},
		{
			name:     "backs up to last complete line",
			content:  "line1\nline2\nline3\nline4\nline5",
			maxChars: 14, // mid "line3"
			marker:   "test",
			want:     "line1\nline2\n\n[TRUNCATED: test — Original size: 29B, limit: 14B]",
		},
		{
			name: "indented JSON keeps whole lines",
			content: `{
  "name": "test",
  "value": 123,
  "nested": {
    "key": "data"
  }
}`,
			maxChars: 40, // mid "nested" line
			marker:   "JSON content",
			want: "{\n  \"name\": \"test\",\n  \"value\": 123," +
				"\n\n[TRUNCATED: JSON content — Original size: 73B, limit: 40B]",
		},
		{
			name:     "never splits an emoji",
			content:  "hello 🌍 world! more text here",
			maxChars: 8, // inside the 4-byte emoji
			marker:   "utf8",
		},
		{
			name:     "never splits a CJK rune",
			content:  "ab世界cd", // 2 + 3 + 3 + 2 bytes
			maxChars: 4,        // inside '世'
			marker:   "cjk",
		},
		{
			name:     "multi-byte after newline",
			content:  "line1\nこんにちは\nline3",
			maxChars: 10, // inside the CJK run
			marker:   "utf8 newline",
			want:     "line1\n\n[TRUNCATED: utf8 newline — Original size: 27B, limit: 10B]",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := truncateAtLineBoundary(tc.content, tc.maxChars, tc.marker)
			if tc.want != "" {
				assert.Equal(t, tc.want, got)
			}
			assert.True(t, utf8.ValidString(got))
			if tc.maxChars > 0 && len(tc.content) > tc.maxChars {
				assert.Contains(t, got, "[TRUNCATED:")
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int
		want  string
	}{
		{0, "0B"},
		{1, "1B"},
		{1023, "1023B"},
		{1024, "1KB"},
		{1025, "1KB"},
		{2048, "2KB"},
		{32000, "31KB"},
		{1048576, "1024KB"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, formatSize(tc.bytes))
		})
	}
}

func TestTruncateForStorage(t *testing.T) {
	assert.Equal(t, "small result", TruncateForStorage("small result"))

	maxChars := DefaultStorageMaxTokens * charsPerToken
	large := strings.Repeat("x", maxChars+1000)
	want := strings.Repeat("x", maxChars) +
		fmt.Sprintf("\n\n[TRUNCATED: Output exceeded storage display limit — Original size: %dKB, limit: %dKB]",
			len(large)/1024, maxChars/1024)
	assert.Equal(t, want, TruncateForStorage(large))
}

func TestTruncateForSummarization(t *testing.T) {
	assert.Equal(t, "small result", TruncateForSummarization("small result"))

	maxChars := DefaultSummarizationMaxTokens * charsPerToken
	large := strings.Repeat("x", maxChars+1000)
	want := strings.Repeat("x", maxChars) +
		fmt.Sprintf("\n\n[TRUNCATED: Output exceeded summarization input limit — Original size: %dKB, limit: %dKB]",
			len(large)/1024, maxChars/1024)
	assert.Equal(t, want, TruncateForSummarization(large))
}
