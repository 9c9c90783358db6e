package slack

import (
	"strings"
	"testing"
	"unicode/utf8"

	goslack "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sectionText(t *testing.T, b goslack.Block) string {
	t.Helper()
	section, ok := b.(*goslack.SectionBlock)
	require.True(t, ok, "expected section block, got %T", b)
	return section.Text.Text
}

func TestBuildStartedMessage(t *testing.T) {
	blocks := BuildStartedMessage("session-123", "https://tarsy.example.com")

	require.Len(t, blocks, 1)
	text := sectionText(t, blocks[0])
	assert.Contains(t, text, ":arrows_counterclockwise:")
	assert.Contains(t, text, "Processing started")
	assert.Contains(t, text, "https://tarsy.example.com/sessions/session-123")
}

func TestBuildTerminalMessage_Completed(t *testing.T) {
	blocks := BuildTerminalMessage(SessionCompletedInput{
		SessionID:        "sess-1",
		Status:           "completed",
		ExecutiveSummary: "The pod crashed due to OOM.",
	}, "https://dash.example.com")

	require.Len(t, blocks, 3)

	header := sectionText(t, blocks[0])
	assert.Contains(t, header, ":white_check_mark:")
	assert.Contains(t, header, "Analysis Complete")

	assert.Contains(t, sectionText(t, blocks[1]), "The pod crashed due to OOM.")

	action, ok := blocks[2].(*goslack.ActionBlock)
	require.True(t, ok)
	require.Len(t, action.Elements.ElementSet, 1)
	btn, ok := action.Elements.ElementSet[0].(*goslack.ButtonBlockElement)
	require.True(t, ok)
	assert.Equal(t, "View Full Analysis", btn.Text.Text)
	assert.Contains(t, btn.URL, "https://dash.example.com/sessions/sess-1")
}

func TestBuildTerminalMessage_FallsBackToFinalAnalysis(t *testing.T) {
	blocks := BuildTerminalMessage(SessionCompletedInput{
		SessionID:     "sess-2",
		Status:        "completed",
		FinalAnalysis: "Fallback analysis content.",
	}, "https://dash.example.com")

	require.GreaterOrEqual(t, len(blocks), 3)
	assert.Contains(t, sectionText(t, blocks[1]), "Fallback analysis content.")
}

func TestBuildTerminalMessage_CompletedWithoutContent(t *testing.T) {
	blocks := BuildTerminalMessage(SessionCompletedInput{
		SessionID: "sess-3",
		Status:    "completed",
	}, "https://dash.example.com")

	// Header and button only.
	require.Len(t, blocks, 2)
	assert.Contains(t, sectionText(t, blocks[0]), "Analysis Complete")
}

func TestBuildTerminalMessage_Failed(t *testing.T) {
	blocks := BuildTerminalMessage(SessionCompletedInput{
		SessionID:    "sess-4",
		Status:       "failed",
		ErrorMessage: "timeout waiting for LLM",
	}, "https://dash.example.com")

	require.Len(t, blocks, 2)

	header := sectionText(t, blocks[0])
	assert.Contains(t, header, ":x:")
	assert.Contains(t, header, "Analysis Failed")
	assert.Contains(t, header, "timeout waiting for LLM")

	action := blocks[1].(*goslack.ActionBlock)
	btn := action.Elements.ElementSet[0].(*goslack.ButtonBlockElement)
	assert.Equal(t, "View Details", btn.Text.Text)
}

func TestBuildTerminalMessage_StatusEmoji(t *testing.T) {
	tests := []struct {
		status string
		emoji  string
		label  string
	}{
		{"timed_out", ":hourglass:", "Analysis Timed Out"},
		{"cancelled", ":no_entry_sign:", "Analysis Cancelled"},
	}

	for _, tc := range tests {
		t.Run(tc.status, func(t *testing.T) {
			blocks := BuildTerminalMessage(SessionCompletedInput{
				SessionID: "sess-5",
				Status:    tc.status,
			}, "https://dash.example.com")

			header := sectionText(t, blocks[0])
			assert.Contains(t, header, tc.emoji)
			assert.Contains(t, header, tc.label)
		})
	}
}

func TestTruncateForSlack(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", truncateForSlack("hello"))
	})

	t.Run("exactly at limit unchanged", func(t *testing.T) {
		text := strings.Repeat("a", maxBlockTextLength)
		assert.Equal(t, text, truncateForSlack(text))
	})

	t.Run("over the limit gets marker", func(t *testing.T) {
		text := strings.Repeat("a", maxBlockTextLength+100)
		got := truncateForSlack(text)
		assert.Less(t, len(got), len(text))
		assert.Contains(t, got, "truncated")
	})

	t.Run("cuts by rune not byte", func(t *testing.T) {
		text := strings.Repeat("🔥", maxBlockTextLength+10)
		got := truncateForSlack(text)
		assert.Contains(t, got, "truncated")
		assert.True(t, utf8.ValidString(got))

		prefix := strings.Split(got, "\n\n_...")[0]
		assert.Equal(t, maxBlockTextLength, utf8.RuneCountInString(prefix))
	})
}
