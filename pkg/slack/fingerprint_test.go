package slack

import (
	"testing"

	goslack "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Pod CRASHED in namespace", "pod crashed in namespace"},
		{"collapses whitespace runs", "pod   crashed\t\tin\n\nnamespace", "pod crashed in namespace"},
		{"trims edges", "  hello  ", "hello"},
		{"empty", "", ""},
		{"mixed", "  ALERT:   Pod   nginx-abc   OOMKilled  ", "alert: pod nginx-abc oomkilled"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeText(tc.input))
		})
	}
}

func TestCollectMessageText(t *testing.T) {
	tests := []struct {
		name string
		msg  goslack.Message
		want string
	}{
		{
			name: "plain text",
			msg:  goslack.Message{Msg: goslack.Msg{Text: "hello world"}},
			want: "hello world",
		},
		{
			name: "attachment text appended",
			msg: goslack.Message{Msg: goslack.Msg{
				Text:        "alert",
				Attachments: []goslack.Attachment{{Text: "pod crashed"}},
			}},
			want: "alert pod crashed",
		},
		{
			name: "attachment fallback appended",
			msg: goslack.Message{Msg: goslack.Msg{
				Text:        "alert",
				Attachments: []goslack.Attachment{{Fallback: "pod crashed fallback"}},
			}},
			want: "alert pod crashed fallback",
		},
		{
			name: "attachment text and fallback both kept",
			msg: goslack.Message{Msg: goslack.Msg{
				Attachments: []goslack.Attachment{{Text: "att text", Fallback: "att fallback"}},
			}},
			want: "att text att fallback",
		},
		{
			name: "empty message",
			msg:  goslack.Message{},
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, collectMessageText(tc.msg))
		})
	}
}
