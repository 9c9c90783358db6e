package slack

import (
	"strings"

	goslack "github.com/slack-go/slack"
)

// normalizeText lowercases and collapses runs of whitespace so fingerprint
// matching survives Slack's reformatting of posted text.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// collectMessageText gathers the searchable text of a message, including
// attachment bodies and fallbacks where alert routers usually put content.
func collectMessageText(msg goslack.Message) string {
	var b strings.Builder
	appendPart := func(s string) {
		if s == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}

	appendPart(msg.Text)
	for _, att := range msg.Attachments {
		appendPart(att.Text)
		appendPart(att.Fallback)
	}
	return b.String()
}
