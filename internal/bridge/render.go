// ABOUTME: Turns core replies into Matrix message content
// ABOUTME: Numbered option lists, with markdown bodies rendered to HTML

package bridge

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"maunium.net/go/mautrix/event"

	"github.com/kioskbot/kiosk/internal/dialog"
)

// renderReply builds the Matrix message content for a core reply: the
// display text followed by a numbered option list. The plain body is the
// fallback; the formatted body renders the text as markdown HTML.
func renderReply(reply dialog.Reply) *event.MessageEventContent {
	var plain strings.Builder
	plain.WriteString(reply.Text)
	for i, opt := range reply.Options {
		if i == 0 {
			plain.WriteString("\n")
		}
		plain.WriteString(fmt.Sprintf("\n%d. %s", i+1, opt.Label))
	}

	content := &event.MessageEventContent{
		MsgType: event.MsgText,
		Body:    plain.String(),
	}

	if html, ok := markdownToHTML(reply.Text, reply.Options); ok {
		content.Format = event.FormatHTML
		content.FormattedBody = html
	}
	return content
}

// markdownToHTML renders the reply text through goldmark and appends the
// options as an ordered list. Returns ok=false when rendering fails, in
// which case the plain body stands alone.
func markdownToHTML(text string, opts []dialog.Option) (string, bool) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		return "", false
	}
	if len(opts) > 0 {
		buf.WriteString("<ol>")
		for _, opt := range opts {
			buf.WriteString("<li>")
			buf.WriteString(escapeHTML(opt.Label))
			buf.WriteString("</li>")
		}
		buf.WriteString("</ol>")
	}
	return buf.String(), true
}

func escapeHTML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
