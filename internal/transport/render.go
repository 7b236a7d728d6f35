package transport

import (
	"fmt"
	"strings"

	"github.com/ClaraBenejam/PAWSture/internal/dispatcher"
	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
)

// markdownEscaper escapes the Telegram Markdown reserved characters so a
// user-controlled string (an emotion label, a future free-text bullet)
// cannot break message formatting.
var markdownEscaper = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "`", "\\`",
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func urgencyIcon(u model.Urgency) string {
	if u == model.UrgencyHigh {
		return "\U0001F6A8" // rotating light
	}
	return "ℹ️" // information
}

// renderText renders the body shared by both the button-bearing and
// button-less variants: urgency icon, triggered user id, up to 3 issue
// bullets, activity name/description/duration/steps (§6).
func renderText(msg dispatcher.OutboundMessage) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s Well-being alert for user *%s*\n", urgencyIcon(msg.Urgency), escape(msg.TriggeredUserID))
	for _, bullet := range msg.Bullets {
		fmt.Fprintf(&b, "• %s\n", escape(bullet))
	}

	if msg.Activity.Name == "" {
		return b.String()
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "*%s* (%s)\n", escape(msg.Activity.Name), msg.Activity.Duration.String())
	if msg.Activity.Description != "" {
		fmt.Fprintf(&b, "_%s_\n", escape(msg.Activity.Description))
	}
	for i, step := range msg.Activity.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, escape(step))
	}

	return b.String()
}

func renderButtons(recommendationID string) []inlineButton {
	return []inlineButton{
		{Text: "✅ Accept", CallbackData: "accept_" + recommendationID},
		{Text: "⏳ Postpone", CallbackData: "postpone_" + recommendationID},
		{Text: "❌ Reject", CallbackData: "reject_" + recommendationID},
	}
}
