package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dyike/GammaPulse/internal/models"
)

// FormatAnalysisMessage renders one pipeline result as the Telegram
// HTML message body.
func FormatAnalysisMessage(level models.ZeroGammaLevel, history models.PriceHistory, analysis models.AnalysisResult, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s Market Analysis</b>\n", level.Symbol))
	b.WriteString(fmt.Sprintf("<i>%s</i>\n\n", now.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("<b>Current Price:</b> $%s\n", history.CurrentPrice.StringFixed(2)))
	b.WriteString(fmt.Sprintf("<b>Zero Gamma Level:</b> $%.2f\n\n", level.Strike))
	b.WriteString("<b>Analysis:</b>\n")
	b.WriteString(htmlify(analysis.Text))
	return b.String()
}

// htmlify escapes model-generated text for Telegram's HTML parse mode
// and turns the **label** markers into bold tags. A dangling marker is
// closed so the message stays parseable.
func htmlify(text string) string {
	escaped := html.EscapeString(text)

	var sb strings.Builder
	bold := false
	for {
		idx := strings.Index(escaped, "**")
		if idx < 0 {
			sb.WriteString(escaped)
			break
		}
		sb.WriteString(escaped[:idx])
		if bold {
			sb.WriteString("</b>")
		} else {
			sb.WriteString("<b>")
		}
		bold = !bold
		escaped = escaped[idx+2:]
	}
	if bold {
		sb.WriteString("</b>")
	}
	return sb.String()
}
