package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/dyike/GammaPulse/internal/pipeline"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Background(lipgloss.Color("#1F2937")).
		Padding(0, 1).
		MarginBottom(1)

	summaryStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(1, 2).
		Width(80)

	analysisStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#F59E0B")).
		Padding(1, 2).
		Width(80)

	labelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6"))

	aboveStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	belowStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)

	successStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	warnStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B"))

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)
)

// ShowHeader prints the run banner for a symbol.
func ShowHeader(symbol string) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("⚡ GammaPulse | %s Zero Gamma Briefing", symbol)))
}

// ShowResult renders a completed run: the market snapshot, the
// generated analysis, and the delivery status.
func ShowResult(result *pipeline.Result) {
	fmt.Println(summaryStyle.Render(formatSummary(result)))
	fmt.Println(analysisStyle.Render(formatAnalysis(result)))
	showNotification(result)
}

func formatSummary(result *pipeline.Result) string {
	var content strings.Builder

	content.WriteString("📊 Market Snapshot\n\n")
	content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Symbol:"), result.Level.Symbol))
	content.WriteString(fmt.Sprintf("%s $%s\n", labelStyle.Render("Current Price:"), result.History.CurrentPrice.StringFixed(2)))
	content.WriteString(fmt.Sprintf("%s $%.2f", labelStyle.Render("Zero Gamma Level:"), result.Level.Strike))
	if result.Level.TradeDate != "" {
		content.WriteString(fmt.Sprintf(" (as of %s)", result.Level.TradeDate))
	}
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Spot vs Zero Gamma:"), formatDistance(result)))
	content.WriteString(fmt.Sprintf("%s %d daily bars", labelStyle.Render("History Window:"), len(result.History.Records)))

	return content.String()
}

// formatDistance reports how far spot trades from the zero gamma
// strike, styled by which side of the flip point it sits on.
func formatDistance(result *pipeline.Result) string {
	strike := decimal.NewFromFloat(result.Level.Strike)
	if strike.IsZero() || result.History.CurrentPrice.IsZero() {
		return "n/a"
	}

	diff := result.History.CurrentPrice.Sub(strike)
	pct := diff.Div(strike).Mul(decimal.NewFromInt(100))

	if diff.IsNegative() {
		return belowStyle.Render(fmt.Sprintf("%s (%s%%) below", diff.StringFixed(2), pct.StringFixed(2)))
	}
	return aboveStyle.Render(fmt.Sprintf("+%s (+%s%%) above", diff.StringFixed(2), pct.StringFixed(2)))
}

func formatAnalysis(result *pipeline.Result) string {
	var content strings.Builder

	content.WriteString("🧠 Analysis")
	if result.Analysis.Model != "" {
		content.WriteString(fmt.Sprintf(" (%s)", result.Analysis.Model))
	}
	content.WriteString("\n\n")
	content.WriteString(result.Analysis.Text)

	return content.String()
}

func showNotification(result *pipeline.Result) {
	if result.Notification.Delivered {
		fmt.Println(successStyle.Render("✅ Telegram notification delivered"))
		return
	}

	msg := "⚠️  Telegram notification failed"
	if result.Notification.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, result.Notification.Detail)
	}
	fmt.Println(warnStyle.Render(msg))
}

// ShowError prints a fatal run error.
func ShowError(err error) {
	fmt.Println(errorStyle.Render(fmt.Sprintf("❌ Error: %s", err.Error())))
}

// ShowInfo prints an informational line.
func ShowInfo(message string) {
	fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Render(fmt.Sprintf("ℹ️  %s", message)))
}
