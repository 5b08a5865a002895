package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"MetricRecipes/internal/model"
	"MetricRecipes/internal/recorder"
)

// FormatValue renders a result's value for display.
func FormatValue(res model.RecipeResult) string {
	switch res.Kind {
	case model.KindNumber:
		return fmt.Sprintf("%.2f", res.Value)
	case model.KindNoValue:
		return "no value"
	case model.KindFailed:
		return "failed: " + res.Error
	default:
		return "unknown"
	}
}

// FormatRunReport formats an evaluation run into a Telegram message.
func FormatRunReport(run *recorder.Run) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Recipe report</b> | %s\n\n", html.EscapeString(run.DateKey)))
	for _, res := range run.Results {
		b.WriteString(fmt.Sprintf("  %s: %s\n", html.EscapeString(res.Recipe), html.EscapeString(FormatValue(res))))
	}

	counts := run.Counts()
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("  %d numbers, %d no value, %d unknown",
		counts[model.KindNumber], counts[model.KindNoValue], counts[model.KindUnknown]))
	if n := counts[model.KindFailed]; n > 0 {
		b.WriteString(fmt.Sprintf(", %d failed", n))
	}
	b.WriteString(fmt.Sprintf("\n  run %s (%s)\n", shortID(run.ID), run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond)))
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatLedger formats the latest value of every recipe.
func FormatLedger(state *model.LedgerState, results []model.RecipeResult) string {
	var b strings.Builder
	b.WriteString("📦 <b>Latest values</b>\n\n")
	if len(results) == 0 {
		b.WriteString("No runs recorded yet.\n")
		return b.String()
	}
	for _, res := range results {
		b.WriteString(fmt.Sprintf("%s @ %s: %s\n",
			html.EscapeString(res.Recipe), html.EscapeString(res.DateKey), html.EscapeString(FormatValue(res))))
	}
	if !state.LastRunAt.IsZero() {
		b.WriteString(fmt.Sprintf("\nLast run: %s\n", state.LastRunAt.Format("2006-01-02 15:04")))
	}
	return b.String()
}

// FormatHistory formats a recipe's recent results, newest first.
func FormatHistory(recipe string, results []model.RecipeResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>%s</b> history\n\n", html.EscapeString(recipe)))
	if len(results) == 0 {
		b.WriteString("No results recorded.\n")
		return b.String()
	}
	for _, res := range results {
		b.WriteString(fmt.Sprintf("%s: %s\n", html.EscapeString(res.DateKey), html.EscapeString(FormatValue(res))))
	}
	return b.String()
}
