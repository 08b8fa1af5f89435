package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/five82/stockpulse/internal/scoring"
	"github.com/five82/stockpulse/internal/state"
)

// renderAnalysis renders the controller state for the result viewport.
func renderAnalysis(a state.Analysis, styles Styles, width int) string {
	switch a.Phase {
	case state.PhasePending:
		return styles.MutedText.Render(fmt.Sprintf("Analyzing %s...", a.Query))
	case state.PhaseFailed:
		return renderFailure(a, styles, width)
	case state.PhaseSucceeded:
		return renderSuccess(a, styles, width)
	default:
		return styles.MutedText.Render("Enter a ticker or company name and press enter.")
	}
}

func renderFailure(a state.Analysis, styles Styles, width int) string {
	if a.Err == nil {
		return ""
	}
	var b strings.Builder
	title := "Analysis failed"
	if a.Query != "" {
		title += " for " + a.Query
	}
	b.WriteString(styles.DangerText.Render(title))
	b.WriteString("\n\n")
	b.WriteString(wrap(styles.Text, width).Render(a.Err.Message))
	b.WriteString("\n")
	if advice := a.Err.Advice(); advice != "" {
		b.WriteString("\n")
		b.WriteString(wrap(styles.WarningText, width).Render(advice))
		b.WriteString("\n")
	}
	return b.String()
}

func renderSuccess(a state.Analysis, styles Styles, width int) string {
	r := a.Result
	if r == nil {
		return ""
	}
	var b strings.Builder

	name := r.Symbol
	if name == "" {
		name = a.Query
	}
	if r.CompanyName != "" {
		name += "  " + r.CompanyName
	}
	b.WriteString(styles.AccentText.Bold(true).Render(name))
	b.WriteString("\n\n")

	if v := a.Verdict; v != nil {
		b.WriteString(styles.TierStyle(v.Tier).Render(v.Tier.Label()))
		b.WriteString("  ")
		b.WriteString(styles.PolarityStyle(v.Polarity).Render(strings.ToUpper(strings.TrimSpace(r.Recommendation))))
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("  confidence %d/100", r.Confidence)))
		b.WriteString("\n")
		for _, line := range v.Guidance {
			b.WriteString(wrap(styles.Text, width).Render(line))
			b.WriteString("\n")
		}
	}

	if r.Summary != "" {
		b.WriteString("\n")
		b.WriteString(wrap(styles.Text, width).Render(r.Summary))
		b.WriteString("\n")
	}

	writeList(&b, "Supporting factors", r.SupportingFactors, styles.SuccessText.UnsetBold(), styles, width)
	writeList(&b, "Risk factors", r.RiskFactors, styles.WarningText, styles, width)

	if metrics := metricRows(r.Metrics); len(metrics) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.SectionTitle.Render("Metrics"))
		b.WriteString("\n")
		for _, row := range metrics {
			b.WriteString(styles.MutedText.Render(fmt.Sprintf("  %-14s", row[0])))
			b.WriteString(styles.Text.Render(row[1]))
			b.WriteString("\n")
		}
	}

	if len(r.News) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.SectionTitle.Render("News"))
		b.WriteString("\n")
		for _, item := range r.News {
			b.WriteString(newsLine(item, styles, width))
			b.WriteString("\n")
		}
	}

	if len(r.Extra) > 0 {
		keys := make([]string, 0, len(r.Extra))
		for k := range r.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("Other fields: " + strings.Join(keys, ", ")))
		b.WriteString("\n")
	}

	footer := fmt.Sprintf("Analyzed in %s", a.FinishedAt.Sub(a.StartedAt).Round(100*time.Millisecond))
	if at := r.ParsedAnalyzedAt(); !at.IsZero() {
		footer += " · data as of " + at.Local().Format("2006-01-02 15:04")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(footer))
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string, bullet lipgloss.Style, styles Styles, width int) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(styles.SectionTitle.Render(title))
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString(bullet.Render("  • "))
		b.WriteString(wrap(styles.Text, width-4).Render(item))
		b.WriteString("\n")
	}
}

func newsLine(item scoring.NewsItem, styles Styles, width int) string {
	var meta []string
	if item.Source != "" {
		meta = append(meta, item.Source)
	}
	if t := item.ParsedPublishedAt(); !t.IsZero() {
		meta = append(meta, t.Local().Format("Jan 2"))
	}
	if item.Sentiment != "" {
		meta = append(meta, item.Sentiment)
	}
	line := styles.Text.Render("  " + truncate(item.Title, maxWidth(width-4, 20)))
	if len(meta) > 0 {
		line += styles.MutedText.Render("  (" + strings.Join(meta, ", ") + ")")
	}
	return line
}

// metricRows returns label/value pairs for the metrics the service sent.
func metricRows(m scoring.Metrics) [][2]string {
	var rows [][2]string
	add := func(label string, v decimal.NullDecimal, format func(decimal.Decimal) string) {
		if v.Valid {
			rows = append(rows, [2]string{label, format(v.Decimal)})
		}
	}
	money := func(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

	add("Price", m.CurrentPrice, money)
	add("Change", m.ChangePercent, signedPercent)
	add("Target", m.TargetPrice, money)
	if upside, ok := m.Upside(); ok {
		rows = append(rows, [2]string{"Upside", signedPercent(upside)})
	}
	add("P/E", m.PERatio, func(d decimal.Decimal) string { return d.StringFixed(2) })
	add("Market cap", m.MarketCap, func(d decimal.Decimal) string { return "$" + compactNumber(d) })
	add("Volume", m.Volume, compactNumber)
	return rows
}

func wrap(style lipgloss.Style, width int) lipgloss.Style {
	if width <= 0 {
		return style
	}
	return style.Width(width)
}

func maxWidth(a, b int) int {
	if a > b {
		return a
	}
	return b
}
