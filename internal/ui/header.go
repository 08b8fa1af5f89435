package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/stockpulse/internal/state"
)

// renderHeader renders the status bar: service health, rate limit and
// countdown.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := "  "

	parts := []string{
		bg.Render("stockpulse", styles.Logo),
		m.healthBadge(styles, bg),
		m.rateLimitBadge(styles, bg),
	}

	h := m.snapshot.Health
	if m.snapshot.HasHealth && h.APIKeyConfigured != nil && !*h.APIKeyConfigured {
		parts = append(parts, bg.Render("upstream key missing", styles.WarningText.Bold(true)))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, sep))
}

func (m Model) healthBadge(styles Styles, bg BgStyle) string {
	if !m.snapshot.HasHealth {
		return bg.Render("checking service...", styles.WarningText.Bold(true))
	}
	h := m.snapshot.Health
	if h.Healthy() {
		return bg.Render("● online", styles.SuccessText)
	}
	label := "● offline"
	if h.Detail != "" {
		label += ": " + truncate(h.Detail, 48)
	}
	return bg.Render(label, styles.DangerText)
}

func (m Model) rateLimitBadge(styles Styles, bg BgStyle) string {
	if !m.snapshot.HasRateLimit {
		return ""
	}
	rl := m.snapshot.RateLimit
	if !rl.IsLimited {
		if rl.Message == "" {
			return bg.Render("ready", styles.MutedText)
		}
		return bg.Render(truncate(rl.Message, 48), styles.MutedText)
	}
	label := "rate limited"
	if left := m.snapshot.Countdown.SecondsLeft; left > 0 {
		label = fmt.Sprintf("rate limited · %s", formatCountdown(left))
	} else if rl.Message != "" {
		label = "rate limited: " + truncate(rl.Message, 40)
	}
	return bg.Render(label, styles.WarningText.Bold(true))
}

// renderCommandBar renders the key hints.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var parts []string
	for _, b := range m.keys.commandBindings() {
		h := b.Help()
		keyStyle := styles.AccentText
		if b.Help().Key == m.keys.Submit.Help().Key {
			if ok, _ := m.snapshot.CanSubmit(); !ok {
				keyStyle = styles.FaintText
			}
		}
		parts = append(parts, bg.Render("<"+h.Key+">", keyStyle)+bg.Spaces(1)+bg.Render(h.Desc, styles.MutedText))
	}
	parts = append(parts, bg.Render(m.theme.Name, styles.FaintText))
	return styles.Footer.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderStatusLine shows the gate state, a transient notice or the spinner.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles()
	line := lipgloss.NewStyle().Padding(0, 1)

	if m.snapshot.Analysis.Phase == state.PhasePending {
		return line.Render(m.spinner.View() + styles.InfoText.Render(" analyzing "+m.snapshot.Analysis.Query))
	}
	if m.notice != "" {
		return line.Render(styles.WarningText.Render(m.notice))
	}
	if ok, reason := m.snapshot.CanSubmit(); !ok {
		return line.Render(styles.MutedText.Render("submissions paused: " + string(reason)))
	}
	return line.Render(styles.FaintText.Render("ready"))
}

func formatCountdown(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
}
