package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/stockpulse/internal/logtail"
)

const diagnosticsLines = 200

type logTailMsg struct {
	lines []string
	err   error
}

func readLogTailCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Tail(path, diagnosticsLines)
		return logTailMsg{lines: lines, err: err}
	}
}

// diagnosticsHeight is the pane height for a body of the given height.
func diagnosticsHeight(body int) int {
	h := body / 3
	if h > 12 {
		h = 12
	}
	if h < 3 {
		h = 3
	}
	return h
}

// renderDiagnostics renders the newest log lines that fit in height rows,
// including the title row.
func (m Model) renderDiagnostics(height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	title := bg.Render("Log", styles.SectionTitle) + bg.Spaces(1) +
		bg.Render(truncateMiddle(m.logPath, maxWidth(m.width-8, 10)), styles.FaintText)

	rows := []string{bg.FillLine(title, m.width)}
	body := height - 1
	switch {
	case m.logPath == "":
		rows = append(rows, bg.FillLine(bg.Render("logging disabled", styles.MutedText), m.width))
	case m.logErr != nil:
		rows = append(rows, bg.FillLine(bg.Render(m.logErr.Error(), styles.DangerText), m.width))
	case len(m.logLines) == 0:
		rows = append(rows, bg.FillLine(bg.Render("no log entries yet", styles.MutedText), m.width))
	default:
		lines := m.logLines
		if len(lines) > body {
			lines = lines[len(lines)-body:]
		}
		for _, line := range lines {
			rows = append(rows, bg.FillLine(bg.Render(truncate(line, maxWidth(m.width-1, 10)), logLineStyle(line, styles)), m.width))
		}
	}
	for len(rows) < height {
		rows = append(rows, bg.FillLine("", m.width))
	}
	return strings.Join(rows, "\n")
}

func logLineStyle(line string, styles Styles) lipgloss.Style {
	switch {
	case hasLevel(line, "ERROR"):
		return styles.DangerText
	case hasLevel(line, "WARN"):
		return styles.WarningText
	case hasLevel(line, "DEBUG"):
		return styles.FaintText
	default:
		return styles.Text
	}
}

func hasLevel(line, level string) bool {
	return strings.HasPrefix(line, level+" ") || strings.Contains(line, " "+level+" ")
}
