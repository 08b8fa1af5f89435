package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/stockpulse/internal/session"
	"github.com/five82/stockpulse/internal/state"
)

// chromeRows is the number of fixed rows above the result viewport:
// header, command bar, input and status line.
const chromeRows = 4

// Session is the part of session.Session the UI drives.
type Session interface {
	Snapshot() state.Snapshot
	Subscribe() (<-chan state.Event, func())
	CanSubmit() (bool, state.BlockReason)
	Submit(ctx context.Context, raw string) (state.Analysis, error)
	RefreshRateLimit(ctx context.Context) state.RateLimitStatus
	Reconnect(ctx context.Context) state.HealthStatus
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Session   Session
	LogPath   string
	ThemeName string
	// RefreshTick drives the clock and log pane refresh. Zero means one second.
	RefreshTick time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx         context.Context
	session     Session
	events      <-chan state.Event
	unsubscribe func()
	logPath     string
	refreshTick time.Duration
	keys        keyMap

	// UI state
	theme  Theme
	width  int
	height int
	ready  bool
	notice string

	// Data state
	snapshot state.Snapshot

	// Widgets
	input    textinput.Model
	spinner  spinner.Model
	spinning bool
	result   viewport.Model

	// Diagnostics pane
	showLogs bool
	logLines []string
	logErr   error
}

// New creates a new Bubble Tea model subscribed to the session.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.RefreshTick
	if tick == 0 {
		tick = time.Second
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}
	theme := GetTheme(themeName)

	input := textinput.New()
	input.Placeholder = "Ticker or company name"
	input.Prompt = "› "
	input.CharLimit = 64
	input.Focus()

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent))

	m := Model{
		ctx:         ctx,
		session:     opts.Session,
		logPath:     opts.LogPath,
		refreshTick: tick,
		keys:        defaultKeyMap(),
		theme:       theme,
		input:       input,
		spinner:     spin,
		result:      viewport.New(0, 0),
	}
	if m.session != nil {
		m.events, m.unsubscribe = m.session.Subscribe()
		m.snapshot = m.session.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		tickCmd(m.refreshTick),
	}
	if m.events != nil {
		cmds = append(cmds, waitForEventCmd(m.events))
	}
	if m.session != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.session))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.refreshTick)}
		if m.showLogs && m.logPath != "" {
			cmds = append(cmds, readLogTailCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case eventMsg:
		return m, tea.Batch(fetchSnapshotCmd(m.session), waitForEventCmd(m.events))

	case eventsClosedMsg:
		m.events = nil
		return m, nil

	case snapshotMsg:
		return m.applySnapshot(state.Snapshot(msg))

	case submitDoneMsg:
		m.notice = submitNotice(msg.err)
		return m, fetchSnapshotCmd(m.session)

	case probeDoneMsg:
		m.notice = ""
		return m, fetchSnapshotCmd(m.session)

	case logTailMsg:
		m.logLines = msg.lines
		m.logErr = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.snapshot.Analysis.Phase != state.PhasePending {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Padding(0, 1).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")
	b.WriteString(m.result.View())
	if m.showLogs {
		b.WriteString("\n")
		b.WriteString(m.renderDiagnostics(m.diagnosticsRows()))
	}
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.RefreshRateLimit):
		if m.session == nil {
			return m, nil
		}
		m.notice = "refreshing rate limit..."
		return m, refreshRateLimitCmd(m.ctx, m.session)

	case key.Matches(msg, m.keys.Reconnect):
		if m.session == nil {
			return m, nil
		}
		m.notice = "reconnecting..."
		return m, reconnectCmd(m.ctx, m.session)

	case key.Matches(msg, m.keys.ToggleLogs):
		m.showLogs = !m.showLogs
		m.layout()
		if m.showLogs && m.logPath != "" {
			return m, readLogTailCmd(m.logPath)
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
		m.refreshResult()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.result.PageUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.result.PageDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the input to the session if the admission gate is open.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.session == nil {
		return m, nil
	}
	if ok, reason := m.session.CanSubmit(); !ok {
		m.notice = "cannot analyze: " + string(reason)
		return m, nil
	}
	query := m.input.Value()
	m.notice = ""
	m.input.Reset()
	return m, submitCmd(m.ctx, m.session, query)
}

// applySnapshot stores s and starts the spinner when an analysis begins.
func (m Model) applySnapshot(s state.Snapshot) (tea.Model, tea.Cmd) {
	phaseChanged := s.Analysis.Phase != m.snapshot.Analysis.Phase
	m.snapshot = s
	m.refreshResult()
	if phaseChanged {
		m.result.GotoTop()
	}
	if s.Analysis.Phase == state.PhasePending && !m.spinning {
		m.spinning = true
		return m, m.spinner.Tick
	}
	return m, nil
}

// layout sizes the widgets for the current window.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	m.input.Width = maxWidth(m.width-6, 10)
	m.result.Width = m.width
	height := m.height - chromeRows
	if m.showLogs {
		height -= m.diagnosticsRows()
	}
	if height < 1 {
		height = 1
	}
	m.result.Height = height
	m.refreshResult()
}

func (m Model) diagnosticsRows() int {
	return diagnosticsHeight(m.height - chromeRows)
}

func (m *Model) refreshResult() {
	m.result.SetContent(renderAnalysis(m.snapshot.Analysis, m.theme.Styles(), maxWidth(m.width-2, 20)))
}

func submitNotice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrBusy):
		return "an analysis is already in progress"
	default:
		return err.Error()
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type eventMsg state.Event

type eventsClosedMsg struct{}

type submitDoneMsg struct {
	analysis state.Analysis
	err      error
}

type probeDoneMsg struct{}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(s Session) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(s.Snapshot())
	}
}

func waitForEventCmd(events <-chan state.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func submitCmd(ctx context.Context, s Session, query string) tea.Cmd {
	return func() tea.Msg {
		a, err := s.Submit(ctx, query)
		return submitDoneMsg{analysis: a, err: err}
	}
}

func refreshRateLimitCmd(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		s.RefreshRateLimit(ctx)
		return probeDoneMsg{}
	}
}

func reconnectCmd(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		s.Reconnect(ctx)
		return probeDoneMsg{}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	if m.unsubscribe != nil {
		defer m.unsubscribe()
	}
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
