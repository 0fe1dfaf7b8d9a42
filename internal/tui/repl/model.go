// ============================================================================
// funlang - Integer Language Toolchain
// ============================================================================
//
// Package:     repl
// Description: Main Bubbletea model for the interactive REPL
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package repl

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	mdwerror "github.com/msto63/funlang/foundation/core/error"
	"github.com/msto63/funlang/foundation/lang"
	"github.com/msto63/funlang/internal/history/store"
	"github.com/msto63/funlang/pkg/core/version"
)

// REPL commands
const (
	CmdQuit    = ":quit"
	CmdReset   = ":reset"
	CmdGlobals = ":globals"
	CmdClear   = ":clear"
	CmdHelp    = ":help"
)

// Config holds REPL configuration
type Config struct {
	// Session keeps definitions between inputs (required)
	Session *lang.Session

	// History records every evaluation. Nil disables recording.
	History store.Store

	// HistoryFile persists the input history. Empty disables it.
	HistoryFile string

	// Timeout bounds a single evaluation. Zero means no limit.
	Timeout time.Duration
}

// Model is the main Bubbletea model for the REPL
type Model struct {
	// State
	width   int
	height  int
	ready   bool
	running bool
	cancel  context.CancelFunc
	evals   int

	// Components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	entries []Entry

	// Input history
	inputHistory []string
	historyIndex int    // -1 while editing a new input
	currentInput string // input saved while browsing history

	config Config
}

// New creates a new REPL model
func New(cfg Config) Model {
	ta := textarea.New()
	ta.Placeholder = "Enter a program... (Enter to run, Alt+Enter for a new line)"
	ta.Focus()
	ta.CharLimit = 64 * 1024
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = FocusedInputStyle
	ta.BlurredStyle.Base = InputStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return Model{
		textarea:     ta,
		spinner:      sp,
		inputHistory: LoadInputHistory(cfg.HistoryFile),
		historyIndex: -1,
		entries: []Entry{
			{Kind: EntrySystem, Text: "Type :help for commands."},
		},
		config: cfg,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2 // Logo + subtitle
		footerHeight := 9 // Input + status bar + help
		viewportHeight := msg.Height - headerHeight - footerHeight
		if viewportHeight < 3 {
			viewportHeight = 3
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = viewportHeight
		}
		m.textarea.SetWidth(msg.Width - 4)
		m.updateViewportContent()
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		if m.running {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case evalResultMsg:
		m.running = false
		m.cancel = nil
		m.evals++
		m.appendResult(msg)
		m.textarea.Focus()
		m.updateViewportContent()
		m.viewport.GotoBottom()
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case tea.KeyCtrlL:
		m.entries = nil
		m.updateViewportContent()
		return m, nil

	case tea.KeyEsc:
		if m.running && m.cancel != nil {
			m.cancel()
		}
		return m, nil

	case tea.KeyPgUp:
		m.viewport.ViewUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.ViewDown()
		return m, nil
	}

	if m.running {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		input := strings.TrimSpace(m.textarea.Value())
		if input == "" {
			return m, nil
		}
		m.remember(input)
		m.textarea.Reset()

		if strings.HasPrefix(input, ":") {
			return m.runCommand(input)
		}

		m.entries = append(m.entries, Entry{Kind: EntryInput, Text: input})
		m.running = true
		m.textarea.Blur()
		m.updateViewportContent()
		m.viewport.GotoBottom()
		return m, tea.Batch(m.spinner.Tick, m.evaluate(input))

	case tea.KeyUp:
		if len(m.inputHistory) > 0 {
			if m.historyIndex == -1 {
				m.currentInput = m.textarea.Value()
				m.historyIndex = len(m.inputHistory) - 1
			} else if m.historyIndex > 0 {
				m.historyIndex--
			}
			m.textarea.SetValue(m.inputHistory[m.historyIndex])
			m.textarea.CursorEnd()
		}
		return m, nil

	case tea.KeyDown:
		if m.historyIndex != -1 {
			if m.historyIndex < len(m.inputHistory)-1 {
				m.historyIndex++
				m.textarea.SetValue(m.inputHistory[m.historyIndex])
			} else {
				m.historyIndex = -1
				m.textarea.SetValue(m.currentInput)
			}
			m.textarea.CursorEnd()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// remember appends input to the history unless it repeats the last entry
func (m *Model) remember(input string) {
	if len(m.inputHistory) == 0 || m.inputHistory[len(m.inputHistory)-1] != input {
		m.inputHistory = append(m.inputHistory, input)
		if len(m.inputHistory) > MaxInputHistory {
			m.inputHistory = m.inputHistory[len(m.inputHistory)-MaxInputHistory:]
		}
		_ = SaveInputHistory(m.config.HistoryFile, m.inputHistory)
	}
	m.historyIndex = -1
	m.currentInput = ""
}

// runCommand executes a colon command
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	switch strings.Fields(input)[0] {
	case CmdQuit, ":q":
		return m, tea.Quit

	case CmdReset:
		m.config.Session.Reset()
		m.system("Session reset.")

	case CmdGlobals:
		m.system(formatGlobals(m.config.Session.Globals()))

	case CmdClear:
		m.entries = nil

	case CmdHelp:
		m.system(strings.Join([]string{
			CmdReset + "    forget all variables and functions",
			CmdGlobals + "  list top-level variables",
			CmdClear + "    clear the transcript",
			CmdQuit + "     leave the REPL",
		}, "\n"))

	default:
		m.entries = append(m.entries, Entry{Kind: EntryError, Text: "unknown command " + input})
	}

	m.updateViewportContent()
	m.viewport.GotoBottom()
	return m, nil
}

func (m *Model) system(text string) {
	m.entries = append(m.entries, Entry{Kind: EntrySystem, Text: text})
}

// evaluate runs src in the session and records it
func (m *Model) evaluate(src string) tea.Cmd {
	var ctx context.Context
	var cancel context.CancelFunc
	if m.config.Timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), m.config.Timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	m.cancel = cancel

	session := m.config.Session
	history := m.config.History
	return func() tea.Msg {
		defer cancel()
		result, err := session.Eval(ctx, src)
		if history != nil {
			_ = history.Record(context.WithoutCancel(ctx), toRun(src, result, err))
		}
		return evalResultMsg{source: src, result: result, err: err}
	}
}

func (m *Model) appendResult(msg evalResultMsg) {
	var duration time.Duration
	if msg.result != nil {
		duration = msg.result.Duration
		if out := strings.TrimRight(msg.result.Output, "\n"); out != "" {
			m.entries = append(m.entries, Entry{Kind: EntryOutput, Text: out, Duration: duration})
		}
	}
	if msg.err != nil {
		m.entries = append(m.entries, Entry{Kind: EntryError, Text: "error: " + msg.err.Error(), Duration: duration})
	}
}

func toRun(src string, result *lang.Result, err error) *store.Run {
	run := &store.Run{Source: src, Origin: store.OriginREPL}
	if result != nil {
		run.Output = result.Output
		run.Duration = result.Duration
	}
	if err != nil {
		run.Error = err.Error()
		run.ErrorCode = string(mdwerror.GetCode(err))
		run.Line = lang.Line(err)
	}
	return run
}

func formatGlobals(globals map[string]int64) string {
	if len(globals) == 0 {
		return "No globals defined."
	}
	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("%s = %d", name, globals[name])
	}
	return strings.Join(lines, "\n")
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Starting REPL..."
	}

	var b strings.Builder
	b.WriteString(LogoStyle.Render(Logo) + "  " + SubHeaderStyle.Render("integer language, dynamic scope"))
	b.WriteString("\n")
	b.WriteString(TranscriptPanelStyle.Width(m.width - 2).Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.renderInputArea())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())
	return b.String()
}

func (m Model) renderInputArea() string {
	if m.running {
		return InputStyle.Width(m.width - 2).Render(m.spinner.View() + RunningStyle.Render(" Running... (Esc to cancel)"))
	}
	return FocusedInputStyle.Width(m.width - 2).Render(m.textarea.View())
}

func (m Model) renderStatusBar() string {
	left := fmt.Sprintf("evaluations: %d", m.evals)
	right := "v" + version.Language

	space := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if space < 2 {
		space = 2
	}
	return StatusBarStyle.Width(m.width - 2).Render(left + strings.Repeat(" ", space) + right)
}

func (m Model) renderHelpBar() string {
	items := []string{
		RenderKeyHint("Enter", "run"),
		RenderKeyHint("Alt+Enter", "newline"),
		RenderKeyHint("↑/↓", "history"),
		RenderKeyHint("Esc", "cancel"),
		RenderKeyHint("Ctrl+L", "clear"),
		RenderKeyHint("Ctrl+C", "quit"),
	}
	return HelpStyle.Render(strings.Join(items, "  "))
}

// updateViewportContent renders the transcript into the viewport
func (m *Model) updateViewportContent() {
	var content strings.Builder

	for _, e := range m.entries {
		switch e.Kind {
		case EntryInput:
			for i, line := range strings.Split(e.Text, "\n") {
				prefix := Prompt
				if i > 0 {
					prefix = strings.Repeat(" ", len(Prompt))
				}
				content.WriteString(PromptStyle.Render(prefix) + InputEchoStyle.Render(line) + "\n")
			}
		case EntryOutput:
			content.WriteString(OutputStyle.Render(e.Text) + "\n")
		case EntryError:
			content.WriteString(ErrorStyle.Render(e.Text) + "\n")
		case EntrySystem:
			content.WriteString(SystemStyle.Render(e.Text) + "\n")
		}
	}

	m.viewport.SetContent(content.String())
}

// Entries returns a copy of the transcript
func (m Model) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// Run starts the REPL TUI
func Run(cfg Config) error {
	if cfg.Session == nil {
		return mdwerror.New("session is required").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("repl.Run")
	}
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
