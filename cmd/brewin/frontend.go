package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	bruntime "github.com/gosuda/brewin/runtime"
)

type model struct {
	cfg      appConfig
	viewport viewport.Model
	input    textinput.Model
	ready    bool
	width    int
	height   int
	status   string
	running  bool
	failed   bool
	events   <-chan tea.Msg
	cancel   func()
	pending  *pendingInput
	lines    []transcriptLine
	tail     string
}

var (
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	traceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238")).Padding(0, 1)
)

func newModel(cfg appConfig) model {
	vp := viewport.New(
		viewport.WithWidth(80),
		viewport.WithHeight(20),
	)
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 4096
	ti.SetValue("")
	return model{
		cfg:      cfg,
		viewport: vp,
		input:    ti,
		status:   "starting",
	}
}

func startVM(cfg appConfig) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		events := make(chan tea.Msg, 256)
		go runVM(ctx, cfg, events)
		return vmStartedMsg{events: events, cancel: cancel}
	}
}

func waitVMEvent(events <-chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case msg, ok := <-events:
			if !ok {
				return nil
			}
			return msg
		case <-time.After(20 * time.Millisecond):
			return vmPollMsg{}
		}
	}
}

func sendInput(ch chan string, value string) {
	select {
	case ch <- value:
	default:
	}
}

func isEnterKey(msg tea.KeyMsg) bool {
	k := msg.Key()
	if k.Code == tea.KeyEnter || k.Code == tea.KeyKpEnter {
		return true
	}
	switch msg.String() {
	case "enter", "ctrl+m":
		return true
	default:
		return false
	}
}

func (m model) Init() tea.Cmd {
	return startVM(m.cfg)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		return m, nil

	case vmStartedMsg:
		m.events = msg.events
		m.cancel = msg.cancel
		m.running = true
		m.status = "running"
		return m, waitVMEvent(m.events)

	case vmOutputMsg:
		m.appendOutput(msg.out)
		return m, waitVMEvent(m.events)

	case vmTraceMsg:
		m.appendLine(transcriptLine{text: msg.text, trace: true})
		return m, waitVMEvent(m.events)

	case vmPollMsg:
		if m.running && m.pending == nil {
			return m, waitVMEvent(m.events)
		}
		return m, nil

	case vmPromptMsg:
		m.pending = &pendingInput{req: msg.req, resp: msg.resp}
		m.input.SetValue("")
		m.input.Placeholder = ""
		m.input.Focus()
		m.status = fmt.Sprintf("input (line %d)", msg.req.Line)
		m.resize()
		return m, nil

	case vmDoneMsg:
		m.running = false
		m.pending = nil
		m.input.Blur()
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		if msg.err != nil {
			m.failed = true
			m.status = "failed"
			m.appendLine(transcriptLine{text: errStyle.Render(formatError(msg.err, m.cfg.lines))})
		} else {
			m.status = "done"
		}
		m.resize()
		return m, nil

	case tea.KeyMsg:
		k := msg.Key()
		if ((k.Code == 'c' || k.Code == 'C') && k.Mod == tea.ModCtrl) || msg.String() == "ctrl+c" {
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}

		if m.pending != nil {
			if isEnterKey(msg) {
				val := m.input.Value()
				sendInput(m.pending.resp, val)
				m.pending = nil
				m.input.Blur()
				m.input.SetValue("")
				m.status = "running"
				m.resize()
				return m, waitVMEvent(m.events)
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "r":
			if m.running {
				return m, nil
			}
			m.clearForRestart()
			m.status = "restarting"
			return m, startVM(m.cfg)
		case "g", "home":
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) View() tea.View {
	if !m.ready {
		v := tea.NewView("initializing...")
		v.AltScreen = true
		return v
	}
	parts := []string{m.viewport.View()}
	if m.pending != nil {
		parts = append(parts, inputStyle.Render(m.input.View()))
	}
	parts = append(parts, statusStyle.Render(m.statusLine()))
	v := tea.NewView(strings.Join(parts, "\n"))
	v.AltScreen = true
	return v
}

func (m model) statusLine() string {
	keys := "q quit"
	if !m.running {
		keys = "r rerun  q quit"
	}
	return fmt.Sprintf("%s  %s  %s", filepath.Base(m.cfg.path), m.status, keys)
}

func (m *model) resize() {
	if m.height == 0 {
		return
	}
	footer := 1
	if m.pending != nil {
		footer++
	}
	vh := m.height - footer
	if vh < 1 {
		vh = 1
	}
	m.viewport.SetWidth(m.width)
	m.viewport.SetHeight(vh)
}

func (m *model) appendOutput(out bruntime.Output) {
	if !out.NewLine {
		m.tail += out.Text
		m.rebuildContent()
		return
	}
	m.appendLine(transcriptLine{text: m.tail + out.Text})
	m.tail = ""
}

func (m *model) appendLine(l transcriptLine) {
	m.lines = append(m.lines, l)
	m.rebuildContent()
}

func (m *model) rebuildContent() {
	rows := make([]string, 0, len(m.lines)+1)
	for _, l := range m.lines {
		if l.trace {
			rows = append(rows, traceStyle.Render(l.text))
			continue
		}
		rows = append(rows, l.text)
	}
	if m.tail != "" {
		rows = append(rows, m.tail)
	}
	content := strings.Join(rows, "\n")
	if content == "" {
		content = "(no output yet)"
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

func (m *model) clearForRestart() {
	m.lines = nil
	m.tail = ""
	m.failed = false
	m.viewport.SetContent("")
	m.pending = nil
	m.input.Blur()
	m.input.SetValue("")
}
