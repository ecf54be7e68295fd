package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"rankedlist/internal/model"
	"rankedlist/internal/trial"
)

const defaultWidth = 80

type tickMsg time.Time

type timeoutMsg struct{ id int }

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type appModel struct {
	ctrl *trial.Controller
	host *termHost
	cfg  model.TrialConfig

	keys   keyMap
	help   help.Model
	input  textinput.Model
	styles styles

	width  int
	height int
	prompt string

	cursor int
	// mouseDrag is set between a left press on a row and its release.
	mouseDrag bool
	status    string

	now      func() time.Time
	deadline time.Time
	done     bool
	aborted  bool
}

func newModel(ctrl *trial.Controller, host *termHost, now func() time.Time) appModel {
	cfg := ctrl.Config()
	in := textinput.New()
	in.Placeholder = cfg.AddButtonPrompt
	in.CharLimit = 120
	in.Prompt = "› "

	m := appModel{
		ctrl:   ctrl,
		host:   host,
		cfg:    cfg,
		keys:   defaultKeyMap(),
		help:   help.New(),
		input:  in,
		styles: defaultStyles(),
		width:  defaultWidth,
		now:    now,
	}
	m.prompt = renderPrompt(cfg, m.contentWidth())
	if cfg.TrialDuration > 0 {
		m.deadline = now().Add(time.Duration(cfg.TrialDuration) * time.Millisecond)
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if t := m.host.timer; t != nil && !t.canceled {
		id := t.id
		cmds = append(cmds, tea.Tick(t.d, func(time.Time) tea.Msg { return timeoutMsg{id: id} }), tick())
	}
	return tea.Batch(cmds...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.prompt = renderPrompt(m.cfg, m.contentWidth())
	case tickMsg:
		if !m.done {
			cmd = tick()
		}
	case timeoutMsg:
		m.host.fire(msg.id)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}
	return m.settle(cmd)
}

// settle runs after every message: it quits once the trial has finished and
// keeps the cursor on an existing row.
func (m appModel) settle(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if m.host.result != nil && !m.done {
		m.done = true
		return m, tea.Quit
	}
	if m.aborted {
		return m, tea.Quit
	}
	if n := len(m.host.view.Rows); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	return m, cmd
}

func (m *appModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		m.aborted = true
		return nil
	}
	if m.host.view.Add.Open {
		return m.handleAddKey(msg)
	}
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Add):
		if err := m.ctrl.OpenAdd(); err != nil {
			if errors.Is(err, trial.ErrItemLimit) {
				m.status = m.cfg.ItemLimitError
			}
			return nil
		}
		m.input.SetValue("")
		return m.input.Focus()
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Left):
		m.nudgeSlider(-1)
	case key.Matches(msg, m.keys.Right):
		m.nudgeSlider(1)
	case key.Matches(msg, m.keys.Scale):
		if len(msg.Runes) == 1 {
			_ = m.ctrl.SetScale(m.cursor, int(msg.Runes[0]-'1'))
		}
	case key.Matches(msg, m.keys.Delete):
		if m.dragSource() < 0 {
			_ = m.ctrl.Delete(m.cursor, nil)
		}
	case key.Matches(msg, m.keys.Grab):
		m.toggleGrab()
	case key.Matches(msg, m.keys.Cancel):
		if m.dragSource() >= 0 {
			_ = m.ctrl.DragEnd()
		}
	case key.Matches(msg, m.keys.Submit):
		if err := m.ctrl.Submit(nil); errors.Is(err, trial.ErrSubmitDisabled) {
			m.status = "Add an item first."
		}
	}
	return nil
}

func (m *appModel) handleAddKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		if err := m.ctrl.Add(m.input.Value(), nil); err == nil {
			m.input.Reset()
			m.input.Blur()
			m.cursor = len(m.host.view.Rows) - 1
		}
		return nil
	case key.Matches(msg, m.keys.Cancel):
		_ = m.ctrl.CancelAdd()
		m.input.Reset()
		m.input.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	_ = m.ctrl.SetDraft(m.input.Value())
	return cmd
}

// moveCursor moves the cursor and, while a row is grabbed, the hover mark
// with it.
func (m *appModel) moveCursor(delta int) {
	n := len(m.host.view.Rows)
	if n == 0 {
		return
	}
	next := min(max(m.cursor+delta, 0), n-1)
	if next == m.cursor {
		return
	}
	if m.dragSource() >= 0 {
		_ = m.ctrl.DragLeave(m.cursor)
		_ = m.ctrl.DragEnter(next)
	}
	m.cursor = next
}

func (m *appModel) nudgeSlider(dir int) {
	rows := m.host.view.Rows
	if m.cursor >= len(rows) {
		return
	}
	_ = m.ctrl.SetSlider(m.cursor, rows[m.cursor].Slider.Value+dir*m.cfg.Step)
}

// toggleGrab picks up the row under the cursor or drops the grabbed row
// there. Dropping on the grabbed row itself just lets go.
func (m *appModel) toggleGrab() {
	if !m.cfg.DraggableList {
		return
	}
	src := m.dragSource()
	switch {
	case src < 0:
		_ = m.ctrl.DragStart(m.cursor)
	case src == m.cursor:
		_ = m.ctrl.DragEnd()
	default:
		_ = m.ctrl.Drop(m.cursor, nil)
	}
}

func (m *appModel) handleMouse(msg tea.MouseMsg) {
	if !m.cfg.DraggableList || m.host.view.Add.Open {
		return
	}
	row := m.rowAt(msg.Y)
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if row < 0 {
			return
		}
		m.cursor = row
		if m.ctrl.DragStart(row) == nil {
			m.mouseDrag = true
		}
	case msg.Action == tea.MouseActionMotion && m.mouseDrag:
		if row < 0 || row == m.cursor {
			return
		}
		_ = m.ctrl.DragLeave(m.cursor)
		_ = m.ctrl.DragEnter(row)
		m.cursor = row
	case msg.Action == tea.MouseActionRelease && m.mouseDrag:
		m.mouseDrag = false
		if row < 0 {
			_ = m.ctrl.DragEnd()
			return
		}
		_ = m.ctrl.Drop(row, nil)
		m.cursor = row
	}
}

// dragSource is the grabbed row, or -1.
func (m appModel) dragSource() int {
	for _, r := range m.host.view.Rows {
		if r.Current {
			return r.Index
		}
	}
	return -1
}

func (m appModel) contentWidth() int {
	return max(min(m.width, 100)-4, 20)
}
