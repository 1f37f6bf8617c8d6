// Package tui is the terminal browse interface. It renders the reactive
// state graph and pushes user input back into it; all derivations happen
// in the derive engine, the TUI only displays and edits cells.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/osirenko/finch/internal/client"
	"github.com/osirenko/finch/internal/derive"
	"github.com/osirenko/finch/internal/model"
	"github.com/osirenko/finch/internal/state"
	"github.com/osirenko/finch/internal/tui/viewmodel"
)

// refreshedMsg reports a completed fetch. The client has already written
// the outcome into the state cells; the message only forces a repaint.
type refreshedMsg struct{}

// Model is the bubbletea model for the browse screen.
type Model struct {
	ctx      context.Context
	state    *state.AppState
	engine   *derive.Engine
	client   *client.Client
	expanded map[string]bool

	keys        KeyMap
	help        help.Model
	spinner     spinner.Model
	filterInput textinput.Model
	styles      Styles

	filterErr string
	cursor    int
	width     int
	height    int
	filtering bool
	showHelp  bool
	quitting  bool
}

// NewModel creates the browse model over an already-constructed state
// graph and API client.
func NewModel(ctx context.Context, s *state.AppState, e *derive.Engine, c *client.Client) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	ti := textinput.New()
	ti.Placeholder = "categories=food,gas"
	ti.Prompt = "filter> "
	ti.CharLimit = 128
	return Model{
		ctx:         ctx,
		state:       s,
		engine:      e,
		client:      c,
		expanded:    make(map[string]bool),
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spinner:     sp,
		filterInput: ti,
		styles:      DefaultStyles(),
	}
}

// Init starts the spinner and kicks off the initial fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refreshCmd())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshedMsg:
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.ForceQuit), key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
		return m, nil

	case key.Matches(msg, m.keys.ToggleTab):
		if m.state.ActiveTab.Get() == model.TabGrouped {
			m.state.ActiveTab.Set(model.TabTransactions)
		} else {
			m.state.ActiveTab.Set(model.TabGrouped)
		}
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.CycleGroup):
		m.state.GroupMode.Set(nextGroupMode(m.state.GroupMode.Get()))
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Expand):
		if k, ok := m.cursorGroupKey(); ok {
			m.expanded[k] = !m.expanded[k]
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filterErr = ""
		m.filterInput.SetValue("")
		return m, m.filterInput.Focus()
	}

	return m, nil
}

// handleFilterKey routes keys to the filter input until the expression is
// applied or abandoned.
func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyEsc:
		m.filtering = false
		m.filterInput.Blur()
		return m, nil

	case tea.KeyEnter:
		expr := m.filterInput.Value()
		m.filtering = false
		m.filterInput.Blur()
		if expr == "" {
			return m, nil
		}
		if err := applyFilter(m.state, expr); err != nil {
			m.filterErr = err.Error()
			return m, nil
		}
		m.cursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		// A failure is already recorded in the shared error cell.
		_ = m.client.FetchAll(m.ctx)
		return refreshedMsg{}
	}
}

// rowCount is the number of selectable rows on the active tab.
func (m Model) rowCount() int {
	if m.state.ActiveTab.Get() == model.TabTransactions {
		return len(m.engine.Filtered.Get())
	}
	return len(m.engine.Grouped.Get())
}

func (m *Model) clampCursor() {
	if n := m.rowCount(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// cursorGroupKey resolves the group under the cursor, if the grouped tab
// is active.
func (m Model) cursorGroupKey() (string, bool) {
	if m.state.ActiveTab.Get() != model.TabGrouped {
		return "", false
	}
	groups := m.engine.Grouped.Get()
	if m.cursor < 0 || m.cursor >= len(groups) {
		return "", false
	}
	return groups[m.cursor].Key, true
}

func nextGroupMode(current model.GroupMode) model.GroupMode {
	for i, mode := range model.AllGroupModes {
		if mode == current {
			return model.AllGroupModes[(i+1)%len(model.AllGroupModes)]
		}
	}
	return model.DefaultGroupMode
}

func (m Model) snapshot() viewmodel.BrowseView {
	return viewmodel.BuildBrowseView(m.state, m.engine, m.expanded)
}
