package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"ttx/internal/models"
	"ttx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	WorkspacePickView ViewState = iota
	ConfirmView
	TransferView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx           context.Context
	view          ViewState
	engine        *tasks.TransferEngine
	width         int
	height        int
	workspaceList list.Model
	progressChan  chan tasks.ProgressUpdate
	progress      tasks.ProgressUpdate
	err           error
	help          help.Model
	keys          keyMap
}

// NewModel creates a new TUI model around the transfer engine.
func NewModel(ctx context.Context, engine *tasks.TransferEngine) *Model {
	return &Model{
		ctx:    ctx,
		view:   WorkspacePickView,
		engine: engine,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by fetching workspaces from both tools.
func (m *Model) Init() tea.Cmd {
	return m.fetchWorkspaces()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.workspaceList.Width() == 0 {
			m.workspaceList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case WorkspacePickView:
			return m.handlePickKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case workspacesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.workspaces))
		for i, w := range msg.workspaces {
			items[i] = workspaceItem{workspace: w}
		}
		m.workspaceList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.workspaceList.Title = "Toggl Workspaces"
		m.workspaceList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case transferCompleteMsg:
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case WorkspacePickView:
		return m.renderPick()
	case ConfirmView:
		return m.renderConfirm()
	case TransferView:
		return m.renderTransfer()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePickKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		if item, ok := m.workspaceList.SelectedItem().(workspaceItem); ok {
			item.workspace.Included = !item.workspace.Included
		}
		return m, nil
	case "a":
		for _, it := range m.workspaceList.Items() {
			if item, ok := it.(workspaceItem); ok {
				item.workspace.Included = true
			}
		}
		return m, nil
	case "enter":
		if len(m.engine.State().IncludedWorkspaces()) == 0 {
			return m, nil
		}
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.workspaceList, cmd = m.workspaceList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = WorkspacePickView
		return m, nil
	case "y":
		m.view = TransferView
		return m, m.startTransfer()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "enter":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == WorkspacePickView {
		m.workspaceList, cmd = m.workspaceList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchWorkspaces() tea.Cmd {
	return func() tea.Msg {
		workspaces, err := m.engine.FetchWorkspaces(m.ctx, true)
		return workspacesFetchedMsg{workspaces: workspaces, err: err}
	}
}

func (m *Model) startTransfer() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progress := m.progressChan

	go func() {
		err := m.engine.FetchAll(m.ctx, progress)
		if err == nil {
			err = m.engine.CreateAll(m.ctx, progress)
		}
		m.err = err
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	return func() tea.Msg {
		if progress == nil {
			return transferCompleteMsg{err: m.err}
		}

		update, ok := <-progress
		if !ok {
			return transferCompleteMsg{err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPick() string {
	selected := len(m.engine.State().IncludedWorkspaces())
	status := styles.help.Render(fmt.Sprintf("%d selected", selected))

	helpKeys := []key.Binding{m.keys.toggle, m.keys.all, m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", m.workspaceList.View(), status, helpView)
}

func (m *Model) renderConfirm() string {
	included := m.engine.State().IncludedWorkspaces()
	title := styles.title.Render(fmt.Sprintf("Transfer %d workspace(s) to Clockify?", len(included)))

	var names string
	for _, w := range included {
		names += fmt.Sprintf("  • %s\n", w.Name)
	}

	var warning string
	for _, w := range included {
		if !w.Linked() {
			warning = styles.warn.Render("\nSome selected workspaces have no Clockify counterpart; the transfer will stop until they exist.")
			break
		}
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, names, warning, helpView)
}

func (m *Model) renderTransfer() string {
	title := styles.title.Render("Transferring Records")

	line := "Starting..."
	if m.progress.Message != "" {
		line = m.progress.Message
	}

	return fmt.Sprintf("%s\n\n%s", title, line)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Transfer failed: %v\n\nPress q to quit", m.err))
	}

	title := styles.ok.Render("✓ Transfer Complete!")

	var lines string
	for _, group := range models.CreateOrder {
		p := m.engine.Progress(group)
		if p.Total == 0 {
			continue
		}
		lines += fmt.Sprintf("\n%s: %d/%d", group, p.Completed, p.Total)
	}
	if lines == "" {
		lines = "\nEverything was already on Clockify; nothing to create."
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s%s\n\n%s", title, lines, helpView)
}
