// Package tui provides an interactive terminal UI for taskline using Bubble Tea.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/baiirun/taskline/internal/manager"
	"github.com/baiirun/taskline/internal/model"
)

// ViewMode selects which list is shown.
type ViewMode int

const (
	ViewSchedule ViewMode = iota
	ViewTasks
	ViewEpics
	ViewHistory
	viewCount
)

func (v ViewMode) String() string {
	switch v {
	case ViewSchedule:
		return "Schedule"
	case ViewTasks:
		return "Tasks"
	case ViewEpics:
		return "Epics"
	case ViewHistory:
		return "History"
	}
	return "?"
}

// Status icons
const (
	iconNew        = "○"
	iconInProgress = "◐"
	iconDone       = "●"
)

const timeFormat = "Jan 02 15:04"

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	statusColors = map[model.Status]lipgloss.Color{
		model.StatusNew:        lipgloss.Color("252"),
		model.StatusInProgress: lipgloss.Color("214"),
		model.StatusDone:       lipgloss.Color("42"),
	}

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

func statusIcon(s model.Status) string {
	switch s {
	case model.StatusNew:
		return iconNew
	case model.StatusInProgress:
		return iconInProgress
	case model.StatusDone:
		return iconDone
	default:
		return "?"
	}
}

// nextStatus cycles NEW -> IN_PROGRESS -> DONE -> NEW.
func nextStatus(s model.Status) model.Status {
	switch s {
	case model.StatusNew:
		return model.StatusInProgress
	case model.StatusInProgress:
		return model.StatusDone
	default:
		return model.StatusNew
	}
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Next   key.Binding
	Prev   key.Binding
	Open   key.Binding
	Status key.Binding
	Delete key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Open, k.Status, k.Delete, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Next, k.Prev},
		{k.Open, k.Status, k.Delete},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
	Next:   key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab", "next view")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("shift+tab", "prev view")),
	Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Status: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle status")),
	Delete: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// row is one line in a list; depth indents subtasks under their epic.
type row struct {
	item  model.Item
	depth int
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	mgr    manager.Manager
	view   ViewMode
	rows   []row
	cursor int
	detail *model.Item
	help   help.Model

	// UI state
	width   int
	height  int
	err     error
	message string // temporary status message
}

// New creates a new TUI model over mgr.
func New(mgr manager.Manager) Model {
	return Model{
		mgr:  mgr,
		view: ViewSchedule,
		help: help.New(),
	}
}

// Messages
type rowsMsg struct {
	view ViewMode
	rows []row
	err  error
}

type detailMsg struct {
	item model.Item
	err  error
}

type actionMsg struct {
	message string
	err     error
}

// loadRows reads the current view's items from the manager.
func (m Model) loadRows() tea.Cmd {
	view, mgr := m.view, m.mgr
	return func() tea.Msg {
		rows, err := buildRows(mgr, view)
		return rowsMsg{view: view, rows: rows, err: err}
	}
}

func buildRows(mgr manager.Manager, view ViewMode) ([]row, error) {
	var items []model.Item
	switch view {
	case ViewSchedule:
		items = mgr.PrioritizedTasks()
	case ViewTasks:
		items = mgr.Tasks()
	case ViewHistory:
		items = mgr.History()
	case ViewEpics:
		var rows []row
		for _, epic := range mgr.Epics() {
			rows = append(rows, row{item: epic})
			subs, err := mgr.SubTasksByEpic(epic.ID)
			if err != nil {
				return nil, err
			}
			for _, st := range subs {
				rows = append(rows, row{item: st, depth: 1})
			}
		}
		return rows, nil
	}

	rows := make([]row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row{item: it})
	}
	return rows, nil
}

// fetch reads an item through the manager, which records it in the history.
func fetch(mgr manager.Manager, it model.Item) (model.Item, error) {
	switch it.Kind {
	case model.KindEpic:
		return mgr.Epic(it.ID)
	case model.KindSubTask:
		return mgr.SubTask(it.ID)
	default:
		return mgr.Task(it.ID)
	}
}

func remove(mgr manager.Manager, it model.Item) error {
	switch it.Kind {
	case model.KindEpic:
		return mgr.RemoveEpic(it.ID)
	case model.KindSubTask:
		return mgr.RemoveSubTask(it.ID)
	default:
		return mgr.RemoveTask(it.ID)
	}
}

func (m Model) selected() (model.Item, bool) {
	if len(m.rows) == 0 || m.cursor >= len(m.rows) {
		return model.Item{}, false
	}
	return m.rows[m.cursor].item, true
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.loadRows()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Clear message on any key
		m.message = ""
		m.err = nil
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case rowsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		// Ignore stale results from a view we already left
		if msg.view != m.view {
			return m, nil
		}
		// Keep the cursor on the same item if it moved
		prev, hadPrev := m.selected()
		m.rows = msg.rows
		if hadPrev {
			for i, r := range m.rows {
				if r.item.Same(prev) {
					m.cursor = i
					break
				}
			}
		}
		if m.cursor >= len(m.rows) {
			m.cursor = max(0, len(m.rows)-1)
		}
		return m, nil

	case detailMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		item := msg.item
		m.detail = &item
		return m, nil

	case actionMsg:
		m.message = msg.message
		m.err = msg.err
		m.detail = nil
		return m, m.loadRows()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, keys.Next):
		return m.switchView((m.view + 1) % viewCount)
	case key.Matches(msg, keys.Prev):
		return m.switchView((m.view + viewCount - 1) % viewCount)
	case key.Matches(msg, keys.Open):
		return m, m.openSelected()
	case key.Matches(msg, keys.Status):
		return m, m.cycleStatus()
	case key.Matches(msg, keys.Delete):
		return m, m.deleteSelected()
	}
	return m, nil
}

func (m Model) switchView(v ViewMode) (tea.Model, tea.Cmd) {
	m.view = v
	m.cursor = 0
	m.rows = nil
	m.detail = nil
	return m, m.loadRows()
}

func (m Model) openSelected() tea.Cmd {
	it, ok := m.selected()
	if !ok {
		return nil
	}
	mgr := m.mgr
	return func() tea.Msg {
		got, err := fetch(mgr, it)
		return detailMsg{item: got, err: err}
	}
}

func (m Model) cycleStatus() tea.Cmd {
	it, ok := m.selected()
	if !ok {
		return nil
	}
	if it.Kind == model.KindEpic {
		return func() tea.Msg {
			return actionMsg{err: errors.New("epic status is derived from its subtasks")}
		}
	}
	mgr := m.mgr
	return func() tea.Msg {
		it.Status = nextStatus(it.Status)
		updated, err := mgr.Update(it)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{message: fmt.Sprintf("%s %d → %s", updated.Kind, updated.ID, updated.Status)}
	}
}

func (m Model) deleteSelected() tea.Cmd {
	it, ok := m.selected()
	if !ok {
		return nil
	}
	mgr := m.mgr
	return func() tea.Msg {
		if err := remove(mgr, it); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{message: fmt.Sprintf("deleted %s %d", it.Kind, it.ID)}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("taskline"))
	b.WriteString("  ")
	for v := ViewMode(0); v < viewCount; v++ {
		style := tabStyle
		if v == m.view {
			style = activeTabStyle
		}
		b.WriteString(style.Render(v.String()))
	}
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(dimStyle.Render("  nothing here"))
		b.WriteString("\n")
	}
	for i, r := range m.rows {
		line := renderRow(r)
		if i == m.cursor {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.detail != nil {
		b.WriteString("\n")
		b.WriteString(renderDetail(*m.detail))
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.message != "" {
		b.WriteString(messageStyle.Render(m.message))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(keys))
	return b.String()
}

func renderRow(r row) string {
	it := r.item
	icon := lipgloss.NewStyle().Foreground(statusColors[it.Status]).Render(statusIcon(it.Status))
	indent := strings.Repeat("  ", r.depth+1)
	line := fmt.Sprintf("%s%s %-4d %-8s %s", indent, icon, it.ID, it.Kind, it.Title)
	if it.HasStart() {
		line += dimStyle.Render("  " + formatWindow(it.Start, it.EndTime()))
	}
	return line
}

func formatWindow(start, end time.Time) string {
	return start.Format(timeFormat) + " – " + end.Format(timeFormat)
}

func renderDetail(it model.Item) string {
	var b strings.Builder
	field := func(label, value string) {
		b.WriteString(detailLabelStyle.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(value)
		b.WriteString("\n")
	}

	field("ID", fmt.Sprintf("%d", it.ID))
	field("Kind", string(it.Kind))
	field("Title", it.Title)
	field("Status", statusIcon(it.Status)+" "+string(it.Status))
	if it.Description != "" {
		field("Description", it.Description)
	}
	if it.HasStart() {
		field("Window", formatWindow(it.Start, it.EndTime()))
		field("Duration", it.Duration.String())
	}
	switch it.Kind {
	case model.KindSubTask:
		field("Epic", fmt.Sprintf("%d", it.EpicID))
	case model.KindEpic:
		field("Subtasks", fmt.Sprintf("%d", len(it.SubTaskIDs)))
	}
	return b.String()
}
