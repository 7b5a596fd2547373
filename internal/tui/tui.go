// Package tui implements the interactive loom browser: a line tree in the
// sidebar and the composed timeline of the selected line in the feed pane.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/loomchat/loom/internal/engine"
	"github.com/loomchat/loom/internal/models"
	"github.com/loomchat/loom/internal/store"
)

const defaultPageSize = 50

type pane int

const (
	paneSidebar pane = iota
	paneFeed
)

// Config configures the browser.
type Config struct {
	Store     *store.Store
	FocusLine string
	PageSize  int
	Theme     string
}

// Model is the root bubbletea model.
type Model struct {
	store    *store.Store
	theme    Theme
	pageSize int

	snap     *models.Snapshot
	tree     *engine.Tree
	expanded map[string]bool
	rows     []*engine.TreeNode
	cursor   int

	selected string
	timeline *engine.Timeline
	filter   engine.Filter
	page     int
	hasOlder bool

	focus     pane
	width     int
	height    int
	searching bool
	searchBuf string
	status    string
	err       error
}

type snapshotMsg struct {
	snap *models.Snapshot
	err  error
}

// NewModel builds the browser model. The store stays owned by the caller.
func NewModel(cfg Config) *Model {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Model{
		store:    cfg.Store,
		theme:    themeByName(cfg.Theme),
		pageSize: pageSize,
		selected: cfg.FocusLine,
		page:     1,
	}
}

// Run starts the browser and blocks until the user quits.
func Run(cfg Config) error {
	program := tea.NewProgram(NewModel(cfg), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return m.loadSnapshot()
}

func (m *Model) loadSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.store.Snapshot(context.Background())
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		return m, nil
	case snapshotMsg:
		if typed.err != nil {
			m.err = typed.err
			return m, nil
		}
		m.applySnapshot(typed.snap)
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(typed)
	}
	return m, nil
}

// applySnapshot rebuilds the tree and timeline from fresh data while keeping
// the user's cursor, expansion, and filter state where it still applies.
func (m *Model) applySnapshot(snap *models.Snapshot) {
	m.err = nil
	m.snap = snap
	m.tree = engine.BuildTree(snap)
	if m.expanded == nil {
		focus := m.selected
		if focus == "" {
			focus = snap.MainLineID
		}
		m.expanded = engine.DefaultExpanded(snap, focus)
	}
	if _, ok := snap.Line(m.selected); !ok {
		m.selected = snap.MainLineID
	}
	m.refreshRows()
	m.moveCursorTo(m.selected)
	m.recompose()
	if len(m.tree.CycleLineIDs) > 0 {
		m.status = fmt.Sprintf("parent cycle detected: %s", strings.Join(m.tree.CycleLineIDs, ", "))
	}
}

// refreshRows recomputes the visible sidebar rows from the expansion state.
func (m *Model) refreshRows() {
	m.rows = m.rows[:0]
	if m.tree == nil {
		return
	}
	var walk func(node *engine.TreeNode)
	walk = func(node *engine.TreeNode) {
		m.rows = append(m.rows, node)
		if !m.expanded[node.Line.ID] {
			return
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	for _, root := range m.tree.Roots {
		walk(root)
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) moveCursorTo(lineID string) {
	for i, row := range m.rows {
		if row.Line.ID == lineID {
			m.cursor = i
			return
		}
	}
}

// recompose rebuilds the feed for the selected line with the current filter
// and page window.
func (m *Model) recompose() {
	if m.snap == nil || m.selected == "" {
		m.timeline = nil
		return
	}
	tl := engine.ComposeTimeline(m.snap, m.selected)
	tl = m.filter.Apply(m.snap, tl)
	m.timeline, m.hasOlder = engine.Paginate(m.snap, tl, m.pageSize, m.page)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "tab":
		if m.focus == paneSidebar {
			m.focus = paneFeed
		} else {
			m.focus = paneSidebar
		}
		return nil
	case "r":
		m.status = "reloading"
		return m.loadSnapshot()
	case "/":
		m.searching = true
		m.searchBuf = m.filter.Keyword
		return nil
	case "esc":
		if !m.filter.Empty() {
			m.filter = engine.Filter{}
			m.page = 1
			m.recompose()
			m.status = "filter cleared"
		}
		return nil
	case "f":
		m.filter.Type = nextTypeFilter(m.filter.Type)
		m.page = 1
		m.recompose()
		return nil
	case "c":
		m.filter.TaskState = nextTaskState(m.filter.TaskState)
		m.page = 1
		m.recompose()
		return nil
	}

	if m.focus == paneSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleFeedKey(msg)
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "l", "right":
		if row := m.cursorRow(); row != nil && len(row.Children) > 0 {
			m.expanded[row.Line.ID] = true
			m.refreshRows()
		}
	case "h", "left":
		if row := m.cursorRow(); row != nil {
			m.expanded[row.Line.ID] = false
			m.refreshRows()
		}
	case " ":
		if row := m.cursorRow(); row != nil {
			m.expanded[row.Line.ID] = !m.expanded[row.Line.ID]
			m.refreshRows()
		}
	case "enter":
		if row := m.cursorRow(); row != nil {
			m.selected = row.Line.ID
			m.page = 1
			m.recompose()
			m.focus = paneFeed
		}
	}
	return nil
}

func (m *Model) handleFeedKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "n", "pgup":
		if m.hasOlder {
			m.page++
			m.recompose()
		}
	case "p", "pgdown":
		if m.page > 1 {
			m.page--
			m.recompose()
		}
	}
	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.filter.Keyword = strings.TrimSpace(m.searchBuf)
		m.page = 1
		m.recompose()
	case tea.KeyEsc:
		m.searching = false
		m.searchBuf = ""
	case tea.KeyBackspace:
		if len(m.searchBuf) > 0 {
			m.searchBuf = m.searchBuf[:len(m.searchBuf)-1]
		}
	case tea.KeyRunes:
		m.searchBuf += string(msg.Runes)
	case tea.KeySpace:
		m.searchBuf += " "
	}
	return nil
}

func (m *Model) cursorRow() *engine.TreeNode {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

func nextTypeFilter(current models.MessageType) models.MessageType {
	order := []models.MessageType{
		"",
		models.MessageTypeText,
		models.MessageTypeTask,
		models.MessageTypeDocument,
		models.MessageTypeSession,
	}
	for i, t := range order {
		if t == current {
			return order[(i+1)%len(order)]
		}
	}
	return ""
}

func nextTaskState(current engine.TaskState) engine.TaskState {
	switch current {
	case engine.TaskStateCompleted:
		return engine.TaskStateIncomplete
	case engine.TaskStateIncomplete:
		return ""
	default:
		return engine.TaskStateCompleted
	}
}

func (m *Model) View() string {
	if m.err != nil {
		return m.theme.Warning.Render(fmt.Sprintf("error: %v", m.err)) + "\n\npress q to quit"
	}
	if m.snap == nil {
		return m.theme.Muted.Render("loading…")
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 3 {
		contentHeight = 3
	}

	sidebarWidth := m.width / 3
	if sidebarWidth < 24 {
		sidebarWidth = 24
	}
	feedWidth := m.width - sidebarWidth
	if feedWidth < 20 {
		feedWidth = 20
	}

	sidebar := m.renderSidebar(sidebarWidth-2, contentHeight-2)
	feed := m.renderFeed(feedWidth-2, contentHeight-2)

	sidebarStyle := m.theme.InactivePane
	feedStyle := m.theme.InactivePane
	if m.focus == paneSidebar {
		sidebarStyle = m.theme.ActivePane
	} else {
		feedStyle = m.theme.ActivePane
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Width(sidebarWidth-2).Height(contentHeight-2).Render(sidebar),
		feedStyle.Width(feedWidth-2).Height(contentHeight-2).Render(feed),
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) renderHeader() string {
	title := "loom"
	if line, ok := m.snap.Line(m.selected); ok {
		title = fmt.Sprintf("loom · %s", line.Name)
	}
	if summary := filterSummary(m.filter); summary != "" {
		title += "  [" + summary + "]"
	}
	return m.theme.Header.Width(m.width).Render(title)
}

func (m *Model) renderFooter() string {
	if m.searching {
		return m.theme.Footer.Width(m.width).Render("search: " + m.searchBuf + "▌")
	}
	hints := "j/k move · enter open · space fold · tab pane · f type · c tasks · / search · esc clear · n/p page · r reload · q quit"
	if m.status != "" {
		hints = m.status + "  ·  " + hints
	}
	return m.theme.Footer.Width(m.width).Render(hints)
}

// filterSummary describes the active filter for the header.
func filterSummary(f engine.Filter) string {
	if f.Empty() {
		return ""
	}
	var parts []string
	if f.Type != "" && f.Type != engine.TypeAll {
		parts = append(parts, string(f.Type))
	}
	if f.TaskState != "" && f.TaskState != engine.TaskStateAll {
		parts = append(parts, string(f.TaskState))
	}
	if f.Tag != "" {
		parts = append(parts, "tag:"+f.Tag)
	}
	if f.Keyword != "" {
		parts = append(parts, "\""+f.Keyword+"\"")
	}
	if f.Start != nil || f.End != nil {
		parts = append(parts, "dated")
	}
	return strings.Join(parts, " ")
}
