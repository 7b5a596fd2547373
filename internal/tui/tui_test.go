package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/loomchat/loom/internal/engine"
	"github.com/loomchat/loom/internal/models"
)

var tuiBase = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func fixtureSnapshot() *models.Snapshot {
	snap := models.NewSnapshot()
	snap.MainLineID = "main"
	snap.Lines["main"] = models.Line{ID: "main", Name: "main", CreatedAt: tuiBase}
	snap.Lines["side"] = models.Line{ID: "side", Name: "side quest", ParentLineID: "main", CreatedAt: tuiBase.Add(time.Hour)}
	snap.Lines["deep"] = models.Line{ID: "deep", Name: "deep dive", ParentLineID: "side", CreatedAt: tuiBase.Add(2 * time.Hour)}
	snap.Messages["m1"] = models.Message{ID: "m1", LineID: "main", Content: "hello world", Type: models.MessageTypeText, Timestamp: tuiBase}
	snap.Messages["m2"] = models.Message{ID: "m2", LineID: "main", Content: "plan the trip", Type: models.MessageTypeText, Timestamp: tuiBase.Add(30 * time.Minute)}
	snap.Messages["m3"] = models.Message{ID: "m3", LineID: "side", Content: "side idea", Type: models.MessageTypeText, Timestamp: tuiBase.Add(90 * time.Minute)}
	return snap
}

func fixtureModel(t *testing.T) *Model {
	t.Helper()
	m := NewModel(Config{PageSize: 10})
	m.width = 100
	m.height = 30
	m.applySnapshot(fixtureSnapshot())
	return m
}

func press(m *Model, keys ...string) {
	for _, key := range keys {
		var msg tea.KeyMsg
		switch key {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		m.Update(msg)
	}
}

func TestApplySnapshotSelectsMainLine(t *testing.T) {
	m := fixtureModel(t)

	require.Equal(t, "main", m.selected)
	require.NotNil(t, m.timeline)
	require.Len(t, m.timeline.Messages, 2)

	// "deep" stays hidden until its parent is expanded.
	ids := make([]string, 0, len(m.rows))
	for _, row := range m.rows {
		ids = append(ids, row.Line.ID)
	}
	require.Equal(t, []string{"main", "side"}, ids)
}

func TestSidebarSelectionComposesAncestry(t *testing.T) {
	m := fixtureModel(t)

	press(m, "j", "enter")

	require.Equal(t, "side", m.selected)
	require.Equal(t, paneFeed, m.focus)
	require.Len(t, m.timeline.Messages, 3)
	require.Len(t, m.timeline.Transitions, 2)
}

func TestSidebarFoldHidesDescendants(t *testing.T) {
	m := fixtureModel(t)

	press(m, "h")
	require.Len(t, m.rows, 1)

	press(m, "l")
	require.Len(t, m.rows, 2)

	press(m, "j", "l")
	require.Len(t, m.rows, 3)
}

func TestSearchNarrowsFeed(t *testing.T) {
	m := fixtureModel(t)

	press(m, "/", "t", "r", "i", "p", "enter")

	require.Equal(t, "trip", m.filter.Keyword)
	require.Len(t, m.timeline.Messages, 1)
	require.Equal(t, "m2", m.timeline.Messages[0].ID)

	press(m, "esc")
	require.True(t, m.filter.Empty())
	require.Len(t, m.timeline.Messages, 2)
}

func TestTypeFilterCycles(t *testing.T) {
	var got []models.MessageType
	current := models.MessageType("")
	for i := 0; i < 5; i++ {
		current = nextTypeFilter(current)
		got = append(got, current)
	}
	require.Equal(t, []models.MessageType{
		models.MessageTypeText,
		models.MessageTypeTask,
		models.MessageTypeDocument,
		models.MessageTypeSession,
		"",
	}, got)
}

func TestFeedLinesMarkTransitions(t *testing.T) {
	snap := fixtureSnapshot()
	tl := engine.ComposeTimeline(snap, "side")

	lines := feedLines(tl, DefaultTheme, 60)

	var separators int
	for _, line := range lines {
		if strings.Contains(line, "──") {
			separators++
		}
	}
	require.Equal(t, 2, separators)
	require.Contains(t, strings.Join(lines, "\n"), "side idea")
}

func TestRenderSidebarMarksMainAndCursor(t *testing.T) {
	m := fixtureModel(t)

	out := m.renderSidebar(40, 10)
	require.Contains(t, out, "main ●")
	require.Contains(t, out, "side quest")
}

func TestWrapBreaksAtWords(t *testing.T) {
	lines := wrap("one two three four five six seven", 14)
	for _, line := range lines {
		require.LessOrEqual(t, len(line), 12)
	}
	require.Equal(t, "one two three four five six seven", strings.Join(lines, " "))
}
