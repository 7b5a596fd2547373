package tui

import (
	"fmt"
	"strings"

	"github.com/loomchat/loom/internal/engine"
)

// renderSidebar draws the visible tree rows, keeping the cursor inside the
// viewport.
func (m *Model) renderSidebar(width, height int) string {
	if len(m.rows) == 0 {
		return m.theme.Muted.Render("no lines")
	}

	top := 0
	if height > 0 && m.cursor >= height {
		top = m.cursor - height + 1
	}
	end := len(m.rows)
	if height > 0 && top+height < end {
		end = top + height
	}

	cyclic := make(map[string]bool, len(m.tree.CycleLineIDs))
	for _, id := range m.tree.CycleLineIDs {
		cyclic[id] = true
	}

	var b strings.Builder
	for i := top; i < end; i++ {
		row := m.rows[i]
		line := m.sidebarRow(row, cyclic[row.Line.ID], width)
		switch {
		case i == m.cursor && m.focus == paneSidebar:
			line = m.theme.Selected.Render(line)
		case row.Line.ID == m.selected:
			line = m.theme.Accent.Render(line)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) sidebarRow(row *engine.TreeNode, inCycle bool, width int) string {
	marker := "  "
	if len(row.Children) > 0 {
		if m.expanded[row.Line.ID] {
			marker = "▾ "
		} else {
			marker = "▸ "
		}
	}

	name := row.Line.Name
	if row.Line.ID == m.snap.MainLineID {
		name += " ●"
	}
	if inCycle {
		name += " ⚠"
	}
	count := len(m.snap.LineMessages(row.Line.ID))

	text := fmt.Sprintf("%s%s%s (%d)", strings.Repeat("  ", row.Depth), marker, name, count)
	return truncate(text, width)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
