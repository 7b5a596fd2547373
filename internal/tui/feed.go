package tui

import (
	"fmt"
	"strings"

	"github.com/loomchat/loom/internal/engine"
	"github.com/loomchat/loom/internal/models"
)

const feedTimeLayout = "2006-01-02 15:04"

// renderFeed draws the composed timeline for the selected line, newest
// messages at the bottom.
func (m *Model) renderFeed(width, height int) string {
	if m.timeline == nil {
		return m.theme.Muted.Render("select a line")
	}

	var b strings.Builder
	if m.timeline.Degraded {
		b.WriteString(m.theme.Warning.Render("ancestry cycle: showing partial history"))
		b.WriteString("\n")
	}
	if m.hasOlder {
		b.WriteString(m.theme.Muted.Render(fmt.Sprintf("… older messages (page %d, press n)", m.page)))
		b.WriteString("\n")
	}

	lines := feedLines(m.timeline, m.theme, width)
	if len(lines) == 0 {
		b.WriteString(m.theme.Muted.Render("no messages match"))
		return b.String()
	}

	// Keep the tail: the feed reads newest-last like the conversation does.
	if height > 0 && len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

// feedLines renders each message to one or more display lines, inserting a
// separator at every transition boundary.
func feedLines(tl *engine.Timeline, theme Theme, width int) []string {
	transitionAt := make(map[int]string, len(tl.Transitions))
	for _, tr := range tl.Transitions {
		transitionAt[tr.Index] = tr.LineName
	}

	var out []string
	for i, msg := range tl.Messages {
		if name, ok := transitionAt[i]; ok {
			out = append(out, theme.Separator.Render(separatorLine(name, width)))
		}
		out = append(out, renderMessage(msg, theme, width)...)
	}
	return out
}

func separatorLine(name string, width int) string {
	label := fmt.Sprintf("── %s ", name)
	if width <= len([]rune(label)) {
		return label
	}
	return label + strings.Repeat("─", width-len([]rune(label)))
}

func renderMessage(msg models.Message, theme Theme, width int) []string {
	head := theme.Muted.Render(msg.Timestamp.Format(feedTimeLayout)) + " " + typeMarker(msg)
	body := msg.Content
	if title := documentTitle(msg); title != "" {
		body = title + ": " + body
	}
	lines := []string{head}
	for _, content := range wrap(body, width) {
		lines = append(lines, "  "+content)
	}
	return lines
}

func typeMarker(msg models.Message) string {
	switch msg.Type {
	case models.MessageTypeTask:
		if msg.TaskCompleted() {
			return "☑ task"
		}
		return "☐ task"
	case models.MessageTypeDocument:
		return "▤ doc"
	case models.MessageTypeSession:
		return "◷ session"
	default:
		return ""
	}
}

func documentTitle(msg models.Message) string {
	if msg.Metadata == nil || msg.Metadata.Document == nil {
		return ""
	}
	return msg.Metadata.Document.Title
}

// wrap breaks text at word boundaries. Words longer than the width are cut.
func wrap(text string, width int) []string {
	if width <= 4 {
		return []string{text}
	}
	limit := width - 2
	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		current := words[0]
		for _, word := range words[1:] {
			if len([]rune(current))+1+len([]rune(word)) > limit {
				out = append(out, current)
				current = word
				continue
			}
			current += " " + word
		}
		out = append(out, current)
	}
	for i, line := range out {
		runes := []rune(line)
		if len(runes) > limit {
			out[i] = string(runes[:limit-1]) + "…"
		}
	}
	return out
}
