package engine

import (
	"sort"

	"github.com/loomchat/loom/internal/models"
)

// Transition marks a position in a composed timeline where the owning line
// changes. Index 0 always carries a transition for the first message's line.
type Transition struct {
	Index    int    `json:"index"`
	LineID   string `json:"line_id"`
	LineName string `json:"line_name"`
}

// Timeline is the chronological merge of one line and all of its ancestors:
// the conversation as the user experienced it, everything that led up to
// this line plus the line's own continuation.
type Timeline struct {
	LineID      string           `json:"line_id"`
	Messages    []models.Message `json:"messages"`
	Transitions []Transition     `json:"transitions"`

	// Degraded is set when the ancestor chain contained a cycle and the
	// timeline was composed from the valid partial chain only. Callers
	// surface this to the user; the engine never hides corruption.
	Degraded bool `json:"degraded,omitempty"`
}

// ComposeTimeline builds the timeline for a line: collect the non-deleted
// messages of every line on the root-first ancestor chain plus the line
// itself, sort chronologically with id tie-break, and mark every line
// boundary. An unknown line id yields an empty timeline.
func ComposeTimeline(snap *models.Snapshot, lineID string) *Timeline {
	tl := &Timeline{LineID: lineID}
	if snap == nil {
		return tl
	}
	if _, ok := snap.Line(lineID); !ok {
		return tl
	}

	chain, cyclic := Ancestry(snap, lineID)
	tl.Degraded = cyclic
	chain = append(chain, lineID)

	var merged []models.Message
	for _, id := range chain {
		for _, msg := range snap.LineMessages(id) {
			merged = append(merged, msg.Clone())
		}
	}
	sortMessages(merged)

	tl.Messages = merged
	tl.Transitions = markTransitions(snap, merged)
	return tl
}

// markTransitions walks a chronologically sorted sequence once and records
// every index where the owning line differs from the previous message's
// line, including index 0. The transitions exactly partition the sequence
// into maximal same-line runs.
func markTransitions(snap *models.Snapshot, messages []models.Message) []Transition {
	var transitions []Transition
	prevLine := ""
	for i, msg := range messages {
		if i == 0 || msg.LineID != prevLine {
			transitions = append(transitions, Transition{
				Index:    i,
				LineID:   msg.LineID,
				LineName: lineName(snap, msg.LineID),
			})
		}
		prevLine = msg.LineID
	}
	return transitions
}

// sortMessages orders messages by timestamp ascending; identical timestamps
// (bulk imports can produce them) fall back to id so the order is total and
// stable across recomputation.
func sortMessages(messages []models.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		if !messages[i].Timestamp.Equal(messages[j].Timestamp) {
			return messages[i].Timestamp.Before(messages[j].Timestamp)
		}
		return messages[i].ID < messages[j].ID
	})
}

func lineName(snap *models.Snapshot, lineID string) string {
	if line, ok := snap.Line(lineID); ok {
		return line.Name
	}
	return ""
}
