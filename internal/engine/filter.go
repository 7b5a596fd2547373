package engine

import (
	"strings"
	"time"

	"github.com/loomchat/loom/internal/models"
)

// TaskState is the completion sub-filter applied to task messages.
type TaskState string

const (
	TaskStateAll        TaskState = "all"
	TaskStateCompleted  TaskState = "completed"
	TaskStateIncomplete TaskState = "incomplete"
)

// TypeAll matches every message type.
const TypeAll models.MessageType = "all"

// Filter narrows a timeline. All supplied predicates are conjunctive; zero
// values match everything.
type Filter struct {
	// Type keeps only messages of one type. Empty or TypeAll keeps all.
	Type models.MessageType

	// TaskState further narrows task messages by completion. Only
	// meaningful when filtering tasks; ignored for other types.
	TaskState TaskState

	// Tag keeps messages whose owning line carries a tag whose name
	// contains this substring (case-insensitive).
	Tag string

	// Keyword keeps messages whose content contains this substring
	// (case-insensitive).
	Keyword string

	// Start and End bound the timestamp range, inclusive on both ends.
	Start *time.Time
	End   *time.Time
}

// Empty reports whether the filter matches everything.
func (f Filter) Empty() bool {
	return (f.Type == "" || f.Type == TypeAll) &&
		(f.TaskState == "" || f.TaskState == TaskStateAll) &&
		strings.TrimSpace(f.Tag) == "" &&
		strings.TrimSpace(f.Keyword) == "" &&
		f.Start == nil && f.End == nil
}

// Apply reduces a timeline to matching messages. Transitions are derived
// fresh from the reduced sequence with the same boundary walk composition
// uses; runs that lost all their messages collapse instead of leaving stale
// indices behind. Applying the same filter twice is a no-op.
func (f Filter) Apply(snap *models.Snapshot, tl *Timeline) *Timeline {
	if tl == nil {
		return nil
	}
	out := &Timeline{LineID: tl.LineID, Degraded: tl.Degraded}
	if f.Empty() {
		out.Messages = cloneMessages(tl.Messages)
		out.Transitions = markTransitions(snap, out.Messages)
		return out
	}

	for _, msg := range tl.Messages {
		if f.matches(snap, msg) {
			out.Messages = append(out.Messages, msg.Clone())
		}
	}
	out.Transitions = markTransitions(snap, out.Messages)
	return out
}

func (f Filter) matches(snap *models.Snapshot, msg models.Message) bool {
	if f.Type != "" && f.Type != TypeAll && msg.Type != f.Type {
		return false
	}
	if msg.Type == models.MessageTypeTask {
		switch f.TaskState {
		case TaskStateCompleted:
			if !msg.TaskCompleted() {
				return false
			}
		case TaskStateIncomplete:
			if msg.TaskCompleted() {
				return false
			}
		}
	}
	if tag := strings.TrimSpace(f.Tag); tag != "" {
		if !lineHasTag(snap, msg.LineID, tag) {
			return false
		}
	}
	if keyword := strings.TrimSpace(f.Keyword); keyword != "" {
		if !strings.Contains(strings.ToLower(msg.Content), strings.ToLower(keyword)) {
			return false
		}
	}
	if f.Start != nil && msg.Timestamp.Before(*f.Start) {
		return false
	}
	if f.End != nil && msg.Timestamp.After(*f.End) {
		return false
	}
	return true
}

func lineHasTag(snap *models.Snapshot, lineID, tag string) bool {
	needle := strings.ToLower(tag)
	for _, name := range snap.LineTagNames(lineID) {
		if strings.Contains(strings.ToLower(name), needle) {
			return true
		}
	}
	return false
}

// Paginate exposes the tail of a timeline: the most recent pageSize×page
// messages, since conversations are read newest-first. The second return
// reports whether older messages exist beyond the window. Transitions are
// recomputed against the window's own indices. A non-positive page size
// returns the timeline unchanged.
func Paginate(snap *models.Snapshot, tl *Timeline, pageSize, page int) (*Timeline, bool) {
	if tl == nil {
		return nil, false
	}
	out := &Timeline{LineID: tl.LineID, Degraded: tl.Degraded}
	if pageSize <= 0 {
		out.Messages = cloneMessages(tl.Messages)
		out.Transitions = markTransitions(snap, out.Messages)
		return out, false
	}
	if page < 1 {
		page = 1
	}

	keep := pageSize * page
	hasOlder := false
	messages := tl.Messages
	if len(messages) > keep {
		messages = messages[len(messages)-keep:]
		hasOlder = true
	}
	out.Messages = cloneMessages(messages)
	out.Transitions = markTransitions(snap, out.Messages)
	return out, hasOlder
}

func cloneMessages(messages []models.Message) []models.Message {
	if len(messages) == 0 {
		return nil
	}
	cloned := make([]models.Message, len(messages))
	for i := range messages {
		cloned[i] = messages[i].Clone()
	}
	return cloned
}
