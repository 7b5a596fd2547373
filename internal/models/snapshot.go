package models

// Snapshot is a consistent point-in-time view of the line and message
// collections, as handed over by the persistence layer. The engine treats a
// snapshot as immutable: every mutation derives a new snapshot and leaves
// the input untouched, which keeps concurrent readers safe without locking.
type Snapshot struct {
	// Lines is the full line collection, indexed by id.
	Lines map[string]Line `json:"lines"`

	// Messages is the full message collection, indexed by id.
	Messages map[string]Message `json:"messages"`

	// Tags is the tag collection, indexed by id.
	Tags map[string]Tag `json:"tags,omitempty"`

	// MainLineID designates the protected main line. It cannot be deleted.
	MainLineID string `json:"main_line_id,omitempty"`
}

// NewSnapshot returns an empty snapshot with initialized maps.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Lines:    make(map[string]Line),
		Messages: make(map[string]Message),
		Tags:     make(map[string]Tag),
	}
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return NewSnapshot()
	}
	cloned := &Snapshot{
		Lines:      make(map[string]Line, len(s.Lines)),
		Messages:   make(map[string]Message, len(s.Messages)),
		Tags:       make(map[string]Tag, len(s.Tags)),
		MainLineID: s.MainLineID,
	}
	for id, line := range s.Lines {
		cloned.Lines[id] = line.Clone()
	}
	for id, msg := range s.Messages {
		cloned.Messages[id] = msg.Clone()
	}
	for id, tag := range s.Tags {
		cloned.Tags[id] = tag
	}
	return cloned
}

// Line looks up a line by id.
func (s *Snapshot) Line(id string) (Line, bool) {
	if s == nil || id == "" {
		return Line{}, false
	}
	line, ok := s.Lines[id]
	return line, ok
}

// Message looks up a message by id.
func (s *Snapshot) Message(id string) (Message, bool) {
	if s == nil || id == "" {
		return Message{}, false
	}
	msg, ok := s.Messages[id]
	return msg, ok
}

// LineMessages returns the non-deleted messages owned by a line, in map
// order. Callers that need chronological order sort the result.
func (s *Snapshot) LineMessages(lineID string) []Message {
	if s == nil || lineID == "" {
		return nil
	}
	var out []Message
	for _, msg := range s.Messages {
		if msg.LineID != lineID || msg.Deleted {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// ChildLines returns the lines whose parent is lineID, in map order.
func (s *Snapshot) ChildLines(lineID string) []Line {
	if s == nil || lineID == "" {
		return nil
	}
	var out []Line
	for _, line := range s.Lines {
		if line.ParentLineID == lineID {
			out = append(out, line)
		}
	}
	return out
}

// LineTagNames resolves a line's tag ids to tag names. Unknown tag ids are
// skipped.
func (s *Snapshot) LineTagNames(lineID string) []string {
	line, ok := s.Line(lineID)
	if !ok || len(line.TagIDs) == 0 {
		return nil
	}
	names := make([]string, 0, len(line.TagIDs))
	for _, tagID := range line.TagIDs {
		if tag, ok := s.Tags[tagID]; ok && tag.Name != "" {
			names = append(names, tag.Name)
		}
	}
	return names
}
