package models

import (
	"time"
)

// Line is a branch of the conversation: a named, ordered continuation of
// messages, optionally attached under a parent line. The directed graph
// formed by ParentLineID edges must stay acyclic; the mutation guard
// enforces that before any write.
type Line struct {
	// ID is the unique identifier.
	ID string `json:"id"`

	// Name is the display label.
	Name string `json:"name"`

	// ParentLineID references the line this one is attached under.
	// Empty means the line is a root.
	ParentLineID string `json:"parent_line_id,omitempty"`

	// TagIDs references tags attached to the line, opaque to the engine.
	TagIDs []string `json:"tag_ids,omitempty"`

	// CreatedAt is when the line was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the line was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRoot reports whether the line has no parent.
func (l Line) IsRoot() bool {
	return l.ParentLineID == ""
}

// Clone returns a deep copy of the line.
func (l Line) Clone() Line {
	cloned := l
	if len(l.TagIDs) > 0 {
		cloned.TagIDs = append([]string(nil), l.TagIDs...)
	}
	return cloned
}

// Tag is a label attachable to lines.
type Tag struct {
	// ID is the unique identifier.
	ID string `json:"id"`

	// Name is the display label.
	Name string `json:"name"`

	// Color is an optional display color.
	Color string `json:"color,omitempty"`
}
