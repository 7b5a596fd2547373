// Package models defines the core domain types for Loom.
package models

import (
	"time"
)

// MessageType classifies the payload a message carries.
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeTask     MessageType = "task"
	MessageTypeDocument MessageType = "document"
	MessageTypeSession  MessageType = "session"
)

// ValidMessageType reports whether t is a known message type.
func ValidMessageType(t MessageType) bool {
	switch t {
	case MessageTypeText, MessageTypeTask, MessageTypeDocument, MessageTypeSession:
		return true
	}
	return false
}

// TaskMetadata is the structured payload for task messages.
type TaskMetadata struct {
	// Priority is a free-form priority label (e.g. high, normal, low).
	Priority string `json:"priority,omitempty"`

	// Completed marks the task as done.
	Completed bool `json:"completed"`

	// DueAt is an optional due date.
	DueAt *time.Time `json:"due_at,omitempty"`
}

// SessionMetadata is the structured payload for session messages.
type SessionMetadata struct {
	// CheckIn is when the session started.
	CheckIn *time.Time `json:"check_in,omitempty"`

	// CheckOut is when the session ended.
	CheckOut *time.Time `json:"check_out,omitempty"`
}

// DocumentMetadata is the structured payload for document messages.
type DocumentMetadata struct {
	// Title is the document display title.
	Title string `json:"title,omitempty"`
}

// MessageMetadata carries the type-specific payload of a message. The
// branching engine passes it through untouched; only presentation and the
// task completion filter ever look inside.
type MessageMetadata struct {
	Task     *TaskMetadata     `json:"task,omitempty"`
	Session  *SessionMetadata  `json:"session,omitempty"`
	Document *DocumentMetadata `json:"document,omitempty"`
}

// Message is an atomic conversational unit. A message belongs to exactly one
// line at a time; moving it between lines rewrites LineID.
type Message struct {
	// ID is the unique, immutable identifier.
	ID string `json:"id"`

	// Content is the text body.
	Content string `json:"content"`

	// Timestamp is the creation time and the ordering key within a line.
	Timestamp time.Time `json:"timestamp"`

	// UpdatedAt is the last edit time, if the message was ever edited.
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// LineID is the line this message currently belongs to.
	LineID string `json:"line_id"`

	// Type classifies the payload (text, task, document, session).
	Type MessageType `json:"type"`

	// Metadata is the type-specific payload, opaque to the engine.
	Metadata *MessageMetadata `json:"metadata,omitempty"`

	// Deleted soft-deletes the message. Deleted messages are excluded from
	// timelines but retained for audit and undo.
	Deleted bool `json:"deleted,omitempty"`
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	cloned := m
	if m.UpdatedAt != nil {
		t := *m.UpdatedAt
		cloned.UpdatedAt = &t
	}
	if m.Metadata != nil {
		meta := MessageMetadata{}
		if m.Metadata.Task != nil {
			task := *m.Metadata.Task
			if task.DueAt != nil {
				due := *task.DueAt
				task.DueAt = &due
			}
			meta.Task = &task
		}
		if m.Metadata.Session != nil {
			session := *m.Metadata.Session
			if session.CheckIn != nil {
				in := *session.CheckIn
				session.CheckIn = &in
			}
			if session.CheckOut != nil {
				out := *session.CheckOut
				session.CheckOut = &out
			}
			meta.Session = &session
		}
		if m.Metadata.Document != nil {
			document := *m.Metadata.Document
			meta.Document = &document
		}
		cloned.Metadata = &meta
	}
	return cloned
}

// TaskCompleted reports whether the message is a task marked done. Non-task
// messages and tasks without metadata report false.
func (m Message) TaskCompleted() bool {
	if m.Type != MessageTypeTask || m.Metadata == nil || m.Metadata.Task == nil {
		return false
	}
	return m.Metadata.Task.Completed
}
