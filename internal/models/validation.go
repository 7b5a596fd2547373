package models

import (
	"fmt"
	"strings"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	if v.Field == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationErrors aggregates multiple validation failures.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Add records a validation error for a field.
func (v *ValidationErrors) Add(field, message string) {
	if message == "" {
		return
	}
	v.Errors = append(v.Errors, ValidationError{Field: field, Message: message})
}

// Err returns nil if there are no errors, otherwise the aggregate.
func (v *ValidationErrors) Err() error {
	if v == nil || len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Error implements error.
func (v *ValidationErrors) Error() string {
	if v == nil || len(v.Errors) == 0 {
		return "validation failed"
	}
	if len(v.Errors) == 1 {
		return v.Errors[0].Error()
	}
	parts := make([]string, 0, len(v.Errors))
	for _, err := range v.Errors {
		parts = append(parts, err.Error())
	}
	return fmt.Sprintf("%d validation errors: %s", len(v.Errors), strings.Join(parts, "; "))
}

// ValidateLine checks structural requirements on a line before it is
// persisted. Graph-level checks (cycles, protected lines) belong to the
// engine's mutation guard, not here.
func ValidateLine(line Line) error {
	errs := &ValidationErrors{}
	if strings.TrimSpace(line.ID) == "" {
		errs.Add("id", "required")
	}
	if strings.TrimSpace(line.Name) == "" {
		errs.Add("name", "required")
	}
	if line.ParentLineID == line.ID && line.ID != "" {
		errs.Add("parent_line_id", "line cannot be its own parent")
	}
	if line.CreatedAt.IsZero() {
		errs.Add("created_at", "required")
	}
	return errs.Err()
}

// ValidateMessage checks structural requirements on a message before it is
// persisted.
func ValidateMessage(msg Message) error {
	errs := &ValidationErrors{}
	if strings.TrimSpace(msg.ID) == "" {
		errs.Add("id", "required")
	}
	if strings.TrimSpace(msg.LineID) == "" {
		errs.Add("line_id", "required")
	}
	if msg.Timestamp.IsZero() {
		errs.Add("timestamp", "required")
	}
	if !ValidMessageType(msg.Type) {
		errs.Add("type", fmt.Sprintf("unknown message type %q", msg.Type))
	}
	return errs.Err()
}
