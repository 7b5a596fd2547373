package engine

import (
	"time"

	"github.com/loomchat/loom/internal/models"
)

// MutationKind identifies an accepted mutation descriptor.
type MutationKind string

const (
	MutationReparent      MutationKind = "reparent"
	MutationDeleteLine    MutationKind = "delete_line"
	MutationMoveMessages  MutationKind = "move_messages"
	MutationDeleteMessage MutationKind = "delete_message"
)

// Mutation is the descriptor handed to the persistence collaborator after
// the guard accepted an operation. The engine never calls storage itself.
type Mutation struct {
	Kind         MutationKind `json:"kind"`
	LineID       string       `json:"line_id,omitempty"`
	NewParentID  string       `json:"new_parent_id,omitempty"`
	TargetLineID string       `json:"target_line_id,omitempty"`
	MessageIDs   []string     `json:"message_ids,omitempty"`
}

// Reparent guard-checks moving a line under a new parent, then derives the
// resulting snapshot without touching the input. Connect semantics reuse
// this after their own check.
func Reparent(snap *models.Snapshot, lineID, newParentID string, now time.Time) (*models.Snapshot, Mutation, error) {
	if err := CheckReparent(snap, lineID, newParentID); err != nil {
		return nil, Mutation{}, err
	}
	next := snap.Clone()
	line := next.Lines[lineID]
	line.ParentLineID = newParentID
	line.UpdatedAt = now
	next.Lines[lineID] = line
	return next, Mutation{Kind: MutationReparent, LineID: lineID, NewParentID: newParentID}, nil
}

// Connect attaches sourceLineID under targetLineID. Semantically a reparent
// with the extra requirement that the target can anchor a fork point.
func Connect(snap *models.Snapshot, sourceLineID, targetLineID string, now time.Time) (*models.Snapshot, Mutation, error) {
	if err := CheckConnect(snap, sourceLineID, targetLineID); err != nil {
		return nil, Mutation{}, err
	}
	return Reparent(snap, sourceLineID, targetLineID, now)
}

// DeleteLine removes a childless, non-protected line from the graph.
// Messages still owned by the line are left in place for the caller to
// reassign or remove.
func DeleteLine(snap *models.Snapshot, lineID string) (*models.Snapshot, Mutation, error) {
	if err := CheckDelete(snap, lineID); err != nil {
		return nil, Mutation{}, err
	}
	next := snap.Clone()
	delete(next.Lines, lineID)
	return next, Mutation{Kind: MutationDeleteLine, LineID: lineID}, nil
}

// MoveMessages reassigns messages to another line.
func MoveMessages(snap *models.Snapshot, messageIDs []string, targetLineID string, now time.Time) (*models.Snapshot, Mutation, error) {
	if err := CheckMoveMessages(snap, messageIDs, targetLineID); err != nil {
		return nil, Mutation{}, err
	}
	next := snap.Clone()
	for _, id := range messageIDs {
		msg := next.Messages[id]
		msg.LineID = targetLineID
		updated := now
		msg.UpdatedAt = &updated
		next.Messages[id] = msg
	}
	return next, Mutation{Kind: MutationMoveMessages, MessageIDs: append([]string(nil), messageIDs...), TargetLineID: targetLineID}, nil
}

// DeleteMessage soft-deletes a message. The record stays in the snapshot
// for audit and undo; timelines exclude it.
func DeleteMessage(snap *models.Snapshot, messageID string, now time.Time) (*models.Snapshot, Mutation, error) {
	if _, ok := snap.Message(messageID); !ok {
		return nil, Mutation{}, reject(ReasonNotFound, messageID, "message does not exist")
	}
	next := snap.Clone()
	msg := next.Messages[messageID]
	msg.Deleted = true
	updated := now
	msg.UpdatedAt = &updated
	next.Messages[messageID] = msg
	return next, Mutation{Kind: MutationDeleteMessage, MessageIDs: []string{messageID}}, nil
}
