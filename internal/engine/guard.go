package engine

import (
	"fmt"

	"github.com/loomchat/loom/internal/models"
)

// ReasonCode identifies why the mutation guard rejected an operation.
type ReasonCode string

const (
	ReasonCircularReference ReasonCode = "CIRCULAR_REFERENCE"
	ReasonTargetEmpty       ReasonCode = "TARGET_EMPTY"
	ReasonHasChildren       ReasonCode = "HAS_CHILDREN"
	ReasonProtectedLine     ReasonCode = "PROTECTED_LINE"
	ReasonNotFound          ReasonCode = "NOT_FOUND"
)

// PseudoLineAll is the id of the implicit "all messages" view. It is not a
// real line and can never be a mutation target.
const PseudoLineAll = "all"

// GuardError is a typed rejection from the mutation guard. Callers match on
// Code to present a precise message.
type GuardError struct {
	Code    ReasonCode
	Subject string
	Detail  string
}

func (e *GuardError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Subject)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Subject, e.Detail)
}

func reject(code ReasonCode, subject, detail string) *GuardError {
	return &GuardError{Code: code, Subject: subject, Detail: detail}
}

// CheckReparent validates moving a line under a new parent. An empty
// newParentID detaches the line into a root, which is always graph-safe as
// long as the line exists.
func CheckReparent(snap *models.Snapshot, lineID, newParentID string) error {
	if _, ok := snap.Line(lineID); !ok {
		return reject(ReasonNotFound, lineID, "line does not exist")
	}
	if newParentID == "" {
		return nil
	}
	if _, ok := snap.Line(newParentID); !ok {
		return reject(ReasonNotFound, newParentID, "new parent does not exist")
	}
	if WouldCreateCycle(snap, lineID, newParentID) {
		return reject(ReasonCircularReference, lineID, "attaching under "+newParentID+" would close a loop")
	}
	return nil
}

// CheckConnect validates attaching sourceLineID under targetLineID. Connect
// is a reparent with one extra requirement: the target must hold at least
// one message, since an empty line cannot anchor a fork point.
func CheckConnect(snap *models.Snapshot, sourceLineID, targetLineID string) error {
	if targetLineID == "" {
		return reject(ReasonNotFound, targetLineID, "connect target required")
	}
	if err := CheckReparent(snap, sourceLineID, targetLineID); err != nil {
		return err
	}
	if len(snap.LineMessages(targetLineID)) == 0 {
		return reject(ReasonTargetEmpty, targetLineID, "target line has no messages")
	}
	return nil
}

// CheckDelete validates removing a line from the graph. The line must have
// no child lines and must not be the designated main line. Messages on the
// line do not block deletion; reassigning or removing them is the caller's
// concern, the guard only answers whether the graph stays intact.
func CheckDelete(snap *models.Snapshot, lineID string) error {
	if _, ok := snap.Line(lineID); !ok {
		return reject(ReasonNotFound, lineID, "line does not exist")
	}
	if snap.MainLineID != "" && lineID == snap.MainLineID {
		return reject(ReasonProtectedLine, lineID, "main line cannot be deleted")
	}
	if children := snap.ChildLines(lineID); len(children) > 0 {
		return reject(ReasonHasChildren, lineID, fmt.Sprintf("%d child lines attached", len(children)))
	}
	return nil
}

// CheckMoveMessages validates reassigning messages to another line.
// Messages are leaves, not graph nodes, so there is no cycle risk; the
// guard checks that the target is a real line (not the "all messages"
// pseudo-line) and that every message exists.
func CheckMoveMessages(snap *models.Snapshot, messageIDs []string, targetLineID string) error {
	if targetLineID == PseudoLineAll {
		return reject(ReasonNotFound, targetLineID, "cannot move messages to the all-messages view")
	}
	if _, ok := snap.Line(targetLineID); !ok {
		return reject(ReasonNotFound, targetLineID, "target line does not exist")
	}
	for _, id := range messageIDs {
		if _, ok := snap.Message(id); !ok {
			return reject(ReasonNotFound, id, "message does not exist")
		}
	}
	return nil
}
