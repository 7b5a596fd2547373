package engine

import (
	"github.com/loomchat/loom/internal/models"
)

// BranchPoints returns the lines that fork from a message: children of the
// message's line whose earliest non-deleted message is timestamped no
// earlier than the message itself. The fork attaches logically after that
// point in the parent's timeline, so earlier children belong to earlier
// messages. Child lines without any messages yet cannot be placed and are
// not reported.
//
// Results are ordered by line creation time, ties by id. Used purely for
// the "this message has N branches" annotation; nothing here mutates.
func BranchPoints(snap *models.Snapshot, messageID string) []models.Line {
	if snap == nil {
		return nil
	}
	msg, ok := snap.Message(messageID)
	if !ok {
		return nil
	}

	var forks []models.Line
	for _, child := range snap.ChildLines(msg.LineID) {
		first, ok := earliestMessage(snap, child.ID)
		if !ok {
			continue
		}
		if first.Timestamp.Before(msg.Timestamp) {
			continue
		}
		forks = append(forks, child.Clone())
	}
	sortLines(forks)
	return forks
}

// earliestMessage finds a line's first non-deleted message by timestamp,
// ties by id.
func earliestMessage(snap *models.Snapshot, lineID string) (models.Message, bool) {
	var first models.Message
	found := false
	for _, msg := range snap.LineMessages(lineID) {
		if !found {
			first = msg
			found = true
			continue
		}
		if msg.Timestamp.Before(first.Timestamp) ||
			(msg.Timestamp.Equal(first.Timestamp) && msg.ID < first.ID) {
			first = msg
		}
	}
	return first, found
}
