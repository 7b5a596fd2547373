package engine

import (
	"time"

	"github.com/loomchat/loom/internal/models"
)

var testBase = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func testLine(id, name, parentID string, createdOffset time.Duration) models.Line {
	return models.Line{
		ID:           id,
		Name:         name,
		ParentLineID: parentID,
		CreatedAt:    testBase.Add(createdOffset),
		UpdatedAt:    testBase.Add(createdOffset),
	}
}

func testMsg(id, lineID string, tsOffset time.Duration, content string) models.Message {
	return models.Message{
		ID:        id,
		LineID:    lineID,
		Timestamp: testBase.Add(tsOffset),
		Content:   content,
		Type:      models.MessageTypeText,
	}
}

func buildSnapshot(lines []models.Line, messages []models.Message) *models.Snapshot {
	snap := models.NewSnapshot()
	for _, line := range lines {
		snap.Lines[line.ID] = line
	}
	for _, msg := range messages {
		snap.Messages[msg.ID] = msg
	}
	return snap
}

// forkSnapshot is the canonical fixture: main holds messages at t=1,2 and
// child line b (parent main) holds messages at t=3,4.
func forkSnapshot() *models.Snapshot {
	snap := buildSnapshot(
		[]models.Line{
			testLine("main", "main", "", 0),
			testLine("b", "experiment", "main", 90*time.Second),
		},
		[]models.Message{
			testMsg("m1", "main", 1*time.Second, "first"),
			testMsg("m2", "main", 2*time.Second, "second"),
			testMsg("m3", "b", 3*time.Second, "third"),
			testMsg("m4", "b", 4*time.Second, "fourth"),
		},
	)
	snap.MainLineID = "main"
	return snap
}
