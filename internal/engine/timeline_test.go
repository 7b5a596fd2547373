package engine

import (
	"testing"
	"time"

	"github.com/loomchat/loom/internal/models"
)

func TestComposeTimeline_ForkScenario(t *testing.T) {
	snap := forkSnapshot()

	tl := ComposeTimeline(snap, "b")
	if tl.Degraded {
		t.Fatal("unexpected degraded timeline")
	}

	wantOrder := []string{"m1", "m2", "m3", "m4"}
	if len(tl.Messages) != len(wantOrder) {
		t.Fatalf("expected %d messages, got %d", len(wantOrder), len(tl.Messages))
	}
	for i, id := range wantOrder {
		if tl.Messages[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, tl.Messages[i].ID)
		}
	}

	if len(tl.Transitions) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(tl.Transitions))
	}
	if tl.Transitions[0].Index != 0 || tl.Transitions[0].LineID != "main" {
		t.Fatalf("unexpected first transition: %+v", tl.Transitions[0])
	}
	if tl.Transitions[1].Index != 2 || tl.Transitions[1].LineID != "b" || tl.Transitions[1].LineName != "experiment" {
		t.Fatalf("unexpected second transition: %+v", tl.Transitions[1])
	}
}

func TestComposeTimeline_LineWithoutAncestors(t *testing.T) {
	snap := forkSnapshot()
	tl := ComposeTimeline(snap, "main")
	if len(tl.Messages) != 2 || tl.Messages[0].ID != "m1" || tl.Messages[1].ID != "m2" {
		t.Fatalf("unexpected messages: %+v", tl.Messages)
	}
	if len(tl.Transitions) != 1 || tl.Transitions[0].Index != 0 {
		t.Fatalf("unexpected transitions: %+v", tl.Transitions)
	}
}

func TestComposeTimeline_ExcludesDeleted(t *testing.T) {
	snap := forkSnapshot()
	deleted := snap.Messages["m2"]
	deleted.Deleted = true
	snap.Messages["m2"] = deleted

	tl := ComposeTimeline(snap, "b")
	for _, msg := range tl.Messages {
		if msg.ID == "m2" {
			t.Fatal("deleted message leaked into timeline")
		}
	}
	if len(tl.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(tl.Messages))
	}
}

func TestComposeTimeline_TieBrokenByID(t *testing.T) {
	ts := testBase.Add(time.Minute)
	snap := buildSnapshot(
		[]models.Line{testLine("main", "main", "", 0)},
		[]models.Message{
			{ID: "zz", LineID: "main", Timestamp: ts, Type: models.MessageTypeText},
			{ID: "aa", LineID: "main", Timestamp: ts, Type: models.MessageTypeText},
		},
	)

	tl := ComposeTimeline(snap, "main")
	if tl.Messages[0].ID != "aa" || tl.Messages[1].ID != "zz" {
		t.Fatalf("tie not broken by id: %s, %s", tl.Messages[0].ID, tl.Messages[1].ID)
	}
}

func TestComposeTimeline_LaterLineWithEarlierTimestamp(t *testing.T) {
	// Manual timestamp insertion: a child line message can predate a sibling
	// message in the parent. Order is real time, not graph position.
	snap := forkSnapshot()
	snap.Messages["m0"] = models.Message{
		ID: "m0", LineID: "b", Timestamp: testBase.Add(1500 * time.Millisecond),
		Type: models.MessageTypeText, Content: "inserted",
	}

	tl := ComposeTimeline(snap, "b")
	want := []string{"m1", "m0", "m2", "m3", "m4"}
	for i, id := range want {
		if tl.Messages[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, tl.Messages[i].ID)
		}
	}
	// main, b, main, b -> four transitions.
	if len(tl.Transitions) != 4 {
		t.Fatalf("expected 4 transitions, got %d: %+v", len(tl.Transitions), tl.Transitions)
	}
}

func TestComposeTimeline_CycleComposesPartialAndDegraded(t *testing.T) {
	snap := buildSnapshot(
		[]models.Line{
			testLine("a", "a", "b", 0),
			testLine("b", "b", "a", 0),
		},
		[]models.Message{
			testMsg("ma", "a", 1*time.Second, "from a"),
			testMsg("mb", "b", 2*time.Second, "from b"),
		},
	)

	tl := ComposeTimeline(snap, "a")
	if !tl.Degraded {
		t.Fatal("expected degraded timeline on cyclic ancestry")
	}
	if len(tl.Messages) != 2 {
		t.Fatalf("expected partial chain messages, got %d", len(tl.Messages))
	}
}

func TestComposeTimeline_UnknownLine(t *testing.T) {
	snap := forkSnapshot()
	tl := ComposeTimeline(snap, "ghost")
	if len(tl.Messages) != 0 || len(tl.Transitions) != 0 || tl.Degraded {
		t.Fatalf("expected empty timeline, got %+v", tl)
	}
}

func TestComposeTimeline_MetadataRoundTrips(t *testing.T) {
	snap := forkSnapshot()
	due := testBase.Add(24 * time.Hour)
	task := snap.Messages["m3"]
	task.Type = models.MessageTypeTask
	task.Metadata = &models.MessageMetadata{
		Task: &models.TaskMetadata{Priority: "high", Completed: true, DueAt: &due},
	}
	snap.Messages["m3"] = task

	tl := ComposeTimeline(snap, "b")
	var got *models.Message
	for i := range tl.Messages {
		if tl.Messages[i].ID == "m3" {
			got = &tl.Messages[i]
		}
	}
	if got == nil || got.Metadata == nil || got.Metadata.Task == nil {
		t.Fatal("task metadata lost in composition")
	}
	if got.Metadata.Task.Priority != "high" || !got.Metadata.Task.Completed || !got.Metadata.Task.DueAt.Equal(due) {
		t.Fatalf("metadata mutated: %+v", got.Metadata.Task)
	}

	// Mutating the returned timeline must not touch the snapshot.
	got.Metadata.Task.Priority = "low"
	if snap.Messages["m3"].Metadata.Task.Priority != "high" {
		t.Fatal("timeline aliases snapshot state")
	}
}

func TestComposeTimeline_TransitionsPartitionRuns(t *testing.T) {
	snap := forkSnapshot()
	snap.Messages["m0"] = models.Message{
		ID: "m0", LineID: "b", Timestamp: testBase.Add(1500 * time.Millisecond),
		Type: models.MessageTypeText,
	}
	tl := ComposeTimeline(snap, "b")

	for i, tr := range tl.Transitions {
		end := len(tl.Messages)
		if i+1 < len(tl.Transitions) {
			end = tl.Transitions[i+1].Index
		}
		if tr.Index >= end {
			t.Fatalf("empty run at transition %d", i)
		}
		for _, msg := range tl.Messages[tr.Index:end] {
			if msg.LineID != tr.LineID {
				t.Fatalf("run starting at %d crosses a line boundary", tr.Index)
			}
		}
		if tr.Index > 0 && tl.Messages[tr.Index-1].LineID == tr.LineID {
			t.Fatalf("transition at %d does not start a maximal run", tr.Index)
		}
	}
}
