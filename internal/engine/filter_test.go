package engine

import (
	"testing"
	"time"

	"github.com/loomchat/loom/internal/models"
)

func taggedForkSnapshot() *models.Snapshot {
	snap := forkSnapshot()
	snap.Tags["t1"] = models.Tag{ID: "t1", Name: "research"}
	line := snap.Lines["b"]
	line.TagIDs = []string{"t1"}
	snap.Lines["b"] = line

	task := snap.Messages["m3"]
	task.Type = models.MessageTypeTask
	task.Metadata = &models.MessageMetadata{Task: &models.TaskMetadata{Completed: true}}
	snap.Messages["m3"] = task

	open := snap.Messages["m4"]
	open.Type = models.MessageTypeTask
	open.Metadata = &models.MessageMetadata{Task: &models.TaskMetadata{Completed: false}}
	snap.Messages["m4"] = open
	return snap
}

func messageIDs(tl *Timeline) []string {
	ids := make([]string, 0, len(tl.Messages))
	for _, msg := range tl.Messages {
		ids = append(ids, msg.ID)
	}
	return ids
}

func TestFilter_ByType(t *testing.T) {
	snap := taggedForkSnapshot()
	tl := ComposeTimeline(snap, "b")

	got := Filter{Type: models.MessageTypeTask}.Apply(snap, tl)
	if len(got.Messages) != 2 || got.Messages[0].ID != "m3" || got.Messages[1].ID != "m4" {
		t.Fatalf("unexpected task filter result: %v", messageIDs(got))
	}

	all := Filter{Type: TypeAll}.Apply(snap, tl)
	if len(all.Messages) != len(tl.Messages) {
		t.Fatalf("type=all dropped messages: %v", messageIDs(all))
	}
}

func TestFilter_TaskCompletionSubFilter(t *testing.T) {
	snap := taggedForkSnapshot()
	tl := ComposeTimeline(snap, "b")

	completed := Filter{Type: models.MessageTypeTask, TaskState: TaskStateCompleted}.Apply(snap, tl)
	if len(completed.Messages) != 1 || completed.Messages[0].ID != "m3" {
		t.Fatalf("unexpected completed result: %v", messageIDs(completed))
	}

	incomplete := Filter{Type: models.MessageTypeTask, TaskState: TaskStateIncomplete}.Apply(snap, tl)
	if len(incomplete.Messages) != 1 || incomplete.Messages[0].ID != "m4" {
		t.Fatalf("unexpected incomplete result: %v", messageIDs(incomplete))
	}
}

func TestFilter_KeywordCaseInsensitive(t *testing.T) {
	snap := taggedForkSnapshot()
	tl := ComposeTimeline(snap, "b")

	got := Filter{Keyword: "THIRD"}.Apply(snap, tl)
	if len(got.Messages) != 1 || got.Messages[0].ID != "m3" {
		t.Fatalf("unexpected keyword result: %v", messageIDs(got))
	}
}

func TestFilter_TagSubstringOnLineTags(t *testing.T) {
	snap := taggedForkSnapshot()
	tl := ComposeTimeline(snap, "b")

	got := Filter{Tag: "sear"}.Apply(snap, tl)
	// Only line b carries the "research" tag.
	if len(got.Messages) != 2 || got.Messages[0].ID != "m3" || got.Messages[1].ID != "m4" {
		t.Fatalf("unexpected tag result: %v", messageIDs(got))
	}
}

func TestFilter_DateRangeInclusive(t *testing.T) {
	snap := taggedForkSnapshot()
	tl := ComposeTimeline(snap, "b")

	start := testBase.Add(2 * time.Second)
	end := testBase.Add(3 * time.Second)
	got := Filter{Start: &start, End: &end}.Apply(snap, tl)
	if len(got.Messages) != 2 || got.Messages[0].ID != "m2" || got.Messages[1].ID != "m3" {
		t.Fatalf("unexpected range result: %v", messageIDs(got))
	}
}

func TestFilter_TransitionsRecomputedNotIndexMapped(t *testing.T) {
	snap := taggedForkSnapshot()
	tl := ComposeTimeline(snap, "b")

	got := Filter{Type: models.MessageTypeTask}.Apply(snap, tl)
	// Both surviving messages belong to b: the main-line run collapsed.
	if len(got.Transitions) != 1 {
		t.Fatalf("expected 1 transition, got %+v", got.Transitions)
	}
	if got.Transitions[0].Index != 0 || got.Transitions[0].LineID != "b" {
		t.Fatalf("unexpected transition: %+v", got.Transitions[0])
	}
}

func TestFilter_Idempotent(t *testing.T) {
	snap := taggedForkSnapshot()
	tl := ComposeTimeline(snap, "b")
	filter := Filter{Type: models.MessageTypeTask, TaskState: TaskStateCompleted, Keyword: "third"}

	once := filter.Apply(snap, tl)
	twice := filter.Apply(snap, once)
	onceIDs, twiceIDs := messageIDs(once), messageIDs(twice)
	if len(onceIDs) != len(twiceIDs) {
		t.Fatalf("refiltering changed the result: %v vs %v", onceIDs, twiceIDs)
	}
	for i := range onceIDs {
		if onceIDs[i] != twiceIDs[i] {
			t.Fatalf("refiltering changed the result: %v vs %v", onceIDs, twiceIDs)
		}
	}
}

func TestFilter_DegradedFlagCarriesThrough(t *testing.T) {
	snap := taggedForkSnapshot()
	tl := ComposeTimeline(snap, "b")
	tl.Degraded = true

	if got := (Filter{Keyword: "first"}).Apply(snap, tl); !got.Degraded {
		t.Fatal("degraded flag dropped by filter")
	}
}

func TestPaginate_TailAnchored(t *testing.T) {
	snap := taggedForkSnapshot()
	tl := ComposeTimeline(snap, "b")

	page, hasOlder := Paginate(snap, tl, 2, 1)
	if !hasOlder {
		t.Fatal("expected older messages to exist")
	}
	if len(page.Messages) != 2 || page.Messages[0].ID != "m3" || page.Messages[1].ID != "m4" {
		t.Fatalf("unexpected page: %v", messageIDs(page))
	}
	if len(page.Transitions) != 1 || page.Transitions[0].Index != 0 {
		t.Fatalf("transitions not recomputed for window: %+v", page.Transitions)
	}

	full, hasOlder := Paginate(snap, tl, 2, 2)
	if hasOlder {
		t.Fatal("expected no older messages at page 2")
	}
	if len(full.Messages) != 4 {
		t.Fatalf("expected full window, got %d", len(full.Messages))
	}
}

func TestPaginate_NonPositivePageSizeReturnsAll(t *testing.T) {
	snap := taggedForkSnapshot()
	tl := ComposeTimeline(snap, "b")

	all, hasOlder := Paginate(snap, tl, 0, 1)
	if hasOlder || len(all.Messages) != len(tl.Messages) {
		t.Fatalf("expected unpaginated result, got %d (hasOlder=%v)", len(all.Messages), hasOlder)
	}
}
