package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/loomchat/loom/internal/engine"
	"github.com/loomchat/loom/internal/models"
)

var cliBase = time.Date(2026, 4, 12, 8, 0, 0, 0, time.UTC)

func cliSnapshot() *models.Snapshot {
	snap := models.NewSnapshot()
	snap.MainLineID = "main"
	snap.Lines["main"] = models.Line{ID: "main", Name: "main", CreatedAt: cliBase}
	snap.Lines["b"] = models.Line{ID: "b", Name: "experiment", ParentLineID: "main", CreatedAt: cliBase.Add(time.Hour)}
	snap.Messages["m1"] = models.Message{ID: "m1", LineID: "main", Content: "first", Type: models.MessageTypeText, Timestamp: cliBase}
	snap.Messages["m2"] = models.Message{ID: "m2", LineID: "b", Content: "forked", Type: models.MessageTypeText, Timestamp: cliBase.Add(2 * time.Hour)}
	return snap
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd("dev")

	for _, path := range [][]string{
		{"init"},
		{"lines"},
		{"timeline"},
		{"send"},
		{"branch"},
		{"branches"},
		{"move"},
		{"tag", "add"},
		{"line", "rename"},
		{"line", "reparent"},
		{"line", "connect"},
		{"line", "delete"},
		{"edit"},
		{"rm"},
		{"browse"},
	} {
		found, _, err := root.Find(path)
		require.NoError(t, err, "path %v", path)
		require.Equal(t, path[len(path)-1], found.Name())
	}
}

func TestResolveLineByIDAndName(t *testing.T) {
	snap := cliSnapshot()

	line, err := resolveLine(snap, "b")
	require.NoError(t, err)
	require.Equal(t, "experiment", line.Name)

	line, err = resolveLine(snap, "EXPERIMENT")
	require.NoError(t, err)
	require.Equal(t, "b", line.ID)

	_, err = resolveLine(snap, "ghost")
	require.Error(t, err)
}

func TestResolveLineAmbiguousName(t *testing.T) {
	snap := cliSnapshot()
	snap.Lines["b2"] = models.Line{ID: "b2", Name: "experiment", ParentLineID: "main", CreatedAt: cliBase}

	_, err := resolveLine(snap, "experiment")
	require.Error(t, err)
	require.Contains(t, err.Error(), "ambiguous")
}

func TestGuardExitUsesRejectionCode(t *testing.T) {
	snap := cliSnapshot()

	err := guardExit(engine.CheckDelete(snap, "main"))
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, ExitCodeRejected, exitErr.Code)
	require.Contains(t, exitErr.Error(), string(engine.ReasonProtectedLine))

	err = guardExit(assertError("plain failure"))
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, ExitCodeFailure, exitErr.Code)
}

type assertError string

func (e assertError) Error() string { return string(e) }

func TestFilterFromFlags(t *testing.T) {
	cmd := newTimelineCmd()
	require.NoError(t, cmd.Flags().Set("type", "task"))
	require.NoError(t, cmd.Flags().Set("task-state", "incomplete"))
	require.NoError(t, cmd.Flags().Set("search", "deploy"))
	require.NoError(t, cmd.Flags().Set("from", "2026-04-01T00:00:00Z"))

	filter, err := filterFromFlags(cmd)
	require.NoError(t, err)
	require.Equal(t, models.MessageTypeTask, filter.Type)
	require.Equal(t, engine.TaskStateIncomplete, filter.TaskState)
	require.Equal(t, "deploy", filter.Keyword)
	require.NotNil(t, filter.Start)
	require.Nil(t, filter.End)
}

func TestFilterFromFlagsRejectsBadInput(t *testing.T) {
	cmd := newTimelineCmd()
	require.NoError(t, cmd.Flags().Set("type", "carrier-pigeon"))
	_, err := filterFromFlags(cmd)
	require.Error(t, err)

	cmd = newTimelineCmd()
	require.NoError(t, cmd.Flags().Set("from", "yesterday"))
	_, err = filterFromFlags(cmd)
	require.Error(t, err)
}

func TestPrintTimelineMarksTransitions(t *testing.T) {
	snap := cliSnapshot()
	tl := engine.ComposeTimeline(snap, "b")

	var buf bytes.Buffer
	printTimeline(&buf, snap, tl, false)

	out := buf.String()
	require.Contains(t, out, "── main ──")
	require.Contains(t, out, "── experiment ──")
	require.Contains(t, out, "first")
	require.Contains(t, out, "forked")
	require.Less(t, strings.Index(out, "first"), strings.Index(out, "forked"))
}

func TestPrintTimelineShowsPaginationHint(t *testing.T) {
	snap := cliSnapshot()
	tl := engine.ComposeTimeline(snap, "main")

	var buf bytes.Buffer
	printTimeline(&buf, snap, tl, true)
	require.Contains(t, buf.String(), "older messages")
}

func TestPrintTreeNodeMarksMain(t *testing.T) {
	snap := cliSnapshot()
	tree := engine.BuildTree(snap)
	require.Len(t, tree.Roots, 1)

	var buf bytes.Buffer
	printTreeNode(&buf, tree.Roots[0], "", true, snap.MainLineID)

	out := buf.String()
	require.Contains(t, out, "main (main)")
	require.Contains(t, out, "└─ experiment")
}
