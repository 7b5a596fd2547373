package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/loomchat/loom/internal/engine"
	"github.com/loomchat/loom/internal/logging"
	"github.com/loomchat/loom/internal/models"
)

func newTimelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline <line>",
		Short: "Show the composed timeline of a line and its ancestors",
		Args:  cobra.ExactArgs(1),
		RunE:  runTimeline,
	}
	cmd.Flags().String("type", "all", "Filter by message type (text, task, document, session, all)")
	cmd.Flags().String("task-state", "all", "Filter tasks by completion (all, completed, incomplete)")
	cmd.Flags().String("tag", "", "Filter by line tag name (substring)")
	cmd.Flags().String("search", "", "Filter by content keyword (case-insensitive)")
	cmd.Flags().String("from", "", "Start of date range (RFC3339, inclusive)")
	cmd.Flags().String("to", "", "End of date range (RFC3339, inclusive)")
	cmd.Flags().Int("page", 1, "Page number (tail-anchored: page 1 is the most recent)")
	cmd.Flags().Int("page-size", 0, "Messages per page (0 uses the configured size)")
	cmd.Flags().Bool("all", false, "Disable pagination")
	cmd.Flags().Bool("json", false, "JSON output")
	return cmd
}

func runTimeline(cmd *cobra.Command, args []string) error {
	rt, err := ensureRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	snap, err := rt.Store.Snapshot(cmd.Context())
	if err != nil {
		return Exitf(ExitCodeFailure, "load snapshot: %v", err)
	}
	line, err := resolveLine(snap, args[0])
	if err != nil {
		return err
	}

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	tl := engine.ComposeTimeline(snap, line.ID)
	if tl.Degraded {
		log := logging.WithLine(line.ID)
		log.Warn().Msg("ancestor chain contains a cycle; timeline is partial")
	}
	tl = filter.Apply(snap, tl)

	hasOlder := false
	if all, _ := cmd.Flags().GetBool("all"); !all {
		pageSize, _ := cmd.Flags().GetInt("page-size")
		if pageSize <= 0 {
			pageSize = rt.Config.Timeline.PageSize
		}
		page, _ := cmd.Flags().GetInt("page")
		tl, hasOlder = engine.Paginate(snap, tl, pageSize, page)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			*engine.Timeline
			HasOlder bool `json:"has_older"`
		}{tl, hasOlder})
	}

	printTimeline(cmd.OutOrStdout(), snap, tl, hasOlder)
	return nil
}

func filterFromFlags(cmd *cobra.Command) (engine.Filter, error) {
	var filter engine.Filter

	typeFlag, _ := cmd.Flags().GetString("type")
	msgType := models.MessageType(strings.ToLower(strings.TrimSpace(typeFlag)))
	if msgType != "" && msgType != engine.TypeAll && !models.ValidMessageType(msgType) {
		return filter, Exitf(ExitCodeFailure, "invalid --type: %s", typeFlag)
	}
	filter.Type = msgType

	stateFlag, _ := cmd.Flags().GetString("task-state")
	switch state := engine.TaskState(strings.ToLower(strings.TrimSpace(stateFlag))); state {
	case "", engine.TaskStateAll, engine.TaskStateCompleted, engine.TaskStateIncomplete:
		filter.TaskState = state
	default:
		return filter, Exitf(ExitCodeFailure, "invalid --task-state: %s", stateFlag)
	}

	filter.Tag, _ = cmd.Flags().GetString("tag")
	filter.Keyword, _ = cmd.Flags().GetString("search")

	if from, _ := cmd.Flags().GetString("from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return filter, Exitf(ExitCodeFailure, "invalid --from: %v", err)
		}
		start := parsed.UTC()
		filter.Start = &start
	}
	if to, _ := cmd.Flags().GetString("to"); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return filter, Exitf(ExitCodeFailure, "invalid --to: %v", err)
		}
		end := parsed.UTC()
		filter.End = &end
	}
	return filter, nil
}

func printTimeline(out io.Writer, snap *models.Snapshot, tl *engine.Timeline, hasOlder bool) {
	if tl.Degraded {
		fmt.Fprintln(out, "!! line graph corrupt: showing partial history")
	}
	if hasOlder {
		fmt.Fprintln(out, "... older messages not shown")
	}

	transitionAt := make(map[int]engine.Transition, len(tl.Transitions))
	for _, tr := range tl.Transitions {
		transitionAt[tr.Index] = tr
	}

	for i, msg := range tl.Messages {
		if tr, ok := transitionAt[i]; ok {
			fmt.Fprintf(out, "── %s ──\n", tr.LineName)
		}
		marker := " "
		if msg.Type == models.MessageTypeTask {
			marker = "☐"
			if msg.TaskCompleted() {
				marker = "☑"
			}
		}
		branches := engine.BranchPoints(snap, msg.ID)
		branchNote := ""
		if len(branches) > 0 {
			branchNote = fmt.Sprintf("  [%d branch(es)]", len(branches))
		}
		fmt.Fprintf(out, "%s %s  %s%s\n", marker, msg.Timestamp.Format("2006-01-02 15:04"), msg.Content, branchNote)
	}
}
