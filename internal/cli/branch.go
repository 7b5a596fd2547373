package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/loomchat/loom/internal/engine"
	"github.com/loomchat/loom/internal/models"
)

func newBranchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch <message-id> <name>",
		Short: "Fork a new line from a message",
		Args:  cobra.ExactArgs(2),
		RunE:  runBranch,
	}
	return cmd
}

func runBranch(cmd *cobra.Command, args []string) error {
	rt, err := ensureRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	snap, err := rt.Store.Snapshot(ctx)
	if err != nil {
		return Exitf(ExitCodeFailure, "load snapshot: %v", err)
	}

	msg, ok := snap.Message(args[0])
	if !ok {
		return Exitf(ExitCodeFailure, "no message %q", args[0])
	}

	line := &models.Line{
		Name:         args[1],
		ParentLineID: msg.LineID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := rt.Store.Lines.Create(ctx, line, false); err != nil {
		return Exitf(ExitCodeFailure, "create line: %v", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Forked line %q (%s) from message %s\n", line.Name, line.ID, msg.ID)
	return nil
}

func newBranchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branches <message-id>",
		Short: "List the lines that fork from a message",
		Args:  cobra.ExactArgs(1),
		RunE:  runBranches,
	}
	return cmd
}

func runBranches(cmd *cobra.Command, args []string) error {
	rt, err := ensureRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	snap, err := rt.Store.Snapshot(cmd.Context())
	if err != nil {
		return Exitf(ExitCodeFailure, "load snapshot: %v", err)
	}
	if _, ok := snap.Message(args[0]); !ok {
		return Exitf(ExitCodeFailure, "no message %q", args[0])
	}

	forks := engine.BranchPoints(snap, args[0])
	if len(forks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No branches fork from this message.")
		return nil
	}
	for _, fork := range forks {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", fork.Name, fork.ID)
	}
	return nil
}
