package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/loomchat/loom/internal/engine"
	"github.com/loomchat/loom/internal/models"
)

func newLineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "line",
		Short: "Manage lines (rename, reparent, connect, delete)",
	}
	cmd.AddCommand(
		newLineRenameCmd(),
		newLineReparentCmd(),
		newLineConnectCmd(),
		newLineDeleteCmd(),
	)
	return cmd
}

func newLineRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <line> <name>",
		Short: "Rename a line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			line, err := resolveLine(snap, args[0])
			if err != nil {
				return err
			}
			if err := rt.Store.Lines.Rename(ctx, line.ID, args[1], time.Now().UTC()); err != nil {
				return Exitf(ExitCodeFailure, "rename: %v", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", line.ID, args[1])
			return nil
		},
	}
}

func newLineReparentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reparent <line> [new-parent]",
		Short: "Move a line under a new parent (omit the parent to detach)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuardedLineMutation(cmd, args, func(snap *models.Snapshot, src, dst string, now time.Time) (engine.Mutation, error) {
				_, mut, err := engine.Reparent(snap, src, dst, now)
				return mut, err
			})
		},
	}
	return cmd
}

func newLineConnectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect <line> <target>",
		Short: "Connect a line under a target line holding messages",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuardedLineMutation(cmd, args, func(snap *models.Snapshot, src, dst string, now time.Time) (engine.Mutation, error) {
				_, mut, err := engine.Connect(snap, src, dst, now)
				return mut, err
			})
		},
	}
	return cmd
}

func runGuardedLineMutation(cmd *cobra.Command, args []string, mutate func(*models.Snapshot, string, string, time.Time) (engine.Mutation, error)) error {
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

	line, err := resolveLine(snap, args[0])
	if err != nil {
		return err
	}
	targetID := ""
	if len(args) == 2 {
		target, err := resolveLine(snap, args[1])
		if err != nil {
			return err
		}
		targetID = target.ID
	}

	now := time.Now().UTC()
	mut, err := mutate(snap, line.ID, targetID, now)
	if err != nil {
		return guardExit(err)
	}
	if err := rt.Store.Apply(ctx, mut, now); err != nil {
		return Exitf(ExitCodeFailure, "apply: %v", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Moved %q under %s\n", line.Name, parentLabel(snap, targetID))
	return nil
}

func newLineDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <line>",
		Short: "Delete a childless, non-main line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			line, err := resolveLine(snap, args[0])
			if err != nil {
				return err
			}

			_, mut, err := engine.DeleteLine(snap, line.ID)
			if err != nil {
				return guardExit(err)
			}
			if err := rt.Store.Apply(ctx, mut, time.Now().UTC()); err != nil {
				return Exitf(ExitCodeFailure, "apply: %v", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted line %q (%s)\n", line.Name, line.ID)
			return nil
		},
	}
}

func parentLabel(snap *models.Snapshot, parentID string) string {
	if parentID == "" {
		return "no parent (root)"
	}
	if line, ok := snap.Line(parentID); ok {
		return fmt.Sprintf("%q", line.Name)
	}
	return parentID
}

// guardExit maps a mutation-guard rejection to a distinct exit code with
// the typed reason in front.
func guardExit(err error) error {
	var gerr *engine.GuardError
	if errors.As(err, &gerr) {
		return &ExitError{Code: ExitCodeRejected, Err: gerr}
	}
	return Exitf(ExitCodeFailure, "%v", err)
}
