package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/loomchat/loom/internal/engine"
)

func newMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <target-line> <message-id>...",
		Short: "Move messages to another line",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runMove,
	}
	return cmd
}

func runMove(cmd *cobra.Command, args []string) error {
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
	target, err := resolveLine(snap, args[0])
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	messageIDs := args[1:]
	_, mut, err := engine.MoveMessages(snap, messageIDs, target.ID, now)
	if err != nil {
		return guardExit(err)
	}
	if err := rt.Store.Apply(ctx, mut, now); err != nil {
		return Exitf(ExitCodeFailure, "apply: %v", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Moved %d message(s) to %q\n", len(messageIDs), target.Name)
	return nil
}
