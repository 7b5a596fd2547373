package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/loomchat/loom/internal/engine"
)

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <message-id> <content>",
		Short: "Replace a message's content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ensureRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := cmd.Context()
			if err := rt.Store.Messages.UpdateContent(ctx, args[0], args[1], time.Now().UTC()); err != nil {
				return Exitf(ExitCodeFailure, "edit message: %v", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[0])
			return nil
		},
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <message-id>",
		Short: "Remove a message from timelines (kept for audit)",
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

			now := time.Now().UTC()
			_, mut, err := engine.DeleteMessage(snap, args[0], now)
			if err != nil {
				return guardExit(err)
			}
			if err := rt.Store.Apply(ctx, mut, now); err != nil {
				return Exitf(ExitCodeFailure, "apply: %v", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}
