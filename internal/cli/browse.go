package cli

import (
	"github.com/spf13/cobra"

	"github.com/loomchat/loom/internal/tui"
)

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [line]",
		Short: "Open the interactive timeline browser",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBrowse,
	}
	cmd.Flags().String("theme", "default", "Color theme (default, high-contrast)")
	return cmd
}

func runBrowse(cmd *cobra.Command, args []string) error {
	rt, err := ensureRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	focus := ""
	if len(args) == 1 {
		snap, err := rt.Store.Snapshot(cmd.Context())
		if err != nil {
			return Exitf(ExitCodeFailure, "load snapshot: %v", err)
		}
		line, err := resolveLine(snap, args[0])
		if err != nil {
			return err
		}
		focus = line.ID
	}

	theme, _ := cmd.Flags().GetString("theme")
	return tui.Run(tui.Config{
		Store:     rt.Store,
		FocusLine: focus,
		PageSize:  rt.Config.Timeline.PageSize,
		Theme:     theme,
	})
}
