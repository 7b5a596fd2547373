package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/loomchat/loom/internal/logging"
	"github.com/loomchat/loom/internal/models"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Create the database and the main line",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
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
	if snap.MainLineID != "" {
		return Exitf(ExitCodeFailure, "already initialized: main line %s exists", snap.MainLineID)
	}

	name := "main"
	if len(args) == 1 {
		name = args[0]
	}
	line := &models.Line{Name: name, CreatedAt: time.Now().UTC()}
	if err := rt.Store.Lines.Create(ctx, line, true); err != nil {
		return Exitf(ExitCodeFailure, "create main line: %v", err)
	}

	log := logging.Component("cli")
	log.Info().Str("line_id", line.ID).Msg("initialized")
	fmt.Fprintf(cmd.OutOrStdout(), "Created main line %q (%s)\n", line.Name, line.ID)
	return nil
}
