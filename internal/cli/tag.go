package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loomchat/loom/internal/models"
	"github.com/loomchat/loom/internal/store"
)

func newTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage line tags",
	}
	cmd.AddCommand(newTagAddCmd(), newTagListCmd())
	return cmd
}

func newTagAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <line> <tag-name>",
		Short: "Attach a tag to a line, creating the tag if needed",
		Args:  cobra.ExactArgs(2),
		RunE:  runTagAdd,
	}
	cmd.Flags().String("color", "", "Tag color")
	return cmd
}

func runTagAdd(cmd *cobra.Command, args []string) error {
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

	tag, err := rt.Store.Tags.FindByName(ctx, args[1])
	if errors.Is(err, store.ErrTagNotFound) {
		color, _ := cmd.Flags().GetString("color")
		tag = &models.Tag{Name: args[1], Color: color}
		if err := rt.Store.Tags.Create(ctx, tag); err != nil {
			return Exitf(ExitCodeFailure, "create tag: %v", err)
		}
	} else if err != nil {
		return Exitf(ExitCodeFailure, "find tag: %v", err)
	}

	if err := rt.Store.Lines.AttachTag(ctx, line.ID, tag.ID); err != nil {
		return Exitf(ExitCodeFailure, "attach tag: %v", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Tagged %q with %q\n", line.Name, tag.Name)
	return nil
}

func newTagListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := ensureRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			tags, err := rt.Store.Tags.List(cmd.Context())
			if err != nil {
				return Exitf(ExitCodeFailure, "list tags: %v", err)
			}
			for _, tag := range tags {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", tag.Name, tag.ID)
			}
			return nil
		},
	}
}
