package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loomchat/loom/internal/engine"
	"github.com/loomchat/loom/internal/logging"
)

func newLinesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lines",
		Short: "Show the line tree",
		Args:  cobra.NoArgs,
		RunE:  runLines,
	}
	cmd.Flags().Bool("flat", false, "Flatten the forest into a pre-order list")
	cmd.Flags().Bool("json", false, "JSON output")
	return cmd
}

func runLines(cmd *cobra.Command, _ []string) error {
	rt, err := ensureRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	snap, err := rt.Store.Snapshot(cmd.Context())
	if err != nil {
		return Exitf(ExitCodeFailure, "load snapshot: %v", err)
	}

	tree := engine.BuildTree(snap)
	if len(tree.CycleLineIDs) > 0 {
		log := logging.Component("cli")
		log.Warn().
			Strs("line_ids", tree.CycleLineIDs).
			Msg("line graph contains a cycle; tree is degraded")
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	flat, _ := cmd.Flags().GetBool("flat")
	out := cmd.OutOrStdout()

	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(tree)
	}

	if flat {
		for _, node := range tree.Flatten() {
			fmt.Fprintf(out, "%s%s\t%s\n", strings.Repeat("  ", node.Depth), node.Line.Name, node.Line.ID)
		}
		return nil
	}

	for _, root := range tree.Roots {
		printTreeNode(out, root, "", true, snap.MainLineID)
	}
	return nil
}

func printTreeNode(out io.Writer, node *engine.TreeNode, prefix string, isLast bool, mainID string) {
	connector := "├─ "
	childPrefix := prefix + "│  "
	if isLast {
		connector = "└─ "
		childPrefix = prefix + "   "
	}
	if node.Depth == 0 {
		connector = ""
		childPrefix = prefix
	}

	label := node.Line.Name
	if node.Line.ID == mainID {
		label += " (main)"
	}
	fmt.Fprintf(out, "%s%s%s\t%s\n", prefix, connector, label, node.Line.ID)

	for i, child := range node.Children {
		printTreeNode(out, child, childPrefix, i == len(node.Children)-1, mainID)
	}
}
