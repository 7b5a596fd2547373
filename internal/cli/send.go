package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/loomchat/loom/internal/models"
)

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <line> <content>",
		Short: "Append a message to a line",
		Args:  cobra.ExactArgs(2),
		RunE:  runSend,
	}
	cmd.Flags().String("type", "text", "Message type (text, task, document, session)")
	cmd.Flags().String("at", "", "Manual timestamp (RFC3339); inserts at a historical point")
	cmd.Flags().String("priority", "", "Task priority (task type only)")
	cmd.Flags().Bool("completed", false, "Mark the task completed (task type only)")
	cmd.Flags().String("title", "", "Document title (document type only)")
	cmd.Flags().Bool("json", false, "JSON output")
	return cmd
}

func runSend(cmd *cobra.Command, args []string) error {
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

	typeFlag, _ := cmd.Flags().GetString("type")
	msgType := models.MessageType(strings.ToLower(strings.TrimSpace(typeFlag)))
	if !models.ValidMessageType(msgType) {
		return Exitf(ExitCodeFailure, "invalid message type: %s", typeFlag)
	}

	timestamp := time.Now().UTC()
	if at, _ := cmd.Flags().GetString("at"); at != "" {
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return Exitf(ExitCodeFailure, "invalid --at timestamp: %v", err)
		}
		timestamp = parsed.UTC()
	}

	msg := &models.Message{
		LineID:    line.ID,
		Content:   args[1],
		Timestamp: timestamp,
		Type:      msgType,
		Metadata:  metadataFromFlags(cmd, msgType),
	}
	if err := rt.Store.Messages.Create(ctx, msg); err != nil {
		return Exitf(ExitCodeFailure, "create message: %v", err)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(msg)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent %s to %q (%s)\n", msg.ID, line.Name, msg.Timestamp.Format(time.RFC3339))
	return nil
}

func metadataFromFlags(cmd *cobra.Command, msgType models.MessageType) *models.MessageMetadata {
	switch msgType {
	case models.MessageTypeTask:
		priority, _ := cmd.Flags().GetString("priority")
		completed, _ := cmd.Flags().GetBool("completed")
		return &models.MessageMetadata{
			Task: &models.TaskMetadata{Priority: priority, Completed: completed},
		}
	case models.MessageTypeDocument:
		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			return nil
		}
		return &models.MessageMetadata{
			Document: &models.DocumentMetadata{Title: title},
		}
	case models.MessageTypeSession:
		now := time.Now().UTC()
		return &models.MessageMetadata{
			Session: &models.SessionMetadata{CheckIn: &now},
		}
	default:
		return nil
	}
}
