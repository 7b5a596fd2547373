// Package cli implements the loom command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/loomchat/loom/internal/config"
	"github.com/loomchat/loom/internal/logging"
	"github.com/loomchat/loom/internal/store"
)

// ExitCode values for the CLI.
const (
	ExitCodeFailure  = 1
	ExitCodeRejected = 2
)

// ExitError carries an exit code through cobra back to main.
type ExitError struct {
	Code    int
	Err     error
	Printed bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit"
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Exitf builds an ExitError from a format string.
func Exitf(code int, format string, args ...any) error {
	return &ExitError{Code: code, Err: fmt.Errorf(format, args...)}
}

// Execute runs the loom CLI.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "loom",
		Short:         "Branching conversations: fork, reconnect, and merge lines of messages",
		Long:          "loom keeps a conversation as a tree of lines. Fork a new line from any message, reconnect lines under different parents, and read any line as one chronological timeline of everything that led up to it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	cmd.PersistentFlags().String("config", "", "Config file path")
	cmd.PersistentFlags().String("db", "", "Database file path (overrides config)")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newInitCmd(),
		newLinesCmd(),
		newTimelineCmd(),
		newSendCmd(),
		newBranchCmd(),
		newLineCmd(),
		newMoveCmd(),
		newBranchesCmd(),
		newTagCmd(),
		newEditCmd(),
		newRmCmd(),
		newBrowseCmd(),
	)

	return cmd
}

// runtime is the shared state commands operate on.
type runtime struct {
	Config *config.Config
	Store  *store.Store
}

func (r *runtime) Close() {
	if r.Store != nil {
		r.Store.Close()
	}
}

// ensureRuntime loads config, configures logging, and opens the store.
func ensureRuntime(cmd *cobra.Command) (*runtime, error) {
	loader := config.NewLoader()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loader.SetConfigFile(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, Exitf(ExitCodeFailure, "load config: %v", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	dbPath := cfg.DatabasePath()
	if override, _ := cmd.Flags().GetString("db"); override != "" {
		dbPath = override
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, Exitf(ExitCodeFailure, "create data dir: %v", err)
		}
	}
	st, err := store.Open(dbPath, cfg.Database.BusyTimeoutMs)
	if err != nil {
		return nil, Exitf(ExitCodeFailure, "open database: %v", err)
	}
	return &runtime{Config: cfg, Store: st}, nil
}
