// Package main is the entry point for the loom CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/loomchat/loom/internal/cli"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func buildVersion() string {
	if commit == "none" {
		return version
	}
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
}

func main() {
	// Default entrypoint: open the browser when invoked with no args.
	args := os.Args
	if len(args) == 1 {
		os.Args = append(args, "browse")
	}

	if err := cli.Execute(buildVersion()); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if !exitErr.Printed {
				fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
			}
			os.Exit(exitErr.Code)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
