// Package main provides the entry point for the imgrab CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for imgrab.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imgrab",
		Short: "Download every image referenced by a web page",
		Long: `imgrab fetches a single web page, extracts every image reference
(src, lazy-loading attributes, srcset entries and inline CSS url()),
downloads them concurrently, and stores the results in a folder named
after the page's domain. Byte-identical images are saved only once.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
