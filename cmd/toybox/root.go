package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "toybox",
	Short: "Toybox inspects and edits the state of a running simulation",
	Long: `Toybox reads a simulation snapshot into a typed entity graph, lets you
inspect or edit it, and writes it back only when something changed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "toybox.yaml", "Path to the toybox config file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("state", "", "Override engine.path")
}
