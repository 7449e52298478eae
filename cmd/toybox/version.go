package main

import (
	"fmt"
	"strings"

	"github.com/KDL-umass/Toybox"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of toybox",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "toybox version %s\n", strings.TrimSpace(toybox.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
