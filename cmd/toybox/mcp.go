package main

import (
	"log"
	"os"

	"github.com/KDL-umass/Toybox/pkg/adapters/mcp"
	"github.com/KDL-umass/Toybox/pkg/amidar"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes Amidar interventions (set_lives, set_mode, remove_enemy, ...) as MCP
tools on Standard Input/Output. Every tool call runs in its own session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildStack(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		tb, err := s.newToybox()
		if err != nil {
			return err
		}

		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		s.logger.Info("Starting Toybox MCP Server (Stdio)", "game", s.cfg.Game)

		srv := mcp.NewServer(tb.Manager(),
			mcp.WithLogger(s.logger),
			mcp.WithInterventionOptions(amidar.WithModeDurations(s.cfg.Modes.JumpTime, s.cfg.Modes.ChaseTime)),
		)
		return srv.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
