package main

import (
	"encoding/json"
	"fmt"

	"github.com/KDL-umass/Toybox"
	"github.com/KDL-umass/Toybox/internal/presentation/tui"
	"github.com/KDL-umass/Toybox/pkg/amidar"
	"github.com/KDL-umass/Toybox/pkg/middleware"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the current game state",
	Long: `Opens one read-only session and renders the score, timers, enemy table
and tile board. The engine is never written to.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := buildStack(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		tb, err := s.newToybox(toybox.WithMiddleware(middleware.ReadOnly()))
		if err != nil {
			return err
		}

		var summary amidar.Summary
		var board string
		err = tb.Amidar(cmd.Context(), func(iv *amidar.Intervention) error {
			summary = amidar.Summarize(iv.Game())
			board = tui.Board(iv.Game())
			return nil
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}

		rendered, err := tui.NewRenderer()(tui.GameMarkdown(summary, board))
		if err != nil {
			return fmt.Errorf("failed to render: %w", err)
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("json", false, "Print the summary as JSON")
}
