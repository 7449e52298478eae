package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Browse archived commits",
	Long:  `List and show the snapshots written back by past sessions, as recorded by the configured archive.`,
}

var archiveLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List archived commits, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := buildStack(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		a, err := s.requireArchive()
		if err != nil {
			return err
		}

		commits, err := a.List(cmd.Context(), s.cfg.Game, limit)
		if err != nil {
			return fmt.Errorf("listing commits: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(commits) == 0 {
			fmt.Fprintln(out, "No archived commits found.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCOMMITTED\tSESSION\tCHANGED")
		for _, c := range commits {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.CommittedAt.Format(time.RFC3339), c.SessionID, strings.Join(c.Changed, ","))
		}
		return w.Flush()
	},
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <commit-id>",
	Short: "Print one archived commit as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildStack(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		a, err := s.requireArchive()
		if err != nil {
			return err
		}

		c, err := a.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("loading commit '%s': %w", args[0], err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveLsCmd)
	archiveCmd.AddCommand(archiveShowCmd)
	archiveLsCmd.Flags().IntP("limit", "n", 20, "Maximum number of commits (0 for all)")
}
