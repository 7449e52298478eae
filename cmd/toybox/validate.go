package main

import (
	"fmt"
	"os"

	"github.com/KDL-umass/Toybox/pkg/amidar"
	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/KDL-umass/Toybox/pkg/entity"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <snapshot.json>",
	Short: "Check a snapshot file against the Amidar schema",
	Long:  `Decodes a snapshot offline and reports the first schema or protocol error with its path.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runValidate(args[0]); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Snapshot is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	snap, err := domain.ParseSnapshot(data)
	if err != nil {
		return err
	}

	tracker := entity.NewTracker()
	defer tracker.Close()
	_, err = amidar.Decode(tracker, snap)
	return err
}
