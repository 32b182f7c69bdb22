// ABOUTME: CLI command for first-run seeding of sample exercise logs.
// ABOUTME: Runs once per local store and never calls the API.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	fsync "github.com/harperreed/fitsync/internal/sync"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Seed sample exercise logs on first run",
	Long: `Write a few sample logs for exercise 1 so charts and lists have data
before the first pull.

Seeding happens at most once per local store. If logs for that exercise
already exist (for example after a pull) nothing is written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		seeded, err := engine.Bootstrap(cmd.Context())
		if err != nil {
			return fmt.Errorf("bootstrap failed: %w", err)
		}
		if !seeded {
			fmt.Println("Already initialized, nothing to do.")
			return nil
		}
		color.Green("✓ Seeded %d sample logs", len(fsync.SampleLogs(0)))
		fmt.Printf("  exercise %d\n", fsync.BootstrapExerciseID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
}
