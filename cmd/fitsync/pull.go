// ABOUTME: CLI command for refreshing the local cache from the API.
// ABOUTME: Pulls one kind or every kind, reporting each result separately.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/fitsync/internal/models"
	"github.com/harperreed/fitsync/internal/remote"
	fsync "github.com/harperreed/fitsync/internal/sync"
)

var pullCmd = &cobra.Command{
	Use:   "pull [kind|all]",
	Short: "Refresh the local cache from the API",
	Long: `Replace cached data with what the API currently holds.

KINDS:

  exercises, users, routines, logs, notes, target_locations

  Without an argument (or with 'all') every kind is pulled in that order.
  A failed kind keeps its previous local copy; the others still refresh.

EXAMPLES:

  fitsync pull             # Refresh everything
  fitsync pull routines    # Refresh only routines
  fitsync pull exercises   # Works without logging in`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"all", "exercises", "users", "routines", "logs", "notes", "target_locations"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if len(args) == 0 || args[0] == "all" {
			results, err := engine.PullAll(ctx)
			failed := 0
			for _, res := range results {
				printPullResult(res)
				if res.Err != nil {
					failed++
				}
			}
			if failed == len(results) {
				return fmt.Errorf("pull failed: %w", err)
			}
			return nil
		}

		kind, err := models.ParseKind(args[0])
		if err != nil {
			return err
		}
		res, err := engine.Pull(ctx, kind)
		printPullResult(res)
		if err != nil {
			return fmt.Errorf("pull %s failed: %w", kind, err)
		}
		return nil
	},
}

func printPullResult(res *fsync.PullResult) {
	if res == nil {
		return
	}
	if res.Err != nil {
		color.Red("✗ %s", res.Kind)
		hint := ""
		if errors.Is(res.Err, remote.ErrUnauthorized) {
			hint = " (run 'fitsync login')"
		}
		fmt.Printf("  %s%s\n", color.New(color.Faint).Sprint(res.Err), hint)
		return
	}
	color.Green("✓ %s", res.Kind)
	fmt.Printf("  %d cached\n", res.Count)
}

func init() {
	rootCmd.AddCommand(pullCmd)
}
