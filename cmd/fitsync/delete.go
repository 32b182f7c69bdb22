// ABOUTME: CLI command for deleting a cached routine, note, or exercise log.
// ABOUTME: Removes the local row first, then asks the API to delete it.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/fitsync/internal/models"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <kind> <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a routine, note, or log",
	Long: `Delete an entity by kind and id. The id is the first column of
'fitsync list <kind>' output.

KINDS:

  routines, notes, logs

  Deleting a log asks the API to remove every log of the same exercise,
  since the API deletes logs by exercise.

EXAMPLES:

  fitsync delete note 12
  fitsync rm routine 4

CAUTION:

  The local row is removed even when the API call fails. There is no undo.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := models.ParseKind(args[0])
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id: %s", args[1])
		}

		out, err := engine.RemoveByID(cmd.Context(), kind, id)
		if out == nil || out.Local != nil {
			return fmt.Errorf("failed to delete %s %d: %w", singular(kind), id, err)
		}

		faint := color.New(color.Faint)
		if out.Synced() {
			color.Yellow("✗ Deleted %s", singular(kind))
			fmt.Printf("  %s\n", faint.Sprintf("#%d", id))
			return nil
		}
		color.Yellow("✗ Deleted %s locally", singular(kind))
		fmt.Printf("  %s server delete failed: %v\n", faint.Sprintf("#%d", id), out.Remote)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
