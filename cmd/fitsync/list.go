// ABOUTME: CLI command for listing cached entities of one kind.
// ABOUTME: Reads only the local cache; run 'fitsync pull' to refresh it.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/fitsync/internal/models"
)

var (
	listMine  bool
	listLimit int
)

var listCmd = &cobra.Command{
	Use:     "list <kind>",
	Aliases: []string{"ls", "l"},
	Short:   "List cached entities",
	Long: `List entities from the local cache.

OUTPUT FORMAT:

  Each line starts with the entity id, followed by kind-specific columns.
  Use the id with 'fitsync delete' or 'fitsync routine show'.

KINDS:

  exercises, users, routines, logs, notes, target_locations

EXAMPLES:

  fitsync list routines          # Cached routines
  fitsync list logs --mine       # Only your logs
  fitsync list notes -n 5        # Five newest notes
  fitsync list exercises -n 0    # Whole exercise catalog`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		kind, err := models.ParseKind(args[0])
		if err != nil {
			return err
		}

		var items []models.Entity
		if listMine {
			uid, err := sess.CurrentUserID()
			if err != nil {
				return fmt.Errorf("--mine needs a session: %w", err)
			}
			items, err = store.ByUser(ctx, kind, uid)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", kind, err)
			}
		} else {
			items, err = store.All(ctx, kind)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", kind, err)
			}
		}

		if len(items) == 0 {
			fmt.Printf("No %s found.\n", kind)
			return nil
		}
		if listLimit > 0 && len(items) > listLimit {
			items = items[:listLimit]
		}

		for _, e := range items {
			fmt.Println(formatEntity(e))
		}
		return nil
	},
}

// formatEntity renders one cache row as a single line.
func formatEntity(e models.Entity) string {
	faint := color.New(color.Faint)
	id := faint.Sprint(padRight(fmt.Sprint(e.GetID()), 6))

	switch v := e.(type) {
	case *models.User:
		name := v.DisplayName()
		return fmt.Sprintf("%s %s %s", id, padRight(v.Email, 28), name)
	case *models.Exercise:
		return fmt.Sprintf("%s %s %s", id, padRight(v.Name, 28), faint.Sprint(truncate(v.Description, 40)))
	case *models.Routine:
		return fmt.Sprintf("%s %s %s", id, padRight(truncate(v.Name, 32), 32), faint.Sprintf("[%s]", v.ExerciseIDs))
	case *models.ExerciseLog:
		return fmt.Sprintf("%s %s exercise %-4d %6.2f kg x %d", id, faint.Sprint(v.Date), v.ExerciseID, v.Weight, v.Reps)
	case *models.Note:
		text := ""
		if v.Text != "" {
			text = faint.Sprintf(" (%s)", truncate(v.Text, 30))
		}
		return fmt.Sprintf("%s %s %s%s", id, faint.Sprint(v.Time().Format("2006-01-02 15:04")), v.Header, text)
	case *models.TargetLocation:
		return fmt.Sprintf("%s %s %s", id, padRight(v.Name, 28), faint.Sprintf("%.5f,%.5f r=%.0fm", v.Position.Lat, v.Position.Lng, v.RadiusMeters))
	}
	return fmt.Sprintf("%s %s", id, e.Kind())
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	listCmd.Flags().BoolVar(&listMine, "mine", false, "only entities owned by the logged-in user")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results (0 for all)")
	rootCmd.AddCommand(listCmd)
}
