// ABOUTME: CLI commands for writing notes and exercise logs.
// ABOUTME: Records land in the local cache first and are then sent to the API.
package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/fitsync/internal/models"
	fsync "github.com/harperreed/fitsync/internal/sync"
)

var (
	noteAt  string
	logDate string
)

var noteCmd = &cobra.Command{
	Use:     "note",
	Aliases: []string{"n"},
	Short:   "Write journal notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add <header> [text]",
	Short: "Add a note",
	Long: `Add a journal note. Either the header or the text must be non-empty.

EXAMPLES:

  fitsync note add "Pierna" "Sentadilla pesada, buena técnica"
  fitsync note add "Descanso" --at "2025-03-01 20:00"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := ""
		if len(args) > 1 {
			text = args[1]
		}
		n := models.NewNote(currentUserID(), args[0], text)

		if noteAt != "" {
			t, err := parseTime(noteAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", noteAt)
			}
			n.Timestamp = t.UnixMilli()
		}

		out, err := engine.Push(cmd.Context(), n)
		return printOutcome(out, err, "Added")
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record exercise sets",
}

var logAddCmd = &cobra.Command{
	Use:   "add <exercise-id> <weight> <reps>",
	Short: "Log a set of an exercise",
	Long: `Log one set: the exercise id from 'fitsync list exercises', the weight
in kilograms, and the repetitions. The date defaults to today.

EXAMPLES:

  fitsync log add 3 42.5 8
  fitsync log add 3 45 6 --date 2025-03-01`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		exerciseID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || exerciseID <= 0 {
			return fmt.Errorf("invalid exercise id: %s", args[0])
		}
		weight, err := strconv.ParseFloat(strings.Replace(args[1], ",", ".", 1), 64)
		if err != nil {
			return fmt.Errorf("invalid weight: %s", args[1])
		}
		reps, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid reps: %s", args[2])
		}

		l := models.NewExerciseLog(exerciseID, currentUserID(), weight, reps)
		if logDate != "" {
			t, err := parseTime(logDate)
			if err != nil {
				return fmt.Errorf("invalid date: %s", logDate)
			}
			l.WithDate(t)
		}

		out, err := engine.Push(cmd.Context(), l)
		return printOutcome(out, err, "Added")
	},
}

// printOutcome reports both phases of a write. Only a local failure is an
// error; a failed server call leaves the record cached and is a warning.
func printOutcome(out *fsync.Outcome, err error, verb string) error {
	if out == nil || out.Local != nil {
		return fmt.Errorf("failed to save: %w", err)
	}

	faint := color.New(color.Faint)
	if out.Synced() {
		color.Green("✓ %s %s", verb, singular(out.Kind))
		fmt.Printf("  %s synced\n", faint.Sprintf("#%d", out.ID))
		return nil
	}

	color.Yellow("⚠ %s %s locally", verb, singular(out.Kind))
	fmt.Printf("  %s not synced: %v\n", faint.Sprintf("#%d", out.ID), out.Remote)
	return nil
}

func singular(k models.Kind) string {
	switch k {
	case models.KindLog:
		return "log"
	case models.KindTargetLocation:
		return "target location"
	}
	return strings.TrimSuffix(string(k), "s")
}

func currentUserID() int64 {
	id, err := sess.CurrentUserID()
	if err != nil {
		return 0
	}
	return id
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func init() {
	noteAddCmd.Flags().StringVar(&noteAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	noteCmd.AddCommand(noteAddCmd)

	logAddCmd.Flags().StringVar(&logDate, "date", "", "date of the set (YYYY-MM-DD)")
	logCmd.AddCommand(logAddCmd)

	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(logCmd)
}
