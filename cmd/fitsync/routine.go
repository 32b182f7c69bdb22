// ABOUTME: CLI commands for generating weekly routines and showing one routine.
// ABOUTME: Generation classifies a body metric and saves seven routines through the sync engine.
package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/fitsync/internal/models"
	"github.com/harperreed/fitsync/internal/routine"
	"github.com/harperreed/fitsync/internal/storage"
)

var (
	genWeight string
	genHeight string
	genGender string
	genMetric float64
	genDryRun bool
)

var routineCmd = &cobra.Command{
	Use:     "routine",
	Aliases: []string{"r"},
	Short:   "Generate and inspect routines",
}

var routineGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a week of routines from your body metric",
	Long: `Generate seven routines, one per weekday, picked from the exercise
catalog according to your body metric.

Pass either --metric directly or --weight (kg) and --height (m) so the
metric is computed as weight / height², scaled by 0.95 for --gender female.
Decimal commas are accepted.

BUCKETS:

  < 18.5         underweight
  18.5 to < 25   normal
  25 to < 30     overweight
  >= 30          obese

EXAMPLES:

  fitsync routine generate --weight 72 --height 1.75
  fitsync routine generate --weight 64,5 --height 1,62 --gender female
  fitsync routine generate --metric 27.4 --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		metric := genMetric
		if genWeight != "" || genHeight != "" {
			gender := routine.Male
			if genGender != "" {
				g, err := routine.ParseGender(genGender)
				if err != nil {
					return err
				}
				gender = g
			}
			m, err := routine.ComputeMetric(genWeight, genHeight, gender)
			if err != nil {
				return err
			}
			metric = m
		}

		routines, err := routine.Generate(metric, currentUserID())
		if err != nil {
			if errors.Is(err, routine.ErrInvalidMetric) {
				return fmt.Errorf("%w: pass --metric or both --weight and --height", err)
			}
			return err
		}

		bucket := routine.Classify(metric)
		fmt.Printf("Metric %.1f (%s)\n\n", metric, bucket)

		if genDryRun {
			for _, r := range routines {
				fmt.Printf("  %s %s\n", padRight(r.Name, 34), color.New(color.Faint).Sprintf("[%s]", r.ExerciseIDs))
			}
			fmt.Println()
			color.Yellow("Dry run: nothing saved")
			return nil
		}

		outcomes, err := engine.PushAll(cmd.Context(), storage.Entities(routines))
		for _, o := range outcomes {
			if o.Local != nil {
				return fmt.Errorf("failed to save routines: %w", err)
			}
		}

		unsynced := 0
		for i, o := range outcomes {
			mark := color.GreenString("✓")
			if !o.Synced() {
				mark = color.YellowString("⚠")
				unsynced++
			}
			fmt.Printf("%s %s %s\n", mark, color.New(color.Faint).Sprintf("#%-4d", o.ID), routines[i].Name)
		}
		fmt.Println()

		if unsynced > 0 {
			color.Yellow("Saved %d routines locally, %d not synced", len(outcomes), unsynced)
			return nil
		}
		color.Green("✓ Saved %d routines", len(outcomes))
		return nil
	},
}

var routineShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a routine with its exercises",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id: %s", args[0])
		}

		r, err := storage.Find[*models.Routine](cmd.Context(), store, id)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("routine not found: %d", id)
		}
		if err != nil {
			return err
		}

		exercises, err := engine.RoutineExercises(cmd.Context(), r)
		if err != nil {
			return err
		}

		faint := color.New(color.Faint)
		color.New(color.Bold).Println(r.Name)
		if r.Description != "" {
			fmt.Println(faint.Sprint(r.Description))
		}
		fmt.Println()

		if len(exercises) == 0 {
			fmt.Println("No exercises cached for this routine. Run 'fitsync pull exercises'.")
			return nil
		}
		for i, e := range exercises {
			fmt.Printf("%2d. %s %s\n", i+1, padRight(e.Name, 28), faint.Sprint(truncate(e.Description, 40)))
		}
		if missing := len(r.ExerciseIDs) - len(exercises); missing > 0 {
			fmt.Println(faint.Sprintf("\n%d exercise(s) not in the local catalog", missing))
		}
		return nil
	},
}

func init() {
	f := routineGenerateCmd.Flags()
	f.StringVar(&genWeight, "weight", "", "body weight in kg")
	f.StringVar(&genHeight, "height", "", "height in m")
	f.StringVar(&genGender, "gender", "", "male or female (default male)")
	f.Float64Var(&genMetric, "metric", 0, "body metric, instead of weight and height")
	f.BoolVar(&genDryRun, "dry-run", false, "print the routines without saving")

	routineCmd.AddCommand(routineGenerateCmd)
	routineCmd.AddCommand(routineShowCmd)
	rootCmd.AddCommand(routineCmd)
}
