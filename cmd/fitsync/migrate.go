// ABOUTME: CLI command for copying the local cache to another storage backend.
// ABOUTME: Switch backends in config.json after a successful migration.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/fitsync/internal/config"
	"github.com/harperreed/fitsync/internal/models"
	"github.com/harperreed/fitsync/internal/storage"
)

var (
	migrateTo     string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy cached data to another storage backend",
	Long: `Copy every cached entity from the configured backend to another one.

Ids are preserved and each kind in the destination is replaced, so running
the migration twice gives the same result.

BACKENDS:

  sqlite   ~/.local/share/fitsync/fitsync.db
  badger   ~/.local/share/fitsync/badger/
  charm    Charm KV, synced through Charm Cloud

USAGE:

  fitsync migrate --to badger --dry-run   # Preview what would be copied
  fitsync migrate --to badger             # Copy the data

AFTER MIGRATION:

  Point config.json at the new backend:
    { "backend": "badger" }`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		switch migrateTo {
		case config.BackendSQLite, config.BackendBadger, config.BackendCharm:
		case "":
			return fmt.Errorf("--to is required (sqlite, badger, or charm)")
		default:
			return fmt.Errorf("unknown backend: %q", migrateTo)
		}
		from := cfg.GetBackend()
		if migrateTo == from {
			return fmt.Errorf("already using %s", from)
		}

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			fmt.Println()

			snap, err := storage.Snapshot(ctx, store)
			if err != nil {
				return err
			}
			fmt.Printf("Would copy from %s to %s:\n", from, migrateTo)
			printCounts(map[models.Kind]int{
				models.KindUser:           len(snap.Users),
				models.KindExercise:       len(snap.Exercises),
				models.KindRoutine:        len(snap.Routines),
				models.KindLog:            len(snap.Logs),
				models.KindNote:           len(snap.Notes),
				models.KindTargetLocation: len(snap.TargetLocations),
			})
			return nil
		}

		dstCfg := *cfg
		dstCfg.Backend = migrateTo
		dst, err := dstCfg.OpenStorage(logger)
		if err != nil {
			return fmt.Errorf("failed to open %s store: %w", migrateTo, err)
		}
		defer func() { _ = dst.Close() }()

		summary, err := storage.MigrateData(ctx, store, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated %d entities from %s to %s", summary.Total(), from, migrateTo)
		printCounts(summary.Counts)
		fmt.Printf("\nSet \"backend\": %q in %s to use it.\n", migrateTo, config.GetConfigPath())
		return nil
	},
}

func printCounts(counts map[models.Kind]int) {
	for _, kind := range models.AllKinds {
		fmt.Printf("  %s %d\n", padRight(string(kind)+":", 18), counts[kind])
	}
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend: sqlite, badger, or charm")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	rootCmd.AddCommand(migrateCmd)
}
