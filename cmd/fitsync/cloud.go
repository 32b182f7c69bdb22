// ABOUTME: CLI commands for the Charm Cloud backend.
// ABOUTME: Supports link, unlink, status, repair, reset, and wipe of the fitsync Charm database.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/charm/kv"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/fitsync/internal/config"
	"github.com/harperreed/fitsync/internal/kvstore"
	"github.com/harperreed/fitsync/internal/models"
)

var cloudCmd = &cobra.Command{
	Use:   "cloud",
	Short: "Manage the Charm Cloud backend",
	Long: `Manage the Charm Cloud copy of the local cache.

This applies when config.json sets "backend": "charm". The cache is
E2E encrypted with your SSH key before upload, and syncs after each write.

GETTING STARTED:

  1. Link your device (creates/uses SSH key automatically):
     fitsync cloud link

  2. Switch the backend in ~/.config/fitsync/config.json:
     { "backend": "charm" }

  3. Check status:
     fitsync cloud status

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device from Charm
  status      Show account info and cached counts
  repair      Repair database corruption (checkpoints WAL, removes SHM, vacuums)
  reset       Reset local data and restore from cloud (destructive)
  wipe        Delete cloud and local data (destructive)`,
	Annotations: map[string]string{skipSetup: "true"},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return kvstore.EnsureCharmHost()
	},
}

var cloudLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to Charm",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("link"); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}
		color.Green("\n✓ Device linked to Charm")

		e, err := kvstore.OpenCharmEngine(config.CharmDBName, nil)
		if err != nil {
			color.Yellow("⚠ Initial sync skipped: %v", err)
			return nil
		}
		defer func() { _ = e.Close() }()

		if err := e.Sync(); err != nil {
			color.Yellow("⚠ Initial sync failed: %v", err)
		} else {
			color.Green("✓ Initial sync complete")
		}
		return nil
	},
}

var cloudUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Disconnect from Charm",
	Long: `Disconnect this device from Charm.

This does not delete the local cache.
You can link again later with 'fitsync cloud link'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("unlink"); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}
		color.Green("✓ Device unlinked from Charm")
		fmt.Println("Your local cache is preserved.")
		return nil
	},
}

var cloudStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Charm account and cached counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := kvstore.CharmID()
		if err != nil {
			color.Yellow("Not linked to Charm")
			fmt.Println("\nRun 'fitsync cloud link' to connect to Charm.")
			return nil
		}

		fmt.Println("Charm ID:", id)
		fmt.Println("Server:  ", os.Getenv("CHARM_HOST"))
		fmt.Println()

		st, err := kvstore.OpenCharm(config.CharmDBName, nil)
		if err != nil {
			return fmt.Errorf("failed to open charm store: %w", err)
		}
		defer func() { _ = st.Close() }()

		counts := make(map[models.Kind]int, len(models.AllKinds))
		for _, kind := range models.AllKinds {
			items, err := st.All(cmd.Context(), kind)
			if err != nil {
				return fmt.Errorf("failed to count %s: %w", kind, err)
			}
			counts[kind] = len(items)
		}

		color.Green("✓ Connected to Charm")
		printCounts(counts)
		return nil
	},
}

var cloudWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all cloud and local data",
	Long: `Delete all cloud backups and the local Charm cache.

This is a DESTRUCTIVE operation. The API server is not affected; run
'fitsync pull' afterwards to rebuild the cache.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("This will PERMANENTLY DELETE all cloud backups and the local fitsync cache.")
		fmt.Print("Type 'wipe' to confirm: ")
		var confirm string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &confirm)
		if confirm != "wipe" {
			fmt.Println("Canceled.")
			return nil
		}

		result, err := kv.Wipe(config.CharmDBName)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}

		color.Green("✓ Data wiped successfully")
		fmt.Printf("  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Printf("  Local files deleted: %d\n", result.LocalFilesDeleted)
		return nil
	},
}

var cloudRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair database corruption",
	Long: `Repair database corruption by checkpointing WAL, removing SHM files, checking integrity, and vacuuming.

Use this when you encounter database lock errors or corruption.
Run with --force to attempt recovery even if integrity checks fail.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		fmt.Println("Repairing fitsync database...")
		result, err := kv.Repair(config.CharmDBName, force)

		if result.WalCheckpointed {
			color.Green("  ✓ WAL checkpointed")
		}
		if result.ShmRemoved {
			color.Green("  ✓ SHM file removed")
		}
		if result.IntegrityOK {
			color.Green("  ✓ Integrity check passed")
		} else {
			color.Red("  ✗ Integrity check failed")
		}
		if result.Vacuumed {
			color.Green("  ✓ Database vacuumed")
		}

		if err != nil {
			if !force {
				color.Yellow("\nRun with --force to attempt recovery.")
			}
			return fmt.Errorf("repair failed: %w", err)
		}

		color.Green("\n✓ Repair complete")
		return nil
	},
}

var cloudResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local data and restore from cloud",
	Long: `Delete the local Charm cache and restore it from Charm Cloud.

Use this to reset a device to the cloud state.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("This will DELETE the local fitsync cache and restore it from cloud.")
		fmt.Print("Continue? [y/N]: ")
		var confirm string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Canceled.")
			return nil
		}

		if err := kv.Reset(config.CharmDBName); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}

		color.Green("✓ Local data reset and restored from cloud")
		return nil
	},
}

func runCharm(arg string) error {
	c := exec.Command("charm", arg)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

func init() {
	cloudCmd.AddCommand(cloudLinkCmd)
	cloudCmd.AddCommand(cloudUnlinkCmd)
	cloudCmd.AddCommand(cloudStatusCmd)
	cloudCmd.AddCommand(cloudRepairCmd)
	cloudCmd.AddCommand(cloudResetCmd)
	cloudCmd.AddCommand(cloudWipeCmd)

	cloudRepairCmd.Flags().Bool("force", false, "Attempt recovery even if integrity checks fail")

	rootCmd.AddCommand(cloudCmd)
}
