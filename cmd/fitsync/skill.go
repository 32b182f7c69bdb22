// ABOUTME: install-skill command that drops the embedded fitsync skill into Claude Code.
// ABOUTME: Shows which fitsync commands the skill covers and asks before writing.

package main

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

//go:embed skill/SKILL.md
var skillFS embed.FS

var skillSkipConfirm bool

var installSkillCmd = &cobra.Command{
	Use:   "install-skill",
	Short: "Teach Claude Code to drive fitsync",
	Long: `Write the fitsync skill to ~/.claude/skills/fitsync/SKILL.md.

With the skill installed, Claude Code can answer questions from your cached
training data and record sets or notes by running fitsync for you. Run it
again after upgrading fitsync to refresh the installed copy.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipSetup: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return installSkill(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// skillCoverage pairs the commands the skill uses with what they do for Claude.
var skillCoverage = [][2]string{
	{"fitsync pull, list", "read routines, logs and notes"},
	{"fitsync log add, note add", "record a set or a training note"},
	{"fitsync routine generate", "plan a week from weight and height"},
}

func skillPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".claude", "skills", "fitsync", "SKILL.md"), nil
}

func installSkill(in io.Reader, out io.Writer) error {
	path, err := skillPath()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "fitsync skill → %s\n", path)
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintln(out, color.YellowString("  replaces the copy already installed there"))
	}
	fmt.Fprintln(out)
	for _, c := range skillCoverage {
		fmt.Fprintf(out, "  %s  %s\n", padRight(c[0], 26), color.New(color.Faint).Sprint(c[1]))
	}
	fmt.Fprintln(out)

	if !skillSkipConfirm {
		ok, err := confirm(in, out, "Install it? [y/N] ")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Skill not installed.")
			return nil
		}
	}

	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		return fmt.Errorf("failed to read embedded skill: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create skill directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write skill file: %w", err)
	}

	fmt.Fprintln(out, color.GreenString("✓ Skill installed"))
	fmt.Fprintln(out, `Ask Claude Code something like "log 8 reps of exercise 3 at 60 kg".`)
	return nil
}

// confirm asks a yes/no question. Anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprint(out, question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func init() {
	installSkillCmd.Flags().BoolVarP(&skillSkipConfirm, "yes", "y", false, "install without asking")
	rootCmd.AddCommand(installSkillCmd)
}
