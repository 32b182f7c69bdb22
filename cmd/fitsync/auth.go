// ABOUTME: CLI commands for account registration, login, logout, and whoami.
// ABOUTME: Successful logins are saved so later runs restore the session.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/harperreed/fitsync/internal/config"
	"github.com/harperreed/fitsync/internal/models"
	"github.com/harperreed/fitsync/internal/remote"
	"github.com/harperreed/fitsync/internal/storage"
)

var (
	authPassword string
	authConfirm  string
)

var registerCmd = &cobra.Command{
	Use:   "register <email> <name>",
	Short: "Create an account and log in",
	Long: `Create an account on the fitness API and start a session.

The password is read from --password, FITSYNC_PASSWORD, or a prompt.

EXAMPLES:

  fitsync register ana@example.com "Ana Pérez"
  fitsync register ana@example.com Ana --password s3cret`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireAPI()
		if err != nil {
			return err
		}

		password, err := readPassword(cmd.InOrStdin(), "Password: ")
		if err != nil {
			return err
		}
		confirm := authConfirm
		if confirm == "" {
			confirm = password
		}

		creds, err := client.RegisterUser(cmd.Context(), args[0], password, confirm, args[1])
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		if err := startSession(creds); err != nil {
			return err
		}

		color.Green("✓ Registered %s", creds.Email)
		fmt.Printf("  user %d\n", creds.UserID)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in and save the session",
	Long: `Log in to the fitness API.

The token and user id are saved to ~/.config/fitsync/credentials.json
(owner-only permissions) and restored on later runs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireAPI()
		if err != nil {
			return err
		}

		password, err := readPassword(cmd.InOrStdin(), "Password: ")
		if err != nil {
			return err
		}

		creds, err := client.Login(cmd.Context(), args[0], password)
		if err != nil {
			if errors.Is(err, remote.ErrUnauthorized) {
				return fmt.Errorf("login failed: wrong email or password")
			}
			return fmt.Errorf("login failed: %w", err)
		}
		if err := startSession(creds); err != nil {
			return err
		}

		color.Green("✓ Logged in as %s", creds.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget saved credentials",
	Long: `Log out. Cached data stays on disk; run 'fitsync pull' after the next
login to refresh it for that account.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess.Clear()
		if err := config.ClearCredentials(); err != nil {
			return fmt.Errorf("failed to remove credentials: %w", err)
		}
		color.Yellow("✗ Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session and cached profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := sess.CurrentUserID()
		if err != nil {
			fmt.Println("Not logged in.")
			fmt.Println("\nRun 'fitsync login <email>' to start a session.")
			return nil
		}

		fmt.Printf("User ID: %d\n", uid)
		if api != nil {
			fmt.Printf("Server:  %s\n", api.BaseURL())
		}

		u, err := storage.Find[*models.User](cmd.Context(), store, uid)
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Println(color.New(color.Faint).Sprint("Profile not cached yet; run 'fitsync pull users'."))
			return nil
		}
		if err != nil {
			return err
		}

		name := u.DisplayName()
		if name == "" {
			name = "(no name)"
		}
		fmt.Printf("Name:    %s\n", name)
		fmt.Printf("Email:   %s\n", u.Email)
		if u.StreakDays != nil {
			fmt.Printf("Streak:  %d days\n", *u.StreakDays)
		}
		return nil
	},
}

func startSession(creds *remote.Credentials) error {
	if err := sess.Save(creds.Token, creds.UserID); err != nil {
		return fmt.Errorf("server returned unusable credentials: %w", err)
	}
	saved := &config.Credentials{
		Server: api.BaseURL(),
		UserID: creds.UserID,
		Token:  creds.Token,
		Email:  creds.Email,
	}
	if err := config.SaveCredentials(saved); err != nil {
		return fmt.Errorf("logged in, but failed to save credentials: %w", err)
	}
	return nil
}

// readPassword takes the password from the flag, the environment, or a prompt.
func readPassword(in io.Reader, prompt string) (string, error) {
	if p := envOr(authPassword, "FITSYNC_PASSWORD"); p != "" {
		return p, nil
	}

	fmt.Fprint(os.Stderr, prompt)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}

func init() {
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVarP(&authPassword, "password", "p", "", "account password (env FITSYNC_PASSWORD)")
	}
	registerCmd.Flags().StringVar(&authConfirm, "confirm", "", "password confirmation (defaults to the password)")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
