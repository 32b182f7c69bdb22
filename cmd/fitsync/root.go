// ABOUTME: Root Cobra command for the fitsync CLI.
// ABOUTME: Builds config, logger, session, API client, local store, and sync engine per run.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harperreed/fitsync/internal/config"
	"github.com/harperreed/fitsync/internal/logging"
	"github.com/harperreed/fitsync/internal/remote"
	"github.com/harperreed/fitsync/internal/session"
	"github.com/harperreed/fitsync/internal/storage"
	fsync "github.com/harperreed/fitsync/internal/sync"
)

// skipSetup marks commands that manage their own resources.
const skipSetup = "skip-setup"

var (
	flagServer   string
	flagToken    string
	flagUserID   int64
	flagLogLevel string
)

var (
	cfg    *config.Config
	logger *log.Logger
	sess   *session.Store
	store  storage.Store
	api    *remote.Client
	engine *fsync.Engine
)

var rootCmd = &cobra.Command{
	Use:   "fitsync",
	Short: "Local-first fitness tracker that syncs with your training API",
	Long: `fitsync keeps a local copy of your routines, exercise logs, and notes
and syncs them with the fitness API.

QUICK START:

  $ fitsync login ana@example.com           # Start a session
  $ fitsync pull                            # Refresh everything from the API
  $ fitsync list routines                   # Show cached routines
  $ fitsync log add 3 42.5 8                # Log 8 reps of exercise 3 at 42.5 kg
  $ fitsync note add "Pierna" "Buen día"    # Write a note

ROUTINES:

  $ fitsync routine generate --weight 72 --height 1.75 --gender female
  $ fitsync routine show 4

OFFLINE FIRST:

  Writes always land in the local store first. If the API is unreachable
  the record stays local and the failure is reported; nothing is retried.

STORAGE:

  Backends: sqlite (default), badger, or charm (synced through Charm Cloud).
  Choose one in ~/.config/fitsync/config.json:

  { "backend": "sqlite", "server": "https://api.example.com" }

MCP INTEGRATION:

  Run 'fitsync mcp' to start the Model Context Protocol server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if needsSetup(cmd) {
			return setup()
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

// Execute runs the root command. The store is closed even when the command
// fails, since cobra skips post-run hooks after an error.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := teardown(); err == nil {
		err = cerr
	}
	return err
}

func needsSetup(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "completion":
		return false
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipSetup] == "true" {
			return false
		}
	}
	return true
}

func setup() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := flagLogLevel
	if level == "" {
		level = cfg.GetLogLevel()
	}
	logger, err = logging.New(os.Stderr, level)
	if err != nil {
		return err
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		logger.Warn("ignoring unreadable credentials", "path", config.CredentialsPath(), "err", err)
		creds = &config.Credentials{}
	}

	sess = session.New()
	userID, err := envUserID(flagUserID)
	if err != nil {
		return err
	}
	if src := restoreSession(sess, envOr(flagToken, "FITSYNC_TOKEN"), userID, creds); src != "" {
		logger.Debug("session restored", "source", src)
	}

	api = nil
	if server := resolveServer(flagServer, creds, cfg); server != "" {
		api, err = remote.New(server, sess,
			remote.WithTimeout(cfg.Timeout()),
			remote.WithLogger(logger),
		)
		if err != nil {
			return err
		}
	}

	store, err = cfg.OpenStorage(logger)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.GetBackend(), err)
	}

	var r fsync.Remote = offlineRemote{}
	if api != nil {
		r = api
	}
	engine = fsync.New(r, store, sess, logger)
	return nil
}

func teardown() error {
	if store == nil {
		return nil
	}
	err := store.Close()
	store = nil
	engine = nil
	return err
}

// restoreSession applies explicit credentials first, then saved ones.
// It returns where the session came from, or "" when it stays logged out.
func restoreSession(s *session.Store, token string, userID int64, creds *config.Credentials) string {
	if token != "" && userID > 0 {
		if err := s.Save(token, userID); err == nil {
			return "flags"
		}
	}
	if creds != nil && creds.Restore(s) {
		return "saved credentials"
	}
	return ""
}

// resolveServer picks the API base URL: flag, env, saved login, then config.
func resolveServer(flag string, creds *config.Credentials, c *config.Config) string {
	if s := envOr(flag, "FITSYNC_SERVER"); s != "" {
		return s
	}
	if creds != nil && creds.Server != "" {
		return creds.Server
	}
	return c.Server
}

func envOr(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}

func envUserID(flag int64) (int64, error) {
	if flag > 0 {
		return flag, nil
	}
	raw := os.Getenv("FITSYNC_USER_ID")
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid FITSYNC_USER_ID %q: %w", raw, err)
	}
	return id, nil
}

// requireAPI returns the API client or explains how to configure one.
func requireAPI() (*remote.Client, error) {
	if api == nil {
		return nil, fmt.Errorf("no API server configured: pass --server, set FITSYNC_SERVER, or add \"server\" to %s", config.GetConfigPath())
	}
	return api, nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagServer, "server", "", "API base URL (env FITSYNC_SERVER)")
	pf.StringVar(&flagToken, "token", "", "session token (env FITSYNC_TOKEN)")
	pf.Int64Var(&flagUserID, "user-id", 0, "session user id (env FITSYNC_USER_ID)")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
}
