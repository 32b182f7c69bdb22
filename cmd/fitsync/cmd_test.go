// ABOUTME: Tests for CLI helpers and end-to-end command execution.
// ABOUTME: Commands run against temp XDG directories and an httptest fake of the API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/harperreed/fitsync/internal/config"
	"github.com/harperreed/fitsync/internal/kvstore"
	"github.com/harperreed/fitsync/internal/models"
	"github.com/harperreed/fitsync/internal/remote"
	"github.com/harperreed/fitsync/internal/session"
	"github.com/harperreed/fitsync/internal/storage"
	fsync "github.com/harperreed/fitsync/internal/sync"
)

// fakeAPI answers the endpoints the CLI calls for user 7.
type fakeAPI struct {
	mu       sync.Mutex
	requests []string
}

func (f *fakeAPI) saw(req string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r == req {
			return true
		}
	}
	return false
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.Method + " " + r.URL.Path {
	case "POST /api/user/login", "POST /api/user/register":
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"bad credentials"}`)
			return
		}
		fmt.Fprintf(w, `{"success":true,"data":{"user_id":7,"email":%q,"token":"tok-7"}}`, body.Email)
	case "GET /api/exercises":
		fmt.Fprint(w, `[{"id":1,"name":"Sentadilla","description":"Pierna"},{"id":2,"name":"Press banca"}]`)
	case "GET /api/user/token/7":
		fmt.Fprint(w, `{"id":7,"email":"ana@example.com","name":"Ana"}`)
	case "GET /api/targetlocations", "GET /api/users/7/routines", "GET /api/logs/user/7", "GET /api/notes/user/7":
		fmt.Fprint(w, `[]`)
	default:
		if r.Method == http.MethodPost || r.Method == http.MethodDelete {
			fmt.Fprint(w, `{}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}
}

func newFakeAPI(t *testing.T) (*fakeAPI, string) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, srv.URL
}

// setupTestCLI points config, data, and home at a temp dir and clears the
// environment the CLI reads.
func setupTestCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, key := range []string{"FITSYNC_SERVER", "FITSYNC_TOKEN", "FITSYNC_USER_ID", "FITSYNC_PASSWORD"} {
		t.Setenv(key, "")
	}
	return dir
}

func resetFlags() {
	flagServer, flagToken, flagUserID, flagLogLevel = "", "", 0, ""
	authPassword, authConfirm = "", ""
	listMine, listLimit = false, 20
	noteAt, logDate = "", ""
	genWeight, genHeight, genGender, genMetric, genDryRun = "", "", "", 0, false
	exportOutput = ""
	migrateTo, migrateDryRun = "", false
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags()
	rootCmd.SetArgs(args)
	return Execute()
}

// openTestStore opens the sqlite store the CLI wrote to. Call it after the
// commands under test have finished.
func openTestStore(t *testing.T, dir string) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(dir, "data", "fitsync", "fitsync.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"date and time with space", "2025-01-31 08:30", false},
		{"date and time with T", "2025-01-31T08:30", false},
		{"date only", "2025-01-31", false},
		{"RFC3339", "2025-01-31T08:30:00Z", false},
		{"invalid format", "31-01-2025", true},
		{"empty string", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseTime(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseTime(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("parseTime(%q) unexpected error: %v", tt.input, err)
				return
			}
			if result.IsZero() {
				t.Errorf("parseTime(%q) returned zero time", tt.input)
			}
		})
	}
}

func TestParseTimeValues(t *testing.T) {
	result, err := parseTime("2025-06-15")
	if err != nil {
		t.Fatalf("parseTime failed: %v", err)
	}
	if result.Year() != 2025 || result.Month() != time.June || result.Day() != 15 {
		t.Errorf("parseTime returned wrong date: got %v", result)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world this is a long string", 10, "hello w..."},
		{"", 10, ""},
		{"hello", 3, "..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input  string
		length int
		want   string
	}{
		{"abc", 6, "abc   "},
		{"abcdef", 6, "abcdef"},
		{"abcdefgh", 6, "abcdefgh"},
		{"", 2, "  "},
	}
	for _, tt := range tests {
		if got := padRight(tt.input, tt.length); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
		}
	}
}

func TestSingular(t *testing.T) {
	tests := map[models.Kind]string{
		models.KindNote:           "note",
		models.KindRoutine:        "routine",
		models.KindLog:            "log",
		models.KindTargetLocation: "target location",
	}
	for kind, want := range tests {
		if got := singular(kind); got != want {
			t.Errorf("singular(%s) = %q, want %q", kind, got, want)
		}
	}
}

func TestRootCmdFlags(t *testing.T) {
	if rootCmd.Use != "fitsync" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "fitsync")
	}
	for _, name := range []string{"server", "token", "user-id", "log-level"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected --%s persistent flag", name)
		}
	}
}

func TestListCmdFlags(t *testing.T) {
	limitFlag := listCmd.Flags().Lookup("limit")
	if limitFlag == nil {
		t.Fatal("Expected --limit flag on list command")
	}
	if limitFlag.DefValue != "20" {
		t.Errorf("Expected default limit 20, got %s", limitFlag.DefValue)
	}
	if listCmd.Flags().Lookup("mine") == nil {
		t.Error("Expected --mine flag on list command")
	}
}

func TestDeleteCmdAliases(t *testing.T) {
	want := map[string]bool{"del": true, "rm": true}
	for _, a := range deleteCmd.Aliases {
		delete(want, a)
	}
	if len(want) != 0 {
		t.Errorf("missing delete aliases: %v", want)
	}
}

func TestCommandTree(t *testing.T) {
	expected := []string{
		"register", "login", "logout", "whoami", "pull", "list", "note", "log",
		"routine", "delete", "export", "bootstrap", "mcp", "migrate", "cloud", "install-skill",
	}
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("Expected %q command", name)
		}
	}

	cloudNames := make(map[string]bool)
	for _, c := range cloudCmd.Commands() {
		cloudNames[c.Name()] = true
	}
	for _, name := range []string{"link", "unlink", "status", "repair", "reset", "wipe"} {
		if !cloudNames[name] {
			t.Errorf("Expected cloud %q subcommand", name)
		}
	}
}

func TestNeedsSetup(t *testing.T) {
	tests := []struct {
		cmd  *cobra.Command
		want bool
	}{
		{pullCmd, true},
		{routineGenerateCmd, true},
		{installSkillCmd, false},
		{cloudCmd, false},
		{cloudStatusCmd, false},
	}
	for _, tt := range tests {
		if got := needsSetup(tt.cmd); got != tt.want {
			t.Errorf("needsSetup(%s) = %v, want %v", tt.cmd.CommandPath(), got, tt.want)
		}
	}
}

func TestRestoreSession(t *testing.T) {
	saved := &config.Credentials{Token: "saved", UserID: 3}

	s := session.New()
	if src := restoreSession(s, "flag", 9, saved); src != "flags" {
		t.Errorf("source = %q, want flags", src)
	}
	if id, _ := s.CurrentUserID(); id != 9 {
		t.Errorf("user = %d, want 9", id)
	}

	s = session.New()
	if src := restoreSession(s, "flag", 0, saved); src != "saved credentials" {
		t.Errorf("source = %q, want saved credentials", src)
	}
	if id, _ := s.CurrentUserID(); id != 3 {
		t.Errorf("user = %d, want 3", id)
	}

	s = session.New()
	if src := restoreSession(s, "", 0, &config.Credentials{}); src != "" {
		t.Errorf("source = %q, want empty", src)
	}
	if s.IsLoggedIn() {
		t.Error("expected logged out")
	}
}

func TestResolveServer(t *testing.T) {
	setupTestCLI(t)
	cfg := &config.Config{Server: "http://config"}
	creds := &config.Credentials{Server: "http://saved"}

	if got := resolveServer("http://flag", creds, cfg); got != "http://flag" {
		t.Errorf("flag: got %q", got)
	}
	if got := resolveServer("", creds, cfg); got != "http://saved" {
		t.Errorf("saved: got %q", got)
	}
	if got := resolveServer("", &config.Credentials{}, cfg); got != "http://config" {
		t.Errorf("config: got %q", got)
	}

	t.Setenv("FITSYNC_SERVER", "http://env")
	if got := resolveServer("", creds, cfg); got != "http://env" {
		t.Errorf("env: got %q", got)
	}
}

func TestEnvUserID(t *testing.T) {
	setupTestCLI(t)

	if id, err := envUserID(5); err != nil || id != 5 {
		t.Errorf("flag: got %d, %v", id, err)
	}
	if id, err := envUserID(0); err != nil || id != 0 {
		t.Errorf("unset: got %d, %v", id, err)
	}

	t.Setenv("FITSYNC_USER_ID", "12")
	if id, err := envUserID(0); err != nil || id != 12 {
		t.Errorf("env: got %d, %v", id, err)
	}

	t.Setenv("FITSYNC_USER_ID", "twelve")
	if _, err := envUserID(0); err == nil {
		t.Error("expected error for non-numeric FITSYNC_USER_ID")
	}
}

func TestOfflineRemoteIsNetworkError(t *testing.T) {
	var r fsync.Remote = offlineRemote{}
	ctx := context.Background()

	if _, err := r.FetchExercises(ctx); !errors.Is(err, remote.ErrNetwork) {
		t.Errorf("FetchExercises error = %v, want network", err)
	}
	if err := r.InsertNote(ctx, &models.Note{Header: "x"}); !errors.Is(err, remote.ErrNetwork) {
		t.Errorf("InsertNote error = %v, want network", err)
	}
	if err := r.DeleteLog(ctx, 1); !errors.Is(err, errNoServer) {
		t.Errorf("DeleteLog error = %v, want errNoServer", err)
	}
}

func TestPrintOutcome(t *testing.T) {
	localErr := errors.New("disk full")
	if err := printOutcome(&fsync.Outcome{Kind: models.KindNote, Local: localErr}, localErr, "Added"); !errors.Is(err, localErr) {
		t.Errorf("local failure: got %v", err)
	}
	if err := printOutcome(nil, localErr, "Added"); err == nil {
		t.Error("nil outcome: expected error")
	}

	synced := &fsync.Outcome{Kind: models.KindNote, ID: 1, RemoteAttempted: true}
	if err := printOutcome(synced, nil, "Added"); err != nil {
		t.Errorf("synced: got %v", err)
	}

	remoteErr := &remote.Error{Kind: remote.KindNetwork, Op: "insert note"}
	unsynced := &fsync.Outcome{Kind: models.KindNote, ID: 1, RemoteAttempted: true, Remote: remoteErr}
	if err := printOutcome(unsynced, remoteErr, "Added"); err != nil {
		t.Errorf("remote failure should not be an error: got %v", err)
	}
}

func TestNoteAddOffline(t *testing.T) {
	dir := setupTestCLI(t)

	if err := run(t, "note", "add", "Pierna", "Buen día"); err != nil {
		t.Fatalf("note add failed: %v", err)
	}

	notes, err := storage.List[*models.Note](context.Background(), openTestStore(t, dir))
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("Expected 1 note, got %d", len(notes))
	}
	if notes[0].Header != "Pierna" || notes[0].Text != "Buen día" {
		t.Errorf("unexpected note: %+v", notes[0])
	}
}

func TestNoteAddWithTimestamp(t *testing.T) {
	dir := setupTestCLI(t)

	if err := run(t, "note", "add", "Descanso", "--at", "2025-03-01 20:00"); err != nil {
		t.Fatalf("note add failed: %v", err)
	}

	notes, _ := storage.List[*models.Note](context.Background(), openTestStore(t, dir))
	if len(notes) != 1 {
		t.Fatalf("Expected 1 note, got %d", len(notes))
	}
	if got := notes[0].Time().Format("2006-01-02 15:04"); got != "2025-03-01 20:00" {
		t.Errorf("timestamp = %s", got)
	}
}

func TestNoteAddRejectsEmptyNote(t *testing.T) {
	dir := setupTestCLI(t)

	if err := run(t, "note", "add", " "); err == nil {
		t.Error("Expected error for empty note")
	}
	if err := run(t, "note", "add", "x", "--at", "yesterday"); err == nil {
		t.Error("Expected error for invalid timestamp")
	}

	notes, _ := storage.List[*models.Note](context.Background(), openTestStore(t, dir))
	if len(notes) != 0 {
		t.Errorf("Expected no notes, got %d", len(notes))
	}
}

func TestLogAddSyncsWithServer(t *testing.T) {
	dir := setupTestCLI(t)
	api, url := newFakeAPI(t)

	err := run(t, "--server", url, "--token", "tok", "--user-id", "7",
		"log", "add", "3", "42,5", "8", "--date", "2025-03-01")
	if err != nil {
		t.Fatalf("log add failed: %v", err)
	}

	if !api.saw("POST /api/logs/user/7/insert") {
		t.Errorf("expected insert request, got %v", api.requests)
	}

	logs, _ := storage.List[*models.ExerciseLog](context.Background(), openTestStore(t, dir))
	if len(logs) != 1 {
		t.Fatalf("Expected 1 log, got %d", len(logs))
	}
	l := logs[0]
	if l.ExerciseID != 3 || l.Weight != 42.5 || l.Reps != 8 || l.Date != "2025-03-01" || l.UserID != 7 {
		t.Errorf("unexpected log: %+v", l)
	}
}

func TestLogAddInvalidArgs(t *testing.T) {
	setupTestCLI(t)

	tests := []struct {
		name string
		args []string
	}{
		{"bad exercise id", []string{"log", "add", "x", "40", "8"}},
		{"zero exercise id", []string{"log", "add", "0", "40", "8"}},
		{"bad weight", []string{"log", "add", "1", "heavy", "8"}},
		{"bad reps", []string{"log", "add", "1", "40", "eight"}},
		{"negative reps", []string{"log", "add", "1", "40", "-1"}},
		{"bad date", []string{"log", "add", "1", "40", "8", "--date", "01/03/2025"}},
		{"missing args", []string{"log", "add", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(t, tt.args...); err == nil {
				t.Errorf("Expected error for %v", tt.args)
			}
		})
	}
}

func TestPullExercisesLoggedOut(t *testing.T) {
	dir := setupTestCLI(t)
	_, url := newFakeAPI(t)

	if err := run(t, "--server", url, "pull", "exercises"); err != nil {
		t.Fatalf("pull failed: %v", err)
	}

	exercises, _ := storage.List[*models.Exercise](context.Background(), openTestStore(t, dir))
	if len(exercises) != 2 {
		t.Fatalf("Expected 2 exercises, got %d", len(exercises))
	}
	if exercises[0].Name != "Sentadilla" {
		t.Errorf("first exercise = %q", exercises[0].Name)
	}
}

func TestPullUserScopedNeedsSession(t *testing.T) {
	setupTestCLI(t)
	api, url := newFakeAPI(t)

	if err := run(t, "--server", url, "pull", "routines"); err == nil {
		t.Error("Expected error pulling routines without a session")
	}
	if api.saw("GET /api/users/7/routines") {
		t.Error("no request should be sent without a session")
	}
	if err := run(t, "--server", url, "pull", "bogus"); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestPullAllPartialSuccess(t *testing.T) {
	dir := setupTestCLI(t)
	_, url := newFakeAPI(t)

	// Logged out: public kinds succeed, user-scoped kinds fail.
	if err := run(t, "--server", url, "pull"); err != nil {
		t.Fatalf("pull all should succeed when some kinds do: %v", err)
	}
	exercises, _ := storage.List[*models.Exercise](context.Background(), openTestStore(t, dir))
	if len(exercises) != 2 {
		t.Errorf("Expected 2 exercises, got %d", len(exercises))
	}
}

func TestPullAllOfflineFails(t *testing.T) {
	setupTestCLI(t)

	if err := run(t, "pull", "all"); err == nil {
		t.Error("Expected error when every kind fails")
	}
}

func TestPullAllWithSession(t *testing.T) {
	dir := setupTestCLI(t)
	_, url := newFakeAPI(t)

	if err := run(t, "--server", url, "--token", "tok", "--user-id", "7", "pull", "all"); err != nil {
		t.Fatalf("pull all failed: %v", err)
	}
	u, err := storage.Find[*models.User](context.Background(), openTestStore(t, dir), 7)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if u.Email != "ana@example.com" {
		t.Errorf("email = %q", u.Email)
	}
}

func TestLoginSavesCredentials(t *testing.T) {
	setupTestCLI(t)
	_, url := newFakeAPI(t)

	if err := run(t, "--server", url, "login", "ana@example.com", "--password", "s3cret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds.UserID != 7 || creds.Token != "tok-7" || creds.Email != "ana@example.com" || creds.Server != url {
		t.Errorf("unexpected credentials: %+v", creds)
	}

	info, err := os.Stat(config.CredentialsPath())
	if err != nil {
		t.Fatalf("stat credentials: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("credentials mode = %o, want 600", perm)
	}

	// The next run restores both the session and the server.
	if err := run(t, "whoami"); err != nil {
		t.Errorf("whoami failed: %v", err)
	}
	if uid, err := sess.CurrentUserID(); err != nil || uid != 7 {
		t.Errorf("restored session = %d, %v", uid, err)
	}
	if api == nil || api.BaseURL() != url {
		t.Error("expected server restored from saved credentials")
	}

	if err := run(t, "logout"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	creds, _ = config.LoadCredentials()
	if creds.IsComplete() {
		t.Error("Expected credentials to be cleared")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	setupTestCLI(t)
	_, url := newFakeAPI(t)

	if err := run(t, "--server", url, "login", "ana@example.com", "--password", "nope"); err == nil {
		t.Fatal("Expected login error")
	}
	creds, _ := config.LoadCredentials()
	if creds.IsComplete() {
		t.Error("no credentials should be saved after a failed login")
	}
}

func TestLoginRequiresServer(t *testing.T) {
	setupTestCLI(t)

	if err := run(t, "login", "ana@example.com", "--password", "s3cret"); err == nil {
		t.Error("Expected error without a configured server")
	}
}

func TestRegister(t *testing.T) {
	setupTestCLI(t)
	api, url := newFakeAPI(t)

	if err := run(t, "--server", url, "register", "ana@example.com", "Ana", "--password", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if !api.saw("POST /api/user/register") {
		t.Error("expected register request")
	}
	creds, _ := config.LoadCredentials()
	if !creds.IsComplete() {
		t.Errorf("Expected saved credentials, got %+v", creds)
	}
}

func TestPasswordFromEnv(t *testing.T) {
	setupTestCLI(t)
	_, url := newFakeAPI(t)
	t.Setenv("FITSYNC_PASSWORD", "s3cret")

	if err := run(t, "--server", url, "login", "ana@example.com"); err != nil {
		t.Fatalf("login with env password failed: %v", err)
	}
}

func TestWhoamiLoggedOut(t *testing.T) {
	setupTestCLI(t)

	if err := run(t, "whoami"); err != nil {
		t.Errorf("whoami should not fail when logged out: %v", err)
	}
}

func TestRoutineGenerateDryRun(t *testing.T) {
	dir := setupTestCLI(t)

	if err := run(t, "routine", "generate", "--metric", "22", "--dry-run"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	routines, _ := storage.List[*models.Routine](context.Background(), openTestStore(t, dir))
	if len(routines) != 0 {
		t.Errorf("dry run saved %d routines", len(routines))
	}
}

func TestRoutineGenerateSaves(t *testing.T) {
	dir := setupTestCLI(t)

	err := run(t, "--token", "tok", "--user-id", "7",
		"routine", "generate", "--weight", "72", "--height", "1,75", "--gender", "female")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	routines, _ := storage.List[*models.Routine](context.Background(), openTestStore(t, dir))
	if len(routines) != 7 {
		t.Fatalf("Expected 7 routines, got %d", len(routines))
	}
	for _, r := range routines {
		if r.UserID != 7 {
			t.Errorf("routine %q owned by %d", r.Name, r.UserID)
		}
		if len(r.ExerciseIDs) == 0 {
			t.Errorf("routine %q has no exercises", r.Name)
		}
	}
}

func TestRoutineGenerateInvalid(t *testing.T) {
	setupTestCLI(t)

	tests := [][]string{
		{"routine", "generate"},
		{"routine", "generate", "--metric=-3"},
		{"routine", "generate", "--weight", "72"},
		{"routine", "generate", "--weight", "72", "--height", "0"},
		{"routine", "generate", "--weight", "72", "--height", "1.75", "--gender", "x"},
	}
	for _, args := range tests {
		if err := run(t, args...); err == nil {
			t.Errorf("Expected error for %v", args)
		}
	}
}

func TestRoutineShow(t *testing.T) {
	dir := setupTestCLI(t)
	_, url := newFakeAPI(t)

	if err := run(t, "--server", url, "pull", "exercises"); err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if err := run(t, "routine", "generate", "--metric", "22"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	db := openTestStore(t, dir)
	routines, _ := storage.List[*models.Routine](context.Background(), db)
	if len(routines) == 0 {
		t.Fatal("Expected routines")
	}
	id := strconv.FormatInt(routines[0].ID, 10)
	_ = db.Close()

	if err := run(t, "routine", "show", id); err != nil {
		t.Errorf("routine show failed: %v", err)
	}
	if err := run(t, "routine", "show", "9999"); err == nil {
		t.Error("Expected error for missing routine")
	}
	if err := run(t, "routine", "show", "abc"); err == nil {
		t.Error("Expected error for invalid id")
	}
}

func TestListCmd(t *testing.T) {
	setupTestCLI(t)

	if err := run(t, "note", "add", "Pierna"); err != nil {
		t.Fatalf("note add failed: %v", err)
	}
	if err := run(t, "list", "notes"); err != nil {
		t.Errorf("list notes failed: %v", err)
	}
	if err := run(t, "list", "routines"); err != nil {
		t.Errorf("list empty kind failed: %v", err)
	}
	if err := run(t, "list", "notes", "-n", "0"); err != nil {
		t.Errorf("list unlimited failed: %v", err)
	}
	if err := run(t, "list", "bogus"); err == nil {
		t.Error("Expected error for unknown kind")
	}
	if err := run(t, "list", "logs", "--mine"); err == nil {
		t.Error("Expected error for --mine without a session")
	}
	if err := run(t, "--token", "tok", "--user-id", "7", "list", "exercises", "--mine"); err == nil {
		t.Error("Expected error for --mine on an unowned kind")
	}
	if err := run(t, "--token", "tok", "--user-id", "7", "list", "notes", "--mine"); err != nil {
		t.Errorf("list --mine failed: %v", err)
	}
}

func TestFormatEntity(t *testing.T) {
	name := "Ana"
	items := []models.Entity{
		&models.User{ID: 1, Email: "ana@example.com", Name: &name},
		&models.Exercise{ID: 2, Name: "Sentadilla"},
		&models.Routine{ID: 3, Name: "Lunes", ExerciseIDs: models.IDList{1, 2}},
		&models.ExerciseLog{ID: 4, ExerciseID: 1, Date: "2025-01-01", Weight: 40, Reps: 10},
		&models.Note{ID: 5, Header: "Pierna", Text: "Buen día"},
		&models.TargetLocation{ID: 6, Name: "Gym"},
	}
	for _, e := range items {
		if got := formatEntity(e); got == "" {
			t.Errorf("formatEntity(%s) is empty", e.Kind())
		}
	}
}

func TestDeleteCmd(t *testing.T) {
	dir := setupTestCLI(t)

	if err := run(t, "note", "add", "Pierna"); err != nil {
		t.Fatalf("note add failed: %v", err)
	}
	db := openTestStore(t, dir)
	notes, _ := storage.List[*models.Note](context.Background(), db)
	if len(notes) != 1 {
		t.Fatalf("Expected 1 note, got %d", len(notes))
	}
	id := strconv.FormatInt(notes[0].ID, 10)
	_ = db.Close()

	// Offline: the server call fails but the local row is still removed.
	if err := run(t, "rm", "note", id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	notes, _ = storage.List[*models.Note](context.Background(), openTestStore(t, dir))
	if len(notes) != 0 {
		t.Errorf("Expected note deleted, %d left", len(notes))
	}
}

func TestDeleteCmdErrors(t *testing.T) {
	setupTestCLI(t)

	tests := [][]string{
		{"delete", "note", "42"},
		{"delete", "exercise", "1"},
		{"delete", "note", "abc"},
		{"delete", "bogus", "1"},
		{"delete", "note"},
	}
	for _, args := range tests {
		if err := run(t, args...); err == nil {
			t.Errorf("Expected error for %v", args)
		}
	}
}

func TestDeleteLogCallsServerByExercise(t *testing.T) {
	dir := setupTestCLI(t)
	api, url := newFakeAPI(t)
	login := []string{"--server", url, "--token", "tok", "--user-id", "7"}

	if err := run(t, append(login, "log", "add", "3", "40", "10")...); err != nil {
		t.Fatalf("log add failed: %v", err)
	}
	db := openTestStore(t, dir)
	logs, _ := storage.List[*models.ExerciseLog](context.Background(), db)
	if len(logs) != 1 {
		t.Fatalf("Expected 1 log, got %d", len(logs))
	}
	id := strconv.FormatInt(logs[0].ID, 10)
	_ = db.Close()

	if err := run(t, append(login, "delete", "log", id)...); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !api.saw("DELETE /api/logs/user/7/exercise/3") {
		t.Errorf("expected delete by exercise, got %v", api.requests)
	}
}

func TestExportToFile(t *testing.T) {
	dir := setupTestCLI(t)

	if err := run(t, "note", "add", "Pierna"); err != nil {
		t.Fatalf("note add failed: %v", err)
	}

	out := filepath.Join(dir, "backup.json")
	if err := run(t, "export", "json", "-o", out); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var export storage.ExportData
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if export.Tool != "fitsync" || len(export.Notes) != 1 {
		t.Errorf("unexpected export: tool=%q notes=%d", export.Tool, len(export.Notes))
	}
}

func TestExportFormats(t *testing.T) {
	setupTestCLI(t)

	if err := run(t, "export", "yaml"); err != nil {
		t.Errorf("yaml export failed: %v", err)
	}
	if err := run(t, "export", "xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestBootstrapOnce(t *testing.T) {
	dir := setupTestCLI(t)

	if err := run(t, "bootstrap"); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if err := run(t, "bootstrap"); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}

	logs, _ := storage.List[*models.ExerciseLog](context.Background(), openTestStore(t, dir))
	if len(logs) != len(fsync.SampleLogs(0)) {
		t.Errorf("Expected %d sample logs, got %d", len(fsync.SampleLogs(0)), len(logs))
	}
}

func TestMigrateToBadger(t *testing.T) {
	dir := setupTestCLI(t)

	if err := run(t, "note", "add", "Pierna"); err != nil {
		t.Fatalf("note add failed: %v", err)
	}
	if err := run(t, "migrate", "--to", "badger", "--dry-run"); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "fitsync", "badger")); !os.IsNotExist(err) {
		t.Error("dry run should not create the badger store")
	}

	if err := run(t, "migrate", "--to", "badger"); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	dst, err := kvstore.OpenBadger(filepath.Join(dir, "data", "fitsync", "badger"), nil)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	defer func() { _ = dst.Close() }()

	notes, err := storage.List[*models.Note](context.Background(), dst)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 1 || notes[0].Header != "Pierna" {
		t.Errorf("unexpected migrated notes: %v", notes)
	}
}

func TestMigrateValidation(t *testing.T) {
	setupTestCLI(t)

	tests := [][]string{
		{"migrate"},
		{"migrate", "--to", "sqlite"},
		{"migrate", "--to", "postgres"},
	}
	for _, args := range tests {
		if err := run(t, args...); err == nil {
			t.Errorf("Expected error for %v", args)
		}
	}
}

func TestConfiguredBackendBadger(t *testing.T) {
	dir := setupTestCLI(t)
	c := &config.Config{Backend: config.BackendBadger}
	if err := c.Save(); err != nil {
		t.Fatalf("save config: %v", err)
	}

	if err := run(t, "note", "add", "Pierna"); err != nil {
		t.Fatalf("note add failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "fitsync", "badger")); err != nil {
		t.Errorf("expected badger store on disk: %v", err)
	}
}
