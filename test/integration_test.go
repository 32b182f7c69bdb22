// ABOUTME: Integration tests for the fitsync CLI binary.
// ABOUTME: Builds the binary and runs an offline workflow against temp directories.
package test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestOfflineWorkflow(t *testing.T) {
	projectRoot, _ := filepath.Abs("..")
	binary := filepath.Join(t.TempDir(), "fitsync")

	buildCmd := exec.Command("go", "build", "-o", binary, "./cmd/fitsync")
	buildCmd.Dir = projectRoot
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build: %v\n%s", err, output)
	}

	home := t.TempDir()
	env := append(os.Environ(),
		"HOME="+home,
		"XDG_CONFIG_HOME="+filepath.Join(home, "config"),
		"XDG_DATA_HOME="+filepath.Join(home, "data"),
		"FITSYNC_SERVER=",
		"FITSYNC_TOKEN=",
		"FITSYNC_USER_ID=",
		"NO_COLOR=1",
	)

	run := func(args ...string) (string, error) {
		cmd := exec.Command(binary, args...)
		cmd.Env = env
		output, err := cmd.CombinedOutput()
		return string(output), err
	}

	// Without a server, writes stay local and report the failed sync.
	output, err := run("note", "add", "Pierna", "Sentadilla pesada")
	if err != nil {
		t.Fatalf("Failed to add note: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Added note locally") {
		t.Errorf("Expected 'Added note locally' in output, got: %s", output)
	}

	output, err = run("log", "add", "1", "42.5", "8", "--date", "2025-03-01")
	if err != nil {
		t.Fatalf("Failed to add log: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Added log locally") {
		t.Errorf("Expected 'Added log locally' in output, got: %s", output)
	}

	output, err = run("list", "notes")
	if err != nil {
		t.Fatalf("Failed to list notes: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Pierna") {
		t.Errorf("Expected note in list, got: %s", output)
	}

	output, err = run("list", "logs")
	if err != nil {
		t.Fatalf("Failed to list logs: %v\n%s", err, output)
	}
	if !strings.Contains(output, "2025-03-01") {
		t.Errorf("Expected log date in list, got: %s", output)
	}

	// Bootstrap sees the existing log for exercise 1 and seeds nothing.
	output, err = run("bootstrap")
	if err != nil {
		t.Fatalf("Failed to bootstrap: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Already initialized") {
		t.Errorf("Expected bootstrap to skip, got: %s", output)
	}

	output, err = run("routine", "generate", "--weight", "72", "--height", "1.75", "--dry-run")
	if err != nil {
		t.Fatalf("Failed to generate routines: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Lunes") || !strings.Contains(output, "Dry run") {
		t.Errorf("Expected weekly plan in output, got: %s", output)
	}

	output, err = run("routine", "generate", "--metric", "31")
	if err != nil {
		t.Fatalf("Failed to save routines: %v\n%s", err, output)
	}

	exportPath := filepath.Join(home, "backup.json")
	output, err = run("export", "json", "-o", exportPath)
	if err != nil {
		t.Fatalf("Failed to export: %v\n%s", err, output)
	}

	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	var export struct {
		Tool     string            `json:"tool"`
		Notes    []json.RawMessage `json:"notes"`
		Logs     []json.RawMessage `json:"logs"`
		Routines []json.RawMessage `json:"routines"`
	}
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("Export is not valid JSON: %v", err)
	}
	if export.Tool != "fitsync" || len(export.Notes) != 1 || len(export.Logs) != 1 || len(export.Routines) != 7 {
		t.Errorf("Unexpected export: tool=%q notes=%d logs=%d routines=%d",
			export.Tool, len(export.Notes), len(export.Logs), len(export.Routines))
	}

	// Pulling without a server fails for every kind.
	if output, err := run("pull"); err == nil {
		t.Errorf("Expected pull to fail without a server, got: %s", output)
	}

	// Whoami works logged out.
	output, err = run("whoami")
	if err != nil {
		t.Fatalf("whoami failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Not logged in") {
		t.Errorf("Expected 'Not logged in', got: %s", output)
	}
}
