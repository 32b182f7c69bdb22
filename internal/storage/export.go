// ABOUTME: Export of the whole local cache for backup and inspection.
// ABOUTME: Supports JSON and YAML over any Store backend.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/fitsync/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format of the local cache.
type ExportData struct {
	Version         string                   `json:"version" yaml:"version"`
	ExportedAt      time.Time                `json:"exported_at" yaml:"exported_at"`
	Tool            string                   `json:"tool" yaml:"tool"`
	Users           []*models.User           `json:"users" yaml:"users"`
	Exercises       []*models.Exercise       `json:"exercises" yaml:"exercises"`
	Routines        []*models.Routine        `json:"routines" yaml:"routines"`
	Logs            []*models.ExerciseLog    `json:"logs" yaml:"logs"`
	Notes           []*models.Note           `json:"notes" yaml:"notes"`
	TargetLocations []*models.TargetLocation `json:"target_locations" yaml:"target_locations"`
}

// Snapshot reads every kind from s.
func Snapshot(ctx context.Context, s Store) (*ExportData, error) {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
		Tool:       "fitsync",
	}

	var err error
	if data.Users, err = List[*models.User](ctx, s); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if data.Exercises, err = List[*models.Exercise](ctx, s); err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	if data.Routines, err = List[*models.Routine](ctx, s); err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	if data.Logs, err = List[*models.ExerciseLog](ctx, s); err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	if data.Notes, err = List[*models.Note](ctx, s); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if data.TargetLocations, err = List[*models.TargetLocation](ctx, s); err != nil {
		return nil, fmt.Errorf("list target locations: %w", err)
	}
	return data, nil
}

// ExportJSON exports all data as indented JSON.
func ExportJSON(ctx context.Context, s Store) ([]byte, error) {
	data, err := Snapshot(ctx, s)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML.
func ExportYAML(ctx context.Context, s Store) ([]byte, error) {
	data, err := Snapshot(ctx, s)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(data)
}
