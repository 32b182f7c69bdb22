// ABOUTME: Stand-in API used when no server is configured.
// ABOUTME: Every call fails as a network error so local writes still succeed.
package main

import (
	"context"
	"errors"

	"github.com/harperreed/fitsync/internal/models"
	"github.com/harperreed/fitsync/internal/remote"
)

var errNoServer = errors.New("no API server configured")

type offlineRemote struct{}

func (offlineRemote) fail(op string) error {
	return &remote.Error{Kind: remote.KindNetwork, Op: op, Err: errNoServer}
}

func (o offlineRemote) FetchUser(ctx context.Context) (*models.User, error) {
	return nil, o.fail("fetch user")
}

func (o offlineRemote) FetchExercises(ctx context.Context) ([]*models.Exercise, error) {
	return nil, o.fail("fetch exercises")
}

func (o offlineRemote) FetchRoutines(ctx context.Context) ([]*models.Routine, error) {
	return nil, o.fail("fetch routines")
}

func (o offlineRemote) FetchLogs(ctx context.Context) ([]*models.ExerciseLog, error) {
	return nil, o.fail("fetch logs")
}

func (o offlineRemote) FetchNotes(ctx context.Context) ([]*models.Note, error) {
	return nil, o.fail("fetch notes")
}

func (o offlineRemote) FetchTargetLocations(ctx context.Context) ([]*models.TargetLocation, error) {
	return nil, o.fail("fetch target locations")
}

func (o offlineRemote) InsertRoutine(ctx context.Context, r *models.Routine) error {
	return o.fail("insert routine")
}

func (o offlineRemote) InsertNote(ctx context.Context, n *models.Note) error {
	return o.fail("insert note")
}

func (o offlineRemote) InsertLog(ctx context.Context, l *models.ExerciseLog) error {
	return o.fail("insert log")
}

func (o offlineRemote) DeleteRoutine(ctx context.Context, id int64) error {
	return o.fail("delete routine")
}

func (o offlineRemote) DeleteNote(ctx context.Context, id int64) error {
	return o.fail("delete note")
}

func (o offlineRemote) DeleteLog(ctx context.Context, exerciseID int64) error {
	return o.fail("delete log")
}
