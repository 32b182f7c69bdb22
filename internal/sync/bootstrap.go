// ABOUTME: First-run seeding of sample logs so readers have data before the first pull.
// ABOUTME: Never touches existing rows and never calls the API.
package sync

import (
	"context"

	"github.com/harperreed/fitsync/internal/models"
	"github.com/harperreed/fitsync/internal/storage"
)

const (
	// BootstrapExerciseID is the exercise the sample logs are attached to.
	BootstrapExerciseID int64 = 1
	// BootstrapMetaKey records that seeding already happened.
	BootstrapMetaKey = "bootstrap_seeded"
)

// SampleLogs returns the fixed sample logs for userID.
func SampleLogs(userID int64) []*models.ExerciseLog {
	return []*models.ExerciseLog{
		{ExerciseID: BootstrapExerciseID, Date: "2024-01-01", Weight: 40, Reps: 10, UserID: userID},
		{ExerciseID: BootstrapExerciseID, Date: "2024-01-03", Weight: 42.5, Reps: 8, UserID: userID},
		{ExerciseID: BootstrapExerciseID, Date: "2024-01-05", Weight: 45, Reps: 8, UserID: userID},
		{ExerciseID: BootstrapExerciseID, Date: "2024-01-08", Weight: 47.5, Reps: 6, UserID: userID},
	}
}

// Bootstrap seeds the sample logs on first run. It reports whether it
// wrote anything. Existing logs for the sentinel exercise count as seeded.
func (e *Engine) Bootstrap(ctx context.Context) (bool, error) {
	const op = "bootstrap"

	_, seeded, err := e.store.Meta(ctx, BootstrapMetaKey)
	if err != nil {
		return false, localErr(op, err)
	}
	if seeded {
		return false, nil
	}

	existing, err := e.store.LogsByExercise(ctx, BootstrapExerciseID)
	if err != nil {
		return false, localErr(op, err)
	}
	if len(existing) > 0 {
		if err := e.store.SetMeta(ctx, BootstrapMetaKey, "1"); err != nil {
			return false, localErr(op, err)
		}
		return false, nil
	}

	var userID int64
	if id, err := e.session.CurrentUserID(); err == nil {
		userID = id
	}

	samples := SampleLogs(userID)
	if err := e.store.InsertMany(ctx, models.KindLog, storage.Entities(samples)); err != nil {
		return false, localErr(op, err)
	}
	if err := e.store.SetMeta(ctx, BootstrapMetaKey, "1"); err != nil {
		return false, localErr(op, err)
	}

	e.logger.Info("seeded sample logs", "count", len(samples), "exercise", BootstrapExerciseID)
	return true, nil
}
