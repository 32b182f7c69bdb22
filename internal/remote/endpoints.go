// ABOUTME: One method per remote endpoint: fetch, insert, and delete per entity kind.
// ABOUTME: User-scoped calls fail with ErrUnauthorized before sending when logged out.
package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/harperreed/fitsync/internal/models"
)

// FetchUser returns the logged-in user's profile.
func (c *Client) FetchUser(ctx context.Context) (*models.User, error) {
	const op = "fetch user"
	uid, err := c.userID(op)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, op, http.MethodGet, fmt.Sprintf("/api/user/token/%d", uid), nil)
	if err != nil {
		return nil, err
	}
	u, err := decodeObject[models.User](raw)
	if err != nil {
		return nil, c.decodeErr(op, raw, err)
	}
	return u, nil
}

// FetchExercises returns the global exercise catalog.
func (c *Client) FetchExercises(ctx context.Context) ([]*models.Exercise, error) {
	return fetchList[*models.Exercise](ctx, c, "fetch exercises", "/api/exercises")
}

// FetchTargetLocations returns the global target locations.
func (c *Client) FetchTargetLocations(ctx context.Context) ([]*models.TargetLocation, error) {
	return fetchList[*models.TargetLocation](ctx, c, "fetch target locations", "/api/targetlocations")
}

// FetchRoutines returns the current user's routines.
func (c *Client) FetchRoutines(ctx context.Context) ([]*models.Routine, error) {
	const op = "fetch routines"
	uid, err := c.userID(op)
	if err != nil {
		return nil, err
	}
	return fetchList[*models.Routine](ctx, c, op, fmt.Sprintf("/api/users/%d/routines", uid))
}

// FetchNotes returns the current user's notes.
func (c *Client) FetchNotes(ctx context.Context) ([]*models.Note, error) {
	const op = "fetch notes"
	uid, err := c.userID(op)
	if err != nil {
		return nil, err
	}
	return fetchList[*models.Note](ctx, c, op, fmt.Sprintf("/api/notes/user/%d", uid))
}

// FetchLogs returns the current user's exercise logs.
func (c *Client) FetchLogs(ctx context.Context) ([]*models.ExerciseLog, error) {
	const op = "fetch logs"
	uid, err := c.userID(op)
	if err != nil {
		return nil, err
	}
	return fetchList[*models.ExerciseLog](ctx, c, op, fmt.Sprintf("/api/logs/user/%d", uid))
}

// InsertRoutine creates a routine for the current user.
func (c *Client) InsertRoutine(ctx context.Context, r *models.Routine) error {
	const op = "insert routine"
	uid, err := c.userID(op)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, op, http.MethodPost, fmt.Sprintf("/api/users/%d/routines", uid), r)
	return err
}

// DeleteRoutine removes a routine by id.
func (c *Client) DeleteRoutine(ctx context.Context, routineID int64) error {
	const op = "delete routine"
	uid, err := c.userID(op)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, op, http.MethodDelete, fmt.Sprintf("/api/users/%d/routines/%d", uid, routineID), nil)
	return err
}

// InsertNote creates a note for the current user.
func (c *Client) InsertNote(ctx context.Context, n *models.Note) error {
	const op = "insert note"
	uid, err := c.userID(op)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, op, http.MethodPost, fmt.Sprintf("/api/logs/user/%d/note", uid), n)
	return err
}

// DeleteNote removes a note by id.
func (c *Client) DeleteNote(ctx context.Context, noteID int64) error {
	const op = "delete note"
	uid, err := c.userID(op)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, op, http.MethodDelete, fmt.Sprintf("/api/logs/user/%d/note/%d", uid, noteID), nil)
	return err
}

// InsertLog records an exercise log for the current user.
func (c *Client) InsertLog(ctx context.Context, l *models.ExerciseLog) error {
	const op = "insert log"
	uid, err := c.userID(op)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, op, http.MethodPost, fmt.Sprintf("/api/logs/user/%d/insert", uid), l)
	return err
}

// DeleteLog removes the current user's logs for an exercise.
// The API addresses log deletion by exercise id, not log id.
func (c *Client) DeleteLog(ctx context.Context, exerciseID int64) error {
	const op = "delete log"
	uid, err := c.userID(op)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, op, http.MethodDelete, fmt.Sprintf("/api/logs/user/%d/exercise/%d", uid, exerciseID), nil)
	return err
}
