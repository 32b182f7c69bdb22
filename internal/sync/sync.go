// ABOUTME: Engine coordinating the remote API, the local cache, and the session.
// ABOUTME: Pulls replace a kind wholesale; pushes and removals are optimistic and local-first.
package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/harperreed/fitsync/internal/logging"
	"github.com/harperreed/fitsync/internal/models"
	"github.com/harperreed/fitsync/internal/remote"
	"github.com/harperreed/fitsync/internal/session"
	"github.com/harperreed/fitsync/internal/storage"
)

var (
	// ErrLocalStorage wraps every failure of the local cache.
	ErrLocalStorage = errors.New("local storage")
	// ErrUnsupported is returned for kinds the API cannot insert or delete.
	ErrUnsupported = errors.New("operation not supported for kind")
)

// Remote is the slice of the API client the engine uses.
type Remote interface {
	FetchUser(ctx context.Context) (*models.User, error)
	FetchExercises(ctx context.Context) ([]*models.Exercise, error)
	FetchRoutines(ctx context.Context) ([]*models.Routine, error)
	FetchLogs(ctx context.Context) ([]*models.ExerciseLog, error)
	FetchNotes(ctx context.Context) ([]*models.Note, error)
	FetchTargetLocations(ctx context.Context) ([]*models.TargetLocation, error)

	InsertRoutine(ctx context.Context, r *models.Routine) error
	InsertNote(ctx context.Context, n *models.Note) error
	InsertLog(ctx context.Context, l *models.ExerciseLog) error

	DeleteRoutine(ctx context.Context, routineID int64) error
	DeleteNote(ctx context.Context, noteID int64) error
	DeleteLog(ctx context.Context, exerciseID int64) error
}

var _ Remote = (*remote.Client)(nil)

// Engine runs pull, push, and remove flows.
type Engine struct {
	remote  Remote
	store   storage.Store
	session *session.Store
	logger  *log.Logger
}

// New creates an Engine. A nil logger discards output.
func New(r Remote, store storage.Store, sess *session.Store, logger *log.Logger) *Engine {
	return &Engine{
		remote:  r,
		store:   store,
		session: sess,
		logger:  logging.Or(logger).With("component", "sync"),
	}
}

// Store returns the local cache the engine writes to.
func (e *Engine) Store() storage.Store {
	return e.store
}

// Session returns the session the engine reads identity from.
func (e *Engine) Session() *session.Store {
	return e.session
}

// Outcome reports the two phases of a push or removal separately.
type Outcome struct {
	Kind models.Kind
	ID   int64
	// Local is the local phase error, nil when the cache was updated.
	Local error
	// Remote is the remote phase error. Only meaningful when RemoteAttempted.
	Remote          error
	RemoteAttempted bool
}

// Synced reports whether both phases succeeded.
func (o *Outcome) Synced() bool {
	return o.Local == nil && o.RemoteAttempted && o.Remote == nil
}

// Err returns the local error if any, else the remote error.
func (o *Outcome) Err() error {
	if o.Local != nil {
		return o.Local
	}
	return o.Remote
}

// String renders the outcome for CLI output.
func (o *Outcome) String() string {
	switch {
	case o.Local != nil:
		return fmt.Sprintf("%s %d: local failed: %v", o.Kind, o.ID, o.Local)
	case !o.RemoteAttempted:
		return fmt.Sprintf("%s %d: local only", o.Kind, o.ID)
	case o.Remote != nil:
		return fmt.Sprintf("%s %d: local ok, server failed: %v", o.Kind, o.ID, o.Remote)
	}
	return fmt.Sprintf("%s %d: synced", o.Kind, o.ID)
}

func localErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrLocalStorage, err)
}

// RoutineExercises resolves a routine's exercise ids against the cached
// catalog, in routine order. Ids missing from the catalog are skipped.
func (e *Engine) RoutineExercises(ctx context.Context, r *models.Routine) ([]*models.Exercise, error) {
	if r == nil || len(r.ExerciseIDs) == 0 {
		return nil, nil
	}
	exercises, err := e.store.ExercisesByIDs(ctx, r.ExerciseIDs)
	if err != nil {
		return nil, localErr("resolve routine exercises", err)
	}
	if missing := len(r.ExerciseIDs) - len(exercises); missing > 0 {
		e.logger.Debug("routine references unknown exercises", "routine", r.ID, "missing", missing)
	}
	return exercises, nil
}
