// ABOUTME: Pull flow: fetch a kind from the API and replace the local copy.
// ABOUTME: The cache is only written after a fetch fully succeeds and validates.
package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/fitsync/internal/models"
	"github.com/harperreed/fitsync/internal/remote"
	"github.com/harperreed/fitsync/internal/storage"
)

// PullResult describes one pulled kind.
type PullResult struct {
	Kind  models.Kind
	Count int
	Err   error
}

// Pull refreshes one kind from the API. On any failure the local copy is
// left as it was.
func (e *Engine) Pull(ctx context.Context, kind models.Kind) (*PullResult, error) {
	op := "pull " + string(kind)
	res := &PullResult{Kind: kind}

	if kind.UserScoped() {
		if _, err := e.session.CurrentUserID(); err != nil {
			res.Err = &remote.Error{Kind: remote.KindUnauthorized, Op: op, Err: err}
			return res, res.Err
		}
	}

	items, err := e.fetch(ctx, kind)
	if err != nil {
		e.logger.Warn("fetch failed", "kind", kind, "err", err)
		res.Err = err
		return res, err
	}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			e.logger.Error("invalid entity from server", "kind", kind, "id", item.GetID(), "err", err)
			res.Err = &remote.Error{Kind: remote.KindDecode, Op: op, Err: err}
			return res, res.Err
		}
	}

	if err := e.store.ReplaceAll(ctx, kind, items); err != nil {
		res.Err = localErr(op, err)
		return res, res.Err
	}

	res.Count = len(items)
	e.logger.Info("pulled", "kind", kind, "count", res.Count)

	// Sample logs are only seeded before the first real logs pull.
	if kind == models.KindLog {
		if err := e.store.SetMeta(ctx, BootstrapMetaKey, "1"); err != nil {
			e.logger.Warn("failed to mark bootstrap done", "err", err)
		}
	}
	return res, nil
}

// PullAll pulls every kind in a fixed order, continuing past failures.
func (e *Engine) PullAll(ctx context.Context) ([]*PullResult, error) {
	results := make([]*PullResult, 0, len(models.AllKinds))
	var errs []error
	for _, kind := range models.AllKinds {
		res, err := e.Pull(ctx, kind)
		results = append(results, res)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

func (e *Engine) fetch(ctx context.Context, kind models.Kind) ([]models.Entity, error) {
	switch kind {
	case models.KindUser:
		u, err := e.remote.FetchUser(ctx)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, &remote.Error{Kind: remote.KindDecode, Op: "pull users", Err: errors.New("empty user")}
		}
		return []models.Entity{u}, nil
	case models.KindExercise:
		items, err := e.remote.FetchExercises(ctx)
		return entities(items, err)
	case models.KindRoutine:
		items, err := e.remote.FetchRoutines(ctx)
		return entities(items, err)
	case models.KindLog:
		items, err := e.remote.FetchLogs(ctx)
		return entities(items, err)
	case models.KindNote:
		items, err := e.remote.FetchNotes(ctx)
		return entities(items, err)
	case models.KindTargetLocation:
		items, err := e.remote.FetchTargetLocations(ctx)
		return entities(items, err)
	}
	return nil, fmt.Errorf("pull %s: unknown kind", kind)
}

func entities[T models.Entity](items []T, err error) ([]models.Entity, error) {
	if err != nil {
		return nil, err
	}
	var zero T
	for _, it := range items {
		if any(it) == any(zero) {
			return nil, &remote.Error{Kind: remote.KindDecode, Op: "pull", Err: errors.New("null entity in list")}
		}
	}
	return storage.Entities(items), nil
}
