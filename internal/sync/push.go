// ABOUTME: Push and remove flows: write the local cache first, then call the API.
// ABOUTME: A remote failure never undoes the local change and is never retried.
package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/fitsync/internal/models"
)

// Pushable reports whether the API accepts inserts and deletes for kind.
func Pushable(kind models.Kind) bool {
	switch kind {
	case models.KindRoutine, models.KindNote, models.KindLog:
		return true
	}
	return false
}

// Push validates ent, stores it locally, then sends it to the API.
// The returned error is the local error if any, else the remote error.
func (e *Engine) Push(ctx context.Context, ent models.Entity) (*Outcome, error) {
	if ent == nil {
		return nil, fmt.Errorf("push: nil entity")
	}
	kind := ent.Kind()
	op := "push " + string(kind)
	out := &Outcome{Kind: kind, ID: ent.GetID()}

	if !Pushable(kind) {
		out.Local = fmt.Errorf("%s: %w", op, ErrUnsupported)
		return out, out.Local
	}
	if err := ent.Validate(); err != nil {
		out.Local = fmt.Errorf("%s: %w", op, err)
		return out, out.Local
	}

	id, err := e.store.Insert(ctx, ent)
	if err != nil {
		out.Local = localErr(op, err)
		return out, out.Local
	}
	out.ID = id

	out.RemoteAttempted = true
	if err := e.remoteInsert(ctx, ent); err != nil {
		e.logger.Warn("remote insert failed, keeping local copy", "kind", kind, "id", id, "err", err)
		out.Remote = err
		return out, err
	}

	e.logger.Info("pushed", "kind", kind, "id", id)
	return out, nil
}

// PushAll pushes items in order. It stops at the first local failure and
// continues past remote failures.
func (e *Engine) PushAll(ctx context.Context, items []models.Entity) ([]*Outcome, error) {
	outcomes := make([]*Outcome, 0, len(items))
	var errs []error
	for _, ent := range items {
		out, err := e.Push(ctx, ent)
		if out != nil {
			outcomes = append(outcomes, out)
		}
		if err == nil {
			continue
		}
		errs = append(errs, err)
		if out == nil || out.Local != nil {
			break
		}
	}
	return outcomes, errors.Join(errs...)
}

// Remove deletes ent locally, then asks the API to delete it.
// Logs are deleted remotely by exercise id, which is how the API addresses them.
func (e *Engine) Remove(ctx context.Context, ent models.Entity) (*Outcome, error) {
	if ent == nil {
		return nil, fmt.Errorf("remove: nil entity")
	}
	kind := ent.Kind()
	op := "remove " + string(kind)
	out := &Outcome{Kind: kind, ID: ent.GetID()}

	if !Pushable(kind) {
		out.Local = fmt.Errorf("%s: %w", op, ErrUnsupported)
		return out, out.Local
	}

	if err := e.store.Delete(ctx, kind, ent.GetID()); err != nil {
		out.Local = localErr(op, err)
		return out, out.Local
	}

	out.RemoteAttempted = true
	if err := e.remoteDelete(ctx, ent); err != nil {
		e.logger.Warn("remote delete failed, local row stays deleted", "kind", kind, "id", out.ID, "err", err)
		out.Remote = err
		return out, err
	}

	e.logger.Info("removed", "kind", kind, "id", out.ID)
	return out, nil
}

// RemoveByID loads an entity from the cache and removes it.
func (e *Engine) RemoveByID(ctx context.Context, kind models.Kind, id int64) (*Outcome, error) {
	if !Pushable(kind) {
		err := fmt.Errorf("remove %s: %w", kind, ErrUnsupported)
		return &Outcome{Kind: kind, ID: id, Local: err}, err
	}
	ent, err := e.store.Get(ctx, kind, id)
	if err != nil {
		err = localErr("remove "+string(kind), err)
		return &Outcome{Kind: kind, ID: id, Local: err}, err
	}
	return e.Remove(ctx, ent)
}

func (e *Engine) remoteInsert(ctx context.Context, ent models.Entity) error {
	switch v := ent.(type) {
	case *models.Routine:
		return e.remote.InsertRoutine(ctx, v)
	case *models.Note:
		return e.remote.InsertNote(ctx, v)
	case *models.ExerciseLog:
		return e.remote.InsertLog(ctx, v)
	}
	return ErrUnsupported
}

func (e *Engine) remoteDelete(ctx context.Context, ent models.Entity) error {
	switch v := ent.(type) {
	case *models.Routine:
		return e.remote.DeleteRoutine(ctx, v.ID)
	case *models.Note:
		return e.remote.DeleteNote(ctx, v.ID)
	case *models.ExerciseLog:
		return e.remote.DeleteLog(ctx, v.ExerciseID)
	}
	return ErrUnsupported
}
