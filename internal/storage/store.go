// ABOUTME: Store interface implemented by every local cache backend.
// ABOUTME: Also holds shared errors and typed generic helpers over the interface.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/fitsync/internal/models"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an id or unique email is already taken.
	ErrConflict = errors.New("conflict")
)

// Store is the local cache of remote entities.
// Foreign keys between kinds are never validated.
type Store interface {
	// All returns every entity of kind in its listing order.
	All(ctx context.Context, kind models.Kind) ([]models.Entity, error)
	Get(ctx context.Context, kind models.Kind, id int64) (models.Entity, error)
	// Insert stores e. An id of 0 is replaced by a freshly assigned id,
	// which is also set on e.
	Insert(ctx context.Context, e models.Entity) (int64, error)
	InsertMany(ctx context.Context, kind models.Kind, items []models.Entity) error
	// ReplaceAll swaps the whole contents of kind for items, all or nothing.
	ReplaceAll(ctx context.Context, kind models.Kind, items []models.Entity) error
	Delete(ctx context.Context, kind models.Kind, id int64) error

	ByUser(ctx context.Context, kind models.Kind, userID int64) ([]models.Entity, error)
	LogsByExercise(ctx context.Context, exerciseID int64) ([]*models.ExerciseLog, error)
	// ExercisesByIDs returns exercises in the requested order. Unknown ids are dropped.
	ExercisesByIDs(ctx context.Context, ids []int64) ([]*models.Exercise, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)

	Meta(ctx context.Context, key string) (string, bool, error)
	SetMeta(ctx context.Context, key, value string) error

	Close() error
}

// CheckKind verifies every item belongs to kind.
func CheckKind(kind models.Kind, items []models.Entity) error {
	if _, err := models.New(kind); err != nil {
		return err
	}
	for i, e := range items {
		if e == nil {
			return fmt.Errorf("item %d: nil entity", i)
		}
		if e.Kind() != kind {
			return fmt.Errorf("item %d: kind %s does not match %s", i, e.Kind(), kind)
		}
	}
	return nil
}

// CheckUnique verifies items carry no duplicate non-zero ids and, for users,
// no duplicate emails.
func CheckUnique(kind models.Kind, items []models.Entity) error {
	ids := make(map[int64]bool, len(items))
	emails := make(map[string]bool)
	for _, e := range items {
		if id := e.GetID(); id != 0 {
			if ids[id] {
				return fmt.Errorf("%w: duplicate %s id %d", ErrConflict, kind, id)
			}
			ids[id] = true
		}
		if u, ok := e.(*models.User); ok {
			key := EmailKey(u.Email)
			if emails[key] {
				return fmt.Errorf("%w: duplicate email %q", ErrConflict, u.Email)
			}
			emails[key] = true
		}
	}
	return nil
}

// EmailKey normalizes an email for case-insensitive uniqueness.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckOwned rejects ByUser lookups on kinds without an owner column.
func CheckOwned(kind models.Kind) error {
	if !kind.HasOwner() {
		return fmt.Errorf("kind %s has no owner", kind)
	}
	return nil
}

// List returns every entity of T's kind.
func List[T models.Entity](ctx context.Context, s Store) ([]T, error) {
	var zero T
	items, err := s.All(ctx, zero.Kind())
	if err != nil {
		return nil, err
	}
	return cast[T](items)
}

// Find returns one entity of T's kind.
func Find[T models.Entity](ctx context.Context, s Store, id int64) (T, error) {
	var zero T
	e, err := s.Get(ctx, zero.Kind(), id)
	if err != nil {
		return zero, err
	}
	v, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("find %s %d: unexpected type %T", zero.Kind(), id, e)
	}
	return v, nil
}

// ListByUser returns the entities of T's kind owned by userID.
func ListByUser[T models.Entity](ctx context.Context, s Store, userID int64) ([]T, error) {
	var zero T
	items, err := s.ByUser(ctx, zero.Kind(), userID)
	if err != nil {
		return nil, err
	}
	return cast[T](items)
}

func cast[T models.Entity](items []models.Entity) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, e := range items {
		v, ok := e.(T)
		if !ok {
			return nil, fmt.Errorf("unexpected type %T", e)
		}
		out = append(out, v)
	}
	return out, nil
}

// Entities converts a typed slice into the interface slice the Store takes.
func Entities[T models.Entity](items []T) []models.Entity {
	out := make([]models.Entity, len(items))
	for i, v := range items {
		out[i] = v
	}
	return out
}
