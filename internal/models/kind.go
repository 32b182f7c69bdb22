// ABOUTME: Entity kinds and the Entity interface shared by every synced record.
// ABOUTME: Kinds name the local tables and decide which remote endpoints are user scoped.
package models

import (
	"errors"
	"fmt"
)

// Kind identifies one family of synced entities.
type Kind string

const (
	KindUser           Kind = "users"
	KindExercise       Kind = "exercises"
	KindRoutine        Kind = "routines"
	KindLog            Kind = "logs"
	KindNote           Kind = "notes"
	KindTargetLocation Kind = "target_locations"
)

// AllKinds lists every kind in pull order. Exercises come first so routine
// readers have a catalog to resolve against.
var AllKinds = []Kind{
	KindExercise,
	KindUser,
	KindRoutine,
	KindLog,
	KindNote,
	KindTargetLocation,
}

// ParseKind converts user input into a Kind. Singular forms are accepted.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "users", "user":
		return KindUser, nil
	case "exercises", "exercise":
		return KindExercise, nil
	case "routines", "routine":
		return KindRoutine, nil
	case "logs", "log":
		return KindLog, nil
	case "notes", "note":
		return KindNote, nil
	case "target_locations", "target_location", "locations", "location":
		return KindTargetLocation, nil
	}
	return "", fmt.Errorf("unknown kind: %q", s)
}

// UserScoped reports whether the remote endpoints for this kind need the
// current user's id in the path.
func (k Kind) UserScoped() bool {
	switch k {
	case KindUser, KindRoutine, KindLog, KindNote:
		return true
	}
	return false
}

// HasOwner reports whether entities of this kind carry a userId column.
func (k Kind) HasOwner() bool {
	switch k {
	case KindRoutine, KindLog, KindNote:
		return true
	}
	return false
}

// Entity is implemented by every synced record type.
type Entity interface {
	Kind() Kind
	GetID() int64
	SetID(id int64)
	Validate() error
}

// Owned is implemented by entities that belong to a user.
type Owned interface {
	Entity
	OwnerID() int64
}

// ErrInvalid is returned (wrapped) when an entity fails validation.
var ErrInvalid = errors.New("invalid entity")

func invalidf(kind Kind, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, kind, fmt.Sprintf(format, args...))
}

// New returns an empty entity of the given kind, ready to be decoded into.
func New(kind Kind) (Entity, error) {
	switch kind {
	case KindUser:
		return &User{}, nil
	case KindExercise:
		return &Exercise{}, nil
	case KindRoutine:
		return &Routine{}, nil
	case KindLog:
		return &ExerciseLog{}, nil
	case KindNote:
		return &Note{}, nil
	case KindTargetLocation:
		return &TargetLocation{}, nil
	}
	return nil, fmt.Errorf("unknown kind: %q", kind)
}
