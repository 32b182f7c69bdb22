// ABOUTME: Kind-specific ordering shared by every LocalStore backend.
// ABOUTME: Logs and notes list newest first; all other kinds list by id ascending.
package models

import (
	"sort"
)

// SortEntities orders items in place using the listing order of kind.
func SortEntities(kind Kind, items []Entity) {
	sort.SliceStable(items, func(i, j int) bool {
		return Less(kind, items[i], items[j])
	})
}

// Less reports whether a lists before b for the given kind.
func Less(kind Kind, a, b Entity) bool {
	switch kind {
	case KindLog:
		la, lb := a.(*ExerciseLog), b.(*ExerciseLog)
		if la.Date != lb.Date {
			return la.Date > lb.Date
		}
		return la.ID > lb.ID
	case KindNote:
		na, nb := a.(*Note), b.(*Note)
		if na.Timestamp != nb.Timestamp {
			return na.Timestamp > nb.Timestamp
		}
		return na.ID > nb.ID
	default:
		return a.GetID() < b.GetID()
	}
}
