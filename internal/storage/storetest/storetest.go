// ABOUTME: Conformance suite shared by every Store backend.
// ABOUTME: Backends call Run from their own tests with a constructor for a fresh store.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/fitsync/internal/models"
	"github.com/harperreed/fitsync/internal/storage"
)

// Opener returns an empty store. It should register its own cleanup.
type Opener func(t *testing.T) storage.Store

// Run executes the full suite against stores produced by open.
func Run(t *testing.T, open Opener) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Store)
	}{
		{"InsertGetRoundTrip", testInsertGetRoundTrip},
		{"AssignsMonotonicIDs", testAssignsMonotonicIDs},
		{"ExplicitIDKept", testExplicitIDKept},
		{"DuplicateIDConflict", testDuplicateIDConflict},
		{"DuplicateEmailConflict", testDuplicateEmailConflict},
		{"InsertMany", testInsertMany},
		{"ReplaceAllPreservesIDs", testReplaceAllPreservesIDs},
		{"ReplaceAllAtomic", testReplaceAllAtomic},
		{"ReplaceAllTouchesOnlyKind", testReplaceAllTouchesOnlyKind},
		{"ReplaceAllRejectsWrongKind", testReplaceAllRejectsWrongKind},
		{"Ordering", testOrdering},
		{"ForeignKeyLookups", testForeignKeyLookups},
		{"ExercisesByIDs", testExercisesByIDs},
		{"UserByEmail", testUserByEmail},
		{"NotFound", testNotFound},
		{"Meta", testMeta},
		{"GenericHelpers", testGenericHelpers},
		{"ConcurrentInserts", testConcurrentInserts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, open(t))
		})
	}
}

// Samples returns one valid entity of every kind, all with id 0.
func Samples() []models.Entity {
	return []models.Entity{
		models.NewUser("ana@example.com").WithName("Ana").WithStreakDays(4).WithProfileImage("https://img/ana.png"),
		&models.Exercise{Name: "Sentadilla", Description: "Pierna", ImageURI: "https://img/squat.png"},
		&models.Routine{Name: "Lunes", Description: "Fuerza", ExerciseIDs: models.IDList{3, 1, 2}, UserID: 7},
		&models.ExerciseLog{ExerciseID: 3, Date: "2024-05-01", Weight: 62.5, Reps: 8, UserID: 7},
		&models.Note{Header: "Pierna", Text: "Buen día", Timestamp: 1714550400000, UserID: 7},
		&models.TargetLocation{Name: "Gym", Position: models.Position{Lat: 40.4, Lng: -3.7}, RadiusMeters: 150},
	}
}

func testInsertGetRoundTrip(t *testing.T, s storage.Store) {
	ctx := context.Background()
	for _, e := range Samples() {
		id, err := s.Insert(ctx, e)
		require.NoError(t, err, "insert %s", e.Kind())
		assert.Positive(t, id)
		assert.Equal(t, id, e.GetID(), "insert sets the id on the entity")

		got, err := s.Get(ctx, e.Kind(), id)
		require.NoError(t, err, "get %s", e.Kind())
		assert.Equal(t, e, got)
	}
}

func testAssignsMonotonicIDs(t *testing.T, s storage.Store) {
	ctx := context.Background()

	first, err := s.Insert(ctx, models.NewNote(1, "a", ""))
	require.NoError(t, err)
	second, err := s.Insert(ctx, models.NewNote(1, "b", ""))
	require.NoError(t, err)
	assert.Greater(t, second, first)

	require.NoError(t, s.Delete(ctx, models.KindNote, second))
	third, err := s.Insert(ctx, models.NewNote(1, "c", ""))
	require.NoError(t, err)
	assert.Greater(t, third, second, "deleted ids are never reused")

	require.NoError(t, s.ReplaceAll(ctx, models.KindNote, nil))
	fourth, err := s.Insert(ctx, models.NewNote(1, "d", ""))
	require.NoError(t, err)
	assert.Greater(t, fourth, third, "ids keep growing after ReplaceAll")
}

func testExplicitIDKept(t *testing.T, s storage.Store) {
	ctx := context.Background()

	id, err := s.Insert(ctx, &models.Exercise{ID: 42, Name: "Remo"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	next, err := s.Insert(ctx, &models.Exercise{Name: "Press"})
	require.NoError(t, err)
	assert.Greater(t, next, int64(42))
}

func testDuplicateIDConflict(t *testing.T, s storage.Store) {
	ctx := context.Background()

	_, err := s.Insert(ctx, &models.Exercise{ID: 5, Name: "Remo"})
	require.NoError(t, err)

	_, err = s.Insert(ctx, &models.Exercise{ID: 5, Name: "Otro"})
	assert.ErrorIs(t, err, storage.ErrConflict)

	got, err := storage.Find[*models.Exercise](ctx, s, 5)
	require.NoError(t, err)
	assert.Equal(t, "Remo", got.Name)
}

func testDuplicateEmailConflict(t *testing.T, s storage.Store) {
	ctx := context.Background()

	_, err := s.Insert(ctx, models.NewUser("ana@example.com"))
	require.NoError(t, err)

	_, err = s.Insert(ctx, models.NewUser("ANA@example.com"))
	assert.ErrorIs(t, err, storage.ErrConflict)

	users, err := storage.List[*models.User](ctx, s)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func testInsertMany(t *testing.T, s storage.Store) {
	ctx := context.Background()
	logs := []*models.ExerciseLog{
		{ExerciseID: 1, Date: "2024-01-01", Weight: 10, Reps: 5, UserID: 1},
		{ExerciseID: 1, Date: "2024-01-02", Weight: 12, Reps: 5, UserID: 1},
	}

	require.NoError(t, s.InsertMany(ctx, models.KindLog, storage.Entities(logs)))
	assert.Positive(t, logs[0].ID)
	assert.Greater(t, logs[1].ID, logs[0].ID)

	all, err := s.All(ctx, models.KindLog)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func testReplaceAllPreservesIDs(t *testing.T, s storage.Store) {
	ctx := context.Background()
	_, err := s.Insert(ctx, &models.Routine{Name: "vieja", UserID: 1})
	require.NoError(t, err)

	incoming := []*models.Routine{
		{ID: 10, Name: "Lunes", ExerciseIDs: models.IDList{1, 2}, UserID: 1},
		{ID: 11, Name: "Martes", ExerciseIDs: models.IDList{3}, UserID: 1},
	}
	require.NoError(t, s.ReplaceAll(ctx, models.KindRoutine, storage.Entities(incoming)))

	got, err := storage.List[*models.Routine](ctx, s)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, incoming[0], got[0])
	assert.Equal(t, incoming[1], got[1])

	// Replaying the same pull is a no-op.
	require.NoError(t, s.ReplaceAll(ctx, models.KindRoutine, storage.Entities(incoming)))
	again, err := storage.List[*models.Routine](ctx, s)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func testReplaceAllAtomic(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seed := []*models.Note{
		{ID: 1, Header: "uno", Timestamp: 1, UserID: 1},
		{ID: 2, Header: "dos", Timestamp: 2, UserID: 1},
	}
	require.NoError(t, s.ReplaceAll(ctx, models.KindNote, storage.Entities(seed)))
	before, err := s.All(ctx, models.KindNote)
	require.NoError(t, err)

	bad := []*models.Note{
		{ID: 5, Header: "a", Timestamp: 3, UserID: 1},
		{ID: 5, Header: "b", Timestamp: 4, UserID: 1},
	}
	err = s.ReplaceAll(ctx, models.KindNote, storage.Entities(bad))
	assert.ErrorIs(t, err, storage.ErrConflict)

	after, err := s.All(ctx, models.KindNote)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	users := []*models.User{models.NewUser("x@example.com"), models.NewUser("X@Example.com")}
	err = s.ReplaceAll(ctx, models.KindUser, storage.Entities(users))
	assert.ErrorIs(t, err, storage.ErrConflict)
	empty, err := s.All(ctx, models.KindUser)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testReplaceAllTouchesOnlyKind(t *testing.T, s storage.Store) {
	ctx := context.Background()
	_, err := s.Insert(ctx, models.NewNote(1, "keep?", ""))
	require.NoError(t, err)
	_, err = s.Insert(ctx, &models.ExerciseLog{ExerciseID: 1, Date: "2024-01-01", UserID: 1})
	require.NoError(t, err)

	require.NoError(t, s.ReplaceAll(ctx, models.KindNote, nil))

	notes, err := s.All(ctx, models.KindNote)
	require.NoError(t, err)
	assert.Empty(t, notes)
	logs, err := s.All(ctx, models.KindLog)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func testReplaceAllRejectsWrongKind(t *testing.T, s storage.Store) {
	ctx := context.Background()
	_, err := s.Insert(ctx, models.NewNote(1, "n", ""))
	require.NoError(t, err)

	err = s.ReplaceAll(ctx, models.KindNote, []models.Entity{&models.Exercise{Name: "x"}})
	assert.Error(t, err)

	notes, err := s.All(ctx, models.KindNote)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func testOrdering(t *testing.T, s storage.Store) {
	ctx := context.Background()

	logs := []*models.ExerciseLog{
		{ID: 1, ExerciseID: 1, Date: "2024-01-01", UserID: 1},
		{ID: 2, ExerciseID: 1, Date: "2024-03-01", UserID: 1},
		{ID: 3, ExerciseID: 1, Date: "2024-03-01", UserID: 1},
		{ID: 4, ExerciseID: 1, Date: "2024-02-01", UserID: 1},
	}
	require.NoError(t, s.ReplaceAll(ctx, models.KindLog, storage.Entities(logs)))
	gotLogs, err := storage.List[*models.ExerciseLog](ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 4, 1}, logIDs(gotLogs))

	notes := []*models.Note{
		{ID: 1, Header: "a", Timestamp: 100, UserID: 1},
		{ID: 2, Header: "b", Timestamp: 300, UserID: 1},
		{ID: 3, Header: "c", Timestamp: 100, UserID: 1},
	}
	require.NoError(t, s.ReplaceAll(ctx, models.KindNote, storage.Entities(notes)))
	gotNotes, err := storage.List[*models.Note](ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1}, entityIDs(storage.Entities(gotNotes)))

	exercises := []*models.Exercise{{ID: 30, Name: "c"}, {ID: 10, Name: "a"}, {ID: 20, Name: "b"}}
	require.NoError(t, s.ReplaceAll(ctx, models.KindExercise, storage.Entities(exercises)))
	gotExercises, err := s.All(ctx, models.KindExercise)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, entityIDs(gotExercises))
}

func testForeignKeyLookups(t *testing.T, s storage.Store) {
	ctx := context.Background()

	logs := []*models.ExerciseLog{
		{ID: 1, ExerciseID: 1, Date: "2024-01-01", UserID: 1},
		{ID: 2, ExerciseID: 2, Date: "2024-01-02", UserID: 1},
		{ID: 3, ExerciseID: 1, Date: "2024-01-03", UserID: 2},
		// References an exercise that does not exist.
		{ID: 4, ExerciseID: 999, Date: "2024-01-04", UserID: 2},
	}
	require.NoError(t, s.ReplaceAll(ctx, models.KindLog, storage.Entities(logs)))

	byEx, err := s.LogsByExercise(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, logIDs(byEx))

	byUser, err := storage.ListByUser[*models.ExerciseLog](ctx, s, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3}, logIDs(byUser))

	none, err := s.ByUser(ctx, models.KindNote, 1)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.ByUser(ctx, models.KindExercise, 1)
	assert.Error(t, err, "exercises have no owner")
}

func testExercisesByIDs(t *testing.T, s storage.Store) {
	ctx := context.Background()
	exercises := []*models.Exercise{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 3, Name: "c"}}
	require.NoError(t, s.ReplaceAll(ctx, models.KindExercise, storage.Entities(exercises)))

	got, err := s.ExercisesByIDs(ctx, []int64{3, 99, 1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Name)
	assert.Equal(t, "a", got[1].Name)

	empty, err := s.ExercisesByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testUserByEmail(t *testing.T, s storage.Store) {
	ctx := context.Background()
	_, err := s.Insert(ctx, models.NewUser("Ana@Example.com").WithName("Ana"))
	require.NoError(t, err)

	u, err := s.UserByEmail(ctx, "ana@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.DisplayName())

	_, err = s.UserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testNotFound(t *testing.T, s storage.Store) {
	ctx := context.Background()

	_, err := s.Get(ctx, models.KindRoutine, 12345)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = s.Delete(ctx, models.KindRoutine, 12345)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = storage.Find[*models.Note](ctx, s, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testMeta(t *testing.T, s storage.Store) {
	ctx := context.Background()

	_, ok, err := s.Meta(ctx, "bootstrap_seeded")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetMeta(ctx, "bootstrap_seeded", "1"))
	require.NoError(t, s.SetMeta(ctx, "bootstrap_seeded", "2"))

	v, ok, err := s.Meta(ctx, "bootstrap_seeded")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}

func testGenericHelpers(t *testing.T, s storage.Store) {
	ctx := context.Background()
	r := &models.Routine{Name: "Lunes", ExerciseIDs: models.IDList{1}, UserID: 3}
	id, err := s.Insert(ctx, r)
	require.NoError(t, err)

	got, err := storage.Find[*models.Routine](ctx, s, id)
	require.NoError(t, err)
	assert.Equal(t, r, got)

	list, err := storage.ListByUser[*models.Routine](ctx, s, 3)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Lunes", list[0].Name)
}

func testConcurrentInserts(t *testing.T, s storage.Store) {
	ctx := context.Background()
	const workers, perWorker = 4, 10

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := s.Insert(ctx, models.NewNote(1, fmt.Sprintf("w%d-%d", w, i), ""))
				errs <- err
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	notes, err := s.All(ctx, models.KindNote)
	require.NoError(t, err)
	require.Len(t, notes, workers*perWorker)

	seen := make(map[int64]bool)
	for _, n := range notes {
		assert.False(t, seen[n.GetID()], "duplicate id %d", n.GetID())
		seen[n.GetID()] = true
		assert.True(t, strings.HasPrefix(n.(*models.Note).Header, "w"))
	}
}

func logIDs(logs []*models.ExerciseLog) []int64 {
	return entityIDs(storage.Entities(logs))
}

func entityIDs(items []models.Entity) []int64 {
	ids := make([]int64, len(items))
	for i, e := range items {
		ids[i] = e.GetID()
	}
	return ids
}
