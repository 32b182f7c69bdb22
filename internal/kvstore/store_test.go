// ABOUTME: Tests for the key/value document store on both engines.
// ABOUTME: Badger runs on disk; the Charm journal runs over an in-memory fake with fault injection.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/fitsync/internal/models"
	"github.com/harperreed/fitsync/internal/storage"
	"github.com/harperreed/fitsync/internal/storage/storetest"
)

// memKV is an in-memory CharmKV. The failOn-th call to Set fails once.
type memKV struct {
	mu       sync.Mutex
	data     map[string][]byte
	sets     int
	failOn   int
	syncs    int
	readOnly bool
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

var errInjected = errors.New("injected failure")

func (m *memKV) Get(key []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, fmt.Errorf("missing %s", key)
	}
	return append([]byte(nil), v...), nil
}

func (m *memKV) Set(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.failOn > 0 && m.sets == m.failOn {
		return errInjected
	}
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *memKV) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

func (m *memKV) Keys() ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([][]byte, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, []byte(k))
	}
	return keys, nil
}

func (m *memKV) Sync() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncs++
	return nil
}

func (m *memKV) IsReadOnly() bool { return m.readOnly }
func (m *memKV) Close() error     { return nil }

func (m *memKV) snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = string(v)
	}
	return out
}

func openBadgerStore(t *testing.T) storage.Store {
	t.Helper()
	s, err := OpenBadger(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func openJournalStore(t *testing.T) storage.Store {
	t.Helper()
	return New(NewJournalEngine(newMemKV(), true, nil))
}

func TestBadgerConformance(t *testing.T) {
	storetest.Run(t, openBadgerStore)
}

func TestCharmJournalConformance(t *testing.T) {
	storetest.Run(t, openJournalStore)
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := OpenBadger(dir, nil)
	require.NoError(t, err)
	id, err := s.Insert(ctx, &models.Exercise{Name: "Remo"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenBadger(dir, nil)
	require.NoError(t, err)
	defer s.Close()

	got, err := storage.Find[*models.Exercise](ctx, s, id)
	require.NoError(t, err)
	assert.Equal(t, "Remo", got.Name)

	next, err := s.Insert(ctx, &models.Exercise{Name: "Press"})
	require.NoError(t, err)
	assert.Greater(t, next, id)
}

func TestJournalRollsBackPartialReplace(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := New(NewJournalEngine(kv, false, nil))

	seed := []*models.Note{
		{ID: 1, Header: "uno", Timestamp: 1, UserID: 1},
		{ID: 2, Header: "dos", Timestamp: 2, UserID: 1},
	}
	require.NoError(t, s.ReplaceAll(ctx, models.KindNote, storage.Entities(seed)))
	_, err := s.Insert(ctx, &models.ExerciseLog{ExerciseID: 1, Date: "2024-01-01", UserID: 1})
	require.NoError(t, err)
	before := kv.snapshot()

	// Fail midway through writing the replacement set.
	kv.failOn = kv.sets + 3
	incoming := []*models.Note{
		{ID: 10, Header: "a", Timestamp: 10, UserID: 1},
		{ID: 11, Header: "b", Timestamp: 11, UserID: 1},
		{ID: 12, Header: "c", Timestamp: 12, UserID: 1},
	}
	err = s.ReplaceAll(ctx, models.KindNote, storage.Entities(incoming))
	require.ErrorIs(t, err, errInjected)

	assert.Equal(t, before, kv.snapshot(), "every touched key is restored")
	assert.Equal(t, int64(10), incoming[0].ID, "explicit ids untouched on failure")

	notes, err := storage.List[*models.Note](ctx, s)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "dos", notes[0].Header)
}

func TestJournalRollsBackFailedInsert(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := New(NewJournalEngine(kv, false, nil))

	before := kv.snapshot()
	// The user insert writes the email index, then the document; fail the document.
	kv.failOn = kv.sets + 2
	u := models.NewUser("ana@example.com")
	_, err := s.Insert(ctx, u)
	require.ErrorIs(t, err, errInjected)
	assert.Zero(t, u.ID)
	assert.Equal(t, before, kv.snapshot())

	_, err = s.UserByEmail(ctx, "ana@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJournalSyncsAfterWrites(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := New(NewJournalEngine(kv, true, nil))

	_, err := s.Insert(ctx, models.NewNote(1, "n", ""))
	require.NoError(t, err)
	assert.Equal(t, 1, kv.syncs)

	_, err = s.All(ctx, models.KindNote)
	require.NoError(t, err)
	assert.Equal(t, 1, kv.syncs, "reads do not sync")

	// A failed write syncs nothing.
	_, err = s.Insert(ctx, &models.Note{ID: 1, Header: "dup"})
	require.ErrorIs(t, err, storage.ErrConflict)
	assert.Equal(t, 1, kv.syncs)
}

func TestJournalReadOnly(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.readOnly = true
	s := New(NewJournalEngine(kv, true, nil))

	_, err := s.Insert(ctx, models.NewNote(1, "n", ""))
	assert.ErrorIs(t, err, ErrReadOnly)

	notes, err := s.All(ctx, models.KindNote)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestKeyLayout(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := New(NewJournalEngine(kv, false, nil))

	_, err := s.Insert(ctx, models.NewUser("Ana@Example.com"))
	require.NoError(t, err)
	require.NoError(t, s.SetMeta(ctx, "bootstrap_seeded", "1"))

	keys := make([]string, 0)
	for k := range kv.snapshot() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{
		"email/ana@example.com",
		"meta/bootstrap_seeded",
		"seq/users",
		"users/00000000000000000001",
	}, keys)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := openJournalStore(t)

	_, err := s.Insert(ctx, models.NewNote(1, "n", ""))
	assert.ErrorIs(t, err, context.Canceled)
}
