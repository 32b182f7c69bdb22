// ABOUTME: storage.Store implemented as JSON documents over a key/value Engine.
// ABOUTME: Keeps per-kind id counters and a case-insensitive user email index.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/im7mortal/kmutex"

	"github.com/harperreed/fitsync/internal/models"
	"github.com/harperreed/fitsync/internal/storage"
)

// Key layout:
//
//	<kind>/<20-digit id>   entity JSON
//	seq/<kind>             highest id ever used for kind
//	email/<lower email>    user id
//	meta/<key>             bookkeeping value
const (
	seqPrefix   = "seq/"
	emailPrefix = "email/"
	metaPrefix  = "meta/"
)

// Store is a storage.Store over an Engine.
type Store struct {
	engine Engine
	locks  *kmutex.Kmutex
}

var _ storage.Store = (*Store)(nil)

// New returns a Store over engine.
func New(engine Engine) *Store {
	return &Store{engine: engine, locks: kmutex.New()}
}

// OpenBadger opens a badger-backed store in dir.
func OpenBadger(dir string, logger *log.Logger) (*Store, error) {
	engine, err := OpenBadgerEngine(dir, logger)
	if err != nil {
		return nil, err
	}
	return New(engine), nil
}

// OpenCharm opens a Charm KV-backed store with the given database name.
func OpenCharm(name string, logger *log.Logger) (*Store, error) {
	engine, err := OpenCharmEngine(name, logger)
	if err != nil {
		return nil, err
	}
	return New(engine), nil
}

// Engine returns the underlying engine.
func (s *Store) Engine() Engine {
	return s.engine
}

func (s *Store) Close() error {
	return s.engine.Close()
}

func entityKey(kind models.Kind, id int64) string {
	return fmt.Sprintf("%s/%020d", kind, id)
}

func kindPrefix(kind models.Kind) string {
	return string(kind) + "/"
}

func (s *Store) lock(name string) func() {
	s.locks.Lock(name)
	return func() { s.locks.Unlock(name) }
}

func (s *Store) All(ctx context.Context, kind models.Kind) ([]models.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := models.New(kind); err != nil {
		return nil, err
	}
	var out []models.Entity
	err := s.engine.View(func(r Reader) error {
		var err error
		out, err = readAll(r, kind)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	models.SortEntities(kind, out)
	return out, nil
}

func (s *Store) Get(ctx context.Context, kind models.Kind, id int64) (models.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var e models.Entity
	err := s.engine.View(func(r Reader) error {
		var err error
		e, err = readOne(r, kind, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", kind, id, err)
	}
	return e, nil
}

func (s *Store) Insert(ctx context.Context, e models.Entity) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("insert: nil entity")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	kind := e.Kind()
	if _, err := models.New(kind); err != nil {
		return 0, err
	}

	unlock := s.lock(string(kind))
	defer unlock()

	var id int64
	err := s.engine.Update(func(w Writer) error {
		var err error
		id, err = insertDoc(w, kind, e)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", kind, err)
	}
	e.SetID(id)
	return id, nil
}

func (s *Store) InsertMany(ctx context.Context, kind models.Kind, items []models.Entity) error {
	return s.write(ctx, "insert", kind, items, false)
}

func (s *Store) ReplaceAll(ctx context.Context, kind models.Kind, items []models.Entity) error {
	return s.write(ctx, "replace", kind, items, true)
}

func (s *Store) write(ctx context.Context, verb string, kind models.Kind, items []models.Entity, truncate bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.CheckKind(kind, items); err != nil {
		return fmt.Errorf("%s %s: %w", verb, kind, err)
	}
	if err := storage.CheckUnique(kind, items); err != nil {
		return fmt.Errorf("%s %s: %w", verb, kind, err)
	}

	unlock := s.lock(string(kind))
	defer unlock()

	ids := make([]int64, len(items))
	err := s.engine.Update(func(w Writer) error {
		if truncate {
			if err := truncateKind(w, kind); err != nil {
				return err
			}
		}
		for i, e := range items {
			id, err := insertDoc(w, kind, e)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			ids[i] = id
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", verb, kind, err)
	}

	for i, e := range items {
		e.SetID(ids[i])
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, kind models.Kind, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := s.lock(string(kind))
	defer unlock()

	err := s.engine.Update(func(w Writer) error {
		e, err := readOne(w, kind, id)
		if err != nil {
			return err
		}
		if u, ok := e.(*models.User); ok {
			if err := w.Delete(emailPrefix + storage.EmailKey(u.Email)); err != nil {
				return err
			}
		}
		return w.Delete(entityKey(kind, id))
	})
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	return nil
}

func (s *Store) ByUser(ctx context.Context, kind models.Kind, userID int64) ([]models.Entity, error) {
	if err := storage.CheckOwned(kind); err != nil {
		return nil, err
	}
	all, err := s.All(ctx, kind)
	if err != nil {
		return nil, err
	}
	var out []models.Entity
	for _, e := range all {
		if o, ok := e.(models.Owned); ok && o.OwnerID() == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) LogsByExercise(ctx context.Context, exerciseID int64) ([]*models.ExerciseLog, error) {
	logs, err := storage.List[*models.ExerciseLog](ctx, s)
	if err != nil {
		return nil, err
	}
	var out []*models.ExerciseLog
	for _, l := range logs {
		if l.ExerciseID == exerciseID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Store) ExercisesByIDs(ctx context.Context, ids []int64) ([]*models.Exercise, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*models.Exercise
	err := s.engine.View(func(r Reader) error {
		for _, id := range ids {
			e, err := readOne(r, models.KindExercise, id)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			out = append(out, e.(*models.Exercise))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list exercises by id: %w", err)
	}
	return out, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var u *models.User
	err := s.engine.View(func(r Reader) error {
		raw, err := r.Get(emailPrefix + storage.EmailKey(email))
		if errors.Is(err, ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("corrupt email index: %w", err)
		}
		e, err := readOne(r, models.KindUser, id)
		if err != nil {
			return err
		}
		u = e.(*models.User)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", email, err)
	}
	return u, nil
}

func (s *Store) Meta(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	var value string
	var ok bool
	err := s.engine.View(func(r Reader) error {
		raw, err := r.Get(metaPrefix + key)
		if errors.Is(err, ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		value, ok = string(raw), true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("get meta %q: %w", key, err)
	}
	return value, ok, nil
}

func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := s.lock("meta")
	defer unlock()

	err := s.engine.Update(func(w Writer) error {
		return w.Set(metaPrefix+key, []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set meta %q: %w", key, err)
	}
	return nil
}

func readAll(r Reader, kind models.Kind) ([]models.Entity, error) {
	keys, err := r.Keys(kindPrefix(kind))
	if err != nil {
		return nil, err
	}
	out := make([]models.Entity, 0, len(keys))
	for _, key := range keys {
		raw, err := r.Get(key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		e, err := decode(kind, raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func readOne(r Reader, kind models.Kind, id int64) (models.Entity, error) {
	raw, err := r.Get(entityKey(kind, id))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(kind, raw)
}

func decode(kind models.Kind, raw []byte) (models.Entity, error) {
	e, err := models.New(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, err
	}
	return e, nil
}

// insertDoc writes e under its id, assigning the next id when e has none.
// e itself is left unchanged; the caller sets the id after commit.
func insertDoc(w Writer, kind models.Kind, e models.Entity) (int64, error) {
	seq, err := readSeq(w, kind)
	if err != nil {
		return 0, err
	}

	id := e.GetID()
	if id == 0 {
		id = seq + 1
	} else if _, err := w.Get(entityKey(kind, id)); err == nil {
		return 0, fmt.Errorf("%w: %s id %d exists", storage.ErrConflict, kind, id)
	} else if !errors.Is(err, ErrKeyNotFound) {
		return 0, err
	}

	if u, ok := e.(*models.User); ok {
		ekey := emailPrefix + storage.EmailKey(u.Email)
		if _, err := w.Get(ekey); err == nil {
			return 0, fmt.Errorf("%w: email %q exists", storage.ErrConflict, u.Email)
		} else if !errors.Is(err, ErrKeyNotFound) {
			return 0, err
		}
		if err := w.Set(ekey, []byte(strconv.FormatInt(id, 10))); err != nil {
			return 0, err
		}
	}

	orig := e.GetID()
	e.SetID(id)
	raw, err := json.Marshal(e)
	e.SetID(orig)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", kind, err)
	}
	if err := w.Set(entityKey(kind, id), raw); err != nil {
		return 0, err
	}

	if id > seq {
		if err := w.Set(seqPrefix+string(kind), []byte(strconv.FormatInt(id, 10))); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func readSeq(r Reader, kind models.Kind) (int64, error) {
	raw, err := r.Get(seqPrefix + string(kind))
	if errors.Is(err, ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	seq, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt sequence for %s: %w", kind, err)
	}
	return seq, nil
}

// truncateKind removes every document of kind. The id counter is kept.
func truncateKind(w Writer, kind models.Kind) error {
	prefixes := []string{kindPrefix(kind)}
	if kind == models.KindUser {
		prefixes = append(prefixes, emailPrefix)
	}
	for _, p := range prefixes {
		keys, err := w.Keys(p)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := w.Delete(k); err != nil {
				return err
			}
		}
	}
	return nil
}
