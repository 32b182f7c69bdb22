// ABOUTME: Charm KV Engine that syncs the local cache to Charm Cloud.
// ABOUTME: Charm KV has no multi-key transactions, so writes go through an undo journal.
package kvstore

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/charmbracelet/log"

	"github.com/harperreed/fitsync/internal/logging"
)

// DefaultCharmHost is used when CHARM_HOST is not set.
const DefaultCharmHost = "charm.2389.dev"

// ErrReadOnly is returned for writes while another process holds the database.
var ErrReadOnly = errors.New("database is locked by another process (MCP server?)")

// CharmKV is the subset of *kv.KV the journal needs.
type CharmKV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	IsReadOnly() bool
	Close() error
}

var _ CharmKV = (*kv.KV)(nil)

// JournalEngine is an Engine over Charm KV. Each Update records the prior
// value of every key it touches and restores them if the update fails.
type JournalEngine struct {
	kv       CharmKV
	logger   *log.Logger
	mu       sync.Mutex
	autoSync bool
}

// NewJournalEngine wraps db. When autoSync is set, every committed update
// is pushed to Charm Cloud.
func NewJournalEngine(db CharmKV, autoSync bool, logger *log.Logger) *JournalEngine {
	return &JournalEngine{
		kv:       db,
		logger:   logging.Or(logger).With("component", "charm"),
		autoSync: autoSync,
	}
}

// OpenCharmEngine opens the named Charm KV database and pulls remote state.
func OpenCharmEngine(name string, logger *log.Logger) (*JournalEngine, error) {
	if err := EnsureCharmHost(); err != nil {
		return nil, err
	}

	db, err := kv.OpenWithDefaultsFallback(name)
	if err != nil {
		return nil, fmt.Errorf("open charm kv: %w", err)
	}

	e := NewJournalEngine(db, true, logger)
	if !db.IsReadOnly() {
		if err := db.Sync(); err != nil {
			e.logger.Warn("initial sync failed", "err", err)
		}
	}
	return e, nil
}

// EnsureCharmHost points the Charm client at DefaultCharmHost unless
// CHARM_HOST is already set.
func EnsureCharmHost() error {
	if os.Getenv("CHARM_HOST") != "" {
		return nil
	}
	if err := os.Setenv("CHARM_HOST", DefaultCharmHost); err != nil {
		return fmt.Errorf("set charm host: %w", err)
	}
	return nil
}

// CharmID returns the Charm account id for the current machine keys.
func CharmID() (string, error) {
	if err := EnsureCharmHost(); err != nil {
		return "", err
	}
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Sync pushes and pulls changes to and from Charm Cloud.
func (j *JournalEngine) Sync() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.kv.IsReadOnly() {
		return nil
	}
	return j.kv.Sync()
}

// Reset discards local state and rebuilds it from Charm Cloud.
func (j *JournalEngine) Reset() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	r, ok := j.kv.(interface{ Reset() error })
	if !ok {
		return fmt.Errorf("reset not supported")
	}
	return r.Reset()
}

// IsReadOnly reports whether another process holds the database.
func (j *JournalEngine) IsReadOnly() bool {
	return j.kv.IsReadOnly()
}

func (j *JournalEngine) View(fn func(Reader) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	txn, err := j.begin()
	if err != nil {
		return err
	}
	return fn(txn)
}

func (j *JournalEngine) Update(fn func(Writer) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.kv.IsReadOnly() {
		return ErrReadOnly
	}
	txn, err := j.begin()
	if err != nil {
		return err
	}

	if err := fn(txn); err != nil {
		if rerr := txn.rollback(); rerr != nil {
			j.logger.Error("rollback failed", "err", rerr)
			return errors.Join(err, fmt.Errorf("rollback: %w", rerr))
		}
		return err
	}

	if j.autoSync && len(txn.undo) > 0 {
		if err := j.kv.Sync(); err != nil {
			j.logger.Warn("sync after write failed", "err", err)
		}
	}
	return nil
}

func (j *JournalEngine) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.kv.Close()
}

func (j *JournalEngine) begin() (*journalTxn, error) {
	raw, err := j.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	keys := make(map[string]bool, len(raw))
	for _, k := range raw {
		keys[string(k)] = true
	}
	return &journalTxn{kv: j.kv, keys: keys, undo: make(map[string]*[]byte)}, nil
}

// journalTxn applies writes immediately and remembers how to undo them.
type journalTxn struct {
	kv   CharmKV
	keys map[string]bool
	// undo maps each touched key to its original value; nil means absent.
	undo  map[string]*[]byte
	order []string
}

func (t *journalTxn) Get(key string) ([]byte, error) {
	if !t.keys[key] {
		return nil, ErrKeyNotFound
	}
	return t.kv.Get([]byte(key))
}

func (t *journalTxn) Keys(prefix string) ([]string, error) {
	all := make([]string, 0, len(t.keys))
	for k := range t.keys {
		all = append(all, k)
	}
	return sortedWithPrefix(all, prefix), nil
}

func (t *journalTxn) Set(key string, value []byte) error {
	if err := t.record(key); err != nil {
		return err
	}
	if err := t.kv.Set([]byte(key), value); err != nil {
		return err
	}
	t.keys[key] = true
	return nil
}

func (t *journalTxn) Delete(key string) error {
	if !t.keys[key] {
		return nil
	}
	if err := t.record(key); err != nil {
		return err
	}
	if err := t.kv.Delete([]byte(key)); err != nil {
		return err
	}
	delete(t.keys, key)
	return nil
}

func (t *journalTxn) record(key string) error {
	if _, seen := t.undo[key]; seen {
		return nil
	}
	var orig *[]byte
	if t.keys[key] {
		v, err := t.kv.Get([]byte(key))
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}
		orig = &v
	}
	t.undo[key] = orig
	t.order = append(t.order, key)
	return nil
}

// rollback restores touched keys in reverse order.
func (t *journalTxn) rollback() error {
	var errs []error
	for i := len(t.order) - 1; i >= 0; i-- {
		key := t.order[i]
		orig := t.undo[key]
		var err error
		if orig == nil {
			err = t.kv.Delete([]byte(key))
		} else {
			err = t.kv.Set([]byte(key), *orig)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
