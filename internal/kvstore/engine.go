// ABOUTME: Minimal transactional key/value engine the document store is built on.
// ABOUTME: Implemented by badger transactions and by the Charm KV write journal.
package kvstore

import (
	"errors"
	"sort"
	"strings"
)

// ErrKeyNotFound is returned by Reader.Get for absent keys.
var ErrKeyNotFound = errors.New("key not found")

// Reader reads keys within a transaction.
type Reader interface {
	Get(key string) ([]byte, error)
	// Keys returns every key starting with prefix, sorted.
	Keys(prefix string) ([]string, error)
}

// Writer reads and writes keys within a transaction.
// Reads observe earlier writes of the same transaction.
type Writer interface {
	Reader
	Set(key string, value []byte) error
	Delete(key string) error
}

// Engine runs functions inside read-only or read-write transactions.
// An Update whose function returns an error leaves no trace.
type Engine interface {
	View(fn func(Reader) error) error
	Update(fn func(Writer) error) error
	Close() error
}

func sortedWithPrefix(keys []string, prefix string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
