// ABOUTME: Data migration between local cache backends.
// ABOUTME: Copies every kind from source to destination, preserving ids.
package storage

import (
	"context"
	"fmt"

	"github.com/harperreed/fitsync/internal/models"
)

// MigrateSummary holds counts of migrated entities per kind.
type MigrateSummary struct {
	Counts map[models.Kind]int
}

// Total returns the number of migrated entities.
func (s *MigrateSummary) Total() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// MetaKeys lists the bookkeeping keys carried over by MigrateData.
var MetaKeys = []string{"bootstrap_seeded"}

// MigrateData copies all data from src to dst. Each kind in dst is replaced
// wholesale, so running it twice yields the same result.
func MigrateData(ctx context.Context, src, dst Store) (*MigrateSummary, error) {
	summary := &MigrateSummary{Counts: make(map[models.Kind]int)}

	for _, kind := range models.AllKinds {
		items, err := src.All(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("list source %s: %w", kind, err)
		}
		if err := dst.ReplaceAll(ctx, kind, items); err != nil {
			return nil, fmt.Errorf("write %s: %w", kind, err)
		}
		summary.Counts[kind] = len(items)
	}

	for _, key := range MetaKeys {
		value, ok, err := src.Meta(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read meta %q: %w", key, err)
		}
		if !ok {
			continue
		}
		if err := dst.SetMeta(ctx, key, value); err != nil {
			return nil, fmt.Errorf("write meta %q: %w", key, err)
		}
	}

	return summary, nil
}
