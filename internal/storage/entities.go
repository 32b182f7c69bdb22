// ABOUTME: Store implementation for the SQLite backend.
// ABOUTME: Mutations hold a per-kind lock and run inside a single transaction.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/fitsync/internal/models"
)

// All returns every entity of kind in listing order.
func (d *DB) All(ctx context.Context, kind models.Kind) ([]models.Entity, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := d.db.QueryContext(ctx, t.selectSQL()+" ORDER BY "+t.order)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer rows.Close()

	return scanRows(t, rows)
}

// Get returns one entity by id.
func (d *DB) Get(ctx context.Context, kind models.Kind, id int64) (models.Entity, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	e, err := t.scan(d.db.QueryRowContext(ctx, t.selectSQL()+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s %d: %w", kind, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", kind, id, err)
	}
	return e, nil
}

// Insert stores e, assigning an id when e has none.
func (d *DB) Insert(ctx context.Context, e models.Entity) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("insert: nil entity")
	}
	kind := e.Kind()
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	unlock := d.lock(t.name)
	defer unlock()

	var id int64
	err = d.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = insertRow(ctx, tx, t, e)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", kind, err)
	}
	e.SetID(id)
	return id, nil
}

// InsertMany stores items in one transaction.
func (d *DB) InsertMany(ctx context.Context, kind models.Kind, items []models.Entity) error {
	return d.write(ctx, "insert", kind, items, false)
}

// ReplaceAll swaps the contents of kind for items.
func (d *DB) ReplaceAll(ctx context.Context, kind models.Kind, items []models.Entity) error {
	return d.write(ctx, "replace", kind, items, true)
}

func (d *DB) write(ctx context.Context, verb string, kind models.Kind, items []models.Entity, truncate bool) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	if err := CheckKind(kind, items); err != nil {
		return fmt.Errorf("%s %s: %w", verb, kind, err)
	}
	if err := CheckUnique(kind, items); err != nil {
		return fmt.Errorf("%s %s: %w", verb, kind, err)
	}

	unlock := d.lock(t.name)
	defer unlock()

	ids := make([]int64, len(items))
	err = d.withTx(ctx, func(tx *sql.Tx) error {
		if truncate {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t.name); err != nil {
				return err
			}
		}
		for i, e := range items {
			id, err := insertRow(ctx, tx, t, e)
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

// Delete removes one entity by id.
func (d *DB) Delete(ctx context.Context, kind models.Kind, id int64) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	unlock := d.lock(t.name)
	defer unlock()

	res, err := d.db.ExecContext(ctx, "DELETE FROM "+t.name+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("delete %s %d: %w", kind, id, ErrNotFound)
	}
	return nil
}

// ByUser returns the entities of kind owned by userID.
func (d *DB) ByUser(ctx context.Context, kind models.Kind, userID int64) ([]models.Entity, error) {
	if err := CheckOwned(kind); err != nil {
		return nil, err
	}
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := d.db.QueryContext(ctx, t.selectSQL()+" WHERE user_id = ? ORDER BY "+t.order, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s for user %d: %w", kind, userID, err)
	}
	defer rows.Close()

	return scanRows(t, rows)
}

// LogsByExercise returns the logs that reference exerciseID.
func (d *DB) LogsByExercise(ctx context.Context, exerciseID int64) ([]*models.ExerciseLog, error) {
	t := tables[models.KindLog]
	rows, err := d.db.QueryContext(ctx, t.selectSQL()+" WHERE exercise_id = ? ORDER BY "+t.order, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("list logs for exercise %d: %w", exerciseID, err)
	}
	defer rows.Close()

	items, err := scanRows(t, rows)
	if err != nil {
		return nil, err
	}
	return cast[*models.ExerciseLog](items)
}

// ExercisesByIDs returns exercises in the order of ids, skipping unknown ids.
func (d *DB) ExercisesByIDs(ctx context.Context, ids []int64) ([]*models.Exercise, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	t := tables[models.KindExercise]

	marks := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := d.db.QueryContext(ctx, t.selectSQL()+" WHERE id IN ("+marks+")", args...)
	if err != nil {
		return nil, fmt.Errorf("list exercises by id: %w", err)
	}
	defer rows.Close()

	items, err := scanRows(t, rows)
	if err != nil {
		return nil, err
	}
	return orderExercises(items, ids), nil
}

// UserByEmail finds a user by email, ignoring case.
func (d *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	t := tables[models.KindUser]
	e, err := t.scan(d.db.QueryRowContext(ctx, t.selectSQL()+" WHERE email = ?", strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user %q: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", email, err)
	}
	return e.(*models.User), nil
}

// Meta returns a bookkeeping value.
func (d *DB) Meta(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := d.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get meta %q: %w", key, err)
	}
	return value, true, nil
}

// SetMeta stores a bookkeeping value.
func (d *DB) SetMeta(ctx context.Context, key, value string) error {
	unlock := d.lock("meta")
	defer unlock()

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %q: %w", key, err)
	}
	return nil
}

func insertRow(ctx context.Context, tx *sql.Tx, t table, e models.Entity) (int64, error) {
	var id any
	if e.GetID() != 0 {
		id = e.GetID()
	}
	args := append([]any{id}, t.values(e)...)
	res, err := tx.ExecContext(ctx, t.insertSQL(), args...)
	if err != nil {
		return 0, mapConstraint(err)
	}
	if e.GetID() != 0 {
		return e.GetID(), nil
	}
	return res.LastInsertId()
}

func scanRows(t table, rows *sql.Rows) ([]models.Entity, error) {
	var out []models.Entity
	for rows.Next() {
		e, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t.name, err)
	}
	return out, nil
}

// orderExercises arranges found exercises in the order of ids.
// Repeated ids repeat the exercise.
func orderExercises(found []models.Entity, ids []int64) []*models.Exercise {
	byID := make(map[int64]*models.Exercise, len(found))
	for _, e := range found {
		x := e.(*models.Exercise)
		byID[x.ID] = x
	}
	out := make([]*models.Exercise, 0, len(ids))
	for _, id := range ids {
		if x, ok := byID[id]; ok {
			out = append(out, x)
		}
	}
	return out
}
