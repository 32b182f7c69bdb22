// ABOUTME: Row mapping between entity kinds and their SQLite tables.
// ABOUTME: Each kind declares its columns, listing order, bind values, and scanner.
package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/harperreed/fitsync/internal/models"
)

type rowScanner interface {
	Scan(dest ...any) error
}

type table struct {
	name string
	// columns excludes id, which is always the first selected column.
	columns []string
	order   string
	values  func(models.Entity) []any
	scan    func(rowScanner) (models.Entity, error)
}

func (t table) selectSQL() string {
	return "SELECT id, " + strings.Join(t.columns, ", ") + " FROM " + t.name
}

func (t table) insertSQL() string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)+1), ", ")
	return fmt.Sprintf("INSERT INTO %s (id, %s) VALUES (%s)", t.name, strings.Join(t.columns, ", "), marks)
}

func tableFor(kind models.Kind) (table, error) {
	t, ok := tables[kind]
	if !ok {
		return table{}, fmt.Errorf("unknown kind: %q", kind)
	}
	return t, nil
}

const byID = "id ASC"

var tables = map[models.Kind]table{
	models.KindUser: {
		name:    "users",
		columns: []string{"name", "email", "streak_days", "profile_image"},
		order:   byID,
		values: func(e models.Entity) []any {
			u := e.(*models.User)
			return []any{u.Name, strings.TrimSpace(u.Email), u.StreakDays, u.ProfileImage}
		},
		scan: func(s rowScanner) (models.Entity, error) {
			var u models.User
			var name, image sql.NullString
			var streak sql.NullInt64
			if err := s.Scan(&u.ID, &name, &u.Email, &streak, &image); err != nil {
				return nil, err
			}
			if name.Valid {
				u.Name = &name.String
			}
			if streak.Valid {
				days := int(streak.Int64)
				u.StreakDays = &days
			}
			if image.Valid {
				u.ProfileImage = &image.String
			}
			return &u, nil
		},
	},
	models.KindExercise: {
		name:    "exercises",
		columns: []string{"name", "description", "image_uri"},
		order:   byID,
		values: func(e models.Entity) []any {
			x := e.(*models.Exercise)
			return []any{x.Name, x.Description, x.ImageURI}
		},
		scan: func(s rowScanner) (models.Entity, error) {
			var x models.Exercise
			if err := s.Scan(&x.ID, &x.Name, &x.Description, &x.ImageURI); err != nil {
				return nil, err
			}
			return &x, nil
		},
	},
	models.KindRoutine: {
		name:    "routines",
		columns: []string{"name", "description", "image_uri", "exercise_ids", "user_id"},
		order:   byID,
		values: func(e models.Entity) []any {
			r := e.(*models.Routine)
			return []any{r.Name, r.Description, r.ImageURI, r.ExerciseIDs.String(), r.UserID}
		},
		scan: func(s rowScanner) (models.Entity, error) {
			var r models.Routine
			var ids string
			if err := s.Scan(&r.ID, &r.Name, &r.Description, &r.ImageURI, &ids, &r.UserID); err != nil {
				return nil, err
			}
			list, err := models.ParseIDList(ids)
			if err != nil {
				return nil, fmt.Errorf("routine %d: %w", r.ID, err)
			}
			r.ExerciseIDs = list
			return &r, nil
		},
	},
	models.KindLog: {
		name:    "logs",
		columns: []string{"exercise_id", "date", "weight", "reps", "user_id"},
		order:   "date DESC, id DESC",
		values: func(e models.Entity) []any {
			l := e.(*models.ExerciseLog)
			return []any{l.ExerciseID, l.Date, l.Weight, l.Reps, l.UserID}
		},
		scan: func(s rowScanner) (models.Entity, error) {
			var l models.ExerciseLog
			if err := s.Scan(&l.ID, &l.ExerciseID, &l.Date, &l.Weight, &l.Reps, &l.UserID); err != nil {
				return nil, err
			}
			return &l, nil
		},
	},
	models.KindNote: {
		name:    "notes",
		columns: []string{"header", "text", "timestamp", "user_id"},
		order:   "timestamp DESC, id DESC",
		values: func(e models.Entity) []any {
			n := e.(*models.Note)
			return []any{n.Header, n.Text, n.Timestamp, n.UserID}
		},
		scan: func(s rowScanner) (models.Entity, error) {
			var n models.Note
			if err := s.Scan(&n.ID, &n.Header, &n.Text, &n.Timestamp, &n.UserID); err != nil {
				return nil, err
			}
			return &n, nil
		},
	},
	models.KindTargetLocation: {
		name:    "target_locations",
		columns: []string{"name", "lat", "lng", "radius_meters"},
		order:   byID,
		values: func(e models.Entity) []any {
			t := e.(*models.TargetLocation)
			return []any{t.Name, t.Position.Lat, t.Position.Lng, t.RadiusMeters}
		},
		scan: func(s rowScanner) (models.Entity, error) {
			var t models.TargetLocation
			if err := s.Scan(&t.ID, &t.Name, &t.Position.Lat, &t.Position.Lng, &t.RadiusMeters); err != nil {
				return nil, err
			}
			return &t, nil
		},
	},
}
