// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: One AUTOINCREMENT table per entity kind plus a key/value meta table.
package storage

// initSchema creates or updates the database schema.
// AUTOINCREMENT keeps assigned ids monotonic even after rows are deleted.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		streak_days INTEGER,
		profile_image TEXT
	);

	CREATE TABLE IF NOT EXISTS exercises (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image_uri TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS routines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image_uri TEXT NOT NULL DEFAULT '',
		exercise_ids TEXT NOT NULL DEFAULT '',
		user_id INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		exercise_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		weight REAL NOT NULL,
		reps INTEGER NOT NULL,
		user_id INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		header TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL DEFAULT '',
		timestamp INTEGER NOT NULL,
		user_id INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS target_locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL DEFAULT '',
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		radius_meters REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_routines_user ON routines(user_id);
	CREATE INDEX IF NOT EXISTS idx_logs_user ON logs(user_id);
	CREATE INDEX IF NOT EXISTS idx_logs_exercise ON logs(exercise_id);
	CREATE INDEX IF NOT EXISTS idx_logs_date ON logs(date DESC, id DESC);
	CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id);
	CREATE INDEX IF NOT EXISTS idx_notes_timestamp ON notes(timestamp DESC, id DESC);
	`

	_, err := d.db.Exec(schema)
	return err
}
