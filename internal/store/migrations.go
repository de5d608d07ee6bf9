package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Events table - one row per frame in which motion was selected.
		// detected_at is Unix milliseconds.
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			detected_at INTEGER NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			method TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			area REAL NOT NULL,
			candidate_count INTEGER NOT NULL DEFAULT 0,
			snapshot TEXT NOT NULL DEFAULT ''
		)`,

		// Hook runs table - the outcome of each hook executed for an event
		`CREATE TABLE IF NOT EXISTS hook_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			hook_name TEXT NOT NULL,
			success INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_events_detected_at ON events(detected_at)`,
		`CREATE INDEX IF NOT EXISTS idx_hook_runs_event_id ON hook_runs(event_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
