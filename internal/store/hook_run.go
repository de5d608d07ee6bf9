package store

import (
	"database/sql"
	"time"
)

// HookRun records the outcome of one hook execution for an event.
type HookRun struct {
	ID        int64         `json:"id"`
	EventID   string        `json:"event_id"`
	HookName  string        `json:"hook_name"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// HookRunRepository provides access to hook run history.
type HookRunRepository struct {
	db *sql.DB
}

// HookRuns returns the hook run repository for this store.
func (s *Store) HookRuns() *HookRunRepository {
	return &HookRunRepository{db: s.db}
}

// Create inserts a hook run. The event it refers to must exist.
func (r *HookRunRepository) Create(h *HookRun) error {
	h.CreatedAt = time.Now()

	result, err := r.db.Exec(
		`INSERT INTO hook_runs (event_id, hook_name, success, error, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		h.EventID, h.HookName, h.Success, h.Error, h.Duration.Milliseconds(), h.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = id
	return nil
}

// GetByEventID retrieves all hook runs for an event in execution order.
func (r *HookRunRepository) GetByEventID(eventID string) ([]HookRun, error) {
	rows, err := r.db.Query(
		`SELECT id, event_id, hook_name, success, error, duration_ms, created_at
		 FROM hook_runs
		 WHERE event_id = ?
		 ORDER BY id`,
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []HookRun
	for rows.Next() {
		var h HookRun
		var success int
		var durationMS, createdAt int64
		if err := rows.Scan(&h.ID, &h.EventID, &h.HookName, &success, &h.Error, &durationMS, &createdAt); err != nil {
			return nil, err
		}
		h.Success = success == 1
		h.Duration = time.Duration(durationMS) * time.Millisecond
		h.CreatedAt = time.UnixMilli(createdAt)
		runs = append(runs, h)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}
