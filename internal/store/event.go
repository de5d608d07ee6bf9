package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/motioncam/internal/motion"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// DefaultListLimit caps List when no positive limit is given.
const DefaultListLimit = 50

// Event is one persisted motion detection.
type Event struct {
	ID             string        `json:"id"`
	DetectedAt     time.Time     `json:"detected_at"`
	Source         string        `json:"source"`
	Method         string        `json:"method"`
	Region         motion.Region `json:"region"`
	CandidateCount int           `json:"candidate_count"`
	Snapshot       string        `json:"snapshot,omitempty"`
}

// EventRepository provides CRUD operations for events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

const eventColumns = `id, detected_at, source, method, x, y, width, height, area, candidate_count, snapshot`

// Create inserts a new event into the database. A zero DetectedAt is set to
// the current time.
func (r *EventRepository) Create(e *Event) error {
	if e.DetectedAt.IsZero() {
		e.DetectedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO events (`+eventColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.DetectedAt.UnixMilli(), e.Source, e.Method,
		e.Region.X, e.Region.Y, e.Region.Width, e.Region.Height, e.Region.Area,
		e.CandidateCount, e.Snapshot,
	)
	return err
}

// GetByID retrieves an event by its ID.
func (r *EventRepository) GetByID(id string) (*Event, error) {
	e, err := scanEvent(r.db.QueryRow(
		`SELECT `+eventColumns+` FROM events WHERE id = ?`,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// List retrieves the most recent events, newest first. A limit of zero or
// less uses DefaultListLimit.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(
		`SELECT `+eventColumns+` FROM events ORDER BY detected_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Latest returns the most recent event.
func (r *EventRepository) Latest() (*Event, error) {
	events, err := r.List(1)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNotFound
	}
	return events[0], nil
}

// Delete removes an event by its ID. Its hook runs are removed with it.
func (r *EventRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteBefore removes every event detected before t and returns how many
// were removed.
func (r *EventRepository) DeleteBefore(t time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM events WHERE detected_at < ?`, t.UnixMilli())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Count returns the number of stored events.
func (r *EventRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*Event, error) {
	e := &Event{}
	var detectedAt int64

	err := row.Scan(&e.ID, &detectedAt, &e.Source, &e.Method,
		&e.Region.X, &e.Region.Y, &e.Region.Width, &e.Region.Height, &e.Region.Area,
		&e.CandidateCount, &e.Snapshot)
	if err != nil {
		return nil, err
	}

	e.DetectedAt = time.UnixMilli(detectedAt)
	return e, nil
}
