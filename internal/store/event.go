package store

import (
	"database/sql"
	"time"
)

// Event is a persisted gesture event.
type Event struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"sessionId"`
	Kind       string    `json:"kind"`
	Side       string    `json:"side,omitempty"`
	ClapCount  int       `json:"clapCount"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EventRepository provides operations for events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create inserts an event and sets its ID.
func (r *EventRepository) Create(e *Event) error {
	result, err := r.db.Exec(
		`INSERT INTO events (session_id, kind, side, clap_count, occurred_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.SessionID, e.Kind, e.Side, e.ClapCount, e.OccurredAt,
	)
	if err != nil {
		return err
	}

	e.ID, err = result.LastInsertId()
	return err
}

// ListBySession retrieves the events of a session in occurrence order.
func (r *EventRepository) ListBySession(sessionID string) ([]*Event, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, kind, side, clap_count, occurred_at
		 FROM events WHERE session_id = ? ORDER BY occurred_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Kind, &e.Side, &e.ClapCount, &e.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// CountByKind returns the number of events of each kind in a session.
func (r *EventRepository) CountByKind(sessionID string) (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT kind, COUNT(*) FROM events WHERE session_id = ? GROUP BY kind`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}

	return counts, rows.Err()
}
