package store

import (
	"database/sql"
	"errors"
	"time"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Detection is one detected seesaw episode, from rising to falling edge.
type Detection struct {
	ID            string
	Gesture       string
	StartedAt     time.Time
	EndedAt       *time.Time
	ZeroCrossings int
	Amplitude     float64
	OppositeMoves int
	Samples       int
	// Action is "plugin/action" for each executed binding, comma separated.
	Action      string
	ActionError string
}

// Duration returns how long the episode lasted, or zero while it is open.
func (d *Detection) Duration() time.Duration {
	if d.EndedAt == nil {
		return 0
	}
	return d.EndedAt.Sub(d.StartedAt)
}

// DetectionRepository provides access to the detections table.
type DetectionRepository struct {
	db *sql.DB
}

// Detections returns the detection repository for this store.
func (s *Store) Detections() *DetectionRepository {
	return &DetectionRepository{db: s.db}
}

const detectionColumns = `id, gesture, started_at, ended_at, zero_crossings, amplitude,
	opposite_moves, samples, action, action_error`

// Create inserts a new detection. StartedAt defaults to now.
func (r *DetectionRepository) Create(d *Detection) error {
	if d.StartedAt.IsZero() {
		d.StartedAt = time.Now()
	}

	var endedAt sql.NullTime
	if d.EndedAt != nil {
		endedAt = sql.NullTime{Time: *d.EndedAt, Valid: true}
	}

	_, err := r.db.Exec(
		`INSERT INTO detections (`+detectionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Gesture, d.StartedAt, endedAt, d.ZeroCrossings, d.Amplitude,
		d.OppositeMoves, d.Samples, d.Action, d.ActionError,
	)
	return err
}

// End closes an open detection. Ending an already ended row overwrites the time.
func (r *DetectionRepository) End(id string, endedAt time.Time) error {
	result, err := r.db.Exec(`UPDATE detections SET ended_at = ? WHERE id = ?`, endedAt, id)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

// SetAction records the outcome of the actions run for a detection.
func (r *DetectionRepository) SetAction(id, action, actionErr string) error {
	result, err := r.db.Exec(
		`UPDATE detections SET action = ?, action_error = ? WHERE id = ?`,
		action, actionErr, id,
	)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

// GetByID retrieves a detection by its ID.
func (r *DetectionRepository) GetByID(id string) (*Detection, error) {
	row := r.db.QueryRow(`SELECT `+detectionColumns+` FROM detections WHERE id = ?`, id)

	d, err := scanDetection(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// List returns the most recent detections, newest first.
func (r *DetectionRepository) List(limit int) ([]*Detection, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(
		`SELECT `+detectionColumns+` FROM detections
		 ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var detections []*Detection
	for rows.Next() {
		d, err := scanDetection(rows)
		if err != nil {
			return nil, err
		}
		detections = append(detections, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return detections, nil
}

// Count returns the number of stored detections.
func (r *DetectionRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM detections`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes a detection by its ID.
func (r *DetectionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM detections WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDetection(s rowScanner) (*Detection, error) {
	d := &Detection{}
	var endedAt sql.NullTime

	err := s.Scan(&d.ID, &d.Gesture, &d.StartedAt, &endedAt, &d.ZeroCrossings, &d.Amplitude,
		&d.OppositeMoves, &d.Samples, &d.Action, &d.ActionError)
	if err != nil {
		return nil, err
	}

	if endedAt.Valid {
		t := endedAt.Time
		d.EndedAt = &t
	}
	return d, nil
}
