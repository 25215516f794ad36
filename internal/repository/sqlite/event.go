package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/event-planner/internal/apperror"
	"github.com/sakif/event-planner/internal/model"
	"github.com/sakif/event-planner/internal/repository"
)

var _ repository.EventRepository = (*DB)(nil)

// encodeTags serializes the tag list into the TEXT column. An empty or nil
// slice is stored as "[]" so scans never deal with NULL.
func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decoding tags %q: %w", raw, err)
	}
	return tags, nil
}

// CreateEvent inserts a new event. The caller must have set OrganizerID.
func (db *DB) CreateEvent(ctx context.Context, event *model.Event) error {
	event.ID = xid.New().String()
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	tags, err := encodeTags(event.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: creating event: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO events (id, title, description, start_time, end_time, location, public, tags, organizer_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Title,
		event.Description,
		event.StartTime,
		event.EndTime,
		event.Location,
		event.Public,
		tags,
		event.OrganizerID,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting event %q: %w", event.Title, err)
	}

	return nil
}

const eventColumns = `id, title, description, start_time, end_time, location, public, tags, organizer_id, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	var tags string
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.StartTime,
		&e.EndTime,
		&e.Location,
		&e.Public,
		&tags,
		&e.OrganizerID,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if e.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEventByID retrieves an event with its organizer and participants
// loaded. Returns apperror.ErrNotFound if no event exists with that id.
func (db *DB) GetEventByID(ctx context.Context, id string) (*model.Event, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("event", id)
		}
		return nil, fmt.Errorf("sqlite: getting event %s: %w", id, err)
	}

	if err := db.loadEventRelations(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

// ListEvents returns all events, each with organizer and participants
// loaded.
func (db *DB) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY start_time`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning event row: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating event rows: %w", err)
	}

	for i := range events {
		if err := db.loadEventRelations(ctx, &events[i]); err != nil {
			return nil, err
		}
	}

	return events, nil
}

// loadEventRelations fills Organizer and Participants on a fetched event.
func (db *DB) loadEventRelations(ctx context.Context, event *model.Event) error {
	organizer, err := db.GetUserByID(ctx, event.OrganizerID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	event.Organizer = organizer

	rows, err := db.conn.QueryContext(ctx,
		`SELECT u.id, u.username, u.email, u.password_hash, u.created_at, u.updated_at
		 FROM event_participants ep
		 JOIN users u ON u.id = ep.user_id
		 WHERE ep.event_id = ?
		 ORDER BY u.username`,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: listing participants of %s: %w", event.ID, err)
	}
	defer rows.Close()

	participants := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return fmt.Errorf("sqlite: scanning participant row: %w", err)
		}
		participants = append(participants, u)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating participant rows: %w", err)
	}
	event.Participants = participants

	return nil
}

// UpdateEvent persists changes to an existing event.
func (db *DB) UpdateEvent(ctx context.Context, event *model.Event) error {
	event.UpdatedAt = time.Now()

	tags, err := encodeTags(event.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: updating event: %w", err)
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE events SET title = ?, description = ?, start_time = ?, end_time = ?, location = ?, public = ?, tags = ?, updated_at = ?
		 WHERE id = ?`,
		event.Title,
		event.Description,
		event.StartTime,
		event.EndTime,
		event.Location,
		event.Public,
		tags,
		event.UpdatedAt,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating event %s: %w", event.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating event %s: %w", event.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("event", event.ID)
	}

	return nil
}

// DeleteEvent removes an event; participants and posts cascade.
func (db *DB) DeleteEvent(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting event %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting event %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("event", id)
	}

	return nil
}

// AddParticipant records the user's participation. Re-joining an event the
// user already participates in is a no-op.
func (db *DB) AddParticipant(ctx context.Context, eventID, userID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO event_participants (event_id, user_id) VALUES (?, ?)`,
		eventID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding participant %s to event %s: %w", userID, eventID, err)
	}
	return nil
}
