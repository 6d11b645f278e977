package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"atelier/internal/models"
	id "atelier/pkg/domain"
	"atelier/pkg/platform/sentinel"
	txcontext "atelier/pkg/platform/tx"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

const eventColumns = `id, slug, title, description, start_at, end_at, timezone,
	delivery_mode, engagement_type, location_text, meeting_url,
	instructor_state, instructor_id, instructor_name, status, capacity,
	metadata, created_by, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *EventStore) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	row := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE slug = $1`, slug)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %q: %w", slug, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("query event: %w", err)
	}
	return event, nil
}

func (s *EventStore) List(ctx context.Context) ([]*models.Event, error) {
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY start_at, slug`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func (s *EventStore) Create(ctx context.Context, event *models.Event) error {
	args, err := eventArgs(event)
	if err != nil {
		return err
	}
	_, err = txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert event %q: %w", event.Slug, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *EventStore) Update(ctx context.Context, event *models.Event) error {
	args, err := eventArgs(event)
	if err != nil {
		return err
	}
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		UPDATE events SET
			slug = $2, title = $3, description = $4, start_at = $5, end_at = $6,
			timezone = $7, delivery_mode = $8, engagement_type = $9,
			location_text = $10, meeting_url = $11, instructor_state = $12,
			instructor_id = $13, instructor_name = $14, status = $15,
			capacity = $16, metadata = $17, created_by = $18, created_at = $19,
			updated_at = $20
		WHERE id = $1
	`, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update event %q: %w", event.Slug, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("update event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("event %s: %w", event.ID, sentinel.ErrNotFound)
	}
	return nil
}

// LockEvent takes FOR UPDATE on the event row when called inside a
// transaction, so concurrent registrations for one event queue behind it.
// Outside a transaction it only checks the row exists.
func (s *EventStore) LockEvent(ctx context.Context, eventID id.EventID) error {
	query := `SELECT id FROM events WHERE id = $1`
	if _, inTx := txcontext.From(ctx); inTx {
		query += ` FOR UPDATE`
	}
	var locked string
	if err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query, string(eventID)).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("event %s: %w", eventID, sentinel.ErrNotFound)
		}
		return fmt.Errorf("lock event: %w", err)
	}
	return nil
}

func (s *EventStore) CountActiveRegistrations(ctx context.Context, eventID id.EventID) (int, error) {
	exec := txcontext.ExecutorFrom(ctx, s.db)
	var count int
	err := exec.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM registrations
		WHERE event_id = $1 AND status IN ($2, $3)
	`, string(eventID), string(models.RegistrationRegistered), string(models.RegistrationCheckedIn)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

func eventArgs(e *models.Event) ([]any, error) {
	var metadata, instructorID, createdBy, capacity any
	if e.Metadata != nil {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal event metadata: %w", err)
		}
		metadata = raw
	}
	if e.InstructorID != nil {
		instructorID = string(*e.InstructorID)
	}
	if e.CreatedBy != nil {
		createdBy = string(*e.CreatedBy)
	}
	if e.Capacity != nil {
		capacity = int64(*e.Capacity)
	}
	return []any{
		string(e.ID), e.Slug, e.Title, e.Description, e.StartAt, e.EndAt, e.Timezone,
		string(e.DeliveryMode), string(e.EngagementType), e.LocationText, e.MeetingURL,
		string(e.InstructorState), instructorID, e.InstructorName, string(e.Status), capacity,
		metadata, createdBy, e.CreatedAt, e.UpdatedAt,
	}, nil
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		e                         models.Event
		eventID, mode, engagement string
		instructorState, status   string
		instructorID, createdBy   sql.NullString
		capacity                  sql.NullInt64
		metadata                  []byte
	)
	err := row.Scan(
		&eventID, &e.Slug, &e.Title, &e.Description, &e.StartAt, &e.EndAt, &e.Timezone,
		&mode, &engagement, &e.LocationText, &e.MeetingURL,
		&instructorState, &instructorID, &e.InstructorName, &status, &capacity,
		&metadata, &createdBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.ID = id.EventID(eventID)
	e.DeliveryMode = models.DeliveryMode(mode)
	e.EngagementType = models.EngagementType(engagement)
	e.InstructorState = models.InstructorState(instructorState)
	e.Status = models.EventStatus(status)
	if instructorID.Valid {
		v := id.InstructorID(instructorID.String)
		e.InstructorID = &v
	}
	if createdBy.Valid {
		v := id.UserID(createdBy.String)
		e.CreatedBy = &v
	}
	if capacity.Valid {
		v := int(capacity.Int64)
		e.Capacity = &v
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
			return nil, fmt.Errorf("decode event metadata: %w", err)
		}
	}
	return &e, nil
}
