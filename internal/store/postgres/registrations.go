package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"atelier/internal/models"
	id "atelier/pkg/domain"
	"atelier/pkg/platform/sentinel"
	txcontext "atelier/pkg/platform/tx"
)

type RegistrationStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewRegistrationStore(db *sql.DB) *RegistrationStore {
	return &RegistrationStore{db: db, now: time.Now}
}

const registrationColumns = `id, event_id, user_id, status, created_at, updated_at`

func (s *RegistrationStore) FindByEventAndUser(ctx context.Context, eventID id.EventID, userID id.UserID) (*models.Registration, error) {
	row := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE event_id = $1 AND user_id = $2`,
		string(eventID), string(userID))
	return scanRegistrationRow(row)
}

func (s *RegistrationStore) ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Registration, error) {
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE event_id = $1 ORDER BY created_at, id`,
		string(eventID))
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []*models.Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return out, nil
}

func (s *RegistrationStore) Create(ctx context.Context, r *models.Registration) error {
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO registrations (`+registrationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, string(r.ID), string(r.EventID), string(r.UserID), string(r.Status), r.CreatedAt, r.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert registration %s/%s: %w", r.EventID, r.UserID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (s *RegistrationStore) UpdateStatus(ctx context.Context, registrationID id.RegistrationID, status models.RegistrationStatus) (*models.Registration, error) {
	row := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		UPDATE registrations SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+registrationColumns,
		string(registrationID), string(status), s.now())
	return scanRegistrationRow(row)
}

func scanRegistrationRow(row rowScanner) (*models.Registration, error) {
	r, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("registration: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("query registration: %w", err)
	}
	return r, nil
}

func scanRegistration(row rowScanner) (*models.Registration, error) {
	var (
		r                                   models.Registration
		registrationID, eventID, userID, st string
	)
	if err := row.Scan(&registrationID, &eventID, &userID, &st, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.ID = id.RegistrationID(registrationID)
	r.EventID = id.EventID(eventID)
	r.UserID = id.UserID(userID)
	r.Status = models.RegistrationStatus(st)
	return &r, nil
}
