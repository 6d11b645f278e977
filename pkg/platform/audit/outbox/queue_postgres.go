package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresQueue claims rows from the outbox table.
type PostgresQueue struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresQueue creates a queue over db.
func NewPostgresQueue(db *sql.DB) *PostgresQueue {
	return &PostgresQueue{db: db, now: time.Now}
}

// WithBatch locks up to limit unpublished rows, passes them to fn and marks
// the returned IDs as published in the same transaction.
func (q *PostgresQueue) WithBatch(ctx context.Context, limit int, fn func(ctx context.Context, entries []Entry) ([]uuid.UUID, error)) (err error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outbox tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return fmt.Errorf("claim outbox rows: %w", err)
	}
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err = rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("scan outbox row: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate outbox rows: %w", err)
	}
	rows.Close()

	published, err := fn(ctx, entries)
	if err != nil {
		return err
	}

	publishedAt := q.now()
	for _, entryID := range published {
		if _, err = tx.ExecContext(ctx,
			`UPDATE outbox SET published_at = $1 WHERE id = $2`,
			publishedAt, entryID,
		); err != nil {
			return fmt.Errorf("mark outbox row published: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit outbox tx: %w", err)
	}
	return nil
}
