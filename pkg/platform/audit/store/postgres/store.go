package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	audit "atelier/pkg/platform/audit"
	txcontext "atelier/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Each record is written to audit_records (queryable journal) and to outbox
// (relayed to Kafka) through the executor in context, so when the caller runs
// inside a transaction the audit entry commits or rolls back with the
// mutation it describes.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// outboxPayload is the JSON structure published to Kafka.
type outboxPayload struct {
	ID         string         `json:"id"`
	Category   string         `json:"category"`
	Timestamp  string         `json:"timestamp"`
	Action     string         `json:"action"`
	RequestID  string         `json:"request_id,omitempty"`
	TargetType string         `json:"target_type"`
	TargetID   string         `json:"target_id,omitempty"`
	ActorID    string         `json:"actor_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Append writes the record to the journal and the outbox.
func (s *Store) Append(ctx context.Context, record audit.Record) error {
	recordID := uuid.New()
	category := audit.CategoryOf(record)
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	payload, err := json.Marshal(outboxPayload{
		ID:         recordID.String(),
		Category:   string(category),
		Timestamp:  record.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:     record.Action,
		RequestID:  record.RequestID,
		TargetType: string(record.TargetType),
		TargetID:   record.TargetID,
		ActorID:    record.ActorID,
		Metadata:   record.Metadata,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	exec := txcontext.ExecutorFrom(ctx, s.db)

	_, err = exec.ExecContext(ctx, `
		INSERT INTO audit_records (
			id, category, recorded_at, action, request_id,
			target_type, target_id, actor_id, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		recordID,
		string(category),
		record.Timestamp,
		record.Action,
		record.RequestID,
		string(record.TargetType),
		record.TargetID,
		record.ActorID,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}

	aggregateID := record.TargetID
	if aggregateID == "" {
		aggregateID = recordID.String()
	}
	_, err = exec.ExecContext(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.New(),
		string(record.TargetType),
		aggregateID,
		record.Action,
		payload,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// List returns journal entries oldest first, capped at the most recent
// filter.Limit when positive.
func (s *Store) List(ctx context.Context, filter audit.Filter) ([]audit.Record, error) {
	var (
		where []string
		args  []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("target_type", string(filter.TargetType))
	add("target_id", filter.TargetID)
	add("request_id", filter.RequestID)

	query := `
		SELECT recorded_at, action, request_id, target_type, target_id, actor_id, metadata
		FROM audit_records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY recorded_at DESC, id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	// Reverse into append order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func scanRecords(rows *sql.Rows) ([]audit.Record, error) {
	var records []audit.Record
	for rows.Next() {
		var (
			record     audit.Record
			targetType string
			metadata   []byte
		)
		if err := rows.Scan(
			&record.Timestamp,
			&record.Action,
			&record.RequestID,
			&targetType,
			&record.TargetID,
			&record.ActorID,
			&metadata,
		); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		record.TargetType = audit.TargetType(targetType)
		if len(metadata) > 0 && string(metadata) != "null" {
			if err := json.Unmarshal(metadata, &record.Metadata); err != nil {
				return nil, fmt.Errorf("decode audit metadata: %w", err)
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}
