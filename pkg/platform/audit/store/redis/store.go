// Package redis mirrors audit records onto a Redis stream for live tailing.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	audit "atelier/pkg/platform/audit"
)

// DefaultStream is used when no stream name is configured.
const DefaultStream = "atelier:audit"

// Store appends audit records to a Redis stream with XADD.
// It is not transactional with the primary store; pair it with the publisher
// as a mirror when the postgres outbox is the record of truth.
type Store struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// Option configures a Store.
type Option func(*Store)

// WithMaxLen caps the stream length (approximate trimming).
func WithMaxLen(n int64) Option {
	return func(s *Store) {
		s.maxLen = n
	}
}

// New creates a stream sink. An empty stream falls back to DefaultStream.
func New(client redis.Cmdable, stream string, opts ...Option) *Store {
	if stream == "" {
		stream = DefaultStream
	}
	s := &Store{client: client, stream: stream}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append writes one stream entry per record.
func (s *Store) Append(ctx context.Context, record audit.Record) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"action":      record.Action,
			"category":    string(audit.CategoryOf(record)),
			"request_id":  record.RequestID,
			"target_type": string(record.TargetType),
			"target_id":   record.TargetID,
			"actor_id":    record.ActorID,
			"metadata":    string(metadata),
			"timestamp":   record.Timestamp.UTC().Format(time.RFC3339Nano),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd audit record: %w", err)
	}
	return nil
}

// List reads the stream back, oldest first. Intended for tests and tooling.
func (s *Store) List(ctx context.Context, filter audit.Filter) ([]audit.Record, error) {
	msgs, err := s.client.XRange(ctx, s.stream, "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("xrange audit stream: %w", err)
	}
	var out []audit.Record
	for _, msg := range msgs {
		record, err := decode(msg.Values)
		if err != nil {
			return nil, err
		}
		if filter.Matches(record) {
			out = append(out, record)
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[len(out)-filter.Limit:]
	}
	return out, nil
}

func decode(values map[string]any) (audit.Record, error) {
	str := func(key string) string {
		v, _ := values[key].(string)
		return v
	}
	record := audit.Record{
		Action:     str("action"),
		RequestID:  str("request_id"),
		TargetType: audit.TargetType(str("target_type")),
		TargetID:   str("target_id"),
		ActorID:    str("actor_id"),
	}
	if ts := str("timestamp"); ts != "" {
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return audit.Record{}, fmt.Errorf("parse audit timestamp: %w", err)
		}
		record.Timestamp = parsed
	}
	if raw := str("metadata"); raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &record.Metadata); err != nil {
			return audit.Record{}, fmt.Errorf("decode audit metadata: %w", err)
		}
	}
	return record, nil
}
