// Package outbox relays committed audit outbox rows to Kafka.
//
// Rows are claimed in a transaction with FOR UPDATE SKIP LOCKED so several
// relays can run side by side; a row is marked published only after the
// broker acknowledged it, which gives at-least-once delivery.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	defaultBatchSize    = 100
	defaultPollInterval = time.Second
)

// Entry is one outbox row.
type Entry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

// Queue hands out batches of unpublished entries. fn returns the IDs that were
// delivered; the queue marks exactly those as published when fn returns.
type Queue interface {
	WithBatch(ctx context.Context, limit int, fn func(ctx context.Context, entries []Entry) ([]uuid.UUID, error)) error
}

// Producer is the subset of *kgo.Client the relay needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Relay moves outbox entries to a Kafka topic.
type Relay struct {
	queue     Queue
	producer  Producer
	topic     string
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
}

// Option configures a Relay.
type Option func(*Relay)

// WithBatchSize caps the entries claimed per poll.
func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithPollInterval sets the delay between polls that found nothing to do.
func WithPollInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// NewRelay creates a relay publishing to topic.
func NewRelay(queue Queue, producer Producer, topic string, opts ...Option) *Relay {
	r := &Relay{
		queue:     queue,
		producer:  producer,
		topic:     topic,
		batchSize: defaultBatchSize,
		interval:  defaultPollInterval,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled. A full batch is followed immediately by
// another poll; otherwise the relay sleeps for the poll interval.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "outbox relay started", "topic", r.topic, "batch_size", r.batchSize)
	for {
		n, err := r.RelayOnce(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			r.logger.ErrorContext(ctx, "outbox relay batch failed", "error", err)
		}
		wait := r.interval
		if err == nil && n == r.batchSize {
			wait = 0
		}
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "outbox relay stopped")
			return nil
		case <-time.After(wait):
		}
	}
}

// RelayOnce claims one batch, produces it and returns how many entries were
// delivered. Entries the broker rejected stay unpublished for the next poll.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	var delivered int
	var produceErr error
	err := r.queue.WithBatch(ctx, r.batchSize, func(ctx context.Context, entries []Entry) ([]uuid.UUID, error) {
		if len(entries) == 0 {
			return nil, nil
		}
		records := make([]*kgo.Record, len(entries))
		byRecord := make(map[*kgo.Record]uuid.UUID, len(entries))
		for i, entry := range entries {
			rec := toRecord(r.topic, entry)
			records[i] = rec
			byRecord[rec] = entry.ID
		}

		results := r.producer.ProduceSync(ctx, records...)
		published := make([]uuid.UUID, 0, len(results))
		for _, res := range results {
			if res.Err != nil {
				if produceErr == nil {
					produceErr = res.Err
				}
				continue
			}
			if entryID, ok := byRecord[res.Record]; ok {
				published = append(published, entryID)
			}
		}
		delivered = len(published)
		return published, nil
	})
	if err != nil {
		return 0, err
	}
	if produceErr != nil {
		return delivered, fmt.Errorf("produce outbox entries: %w", produceErr)
	}
	return delivered, nil
}

func toRecord(topic string, entry Entry) *kgo.Record {
	return &kgo.Record{
		Topic:     topic,
		Key:       []byte(entry.AggregateID),
		Value:     entry.Payload,
		Timestamp: entry.CreatedAt,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(entry.EventType)},
			{Key: "aggregate_type", Value: []byte(entry.AggregateType)},
			{Key: "outbox_id", Value: []byte(entry.ID.String())},
		},
	}
}

// NewKafkaClient builds a producer-only franz-go client.
func NewKafkaClient(brokers []string, topic string) (*kgo.Client, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ClientID("atelier-outbox-relay"),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}
