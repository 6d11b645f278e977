// Package publisher provides the fail-closed audit publisher.
//
// Publisher writes every record synchronously to its primary store and the
// caller blocks until the write succeeds. If it fails, an error is returned
// and the calling operation MUST fail so the surrounding transaction rolls
// back. Mirror stores (e.g. a Redis stream) are written after the primary
// and their failures are logged, never returned. Inside a transaction the
// mirror writes are queued with tx.AfterCommit, so a rolled-back operation
// never reaches them.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	audit "atelier/pkg/platform/audit"
	txcontext "atelier/pkg/platform/tx"
)

// Publisher emits audit records with fail-closed semantics.
type Publisher struct {
	store   audit.Store
	mirrors []audit.Store
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithMirror adds a best-effort secondary store, written after commit when
// the record is published inside a transaction.
func WithMirror(store audit.Store) Option {
	return func(p *Publisher) {
		if store != nil {
			p.mirrors = append(p.mirrors, store)
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

// New creates a publisher over the primary store.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Record validates, timestamps and persists one audit record.
// Returns error if persistence fails - the caller MUST fail its operation.
func (p *Publisher) Record(ctx context.Context, record audit.Record) error {
	start := time.Now()

	if err := record.Validate(); err != nil {
		return err
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = p.now()
	}

	if err := p.store.Append(ctx, record); err != nil {
		if p.metrics != nil {
			p.metrics.IncPersistFailures()
		}
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "CRITICAL: audit persistence failed",
				"action", record.Action,
				"target_type", record.TargetType,
				"target_id", record.TargetID,
				"request_id", record.RequestID,
				"error", err,
			)
		}
		return fmt.Errorf("audit persistence failed: %w", err)
	}

	if len(p.mirrors) > 0 {
		if !txcontext.AfterCommit(ctx, func(ctx context.Context) { p.mirror(ctx, record) }) {
			p.mirror(ctx, record)
		}
	}

	if p.metrics != nil {
		p.metrics.ObservePersistDuration(time.Since(start).Seconds())
		p.metrics.IncRecorded(string(audit.CategoryOf(record)))
	}
	return nil
}

func (p *Publisher) mirror(ctx context.Context, record audit.Record) {
	for _, mirror := range p.mirrors {
		if err := mirror.Append(ctx, record); err != nil {
			if p.metrics != nil {
				p.metrics.IncMirrorFailures()
			}
			if p.logger != nil {
				p.logger.WarnContext(ctx, "audit mirror write failed",
					"action", record.Action,
					"error", err,
				)
			}
		}
	}
}

// Close is a no-op for the synchronous publisher.
func (p *Publisher) Close() error {
	return nil
}
