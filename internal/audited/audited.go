// Package audited decorates repository ports so every successful mutation
// is journaled exactly once.
//
// A decorator delegates to the inner repository first. If the inner call
// fails nothing is recorded and the error is returned unchanged. If it
// succeeds one audit.Record is handed to the sink; a sink failure is
// returned wrapped as CodeInternal so the caller's transaction rolls back.
// Read methods pass through.
package audited

import (
	"context"
	"maps"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"atelier/internal/ports"
	dErrors "atelier/pkg/domain-errors"
	audit "atelier/pkg/platform/audit"
	"atelier/pkg/requestcontext"
)

const tracerName = "atelier/audited"

// Operation describes the mutation handed to a Metadata function.
type Operation struct {
	// Name is the repository method: "create", "update" or "updateStatus".
	Name string
	// Entity is the created or updated entity, when the method returns one.
	Entity any
	ID     string
	Status string
}

// Options tune what a decorator journals. Zero values pick defaults.
type Options struct {
	// Action defaults to "<target>.<operation>".
	Action    string
	RequestID func(ctx context.Context) string
	Metadata  func(ctx context.Context, op Operation) map[string]any
	Now       func() time.Time
}

type recorder struct {
	sink   ports.AuditSink
	opts   Options
	target audit.TargetType
	tracer trace.Tracer
	name   string
}

func newRecorder(sink ports.AuditSink, opts Options, target audit.TargetType, name string) recorder {
	if opts.RequestID == nil {
		opts.RequestID = requestcontext.RequestID
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return recorder{
		sink:   sink,
		opts:   opts,
		target: target,
		tracer: otel.Tracer(tracerName),
		name:   name,
	}
}

func (r recorder) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "audited."+r.name+"."+op,
		trace.WithAttributes(attribute.String("audit.target_type", string(r.target))))
}

// record journals op after a successful inner call.
func (r recorder) record(ctx context.Context, op Operation) error {
	var metadata map[string]any
	if r.opts.Metadata != nil {
		metadata = maps.Clone(r.opts.Metadata(ctx, op))
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["operation"] = op.Name
	if op.Status != "" {
		if _, ok := metadata["status"]; !ok {
			metadata["status"] = op.Status
		}
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		metadata["trace_id"] = sc.TraceID().String()
	}

	action := r.opts.Action
	if action == "" {
		action = string(r.target) + "." + op.Name
	}

	err := r.sink.Record(ctx, audit.Record{
		Action:     action,
		RequestID:  r.opts.RequestID(ctx),
		TargetType: r.target,
		TargetID:   op.ID,
		ActorID:    requestcontext.ActorID(ctx).String(),
		Metadata:   metadata,
		Timestamp:  r.opts.Now(),
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "audit_record_failed")
	}
	return nil
}

// finish records err on span and ends it.
func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
