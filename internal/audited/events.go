package audited

import (
	"context"

	"atelier/internal/models"
	"atelier/internal/ports"
	id "atelier/pkg/domain"
	audit "atelier/pkg/platform/audit"
)

// EventRepository journals event mutations.
type EventRepository struct {
	inner ports.EventRepository
	rec   recorder
}

var _ ports.EventRepository = (*EventRepository)(nil)

func NewEventRepository(inner ports.EventRepository, sink ports.AuditSink, opts Options) *EventRepository {
	return &EventRepository{inner: inner, rec: newRecorder(sink, opts, audit.TargetEvent, "EventRepository")}
}

func (r *EventRepository) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return r.inner.FindBySlug(ctx, slug)
}

func (r *EventRepository) List(ctx context.Context) ([]*models.Event, error) {
	return r.inner.List(ctx)
}

func (r *EventRepository) LockEvent(ctx context.Context, eventID id.EventID) error {
	return r.inner.LockEvent(ctx, eventID)
}

func (r *EventRepository) CountActiveRegistrations(ctx context.Context, eventID id.EventID) (int, error) {
	return r.inner.CountActiveRegistrations(ctx, eventID)
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) (err error) {
	ctx, span := r.rec.start(ctx, "create")
	defer func() { finish(span, err) }()

	if err = r.inner.Create(ctx, event); err != nil {
		return err
	}
	return r.rec.record(ctx, Operation{Name: "create", Entity: event, ID: event.ID.String(), Status: string(event.Status)})
}

func (r *EventRepository) Update(ctx context.Context, event *models.Event) (err error) {
	ctx, span := r.rec.start(ctx, "update")
	defer func() { finish(span, err) }()

	if err = r.inner.Update(ctx, event); err != nil {
		return err
	}
	return r.rec.record(ctx, Operation{Name: "update", Entity: event, ID: event.ID.String(), Status: string(event.Status)})
}
