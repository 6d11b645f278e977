package audited

import (
	"context"

	"atelier/internal/models"
	"atelier/internal/ports"
	id "atelier/pkg/domain"
	audit "atelier/pkg/platform/audit"
)

// RegistrationRepository journals registration mutations.
type RegistrationRepository struct {
	inner ports.RegistrationRepository
	rec   recorder
}

var _ ports.RegistrationRepository = (*RegistrationRepository)(nil)

func NewRegistrationRepository(inner ports.RegistrationRepository, sink ports.AuditSink, opts Options) *RegistrationRepository {
	return &RegistrationRepository{inner: inner, rec: newRecorder(sink, opts, audit.TargetRegistration, "RegistrationRepository")}
}

func (r *RegistrationRepository) FindByEventAndUser(ctx context.Context, eventID id.EventID, userID id.UserID) (*models.Registration, error) {
	return r.inner.FindByEventAndUser(ctx, eventID, userID)
}

func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Registration, error) {
	return r.inner.ListByEvent(ctx, eventID)
}

func (r *RegistrationRepository) Create(ctx context.Context, registration *models.Registration) (err error) {
	ctx, span := r.rec.start(ctx, "create")
	defer func() { finish(span, err) }()

	if err = r.inner.Create(ctx, registration); err != nil {
		return err
	}
	return r.rec.record(ctx, Operation{
		Name:   "create",
		Entity: registration,
		ID:     registration.ID.String(),
		Status: string(registration.Status),
	})
}

func (r *RegistrationRepository) UpdateStatus(ctx context.Context, registrationID id.RegistrationID, status models.RegistrationStatus) (_ *models.Registration, err error) {
	ctx, span := r.rec.start(ctx, "updateStatus")
	defer func() { finish(span, err) }()

	registration, err := r.inner.UpdateStatus(ctx, registrationID, status)
	if err != nil {
		return nil, err
	}
	op := Operation{Name: "updateStatus", Entity: registration, ID: registrationID.String(), Status: string(status)}
	if err = r.rec.record(ctx, op); err != nil {
		return nil, err
	}
	return registration, nil
}
