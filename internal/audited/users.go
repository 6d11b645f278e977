package audited

import (
	"context"

	"atelier/internal/models"
	"atelier/internal/ports"
	id "atelier/pkg/domain"
	audit "atelier/pkg/platform/audit"
)

// UserRepository journals user mutations under the system target.
type UserRepository struct {
	inner ports.UserRepository
	rec   recorder
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(inner ports.UserRepository, sink ports.AuditSink, opts Options) *UserRepository {
	return &UserRepository{inner: inner, rec: newRecorder(sink, opts, audit.TargetSystem, "UserRepository")}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.inner.FindByEmail(ctx, email)
}

func (r *UserRepository) FindByIdentifier(ctx context.Context, idOrEmail string) (*models.User, error) {
	return r.inner.FindByIdentifier(ctx, idOrEmail)
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, span := r.rec.start(ctx, "create")
	defer func() { finish(span, err) }()

	if err = r.inner.Create(ctx, user); err != nil {
		return err
	}
	return r.rec.record(ctx, Operation{Name: "create", Entity: user, ID: user.ID.String(), Status: string(user.Status)})
}

func (r *UserRepository) UpdateStatus(ctx context.Context, userID id.UserID, status models.UserStatus) (_ *models.User, err error) {
	ctx, span := r.rec.start(ctx, "updateStatus")
	defer func() { finish(span, err) }()

	user, err := r.inner.UpdateStatus(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	if err = r.rec.record(ctx, Operation{Name: "updateStatus", Entity: user, ID: userID.String(), Status: string(status)}); err != nil {
		return nil, err
	}
	return user, nil
}
