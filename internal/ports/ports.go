// Package ports defines the capabilities the use-cases depend on.
//
// Storage adapters implement them; audited decorators wrap them. Lookups
// return sentinel.ErrNotFound (possibly wrapped) on a miss and Create returns
// sentinel.ErrAlreadyUsed on a unique violation, so adapters never build
// domain errors themselves.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"atelier/internal/models"
	id "atelier/pkg/domain"
	audit "atelier/pkg/platform/audit"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByIdentifier resolves either a user ID or an email address.
	FindByIdentifier(ctx context.Context, idOrEmail string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateStatus(ctx context.Context, userID id.UserID, status models.UserStatus) (*models.User, error)
}

type EventRepository interface {
	FindBySlug(ctx context.Context, slug string) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	// LockEvent holds the event row until the surrounding transaction ends,
	// so registration reads and writes for one event run one at a time.
	LockEvent(ctx context.Context, eventID id.EventID) error
	// CountActiveRegistrations counts REGISTERED and CHECKED_IN rows.
	CountActiveRegistrations(ctx context.Context, eventID id.EventID) (int, error)
}

type RegistrationRepository interface {
	FindByEventAndUser(ctx context.Context, eventID id.EventID, userID id.UserID) (*models.Registration, error)
	ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Registration, error)
	Create(ctx context.Context, registration *models.Registration) error
	UpdateStatus(ctx context.Context, registrationID id.RegistrationID, status models.RegistrationStatus) (*models.Registration, error)
}

// AuditSink receives one record per successful mutation.
type AuditSink interface {
	Record(ctx context.Context, record audit.Record) error
}

// RoleRepository stores role grants for the user-admin service.
type RoleRepository interface {
	FindRole(ctx context.Context, name string) (*models.Role, error)
	Grant(ctx context.Context, userID id.UserID, role string) error
	Revoke(ctx context.Context, userID id.UserID, role string) error
	RolesOf(ctx context.Context, userID id.UserID) ([]string, error)
}

// TxRunner is the transaction boundary supplied by the delivery layer.
// Everything fn does through repositories bound to the returned context
// commits or rolls back together.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
