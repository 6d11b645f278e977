// Package useradmin manages account status and role grants on behalf of an
// administrator.
package useradmin

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"atelier/internal/lifecycle"
	"atelier/internal/models"
	"atelier/internal/ports"
	id "atelier/pkg/domain"
	dErrors "atelier/pkg/domain-errors"
	audit "atelier/pkg/platform/audit"
	"atelier/pkg/platform/sentinel"
	"atelier/pkg/requestcontext"
)

// Actor is the authenticated caller.
type Actor struct {
	ID    id.UserID
	Roles []string
}

func (a Actor) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}

// ActorFromContext reads the actor stored by the auth middleware.
func ActorFromContext(ctx context.Context) Actor {
	return Actor{ID: requestcontext.ActorID(ctx), Roles: requestcontext.ActorRoles(ctx)}
}

type Service struct {
	users   ports.UserRepository
	roles   ports.RoleRepository
	auditor ports.AuditSink
	logger  *slog.Logger
}

type Option func(*Service)

// WithAuditSink records status changes and grants. Without it nothing is
// recorded.
func WithAuditSink(sink ports.AuditSink) Option {
	return func(s *Service) { s.auditor = sink }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(users ports.UserRepository, roles ports.RoleRepository, opts ...Option) *Service {
	s := &Service{users: users, roles: roles, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetStatus moves a user through PENDING, ACTIVE and DISABLED. Setting the
// current status again is a no-op.
func (s *Service) SetStatus(ctx context.Context, actor Actor, identifier, status string) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	next, err := models.ParseUserStatus(status)
	if err != nil {
		return nil, err
	}
	user, err := s.findUser(ctx, identifier)
	if err != nil {
		return nil, err
	}
	to, err := lifecycle.UserStatus.Transition(user.Status, next)
	if err != nil {
		return nil, err
	}
	if to == user.Status {
		return user, nil
	}

	previous := user.Status
	updated, err := s.users.UpdateStatus(ctx, user.ID, to)
	if err != nil {
		return nil, storeError(err, "user")
	}
	if err := s.record(ctx, actor, audit.ActionUserStatusChanged, updated.ID, map[string]any{
		"from": string(previous),
		"to":   string(to),
	}); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user status changed",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", updated.ID.String(),
		"from", previous,
		"to", to,
	)
	return updated, nil
}

// AssignRole grants role and returns the user with its current roles.
func (s *Service) AssignRole(ctx context.Context, actor Actor, identifier, role string) (*models.User, error) {
	return s.changeRole(ctx, actor, identifier, role, true)
}

// RevokeRole removes role. Revoking a role the user does not hold succeeds.
func (s *Service) RevokeRole(ctx context.Context, actor Actor, identifier, role string) (*models.User, error) {
	return s.changeRole(ctx, actor, identifier, role, false)
}

func (s *Service) changeRole(ctx context.Context, actor Actor, identifier, role string, grant bool) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if _, err := s.roles.FindRole(ctx, role); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.RoleNotFound(role)
		}
		return nil, storeError(err, "role")
	}
	user, err := s.findUser(ctx, identifier)
	if err != nil {
		return nil, err
	}

	action := audit.ActionRoleGranted
	if grant {
		err = s.roles.Grant(ctx, user.ID, role)
	} else {
		action = audit.ActionRoleRevoked
		err = s.roles.Revoke(ctx, user.ID, role)
	}
	if err != nil {
		return nil, storeError(err, "role")
	}
	if user.Roles, err = s.roles.RolesOf(ctx, user.ID); err != nil {
		return nil, storeError(err, "role")
	}
	if err := s.record(ctx, actor, action, user.ID, map[string]any{"role": role}); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) findUser(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, dErrors.InvalidInput("user_identifier_required")
	}
	if strings.Contains(identifier, "@") {
		identifier = strings.ToLower(identifier)
	}
	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

func (s *Service) record(ctx context.Context, actor Actor, action string, userID id.UserID, metadata map[string]any) error {
	if s.auditor == nil {
		return nil
	}
	err := s.auditor.Record(ctx, audit.Record{
		Action:     action,
		RequestID:  requestcontext.RequestID(ctx),
		TargetType: audit.TargetSystem,
		TargetID:   userID.String(),
		ActorID:    actor.ID.String(),
		Metadata:   metadata,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "audit_record_failed")
	}
	return nil
}

func requireAdmin(actor Actor) error {
	if !actor.HasRole(models.RoleAdmin) {
		return dErrors.RoleForbidden(models.RoleAdmin)
	}
	return nil
}

func storeError(err error, resource string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.NotFound(resource)
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.AlreadyExists(resource)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, resource+"_store_failed")
	}
}
