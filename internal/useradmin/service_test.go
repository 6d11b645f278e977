package useradmin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"atelier/internal/models"
	"atelier/internal/ports/mocks"
	"atelier/internal/store/memory"
	id "atelier/pkg/domain"
	dErrors "atelier/pkg/domain-errors"
	audit "atelier/pkg/platform/audit"
	"atelier/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	stores  *memory.Stores
	sink    *mocks.MockAuditSink
	service *Service
	admin   Actor
	user    *models.User
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.ctx = requestcontext.WithRequestID(context.Background(), "req-1")
	s.stores = memory.New()
	s.sink = mocks.NewMockAuditSink(ctrl)
	s.service = New(s.stores.Users, s.stores.Roles, WithAuditSink(s.sink))
	s.admin = Actor{ID: "usr-admin", Roles: []string{models.RoleAdmin}}
	s.user = &models.User{ID: "usr-1", Email: "ada@example.com", Status: models.UserStatusActive}
	s.Require().NoError(s.stores.Users.Create(s.ctx, s.user))
}

func (s *ServiceSuite) TestRequiresAdmin() {
	staff := Actor{ID: "usr-staff", Roles: []string{models.RoleStaff}}

	_, err := s.service.SetStatus(s.ctx, staff, "ada@example.com", "DISABLED")
	s.Equal(dErrors.CodeRoleForbidden, dErrors.CodeOf(err))
	s.Equal("role_forbidden:admin", dErrors.MessageOf(err))

	_, err = s.service.AssignRole(s.ctx, Actor{}, "ada@example.com", models.RoleStaff)
	s.Equal(dErrors.CodeRoleForbidden, dErrors.CodeOf(err))
}

func (s *ServiceSuite) TestSetStatus() {
	s.Run("records the change", func() {
		s.sink.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r audit.Record) error {
			s.Equal(audit.ActionUserStatusChanged, r.Action)
			s.Equal("req-1", r.RequestID)
			s.Equal("usr-1", r.TargetID)
			s.Equal("usr-admin", r.ActorID)
			s.Equal(map[string]any{"from": "ACTIVE", "to": "DISABLED"}, r.Metadata)
			return nil
		})

		user, err := s.service.SetStatus(s.ctx, s.admin, "ADA@example.com", "disabled")
		s.Require().NoError(err)
		s.Equal(models.UserStatusDisabled, user.Status)
	})

	s.Run("same status writes nothing", func() {
		user, err := s.service.SetStatus(s.ctx, s.admin, "usr-1", "DISABLED")
		s.Require().NoError(err)
		s.Equal(models.UserStatusDisabled, user.Status)
	})

	s.Run("illegal transition", func() {
		_, err := s.service.SetStatus(s.ctx, s.admin, "usr-1", "PENDING")
		s.Equal("invalid_user_status_transition:DISABLED->PENDING", dErrors.MessageOf(err))
	})

	s.Run("unknown status", func() {
		_, err := s.service.SetStatus(s.ctx, s.admin, "usr-1", "BANISHED")
		s.Equal(dErrors.CodeInvalidInput, dErrors.CodeOf(err))
	})

	s.Run("unknown user", func() {
		_, err := s.service.SetStatus(s.ctx, s.admin, "nobody@example.com", "ACTIVE")
		s.Equal("user_not_found", dErrors.MessageOf(err))
	})
}

func (s *ServiceSuite) TestRoles() {
	s.Run("grant and revoke", func() {
		s.sink.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		user, err := s.service.AssignRole(s.ctx, s.admin, "ada@example.com", " Staff ")
		s.Require().NoError(err)
		s.Equal([]string{models.RoleStaff}, user.Roles)

		user, err = s.service.RevokeRole(s.ctx, s.admin, "ada@example.com", models.RoleStaff)
		s.Require().NoError(err)
		s.Empty(user.Roles)
	})

	s.Run("unknown role", func() {
		_, err := s.service.AssignRole(s.ctx, s.admin, "ada@example.com", "janitor")
		s.Equal(dErrors.CodeRoleNotFound, dErrors.CodeOf(err))
		s.Equal("role_not_found:janitor", dErrors.MessageOf(err))
	})

	s.Run("audit failure is internal", func() {
		s.sink.EXPECT().Record(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := s.service.AssignRole(s.ctx, s.admin, "ada@example.com", models.RoleInstructor)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func TestActorFromContext(t *testing.T) {
	ctx := requestcontext.WithActor(context.Background(), id.UserID("usr-9"), []string{models.RoleAdmin})
	actor := ActorFromContext(ctx)
	if actor.ID != "usr-9" || !actor.HasRole(models.RoleAdmin) {
		t.Fatalf("unexpected actor %+v", actor)
	}
}
