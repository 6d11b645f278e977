package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"atelier/internal/models"
	"atelier/internal/ports/mocks"
	dErrors "atelier/pkg/domain-errors"
	"atelier/pkg/platform/sentinel"
)

func (s *LifecycleSuite) TestRegisterUser() {
	s.Run("normalises and activates", func() {
		user, err := RegisterUser(s.ctx, s.deps, RegisterUserInput{Email: "  Ada@Example.COM "})
		s.Require().NoError(err)
		s.Equal("ada@example.com", user.Email)
		s.Equal(models.UserStatusActive, user.Status)
	})

	s.Run("duplicate email", func() {
		_, err := RegisterUser(s.ctx, s.deps, RegisterUserInput{Email: "ADA@example.com"})
		s.assertCode(err, dErrors.CodeAlreadyExists, "user_already_exists")
	})

	for _, raw := range []string{"", "   "} {
		s.Run(fmt.Sprintf("required %q", raw), func() {
			_, err := RegisterUser(s.ctx, s.deps, RegisterUserInput{Email: raw})
			s.assertCode(err, dErrors.CodeInvalidInput, "email_required")
		})
	}

	for _, raw := range []string{"not-an-email", "Ada <ada@example.com>", "a@b@c"} {
		s.Run(fmt.Sprintf("invalid %q", raw), func() {
			_, err := RegisterUser(s.ctx, s.deps, RegisterUserInput{Email: raw})
			s.assertCode(err, dErrors.CodeInvalidInput, "email_invalid")
		})
	}
}

func TestRegisterUserStoreFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup failure is internal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := mocks.NewMockUserRepository(ctrl)
		users.EXPECT().FindByEmail(gomock.Any(), "ada@example.com").Return(nil, errors.New("timeout"))

		_, err := RegisterUser(ctx, Deps{Users: users}, RegisterUserInput{Email: "ada@example.com"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
		assert.Equal(t, "user_store_failed", dErrors.MessageOf(err))
	})

	t.Run("unique violation on create is already exists", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := mocks.NewMockUserRepository(ctrl)
		users.EXPECT().FindByEmail(gomock.Any(), "ada@example.com").Return(nil, sentinel.ErrNotFound)
		users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(fmt.Errorf("insert user: %w", sentinel.ErrAlreadyUsed))

		_, err := RegisterUser(ctx, Deps{Users: users, NewID: func() string { return "usr-1" }}, RegisterUserInput{Email: "ada@example.com"})
		require.Error(t, err)
		assert.Equal(t, dErrors.CodeAlreadyExists, dErrors.CodeOf(err))
	})
}
