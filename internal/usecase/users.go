package usecase

import (
	"context"
	"net/mail"
	"strings"

	"atelier/internal/models"
	id "atelier/pkg/domain"
	dErrors "atelier/pkg/domain-errors"
)

type RegisterUserInput struct {
	Email string
}

// RegisterUser creates an ACTIVE account. Emails are trimmed and lowercased
// and must be a bare address ("Name <a@b>" is rejected).
func RegisterUser(ctx context.Context, d Deps, in RegisterUserInput) (*models.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	existing, err := d.Users.FindByEmail(ctx, email)
	if err != nil && !isNotFound(err) {
		return nil, storeError(err, "user")
	}
	if existing != nil {
		return nil, dErrors.AlreadyExists("user")
	}

	userID, err := id.ParseUserID(d.newID())
	if err != nil {
		return nil, err
	}
	now := d.now()
	user := &models.User{
		ID:        userID,
		Email:     email,
		Status:    models.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.Users.Create(ctx, user); err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", dErrors.InvalidInput("email_required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", dErrors.InvalidInput("email_invalid")
	}
	return email, nil
}
