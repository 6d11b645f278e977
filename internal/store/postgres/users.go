package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"atelier/internal/models"
	id "atelier/pkg/domain"
	"atelier/pkg/platform/sentinel"
	txcontext "atelier/pkg/platform/tx"
)

type UserStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db, now: time.Now}
}

const userColumns = `id, email, status, created_at, updated_at`

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
}

func (s *UserStore) FindByIdentifier(ctx context.Context, idOrEmail string) (*models.User, error) {
	if strings.Contains(idOrEmail, "@") {
		return s.FindByEmail(ctx, idOrEmail)
	}
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, idOrEmail)
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (id, email, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, string(user.ID), strings.ToLower(user.Email), string(user.Status), user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert user %s: %w", user.ID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) UpdateStatus(ctx context.Context, userID id.UserID, status models.UserStatus) (*models.User, error) {
	return s.findOne(ctx, `
		UPDATE users SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+userColumns,
		string(userID), string(status), s.now())
}

func (s *UserStore) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	var (
		user   models.User
		userID string
		status string
	)
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query, args...).
		Scan(&userID, &user.Email, &status, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	user.ID = id.UserID(userID)
	user.Status = models.UserStatus(status)
	return &user, nil
}
