package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"atelier/internal/models"
	id "atelier/pkg/domain"
	"atelier/pkg/platform/sentinel"
	txcontext "atelier/pkg/platform/tx"
)

type RoleStore struct {
	db *sql.DB
}

func NewRoleStore(db *sql.DB) *RoleStore {
	return &RoleStore{db: db}
}

func (s *RoleStore) FindRole(ctx context.Context, name string) (*models.Role, error) {
	var (
		role   models.Role
		roleID string
	)
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, name, description FROM roles WHERE name = $1`, name).
		Scan(&roleID, &role.Name, &role.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role %q: %w", name, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("query role: %w", err)
	}
	role.ID = id.RoleID(roleID)
	return &role, nil
}

func (s *RoleStore) Grant(ctx context.Context, userID id.UserID, role string) error {
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role_name) VALUES ($1, $2)
		ON CONFLICT (user_id, role_name) DO NOTHING
	`, string(userID), role)
	if err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	return nil
}

func (s *RoleStore) Revoke(ctx context.Context, userID id.UserID, role string) error {
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_name = $2`, string(userID), role)
	if err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	return nil
}

func (s *RoleStore) RolesOf(ctx context.Context, userID id.UserID) ([]string, error) {
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx,
		`SELECT role_name FROM user_roles WHERE user_id = $1 ORDER BY role_name`, string(userID))
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return roles, nil
}
