package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jobboard/internal/auth/models"
	"jobboard/internal/platform/postgres"
	"jobboard/pkg/domain"
	"jobboard/pkg/platform/sentinel"
)

const emailConstraint = "users_user_email_key"

// PostgresStore persists users in the users table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (user_email, user_password, user_role)
		VALUES ($1, $2, $3)
		RETURNING user_id, created_at, updated_at
	`
	var id int64
	err := s.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash, string(user.Role)).
		Scan(&id, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, emailConstraint) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = domain.UserID(id)
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	return s.findOne(ctx, `WHERE user_id = $1`, int64(id))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, `WHERE user_email = $1`, email)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `
		SELECT user_id, user_email, user_password, user_role, created_at, updated_at
		FROM users ` + where

	var (
		u    models.User
		id   int64
		role string
	)
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&id, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.ID = domain.UserID(id)
	if u.Role, err = domain.ParseRole(role); err != nil {
		return nil, fmt.Errorf("user %d has stored role %q: %w", id, role, err)
	}
	return &u, nil
}
