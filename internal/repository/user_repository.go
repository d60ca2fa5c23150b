package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizforge/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new user repository backed by sqlx.
func NewSQLXUserRepository(db *sqlx.DB) UserRepository {
	return &sqlxUserRepository{db: db}
}

// CreateUser inserts a new user.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	exec := GetExecutor(ctx, r.db)

	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	query := `INSERT INTO users (id, google_id, email, name, profile_picture_url, created_at, updated_at)
	          VALUES (:id, :google_id, :email, :name, :profile_picture_url, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByGoogleID retrieves a user by their Google ID.
// Returns nil, nil when not found so callers can branch on onboarding.
func (r *sqlxUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	exec := GetExecutor(ctx, r.db)

	var user models.User
	err := sqlx.GetContext(ctx, exec, &user,
		`SELECT * FROM users WHERE google_id = $1 AND deleted_at IS NULL`, googleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by google_id: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by primary key. Returns nil, nil when not found.
func (r *sqlxUserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	exec := GetExecutor(ctx, r.db)

	var user models.User
	err := sqlx.GetContext(ctx, exec, &user,
		`SELECT * FROM users WHERE id = $1 AND deleted_at IS NULL`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// UpdateUser updates mutable profile fields.
func (r *sqlxUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	exec := GetExecutor(ctx, r.db)

	user.UpdatedAt = time.Now()

	query := `UPDATE users SET email = :email, name = :name, profile_picture_url = :profile_picture_url, updated_at = :updated_at
	          WHERE id = :id AND deleted_at IS NULL`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}
