package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

const userColumns = `id, email, password_hash, role, first_name, last_name, phone, is_active, created_at, updated_at`

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, role, first_name,
			last_name, phone, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.ext(ctx).ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapError(err))
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.get(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.get(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email = $1`, email); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, phone = $3, is_active = $4, updated_at = $5
		WHERE id = $6
	`
	user.UpdatedAt = time.Now().UTC()
	if err := r.exec(ctx, query, user.FirstName, user.LastName, user.Phone, user.IsActive, user.UpdatedAt, user.ID); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	if err := r.exec(ctx, query, hash, id); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// ToggleActive flips is_active in a single statement so concurrent toggles
// never act on a stale read.
func (r *userRepository) ToggleActive(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		UPDATE users
		SET is_active = NOT is_active, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	var user model.User
	if err := r.get(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to toggle user status: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, filter model.UserFilter, page model.Page) ([]*model.User, int, error) {
	var cond conditions
	if filter.Role != "" {
		cond.add("role = $%d", filter.Role)
	}
	if filter.IsActive != nil {
		cond.add("is_active = $%d", *filter.IsActive)
	}
	if filter.Search != "" {
		cond.add("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", likePattern(filter.Search))
	}

	var total int
	if err := r.get(ctx, &total, `SELECT COUNT(*) FROM users`+cond.where(), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	limit, args := cond.page(page.Limit, page.Offset())
	query := `SELECT ` + userColumns + ` FROM users` + cond.where() + ` ORDER BY created_at DESC` + limit

	users := []*model.User{}
	if err := r.selectAll(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}
