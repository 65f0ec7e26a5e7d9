package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/moshaver-app/counseling-api/internal/models"
)

// UserRepository resolves identities: user accounts and their student or
// counselor profile rows.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, role, active, last_login, created_at, updated_at`

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// UpdateLastLogin updates the last_login timestamp for a user.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE users SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdatePassword updates the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, updatedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// FindStudentByUserID returns the student profile attached to a user account.
func (r *UserRepository) FindStudentByUserID(ctx context.Context, userID string) (*models.Student, error) {
	const query = `SELECT id, user_id, phone, created_at FROM students WHERE user_id = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by user id: %w", err)
	}
	return &student, nil
}

// FindCounselorByUserID returns the counselor profile attached to a user account.
func (r *UserRepository) FindCounselorByUserID(ctx context.Context, userID string) (*models.Counselor, error) {
	const query = `SELECT id, user_id, department, created_at FROM counselors WHERE user_id = $1 LIMIT 1`
	var counselor models.Counselor
	if err := r.db.GetContext(ctx, &counselor, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find counselor by user id: %w", err)
	}
	return &counselor, nil
}

// FindCounselorByID returns a counselor profile by its own identifier.
func (r *UserRepository) FindCounselorByID(ctx context.Context, id string) (*models.Counselor, error) {
	const query = `SELECT id, user_id, department, created_at FROM counselors WHERE id = $1 LIMIT 1`
	var counselor models.Counselor
	if err := r.db.GetContext(ctx, &counselor, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find counselor by id: %w", err)
	}
	return &counselor, nil
}

// FindStudentByID returns a student profile by its own identifier.
func (r *UserRepository) FindStudentByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, user_id, phone, created_at FROM students WHERE id = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return &student, nil
}
