package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Andessonreis/corre-aqui-dash/internal/models"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateAccount inserts the credentials and the company profile in one transaction
func (r *UserRepository) CreateAccount(ctx context.Context, email, passwordHash, name, phone string) (*models.Profile, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id
	`, email, passwordHash).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	profile := &models.Profile{}
	err = tx.QueryRow(ctx, `
		INSERT INTO profiles (id, name, email, phone, role, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, email, phone, role, image_url, created_at, updated_at
	`, userID, name, email, phone, models.RoleCompany, models.DefaultAvatarURL).Scan(
		&profile.ID,
		&profile.Name,
		&profile.Email,
		&profile.Phone,
		&profile.Role,
		&profile.ImageURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit account: %w", err)
	}

	return profile, nil
}

// GetUserByEmail retrieves the credentials of a user
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}

	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetProfile retrieves a user's profile
func (r *UserRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile := &models.Profile{}

	query := `
		SELECT id, name, email, phone, role, image_url, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.Name,
		&profile.Email,
		&profile.Phone,
		&profile.Role,
		&profile.ImageURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

// UpdateProfile applies the non-nil fields. A new email is written to the
// credentials too so sign-in keeps working.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, name, email, phone *string) (*models.Profile, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if email != nil {
		_, err := tx.Exec(ctx, `UPDATE users SET email = $2, updated_at = now() WHERE id = $1`, userID, *email)
		if err != nil {
			return nil, fmt.Errorf("failed to update user email: %w", err)
		}
	}

	profile := &models.Profile{}
	err = tx.QueryRow(ctx, `
		UPDATE profiles SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone),
			updated_at = now()
		WHERE id = $1
		RETURNING id, name, email, phone, role, image_url, created_at, updated_at
	`, userID, name, email, phone).Scan(
		&profile.ID,
		&profile.Name,
		&profile.Email,
		&profile.Phone,
		&profile.Role,
		&profile.ImageURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit profile: %w", err)
	}

	return profile, nil
}

// UpdateProfileImage stores the avatar URL
func (r *UserRepository) UpdateProfileImage(ctx context.Context, userID uuid.UUID, imageURL string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE profiles SET image_url = $2, updated_at = now()
		WHERE id = $1
	`, userID, imageURL)
	if err != nil {
		return fmt.Errorf("failed to update profile image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update profile image: %w", ErrNotFound)
	}
	return nil
}
