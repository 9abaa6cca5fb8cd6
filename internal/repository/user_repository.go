package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/juajobs/juajobs-backend/internal/models"
)

// ErrUserNotFound is returned when the user record does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateUser is returned when email or phone is already taken.
var ErrDuplicateUser = errors.New("user already exists")

// ErrSessionNotFound is returned when a refresh session is missing or expired.
var ErrSessionNotFound = errors.New("session not found")

const userColumns = `id, email, username, password_hash, role, phone_number, is_verified, is_active,
	bio, country, city, hourly_rate, company_name, photo_path, last_login_at, created_at, updated_at`

// UserRepository owns the users and user_sessions tables.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. Unique violations on email or phone map to
// ErrDuplicateUser.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, username, password_hash, role, phone_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_verified, is_active, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role, user.PhoneNumber,
	).Scan(&user.ID, &user.IsVerified, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("user repository: create %w", err)
	}

	return nil
}

// GetByEmail returns the user with the given email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by email %w", err)
	}

	return &user, nil
}

// GetByID returns the user with the given ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}

	return &user, nil
}

// UpdateProfile writes the mutable profile fields and returns the fresh row.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET username = $1, phone_number = $2, bio = $3, country = $4, city = $5,
			hourly_rate = $6, company_name = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING ` + userColumns

	if err := r.db.GetContext(ctx, user, query,
		user.Username, user.PhoneNumber, user.Bio, user.Country, user.City,
		user.HourlyRate, user.CompanyName, user.ID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("user repository: update profile %w", err)
	}

	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, userID)
	if err != nil {
		return fmt.Errorf("user repository: update password %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePhoto stores the relative path of the profile photo.
func (r *UserRepository) UpdatePhoto(ctx context.Context, userID uuid.UUID, photoPath *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET photo_path = $1, updated_at = NOW() WHERE id = $2`,
		photoPath, userID)
	if err != nil {
		return fmt.Errorf("user repository: update photo %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetVerified flips the admin verification flag.
func (r *UserRepository) SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_verified = $1, updated_at = NOW() WHERE id = $2`,
		verified, userID)
	if err != nil {
		return fmt.Errorf("user repository: set verified %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetActive deactivates or reactivates an account.
func (r *UserRepository) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`,
		active, userID)
	if err != nil {
		return fmt.Errorf("user repository: set active %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateLastLoginAt stamps the last successful login.
func (r *UserRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("user repository: update last login at %w", err)
	}

	return nil
}

// ListWorkers returns active worker accounts for browsing.
func (r *UserRepository) ListWorkers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = 'worker' AND is_active = TRUE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var users []*models.User
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, fmt.Errorf("user repository: list workers %w", err)
	}

	return users, nil
}

// GetUserStats aggregates completed jobs and received reviews for a profile.
func (r *UserRepository) GetUserStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	stats := &models.UserStats{}

	jobsQuery := `
		SELECT COUNT(*) FROM jobs
		WHERE status = 'completed' AND (client_id = $1 OR assigned_worker_id = $1)
	`
	if err := r.db.GetContext(ctx, &stats.CompletedJobs, jobsQuery, userID); err != nil {
		return nil, fmt.Errorf("user repository: get completed jobs %w", err)
	}

	ratingQuery := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE reviewed_id = $1
	`
	if err := r.db.QueryRowContext(ctx, ratingQuery, userID).Scan(&stats.AverageRating, &stats.TotalReviews); err != nil {
		return nil, fmt.Errorf("user repository: get rating stats %w", err)
	}

	stats.AverageRating = float64(int(stats.AverageRating*100)) / 100

	return stats, nil
}

// CreateSession stores a new refresh-token session.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO user_sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		session.UserID,
		session.RefreshToken,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}

	return nil
}

// GetSessionByToken returns a live session for the given refresh token.
func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	var session models.Session
	query := `
		SELECT id, user_id, refresh_token, user_agent, ip_address, expires_at, created_at
		FROM user_sessions
		WHERE refresh_token = $1 AND expires_at > NOW()
	`
	if err := r.db.GetContext(ctx, &session, query, refreshToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("user repository: get session %w", err)
	}

	return &session, nil
}

// DeleteSession removes the session with the given refresh token.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE refresh_token = $1`, refreshToken); err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}

	return nil
}

// DeleteAllSessions removes every session of a user, used on password change.
func (r *UserRepository) DeleteAllSessions(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("user repository: delete all sessions %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
