package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/juajobs/juajobs-backend/internal/authz"
)

// User is a platform account. Role is fixed at registration and never changes.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         authz.Role `db:"role" json:"role"`
	PhoneNumber  *string    `db:"phone_number" json:"phone_number,omitempty"`
	IsVerified   bool       `db:"is_verified" json:"is_verified"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	Bio          *string    `db:"bio" json:"bio,omitempty"`
	Country      *string    `db:"country" json:"country,omitempty"`
	City         *string    `db:"city" json:"city,omitempty"`
	HourlyRate   *float64   `db:"hourly_rate" json:"hourly_rate,omitempty"`
	CompanyName  *string    `db:"company_name" json:"company_name,omitempty"`
	PhotoPath    *string    `db:"photo_path" json:"photo_path,omitempty"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// PublicView strips private contact fields for non-owner reads.
func (u *User) PublicView() *User {
	view := *u
	view.Email = ""
	view.PhoneNumber = nil
	view.LastLoginAt = nil
	return &view
}

// Session is a persisted refresh-token session.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UserStats aggregates a user's marketplace activity for the public profile.
type UserStats struct {
	CompletedJobs int     `json:"completed_jobs"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}
