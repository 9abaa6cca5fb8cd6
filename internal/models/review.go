package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is left by one party of a completed job about the other.
// Response is the reviewed user's single reply.
type Review struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	JobID      uuid.UUID  `db:"job_id" json:"job_id"`
	ReviewerID uuid.UUID  `db:"reviewer_id" json:"reviewer_id"`
	ReviewedID uuid.UUID  `db:"reviewed_id" json:"reviewed_id"`
	Rating     int        `db:"rating" json:"rating"`
	Comment    *string    `db:"comment" json:"comment,omitempty"`
	Response   *string    `db:"response" json:"response,omitempty"`
	ResponseAt *time.Time `db:"response_at" json:"response_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// ReviewStats aggregates the reviews received by a user.
type ReviewStats struct {
	UserID        uuid.UUID `json:"user_id"`
	AverageRating float64   `json:"average_rating"`
	TotalReviews  int       `json:"total_reviews"`
}
