package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/juajobs/juajobs-backend/internal/models"
)

var (
	ErrReviewNotFound    = errors.New("review not found")
	ErrDuplicateReview   = errors.New("review already exists")
	ErrResponseExists    = errors.New("review already has a response")
)

const reviewColumns = `id, job_id, reviewer_id, reviewed_id, rating, comment, response,
	response_at, created_at, updated_at`

// ReviewRepository owns the reviews table.
type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review. The unique constraint rejects a second review
// by the same reviewer for the same job and subject.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (job_id, reviewer_id, reviewed_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		review.JobID, review.ReviewerID, review.ReviewedID, review.Rating, review.Comment,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReview
		}
		return fmt.Errorf("review repository: create %w", err)
	}

	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("review repository: get by id %w", err)
	}

	return &review, nil
}

// ListForUser returns the reviews received by a user, newest first.
func (r *ReviewRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE reviewed_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("review repository: list for user %w", err)
	}

	return reviews, nil
}

// ListByJob returns the reviews attached to a job.
func (r *ReviewRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE job_id = $1 ORDER BY created_at DESC`

	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, jobID); err != nil {
		return nil, fmt.Errorf("review repository: list by job %w", err)
	}

	return reviews, nil
}

// SetResponse records the subject's single reply. A review that already
// has a response is not overwritten.
func (r *ReviewRepository) SetResponse(ctx context.Context, reviewID uuid.UUID, response string) (*models.Review, error) {
	var review models.Review
	query := `
		UPDATE reviews
		SET response = $1, response_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND response IS NULL
		RETURNING ` + reviewColumns

	if err := r.db.GetContext(ctx, &review, query, response, reviewID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResponseExists
		}
		return nil, fmt.Errorf("review repository: set response %w", err)
	}

	return &review, nil
}

// GetStats aggregates received ratings for a user.
func (r *ReviewRepository) GetStats(ctx context.Context, userID uuid.UUID) (*models.ReviewStats, error) {
	stats := &models.ReviewStats{UserID: userID}
	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE reviewed_id = $1
	`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&stats.AverageRating, &stats.TotalReviews); err != nil {
		return nil, fmt.Errorf("review repository: get stats %w", err)
	}

	stats.AverageRating = float64(int(stats.AverageRating*100)) / 100

	return stats, nil
}
