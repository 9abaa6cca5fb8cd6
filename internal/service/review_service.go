package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/juajobs/juajobs-backend/internal/models"
	"github.com/juajobs/juajobs-backend/internal/pkg/apperror"
	"github.com/juajobs/juajobs-backend/internal/repository"
)

// ReviewRepo is the storage surface ReviewService depends on.
type ReviewRepo interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Review, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Review, error)
	SetResponse(ctx context.Context, reviewID uuid.UUID, response string) (*models.Review, error)
	GetStats(ctx context.Context, userID uuid.UUID) (*models.ReviewStats, error)
}

// ReviewJobRepo is the job surface ReviewService depends on.
type ReviewJobRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// ReviewService lets the two parties of a completed job rate each other.
type ReviewService struct {
	repo     ReviewRepo
	jobs     ReviewJobRepo
	notifier Notifier
}

func NewReviewService(repo ReviewRepo, jobs ReviewJobRepo, notifier Notifier) *ReviewService {
	return &ReviewService{repo: repo, jobs: jobs, notifier: notifier}
}

// CreateReview records a rating after job completion. The reviewer must be
// a party to the job; the subject is always the other party.
func (s *ReviewService) CreateReview(ctx context.Context, reviewerID uuid.UUID, jobID uuid.UUID, rating int, comment *string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperror.New(apperror.ErrCodeValidation, "rating must be between 1 and 5")
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}

	if job.Status != models.JobStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeConflict, "reviews are only allowed on completed jobs")
	}

	var reviewedID uuid.UUID
	switch {
	case reviewerID == job.ClientID:
		if job.AssignedWorkerID == nil {
			return nil, apperror.New(apperror.ErrCodeConflict, "job has no assigned worker")
		}
		reviewedID = *job.AssignedWorkerID
	case job.AssignedWorkerID != nil && reviewerID == *job.AssignedWorkerID:
		reviewedID = job.ClientID
	default:
		return nil, apperror.New(apperror.ErrCodeForbidden, "only job participants can leave a review")
	}

	review := &models.Review{
		JobID:      jobID,
		ReviewerID: reviewerID,
		ReviewedID: reviewedID,
		Rating:     rating,
		Comment:    comment,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, apperror.New(apperror.ErrCodeConflict, "you already reviewed this job")
		}
		return nil, err
	}

	notify(s.notifier, reviewedID, models.EventReviewReceived, map[string]interface{}{
		"job_id":    jobID,
		"review_id": review.ID,
		"rating":    rating,
	})

	return review, nil
}

// GetReview returns one review. Reviews are public.
func (s *ReviewService) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, apperror.ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

// ListUserReviews returns the reviews received by a user.
func (s *ReviewService) ListUserReviews(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListForUser(ctx, userID, limit, offset)
}

// ListJobReviews returns the reviews attached to a job.
func (s *ReviewService) ListJobReviews(ctx context.Context, jobID uuid.UUID) ([]models.Review, error) {
	return s.repo.ListByJob(ctx, jobID)
}

// Respond records the subject's single reply to a review.
func (s *ReviewService) Respond(ctx context.Context, actorID uuid.UUID, reviewID uuid.UUID, response string) (*models.Review, error) {
	if response == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "response text is required")
	}

	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, apperror.ErrReviewNotFound
		}
		return nil, err
	}

	if review.ReviewedID != actorID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the reviewed user can respond")
	}

	updated, err := s.repo.SetResponse(ctx, reviewID, response)
	if err != nil {
		if errors.Is(err, repository.ErrResponseExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "review already has a response")
		}
		return nil, err
	}

	notify(s.notifier, updated.ReviewerID, models.EventReviewResponse, map[string]interface{}{
		"review_id": updated.ID,
	})

	return updated, nil
}

// GetUserStats returns the aggregate rating a user has received.
func (s *ReviewService) GetUserStats(ctx context.Context, userID uuid.UUID) (*models.ReviewStats, error) {
	return s.repo.GetStats(ctx, userID)
}
