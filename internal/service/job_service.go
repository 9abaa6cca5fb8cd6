package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/juajobs/juajobs-backend/internal/authz"
	"github.com/juajobs/juajobs-backend/internal/cache"
	"github.com/juajobs/juajobs-backend/internal/logger"
	"github.com/juajobs/juajobs-backend/internal/models"
	"github.com/juajobs/juajobs-backend/internal/pkg/apperror"
	"github.com/juajobs/juajobs-backend/internal/repository"
)

// JobRepo is the storage surface JobService depends on.
type JobRepo interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	List(ctx context.Context, filter models.JobFilter) ([]models.Job, error)
	Update(ctx context.Context, job *models.Job) error
	Cancel(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	Complete(ctx context.Context, id uuid.UUID) error
}

// JobCategoryGetter validates category references.
type JobCategoryGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.JobCategory, error)
}

// JobLocationGetter validates location references.
type JobLocationGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
}

// JobService covers the job posting lifecycle. Single-job reads go through
// the cache; every write to a job invalidates its cache key.
type JobService struct {
	repo       JobRepo
	categories JobCategoryGetter
	locations  JobLocationGetter
	cache      *cache.Cache
	notifier   Notifier
}

func NewJobService(repo JobRepo, categories JobCategoryGetter, locations JobLocationGetter, c *cache.Cache, notifier Notifier) *JobService {
	return &JobService{
		repo:       repo,
		categories: categories,
		locations:  locations,
		cache:      c,
		notifier:   notifier,
	}
}

// CreateJob posts a new open job for a client.
func (s *JobService) CreateJob(ctx context.Context, clientID uuid.UUID, role authz.Role, job *models.Job) (*models.Job, error) {
	if !authz.Can(role, authz.ActionPostJob) {
		return nil, apperror.ErrForbidden
	}

	if job.Title == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "title is required")
	}
	if job.Description == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "description is required")
	}
	if job.BudgetMin <= 0 || job.BudgetMax <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "budget must be positive")
	}
	if job.BudgetMin > job.BudgetMax {
		return nil, apperror.New(apperror.ErrCodeValidation, "budget_min must not exceed budget_max")
	}
	if !job.IsRemote && job.LocationID == nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "on-site jobs require a location")
	}

	category, err := s.categories.GetByID(ctx, job.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, apperror.ErrCategoryNotFound
		}
		return nil, err
	}
	if !category.IsActive {
		return nil, apperror.New(apperror.ErrCodeValidation, "category is not active")
	}

	if job.LocationID != nil {
		loc, err := s.locations.GetByID(ctx, *job.LocationID)
		if err != nil {
			if errors.Is(err, repository.ErrLocationNotFound) {
				return nil, apperror.ErrLocationNotFound
			}
			return nil, err
		}
		if !loc.IsActive {
			return nil, apperror.New(apperror.ErrCodeValidation, "location is not active")
		}
	}

	job.ClientID = clientID
	if job.RequiredSkills == nil {
		job.RequiredSkills = []string{}
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, err
	}

	return job, nil
}

// GetJob returns a job, served from the cache when possible.
func (s *JobService) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	key := cache.JobKey(id)

	if s.cache != nil {
		var cached models.Job
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, job); err != nil && logger.Log != nil {
			logger.Log.WithField("error", err.Error()).Warn("job cache set failed")
		}
	}

	return job, nil
}

// ListJobs returns jobs matching the filter. Listings always hit the
// database; only single-job reads are cached.
func (s *JobService) ListJobs(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	if filter.Status != "" {
		if _, ok := models.ValidJobStatuses[filter.Status]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "invalid job status")
		}
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return s.repo.List(ctx, filter)
}

// UpdateJob edits an open job. Only the owner may edit.
func (s *JobService) UpdateJob(ctx context.Context, actorID uuid.UUID, role authz.Role, job *models.Job) (*models.Job, error) {
	existing, err := s.repo.GetByID(ctx, job.ID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}

	if existing.ClientID != actorID && !authz.Can(role, authz.ActionViewAllRecords) {
		return nil, apperror.ErrForbidden
	}
	if job.BudgetMin <= 0 || job.BudgetMax <= 0 || job.BudgetMin > job.BudgetMax {
		return nil, apperror.New(apperror.ErrCodeValidation, "invalid budget range")
	}
	if !job.IsRemote && job.LocationID == nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "on-site jobs require a location")
	}
	if job.RequiredSkills == nil {
		job.RequiredSkills = []string{}
	}

	if err := s.repo.Update(ctx, job); err != nil {
		if errors.Is(err, repository.ErrJobNotOpen) {
			return nil, apperror.New(apperror.ErrCodeConflict, "only open jobs can be edited")
		}
		return nil, err
	}

	s.invalidate(ctx, job.ID)
	return job, nil
}

// CancelJob cancels an open or in-progress job. Pending applications are
// rejected with the job in one transaction and their workers notified.
func (s *JobService) CancelJob(ctx context.Context, actorID uuid.UUID, role authz.Role, jobID uuid.UUID) error {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return apperror.ErrJobNotFound
		}
		return err
	}

	if job.ClientID != actorID && !authz.Can(role, authz.ActionViewAllRecords) {
		return apperror.ErrForbidden
	}

	rejectedWorkers, err := s.repo.Cancel(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotCancellable) {
			return apperror.New(apperror.ErrCodeConflict, "only open or in-progress jobs can be cancelled")
		}
		return err
	}

	s.invalidate(ctx, jobID)

	payload := map[string]interface{}{"job_id": jobID, "title": job.Title}
	for _, workerID := range rejectedWorkers {
		notify(s.notifier, workerID, models.EventJobCancelled, payload)
	}

	return nil
}

// CompleteJob moves an in-progress job to completed and notifies the worker.
func (s *JobService) CompleteJob(ctx context.Context, actorID uuid.UUID, role authz.Role, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}

	if job.ClientID != actorID && !authz.Can(role, authz.ActionViewAllRecords) {
		return nil, apperror.ErrForbidden
	}

	if err := s.repo.Complete(ctx, jobID); err != nil {
		if errors.Is(err, repository.ErrJobNotInProgress) {
			return nil, apperror.New(apperror.ErrCodeConflict, "only in-progress jobs can be completed")
		}
		return nil, err
	}

	s.invalidate(ctx, jobID)

	job.Status = models.JobStatusCompleted
	if job.AssignedWorkerID != nil {
		notify(s.notifier, *job.AssignedWorkerID, models.EventJobCompleted, map[string]interface{}{
			"job_id": jobID,
			"title":  job.Title,
			"status": models.JobStatusCompleted,
		})
	}

	return job, nil
}

func (s *JobService) invalidate(ctx context.Context, jobID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.JobKey(jobID)); err != nil && logger.Log != nil {
		logger.Log.WithField("error", err.Error()).Warn("job cache invalidate failed")
	}
}
