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

// ApplicationRepo is the storage surface ApplicationService depends on.
type ApplicationRepo interface {
	Create(ctx context.Context, app *models.JobApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.JobApplication, error)
	ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]models.JobApplication, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.JobApplication, error)
	Accept(ctx context.Context, applicationID uuid.UUID, clientMessage *string) (*repository.AcceptResult, error)
	Reject(ctx context.Context, applicationID uuid.UUID, clientMessage *string) (*models.JobApplication, error)
	Withdraw(ctx context.Context, applicationID, workerID uuid.UUID) (*models.JobApplication, error)
}

// ApplicationJobRepo is the job surface ApplicationService depends on.
type ApplicationJobRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// ApplicationService covers worker bids and the client's responses.
// Accepting is the contended operation; the repository serializes it and
// this layer handles authorization and fan-out.
type ApplicationService struct {
	repo     ApplicationRepo
	jobs     ApplicationJobRepo
	cache    *cache.Cache
	notifier Notifier
}

func NewApplicationService(repo ApplicationRepo, jobs ApplicationJobRepo, c *cache.Cache, notifier Notifier) *ApplicationService {
	return &ApplicationService{repo: repo, jobs: jobs, cache: c, notifier: notifier}
}

// Apply submits a worker's application to an open job. Clients cannot
// apply, and a worker cannot bid on their own posting.
func (s *ApplicationService) Apply(ctx context.Context, workerID uuid.UUID, role authz.Role, app *models.JobApplication) (*models.JobApplication, error) {
	if !authz.Can(role, authz.ActionApplyToJob) {
		return nil, apperror.ErrForbidden
	}
	if app.CoverLetter == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "cover letter is required")
	}
	if app.ProposedRate != nil && *app.ProposedRate <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "proposed rate must be positive")
	}

	job, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}
	if job.Status != models.JobStatusOpen {
		return nil, apperror.New(apperror.ErrCodeConflict, "job is not open for applications")
	}
	if job.ClientID == workerID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "cannot apply to your own job")
	}

	app.WorkerID = workerID
	if err := s.repo.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicateApplication) {
			return nil, apperror.New(apperror.ErrCodeConflict, "you already have a live application on this job")
		}
		return nil, err
	}

	s.invalidateJob(ctx, job.ID)

	notify(s.notifier, job.ClientID, models.EventJobApplication, map[string]interface{}{
		"job_id":         job.ID,
		"application_id": app.ID,
		"worker_id":      workerID,
	})

	return app, nil
}

// GetApplication returns one application. Only the worker, the job owner
// and admins may see it.
func (s *ApplicationService) GetApplication(ctx context.Context, actorID uuid.UUID, role authz.Role, id uuid.UUID) (*models.JobApplication, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, apperror.ErrApplicationNotFound
		}
		return nil, err
	}

	if app.WorkerID == actorID || authz.Can(role, authz.ActionViewAllRecords) {
		return app, nil
	}

	job, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID != actorID {
		return nil, apperror.ErrForbidden
	}

	return app, nil
}

// ListByJob returns a job's applications for its owner or an admin.
func (s *ApplicationService) ListByJob(ctx context.Context, actorID uuid.UUID, role authz.Role, jobID uuid.UUID, limit, offset int) ([]models.JobApplication, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}
	if job.ClientID != actorID && !authz.Can(role, authz.ActionViewAllRecords) {
		return nil, apperror.ErrForbidden
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListByJob(ctx, jobID, limit, offset)
}

// ListMine returns the worker's own applications.
func (s *ApplicationService) ListMine(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.JobApplication, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListByWorker(ctx, workerID, limit, offset)
}

// Accept accepts an application on behalf of the job owner. The worker is
// assigned, sibling pending applications are rejected, a pending payment
// is created, and every affected party is notified after commit.
func (s *ApplicationService) Accept(ctx context.Context, actorID uuid.UUID, role authz.Role, applicationID uuid.UUID, clientMessage *string) (*repository.AcceptResult, error) {
	if !authz.Can(role, authz.ActionRespondApplication) {
		return nil, apperror.ErrForbidden
	}

	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, apperror.ErrApplicationNotFound
		}
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID != actorID && role != authz.RoleAdmin {
		return nil, apperror.ErrForbidden
	}

	result, err := s.repo.Accept(ctx, applicationID, clientMessage)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrApplicationNotFound):
			return nil, apperror.ErrApplicationNotFound
		case errors.Is(err, repository.ErrApplicationNotPending):
			return nil, apperror.New(apperror.ErrCodeConflict, "application is not pending")
		case errors.Is(err, repository.ErrJobNotOpen):
			return nil, apperror.New(apperror.ErrCodeConflict, "job is no longer open")
		}
		return nil, err
	}

	s.invalidateJob(ctx, result.Job.ID)
	s.invalidatePayment(ctx, result.Payment.ID)

	notify(s.notifier, result.Application.WorkerID, models.EventApplicationAccepted, map[string]interface{}{
		"job_id":         result.Job.ID,
		"application_id": result.Application.ID,
		"payment_id":     result.Payment.ID,
	})
	for _, workerID := range result.RejectedWorkers {
		notify(s.notifier, workerID, models.EventApplicationRejected, map[string]interface{}{
			"job_id": result.Job.ID,
		})
	}

	return result, nil
}

// Reject declines a pending application on behalf of the job owner.
func (s *ApplicationService) Reject(ctx context.Context, actorID uuid.UUID, role authz.Role, applicationID uuid.UUID, clientMessage *string) (*models.JobApplication, error) {
	if !authz.Can(role, authz.ActionRespondApplication) {
		return nil, apperror.ErrForbidden
	}

	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, apperror.ErrApplicationNotFound
		}
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID != actorID && role != authz.RoleAdmin {
		return nil, apperror.ErrForbidden
	}

	rejected, err := s.repo.Reject(ctx, applicationID, clientMessage)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotPending) {
			return nil, apperror.New(apperror.ErrCodeConflict, "application is not pending")
		}
		return nil, err
	}

	notify(s.notifier, rejected.WorkerID, models.EventApplicationRejected, map[string]interface{}{
		"job_id":         rejected.JobID,
		"application_id": rejected.ID,
	})

	return rejected, nil
}

// Withdraw pulls the worker's own pending application. Re-applying later
// is allowed.
func (s *ApplicationService) Withdraw(ctx context.Context, workerID uuid.UUID, applicationID uuid.UUID) (*models.JobApplication, error) {
	app, err := s.repo.Withdraw(ctx, applicationID, workerID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotPending) {
			return nil, apperror.New(apperror.ErrCodeConflict, "only pending applications can be withdrawn")
		}
		return nil, err
	}

	if job, err := s.jobs.GetByID(ctx, app.JobID); err == nil {
		notify(s.notifier, job.ClientID, models.EventApplicationWithdrawn, map[string]interface{}{
			"job_id":         app.JobID,
			"application_id": app.ID,
		})
	}

	return app, nil
}

func (s *ApplicationService) invalidateJob(ctx context.Context, jobID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.JobKey(jobID)); err != nil && logger.Log != nil {
		logger.Log.WithField("error", err.Error()).Warn("job cache invalidate failed")
	}
}

func (s *ApplicationService) invalidatePayment(ctx context.Context, paymentID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.PaymentKey(paymentID)); err != nil && logger.Log != nil {
		logger.Log.WithField("error", err.Error()).Warn("payment cache invalidate failed")
	}
}
