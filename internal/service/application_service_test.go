package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/juajobs/juajobs-backend/internal/authz"
	"github.com/juajobs/juajobs-backend/internal/models"
	"github.com/juajobs/juajobs-backend/internal/pkg/apperror"
	"github.com/juajobs/juajobs-backend/internal/repository"
)

type mockApplicationRepo struct {
	mock.Mock
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *models.JobApplication) error {
	args := m.Called(ctx, app)
	if args.Error(0) == nil {
		app.ID = uuid.New()
		app.Status = models.ApplicationStatusPending
	}
	return args.Error(0)
}

func (m *mockApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.JobApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobApplication), args.Error(1)
}

func (m *mockApplicationRepo) ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]models.JobApplication, error) {
	args := m.Called(ctx, jobID, limit, offset)
	return args.Get(0).([]models.JobApplication), args.Error(1)
}

func (m *mockApplicationRepo) ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.JobApplication, error) {
	args := m.Called(ctx, workerID, limit, offset)
	return args.Get(0).([]models.JobApplication), args.Error(1)
}

func (m *mockApplicationRepo) Accept(ctx context.Context, applicationID uuid.UUID, clientMessage *string) (*repository.AcceptResult, error) {
	args := m.Called(ctx, applicationID, clientMessage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.AcceptResult), args.Error(1)
}

func (m *mockApplicationRepo) Reject(ctx context.Context, applicationID uuid.UUID, clientMessage *string) (*models.JobApplication, error) {
	args := m.Called(ctx, applicationID, clientMessage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobApplication), args.Error(1)
}

func (m *mockApplicationRepo) Withdraw(ctx context.Context, applicationID, workerID uuid.UUID) (*models.JobApplication, error) {
	args := m.Called(ctx, applicationID, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobApplication), args.Error(1)
}

type mockJobRepoForApplications struct {
	mock.Mock
}

func (m *mockJobRepoForApplications) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func openJob(clientID uuid.UUID) *models.Job {
	return &models.Job{
		ID:        uuid.New(),
		ClientID:  clientID,
		Status:    models.JobStatusOpen,
		BudgetMin: 500,
		BudgetMax: 1500,
	}
}

func TestApplicationService_Apply_Success(t *testing.T) {
	repo := new(mockApplicationRepo)
	jobs := new(mockJobRepoForApplications)
	notifier := new(mockNotifier)
	svc := NewApplicationService(repo, jobs, nil, notifier)
	ctx := context.Background()

	clientID := uuid.New()
	workerID := uuid.New()
	job := openJob(clientID)

	jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.JobApplication")).Return(nil)
	notifier.On("BroadcastToUser", clientID, models.EventJobApplication, mock.Anything).Return(nil)

	app, err := svc.Apply(ctx, workerID, authz.RoleWorker, &models.JobApplication{
		JobID:       job.ID,
		CoverLetter: "I have done three similar gigs this month.",
	})

	assert.NoError(t, err)
	assert.Equal(t, workerID, app.WorkerID)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	notifier.AssertExpectations(t)
}

func TestApplicationService_Apply_ClientsCannotApply(t *testing.T) {
	svc := NewApplicationService(new(mockApplicationRepo), new(mockJobRepoForApplications), nil, nil)
	ctx := context.Background()

	_, err := svc.Apply(ctx, uuid.New(), authz.RoleClient, &models.JobApplication{
		JobID:       uuid.New(),
		CoverLetter: "hire me",
	})
	assert.True(t, apperror.IsForbidden(err))
}

func TestApplicationService_Apply_OwnJob(t *testing.T) {
	repo := new(mockApplicationRepo)
	jobs := new(mockJobRepoForApplications)
	svc := NewApplicationService(repo, jobs, nil, nil)
	ctx := context.Background()

	workerID := uuid.New()
	job := openJob(workerID)
	jobs.On("GetByID", ctx, job.ID).Return(job, nil)

	_, err := svc.Apply(ctx, workerID, authz.RoleWorker, &models.JobApplication{
		JobID:       job.ID,
		CoverLetter: "hire me",
	})
	assert.True(t, apperror.IsForbidden(err))
}

func TestApplicationService_Apply_JobNotOpen(t *testing.T) {
	repo := new(mockApplicationRepo)
	jobs := new(mockJobRepoForApplications)
	svc := NewApplicationService(repo, jobs, nil, nil)
	ctx := context.Background()

	job := openJob(uuid.New())
	job.Status = models.JobStatusInProgress
	jobs.On("GetByID", ctx, job.ID).Return(job, nil)

	_, err := svc.Apply(ctx, uuid.New(), authz.RoleWorker, &models.JobApplication{
		JobID:       job.ID,
		CoverLetter: "hire me",
	})
	assert.True(t, apperror.IsConflict(err))
}

func TestApplicationService_Apply_DuplicateLiveApplication(t *testing.T) {
	repo := new(mockApplicationRepo)
	jobs := new(mockJobRepoForApplications)
	svc := NewApplicationService(repo, jobs, nil, nil)
	ctx := context.Background()

	job := openJob(uuid.New())
	jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.JobApplication")).Return(repository.ErrDuplicateApplication)

	_, err := svc.Apply(ctx, uuid.New(), authz.RoleWorker, &models.JobApplication{
		JobID:       job.ID,
		CoverLetter: "hire me",
	})
	assert.True(t, apperror.IsConflict(err))
}

func TestApplicationService_Accept_NotifiesAllParties(t *testing.T) {
	repo := new(mockApplicationRepo)
	jobs := new(mockJobRepoForApplications)
	notifier := new(mockNotifier)
	svc := NewApplicationService(repo, jobs, nil, notifier)
	ctx := context.Background()

	clientID := uuid.New()
	acceptedWorker := uuid.New()
	rejectedWorker := uuid.New()
	job := openJob(clientID)

	app := &models.JobApplication{
		ID:       uuid.New(),
		JobID:    job.ID,
		WorkerID: acceptedWorker,
		Status:   models.ApplicationStatusPending,
	}

	assignedJob := *job
	assignedJob.Status = models.JobStatusInProgress
	assignedJob.AssignedWorkerID = &acceptedWorker

	result := &repository.AcceptResult{
		Application: &models.JobApplication{
			ID:       app.ID,
			JobID:    job.ID,
			WorkerID: acceptedWorker,
			Status:   models.ApplicationStatusAccepted,
		},
		Job: &assignedJob,
		Payment: &models.Payment{
			ID:      uuid.New(),
			JobID:   job.ID,
			PayerID: clientID,
			PayeeID: acceptedWorker,
			Amount:  1500,
			Status:  models.PaymentStatusPending,
		},
		RejectedWorkers: []uuid.UUID{rejectedWorker},
	}

	repo.On("GetByID", ctx, app.ID).Return(app, nil)
	jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	repo.On("Accept", ctx, app.ID, (*string)(nil)).Return(result, nil)
	notifier.On("BroadcastToUser", acceptedWorker, models.EventApplicationAccepted, mock.Anything).Return(nil)
	notifier.On("BroadcastToUser", rejectedWorker, models.EventApplicationRejected, mock.Anything).Return(nil)

	got, err := svc.Accept(ctx, clientID, authz.RoleClient, app.ID, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, got.Application.Status)
	assert.Equal(t, models.JobStatusInProgress, got.Job.Status)
	assert.Equal(t, models.PaymentStatusPending, got.Payment.Status)
	notifier.AssertExpectations(t)
}

func TestApplicationService_Accept_NotJobOwner(t *testing.T) {
	repo := new(mockApplicationRepo)
	jobs := new(mockJobRepoForApplications)
	svc := NewApplicationService(repo, jobs, nil, nil)
	ctx := context.Background()

	job := openJob(uuid.New())
	app := &models.JobApplication{ID: uuid.New(), JobID: job.ID, WorkerID: uuid.New()}

	repo.On("GetByID", ctx, app.ID).Return(app, nil)
	jobs.On("GetByID", ctx, job.ID).Return(job, nil)

	_, err := svc.Accept(ctx, uuid.New(), authz.RoleClient, app.ID, nil)
	assert.True(t, apperror.IsForbidden(err))
}

func TestApplicationService_Accept_WorkersCannotRespond(t *testing.T) {
	svc := NewApplicationService(new(mockApplicationRepo), new(mockJobRepoForApplications), nil, nil)
	ctx := context.Background()

	_, err := svc.Accept(ctx, uuid.New(), authz.RoleWorker, uuid.New(), nil)
	assert.True(t, apperror.IsForbidden(err))
}

func TestApplicationService_Accept_RaceLostToJobClose(t *testing.T) {
	repo := new(mockApplicationRepo)
	jobs := new(mockJobRepoForApplications)
	svc := NewApplicationService(repo, jobs, nil, nil)
	ctx := context.Background()

	clientID := uuid.New()
	job := openJob(clientID)
	app := &models.JobApplication{ID: uuid.New(), JobID: job.ID, WorkerID: uuid.New()}

	repo.On("GetByID", ctx, app.ID).Return(app, nil)
	jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	repo.On("Accept", ctx, app.ID, (*string)(nil)).Return(nil, repository.ErrJobNotOpen)

	_, err := svc.Accept(ctx, clientID, authz.RoleClient, app.ID, nil)
	assert.True(t, apperror.IsConflict(err))
}

func TestApplicationService_Withdraw_OnlyPending(t *testing.T) {
	repo := new(mockApplicationRepo)
	jobs := new(mockJobRepoForApplications)
	svc := NewApplicationService(repo, jobs, nil, nil)
	ctx := context.Background()

	workerID := uuid.New()
	appID := uuid.New()
	repo.On("Withdraw", ctx, appID, workerID).Return(nil, repository.ErrApplicationNotPending)

	_, err := svc.Withdraw(ctx, workerID, appID)
	assert.True(t, apperror.IsConflict(err))
}

func TestApplicationService_Withdraw_NotifiesClient(t *testing.T) {
	repo := new(mockApplicationRepo)
	jobs := new(mockJobRepoForApplications)
	notifier := new(mockNotifier)
	svc := NewApplicationService(repo, jobs, nil, notifier)
	ctx := context.Background()

	clientID := uuid.New()
	workerID := uuid.New()
	job := openJob(clientID)
	withdrawn := &models.JobApplication{
		ID:       uuid.New(),
		JobID:    job.ID,
		WorkerID: workerID,
		Status:   models.ApplicationStatusWithdrawn,
	}

	repo.On("Withdraw", ctx, withdrawn.ID, workerID).Return(withdrawn, nil)
	jobs.On("GetByID", ctx, job.ID).Return(job, nil)
	notifier.On("BroadcastToUser", clientID, models.EventApplicationWithdrawn, mock.Anything).Return(nil)

	got, err := svc.Withdraw(ctx, workerID, withdrawn.ID)

	assert.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusWithdrawn, got.Status)
	notifier.AssertExpectations(t)
}
