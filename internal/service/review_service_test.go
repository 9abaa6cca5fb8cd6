package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/juajobs/juajobs-backend/internal/models"
	"github.com/juajobs/juajobs-backend/internal/pkg/apperror"
	"github.com/juajobs/juajobs-backend/internal/repository"
)

// mockNotifier is shared by the service tests in this package.
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	args := m.Called(userID, event, data)
	return args.Error(0)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	if args.Error(0) == nil {
		review.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Review, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *mockReviewRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Review, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *mockReviewRepo) SetResponse(ctx context.Context, reviewID uuid.UUID, response string) (*models.Review, error) {
	args := m.Called(ctx, reviewID, response)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) GetStats(ctx context.Context, userID uuid.UUID) (*models.ReviewStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewStats), args.Error(1)
}

type mockJobRepoForReview struct {
	mock.Mock
}

func (m *mockJobRepoForReview) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func completedJob(clientID, workerID uuid.UUID) *models.Job {
	return &models.Job{
		ID:               uuid.New(),
		ClientID:         clientID,
		AssignedWorkerID: &workerID,
		Status:           models.JobStatusCompleted,
	}
}

func TestReviewService_CreateReview_ClientReviewsWorker(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	jobRepo := new(mockJobRepoForReview)
	notifier := new(mockNotifier)
	svc := NewReviewService(reviewRepo, jobRepo, notifier)
	ctx := context.Background()

	clientID := uuid.New()
	workerID := uuid.New()
	job := completedJob(clientID, workerID)

	jobRepo.On("GetByID", ctx, job.ID).Return(job, nil)
	reviewRepo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(nil)
	notifier.On("BroadcastToUser", workerID, models.EventReviewReceived, mock.Anything).Return(nil)

	comment := "reliable and fast"
	review, err := svc.CreateReview(ctx, clientID, job.ID, 5, &comment)

	assert.NoError(t, err)
	assert.NotNil(t, review)
	assert.Equal(t, workerID, review.ReviewedID)
	assert.Equal(t, clientID, review.ReviewerID)
	assert.Equal(t, 5, review.Rating)
	notifier.AssertExpectations(t)
}

func TestReviewService_CreateReview_WorkerReviewsClient(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	jobRepo := new(mockJobRepoForReview)
	svc := NewReviewService(reviewRepo, jobRepo, nil)
	ctx := context.Background()

	clientID := uuid.New()
	workerID := uuid.New()
	job := completedJob(clientID, workerID)

	jobRepo.On("GetByID", ctx, job.ID).Return(job, nil)
	reviewRepo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(nil)

	review, err := svc.CreateReview(ctx, workerID, job.ID, 4, nil)

	assert.NoError(t, err)
	assert.Equal(t, clientID, review.ReviewedID)
}

func TestReviewService_CreateReview_InvalidRating(t *testing.T) {
	svc := NewReviewService(new(mockReviewRepo), new(mockJobRepoForReview), nil)
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, uuid.New(), uuid.New(), 0, nil)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.CreateReview(ctx, uuid.New(), uuid.New(), 6, nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestReviewService_CreateReview_JobNotCompleted(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	jobRepo := new(mockJobRepoForReview)
	svc := NewReviewService(reviewRepo, jobRepo, nil)
	ctx := context.Background()

	clientID := uuid.New()
	workerID := uuid.New()
	job := completedJob(clientID, workerID)
	job.Status = models.JobStatusInProgress

	jobRepo.On("GetByID", ctx, job.ID).Return(job, nil)

	_, err := svc.CreateReview(ctx, clientID, job.ID, 5, nil)
	assert.True(t, apperror.IsConflict(err))
}

func TestReviewService_CreateReview_NonParticipant(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	jobRepo := new(mockJobRepoForReview)
	svc := NewReviewService(reviewRepo, jobRepo, nil)
	ctx := context.Background()

	job := completedJob(uuid.New(), uuid.New())
	jobRepo.On("GetByID", ctx, job.ID).Return(job, nil)

	_, err := svc.CreateReview(ctx, uuid.New(), job.ID, 3, nil)
	assert.True(t, apperror.IsForbidden(err))
}

func TestReviewService_CreateReview_Duplicate(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	jobRepo := new(mockJobRepoForReview)
	svc := NewReviewService(reviewRepo, jobRepo, nil)
	ctx := context.Background()

	clientID := uuid.New()
	job := completedJob(clientID, uuid.New())

	jobRepo.On("GetByID", ctx, job.ID).Return(job, nil)
	reviewRepo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(repository.ErrDuplicateReview)

	_, err := svc.CreateReview(ctx, clientID, job.ID, 5, nil)
	assert.True(t, apperror.IsConflict(err))
}

func TestReviewService_Respond_SubjectOnly(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	svc := NewReviewService(reviewRepo, new(mockJobRepoForReview), nil)
	ctx := context.Background()

	reviewedID := uuid.New()
	review := &models.Review{
		ID:         uuid.New(),
		ReviewerID: uuid.New(),
		ReviewedID: reviewedID,
		Rating:     2,
	}
	reviewRepo.On("GetByID", ctx, review.ID).Return(review, nil)

	_, err := svc.Respond(ctx, uuid.New(), review.ID, "that is unfair")
	assert.True(t, apperror.IsForbidden(err))
}

func TestReviewService_Respond_OnlyOnce(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	svc := NewReviewService(reviewRepo, new(mockJobRepoForReview), nil)
	ctx := context.Background()

	reviewedID := uuid.New()
	review := &models.Review{
		ID:         uuid.New(),
		ReviewerID: uuid.New(),
		ReviewedID: reviewedID,
		Rating:     2,
	}
	reviewRepo.On("GetByID", ctx, review.ID).Return(review, nil)
	reviewRepo.On("SetResponse", ctx, review.ID, "context matters").Return(nil, repository.ErrResponseExists)

	_, err := svc.Respond(ctx, reviewedID, review.ID, "context matters")
	assert.True(t, apperror.IsConflict(err))
}

func TestReviewService_Respond_NotifiesReviewer(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	notifier := new(mockNotifier)
	svc := NewReviewService(reviewRepo, new(mockJobRepoForReview), notifier)
	ctx := context.Background()

	reviewerID := uuid.New()
	reviewedID := uuid.New()
	review := &models.Review{
		ID:         uuid.New(),
		ReviewerID: reviewerID,
		ReviewedID: reviewedID,
		Rating:     2,
	}
	response := "we talked it through"
	updated := *review
	updated.Response = &response

	reviewRepo.On("GetByID", ctx, review.ID).Return(review, nil)
	reviewRepo.On("SetResponse", ctx, review.ID, response).Return(&updated, nil)
	notifier.On("BroadcastToUser", reviewerID, models.EventReviewResponse, mock.Anything).Return(nil)

	got, err := svc.Respond(ctx, reviewedID, review.ID, response)

	assert.NoError(t, err)
	assert.Equal(t, &response, got.Response)
	notifier.AssertExpectations(t)
}
