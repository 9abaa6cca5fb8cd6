package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/juajobs/juajobs-backend/internal/authz"
	"github.com/juajobs/juajobs-backend/internal/models"
	"github.com/juajobs/juajobs-backend/internal/mpesa"
	"github.com/juajobs/juajobs-backend/internal/pkg/apperror"
	"github.com/juajobs/juajobs-backend/internal/repository"
)

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) GetByProviderRef(ctx context.Context, providerRef string) (*models.Payment, error) {
	args := m.Called(ctx, providerRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Payment, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Payment, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).([]models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) SetProviderRef(ctx context.Context, paymentID uuid.UUID, providerRef string) error {
	args := m.Called(ctx, paymentID, providerRef)
	return args.Error(0)
}

func (m *mockPaymentRepo) UpdateStatus(ctx context.Context, paymentID uuid.UUID, newStatus string, failureReason *string) (*models.Payment, error) {
	args := m.Called(ctx, paymentID, newStatus, failureReason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

type mockPaymentProvider struct {
	mock.Mock
}

func (m *mockPaymentProvider) STKPush(ctx context.Context, phoneNumber string, amount float64, accountRef, description string) (*mpesa.STKPushResponse, error) {
	args := m.Called(ctx, phoneNumber, amount, accountRef, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mpesa.STKPushResponse), args.Error(1)
}

func (m *mockPaymentProvider) ValidateSignature(incomingSig string, body []byte) bool {
	args := m.Called(incomingSig, body)
	return args.Bool(0)
}

type mockUserGetter struct {
	mock.Mock
}

func (m *mockUserGetter) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func pendingPayment() *models.Payment {
	ref := "ws_CO_test_ref"
	return &models.Payment{
		ID:          uuid.New(),
		JobID:       uuid.New(),
		PayerID:     uuid.New(),
		PayeeID:     uuid.New(),
		Amount:      1500,
		Currency:    "KES",
		Status:      models.PaymentStatusPending,
		ProviderRef: &ref,
	}
}

func TestPaymentService_HandleCallback_Completed(t *testing.T) {
	repo := new(mockPaymentRepo)
	notifier := new(mockNotifier)
	svc := NewPaymentService(repo, new(mockUserGetter), new(mockPaymentProvider), nil, notifier)
	ctx := context.Background()

	payment := pendingPayment()
	completed := *payment
	completed.Status = models.PaymentStatusCompleted

	repo.On("GetByProviderRef", ctx, *payment.ProviderRef).Return(payment, nil)
	repo.On("UpdateStatus", ctx, payment.ID, models.PaymentStatusCompleted, (*string)(nil)).Return(&completed, nil)
	notifier.On("BroadcastToUser", payment.PayeeID, models.EventPaymentReceived, mock.Anything).Return(nil)
	notifier.On("BroadcastToUser", payment.PayerID, models.EventPaymentSent, mock.Anything).Return(nil)

	got, err := svc.HandleCallback(ctx, mpesa.CallbackPayload{
		ProviderRef: *payment.ProviderRef,
		Status:      "completed",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.Status)
	notifier.AssertExpectations(t)
}

func TestPaymentService_HandleCallback_DuplicateCompletedIsNoop(t *testing.T) {
	repo := new(mockPaymentRepo)
	notifier := new(mockNotifier)
	svc := NewPaymentService(repo, new(mockUserGetter), new(mockPaymentProvider), nil, notifier)
	ctx := context.Background()

	payment := pendingPayment()
	payment.Status = models.PaymentStatusCompleted

	repo.On("GetByProviderRef", ctx, *payment.ProviderRef).Return(payment, nil)
	repo.On("UpdateStatus", ctx, payment.ID, models.PaymentStatusCompleted, (*string)(nil)).
		Return(payment, repository.ErrInvalidPaymentTransition)

	got, err := svc.HandleCallback(ctx, mpesa.CallbackPayload{
		ProviderRef: *payment.ProviderRef,
		Status:      "completed",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.Status)
	notifier.AssertNotCalled(t, "BroadcastToUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_HandleCallback_UnknownProviderRef(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := NewPaymentService(repo, new(mockUserGetter), new(mockPaymentProvider), nil, nil)
	ctx := context.Background()

	repo.On("GetByProviderRef", ctx, "no-such-ref").Return(nil, repository.ErrPaymentNotFound)

	_, err := svc.HandleCallback(ctx, mpesa.CallbackPayload{ProviderRef: "no-such-ref", Status: "completed"})
	assert.True(t, apperror.IsConflict(err))
}

func TestPaymentService_HandleCallback_UnknownStatus(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := NewPaymentService(repo, new(mockUserGetter), new(mockPaymentProvider), nil, nil)
	ctx := context.Background()

	payment := pendingPayment()
	repo.On("GetByProviderRef", ctx, *payment.ProviderRef).Return(payment, nil)

	_, err := svc.HandleCallback(ctx, mpesa.CallbackPayload{ProviderRef: *payment.ProviderRef, Status: "maybe"})
	assert.True(t, apperror.IsValidation(err))
}

func TestPaymentService_HandleCallback_FailedNotifiesPayer(t *testing.T) {
	repo := new(mockPaymentRepo)
	notifier := new(mockNotifier)
	svc := NewPaymentService(repo, new(mockUserGetter), new(mockPaymentProvider), nil, notifier)
	ctx := context.Background()

	payment := pendingPayment()
	failed := *payment
	failed.Status = models.PaymentStatusFailed
	reason := "insufficient funds"

	repo.On("GetByProviderRef", ctx, *payment.ProviderRef).Return(payment, nil)
	repo.On("UpdateStatus", ctx, payment.ID, models.PaymentStatusFailed, &reason).Return(&failed, nil)
	notifier.On("BroadcastToUser", payment.PayerID, models.EventPaymentFailed, mock.Anything).Return(nil)

	got, err := svc.HandleCallback(ctx, mpesa.CallbackPayload{
		ProviderRef:   *payment.ProviderRef,
		Status:        "failed",
		FailureReason: reason,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, got.Status)
	notifier.AssertExpectations(t)
}

func TestPaymentService_Initiate_OnlyPayer(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := NewPaymentService(repo, new(mockUserGetter), new(mockPaymentProvider), nil, nil)
	ctx := context.Background()

	payment := pendingPayment()
	payment.ProviderRef = nil
	repo.On("GetByID", ctx, payment.ID).Return(payment, nil)

	_, err := svc.Initiate(ctx, uuid.New(), payment.ID)
	assert.True(t, apperror.IsForbidden(err))
}

func TestPaymentService_Initiate_AlreadyInitiated(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := NewPaymentService(repo, new(mockUserGetter), new(mockPaymentProvider), nil, nil)
	ctx := context.Background()

	payment := pendingPayment()
	repo.On("GetByID", ctx, payment.ID).Return(payment, nil)

	_, err := svc.Initiate(ctx, payment.PayerID, payment.ID)
	assert.True(t, apperror.IsConflict(err))
}

func TestPaymentService_Initiate_RequiresPhoneNumber(t *testing.T) {
	repo := new(mockPaymentRepo)
	users := new(mockUserGetter)
	svc := NewPaymentService(repo, users, new(mockPaymentProvider), nil, nil)
	ctx := context.Background()

	payment := pendingPayment()
	payment.ProviderRef = nil
	repo.On("GetByID", ctx, payment.ID).Return(payment, nil)
	users.On("GetByID", ctx, payment.PayerID).Return(&models.User{ID: payment.PayerID}, nil)

	_, err := svc.Initiate(ctx, payment.PayerID, payment.ID)
	assert.True(t, apperror.IsValidation(err))
}

func TestPaymentService_UpdateStatus_PayerMarksCompleted(t *testing.T) {
	repo := new(mockPaymentRepo)
	notifier := new(mockNotifier)
	svc := NewPaymentService(repo, new(mockUserGetter), new(mockPaymentProvider), nil, notifier)
	ctx := context.Background()

	payment := pendingPayment()
	completed := *payment
	completed.Status = models.PaymentStatusCompleted

	repo.On("GetByID", ctx, payment.ID).Return(payment, nil)
	repo.On("UpdateStatus", ctx, payment.ID, models.PaymentStatusCompleted, (*string)(nil)).Return(&completed, nil)
	notifier.On("BroadcastToUser", payment.PayeeID, models.EventPaymentReceived, mock.Anything).Return(nil)
	notifier.On("BroadcastToUser", payment.PayerID, models.EventPaymentSent, mock.Anything).Return(nil)

	got, err := svc.UpdateStatus(ctx, payment.PayerID, authz.RoleClient, payment.ID, models.PaymentStatusCompleted, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.Status)
	notifier.AssertExpectations(t)
}

func TestPaymentService_UpdateStatus_PayerCannotFail(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := NewPaymentService(repo, new(mockUserGetter), new(mockPaymentProvider), nil, nil)
	ctx := context.Background()

	payment := pendingPayment()
	repo.On("GetByID", ctx, payment.ID).Return(payment, nil)

	_, err := svc.UpdateStatus(ctx, payment.PayerID, authz.RoleClient, payment.ID, models.PaymentStatusFailed, nil)
	assert.True(t, apperror.IsForbidden(err))
}

func TestPaymentService_UpdateStatus_PayeeForbidden(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := NewPaymentService(repo, new(mockUserGetter), new(mockPaymentProvider), nil, nil)
	ctx := context.Background()

	payment := pendingPayment()
	repo.On("GetByID", ctx, payment.ID).Return(payment, nil)

	_, err := svc.UpdateStatus(ctx, payment.PayeeID, authz.RoleWorker, payment.ID, models.PaymentStatusCompleted, nil)
	assert.True(t, apperror.IsForbidden(err))
}

func TestPaymentService_UpdateStatus_AdminMarksFailed(t *testing.T) {
	repo := new(mockPaymentRepo)
	notifier := new(mockNotifier)
	svc := NewPaymentService(repo, new(mockUserGetter), new(mockPaymentProvider), nil, notifier)
	ctx := context.Background()

	payment := pendingPayment()
	failed := *payment
	failed.Status = models.PaymentStatusFailed
	reason := "chargeback"

	repo.On("GetByID", ctx, payment.ID).Return(payment, nil)
	repo.On("UpdateStatus", ctx, payment.ID, models.PaymentStatusFailed, &reason).Return(&failed, nil)
	notifier.On("BroadcastToUser", payment.PayerID, models.EventPaymentFailed, mock.Anything).Return(nil)

	got, err := svc.UpdateStatus(ctx, uuid.New(), authz.RoleAdmin, payment.ID, models.PaymentStatusFailed, &reason)

	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, got.Status)
}

func TestPaymentService_UpdateStatus_InvalidStatus(t *testing.T) {
	svc := NewPaymentService(new(mockPaymentRepo), new(mockUserGetter), new(mockPaymentProvider), nil, nil)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, uuid.New(), authz.RoleAdmin, uuid.New(), "settled", nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestPaymentService_UpdateStatus_IllegalTransition(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := NewPaymentService(repo, new(mockUserGetter), new(mockPaymentProvider), nil, nil)
	ctx := context.Background()

	payment := pendingPayment()
	payment.Status = models.PaymentStatusFailed
	repo.On("GetByID", ctx, payment.ID).Return(payment, nil)
	repo.On("UpdateStatus", ctx, payment.ID, models.PaymentStatusCompleted, (*string)(nil)).
		Return(nil, repository.ErrInvalidPaymentTransition)

	_, err := svc.UpdateStatus(ctx, payment.PayerID, authz.RoleClient, payment.ID, models.PaymentStatusCompleted, nil)
	assert.True(t, apperror.IsConflict(err))
}

func TestPaymentService_Refund_AdminOnly(t *testing.T) {
	svc := NewPaymentService(new(mockPaymentRepo), new(mockUserGetter), new(mockPaymentProvider), nil, nil)
	ctx := context.Background()

	_, err := svc.Refund(ctx, authz.RoleClient, uuid.New())
	assert.True(t, apperror.IsForbidden(err))
}

func TestPaymentService_Refund_OnlyCompleted(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := NewPaymentService(repo, new(mockUserGetter), new(mockPaymentProvider), nil, nil)
	ctx := context.Background()

	paymentID := uuid.New()
	repo.On("UpdateStatus", ctx, paymentID, models.PaymentStatusRefunded, (*string)(nil)).
		Return(nil, repository.ErrInvalidPaymentTransition)

	_, err := svc.Refund(ctx, authz.RoleAdmin, paymentID)
	assert.True(t, apperror.IsConflict(err))
}

func TestPaymentService_GetPayment_StrangerForbidden(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := NewPaymentService(repo, new(mockUserGetter), new(mockPaymentProvider), nil, nil)
	ctx := context.Background()

	payment := pendingPayment()
	repo.On("GetByID", ctx, payment.ID).Return(payment, nil)

	_, err := svc.GetPayment(ctx, uuid.New(), authz.RoleWorker, payment.ID)
	assert.True(t, apperror.IsForbidden(err))

	got, err := svc.GetPayment(ctx, payment.PayeeID, authz.RoleWorker, payment.ID)
	assert.NoError(t, err)
	assert.Equal(t, payment.ID, got.ID)
}
