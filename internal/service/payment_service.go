package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/juajobs/juajobs-backend/internal/authz"
	"github.com/juajobs/juajobs-backend/internal/cache"
	"github.com/juajobs/juajobs-backend/internal/goroutine"
	"github.com/juajobs/juajobs-backend/internal/logger"
	"github.com/juajobs/juajobs-backend/internal/models"
	"github.com/juajobs/juajobs-backend/internal/mpesa"
	"github.com/juajobs/juajobs-backend/internal/pkg/apperror"
	"github.com/juajobs/juajobs-backend/internal/repository"
)

// PaymentRepo is the storage surface PaymentService depends on.
type PaymentRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByProviderRef(ctx context.Context, providerRef string) (*models.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Payment, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Payment, error)
	SetProviderRef(ctx context.Context, paymentID uuid.UUID, providerRef string) error
	UpdateStatus(ctx context.Context, paymentID uuid.UUID, newStatus string, failureReason *string) (*models.Payment, error)
}

// PaymentProvider initiates charges and validates callback signatures.
type PaymentProvider interface {
	STKPush(ctx context.Context, phoneNumber string, amount float64, accountRef, description string) (*mpesa.STKPushResponse, error)
	ValidateSignature(incomingSig string, body []byte) bool
}

// PaymentUserGetter fetches the payer for the charge prompt.
type PaymentUserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// PaymentService covers the payment lifecycle: initiation against the
// provider, the asynchronous callback, and the admin refund path.
type PaymentService struct {
	repo     PaymentRepo
	users    PaymentUserGetter
	provider PaymentProvider
	cache    *cache.Cache
	notifier Notifier
}

func NewPaymentService(repo PaymentRepo, users PaymentUserGetter, provider PaymentProvider, c *cache.Cache, notifier Notifier) *PaymentService {
	return &PaymentService{repo: repo, users: users, provider: provider, cache: c, notifier: notifier}
}

// GetPayment returns a payment. Only payer, payee and admins may see it.
func (s *PaymentService) GetPayment(ctx context.Context, actorID uuid.UUID, role authz.Role, id uuid.UUID) (*models.Payment, error) {
	key := cache.PaymentKey(id)

	if s.cache != nil {
		var cached models.Payment
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return s.authorizeView(actorID, role, &cached)
		}
	}

	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperror.ErrPaymentNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, payment); err != nil && logger.Log != nil {
			logger.Log.WithField("error", err.Error()).Warn("payment cache set failed")
		}
	}

	return s.authorizeView(actorID, role, payment)
}

func (s *PaymentService) authorizeView(actorID uuid.UUID, role authz.Role, payment *models.Payment) (*models.Payment, error) {
	if payment.PayerID == actorID || payment.PayeeID == actorID || authz.Can(role, authz.ActionViewAllRecords) {
		return payment, nil
	}
	return nil, apperror.ErrForbidden
}

// ListMine returns payments where the user is payer or payee.
func (s *PaymentService) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// Initiate starts the provider charge for a pending payment. The provider
// call runs in the background; its result lands through SetProviderRef or
// a failed-status transition, and the final outcome arrives on the callback.
func (s *PaymentService) Initiate(ctx context.Context, actorID uuid.UUID, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperror.ErrPaymentNotFound
		}
		return nil, err
	}

	if payment.PayerID != actorID {
		return nil, apperror.ErrForbidden
	}
	if payment.Status != models.PaymentStatusPending {
		return nil, apperror.New(apperror.ErrCodeConflict, "payment is not pending")
	}
	if payment.ProviderRef != nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "payment already initiated")
	}

	payer, err := s.users.GetByID(ctx, payment.PayerID)
	if err != nil {
		return nil, err
	}
	if payer.PhoneNumber == nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "a phone number is required to pay")
	}

	phone := *payer.PhoneNumber
	amount := payment.Amount
	description := "JuaJobs payment"
	if payment.Description != nil {
		description = *payment.Description
	}

	// The provider round trip runs detached from the request. The HTTP
	// response only confirms the prompt was queued.
	goroutine.SafeGoWithContext(context.WithoutCancel(ctx), func(bgCtx context.Context) {
		resp, err := s.provider.STKPush(bgCtx, phone, amount, payment.ID.String(), description)
		if err != nil {
			reason := err.Error()
			s.failPayment(bgCtx, payment.ID, payment.PayerID, &reason)
			return
		}
		if err := s.repo.SetProviderRef(bgCtx, payment.ID, resp.CheckoutRequestID); err != nil {
			if logger.Log != nil {
				logger.Log.WithFields(map[string]interface{}{
					"payment_id": payment.ID,
					"error":      err.Error(),
				}).Error("cannot store provider reference")
			}
			return
		}
		s.invalidate(bgCtx, payment.ID)
	})

	return payment, nil
}

func (s *PaymentService) failPayment(ctx context.Context, paymentID, payerID uuid.UUID, reason *string) {
	if _, err := s.repo.UpdateStatus(ctx, paymentID, models.PaymentStatusFailed, reason); err != nil {
		if logger.Log != nil {
			logger.Log.WithFields(map[string]interface{}{
				"payment_id": paymentID,
				"error":      err.Error(),
			}).Error("cannot mark payment failed")
		}
		return
	}
	s.invalidate(ctx, paymentID)
	notify(s.notifier, payerID, models.EventPaymentFailed, map[string]interface{}{
		"payment_id": paymentID,
	})
}

// HandleCallback applies the provider's charge result. A repeated callback
// for an already-completed payment is an idempotent no-op; a callback for
// an unknown reference or an illegal transition is a conflict.
func (s *PaymentService) HandleCallback(ctx context.Context, payload mpesa.CallbackPayload) (*models.Payment, error) {
	payment, err := s.repo.GetByProviderRef(ctx, payload.ProviderRef)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperror.New(apperror.ErrCodeConflict, "unknown provider reference")
		}
		return nil, err
	}

	var newStatus string
	var failureReason *string
	switch payload.Status {
	case "completed", "success":
		newStatus = models.PaymentStatusCompleted
	case "failed", "cancelled":
		newStatus = models.PaymentStatusFailed
		if payload.FailureReason != "" {
			failureReason = &payload.FailureReason
		}
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "unknown callback status")
	}

	updated, err := s.repo.UpdateStatus(ctx, payment.ID, newStatus, failureReason)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidPaymentTransition) {
			// The provider retried a callback already applied.
			if updated != nil && updated.Status == newStatus {
				return updated, nil
			}
			return nil, apperror.New(apperror.ErrCodeConflict, "payment cannot transition to "+newStatus)
		}
		return nil, err
	}

	s.invalidate(ctx, updated.ID)

	switch updated.Status {
	case models.PaymentStatusCompleted:
		notify(s.notifier, updated.PayeeID, models.EventPaymentReceived, map[string]interface{}{
			"payment_id": updated.ID,
			"amount":     updated.Amount,
		})
		notify(s.notifier, updated.PayerID, models.EventPaymentSent, map[string]interface{}{
			"payment_id": updated.ID,
			"amount":     updated.Amount,
		})
	case models.PaymentStatusFailed:
		notify(s.notifier, updated.PayerID, models.EventPaymentFailed, map[string]interface{}{
			"payment_id": updated.ID,
		})
	}

	return updated, nil
}

// UpdateStatus moves a payment manually. The payer may mark their own
// pending payment completed (cash settled outside the provider); admins
// may also mark failed or refunded. The repository serializes the move
// against concurrent provider callbacks.
func (s *PaymentService) UpdateStatus(ctx context.Context, actorID uuid.UUID, role authz.Role, paymentID uuid.UUID, newStatus string, failureReason *string) (*models.Payment, error) {
	if _, ok := models.ValidPaymentStatuses[newStatus]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "invalid payment status")
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperror.ErrPaymentNotFound
		}
		return nil, err
	}

	isAdmin := authz.Can(role, authz.ActionViewAllRecords)
	if !isAdmin {
		if payment.PayerID != actorID {
			return nil, apperror.ErrForbidden
		}
		if newStatus != models.PaymentStatusCompleted {
			return nil, apperror.ErrForbidden
		}
	}

	if newStatus != models.PaymentStatusFailed {
		failureReason = nil
	}

	updated, err := s.repo.UpdateStatus(ctx, paymentID, newStatus, failureReason)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidPaymentTransition) {
			return nil, apperror.New(apperror.ErrCodeConflict, "payment cannot transition to "+newStatus)
		}
		return nil, err
	}

	s.invalidate(ctx, updated.ID)

	switch updated.Status {
	case models.PaymentStatusCompleted:
		notify(s.notifier, updated.PayeeID, models.EventPaymentReceived, map[string]interface{}{
			"payment_id": updated.ID,
			"amount":     updated.Amount,
		})
		notify(s.notifier, updated.PayerID, models.EventPaymentSent, map[string]interface{}{
			"payment_id": updated.ID,
			"amount":     updated.Amount,
		})
	case models.PaymentStatusFailed:
		notify(s.notifier, updated.PayerID, models.EventPaymentFailed, map[string]interface{}{
			"payment_id": updated.ID,
		})
	}

	return updated, nil
}

// ValidateCallbackSignature checks the provider's webhook signature.
func (s *PaymentService) ValidateCallbackSignature(signature string, body []byte) bool {
	return s.provider.ValidateSignature(signature, body)
}

// Refund moves a completed payment to refunded, admin only.
func (s *PaymentService) Refund(ctx context.Context, role authz.Role, paymentID uuid.UUID) (*models.Payment, error) {
	if role != authz.RoleAdmin {
		return nil, apperror.ErrForbidden
	}

	updated, err := s.repo.UpdateStatus(ctx, paymentID, models.PaymentStatusRefunded, nil)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperror.ErrPaymentNotFound
		}
		if errors.Is(err, repository.ErrInvalidPaymentTransition) {
			return nil, apperror.New(apperror.ErrCodeConflict, "only completed payments can be refunded")
		}
		return nil, err
	}

	s.invalidate(ctx, updated.ID)

	notify(s.notifier, updated.PayerID, models.EventPaymentReceived, map[string]interface{}{
		"payment_id": updated.ID,
		"amount":     updated.Amount,
		"refund":     true,
	})

	return updated, nil
}

func (s *PaymentService) invalidate(ctx context.Context, paymentID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.PaymentKey(paymentID)); err != nil && logger.Log != nil {
		logger.Log.WithField("error", err.Error()).Warn("payment cache invalidate failed")
	}
}
