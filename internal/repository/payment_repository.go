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
	ErrPaymentNotFound          = errors.New("payment not found")
	ErrInvalidPaymentTransition = errors.New("invalid payment status transition")
	ErrDuplicateProviderRef     = errors.New("provider reference already used")
)

const paymentColumns = `id, job_id, payer_id, payee_id, amount, currency, status, provider_ref,
	description, failure_reason, processed_at, created_at, updated_at`

// PaymentRepository owns the payments table. Status moves run under a row
// lock so a provider callback and a manual update cannot race.
type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("payment repository: get by id %w", err)
	}

	return &payment, nil
}

// GetByProviderRef looks a payment up by the provider's transaction reference.
func (r *PaymentRepository) GetByProviderRef(ctx context.Context, providerRef string) (*models.Payment, error) {
	var payment models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_ref = $1`
	if err := r.db.GetContext(ctx, &payment, query, providerRef); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("payment repository: get by provider ref %w", err)
	}

	return &payment, nil
}

// ListByUser returns payments where the user is payer or payee, newest first.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE payer_id = $1 OR payee_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("payment repository: list by user %w", err)
	}

	return payments, nil
}

// ListByJob returns payments attached to a job.
func (r *PaymentRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE job_id = $1 ORDER BY created_at DESC`

	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, jobID); err != nil {
		return nil, fmt.Errorf("payment repository: list by job %w", err)
	}

	return payments, nil
}

// SetProviderRef stores the provider's reference after a successful
// charge initiation. The partial unique index catches reuse.
func (r *PaymentRepository) SetProviderRef(ctx context.Context, paymentID uuid.UUID, providerRef string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE payments SET provider_ref = $1, updated_at = NOW() WHERE id = $2 AND status = 'pending'`,
		providerRef, paymentID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateProviderRef
		}
		return fmt.Errorf("payment repository: set provider ref %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// UpdateStatus moves a payment through its state machine under FOR UPDATE.
// Illegal moves return ErrInvalidPaymentTransition; repeating the current
// terminal status is reported the same way so callers can decide whether
// the repeat is an idempotent no-op.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, paymentID uuid.UUID, newStatus string, failureReason *string) (*models.Payment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("payment repository: begin update status %w", err)
	}
	defer tx.Rollback()

	var payment models.Payment
	err = tx.GetContext(ctx, &payment,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("payment repository: lock payment %w", err)
	}

	if !models.CanTransitionPayment(payment.Status, newStatus) {
		return &payment, ErrInvalidPaymentTransition
	}

	if err := tx.GetContext(ctx, &payment, `
		UPDATE payments
		SET status = $1, failure_reason = $2, processed_at = NOW(), updated_at = NOW()
		WHERE id = $3
		RETURNING `+paymentColumns, newStatus, failureReason, payment.ID); err != nil {
		return nil, fmt.Errorf("payment repository: update status %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("payment repository: commit update status %w", err)
	}

	return &payment, nil
}
