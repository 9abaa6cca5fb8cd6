package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/juajobs/juajobs-backend/internal/models"
)

func newPaymentRepoWithMock(t *testing.T) (*PaymentRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPaymentRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func paymentRows(p *models.Payment) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "job_id", "payer_id", "payee_id", "amount", "currency", "status",
		"provider_ref", "description", "failure_reason", "processed_at", "created_at", "updated_at",
	}).AddRow(
		p.ID.String(), p.JobID.String(), p.PayerID.String(), p.PayeeID.String(),
		p.Amount, p.Currency, p.Status,
		nil, nil, nil, nil, p.CreatedAt, p.UpdatedAt,
	)
}

func storedPayment(status string) *models.Payment {
	now := time.Now()
	return &models.Payment{
		ID:        uuid.New(),
		JobID:     uuid.New(),
		PayerID:   uuid.New(),
		PayeeID:   uuid.New(),
		Amount:    2500,
		Currency:  "KES",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPaymentRepository_GetByID(t *testing.T) {
	repo, mock := newPaymentRepoWithMock(t)
	ctx := context.Background()

	payment := storedPayment(models.PaymentStatusPending)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM payments WHERE id = $1`)).
		WithArgs(payment.ID).
		WillReturnRows(paymentRows(payment))

	got, err := repo.GetByID(ctx, payment.ID)

	assert.NoError(t, err)
	assert.Equal(t, payment.ID, got.ID)
	assert.Equal(t, models.PaymentStatusPending, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newPaymentRepoWithMock(t)
	ctx := context.Background()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM payments WHERE id = $1`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestPaymentRepository_GetByProviderRef_NotFound(t *testing.T) {
	repo, mock := newPaymentRepoWithMock(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM payments WHERE provider_ref = $1`)).
		WithArgs("ghost-ref").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByProviderRef(ctx, "ghost-ref")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestPaymentRepository_SetProviderRef_OnlyPending(t *testing.T) {
	repo, mock := newPaymentRepoWithMock(t)
	ctx := context.Background()

	// The UPDATE is guarded by status = 'pending'; zero rows means the
	// payment is missing or already past pending.
	paymentID := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE payments SET provider_ref = $1`)).
		WithArgs("ws_CO_ref", paymentID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetProviderRef(ctx, paymentID, "ws_CO_ref")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestPaymentRepository_UpdateStatus_Completes(t *testing.T) {
	repo, mock := newPaymentRepoWithMock(t)
	ctx := context.Background()

	payment := storedPayment(models.PaymentStatusPending)
	completed := *payment
	completed.Status = models.PaymentStatusCompleted

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM payments WHERE id = $1 FOR UPDATE`)).
		WithArgs(payment.ID).
		WillReturnRows(paymentRows(payment))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE payments`)).
		WithArgs(models.PaymentStatusCompleted, nil, payment.ID).
		WillReturnRows(paymentRows(&completed))
	mock.ExpectCommit()

	got, err := repo.UpdateStatus(ctx, payment.ID, models.PaymentStatusCompleted, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_UpdateStatus_IllegalTransition(t *testing.T) {
	repo, mock := newPaymentRepoWithMock(t)
	ctx := context.Background()

	// A completed payment cannot go back to pending. The row comes back
	// with the error so callers can detect idempotent repeats.
	payment := storedPayment(models.PaymentStatusCompleted)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM payments WHERE id = $1 FOR UPDATE`)).
		WithArgs(payment.ID).
		WillReturnRows(paymentRows(payment))
	mock.ExpectRollback()

	got, err := repo.UpdateStatus(ctx, payment.ID, models.PaymentStatusPending, nil)

	assert.ErrorIs(t, err, ErrInvalidPaymentTransition)
	assert.Equal(t, models.PaymentStatusCompleted, got.Status)
}

func TestPaymentRepository_UpdateStatus_NotFound(t *testing.T) {
	repo, mock := newPaymentRepoWithMock(t)
	ctx := context.Background()

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM payments WHERE id = $1 FOR UPDATE`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.UpdateStatus(ctx, id, models.PaymentStatusCompleted, nil)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}
