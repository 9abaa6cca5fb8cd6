package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment records a money movement from a client to a worker for a job.
// ProviderRef is the payment provider's transaction reference and is set
// once the provider acknowledges the charge.
type Payment struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	JobID         uuid.UUID  `db:"job_id" json:"job_id"`
	PayerID       uuid.UUID  `db:"payer_id" json:"payer_id"`
	PayeeID       uuid.UUID  `db:"payee_id" json:"payee_id"`
	Amount        float64    `db:"amount" json:"amount"`
	Currency      string     `db:"currency" json:"currency"`
	Status        string     `db:"status" json:"status"`
	ProviderRef   *string    `db:"provider_ref" json:"provider_ref,omitempty"`
	Description   *string    `db:"description" json:"description,omitempty"`
	FailureReason *string    `db:"failure_reason" json:"failure_reason,omitempty"`
	ProcessedAt   *time.Time `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
