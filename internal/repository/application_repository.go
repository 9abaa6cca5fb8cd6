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
	ErrApplicationNotFound   = errors.New("application not found")
	ErrDuplicateApplication  = errors.New("application already exists")
	ErrApplicationNotPending = errors.New("application is not pending")
)

const applicationColumns = `id, job_id, worker_id, status, cover_letter, proposed_rate,
	client_message, created_at, updated_at`

// ApplicationRepository owns the job_applications table. Accepting an
// application is the contended path and runs fully inside one transaction.
type ApplicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a pending application and bumps the job's counter in one
// transaction. The partial unique index rejects a second live application
// from the same worker.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.JobApplication) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("application repository: begin create %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO job_applications (job_id, worker_id, cover_letter, proposed_rate)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at, updated_at
	`
	if err := tx.QueryRowxContext(
		ctx, query,
		app.JobID, app.WorkerID, app.CoverLetter, app.ProposedRate,
	).Scan(&app.ID, &app.Status, &app.CreatedAt, &app.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateApplication
		}
		return fmt.Errorf("application repository: create %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE jobs SET applications_count = applications_count + 1, updated_at = NOW() WHERE id = $1`,
		app.JobID); err != nil {
		return fmt.Errorf("application repository: bump counter %w", err)
	}

	return tx.Commit()
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.JobApplication, error) {
	var app models.JobApplication
	query := `SELECT ` + applicationColumns + ` FROM job_applications WHERE id = $1`
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("application repository: get by id %w", err)
	}

	return &app, nil
}

// ListByJob returns all applications on a job, newest first.
func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]models.JobApplication, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM job_applications
		WHERE job_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var apps []models.JobApplication
	if err := r.db.SelectContext(ctx, &apps, query, jobID, limit, offset); err != nil {
		return nil, fmt.Errorf("application repository: list by job %w", err)
	}

	return apps, nil
}

// ListByWorker returns a worker's own applications, newest first.
func (r *ApplicationRepository) ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.JobApplication, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM job_applications
		WHERE worker_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var apps []models.JobApplication
	if err := r.db.SelectContext(ctx, &apps, query, workerID, limit, offset); err != nil {
		return nil, fmt.Errorf("application repository: list by worker %w", err)
	}

	return apps, nil
}

// AcceptResult is everything the accept transaction changed, so the
// service can notify every affected party after commit.
type AcceptResult struct {
	Application     *models.JobApplication
	Job             *models.Job
	Payment         *models.Payment
	RejectedWorkers []uuid.UUID
}

// Accept accepts one pending application atomically: the job row is locked
// first so two concurrent accepts serialize, sibling pending applications
// are rejected, the job moves to in_progress with the worker assigned, and
// a pending payment from client to worker is created. Amount falls back to
// the job's budget_max when the worker proposed no rate.
func (r *ApplicationRepository) Accept(ctx context.Context, applicationID uuid.UUID, clientMessage *string) (*AcceptResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("application repository: begin accept %w", err)
	}
	defer tx.Rollback()

	var app models.JobApplication
	err = tx.GetContext(ctx, &app,
		`SELECT `+applicationColumns+` FROM job_applications WHERE id = $1 FOR UPDATE`, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("application repository: accept lock application %w", err)
	}
	if app.Status != models.ApplicationStatusPending {
		return nil, ErrApplicationNotPending
	}

	var job models.Job
	err = tx.GetContext(ctx, &job,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, app.JobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("application repository: accept lock job %w", err)
	}
	if job.Status != models.JobStatusOpen {
		return nil, ErrJobNotOpen
	}

	if err := tx.GetContext(ctx, &app, `
		UPDATE job_applications
		SET status = 'accepted', client_message = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+applicationColumns, clientMessage, app.ID); err != nil {
		return nil, fmt.Errorf("application repository: accept update %w", err)
	}

	var rejectedWorkers []uuid.UUID
	rows, err := tx.QueryContext(ctx, `
		UPDATE job_applications
		SET status = 'rejected', updated_at = NOW()
		WHERE job_id = $1 AND id <> $2 AND status = 'pending'
		RETURNING worker_id
	`, job.ID, app.ID)
	if err != nil {
		return nil, fmt.Errorf("application repository: reject siblings %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var workerID uuid.UUID
		if err := rows.Scan(&workerID); err != nil {
			return nil, fmt.Errorf("application repository: scan rejected worker %w", err)
		}
		rejectedWorkers = append(rejectedWorkers, workerID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("application repository: reject siblings rows %w", err)
	}
	rows.Close()

	if err := tx.GetContext(ctx, &job, `
		UPDATE jobs
		SET status = 'in_progress', assigned_worker_id = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+jobColumns, app.WorkerID, job.ID); err != nil {
		return nil, fmt.Errorf("application repository: assign worker %w", err)
	}

	amount := job.BudgetMax
	if app.ProposedRate != nil {
		amount = *app.ProposedRate
	}

	var payment models.Payment
	if err := tx.GetContext(ctx, &payment, `
		INSERT INTO payments (job_id, payer_id, payee_id, amount, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, job_id, payer_id, payee_id, amount, currency, status, provider_ref,
			description, failure_reason, processed_at, created_at, updated_at
	`, job.ID, job.ClientID, app.WorkerID, amount, "payment for job "+job.Title); err != nil {
		return nil, fmt.Errorf("application repository: create payment %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("application repository: commit accept %w", err)
	}

	return &AcceptResult{
		Application:     &app,
		Job:             &job,
		Payment:         &payment,
		RejectedWorkers: rejectedWorkers,
	}, nil
}

// Reject marks a pending application rejected with an optional message.
func (r *ApplicationRepository) Reject(ctx context.Context, applicationID uuid.UUID, clientMessage *string) (*models.JobApplication, error) {
	var app models.JobApplication
	query := `
		UPDATE job_applications
		SET status = 'rejected', client_message = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending'
		RETURNING ` + applicationColumns

	if err := r.db.GetContext(ctx, &app, query, clientMessage, applicationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotPending
		}
		return nil, fmt.Errorf("application repository: reject %w", err)
	}

	return &app, nil
}

// Withdraw lets the worker pull a pending application. A withdrawn
// application frees the partial unique slot so the worker may re-apply.
func (r *ApplicationRepository) Withdraw(ctx context.Context, applicationID, workerID uuid.UUID) (*models.JobApplication, error) {
	var app models.JobApplication
	query := `
		UPDATE job_applications
		SET status = 'withdrawn', updated_at = NOW()
		WHERE id = $1 AND worker_id = $2 AND status = 'pending'
		RETURNING ` + applicationColumns

	if err := r.db.GetContext(ctx, &app, query, applicationID, workerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotPending
		}
		return nil, fmt.Errorf("application repository: withdraw %w", err)
	}

	return &app, nil
}
