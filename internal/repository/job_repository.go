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
	ErrJobNotFound       = errors.New("job not found")
	ErrJobNotOpen        = errors.New("job is not open")
	ErrJobNotInProgress  = errors.New("job is not in progress")
	ErrJobNotCancellable = errors.New("job cannot be cancelled")
)

const jobColumns = `id, client_id, title, description, category_id, status, budget_min, budget_max,
	is_remote, location_id, required_skills, deadline, assigned_worker_id, applications_count,
	created_at, updated_at`

// JobRepository owns the jobs table.
type JobRepository struct {
	db *sqlx.DB
}

func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (client_id, title, description, category_id, budget_min, budget_max,
			is_remote, location_id, required_skills, deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, status, applications_count, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		job.ClientID, job.Title, job.Description, job.CategoryID,
		job.BudgetMin, job.BudgetMax, job.IsRemote, job.LocationID,
		job.RequiredSkills, job.Deadline,
	).Scan(&job.ID, &job.Status, &job.ApplicationsCount, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return fmt.Errorf("job repository: create %w", err)
	}

	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("job repository: get by id %w", err)
	}

	return &job, nil
}

// List returns jobs matching the filter, newest first.
func (r *JobRepository) List(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argNum)
		args = append(args, filter.Status)
		argNum++
	}
	if filter.CategoryID != nil {
		query += fmt.Sprintf(` AND category_id = $%d`, argNum)
		args = append(args, *filter.CategoryID)
		argNum++
	}
	if filter.LocationID != nil {
		query += fmt.Sprintf(` AND location_id = $%d`, argNum)
		args = append(args, *filter.LocationID)
		argNum++
	}
	if filter.ClientID != nil {
		query += fmt.Sprintf(` AND client_id = $%d`, argNum)
		args = append(args, *filter.ClientID)
		argNum++
	}
	if filter.IsRemote != nil {
		query += fmt.Sprintf(` AND is_remote = $%d`, argNum)
		args = append(args, *filter.IsRemote)
		argNum++
	}
	if filter.BudgetMin != nil {
		query += fmt.Sprintf(` AND budget_max >= $%d`, argNum)
		args = append(args, *filter.BudgetMin)
		argNum++
	}
	if filter.BudgetMax != nil {
		query += fmt.Sprintf(` AND budget_min <= $%d`, argNum)
		args = append(args, *filter.BudgetMax)
		argNum++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(` AND (title ILIKE $%d OR description ILIKE $%d)`, argNum, argNum)
		args = append(args, "%"+filter.Search+"%")
		argNum++
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var jobs []models.Job
	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("job repository: list %w", err)
	}

	return jobs, nil
}

// Update writes the editable fields. Only open jobs may be edited, the
// WHERE clause enforces it.
func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	query := `
		UPDATE jobs
		SET title = $1, description = $2, category_id = $3, budget_min = $4, budget_max = $5,
			is_remote = $6, location_id = $7, required_skills = $8, deadline = $9, updated_at = NOW()
		WHERE id = $10 AND status = 'open'
		RETURNING ` + jobColumns

	if err := r.db.GetContext(ctx, job, query,
		job.Title, job.Description, job.CategoryID, job.BudgetMin, job.BudgetMax,
		job.IsRemote, job.LocationID, job.RequiredSkills, job.Deadline, job.ID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrJobNotOpen
		}
		return fmt.Errorf("job repository: update %w", err)
	}

	return nil
}

// Cancel moves an open or in-progress job to cancelled and rejects its
// pending applications in the same transaction, returning the workers
// whose applications were rejected so callers can notify them.
func (r *JobRepository) Cancel(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("job repository: begin cancel %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE jobs SET status = 'cancelled', updated_at = NOW() WHERE id = $1 AND status IN ('open', 'in_progress')`, id)
	if err != nil {
		return nil, fmt.Errorf("job repository: cancel %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, ErrJobNotCancellable
	}

	var rejectedWorkers []uuid.UUID
	rows, err := tx.QueryContext(ctx, `
		UPDATE job_applications
		SET status = 'rejected', updated_at = NOW()
		WHERE job_id = $1 AND status = 'pending'
		RETURNING worker_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("job repository: cancel reject applications %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var workerID uuid.UUID
		if err := rows.Scan(&workerID); err != nil {
			return nil, fmt.Errorf("job repository: scan rejected worker %w", err)
		}
		rejectedWorkers = append(rejectedWorkers, workerID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("job repository: cancel reject applications rows %w", err)
	}
	rows.Close()

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("job repository: commit cancel %w", err)
	}

	return rejectedWorkers, nil
}

// Complete moves an in-progress job to completed.
func (r *JobRepository) Complete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = 'completed', updated_at = NOW() WHERE id = $1 AND status = 'in_progress'`, id)
	if err != nil {
		return fmt.Errorf("job repository: complete %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrJobNotInProgress
	}
	return nil
}
