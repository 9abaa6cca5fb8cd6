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
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateCategory = errors.New("category already exists")
)

const categoryColumns = `id, name, description, is_active, created_at, updated_at`

// CategoryRepository owns the job_categories table.
type CategoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, cat *models.JobCategory) error {
	query := `
		INSERT INTO job_categories (name, description)
		VALUES ($1, $2)
		RETURNING id, is_active, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(ctx, query, cat.Name, cat.Description).
		Scan(&cat.ID, &cat.IsActive, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCategory
		}
		return fmt.Errorf("category repository: create %w", err)
	}

	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.JobCategory, error) {
	var cat models.JobCategory
	query := `SELECT ` + categoryColumns + ` FROM job_categories WHERE id = $1`
	if err := r.db.GetContext(ctx, &cat, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("category repository: get by id %w", err)
	}

	return &cat, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.JobCategory, error) {
	query := `SELECT ` + categoryColumns + ` FROM job_categories WHERE is_active = TRUE ORDER BY name`

	var categories []models.JobCategory
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("category repository: list %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, cat *models.JobCategory) error {
	query := `
		UPDATE job_categories
		SET name = $1, description = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + categoryColumns

	if err := r.db.GetContext(ctx, cat, query, cat.Name, cat.Description, cat.IsActive, cat.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCategoryNotFound
		}
		if isUniqueViolation(err) {
			return ErrDuplicateCategory
		}
		return fmt.Errorf("category repository: update %w", err)
	}

	return nil
}

func (r *CategoryRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE job_categories SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("category repository: deactivate %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
