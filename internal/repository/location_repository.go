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
	ErrLocationNotFound  = errors.New("location not found")
	ErrDuplicateLocation = errors.New("location already exists")
)

const locationColumns = `id, name, kind, parent_id, country_code, is_active, created_at, updated_at`

// LocationRepository owns the hierarchical locations table.
type LocationRepository struct {
	db *sqlx.DB
}

func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) Create(ctx context.Context, loc *models.Location) error {
	query := `
		INSERT INTO locations (name, kind, parent_id, country_code)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		loc.Name, loc.Kind, loc.ParentID, loc.CountryCode,
	).Scan(&loc.ID, &loc.IsActive, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateLocation
		}
		return fmt.Errorf("location repository: create %w", err)
	}

	return nil
}

func (r *LocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	var loc models.Location
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`
	if err := r.db.GetContext(ctx, &loc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("location repository: get by id %w", err)
	}

	return &loc, nil
}

// List returns active locations filtered by kind and parent. Empty kind
// and nil parent mean no constraint.
func (r *LocationRepository) List(ctx context.Context, kind string, parentID *uuid.UUID, limit, offset int) ([]models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE is_active = TRUE`
	args := []interface{}{}
	argNum := 1

	if kind != "" {
		query += fmt.Sprintf(` AND kind = $%d`, argNum)
		args = append(args, kind)
		argNum++
	}
	if parentID != nil {
		query += fmt.Sprintf(` AND parent_id = $%d`, argNum)
		args = append(args, *parentID)
		argNum++
	}

	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, argNum, argNum+1)
	args = append(args, limit, offset)

	var locations []models.Location
	if err := r.db.SelectContext(ctx, &locations, query, args...); err != nil {
		return nil, fmt.Errorf("location repository: list %w", err)
	}

	return locations, nil
}

// ListAllActive returns every active location, used to build the tree.
func (r *LocationRepository) ListAllActive(ctx context.Context) ([]models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE is_active = TRUE ORDER BY name`

	var locations []models.Location
	if err := r.db.SelectContext(ctx, &locations, query); err != nil {
		return nil, fmt.Errorf("location repository: list all %w", err)
	}

	return locations, nil
}

func (r *LocationRepository) Update(ctx context.Context, loc *models.Location) error {
	query := `
		UPDATE locations
		SET name = $1, country_code = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + locationColumns

	if err := r.db.GetContext(ctx, loc, query, loc.Name, loc.CountryCode, loc.IsActive, loc.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLocationNotFound
		}
		if isUniqueViolation(err) {
			return ErrDuplicateLocation
		}
		return fmt.Errorf("location repository: update %w", err)
	}

	return nil
}

// Deactivate soft-deletes a location. Children cascade through kind queries
// because the tree endpoint only walks active nodes.
func (r *LocationRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE locations SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("location repository: deactivate %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrLocationNotFound
	}
	return nil
}
