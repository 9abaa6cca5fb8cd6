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
	ErrSkillNotFound     = errors.New("skill not found")
	ErrDuplicateSkill    = errors.New("skill already exists")
	ErrUserSkillNotFound = errors.New("user skill not found")
	ErrDuplicateUserSkill = errors.New("user skill already exists")
)

const skillColumns = `id, name, description, category, is_active, created_at, updated_at`

// SkillRepository owns the skills catalog and the user_skills links.
type SkillRepository struct {
	db *sqlx.DB
}

func NewSkillRepository(db *sqlx.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

func (r *SkillRepository) Create(ctx context.Context, skill *models.Skill) error {
	query := `
		INSERT INTO skills (name, description, category)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		skill.Name, skill.Description, skill.Category,
	).Scan(&skill.ID, &skill.IsActive, &skill.CreatedAt, &skill.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSkill
		}
		return fmt.Errorf("skill repository: create %w", err)
	}

	return nil
}

func (r *SkillRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Skill, error) {
	var skill models.Skill
	query := `SELECT ` + skillColumns + ` FROM skills WHERE id = $1`
	if err := r.db.GetContext(ctx, &skill, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSkillNotFound
		}
		return nil, fmt.Errorf("skill repository: get by id %w", err)
	}

	return &skill, nil
}

// List returns active skills, optionally filtered by category or name search.
func (r *SkillRepository) List(ctx context.Context, category, search string, limit, offset int) ([]models.Skill, error) {
	query := `SELECT ` + skillColumns + ` FROM skills WHERE is_active = TRUE`
	args := []interface{}{}
	argNum := 1

	if category != "" {
		query += fmt.Sprintf(` AND category = $%d`, argNum)
		args = append(args, category)
		argNum++
	}
	if search != "" {
		query += fmt.Sprintf(` AND name ILIKE $%d`, argNum)
		args = append(args, "%"+search+"%")
		argNum++
	}

	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, argNum, argNum+1)
	args = append(args, limit, offset)

	var skills []models.Skill
	if err := r.db.SelectContext(ctx, &skills, query, args...); err != nil {
		return nil, fmt.Errorf("skill repository: list %w", err)
	}

	return skills, nil
}

func (r *SkillRepository) Update(ctx context.Context, skill *models.Skill) error {
	query := `
		UPDATE skills
		SET name = $1, description = $2, category = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + skillColumns

	if err := r.db.GetContext(ctx, skill, query,
		skill.Name, skill.Description, skill.Category, skill.IsActive, skill.ID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSkillNotFound
		}
		if isUniqueViolation(err) {
			return ErrDuplicateSkill
		}
		return fmt.Errorf("skill repository: update %w", err)
	}

	return nil
}

func (r *SkillRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE skills SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("skill repository: deactivate %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrSkillNotFound
	}
	return nil
}

// AddUserSkill links a catalog skill to a user.
func (r *SkillRepository) AddUserSkill(ctx context.Context, us *models.UserSkill) error {
	query := `
		INSERT INTO user_skills (user_id, skill_id, proficiency, years_of_experience)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		us.UserID, us.SkillID, us.Proficiency, us.YearsOfExperience,
	).Scan(&us.ID, &us.CreatedAt, &us.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUserSkill
		}
		return fmt.Errorf("skill repository: add user skill %w", err)
	}

	return nil
}

// ListUserSkills returns a user's skills with the catalog name joined in.
func (r *SkillRepository) ListUserSkills(ctx context.Context, userID uuid.UUID) ([]models.UserSkill, error) {
	query := `
		SELECT us.id, us.user_id, us.skill_id, us.proficiency, us.years_of_experience,
			us.created_at, us.updated_at, s.name AS skill_name
		FROM user_skills us
		JOIN skills s ON s.id = us.skill_id
		WHERE us.user_id = $1
		ORDER BY s.name
	`

	var skills []models.UserSkill
	if err := r.db.SelectContext(ctx, &skills, query, userID); err != nil {
		return nil, fmt.Errorf("skill repository: list user skills %w", err)
	}

	return skills, nil
}

// UpdateUserSkill changes proficiency or experience on an existing link.
func (r *SkillRepository) UpdateUserSkill(ctx context.Context, us *models.UserSkill) error {
	query := `
		UPDATE user_skills
		SET proficiency = $1, years_of_experience = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4
		RETURNING id, user_id, skill_id, proficiency, years_of_experience, created_at, updated_at
	`

	if err := r.db.GetContext(ctx, us, query,
		us.Proficiency, us.YearsOfExperience, us.ID, us.UserID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserSkillNotFound
		}
		return fmt.Errorf("skill repository: update user skill %w", err)
	}

	return nil
}

// RemoveUserSkill deletes a user's skill link.
func (r *SkillRepository) RemoveUserSkill(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_skills WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("skill repository: remove user skill %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrUserSkillNotFound
	}
	return nil
}
