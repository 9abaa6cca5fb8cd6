package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/juajobs/juajobs-backend/internal/authz"
	"github.com/juajobs/juajobs-backend/internal/models"
	"github.com/juajobs/juajobs-backend/internal/pkg/apperror"
	"github.com/juajobs/juajobs-backend/internal/repository"
)

// LocationRepo is the storage surface for locations.
type LocationRepo interface {
	Create(ctx context.Context, loc *models.Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	List(ctx context.Context, kind string, parentID *uuid.UUID, limit, offset int) ([]models.Location, error)
	ListAllActive(ctx context.Context) ([]models.Location, error)
	Update(ctx context.Context, loc *models.Location) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// SkillCatalogRepo is the storage surface for the skills catalog.
type SkillCatalogRepo interface {
	Create(ctx context.Context, skill *models.Skill) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Skill, error)
	List(ctx context.Context, category, search string, limit, offset int) ([]models.Skill, error)
	Update(ctx context.Context, skill *models.Skill) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// CategoryRepo is the storage surface for job categories.
type CategoryRepo interface {
	Create(ctx context.Context, cat *models.JobCategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.JobCategory, error)
	List(ctx context.Context) ([]models.JobCategory, error)
	Update(ctx context.Context, cat *models.JobCategory) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// CatalogService manages the admin-curated reference data: locations,
// skills and job categories. Reads are public, writes are admin only.
type CatalogService struct {
	locations  LocationRepo
	skills     SkillCatalogRepo
	categories CategoryRepo
}

func NewCatalogService(locations LocationRepo, skills SkillCatalogRepo, categories CategoryRepo) *CatalogService {
	return &CatalogService{locations: locations, skills: skills, categories: categories}
}

func (s *CatalogService) requireManage(role authz.Role) error {
	if !authz.Can(role, authz.ActionManageCatalog) {
		return apperror.ErrForbidden
	}
	return nil
}

// CreateLocation adds a node to the geographic hierarchy. The parent must
// exist and be exactly one level more general.
func (s *CatalogService) CreateLocation(ctx context.Context, role authz.Role, loc *models.Location) error {
	if err := s.requireManage(role); err != nil {
		return err
	}
	if loc.Name == "" {
		return apperror.New(apperror.ErrCodeValidation, "location name is required")
	}
	if _, ok := models.ValidLocationKinds[loc.Kind]; !ok {
		return apperror.New(apperror.ErrCodeValidation, "invalid location kind")
	}

	if loc.Kind == models.LocationKindCountry {
		if loc.ParentID != nil {
			return apperror.New(apperror.ErrCodeValidation, "a country cannot have a parent")
		}
	} else {
		if loc.ParentID == nil {
			return apperror.New(apperror.ErrCodeValidation, "a non-country location requires a parent")
		}
		parent, err := s.locations.GetByID(ctx, *loc.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrLocationNotFound) {
				return apperror.ErrLocationNotFound
			}
			return err
		}
		if !isValidLocationParent(parent.Kind, loc.Kind) {
			return apperror.New(apperror.ErrCodeValidation,
				"parent kind "+parent.Kind+" cannot contain "+loc.Kind)
		}
	}

	if err := s.locations.Create(ctx, loc); err != nil {
		if errors.Is(err, repository.ErrDuplicateLocation) {
			return apperror.New(apperror.ErrCodeConflict, "location already exists under this parent")
		}
		return err
	}
	return nil
}

// locationOrder maps kinds to depth, most general first.
var locationOrder = map[string]int{
	models.LocationKindCountry:      0,
	models.LocationKindState:        1,
	models.LocationKindCity:         2,
	models.LocationKindDistrict:     3,
	models.LocationKindNeighborhood: 4,
}

// isValidLocationParent allows skipping levels downward but never upward
// or sideways, e.g. a city directly under a country is fine.
func isValidLocationParent(parentKind, childKind string) bool {
	return locationOrder[childKind] > locationOrder[parentKind]
}

func (s *CatalogService) GetLocation(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	loc, err := s.locations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return nil, apperror.ErrLocationNotFound
		}
		return nil, err
	}
	return loc, nil
}

func (s *CatalogService) ListLocations(ctx context.Context, kind string, parentID *uuid.UUID, limit, offset int) ([]models.Location, error) {
	if kind != "" {
		if _, ok := models.ValidLocationKinds[kind]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "invalid location kind")
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.locations.List(ctx, kind, parentID, limit, offset)
}

// LocationTree builds the full active hierarchy in memory. The table is
// reference data and stays small.
func (s *CatalogService) LocationTree(ctx context.Context) ([]*models.LocationNode, error) {
	locations, err := s.locations.ListAllActive(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uuid.UUID]*models.LocationNode, len(locations))
	for i := range locations {
		nodes[locations[i].ID] = &models.LocationNode{
			Location: locations[i],
			Children: []*models.LocationNode{},
		}
	}

	var roots []*models.LocationNode
	for _, node := range nodes {
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*node.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			// Parent was deactivated, surface the orphan at the top.
			roots = append(roots, node)
		}
	}

	return roots, nil
}

func (s *CatalogService) UpdateLocation(ctx context.Context, role authz.Role, loc *models.Location) error {
	if err := s.requireManage(role); err != nil {
		return err
	}
	if loc.Name == "" {
		return apperror.New(apperror.ErrCodeValidation, "location name is required")
	}
	if err := s.locations.Update(ctx, loc); err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return apperror.ErrLocationNotFound
		}
		if errors.Is(err, repository.ErrDuplicateLocation) {
			return apperror.New(apperror.ErrCodeConflict, "location already exists under this parent")
		}
		return err
	}
	return nil
}

func (s *CatalogService) DeactivateLocation(ctx context.Context, role authz.Role, id uuid.UUID) error {
	if err := s.requireManage(role); err != nil {
		return err
	}
	if err := s.locations.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return apperror.ErrLocationNotFound
		}
		return err
	}
	return nil
}

// CreateSkill adds a skill to the catalog.
func (s *CatalogService) CreateSkill(ctx context.Context, role authz.Role, skill *models.Skill) error {
	if err := s.requireManage(role); err != nil {
		return err
	}
	if skill.Name == "" {
		return apperror.New(apperror.ErrCodeValidation, "skill name is required")
	}
	if skill.Category == "" {
		skill.Category = "other"
	}
	if err := s.skills.Create(ctx, skill); err != nil {
		if errors.Is(err, repository.ErrDuplicateSkill) {
			return apperror.New(apperror.ErrCodeConflict, "skill name already exists")
		}
		return err
	}
	return nil
}

func (s *CatalogService) GetSkill(ctx context.Context, id uuid.UUID) (*models.Skill, error) {
	skill, err := s.skills.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSkillNotFound) {
			return nil, apperror.ErrSkillNotFound
		}
		return nil, err
	}
	return skill, nil
}

func (s *CatalogService) ListSkills(ctx context.Context, category, search string, limit, offset int) ([]models.Skill, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.skills.List(ctx, category, search, limit, offset)
}

func (s *CatalogService) UpdateSkill(ctx context.Context, role authz.Role, skill *models.Skill) error {
	if err := s.requireManage(role); err != nil {
		return err
	}
	if skill.Name == "" {
		return apperror.New(apperror.ErrCodeValidation, "skill name is required")
	}
	if err := s.skills.Update(ctx, skill); err != nil {
		if errors.Is(err, repository.ErrSkillNotFound) {
			return apperror.ErrSkillNotFound
		}
		if errors.Is(err, repository.ErrDuplicateSkill) {
			return apperror.New(apperror.ErrCodeConflict, "skill name already exists")
		}
		return err
	}
	return nil
}

func (s *CatalogService) DeactivateSkill(ctx context.Context, role authz.Role, id uuid.UUID) error {
	if err := s.requireManage(role); err != nil {
		return err
	}
	if err := s.skills.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSkillNotFound) {
			return apperror.ErrSkillNotFound
		}
		return err
	}
	return nil
}

// CreateCategory adds a job category.
func (s *CatalogService) CreateCategory(ctx context.Context, role authz.Role, cat *models.JobCategory) error {
	if err := s.requireManage(role); err != nil {
		return err
	}
	if cat.Name == "" {
		return apperror.New(apperror.ErrCodeValidation, "category name is required")
	}
	if err := s.categories.Create(ctx, cat); err != nil {
		if errors.Is(err, repository.ErrDuplicateCategory) {
			return apperror.New(apperror.ErrCodeConflict, "category name already exists")
		}
		return err
	}
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.JobCategory, error) {
	return s.categories.List(ctx)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, role authz.Role, cat *models.JobCategory) error {
	if err := s.requireManage(role); err != nil {
		return err
	}
	if cat.Name == "" {
		return apperror.New(apperror.ErrCodeValidation, "category name is required")
	}
	if err := s.categories.Update(ctx, cat); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return apperror.ErrCategoryNotFound
		}
		if errors.Is(err, repository.ErrDuplicateCategory) {
			return apperror.New(apperror.ErrCodeConflict, "category name already exists")
		}
		return err
	}
	return nil
}

func (s *CatalogService) DeactivateCategory(ctx context.Context, role authz.Role, id uuid.UUID) error {
	if err := s.requireManage(role); err != nil {
		return err
	}
	if err := s.categories.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return apperror.ErrCategoryNotFound
		}
		return err
	}
	return nil
}
