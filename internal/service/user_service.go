package service

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/juajobs/juajobs-backend/internal/authz"
	"github.com/juajobs/juajobs-backend/internal/models"
	"github.com/juajobs/juajobs-backend/internal/pkg/apperror"
	"github.com/juajobs/juajobs-backend/internal/repository"
	"github.com/juajobs/juajobs-backend/internal/validation"
)

// UserRepo is the storage surface UserService depends on.
type UserRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePhoto(ctx context.Context, userID uuid.UUID, photoPath *string) error
	SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error
	SetActive(ctx context.Context, userID uuid.UUID, active bool) error
	ListWorkers(ctx context.Context, limit, offset int) ([]*models.User, error)
	GetUserStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
}

// UserSkillRepo is the user-skill surface UserService depends on.
type UserSkillRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Skill, error)
	AddUserSkill(ctx context.Context, us *models.UserSkill) error
	ListUserSkills(ctx context.Context, userID uuid.UUID) ([]models.UserSkill, error)
	UpdateUserSkill(ctx context.Context, us *models.UserSkill) error
	RemoveUserSkill(ctx context.Context, id, userID uuid.UUID) error
}

// PhotoStore saves and deletes profile photos.
type PhotoStore interface {
	Save(ctx context.Context, userID uuid.UUID, originalName string, r io.Reader) (string, int64, error)
	Delete(ctx context.Context, relativePath string) error
}

// UserService covers profiles, skills, photos and admin account actions.
type UserService struct {
	repo   UserRepo
	skills UserSkillRepo
	photos PhotoStore
}

func NewUserService(repo UserRepo, skills UserSkillRepo, photos PhotoStore) *UserService {
	return &UserService{repo: repo, skills: skills, photos: photos}
}

// GetProfile returns a user. Non-owners and non-admins get the public view
// with contact fields stripped.
func (s *UserService) GetProfile(ctx context.Context, targetID, viewerID uuid.UUID, viewerRole authz.Role) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}

	if viewerID == targetID || authz.Can(viewerRole, authz.ActionViewAllRecords) {
		return user, nil
	}

	return user.PublicView(), nil
}

// UpdateProfileInput carries the editable profile fields. Nil means
// "leave unchanged".
type UpdateProfileInput struct {
	Username    *string
	PhoneNumber *string
	Bio         *string
	Country     *string
	City        *string
	HourlyRate  *float64
	CompanyName *string
}

// UpdateProfile applies partial profile changes for the owner.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}

	if in.Username != nil {
		if err := validation.Username(*in.Username); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		user.Username = *in.Username
	}
	if in.PhoneNumber != nil {
		if *in.PhoneNumber == "" {
			user.PhoneNumber = nil
		} else {
			if err := validation.Phone(*in.PhoneNumber); err != nil {
				return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
			}
			user.PhoneNumber = in.PhoneNumber
		}
	}
	if in.Bio != nil {
		user.Bio = in.Bio
	}
	if in.Country != nil {
		user.Country = in.Country
	}
	if in.City != nil {
		user.City = in.City
	}
	if in.HourlyRate != nil {
		if *in.HourlyRate < 0 {
			return nil, apperror.New(apperror.ErrCodeValidation, "hourly rate must not be negative")
		}
		user.HourlyRate = in.HourlyRate
	}
	if in.CompanyName != nil {
		user.CompanyName = in.CompanyName
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, apperror.New(apperror.ErrCodeConflict, "phone number already in use")
		}
		return nil, err
	}

	return user, nil
}

// UploadPhoto stores a new profile photo and removes the previous one.
func (s *UserService) UploadPhoto(ctx context.Context, userID uuid.UUID, originalName string, r io.Reader) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}

	relative, _, err := s.photos.Save(ctx, userID, originalName, r)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if user.PhotoPath != nil {
		// Old photo cleanup is best effort.
		_ = s.photos.Delete(ctx, *user.PhotoPath)
	}

	if err := s.repo.UpdatePhoto(ctx, userID, &relative); err != nil {
		return nil, err
	}

	user.PhotoPath = &relative
	return user, nil
}

// ListWorkers returns browsable worker accounts, public view only.
func (s *UserService) ListWorkers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.repo.ListWorkers(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	views := make([]*models.User, len(users))
	for i, u := range users {
		views[i] = u.PublicView()
	}
	return views, nil
}

// GetStats aggregates the user's marketplace activity.
func (s *UserService) GetStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return s.repo.GetUserStats(ctx, userID)
}

// VerifyUser flips the admin verification badge.
func (s *UserService) VerifyUser(ctx context.Context, adminRole authz.Role, targetID uuid.UUID, verified bool) error {
	if !authz.Can(adminRole, authz.ActionVerifyUser) {
		return apperror.ErrForbidden
	}
	if err := s.repo.SetVerified(ctx, targetID, verified); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return err
	}
	return nil
}

// SetActive deactivates or reactivates an account, admin only.
func (s *UserService) SetActive(ctx context.Context, adminRole authz.Role, targetID uuid.UUID, active bool) error {
	if !authz.Can(adminRole, authz.ActionVerifyUser) {
		return apperror.ErrForbidden
	}
	if err := s.repo.SetActive(ctx, targetID, active); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return err
	}
	return nil
}

// AddSkill links a catalog skill to the user's profile.
func (s *UserService) AddSkill(ctx context.Context, userID, skillID uuid.UUID, proficiency string, years *int) (*models.UserSkill, error) {
	if proficiency == "" {
		proficiency = models.ProficiencyBeginner
	}
	if _, ok := models.ValidProficiencies[proficiency]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "invalid proficiency level")
	}
	if years != nil && *years < 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "years of experience must not be negative")
	}

	skill, err := s.skills.GetByID(ctx, skillID)
	if err != nil {
		if errors.Is(err, repository.ErrSkillNotFound) {
			return nil, apperror.ErrSkillNotFound
		}
		return nil, err
	}
	if !skill.IsActive {
		return nil, apperror.New(apperror.ErrCodeValidation, "skill is not active")
	}

	us := &models.UserSkill{
		UserID:            userID,
		SkillID:           skillID,
		Proficiency:       proficiency,
		YearsOfExperience: years,
		SkillName:         skill.Name,
	}

	if err := s.skills.AddUserSkill(ctx, us); err != nil {
		if errors.Is(err, repository.ErrDuplicateUserSkill) {
			return nil, apperror.New(apperror.ErrCodeConflict, "skill already added")
		}
		return nil, err
	}

	return us, nil
}

// ListSkills returns the user's skills.
func (s *UserService) ListSkills(ctx context.Context, userID uuid.UUID) ([]models.UserSkill, error) {
	return s.skills.ListUserSkills(ctx, userID)
}

// UpdateSkill changes proficiency or experience on the user's own link.
func (s *UserService) UpdateSkill(ctx context.Context, userID, userSkillID uuid.UUID, proficiency string, years *int) (*models.UserSkill, error) {
	if _, ok := models.ValidProficiencies[proficiency]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "invalid proficiency level")
	}
	if years != nil && *years < 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "years of experience must not be negative")
	}

	us := &models.UserSkill{
		ID:                userSkillID,
		UserID:            userID,
		Proficiency:       proficiency,
		YearsOfExperience: years,
	}

	if err := s.skills.UpdateUserSkill(ctx, us); err != nil {
		if errors.Is(err, repository.ErrUserSkillNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "user skill not found")
		}
		return nil, err
	}

	return us, nil
}

// RemoveSkill deletes the user's own skill link.
func (s *UserService) RemoveSkill(ctx context.Context, userID, userSkillID uuid.UUID) error {
	if err := s.skills.RemoveUserSkill(ctx, userSkillID, userID); err != nil {
		if errors.Is(err, repository.ErrUserSkillNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "user skill not found")
		}
		return err
	}
	return nil
}
