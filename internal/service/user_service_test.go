package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/juajobs/juajobs-backend/internal/authz"
	"github.com/juajobs/juajobs-backend/internal/models"
	"github.com/juajobs/juajobs-backend/internal/pkg/apperror"
	"github.com/juajobs/juajobs-backend/internal/repository"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) UpdatePhoto(ctx context.Context, userID uuid.UUID, photoPath *string) error {
	args := m.Called(ctx, userID, photoPath)
	return args.Error(0)
}

func (m *mockUserRepo) SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	args := m.Called(ctx, userID, verified)
	return args.Error(0)
}

func (m *mockUserRepo) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	args := m.Called(ctx, userID, active)
	return args.Error(0)
}

func (m *mockUserRepo) ListWorkers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockUserRepo) GetUserStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStats), args.Error(1)
}

type mockUserSkillRepo struct {
	mock.Mock
}

func (m *mockUserSkillRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Skill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Skill), args.Error(1)
}

func (m *mockUserSkillRepo) AddUserSkill(ctx context.Context, us *models.UserSkill) error {
	args := m.Called(ctx, us)
	if args.Error(0) == nil {
		us.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockUserSkillRepo) ListUserSkills(ctx context.Context, userID uuid.UUID) ([]models.UserSkill, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.UserSkill), args.Error(1)
}

func (m *mockUserSkillRepo) UpdateUserSkill(ctx context.Context, us *models.UserSkill) error {
	args := m.Called(ctx, us)
	return args.Error(0)
}

func (m *mockUserSkillRepo) RemoveUserSkill(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type mockPhotoStore struct {
	mock.Mock
}

func (m *mockPhotoStore) Save(ctx context.Context, userID uuid.UUID, originalName string, r io.Reader) (string, int64, error) {
	args := m.Called(ctx, userID, originalName, r)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

func (m *mockPhotoStore) Delete(ctx context.Context, relativePath string) error {
	args := m.Called(ctx, relativePath)
	return args.Error(0)
}

func profileUser() *models.User {
	phone := "+254712345678"
	return &models.User{
		ID:          uuid.New(),
		Email:       "amina@example.com",
		Username:    "amina",
		Role:        authz.RoleWorker,
		PhoneNumber: &phone,
		IsActive:    true,
	}
}

func TestUserService_GetProfile_StrangerGetsPublicView(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewUserService(repo, new(mockUserSkillRepo), new(mockPhotoStore))
	ctx := context.Background()

	user := profileUser()
	repo.On("GetByID", ctx, user.ID).Return(user, nil)

	got, err := svc.GetProfile(ctx, user.ID, uuid.New(), authz.RoleClient)

	assert.NoError(t, err)
	assert.Empty(t, got.Email)
	assert.Nil(t, got.PhoneNumber)
}

func TestUserService_GetProfile_OwnerSeesContactFields(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewUserService(repo, new(mockUserSkillRepo), new(mockPhotoStore))
	ctx := context.Background()

	user := profileUser()
	repo.On("GetByID", ctx, user.ID).Return(user, nil)

	got, err := svc.GetProfile(ctx, user.ID, user.ID, authz.RoleWorker)

	assert.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	assert.NotNil(t, got.PhoneNumber)
}

func TestUserService_GetProfile_AdminSeesContactFields(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewUserService(repo, new(mockUserSkillRepo), new(mockPhotoStore))
	ctx := context.Background()

	user := profileUser()
	repo.On("GetByID", ctx, user.ID).Return(user, nil)

	got, err := svc.GetProfile(ctx, user.ID, uuid.New(), authz.RoleAdmin)

	assert.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
}

func TestUserService_UpdateProfile_InvalidPhone(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewUserService(repo, new(mockUserSkillRepo), new(mockPhotoStore))
	ctx := context.Background()

	user := profileUser()
	repo.On("GetByID", ctx, user.ID).Return(user, nil)

	bad := "not-a-phone"
	_, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{PhoneNumber: &bad})
	assert.True(t, apperror.IsValidation(err))
}

func TestUserService_UpdateProfile_ClearsPhone(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewUserService(repo, new(mockUserSkillRepo), new(mockPhotoStore))
	ctx := context.Background()

	user := profileUser()
	repo.On("GetByID", ctx, user.ID).Return(user, nil)
	repo.On("UpdateProfile", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	empty := ""
	got, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{PhoneNumber: &empty})

	assert.NoError(t, err)
	assert.Nil(t, got.PhoneNumber)
}

func TestUserService_UpdateProfile_DuplicatePhone(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewUserService(repo, new(mockUserSkillRepo), new(mockPhotoStore))
	ctx := context.Background()

	user := profileUser()
	taken := "+254700000000"
	repo.On("GetByID", ctx, user.ID).Return(user, nil)
	repo.On("UpdateProfile", ctx, mock.AnythingOfType("*models.User")).Return(repository.ErrDuplicateUser)

	_, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{PhoneNumber: &taken})
	assert.True(t, apperror.IsConflict(err))
}

func TestUserService_UpdateProfile_NegativeHourlyRate(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewUserService(repo, new(mockUserSkillRepo), new(mockPhotoStore))
	ctx := context.Background()

	user := profileUser()
	repo.On("GetByID", ctx, user.ID).Return(user, nil)

	rate := -10.0
	_, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{HourlyRate: &rate})
	assert.True(t, apperror.IsValidation(err))
}

func TestUserService_UploadPhoto_ReplacesOld(t *testing.T) {
	repo := new(mockUserRepo)
	photos := new(mockPhotoStore)
	svc := NewUserService(repo, new(mockUserSkillRepo), photos)
	ctx := context.Background()

	user := profileUser()
	oldPath := "photos/old.jpg"
	user.PhotoPath = &oldPath

	repo.On("GetByID", ctx, user.ID).Return(user, nil)
	photos.On("Save", ctx, user.ID, "me.jpg", mock.Anything).Return("photos/new.jpg", int64(1024), nil)
	photos.On("Delete", ctx, oldPath).Return(nil)
	repo.On("UpdatePhoto", ctx, user.ID, mock.AnythingOfType("*string")).Return(nil)

	got, err := svc.UploadPhoto(ctx, user.ID, "me.jpg", strings.NewReader("jpeg-bytes"))

	assert.NoError(t, err)
	assert.Equal(t, "photos/new.jpg", *got.PhotoPath)
	photos.AssertCalled(t, "Delete", ctx, oldPath)
}

func TestUserService_ListWorkers_PublicViewOnly(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewUserService(repo, new(mockUserSkillRepo), new(mockPhotoStore))
	ctx := context.Background()

	repo.On("ListWorkers", ctx, 20, 0).Return([]*models.User{profileUser()}, nil)

	workers, err := svc.ListWorkers(ctx, 0, 0)

	assert.NoError(t, err)
	assert.Len(t, workers, 1)
	assert.Empty(t, workers[0].Email)
	assert.Nil(t, workers[0].PhoneNumber)
}

func TestUserService_VerifyUser_AdminOnly(t *testing.T) {
	svc := NewUserService(new(mockUserRepo), new(mockUserSkillRepo), new(mockPhotoStore))
	ctx := context.Background()

	err := svc.VerifyUser(ctx, authz.RoleClient, uuid.New(), true)
	assert.True(t, apperror.IsForbidden(err))
}

func TestUserService_SetActive_AdminOnly(t *testing.T) {
	svc := NewUserService(new(mockUserRepo), new(mockUserSkillRepo), new(mockPhotoStore))
	ctx := context.Background()

	err := svc.SetActive(ctx, authz.RoleWorker, uuid.New(), false)
	assert.True(t, apperror.IsForbidden(err))
}

func TestUserService_AddSkill_DefaultsProficiency(t *testing.T) {
	skills := new(mockUserSkillRepo)
	svc := NewUserService(new(mockUserRepo), skills, new(mockPhotoStore))
	ctx := context.Background()

	skillID := uuid.New()
	skills.On("GetByID", ctx, skillID).
		Return(&models.Skill{ID: skillID, Name: "Plumbing", IsActive: true}, nil)
	skills.On("AddUserSkill", ctx, mock.AnythingOfType("*models.UserSkill")).Return(nil)

	us, err := svc.AddSkill(ctx, uuid.New(), skillID, "", nil)

	assert.NoError(t, err)
	assert.Equal(t, models.ProficiencyBeginner, us.Proficiency)
	assert.Equal(t, "Plumbing", us.SkillName)
}

func TestUserService_AddSkill_InactiveSkill(t *testing.T) {
	skills := new(mockUserSkillRepo)
	svc := NewUserService(new(mockUserRepo), skills, new(mockPhotoStore))
	ctx := context.Background()

	skillID := uuid.New()
	skills.On("GetByID", ctx, skillID).
		Return(&models.Skill{ID: skillID, Name: "Retired", IsActive: false}, nil)

	_, err := svc.AddSkill(ctx, uuid.New(), skillID, models.ProficiencyExpert, nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestUserService_AddSkill_Duplicate(t *testing.T) {
	skills := new(mockUserSkillRepo)
	svc := NewUserService(new(mockUserRepo), skills, new(mockPhotoStore))
	ctx := context.Background()

	skillID := uuid.New()
	skills.On("GetByID", ctx, skillID).
		Return(&models.Skill{ID: skillID, Name: "Plumbing", IsActive: true}, nil)
	skills.On("AddUserSkill", ctx, mock.AnythingOfType("*models.UserSkill")).
		Return(repository.ErrDuplicateUserSkill)

	_, err := svc.AddSkill(ctx, uuid.New(), skillID, models.ProficiencyAdvanced, nil)
	assert.True(t, apperror.IsConflict(err))
}

func TestUserService_UpdateSkill_InvalidProficiency(t *testing.T) {
	svc := NewUserService(new(mockUserRepo), new(mockUserSkillRepo), new(mockPhotoStore))
	ctx := context.Background()

	_, err := svc.UpdateSkill(ctx, uuid.New(), uuid.New(), "guru", nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestUserService_RemoveSkill_NotFound(t *testing.T) {
	skills := new(mockUserSkillRepo)
	svc := NewUserService(new(mockUserRepo), skills, new(mockPhotoStore))
	ctx := context.Background()

	userSkillID := uuid.New()
	userID := uuid.New()
	skills.On("RemoveUserSkill", ctx, userSkillID, userID).Return(repository.ErrUserSkillNotFound)

	err := svc.RemoveSkill(ctx, userID, userSkillID)
	assert.True(t, apperror.IsNotFound(err))
}
