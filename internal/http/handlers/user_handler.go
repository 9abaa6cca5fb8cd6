package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/juajobs/juajobs-backend/internal/dto"
	"github.com/juajobs/juajobs-backend/internal/http/handlers/common"
	"github.com/juajobs/juajobs-backend/internal/service"
)

// UserHandler serves profiles, worker listings, user skills and the
// admin moderation endpoints.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(c *gin.Context) {
	userID, role, ok := common.Identity(c)
	if !ok {
		return
	}

	user, err := h.users.GetProfile(c.Request.Context(), userID, userID, role)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMe handles PATCH /api/users/me. Absent fields stay unchanged.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, _, ok := common.Identity(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, service.UpdateProfileInput{
		Username:    req.Username,
		PhoneNumber: req.PhoneNumber,
		Bio:         req.Bio,
		Country:     req.Country,
		City:        req.City,
		HourlyRate:  req.HourlyRate,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UploadPhoto handles POST /api/users/me/photo with a multipart "photo"
// field.
func (h *UserHandler) UploadPhoto(c *gin.Context) {
	userID, _, ok := common.Identity(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		common.RespondValidation(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.RespondError(c, err)
		return
	}
	defer file.Close()

	user, err := h.users.UploadPhoto(c.Request.Context(), userID, fileHeader.Filename, file)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetUser handles GET /api/users/:id. Non-owners get the public view.
func (h *UserHandler) GetUser(c *gin.Context) {
	viewerID, role, ok := common.Identity(c)
	if !ok {
		return
	}

	targetID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	user, err := h.users.GetProfile(c.Request.Context(), targetID, viewerID, role)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetStats handles GET /api/users/:id/stats.
func (h *UserHandler) GetStats(c *gin.Context) {
	targetID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	stats, err := h.users.GetStats(c.Request.Context(), targetID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListWorkers handles GET /api/workers.
func (h *UserHandler) ListWorkers(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	workers, err := h.users.ListWorkers(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondList(c, workers, limit, offset)
}

// Verify handles PATCH /api/admin/users/:id/verify.
func (h *UserHandler) Verify(c *gin.Context) {
	_, role, ok := common.Identity(c)
	if !ok {
		return
	}

	targetID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var req dto.VerifyUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	if err := h.users.VerifyUser(c.Request.Context(), role, targetID, req.Verified); err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "verification updated"})
}

// SetActive handles PATCH /api/admin/users/:id/active.
func (h *UserHandler) SetActive(c *gin.Context) {
	_, role, ok := common.Identity(c)
	if !ok {
		return
	}

	targetID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var req dto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	if err := h.users.SetActive(c.Request.Context(), role, targetID, req.Active); err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "account status updated"})
}

// AddSkill handles POST /api/users/me/skills.
func (h *UserHandler) AddSkill(c *gin.Context) {
	userID, _, ok := common.Identity(c)
	if !ok {
		return
	}

	var req dto.AddUserSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	skill, err := h.users.AddSkill(c.Request.Context(), userID, req.SkillID, req.Proficiency, req.YearsOfExperience)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, skill)
}

// ListSkills handles GET /api/users/:id/skills.
func (h *UserHandler) ListSkills(c *gin.Context) {
	targetID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	skills, err := h.users.ListSkills(c.Request.Context(), targetID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, skills)
}

// UpdateSkill handles PATCH /api/users/me/skills/:id.
func (h *UserHandler) UpdateSkill(c *gin.Context) {
	userID, _, ok := common.Identity(c)
	if !ok {
		return
	}

	userSkillID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var req dto.UpdateUserSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	skill, err := h.users.UpdateSkill(c.Request.Context(), userID, userSkillID, req.Proficiency, req.YearsOfExperience)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, skill)
}

// RemoveSkill handles DELETE /api/users/me/skills/:id.
func (h *UserHandler) RemoveSkill(c *gin.Context) {
	userID, _, ok := common.Identity(c)
	if !ok {
		return
	}

	userSkillID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := h.users.RemoveSkill(c.Request.Context(), userID, userSkillID); err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "skill removed"})
}
