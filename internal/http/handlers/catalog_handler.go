package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/juajobs/juajobs-backend/internal/dto"
	"github.com/juajobs/juajobs-backend/internal/http/handlers/common"
	"github.com/juajobs/juajobs-backend/internal/models"
	"github.com/juajobs/juajobs-backend/internal/service"
)

// CatalogHandler serves the reference data endpoints: locations, skills
// and job categories. Reads are public, writes are admin only.
type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// CreateLocation handles POST /api/admin/locations.
func (h *CatalogHandler) CreateLocation(c *gin.Context) {
	_, role, ok := common.Identity(c)
	if !ok {
		return
	}

	var req dto.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	loc := &models.Location{
		Name:        req.Name,
		Kind:        req.Kind,
		ParentID:    req.ParentID,
		CountryCode: req.CountryCode,
	}
	if err := h.catalog.CreateLocation(c.Request.Context(), role, loc); err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, loc)
}

// GetLocation handles GET /api/locations/:id.
func (h *CatalogHandler) GetLocation(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	loc, err := h.catalog.GetLocation(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loc)
}

// ListLocations handles GET /api/locations?kind=&parent_id=.
func (h *CatalogHandler) ListLocations(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	var parentID *uuid.UUID
	if raw := c.Query("parent_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.RespondValidation(c, err)
			return
		}
		parentID = &id
	}

	locations, err := h.catalog.ListLocations(c.Request.Context(), c.Query("kind"), parentID, limit, offset)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondList(c, locations, limit, offset)
}

// LocationTree handles GET /api/locations/tree.
func (h *CatalogHandler) LocationTree(c *gin.Context) {
	tree, err := h.catalog.LocationTree(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tree)
}

// UpdateLocation handles PUT /api/admin/locations/:id.
func (h *CatalogHandler) UpdateLocation(c *gin.Context) {
	_, role, ok := common.Identity(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var req dto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	loc, err := h.catalog.GetLocation(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	loc.Name = req.Name
	if req.CountryCode != nil {
		loc.CountryCode = req.CountryCode
	}
	if req.IsActive != nil {
		loc.IsActive = *req.IsActive
	}

	if err := h.catalog.UpdateLocation(c.Request.Context(), role, loc); err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loc)
}

// DeleteLocation handles DELETE /api/admin/locations/:id (soft delete).
func (h *CatalogHandler) DeleteLocation(c *gin.Context) {
	_, role, ok := common.Identity(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := h.catalog.DeactivateLocation(c.Request.Context(), role, id); err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "location deactivated"})
}

// CreateSkill handles POST /api/admin/skills.
func (h *CatalogHandler) CreateSkill(c *gin.Context) {
	_, role, ok := common.Identity(c)
	if !ok {
		return
	}

	var req dto.CreateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	skill := &models.Skill{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	}
	if err := h.catalog.CreateSkill(c.Request.Context(), role, skill); err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, skill)
}

// GetSkill handles GET /api/skills/:id.
func (h *CatalogHandler) GetSkill(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	skill, err := h.catalog.GetSkill(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, skill)
}

// ListSkills handles GET /api/skills?category=&search=.
func (h *CatalogHandler) ListSkills(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	skills, err := h.catalog.ListSkills(c.Request.Context(), c.Query("category"), c.Query("search"), limit, offset)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondList(c, skills, limit, offset)
}

// UpdateSkill handles PUT /api/admin/skills/:id.
func (h *CatalogHandler) UpdateSkill(c *gin.Context) {
	_, role, ok := common.Identity(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var req dto.UpdateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	skill, err := h.catalog.GetSkill(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	skill.Name = req.Name
	if req.Description != nil {
		skill.Description = req.Description
	}
	if req.Category != "" {
		skill.Category = req.Category
	}
	if req.IsActive != nil {
		skill.IsActive = *req.IsActive
	}

	if err := h.catalog.UpdateSkill(c.Request.Context(), role, skill); err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, skill)
}

// DeleteSkill handles DELETE /api/admin/skills/:id (soft delete).
func (h *CatalogHandler) DeleteSkill(c *gin.Context) {
	_, role, ok := common.Identity(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := h.catalog.DeactivateSkill(c.Request.Context(), role, id); err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "skill deactivated"})
}

// CreateCategory handles POST /api/admin/categories.
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	_, role, ok := common.Identity(c)
	if !ok {
		return
	}

	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	cat := &models.JobCategory{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.catalog.CreateCategory(c.Request.Context(), role, cat); err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cat)
}

// ListCategories handles GET /api/categories.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// UpdateCategory handles PUT /api/admin/categories/:id.
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	_, role, ok := common.Identity(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	cat := &models.JobCategory{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}

	if err := h.catalog.UpdateCategory(c.Request.Context(), role, cat); err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cat)
}

// DeleteCategory handles DELETE /api/admin/categories/:id (soft delete).
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	_, role, ok := common.Identity(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := h.catalog.DeactivateCategory(c.Request.Context(), role, id); err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "category deactivated"})
}
