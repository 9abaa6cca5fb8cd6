package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/juajobs/juajobs-backend/internal/dto"
	"github.com/juajobs/juajobs-backend/internal/http/handlers/common"
	"github.com/juajobs/juajobs-backend/internal/models"
	"github.com/juajobs/juajobs-backend/internal/service"
)

// JobHandler serves the job posting lifecycle.
type JobHandler struct {
	jobs         *service.JobService
	applications *service.ApplicationService
}

func NewJobHandler(jobs *service.JobService, applications *service.ApplicationService) *JobHandler {
	return &JobHandler{jobs: jobs, applications: applications}
}

// Create handles POST /api/jobs.
func (h *JobHandler) Create(c *gin.Context) {
	userID, role, ok := common.Identity(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	job := &models.Job{
		Title:          req.Title,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		BudgetMin:      req.BudgetMin,
		BudgetMax:      req.BudgetMax,
		IsRemote:       req.IsRemote,
		LocationID:     req.LocationID,
		RequiredSkills: req.RequiredSkills,
		Deadline:       req.Deadline,
	}

	created, err := h.jobs.CreateJob(c.Request.Context(), userID, role, job)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Get handles GET /api/jobs/:id.
func (h *JobHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	job, err := h.jobs.GetJob(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// List handles GET /api/jobs with the filter query parameters.
func (h *JobHandler) List(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	filter := models.JobFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	}

	var parseErr error
	filter.CategoryID, parseErr = optionalUUID(c.Query("category_id"))
	if parseErr != nil {
		common.RespondValidation(c, parseErr)
		return
	}
	filter.LocationID, parseErr = optionalUUID(c.Query("location_id"))
	if parseErr != nil {
		common.RespondValidation(c, parseErr)
		return
	}
	filter.ClientID, parseErr = optionalUUID(c.Query("client_id"))
	if parseErr != nil {
		common.RespondValidation(c, parseErr)
		return
	}

	if raw := c.Query("is_remote"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			common.RespondValidation(c, err)
			return
		}
		filter.IsRemote = &v
	}
	if raw := c.Query("budget_min"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			common.RespondValidation(c, err)
			return
		}
		filter.BudgetMin = &v
	}
	if raw := c.Query("budget_max"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			common.RespondValidation(c, err)
			return
		}
		filter.BudgetMax = &v
	}

	jobs, err := h.jobs.ListJobs(c.Request.Context(), filter)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondList(c, jobs, limit, offset)
}

// Update handles PUT /api/jobs/:id. Only open jobs can be edited.
func (h *JobHandler) Update(c *gin.Context) {
	userID, role, ok := common.Identity(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var req dto.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	job := &models.Job{
		ID:             id,
		Title:          req.Title,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		BudgetMin:      req.BudgetMin,
		BudgetMax:      req.BudgetMax,
		IsRemote:       req.IsRemote,
		LocationID:     req.LocationID,
		RequiredSkills: req.RequiredSkills,
		Deadline:       req.Deadline,
	}

	updated, err := h.jobs.UpdateJob(c.Request.Context(), userID, role, job)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Cancel handles POST /api/jobs/:id/cancel.
func (h *JobHandler) Cancel(c *gin.Context) {
	userID, role, ok := common.Identity(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := h.jobs.CancelJob(c.Request.Context(), userID, role, id); err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "job cancelled"})
}

// Complete handles POST /api/jobs/:id/complete.
func (h *JobHandler) Complete(c *gin.Context) {
	userID, role, ok := common.Identity(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	job, err := h.jobs.CompleteJob(c.Request.Context(), userID, role, id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListApplications handles GET /api/jobs/:id/applications for the job
// owner or an admin.
func (h *JobHandler) ListApplications(c *gin.Context) {
	userID, role, ok := common.Identity(c)
	if !ok {
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	limit, offset := common.GetPagination(c)

	apps, err := h.applications.ListByJob(c.Request.Context(), userID, role, jobID, limit, offset)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondList(c, apps, limit, offset)
}

func optionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
