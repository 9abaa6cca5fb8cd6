package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/juajobs/juajobs-backend/internal/dto"
	"github.com/juajobs/juajobs-backend/internal/http/handlers/common"
	"github.com/juajobs/juajobs-backend/internal/models"
	"github.com/juajobs/juajobs-backend/internal/pkg/apperror"
	"github.com/juajobs/juajobs-backend/internal/service"
)

// ApplicationHandler serves job applications.
type ApplicationHandler struct {
	applications *service.ApplicationService
}

func NewApplicationHandler(applications *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// Apply handles POST /api/applications.
func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID, role, ok := common.Identity(c)
	if !ok {
		return
	}

	var req dto.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	app := &models.JobApplication{
		JobID:        req.JobID,
		CoverLetter:  req.CoverLetter,
		ProposedRate: req.ProposedRate,
	}

	created, err := h.applications.Apply(c.Request.Context(), userID, role, app)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Get handles GET /api/applications/:id.
func (h *ApplicationHandler) Get(c *gin.Context) {
	userID, role, ok := common.Identity(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	app, err := h.applications.GetApplication(c.Request.Context(), userID, role, id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// ListMine handles GET /api/applications/mine for the worker.
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID, _, ok := common.Identity(c)
	if !ok {
		return
	}

	limit, offset := common.GetPagination(c)

	apps, err := h.applications.ListMine(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondList(c, apps, limit, offset)
}

// Respond handles POST /api/applications/:id/respond. Action is accept
// or reject. Accepting an application assigns the worker, rejects every
// other pending application and opens a pending payment.
func (h *ApplicationHandler) Respond(c *gin.Context) {
	userID, role, ok := common.Identity(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var req dto.RespondApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	switch req.Action {
	case "accept":
		result, err := h.applications.Accept(c.Request.Context(), userID, role, id, req.Message)
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"application": result.Application,
			"job":         result.Job,
			"payment":     result.Payment,
		})
	case "reject":
		app, err := h.applications.Reject(c.Request.Context(), userID, role, id, req.Message)
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, app)
	default:
		common.RespondError(c, apperror.New(apperror.ErrCodeValidation, "action must be accept or reject"))
	}
}

// Withdraw handles POST /api/applications/:id/withdraw by the worker.
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	userID, _, ok := common.Identity(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	app, err := h.applications.Withdraw(c.Request.Context(), userID, id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}
