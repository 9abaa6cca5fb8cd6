package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/juajobs/juajobs-backend/internal/dto"
	"github.com/juajobs/juajobs-backend/internal/http/handlers/common"
	"github.com/juajobs/juajobs-backend/internal/service"
)

// ReviewHandler serves reviews and rating stats.
type ReviewHandler struct {
	reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Create handles POST /api/reviews. Only participants of a completed job
// may review, and only each other.
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, _, ok := common.Identity(c)
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	review, err := h.reviews.CreateReview(c.Request.Context(), userID, req.JobID, req.Rating, req.Comment)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// Get handles GET /api/reviews/:id.
func (h *ReviewHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	review, err := h.reviews.GetReview(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// ListForUser handles GET /api/users/:id/reviews.
func (h *ReviewHandler) ListForUser(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	limit, offset := common.GetPagination(c)

	reviews, err := h.reviews.ListUserReviews(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondList(c, reviews, limit, offset)
}

// ListForJob handles GET /api/jobs/:id/reviews.
func (h *ReviewHandler) ListForJob(c *gin.Context) {
	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	reviews, err := h.reviews.ListJobReviews(c.Request.Context(), jobID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// Respond handles POST /api/reviews/:id/respond. Only the review subject
// may respond, once.
func (h *ReviewHandler) Respond(c *gin.Context) {
	userID, _, ok := common.Identity(c)
	if !ok {
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var req dto.ReviewResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondValidation(c, err)
		return
	}

	review, err := h.reviews.Respond(c.Request.Context(), userID, id, req.Response)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// Stats handles GET /api/users/:id/rating.
func (h *ReviewHandler) Stats(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	stats, err := h.reviews.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
