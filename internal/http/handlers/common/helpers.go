// Package common holds helpers shared by all HTTP handlers.
package common

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/juajobs/juajobs-backend/internal/authz"
	"github.com/juajobs/juajobs-backend/internal/dto"
	"github.com/juajobs/juajobs-backend/internal/logger"
	"github.com/juajobs/juajobs-backend/internal/pkg/apperror"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CurrentUserID returns the authenticated user's ID from the context.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	return id, ok
}

// CurrentUserRole returns the authenticated user's role from the context.
func CurrentUserRole(c *gin.Context) (authz.Role, bool) {
	raw, exists := c.Get("role")
	if !exists {
		return "", false
	}
	role, ok := raw.(authz.Role)
	return role, ok
}

// Identity returns both context values, aborting with 401 when missing.
func Identity(c *gin.Context) (uuid.UUID, authz.Role, bool) {
	id, ok := CurrentUserID(c)
	if !ok {
		RespondError(c, apperror.ErrUnauthorized)
		return uuid.Nil, "", false
	}
	role, ok := CurrentUserRole(c)
	if !ok {
		RespondError(c, apperror.ErrUnauthorized)
		return uuid.Nil, "", false
	}
	return id, role, true
}

// ParseUUIDParam reads a UUID path parameter. Routes behind
// middleware.UUIDValidator never hit the error branch.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.New(apperror.ErrCodeValidation, "parameter "+name+" must be a valid UUID")
	}
	return id, nil
}

// GetPagination reads the page/page_size query parameters and
// translates them to the limit/offset the repositories use. Pages are
// 1-based; out-of-range values fall back to the defaults.
func GetPagination(c *gin.Context) (limit, offset int) {
	limit = defaultPageSize
	if raw := c.Query("page_size"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page = v
		}
	}

	return limit, (page - 1) * limit
}

// RespondError maps an error to the API error envelope. Unknown errors
// become 500s and are logged with their cause.
func RespondError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.AbortWithStatusJSON(appErr.HTTPStatus, dto.ErrorResponse{
			Error: dto.ErrorBody{Code: string(appErr.Code), Message: appErr.Message},
		})
		return
	}

	logger.Log.WithError(err).WithFields(map[string]interface{}{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("unhandled error")

	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: dto.ErrorBody{Code: "INTERNAL_ERROR", Message: "internal server error"},
	})
}

// RespondValidation reports a request binding failure.
func RespondValidation(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: dto.ErrorBody{Code: "VALIDATION_ERROR", Message: err.Error()},
	})
}

// RespondList wraps a collection with its paging echoes.
func RespondList(c *gin.Context, items interface{}, limit, offset int) {
	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}
	c.JSON(http.StatusOK, dto.ListResponse{Items: items, Page: page, PageSize: limit})
}
