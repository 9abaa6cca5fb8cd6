package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/juajobs/juajobs-backend/internal/dto"
)

// UUIDValidator checks that the named path parameter is a valid UUID.
// Usage: router.GET("/jobs/:id", UUIDValidator("id"), handler.GetJob)
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param(paramName)
		if idStr == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: dto.ErrorBody{Code: "VALIDATION_ERROR", Message: "parameter " + paramName + " is required"},
			})
			return
		}

		if _, err := uuid.Parse(idStr); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: dto.ErrorBody{Code: "VALIDATION_ERROR", Message: "parameter " + paramName + " must be a valid UUID"},
			})
			return
		}

		c.Next()
	}
}
