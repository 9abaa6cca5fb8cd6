package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/juajobs/juajobs-backend/internal/dto"
	"github.com/juajobs/juajobs-backend/internal/logger"
	"github.com/juajobs/juajobs-backend/internal/pkg/apperror"
)

// ErrorHandler recovers from handler panics and drains gin errors that
// were deferred with c.Error instead of being written directly. Internal
// details never reach the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if logger.Log != nil {
					logger.Log.WithFields(logrus.Fields{
						"panic": r,
						"path":  c.Request.URL.Path,
						"stack": string(debug.Stack()),
					}).Error("recovered from handler panic")
				}
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
						Error: dto.ErrorBody{Code: "INTERNAL_ERROR", Message: "internal server error"},
					})
				}
			}
		}()

		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("request error")
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
				Error: dto.ErrorBody{Code: string(appErr.Code), Message: appErr.Message},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: dto.ErrorBody{Code: "INTERNAL_ERROR", Message: "internal server error"},
		})
	}
}
