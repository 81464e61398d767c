package middleware

import (
	"net/http"

	apperrors "github.com/SaveNTravel/saventravel-backend/errors"
	"github.com/SaveNTravel/saventravel-backend/logger"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON error body returned to clients.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler converts errors attached to the gin context into structured
// JSON responses. Application errors map to their HTTP status; anything else
// becomes a sanitized 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		log := logger.GetLogger()

		if appError, ok := err.(*apperrors.AppError); ok {
			status := appError.GetHTTPStatus()
			log.Warnw("Request failed",
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"status", status,
				"errorType", appError.Type,
				"message", appError.Message,
				"detail", appError.Detail,
				"requestID", c.GetString(RequestIDKey),
			)
			c.JSON(status, ErrorResponse{
				Type:    string(appError.Type),
				Message: appError.Message,
				Details: appError.Detail,
			})
			return
		}

		log.Errorw("Unhandled error",
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"error", err,
			"requestID", c.GetString(RequestIDKey),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Type:    string(apperrors.ServerError),
			Message: "Internal server error",
		})
	}
}
