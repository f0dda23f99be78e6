package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobboard-api/internal/services"
	"jobboard-api/internal/transport/dto"
)

const internalErrorMessage = "Internal Server Error"

// statusFor maps the service error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrResourceLimit):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the failure envelope. Unexpected errors are logged and
// answered with a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		var svcErr *services.Error
		if errors.As(err, &svcErr) {
			message = svcErr.Error()
		} else {
			message = internalErrorMessage
		}
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, dto.Error(message))
}
