package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"jobboard-api/internal/api/middleware"
	"jobboard-api/internal/transport/dto"
)

// FormatValidationErrors maps each failing field to a readable message.
func FormatValidationErrors(err error) map[string]string {
	errorsMap := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorsMap["error"] = "Invalid validation error type"
		return errorsMap
	}
	for _, fieldError := range validationErrors {
		fieldName := fieldError.Field()
		errorsMap[fieldName] = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", fieldName, fieldError.Tag())
		switch fieldError.Tag() {
		case "required":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' is required", fieldName)
		case "email":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' must be a valid email address", fieldName)
		case "min":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' must be at least %s", fieldName, fieldError.Param())
		case "max":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' must be at most %s", fieldName, fieldError.Param())
		case "gt":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' must be greater than %s", fieldName, fieldError.Param())
		case "oneof":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' must be one of: %s", fieldName, fieldError.Param())
		case "eqfield":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' must match '%s'", fieldName, fieldError.Param())
		}
	}
	return errorsMap
}

// bindJSON decodes and validates the request body, writing a 400 on failure.
func bindJSON(c *gin.Context, validate *validator.Validate, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.Error("Invalid request body: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		details := FormatValidationErrors(err)
		resp := dto.Error("Validation failed")
		resp.Data = details
		c.AbortWithStatusJSON(http.StatusBadRequest, resp)
		return false
	}
	return true
}

// parseUUIDParam reads a uuid path parameter, writing a 400 on failure.
func parseUUIDParam(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.Error(fmt.Sprintf("Invalid %s ID format", what)))
		return uuid.Nil, false
	}
	return id, true
}

// CookieOptions control the session cookie.
type CookieOptions struct {
	MaxAge time.Duration
	Secure bool
}

func setTokenCookie(c *gin.Context, opts CookieOptions, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(opts.MaxAge.Seconds()), "/", "", opts.Secure, true)
}

func clearTokenCookie(c *gin.Context, opts CookieOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", opts.Secure, true)
}
