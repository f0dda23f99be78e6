package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"jobboard-api/internal/api/middleware"
	"jobboard-api/internal/services"
	"jobboard-api/internal/transport/dto"
)

// UserHandler holds dependencies for account and session operations
type UserHandler struct {
	service   services.UserService
	validator *validator.Validate
	cookie    CookieOptions
	logger    *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service services.UserService, validate *validator.Validate, cookie CookieOptions, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: service, validator: validate, cookie: cookie, logger: logger}
}

func (h *UserHandler) sendToken(c *gin.Context, status int, token *services.IssuedToken) {
	setTokenCookie(c, h.cookie, token.Value)
	c.JSON(status, dto.Response{Success: true, Token: token.Value})
}

// Register godoc
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        user body      dto.RegisterRequest true "Account details"
// @Success      201  {object}  dto.Response "Token issued"
// @Failure      400  {object}  dto.Response "Bad Request - Invalid input"
// @Failure      409  {object}  dto.Response "Duplicate email"
// @Router       /register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	_, token, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.sendToken(c, http.StatusCreated, token)
}

// Login godoc
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials body      dto.LoginRequest true "Email and password"
// @Success      200  {object}  dto.Response "Token issued"
// @Failure      400  {object}  dto.Response "Bad Request - Invalid input"
// @Failure      401  {object}  dto.Response "Invalid Email or Password"
// @Router       /login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	_, token, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.sendToken(c, http.StatusOK, token)
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the current token and clears the cookie.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.Response "Logged out"
// @Failure      401  {object}  dto.Response "Unauthorized"
// @Router       /logout [post]
// @Security     BearerAuth
func (h *UserHandler) Logout(c *gin.Context) {
	claims, err := middleware.GetClaimsFromContext(c)
	if err != nil {
		respondError(c, h.logger, services.ErrLoginRequired)
		return
	}
	if err := h.service.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, h.logger, err)
		return
	}
	clearTokenCookie(c, h.cookie)
	c.JSON(http.StatusOK, dto.Message("Logged out successfully.", nil))
}

// ForgotPassword godoc
// @Summary      Request a password reset email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body      dto.ForgotPasswordRequest true "Account email"
// @Success      200  {object}  dto.Response "Email sent"
// @Failure      404  {object}  dto.Response "User not found"
// @Failure      500  {object}  dto.Response "Email is not sent."
// @Router       /password/forgot [post]
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.Message(fmt.Sprintf("Email sent to: %s", req.Email), nil))
}

// ResetPassword godoc
// @Summary      Reset a password with an emailed token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token path      string                   true "Reset token"
// @Param        body  body      dto.ResetPasswordRequest true "New password"
// @Success      200  {object}  dto.Response "Token issued"
// @Failure      400  {object}  dto.Response "Invalid or expired token, or passwords do not match"
// @Router       /password/reset/{token} [put]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.Error("Invalid request body: "+err.Error()))
		return
	}
	// Mismatched passwords get their own message, so check before the struct tags.
	if req.Password != req.ConfirmPassword {
		respondError(c, h.logger, services.ErrPasswordMismatch)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		resp := dto.Error("Validation failed")
		resp.Data = FormatValidationErrors(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, resp)
		return
	}

	_, token, err := h.service.ResetPassword(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.sendToken(c, http.StatusOK, token)
}

// GetProfile godoc
// @Summary      Current user's profile
// @Tags         users
// @Produce      json
// @Success      200  {object}  dto.Response "Profile"
// @Failure      401  {object}  dto.Response "Unauthorized"
// @Router       /me [get]
// @Security     BearerAuth
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := middleware.GetUserFromContext(c)
	if err != nil {
		respondError(c, h.logger, services.ErrLoginRequired)
		return
	}
	c.JSON(http.StatusOK, dto.OK(user))
}

// UpdateProfile godoc
// @Summary      Update name and email
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body body      dto.UpdateProfileRequest true "Profile fields"
// @Success      200  {object}  dto.Response "Updated profile"
// @Failure      400  {object}  dto.Response "Bad Request"
// @Failure      409  {object}  dto.Response "Duplicate email"
// @Router       /me/update [put]
// @Security     BearerAuth
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, err := middleware.GetUserFromContext(c)
	if err != nil {
		respondError(c, h.logger, services.ErrLoginRequired)
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	updated, err := h.service.UpdateProfile(c.Request.Context(), user, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(updated))
}

// UpdatePassword godoc
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body body      dto.UpdatePasswordRequest true "Current and new password"
// @Success      200  {object}  dto.Response "Token issued"
// @Failure      401  {object}  dto.Response "Old Password is incorrect."
// @Router       /password/update [put]
// @Security     BearerAuth
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	user, err := middleware.GetUserFromContext(c)
	if err != nil {
		respondError(c, h.logger, services.ErrLoginRequired)
		return
	}
	var req dto.UpdatePasswordRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	token, err := h.service.UpdatePassword(c.Request.Context(), user, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.sendToken(c, http.StatusOK, token)
}

// GetUsers godoc
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Success      200  {object}  dto.Response "Users with results count"
// @Failure      403  {object}  dto.Response "Admin only"
// @Router       /users [get]
// @Security     BearerAuth
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.List(users, len(users)))
}
