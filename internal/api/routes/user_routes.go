package routes

import (
	"github.com/gin-gonic/gin"

	"jobboard-api/internal/api/handlers"
	"jobboard-api/internal/api/middleware"
	"jobboard-api/internal/models"
)

// RegisterUserRoutes registers account, password and user administration routes.
func RegisterUserRoutes(rg *gin.RouterGroup, userHandler handlers.UserHandlerInterface, authMiddleware gin.HandlerFunc) {
	// --- Authentication Routes ---
	rg.POST("/register", userHandler.Register)
	rg.POST("/login", userHandler.Login)
	rg.POST("/password/forgot", userHandler.ForgotPassword)
	rg.PUT("/password/reset/:token", userHandler.ResetPassword)

	account := rg.Group("")
	account.Use(authMiddleware)
	{
		account.GET("/logout", userHandler.Logout)
		account.POST("/logout", userHandler.Logout)
		account.GET("/me", userHandler.GetProfile)
		account.PUT("/me/update", userHandler.UpdateProfile)
		account.PUT("/password/update", userHandler.UpdatePassword)
		account.GET("/users", middleware.AuthorizeRoles(models.RoleAdmin), userHandler.GetUsers)
	}
}
