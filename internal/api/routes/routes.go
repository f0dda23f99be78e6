package routes

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"jobboard-api/internal/api/handlers"
	"jobboard-api/internal/api/middleware"
	"jobboard-api/internal/app"
	"jobboard-api/internal/transport/dto"
)

// RegisterRoutes sets up the API routes by calling resource-specific registration functions
func RegisterRoutes(router *gin.Engine, app *app.Application) {
	// --- Base API Group ---
	apiV1 := router.Group("/api/v1")

	cookie := handlers.CookieOptions{MaxAge: app.Config.JWT.CookieExpiration, Secure: app.Config.JWT.SecureCookie}
	userHandler := handlers.NewUserHandler(app.UserService, app.Validator, cookie, app.Logger)
	jobHandler := handlers.NewJobHandler(app.JobService, app.Validator, app.Logger)
	jobAppHandler := handlers.NewJobApplicationHandler(app.JobApplicationService, app.Config.Uploads.MaxFileSize, app.Logger)

	authMiddleware := middleware.JWTAuthMiddleware(app.UserService, app.Logger)

	RegisterUserRoutes(apiV1, userHandler, authMiddleware)
	RegisterJobRoutes(apiV1, jobHandler, authMiddleware)
	RegisterJobApplicationRoutes(apiV1, jobAppHandler, authMiddleware)

	// --- Health Check ---
	deps := map[string]handlers.Pinger{}
	if app.DBPool != nil {
		deps["postgres"] = app.DBPool
	}
	if app.RedisClient != nil {
		deps["redis"] = redisPinger{app.RedisClient}
	}
	router.GET("/health", handlers.HealthCheck(deps))

	app.Logger.Debug("Configuring Swagger UI handler")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.NoRoute(NotFound)
}

// NotFound answers requests that matched no route.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.Error(fmt.Sprintf("%s route not found", c.Request.URL.Path)))
}

type redisPinger struct {
	rdb *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	if err := p.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
