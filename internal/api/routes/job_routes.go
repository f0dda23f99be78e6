package routes

import (
	"github.com/gin-gonic/gin"

	"jobboard-api/internal/api/handlers"
	"jobboard-api/internal/api/middleware"
	"jobboard-api/internal/models"
)

// RegisterJobRoutes registers all routes related to jobs.
// Reads are public; writes require an employer or admin.
func RegisterJobRoutes(
	rg *gin.RouterGroup, // Base group (e.g., /api/v1)
	jobHandler handlers.JobHandlerInterface,
	authMiddleware gin.HandlerFunc,
) {
	rg.GET("/jobs", jobHandler.GetJobs)
	rg.GET("/job/:id/:slug", jobHandler.GetJob)
	rg.GET("/jobs/:zipcode/:distance", jobHandler.GetJobsInRadius)
	rg.GET("/stats/:topic", jobHandler.GetStats)

	// Static segments win over /jobs/:zipcode/:distance in gin's tree.
	mine := rg.Group("/jobs")
	mine.Use(authMiddleware)
	{
		mine.GET("/applied", jobHandler.GetAppliedJobs)
		mine.GET("/published", middleware.AuthorizeRoles(models.RoleEmployer, models.RoleAdmin), jobHandler.GetPublishedJobs)
	}

	manage := rg.Group("/job")
	manage.Use(authMiddleware, middleware.AuthorizeRoles(models.RoleEmployer, models.RoleAdmin))
	{
		manage.POST("/new", jobHandler.CreateJob)
		manage.PUT("/:id", jobHandler.UpdateJob)
		manage.DELETE("/:id", jobHandler.DeleteJob)
	}
}
