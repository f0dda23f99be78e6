package routes

import (
	"github.com/gin-gonic/gin"

	"jobboard-api/internal/api/handlers"
)

// RegisterJobApplicationRoutes registers all routes related to job applications.
// Any authenticated user may apply.
func RegisterJobApplicationRoutes(
	rg *gin.RouterGroup,
	jobAppHandler handlers.JobApplicationHandlerInterface,
	authMiddleware gin.HandlerFunc,
) {
	rg.PUT("/job/:id/apply", authMiddleware, jobAppHandler.ApplyToJob)
}
