// internal/api/handlers/interfaces.go
package handlers

import "github.com/gin-gonic/gin"

// JobHandlerInterface defines the methods needed by the job routes.
type JobHandlerInterface interface {
	GetJobs(c *gin.Context)
	GetJob(c *gin.Context)
	CreateJob(c *gin.Context)
	UpdateJob(c *gin.Context)
	DeleteJob(c *gin.Context)
	GetJobsInRadius(c *gin.Context)
	GetStats(c *gin.Context)
	GetPublishedJobs(c *gin.Context)
	GetAppliedJobs(c *gin.Context)
}

// JobApplicationHandlerInterface defines the methods needed by the application routes.
type JobApplicationHandlerInterface interface {
	ApplyToJob(c *gin.Context)
}

// UserHandlerInterface defines the methods needed by the account routes.
type UserHandlerInterface interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	ForgotPassword(c *gin.Context)
	ResetPassword(c *gin.Context)
	GetProfile(c *gin.Context)
	UpdateProfile(c *gin.Context)
	UpdatePassword(c *gin.Context)
	GetUsers(c *gin.Context)
}

// Ensure handlers implement the interfaces (compile-time check)
var _ JobHandlerInterface = (*JobHandler)(nil)
var _ JobApplicationHandlerInterface = (*JobApplicationHandler)(nil)
var _ UserHandlerInterface = (*UserHandler)(nil)
