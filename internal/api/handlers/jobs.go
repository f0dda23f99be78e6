package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"jobboard-api/internal/api/middleware"
	"jobboard-api/internal/services"
	"jobboard-api/internal/transport/dto"
)

// JobHandler holds dependencies for job operations.
type JobHandler struct {
	service   services.JobService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(service services.JobService, validate *validator.Validate, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		service:   service,
		validator: validate,
		logger:    logger,
	}
}

// GetJobs godoc
// @Summary      List jobs
// @Description  Filters, sorts, projects, searches and paginates job postings. Any job field may be filtered
// @Description  with field=value or field[gt|gte|lt|lte|in]=value.
// @Tags         jobs
// @Produce      json
// @Param        sort   query string false "Comma separated fields, '-' prefix for descending" default(-postingDate)
// @Param        fields query string false "Comma separated fields to return"
// @Param        q      query string false "Full text search over title and description"
// @Param        page   query int    false "Page number" default(1)
// @Param        limit  query int    false "Page size (max 100)" default(10)
// @Success      200 {object}  dto.Response "Jobs with results count"
// @Failure      400 {object}  dto.Response "Invalid filter value"
// @Failure      500 {object}  dto.Response "Internal Server Error"
// @Router       /jobs [get]
func (h *JobHandler) GetJobs(c *gin.Context) {
	jobs, q, err := h.service.ListJobs(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	data, err := dto.ProjectJobs(jobs, q.Fields)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.List(data, len(jobs)))
}

// GetJob godoc
// @Summary      Get a job by ID and slug
// @Description  Retrieves a single job with its owner's name.
// @Tags         jobs
// @Produce      json
// @Param        id   path      string true "Job ID" Format(uuid)
// @Param        slug path      string true "Job slug"
// @Success      200 {object}  dto.Response "Successfully retrieved job"
// @Failure      400 {object}  dto.Response "Invalid ID format"
// @Failure      404 {object}  dto.Response "Job not found"
// @Router       /job/{id}/{slug} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "job")
	if !ok {
		return
	}

	job, err := h.service.GetJob(c.Request.Context(), id, c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(job))
}

// CreateJob godoc
// @Summary      Create a new job posting
// @Description  The caller becomes the owner. The address is geocoded.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        job body      dto.CreateJobRequest true "Job details"
// @Success      201 {object}  dto.Response "Job created"
// @Failure      400 {object}  dto.Response "Bad Request - Invalid input or address"
// @Failure      401 {object}  dto.Response "Unauthorized"
// @Failure      403 {object}  dto.Response "Role not allowed"
// @Failure      500 {object}  dto.Response "Internal Server Error"
// @Router       /job/new [post]
// @Security     BearerAuth
func (h *JobHandler) CreateJob(c *gin.Context) {
	user, err := middleware.GetUserFromContext(c)
	if err != nil {
		respondError(c, h.logger, services.ErrLoginRequired)
		return
	}

	var req dto.CreateJobRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	job, err := h.service.CreateJob(c.Request.Context(), user, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Message("Job created", job))
}

// UpdateJob godoc
// @Summary      Update a job
// @Description  Only the owner or an admin may update a job.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id  path      string               true "Job ID" Format(uuid)
// @Param        job body      dto.UpdateJobRequest true "Fields to change"
// @Success      200 {object}  dto.Response "Job is updated"
// @Failure      400 {object}  dto.Response "Bad Request"
// @Failure      401 {object}  dto.Response "Unauthorized"
// @Failure      403 {object}  dto.Response "Not the owner"
// @Failure      404 {object}  dto.Response "Job not found"
// @Failure      409 {object}  dto.Response "Job changed concurrently"
// @Router       /job/{id} [put]
// @Security     BearerAuth
func (h *JobHandler) UpdateJob(c *gin.Context) {
	user, err := middleware.GetUserFromContext(c)
	if err != nil {
		respondError(c, h.logger, services.ErrLoginRequired)
		return
	}
	id, ok := parseUUIDParam(c, "id", "job")
	if !ok {
		return
	}

	var req dto.UpdateJobRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	job, err := h.service.UpdateJob(c.Request.Context(), user, id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.Message("Job is updated", job))
}

// DeleteJob godoc
// @Summary      Delete a job
// @Description  Only the owner or an admin may delete a job. Stored resumes of its applicants are removed.
// @Tags         jobs
// @Produce      json
// @Param        id  path      string true "Job ID" Format(uuid)
// @Success      200 {object}  dto.Response "Job is deleted"
// @Failure      401 {object}  dto.Response "Unauthorized"
// @Failure      403 {object}  dto.Response "Not the owner"
// @Failure      404 {object}  dto.Response "Job not found"
// @Router       /job/{id} [delete]
// @Security     BearerAuth
func (h *JobHandler) DeleteJob(c *gin.Context) {
	user, err := middleware.GetUserFromContext(c)
	if err != nil {
		respondError(c, h.logger, services.ErrLoginRequired)
		return
	}
	id, ok := parseUUIDParam(c, "id", "job")
	if !ok {
		return
	}

	if err := h.service.DeleteJob(c.Request.Context(), user, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.Message("Job is deleted.", nil))
}

// GetJobsInRadius godoc
// @Summary      Jobs within a distance of a postal code
// @Tags         jobs
// @Produce      json
// @Param        zipcode  path      string true "Postal code"
// @Param        distance path      number true "Distance in miles"
// @Success      200 {object}  dto.Response "Jobs with results count"
// @Failure      400 {object}  dto.Response "Invalid distance"
// @Failure      404 {object}  dto.Response "Location not found"
// @Router       /jobs/{zipcode}/{distance} [get]
func (h *JobHandler) GetJobsInRadius(c *gin.Context) {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		respondError(c, h.logger, services.ErrInvalidDistance)
		return
	}

	jobs, err := h.service.JobsInRadius(c.Request.Context(), c.Param("zipcode"), distance)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.List(jobs, len(jobs)))
}

// GetStats godoc
// @Summary      Salary and position statistics for a topic
// @Description  Groups jobs matching the topic phrase by experience level.
// @Tags         jobs
// @Produce      json
// @Param        topic path      string true "Topic phrase"
// @Success      200 {object}  dto.Response "Stats per experience level"
// @Failure      404 {object}  dto.Response "No stats found"
// @Router       /stats/{topic} [get]
func (h *JobHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.Param("topic"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(stats))
}

// GetPublishedJobs godoc
// @Summary      Jobs published by the caller
// @Tags         jobs
// @Produce      json
// @Success      200 {object}  dto.Response "Jobs with results count"
// @Failure      401 {object}  dto.Response "Unauthorized"
// @Router       /jobs/published [get]
// @Security     BearerAuth
func (h *JobHandler) GetPublishedJobs(c *gin.Context) {
	user, err := middleware.GetUserFromContext(c)
	if err != nil {
		respondError(c, h.logger, services.ErrLoginRequired)
		return
	}

	jobs, err := h.service.ListPublished(c.Request.Context(), user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.List(jobs, len(jobs)))
}

// GetAppliedJobs godoc
// @Summary      Jobs the caller applied to
// @Tags         jobs
// @Produce      json
// @Success      200 {object}  dto.Response "Jobs with results count"
// @Failure      401 {object}  dto.Response "Unauthorized"
// @Router       /jobs/applied [get]
// @Security     BearerAuth
func (h *JobHandler) GetAppliedJobs(c *gin.Context) {
	user, err := middleware.GetUserFromContext(c)
	if err != nil {
		respondError(c, h.logger, services.ErrLoginRequired)
		return
	}

	jobs, err := h.service.ListApplied(c.Request.Context(), user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.List(jobs, len(jobs)))
}
