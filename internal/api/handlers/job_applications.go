package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobboard-api/internal/api/middleware"
	"jobboard-api/internal/services"
	"jobboard-api/internal/transport/dto"
)

// resumeField is the multipart field carrying the resume.
const resumeField = "file"

// multipartOverhead is the slack allowed on top of the file size for boundaries and part headers.
const multipartOverhead = 64 << 10

// JobApplicationHandler holds dependencies for the application workflow.
type JobApplicationHandler struct {
	service     services.JobApplicationService
	maxBodySize int64
	logger      *zap.Logger
}

// NewJobApplicationHandler creates a new JobApplicationHandler. Request bodies
// larger than maxFileSize plus multipart framing are refused before parsing.
func NewJobApplicationHandler(service services.JobApplicationService, maxFileSize int64, logger *zap.Logger) *JobApplicationHandler {
	return &JobApplicationHandler{service: service, maxBodySize: maxFileSize + multipartOverhead, logger: logger}
}

// ApplyToJob godoc
//
//	@Summary		Apply for a job
//	@Description	Uploads a resume (.pdf, .doc, .docx) and records the caller as an applicant.
//	@Tags			job_applications
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string			true	"Job ID to apply for"	Format(uuid)
//	@Param			file	formData	file			true	"Resume"
//	@Success		200		{object}	dto.Response	"Applied to job successfully"
//	@Failure		400		{object}	dto.Response	"Deadline passed, missing file, unsupported type or too large"
//	@Failure		401		{object}	dto.Response	"Unauthorized"
//	@Failure		404		{object}	dto.Response	"Job not found"
//	@Failure		409		{object}	dto.Response	"Already applied"
//	@Failure		500		{object}	dto.Response	"Internal Server Error"
//	@Router			/job/{id}/apply [put]
//	@Security		BearerAuth
func (h *JobApplicationHandler) ApplyToJob(c *gin.Context) {
	user, err := middleware.GetUserFromContext(c)
	if err != nil {
		respondError(c, h.logger, services.ErrLoginRequired)
		return
	}
	jobID, ok := parseUUIDParam(c, "id", "job")
	if !ok {
		return
	}

	if c.Request.ContentLength > h.maxBodySize {
		respondError(c, h.logger, services.ErrFileTooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodySize)

	var upload *services.ResumeUpload
	var tooLarge *http.MaxBytesError
	header, err := c.FormFile(resumeField)
	switch {
	case err == nil:
		file, err := header.Open()
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		defer file.Close()
		upload = &services.ResumeUpload{Filename: header.Filename, Size: header.Size, Content: file}
	case errors.As(err, &tooLarge):
		respondError(c, h.logger, services.ErrFileTooLarge)
		return
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// the service reports the missing file after its job checks
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.Error("Invalid multipart form: "+err.Error()))
		return
	}

	key, err := h.service.Apply(c.Request.Context(), user, jobID, upload)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.Message("Applied to job successfully", key))
}
