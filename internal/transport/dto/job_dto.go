// internal/transport/dto/job_dto.go
package dto

import (
	"time"

	"jobboard-api/internal/models"
)

// --- Job Request DTOs ---

// CreateJobRequest defines the structure for creating a new job posting.
type CreateJobRequest struct {
	Title        string            `json:"title" validate:"required,max=100"`
	Description  string            `json:"description" validate:"required,max=1000"`
	Email        string            `json:"email" validate:"omitempty,email"`
	Address      string            `json:"address" validate:"required"`
	Company      string            `json:"company" validate:"required"`
	Industry     []models.Industry `json:"industry" validate:"required,min=1,dive,oneof=Business 'Information Technology' Banking Education/Training Telecommunication Others"`
	JobType      models.JobType    `json:"jobType" validate:"required,oneof=Permanent Temporary Internship"`
	MinEducation models.Education  `json:"minEducation" validate:"required,oneof=Bachelors Masters Phd"`
	Experience   models.Experience `json:"experience" validate:"required,oneof='No Experience' '1 Year - 2 Years' '2 Year - 5 Years' '5 Years+'"`
	Positions    *int              `json:"positions" validate:"omitempty,gt=0"` // defaults to 1
	Salary       float64           `json:"salary" validate:"required,gt=0"`
	LastDate     *time.Time        `json:"lastDate"` // defaults to 7 days after posting
}

// UpdateJobRequest carries the fields to change. Nil fields are left as they are.
type UpdateJobRequest struct {
	Title        *string            `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Description  *string            `json:"description,omitempty" validate:"omitempty,min=1,max=1000"`
	Email        *string            `json:"email,omitempty" validate:"omitempty,email"`
	Address      *string            `json:"address,omitempty" validate:"omitempty,min=1"`
	Company      *string            `json:"company,omitempty" validate:"omitempty,min=1"`
	Industry     []models.Industry  `json:"industry,omitempty" validate:"omitempty,min=1,dive,oneof=Business 'Information Technology' Banking Education/Training Telecommunication Others"`
	JobType      *models.JobType    `json:"jobType,omitempty" validate:"omitempty,oneof=Permanent Temporary Internship"`
	MinEducation *models.Education  `json:"minEducation,omitempty" validate:"omitempty,oneof=Bachelors Masters Phd"`
	Experience   *models.Experience `json:"experience,omitempty" validate:"omitempty,oneof='No Experience' '1 Year - 2 Years' '2 Year - 5 Years' '5 Years+'"`
	Positions    *int               `json:"positions,omitempty" validate:"omitempty,gt=0"`
	Salary       *float64           `json:"salary,omitempty" validate:"omitempty,gt=0"`
	LastDate     *time.Time         `json:"lastDate,omitempty"`
}
