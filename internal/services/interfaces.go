package services

import (
	"context"
	"io"
	"net/url"

	"github.com/google/uuid"

	"jobboard-api/internal/filters"
	"jobboard-api/internal/models"
	"jobboard-api/internal/transport/dto"
)

// JobService defines the interface for job-related business logic.
type JobService interface {
	ListJobs(ctx context.Context, params url.Values) ([]models.Job, filters.Query, error)
	GetJob(ctx context.Context, id uuid.UUID, slug string) (*models.JobWithOwner, error)
	CreateJob(ctx context.Context, actor *models.User, req *dto.CreateJobRequest) (*models.Job, error)
	UpdateJob(ctx context.Context, actor *models.User, id uuid.UUID, req *dto.UpdateJobRequest) (*models.Job, error)
	DeleteJob(ctx context.Context, actor *models.User, id uuid.UUID) error
	JobsInRadius(ctx context.Context, zipcode string, distanceMiles float64) ([]models.Job, error)
	Stats(ctx context.Context, topic string) ([]models.ExperienceStats, error)
	ListPublished(ctx context.Context, actor *models.User) ([]models.Job, error)
	ListApplied(ctx context.Context, actor *models.User) ([]models.Job, error)
}

// ResumeUpload is the file attached to an application.
type ResumeUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// JobApplicationService defines the interface for the application workflow.
type JobApplicationService interface {
	// Apply records actor's application to a job and returns the stored resume key.
	// A nil upload means no file was attached.
	Apply(ctx context.Context, actor *models.User, jobID uuid.UUID, upload *ResumeUpload) (string, error)
}

// UserService defines the interface for account and session logic.
type UserService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, *IssuedToken, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*models.User, *IssuedToken, error)
	Authenticate(ctx context.Context, token string) (*models.User, *TokenClaims, error)
	Logout(ctx context.Context, claims *TokenClaims) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, actor *models.User, req *dto.UpdateProfileRequest) (*models.User, error)
	UpdatePassword(ctx context.Context, actor *models.User, req *dto.UpdatePasswordRequest) (*IssuedToken, error)
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, token string, req *dto.ResetPasswordRequest) (*models.User, *IssuedToken, error)
}
