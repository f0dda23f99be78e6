package handlers_test

import (
	"context"
	"io"
	"net/url"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"jobboard-api/internal/filters"
	"jobboard-api/internal/models"
	"jobboard-api/internal/services"
	"jobboard-api/internal/transport/dto"
)

// MockJobService is a mock type for the services.JobService interface
type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) ListJobs(ctx context.Context, params url.Values) ([]models.Job, filters.Query, error) {
	args := m.Called(ctx, params)
	jobs, _ := args.Get(0).([]models.Job)
	q, _ := args.Get(1).(filters.Query)
	return jobs, q, args.Error(2)
}

func (m *MockJobService) GetJob(ctx context.Context, id uuid.UUID, slug string) (*models.JobWithOwner, error) {
	args := m.Called(ctx, id, slug)
	job, _ := args.Get(0).(*models.JobWithOwner)
	return job, args.Error(1)
}

func (m *MockJobService) CreateJob(ctx context.Context, actor *models.User, req *dto.CreateJobRequest) (*models.Job, error) {
	args := m.Called(ctx, actor, req)
	job, _ := args.Get(0).(*models.Job)
	return job, args.Error(1)
}

func (m *MockJobService) UpdateJob(ctx context.Context, actor *models.User, id uuid.UUID, req *dto.UpdateJobRequest) (*models.Job, error) {
	args := m.Called(ctx, actor, id, req)
	job, _ := args.Get(0).(*models.Job)
	return job, args.Error(1)
}

func (m *MockJobService) DeleteJob(ctx context.Context, actor *models.User, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockJobService) JobsInRadius(ctx context.Context, zipcode string, distanceMiles float64) ([]models.Job, error) {
	args := m.Called(ctx, zipcode, distanceMiles)
	jobs, _ := args.Get(0).([]models.Job)
	return jobs, args.Error(1)
}

func (m *MockJobService) Stats(ctx context.Context, topic string) ([]models.ExperienceStats, error) {
	args := m.Called(ctx, topic)
	stats, _ := args.Get(0).([]models.ExperienceStats)
	return stats, args.Error(1)
}

func (m *MockJobService) ListPublished(ctx context.Context, actor *models.User) ([]models.Job, error) {
	args := m.Called(ctx, actor)
	jobs, _ := args.Get(0).([]models.Job)
	return jobs, args.Error(1)
}

func (m *MockJobService) ListApplied(ctx context.Context, actor *models.User) ([]models.Job, error) {
	args := m.Called(ctx, actor)
	jobs, _ := args.Get(0).([]models.Job)
	return jobs, args.Error(1)
}

// MockJobApplicationService is a mock type for the services.JobApplicationService interface
type MockJobApplicationService struct {
	mock.Mock
}

// Apply drains the upload so tests can assert on what was received.
func (m *MockJobApplicationService) Apply(ctx context.Context, actor *models.User, jobID uuid.UUID, upload *services.ResumeUpload) (string, error) {
	var received *receivedUpload
	if upload != nil {
		body, _ := io.ReadAll(upload.Content)
		received = &receivedUpload{Filename: upload.Filename, Size: upload.Size, Body: string(body)}
	}
	args := m.Called(ctx, actor, jobID, received)
	return args.String(0), args.Error(1)
}

type receivedUpload struct {
	Filename string
	Size     int64
	Body     string
}

// MockUserService is a mock type for the services.UserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, *services.IssuedToken, error) {
	args := m.Called(ctx, req)
	user, _ := args.Get(0).(*models.User)
	token, _ := args.Get(1).(*services.IssuedToken)
	return user, token, args.Error(2)
}

func (m *MockUserService) Login(ctx context.Context, req *dto.LoginRequest) (*models.User, *services.IssuedToken, error) {
	args := m.Called(ctx, req)
	user, _ := args.Get(0).(*models.User)
	token, _ := args.Get(1).(*services.IssuedToken)
	return user, token, args.Error(2)
}

func (m *MockUserService) Authenticate(ctx context.Context, token string) (*models.User, *services.TokenClaims, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*models.User)
	claims, _ := args.Get(1).(*services.TokenClaims)
	return user, claims, args.Error(2)
}

func (m *MockUserService) Logout(ctx context.Context, claims *services.TokenClaims) error {
	return m.Called(ctx, claims).Error(0)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, actor *models.User, req *dto.UpdateProfileRequest) (*models.User, error) {
	args := m.Called(ctx, actor, req)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserService) UpdatePassword(ctx context.Context, actor *models.User, req *dto.UpdatePasswordRequest) (*services.IssuedToken, error) {
	args := m.Called(ctx, actor, req)
	token, _ := args.Get(0).(*services.IssuedToken)
	return token, args.Error(1)
}

func (m *MockUserService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockUserService) ResetPassword(ctx context.Context, token string, req *dto.ResetPasswordRequest) (*models.User, *services.IssuedToken, error) {
	args := m.Called(ctx, token, req)
	user, _ := args.Get(0).(*models.User)
	issued, _ := args.Get(1).(*services.IssuedToken)
	return user, issued, args.Error(2)
}

// Ensure mocks implement the interfaces
var (
	_ services.JobService            = (*MockJobService)(nil)
	_ services.JobApplicationService = (*MockJobApplicationService)(nil)
	_ services.UserService           = (*MockUserService)(nil)
)
