package storage

//go:generate mockgen -source=storage.go -destination=../mocks/storage_mock.go -package=mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"jobboard-api/internal/filters"
	"jobboard-api/internal/models"
)

// JobRepository defines the interface for job data operations.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) (*models.Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	GetWithApplicants(ctx context.Context, id uuid.UUID) (*models.Job, error)
	GetByIDAndSlug(ctx context.Context, id uuid.UUID, slug string) (*models.JobWithOwner, error)
	Find(ctx context.Context, q filters.Query) ([]models.Job, error)
	FindWithinRadius(ctx context.Context, latitude, longitude, radius float64) ([]models.Job, error) // radius in radians
	StatsByExperience(ctx context.Context, topic string) ([]models.ExperienceStats, error)
	Update(ctx context.Context, job *models.Job) (*models.Job, error)
	// Delete removes the job and its applicants, returning the applicants that were removed.
	Delete(ctx context.Context, id uuid.UUID) ([]models.Applicant, error)
	// AddApplicant appends the applicant unless they already applied, in which case it returns ErrConflict.
	AddApplicant(ctx context.Context, jobID uuid.UUID, applicant models.Applicant) error
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.Job, error)
	ListAppliedBy(ctx context.Context, userID uuid.UUID) ([]models.Job, error)
}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	// SetResetToken stores a hashed reset token; a nil tokenHash clears it.
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash *string, expire *time.Time) error
	// ConsumeResetToken sets a new password for the holder of an unexpired token and clears the token in one step.
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*models.User, error)
}

// TokenDenylist records revoked credentials until they expire.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RateLimiter counts hits per key in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (allowed bool, remaining int64, err error)
}
