package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobboard-api/internal/filestore"
	"jobboard-api/internal/models"
	"jobboard-api/internal/storage"
)

// UploadPolicy limits accepted resumes.
type UploadPolicy struct {
	MaxFileSize       int64
	AllowedExtensions []string // compared case-sensitively, with the leading dot
}

type jobApplicationService struct {
	jobRepo storage.JobRepository
	files   filestore.Store
	policy  UploadPolicy
	logger  *zap.Logger
}

// NewJobApplicationService creates a new instance of JobApplicationService.
func NewJobApplicationService(jobRepo storage.JobRepository, files filestore.Store, policy UploadPolicy, logger *zap.Logger) JobApplicationService {
	return &jobApplicationService{jobRepo: jobRepo, files: files, policy: policy, logger: logger}
}

// Apply runs the application checks in order and stores the resume before recording the applicant.
func (s *jobApplicationService) Apply(ctx context.Context, actor *models.User, jobID uuid.UUID, upload *ResumeUpload) (string, error) {
	if actor == nil {
		return "", ErrLoginRequired
	}

	// 1. Fetch the job with its applicants
	job, err := s.jobRepo.GetWithApplicants(ctx, jobID)
	if err != nil {
		return "", mapRepoError(s.logger, err, fmt.Sprintf("fetching job %s for application", jobID), ErrJobNotFound)
	}

	// 2. Deadline and duplicate checks
	now := time.Now()
	if !job.AcceptsApplicationsAt(now) {
		return "", ErrApplicationsClosed
	}
	if job.HasApplicant(actor.ID) {
		return "", ErrAlreadyApplied
	}

	// 3. File checks
	if upload == nil || upload.Content == nil {
		return "", ErrFileRequired
	}
	ext := path.Ext(upload.Filename)
	if !slices.Contains(s.policy.AllowedExtensions, ext) {
		return "", ErrUnsupportedFileType
	}
	if upload.Size > s.policy.MaxFileSize {
		return "", fmt.Errorf("%w Max size is %s.", ErrFileTooLarge, formatBytes(s.policy.MaxFileSize))
	}

	// 4. Store the resume, then record the application
	key := resumeKey(actor.Name, jobID.String(), ext)
	if err := s.files.Put(ctx, key, upload.Content); err != nil {
		s.logger.Error("Failed to store resume", zap.String("job_id", jobID.String()), zap.String("resume", key), zap.Error(err))
		return "", fmt.Errorf("failed to store resume: %w", err)
	}

	applicant := models.Applicant{ApplicantID: actor.ID, ResumeFilename: key, AppliedAt: now.UTC()}
	if err := s.jobRepo.AddApplicant(ctx, jobID, applicant); err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			// A concurrent request by the same user won; its resume has the same key.
			return "", ErrAlreadyApplied
		case errors.Is(err, storage.ErrNotFound):
			s.discardResume(ctx, jobID, key)
			return "", ErrJobNotFound
		default:
			s.discardResume(ctx, jobID, key)
			return "", mapRepoError(s.logger, err, "recording application", nil)
		}
	}

	s.logger.Info("Applied to job",
		zap.String("job_id", jobID.String()),
		zap.String("user_id", actor.ID.String()),
		zap.String("resume", key),
	)
	return key, nil
}

func (s *jobApplicationService) discardResume(ctx context.Context, jobID uuid.UUID, key string) {
	if err := s.files.Delete(ctx, key); err != nil {
		s.logger.Warn("Orphaned resume left in storage",
			zap.String("job_id", jobID.String()),
			zap.String("resume", key),
			zap.Error(err),
		)
	}
}
