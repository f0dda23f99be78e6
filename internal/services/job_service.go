package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobboard-api/internal/filestore"
	"jobboard-api/internal/filters"
	"jobboard-api/internal/geocoder"
	"jobboard-api/internal/models"
	"jobboard-api/internal/slug"
	"jobboard-api/internal/storage"
	"jobboard-api/internal/transport/dto"
)

// earthRadiusMiles converts a distance in miles to radians on the sphere.
const earthRadiusMiles = 3963.2

type jobService struct {
	jobRepo  storage.JobRepository
	geocoder geocoder.Geocoder
	files    filestore.Store
	logger   *zap.Logger
}

// NewJobService creates a new instance of JobService.
func NewJobService(jobRepo storage.JobRepository, geo geocoder.Geocoder, files filestore.Store, logger *zap.Logger) JobService {
	return &jobService{jobRepo: jobRepo, geocoder: geo, files: files, logger: logger}
}

func (s *jobService) ListJobs(ctx context.Context, params url.Values) ([]models.Job, filters.Query, error) {
	q, err := filters.Apply(params, filters.JobSchema)
	if err != nil {
		return nil, filters.Query{}, newError(ErrValidation, err.Error())
	}

	jobs, err := s.jobRepo.Find(ctx, q)
	if err != nil {
		return nil, filters.Query{}, mapRepoError(s.logger, err, "listing jobs", nil)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, q, nil
}

func (s *jobService) GetJob(ctx context.Context, id uuid.UUID, jobSlug string) (*models.JobWithOwner, error) {
	job, err := s.jobRepo.GetByIDAndSlug(ctx, id, jobSlug)
	if err != nil {
		return nil, mapRepoError(s.logger, err, "getting job", ErrJobNotFound)
	}
	return job, nil
}

func (s *jobService) CreateJob(ctx context.Context, actor *models.User, req *dto.CreateJobRequest) (*models.Job, error) {
	if actor == nil {
		return nil, ErrLoginRequired
	}

	now := time.Now().UTC()
	job := &models.Job{
		ID:           uuid.New(),
		Title:        req.Title,
		Slug:         slug.Make(req.Title),
		Description:  req.Description,
		Email:        req.Email,
		Address:      req.Address,
		Company:      req.Company,
		Industry:     req.Industry,
		JobType:      req.JobType,
		MinEducation: req.MinEducation,
		Experience:   req.Experience,
		Positions:    1,
		Salary:       req.Salary,
		PostingDate:  now,
		LastDate:     now.Add(models.DefaultApplicationWindow),
		UserID:       actor.ID,
	}
	if req.Positions != nil {
		job.Positions = *req.Positions
	}
	if req.LastDate != nil {
		job.LastDate = req.LastDate.UTC()
	}
	if job.LastDate.Before(job.PostingDate) {
		return nil, ErrInvalidDeadline
	}

	location, err := s.locate(ctx, job.Address, ErrAddressNotFound)
	if err != nil {
		return nil, err
	}
	job.Location = location

	created, err := s.jobRepo.Create(ctx, job)
	if err != nil {
		return nil, mapRepoError(s.logger, err, "creating job", nil)
	}

	s.logger.Info("Job created", zap.String("job_id", created.ID.String()), zap.String("user_id", actor.ID.String()))
	return created, nil
}

func (s *jobService) UpdateJob(ctx context.Context, actor *models.User, id uuid.UUID, req *dto.UpdateJobRequest) (*models.Job, error) {
	existing, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(s.logger, err, "fetching job for update", ErrJobNotFound)
	}

	if !existing.CanBeModifiedBy(actor) {
		s.logger.Warn("Forbidden job update attempt",
			zap.String("job_id", id.String()),
			zap.String("user_id", actorID(actor)),
		)
		return nil, forbidden("update this job")
	}

	job := *existing
	if req.Title != nil {
		job.Title = *req.Title
		job.Slug = slug.Make(job.Title)
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Email != nil {
		job.Email = *req.Email
	}
	if req.Company != nil {
		job.Company = *req.Company
	}
	if req.Industry != nil {
		job.Industry = req.Industry
	}
	if req.JobType != nil {
		job.JobType = *req.JobType
	}
	if req.MinEducation != nil {
		job.MinEducation = *req.MinEducation
	}
	if req.Experience != nil {
		job.Experience = *req.Experience
	}
	if req.Positions != nil {
		job.Positions = *req.Positions
	}
	if req.Salary != nil {
		job.Salary = *req.Salary
	}
	if req.LastDate != nil {
		job.LastDate = req.LastDate.UTC()
	}
	if job.LastDate.Before(job.PostingDate) {
		return nil, ErrInvalidDeadline
	}
	if req.Address != nil && *req.Address != existing.Address {
		location, err := s.locate(ctx, *req.Address, ErrAddressNotFound)
		if err != nil {
			return nil, err
		}
		job.Address = *req.Address
		job.Location = location
	}

	updated, err := s.jobRepo.Update(ctx, &job)
	if err != nil {
		if errors.Is(err, storage.ErrStaleWrite) {
			s.logger.Info("Job changed during update", zap.String("job_id", id.String()))
			return nil, ErrJobModified
		}
		return nil, mapRepoError(s.logger, err, "updating job", ErrJobNotFound)
	}
	return updated, nil
}

func (s *jobService) DeleteJob(ctx context.Context, actor *models.User, id uuid.UUID) error {
	existing, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return mapRepoError(s.logger, err, "fetching job for delete", ErrJobNotFound)
	}

	if !existing.CanBeModifiedBy(actor) {
		s.logger.Warn("Forbidden job delete attempt",
			zap.String("job_id", id.String()),
			zap.String("user_id", actorID(actor)),
		)
		return forbidden("delete this job")
	}

	applicants, err := s.jobRepo.Delete(ctx, id)
	if err != nil {
		return mapRepoError(s.logger, err, "deleting job", ErrJobNotFound)
	}

	// The row is gone; its resumes go too even if the client has disconnected.
	s.removeResumes(context.WithoutCancel(ctx), id, applicants)
	return nil
}

// removeResumes deletes every stored resume concurrently. Failures are logged per file.
func (s *jobService) removeResumes(ctx context.Context, jobID uuid.UUID, applicants []models.Applicant) {
	var wg sync.WaitGroup
	for _, a := range applicants {
		if a.ResumeFilename == "" {
			continue
		}
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			if err := s.files.Delete(ctx, key); err != nil {
				s.logger.Warn("Failed to delete resume",
					zap.String("job_id", jobID.String()),
					zap.String("resume", key),
					zap.Error(err),
				)
			}
		}(a.ResumeFilename)
	}
	wg.Wait()
}

func (s *jobService) JobsInRadius(ctx context.Context, zipcode string, distanceMiles float64) ([]models.Job, error) {
	if !(distanceMiles > 0) || math.IsInf(distanceMiles, 1) {
		return nil, ErrInvalidDistance
	}

	location, err := s.locate(ctx, zipcode, ErrLocationNotFound)
	if err != nil {
		return nil, err
	}

	radius := distanceMiles / earthRadiusMiles
	jobs, err := s.jobRepo.FindWithinRadius(ctx, location.Latitude(), location.Longitude(), radius)
	if err != nil {
		return nil, mapRepoError(s.logger, err, "searching jobs by radius", nil)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

func (s *jobService) Stats(ctx context.Context, topic string) ([]models.ExperienceStats, error) {
	stats, err := s.jobRepo.StatsByExperience(ctx, topic)
	if err != nil {
		return nil, mapRepoError(s.logger, err, "computing job stats", nil)
	}
	if len(stats) == 0 {
		return nil, fmt.Errorf("%w - %s", ErrNoStats, topic)
	}
	return stats, nil
}

func (s *jobService) ListPublished(ctx context.Context, actor *models.User) ([]models.Job, error) {
	if actor == nil {
		return nil, ErrLoginRequired
	}
	jobs, err := s.jobRepo.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, mapRepoError(s.logger, err, "listing published jobs", nil)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

func (s *jobService) ListApplied(ctx context.Context, actor *models.User) ([]models.Job, error) {
	if actor == nil {
		return nil, ErrLoginRequired
	}
	jobs, err := s.jobRepo.ListAppliedBy(ctx, actor.ID)
	if err != nil {
		return nil, mapRepoError(s.logger, err, "listing applied jobs", nil)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

// locate geocodes address; a provider miss becomes notFound.
func (s *jobService) locate(ctx context.Context, address string, notFound error) (*models.Location, error) {
	res, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, geocoder.ErrNoMatch) {
			return nil, notFound
		}
		s.logger.Error("Geocoding failed", zap.String("address", address), zap.Error(err))
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	loc := models.NewPoint(res.Latitude, res.Longitude)
	loc.FormattedAddress = res.FormattedAddress
	loc.City = res.City
	loc.State = res.State
	loc.Zipcode = res.Zipcode
	loc.Country = res.Country
	return &loc, nil
}

func actorID(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.ID.String()
}
