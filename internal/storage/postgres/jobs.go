// internal/storage/postgres/jobs.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"jobboard-api/internal/filters"
	"jobboard-api/internal/models"
	"jobboard-api/internal/storage"
)

const jobColumns = `id, title, slug, description, email, address, company, industry, job_type,
	min_education, experience, positions, salary, location_lon, location_lat, formatted_address,
	city, state, zipcode, country, posting_date, last_date, user_id, version`

// jobRow mirrors the jobs table. Pointer columns stay nil when not projected.
type jobRow struct {
	ID               uuid.UUID `db:"id"`
	Title            string    `db:"title"`
	Slug             string    `db:"slug"`
	Description      string    `db:"description"`
	Email            string    `db:"email"`
	Address          string    `db:"address"`
	Company          string    `db:"company"`
	Industry         []string  `db:"industry"`
	JobType          string    `db:"job_type"`
	MinEducation     string    `db:"min_education"`
	Experience       string    `db:"experience"`
	Positions        int       `db:"positions"`
	Salary           float64   `db:"salary"`
	LocationLon      *float64  `db:"location_lon"`
	LocationLat      *float64  `db:"location_lat"`
	FormattedAddress string    `db:"formatted_address"`
	City             string    `db:"city"`
	State            string    `db:"state"`
	Zipcode          string    `db:"zipcode"`
	Country          string    `db:"country"`
	PostingDate      time.Time `db:"posting_date"`
	LastDate         time.Time `db:"last_date"`
	UserID           uuid.UUID `db:"user_id"`
	OwnerName        *string   `db:"owner_name"`
	Version          int64     `db:"version"`
}

func (r jobRow) toModel() models.Job {
	job := models.Job{
		ID:           r.ID,
		Title:        r.Title,
		Slug:         r.Slug,
		Description:  r.Description,
		Email:        r.Email,
		Address:      r.Address,
		Company:      r.Company,
		JobType:      models.JobType(r.JobType),
		MinEducation: models.Education(r.MinEducation),
		Experience:   models.Experience(r.Experience),
		Positions:    r.Positions,
		Salary:       r.Salary,
		PostingDate:  r.PostingDate,
		LastDate:     r.LastDate,
		UserID:       r.UserID,
		Version:      r.Version,
	}
	if r.Industry != nil {
		job.Industry = make([]models.Industry, len(r.Industry))
		for i, v := range r.Industry {
			job.Industry[i] = models.Industry(v)
		}
	}
	if r.LocationLat != nil && r.LocationLon != nil {
		loc := models.NewPoint(*r.LocationLat, *r.LocationLon)
		loc.FormattedAddress = r.FormattedAddress
		loc.City = r.City
		loc.State = r.State
		loc.Zipcode = r.Zipcode
		loc.Country = r.Country
		job.Location = &loc
	}
	return job
}

func industryStrings(in []models.Industry) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}

// locationArgs flattens an optional location into column values.
func locationArgs(loc *models.Location) (lon, lat float64, formatted, city, state, zipcode, country string) {
	if loc == nil {
		return 0, 0, "", "", "", "", ""
	}
	return loc.Longitude(), loc.Latitude(), loc.FormattedAddress, loc.City, loc.State, loc.Zipcode, loc.Country
}

// JobRepo implements the storage.JobRepository interface using PostgreSQL.
type JobRepo struct {
	db     Querier
	logger *zap.Logger
}

// NewJobRepo creates a new JobRepo.
func NewJobRepo(db *pgxpool.Pool, logger *zap.Logger) *JobRepo {
	return &JobRepo{db: db, logger: logger}
}

// WithTx creates a new JobRepo with the transaction.
func (r *JobRepo) WithTx(tx pgx.Tx) storage.JobRepository {
	return &JobRepo{db: tx, logger: r.logger}
}

// Compile-time check to ensure JobRepo implements JobRepository
var _ storage.JobRepository = (*JobRepo)(nil)

func (r *JobRepo) collectJobs(ctx context.Context, operation, query string, args ...any) ([]models.Job, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Job query failed", zap.String("operation", operation), zap.Error(err))
		return nil, fmt.Errorf("failed to %s: %w", operation, err)
	}

	scanned, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[jobRow])
	if err != nil {
		r.logger.Error("Job scan failed", zap.String("operation", operation), zap.Error(err))
		return nil, fmt.Errorf("failed to scan jobs for %s: %w", operation, err)
	}

	jobs := make([]models.Job, 0, len(scanned)) // Return empty slice, not nil
	for _, row := range scanned {
		jobs = append(jobs, row.toModel())
	}
	return jobs, nil
}

func (r *JobRepo) getOne(ctx context.Context, query string, args ...any) (*models.Job, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[jobRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	job := row.toModel()
	return &job, nil
}

// Create saves a new job posting.
func (r *JobRepo) Create(ctx context.Context, job *models.Job) (*models.Job, error) {
	lon, lat, formatted, city, state, zipcode, country := locationArgs(job.Location)

	query := `
		INSERT INTO jobs (id, title, slug, description, email, address, company, industry, job_type,
			min_education, experience, positions, salary, location_lon, location_lat, formatted_address,
			city, state, zipcode, country, posting_date, last_date, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING ` + jobColumns

	created, err := r.getOne(ctx, query,
		job.ID,
		job.Title,
		job.Slug,
		job.Description,
		job.Email,
		job.Address,
		job.Company,
		industryStrings(job.Industry),
		string(job.JobType),
		string(job.MinEducation),
		string(job.Experience),
		job.Positions,
		job.Salary,
		lon, lat, formatted, city, state, zipcode, country,
		job.PostingDate,
		job.LastDate,
		job.UserID,
	)
	if err != nil {
		switch pgErrorCode(err) {
		case pgForeignKeyViolation:
			return nil, fmt.Errorf("failed to create job: unknown owner %s: %w", job.UserID, storage.ErrConflict)
		case pgUniqueViolation, pgCheckViolation:
			return nil, fmt.Errorf("failed to create job: %v: %w", err, storage.ErrConflict)
		}
		r.logger.Error("Error creating job", zap.Error(err))
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	r.logger.Info("Job created", zap.String("job_id", created.ID.String()))
	return created, nil
}

// GetByID retrieves a job without its applicants.
func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	job, err := r.getOne(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		r.logger.Error("Error getting job", zap.String("job_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get job by ID %s: %w", id, err)
	}
	return job, nil
}

// GetWithApplicants retrieves a job and its applicants in application order.
func (r *JobRepo) GetWithApplicants(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	job, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applicants, err := r.listApplicants(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	job.ApplicantsApplied = applicants
	return job, nil
}

func (r *JobRepo) listApplicants(ctx context.Context, db Querier, jobID uuid.UUID) ([]models.Applicant, error) {
	rows, err := db.Query(ctx, `
		SELECT applicant_id, resume_filename, applied_at
		FROM job_applicants
		WHERE job_id = $1
		ORDER BY seq`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query applicants of job %s: %w", jobID, err)
	}

	applicants, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Applicant, error) {
		var a models.Applicant
		err := row.Scan(&a.ApplicantID, &a.ResumeFilename, &a.AppliedAt)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan applicants of job %s: %w", jobID, err)
	}
	return applicants, nil
}

// GetByIDAndSlug retrieves a job by id and slug together with its owner's name.
func (r *JobRepo) GetByIDAndSlug(ctx context.Context, id uuid.UUID, slug string) (*models.JobWithOwner, error) {
	query := `SELECT ` + prefixed("j", jobColumns) + `, u.name AS owner_name
		FROM jobs j
		JOIN users u ON u.id = j.user_id
		WHERE j.id = $1 AND j.slug = $2`

	rows, err := r.db.Query(ctx, query, id, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[jobRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		r.logger.Error("Error getting job by slug", zap.String("job_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}

	out := &models.JobWithOwner{Job: row.toModel()}
	out.Owner.ID = row.UserID
	if row.OwnerName != nil {
		out.Owner.Name = *row.OwnerName
	}
	return out, nil
}

// Find runs a filter-engine query.
func (r *JobRepo) Find(ctx context.Context, q filters.Query) ([]models.Job, error) {
	var args []any
	query := buildJobListQuery(q, &args)
	return r.collectJobs(ctx, "find jobs", query, args...)
}

// FindWithinRadius returns jobs whose great-circle distance from the
// center, in radians of a unit sphere, is at most radius.
func (r *JobRepo) FindWithinRadius(ctx context.Context, latitude, longitude, radius float64) ([]models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs
		WHERE 2 * asin(least(1.0, sqrt(
			power(sin(radians(location_lat - $1) / 2), 2) +
			cos(radians($1)) * cos(radians(location_lat)) * power(sin(radians(location_lon - $2) / 2), 2)
		))) <= $3`
	return r.collectJobs(ctx, "find jobs within radius", query, latitude, longitude, radius)
}

// StatsByExperience groups jobs matching topic as a phrase by upper-cased experience.
func (r *JobRepo) StatsByExperience(ctx context.Context, topic string) ([]models.ExperienceStats, error) {
	query := `
		SELECT upper(experience)                AS experience,
		       count(*)                         AS total_jobs,
		       avg(positions)::double precision AS avg_positions,
		       avg(salary)::double precision    AS avg_salary,
		       min(salary)                      AS min_salary,
		       max(salary)                      AS max_salary
		FROM jobs
		WHERE search_vector @@ websearch_to_tsquery('english', $1)
		GROUP BY upper(experience)
		ORDER BY upper(experience)`

	rows, err := r.db.Query(ctx, query, phraseQuery(topic))
	if err != nil {
		r.logger.Error("Error querying job stats", zap.String("topic", topic), zap.Error(err))
		return nil, fmt.Errorf("failed to query job stats: %w", err)
	}

	stats, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.ExperienceStats])
	if err != nil {
		return nil, fmt.Errorf("failed to scan job stats: %w", err)
	}
	return stats, nil
}

// Update writes every mutable field of job if the stored version still equals
// job.Version, returning ErrStaleWrite otherwise. The owner and posting date never change.
func (r *JobRepo) Update(ctx context.Context, job *models.Job) (*models.Job, error) {
	lon, lat, formatted, city, state, zipcode, country := locationArgs(job.Location)

	query := `
		UPDATE jobs
		SET title = $2, slug = $3, description = $4, email = $5, address = $6, company = $7,
			industry = $8, job_type = $9, min_education = $10, experience = $11, positions = $12,
			salary = $13, location_lon = $14, location_lat = $15, formatted_address = $16,
			city = $17, state = $18, zipcode = $19, country = $20, last_date = $21,
			version = version + 1
		WHERE id = $1 AND version = $22
		RETURNING ` + jobColumns

	updated, err := r.getOne(ctx, query,
		job.ID,
		job.Title,
		job.Slug,
		job.Description,
		job.Email,
		job.Address,
		job.Company,
		industryStrings(job.Industry),
		string(job.JobType),
		string(job.MinEducation),
		string(job.Experience),
		job.Positions,
		job.Salary,
		lon, lat, formatted, city, state, zipcode, country,
		job.LastDate,
		job.Version,
	)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, r.missingOrStale(ctx, job.ID)
		}
		if pgErrorCode(err) == pgCheckViolation {
			return nil, fmt.Errorf("failed to update job %s: %v: %w", job.ID, err, storage.ErrConflict)
		}
		r.logger.Error("Error updating job", zap.String("job_id", job.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to update job %s: %w", job.ID, err)
	}

	r.logger.Info("Job updated", zap.String("job_id", updated.ID.String()))
	return updated, nil
}

// missingOrStale tells a deleted job from one whose version moved on.
func (r *JobRepo) missingOrStale(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check job %s: %w", id, err)
	}
	if exists {
		return storage.ErrStaleWrite
	}
	return storage.ErrNotFound
}

// Delete removes a job and its applicants in one transaction.
func (r *JobRepo) Delete(ctx context.Context, id uuid.UUID) ([]models.Applicant, error) {
	var removed []models.Applicant
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		applicants, err := r.listApplicants(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM job_applicants WHERE job_id = $1`, id); err != nil {
			return err
		}
		cmdTag, err := tx.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if cmdTag.RowsAffected() == 0 {
			return storage.ErrNotFound
		}
		removed = applicants
		return nil
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		r.logger.Error("Error deleting job", zap.String("job_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to delete job %s: %w", id, err)
	}

	r.logger.Info("Job deleted", zap.String("job_id", id.String()), zap.Int("applicants", len(removed)))
	return removed, nil
}

// AddApplicant records an application unless the applicant already applied to the job.
func (r *JobRepo) AddApplicant(ctx context.Context, jobID uuid.UUID, applicant models.Applicant) error {
	query := `
		INSERT INTO job_applicants (job_id, applicant_id, resume_filename, applied_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (job_id, applicant_id) DO NOTHING`

	cmdTag, err := r.db.Exec(ctx, query, jobID, applicant.ApplicantID, applicant.ResumeFilename, applicant.AppliedAt)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return fmt.Errorf("job %s or applicant %s no longer exists: %w", jobID, applicant.ApplicantID, storage.ErrNotFound)
		}
		r.logger.Error("Error adding applicant", zap.String("job_id", jobID.String()), zap.Error(err))
		return fmt.Errorf("failed to add applicant to job %s: %w", jobID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("applicant %s already applied to job %s: %w", applicant.ApplicantID, jobID, storage.ErrConflict)
	}
	return nil
}

// ListByOwner returns the jobs published by userID, newest first.
func (r *JobRepo) ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE user_id = $1 ORDER BY posting_date DESC, id`
	return r.collectJobs(ctx, "list jobs by owner", query, userID)
}

// ListAppliedBy returns the jobs userID applied to, most recent application first.
func (r *JobRepo) ListAppliedBy(ctx context.Context, userID uuid.UUID) ([]models.Job, error) {
	query := `SELECT ` + prefixed("j", jobColumns) + `
		FROM jobs j
		JOIN job_applicants a ON a.job_id = j.id
		WHERE a.applicant_id = $1
		ORDER BY a.applied_at DESC, j.id`
	return r.collectJobs(ctx, "list jobs applied by user", query, userID)
}

func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
