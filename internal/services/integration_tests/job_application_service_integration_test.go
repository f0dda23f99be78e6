//go:build integration

package integration_tests

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"jobboard-api/internal/filestore"
	"jobboard-api/internal/models"
	"jobboard-api/internal/services"
	"jobboard-api/internal/storage/postgres"
)

type applicationFixture struct {
	ctx      context.Context
	jobs     services.JobService
	apply    services.JobApplicationService
	files    *filestore.FS
	jobRepo  *postgres.JobRepo
	employer *models.User
}

func setupJobApplicationServiceIntegrationTest(t *testing.T) *applicationFixture {
	t.Helper()
	cleanupTables(t)
	logger := zaptest.NewLogger(t)
	files, err := filestore.NewFS(afero.NewMemMapFs(), "/uploads")
	require.NoError(t, err)
	jobRepo := postgres.NewJobRepo(testDB, logger)
	ctx := context.Background()

	return &applicationFixture{
		ctx:   ctx,
		jobs:  services.NewJobService(jobRepo, fixedGeocoder, files, logger),
		apply: services.NewJobApplicationService(jobRepo, files, services.UploadPolicy{
			MaxFileSize:       2 * 1024 * 1024,
			AllowedExtensions: []string{".pdf", ".doc", ".docx"},
		}, logger),
		files:    files,
		jobRepo:  jobRepo,
		employer: createTestUser(t, ctx, "Acme HR", "hr@acme.com", models.RoleEmployer),
	}
}

func (f *applicationFixture) createJob(t *testing.T) *models.Job {
	t.Helper()
	job, err := f.jobs.CreateJob(f.ctx, f.employer, newJobRequest("Go Developer", "1 Beacon St, Boston", 80000))
	require.NoError(t, err)
	return job
}

func resume(name, body string) *services.ResumeUpload {
	return &services.ResumeUpload{Filename: name, Size: int64(len(body)), Content: strings.NewReader(body)}
}

func TestJobApplicationService_Integration_ApplyToJob(t *testing.T) {
	f := setupJobApplicationServiceIntegrationTest(t)
	seeker := createTestUser(t, f.ctx, "Jane  Doe", "jane@example.com", models.RoleSeeker)
	job := f.createJob(t)

	key, err := f.apply.Apply(f.ctx, seeker, job.ID, resume("cv.pdf", "%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "Jane-Doe_"+job.ID.String()+".pdf", key)

	exists, err := f.files.Exists(f.ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	stored, err := f.jobRepo.GetWithApplicants(f.ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, stored.ApplicantsApplied, 1)
	assert.Equal(t, seeker.ID, stored.ApplicantsApplied[0].ApplicantID)
	assert.Equal(t, key, stored.ApplicantsApplied[0].ResumeFilename)

	_, err = f.apply.Apply(f.ctx, seeker, job.ID, resume("cv.pdf", "%PDF-1.4"))
	assert.ErrorIs(t, err, services.ErrAlreadyApplied)

	applied, err := f.jobs.ListApplied(f.ctx, seeker)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, job.ID, applied[0].ID)
}

func TestJobApplicationService_Integration_Rejections(t *testing.T) {
	f := setupJobApplicationServiceIntegrationTest(t)
	seeker := createTestUser(t, f.ctx, "Jane Doe", "jane@example.com", models.RoleSeeker)
	job := f.createJob(t)

	tests := []struct {
		name        string
		jobID       uuid.UUID
		upload      *services.ResumeUpload
		expectedErr error
	}{
		{"unknown job", uuid.New(), resume("cv.pdf", "x"), services.ErrJobNotFound},
		{"missing file", job.ID, nil, services.ErrFileRequired},
		{"image", job.ID, resume("cv.png", "x"), services.ErrUnsupportedFileType},
		{"too large", job.ID, resume("cv.pdf", strings.Repeat("x", 2*1024*1024+1)), services.ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.apply.Apply(f.ctx, seeker, tt.jobID, tt.upload)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}

	stored, err := f.jobRepo.GetWithApplicants(f.ctx, job.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ApplicantsApplied)
}

func TestJobApplicationService_Integration_DeadlinePassed(t *testing.T) {
	f := setupJobApplicationServiceIntegrationTest(t)
	seeker := createTestUser(t, f.ctx, "Jane Doe", "jane@example.com", models.RoleSeeker)
	job := f.createJob(t)

	// Move the deadline into the past directly; the service refuses to set it there.
	_, err := testDB.Exec(f.ctx, `UPDATE jobs SET posting_date = $2, last_date = $3 WHERE id = $1`,
		job.ID, time.Now().Add(-48*time.Hour), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)

	_, err = f.apply.Apply(f.ctx, seeker, job.ID, resume("cv.pdf", "x"))
	assert.ErrorIs(t, err, services.ErrApplicationsClosed)
}

func TestJobApplicationService_Integration_ConcurrentApplications(t *testing.T) {
	f := setupJobApplicationServiceIntegrationTest(t)
	seeker := createTestUser(t, f.ctx, "Jane Doe", "jane@example.com", models.RoleSeeker)
	job := f.createJob(t)

	const attempts = 5
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.apply.Apply(f.ctx, seeker, job.ID, resume("cv.pdf", "%PDF"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, services.ErrAlreadyApplied)
	}
	assert.Equal(t, 1, succeeded)

	stored, err := f.jobRepo.GetWithApplicants(f.ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, stored.ApplicantsApplied, 1)

	exists, err := f.files.Exists(f.ctx, stored.ApplicantsApplied[0].ResumeFilename)
	require.NoError(t, err)
	assert.True(t, exists, "the winner's resume survives the losers")
}

func TestJobApplicationService_Integration_DeleteRemovesResumes(t *testing.T) {
	f := setupJobApplicationServiceIntegrationTest(t)
	first := createTestUser(t, f.ctx, "First Seeker", "first@example.com", models.RoleSeeker)
	second := createTestUser(t, f.ctx, "Second Seeker", "second@example.com", models.RoleSeeker)
	job := f.createJob(t)

	firstKey, err := f.apply.Apply(f.ctx, first, job.ID, resume("cv.pdf", "a"))
	require.NoError(t, err)
	secondKey, err := f.apply.Apply(f.ctx, second, job.ID, resume("cv.docx", "b"))
	require.NoError(t, err)

	require.NoError(t, f.jobs.DeleteJob(f.ctx, f.employer, job.ID))

	for _, key := range []string{firstKey, secondKey} {
		exists, err := f.files.Exists(f.ctx, key)
		require.NoError(t, err)
		assert.False(t, exists, "resume %s should be removed", key)
	}
}
