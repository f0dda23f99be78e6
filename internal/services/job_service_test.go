package services_test

import (
	"context"
	"errors"
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"jobboard-api/internal/filters"
	"jobboard-api/internal/geocoder"
	"jobboard-api/internal/mocks"
	"jobboard-api/internal/models"
	"jobboard-api/internal/services"
	"jobboard-api/internal/storage"
	"jobboard-api/internal/transport/dto"
)

// Helper to create a pointer to a value
func ptr[T any](v T) *T { return &v }

type jobServiceDeps struct {
	jobRepo  *mocks.MockJobRepository
	geocoder *mocks.MockGeocoder
	files    *mocks.MockStore
}

func setupJobServiceTest(t *testing.T) (context.Context, services.JobService, jobServiceDeps) {
	ctrl := gomock.NewController(t)
	deps := jobServiceDeps{
		jobRepo:  mocks.NewMockJobRepository(ctrl),
		geocoder: mocks.NewMockGeocoder(ctrl),
		files:    mocks.NewMockStore(ctrl),
	}
	svc := services.NewJobService(deps.jobRepo, deps.geocoder, deps.files, zaptest.NewLogger(t))
	return context.Background(), svc, deps
}

func employer() *models.User {
	return &models.User{ID: uuid.New(), Name: "Acme HR", Role: models.RoleEmployer}
}

func validCreateRequest() *dto.CreateJobRequest {
	return &dto.CreateJobRequest{
		Title:        "Senior Café Engineer",
		Description:  "Build espresso pipelines",
		Address:      "1 Main St, Boston MA",
		Company:      "Acme",
		Industry:     []models.Industry{models.IndustryIT},
		JobType:      models.JobTypePermanent,
		MinEducation: models.EducationBachelors,
		Experience:   models.ExperienceTwoToFive,
		Salary:       75000,
	}
}

func TestJobService_ListJobs_BuildsQuery(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)

	params := url.Values{"salary[gte]": {"50000"}, "sort": {"-postingDate"}, "page": {"2"}, "limit": {"5"}}
	want := []models.Job{{ID: uuid.New(), Salary: 60000}}

	deps.jobRepo.EXPECT().Find(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, q filters.Query) ([]models.Job, error) {
		require.Len(t, q.Conditions, 1)
		assert.Equal(t, "salary", q.Conditions[0].Column)
		assert.Equal(t, filters.OpGte, q.Conditions[0].Op)
		assert.Equal(t, []any{float64(50000)}, q.Conditions[0].Values)
		assert.Equal(t, 5, q.Offset())
		return want, nil
	}).Times(1)

	jobs, q, err := svc.ListJobs(ctx, params)

	require.NoError(t, err)
	assert.Equal(t, want, jobs)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 5, q.Limit)
}

func TestJobService_ListJobs_InvalidFilterValue(t *testing.T) {
	ctx, svc, _ := setupJobServiceTest(t)

	_, _, err := svc.ListJobs(ctx, url.Values{"salary[gte]": {"abc"}})

	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrValidation))
	assert.Contains(t, err.Error(), "salary")
}

func TestJobService_ListJobs_EmptyResult(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)

	deps.jobRepo.EXPECT().Find(ctx, gomock.Any()).Return(nil, nil).Times(1)

	jobs, _, err := svc.ListJobs(ctx, url.Values{})

	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestJobService_GetJob_NotFound(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)
	id := uuid.New()

	deps.jobRepo.EXPECT().GetByIDAndSlug(ctx, id, "some-slug").Return(nil, storage.ErrNotFound).Times(1)

	_, err := svc.GetJob(ctx, id, "some-slug")

	assert.ErrorIs(t, err, services.ErrJobNotFound)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestJobService_CreateJob_Success(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)
	actor := employer()
	req := validCreateRequest()

	deps.geocoder.EXPECT().Geocode(ctx, req.Address).Return(&geocoder.Result{
		Latitude: 42.35, Longitude: -71.06, FormattedAddress: "Boston, MA 02108, US",
		City: "Boston", State: "MA", Zipcode: "02108", Country: "US",
	}, nil).Times(1)
	deps.jobRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, job *models.Job) (*models.Job, error) {
		return job, nil
	}).Times(1)

	before := time.Now()
	job, err := svc.CreateJob(ctx, actor, req)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, "senior-cafe-engineer", job.Slug)
	assert.Equal(t, actor.ID, job.UserID)
	assert.Equal(t, 1, job.Positions)
	assert.WithinDuration(t, before.Add(models.DefaultApplicationWindow), job.LastDate, 5*time.Second)
	require.NotNil(t, job.Location)
	assert.Equal(t, [2]float64{-71.06, 42.35}, job.Location.Coordinates)
	assert.Equal(t, "Boston", job.Location.City)
}

func TestJobService_CreateJob_UnresolvableAddress(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)
	req := validCreateRequest()

	deps.geocoder.EXPECT().Geocode(ctx, req.Address).Return(nil, geocoder.ErrNoMatch).Times(1)

	_, err := svc.CreateJob(ctx, employer(), req)

	assert.ErrorIs(t, err, services.ErrAddressNotFound)
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestJobService_CreateJob_GeocoderFailure(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)
	req := validCreateRequest()
	providerErr := errors.New("mapquest: status 503")

	deps.geocoder.EXPECT().Geocode(ctx, req.Address).Return(nil, providerErr).Times(1)

	_, err := svc.CreateJob(ctx, employer(), req)

	require.Error(t, err)
	assert.ErrorIs(t, err, providerErr)
	assert.False(t, errors.Is(err, services.ErrValidation))
}

func TestJobService_CreateJob_DeadlineInPast(t *testing.T) {
	ctx, svc, _ := setupJobServiceTest(t)
	req := validCreateRequest()
	req.LastDate = ptr(time.Now().Add(-48 * time.Hour))

	_, err := svc.CreateJob(ctx, employer(), req)

	assert.ErrorIs(t, err, services.ErrInvalidDeadline)
}

func TestJobService_UpdateJob_ForbiddenForNonOwner(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)
	existing := &models.Job{ID: uuid.New(), Title: "Old", UserID: uuid.New(), LastDate: time.Now().Add(time.Hour)}
	stranger := &models.User{ID: uuid.New(), Role: models.RoleEmployer}

	deps.jobRepo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	// No Update expectation: the job must stay unchanged.

	_, err := svc.UpdateJob(ctx, stranger, existing.ID, &dto.UpdateJobRequest{Title: ptr("New")})

	assert.ErrorIs(t, err, services.ErrForbidden)
	assert.Equal(t, "You are not allowed to update this job.", err.Error())
	assert.Equal(t, "Old", existing.Title)
}

func TestJobService_UpdateJob_AdminMayUpdate(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)
	now := time.Now()
	existing := &models.Job{ID: uuid.New(), Title: "Old", Slug: "old", Address: "Boston", UserID: uuid.New(), PostingDate: now, LastDate: now.Add(time.Hour)}
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}

	deps.jobRepo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	deps.jobRepo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, job *models.Job) (*models.Job, error) {
		return job, nil
	}).Times(1)

	updated, err := svc.UpdateJob(ctx, admin, existing.ID, &dto.UpdateJobRequest{
		Title:   ptr("Rust Developer"),
		Address: ptr("Boston"),
		Salary:  ptr(90000.0),
	})

	require.NoError(t, err)
	assert.Equal(t, "rust-developer", updated.Slug)
	assert.Equal(t, 90000.0, updated.Salary)
	assert.Equal(t, existing.UserID, updated.UserID)
}

func TestJobService_UpdateJob_AdminIdIsNotARole(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)
	existing := &models.Job{ID: uuid.New(), UserID: uuid.New(), LastDate: time.Now().Add(time.Hour)}
	// A seeker named "admin" is still a seeker.
	seeker := &models.User{ID: uuid.New(), Name: "admin", Role: models.RoleSeeker}

	deps.jobRepo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)

	_, err := svc.UpdateJob(ctx, seeker, existing.ID, &dto.UpdateJobRequest{Title: ptr("x")})

	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestJobService_UpdateJob_ConcurrentChangeIsRejected(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)
	owner := employer()
	now := time.Now()
	existing := &models.Job{ID: uuid.New(), Title: "Old", Address: "Boston", UserID: owner.ID, PostingDate: now, LastDate: now.Add(time.Hour), Version: 3}

	deps.jobRepo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	deps.jobRepo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, job *models.Job) (*models.Job, error) {
		assert.Equal(t, int64(3), job.Version, "the write is conditioned on the version that was read")
		return nil, storage.ErrStaleWrite
	}).Times(1)

	_, err := svc.UpdateJob(ctx, owner, existing.ID, &dto.UpdateJobRequest{Title: ptr("New")})

	assert.ErrorIs(t, err, services.ErrJobModified)
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestJobService_UpdateJob_RegeocodesChangedAddress(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)
	owner := employer()
	now := time.Now()
	existing := &models.Job{ID: uuid.New(), Address: "Boston", UserID: owner.ID, PostingDate: now, LastDate: now.Add(time.Hour)}

	deps.jobRepo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	deps.geocoder.EXPECT().Geocode(ctx, "Chicago").Return(&geocoder.Result{Latitude: 41.88, Longitude: -87.63, City: "Chicago"}, nil).Times(1)
	deps.jobRepo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, job *models.Job) (*models.Job, error) {
		return job, nil
	}).Times(1)

	updated, err := svc.UpdateJob(ctx, owner, existing.ID, &dto.UpdateJobRequest{Address: ptr("Chicago")})

	require.NoError(t, err)
	assert.Equal(t, "Chicago", updated.Address)
	assert.Equal(t, "Chicago", updated.Location.City)
}

func TestJobService_DeleteJob_RemovesEveryResume(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)
	owner := employer()
	existing := &models.Job{ID: uuid.New(), UserID: owner.ID}
	applicants := []models.Applicant{
		{ApplicantID: uuid.New(), ResumeFilename: "Jane-Doe_job.pdf"},
		{ApplicantID: uuid.New(), ResumeFilename: "John-Roe_job.docx"},
	}

	deps.jobRepo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	deps.jobRepo.EXPECT().Delete(ctx, existing.ID).Return(applicants, nil).Times(1)
	deps.files.EXPECT().Delete(gomock.Any(), "Jane-Doe_job.pdf").Return(nil).Times(1)
	deps.files.EXPECT().Delete(gomock.Any(), "John-Roe_job.docx").Return(nil).Times(1)

	err := svc.DeleteJob(ctx, owner, existing.ID)

	require.NoError(t, err)
}

func TestJobService_DeleteJob_FileFailureDoesNotAbort(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)
	owner := employer()
	existing := &models.Job{ID: uuid.New(), UserID: owner.ID}
	applicants := []models.Applicant{
		{ApplicantID: uuid.New(), ResumeFilename: "a.pdf"},
		{ApplicantID: uuid.New(), ResumeFilename: "b.pdf"},
	}

	deps.jobRepo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	deps.jobRepo.EXPECT().Delete(ctx, existing.ID).Return(applicants, nil).Times(1)
	deps.files.EXPECT().Delete(gomock.Any(), "a.pdf").Return(errors.New("disk on fire")).Times(1)
	deps.files.EXPECT().Delete(gomock.Any(), "b.pdf").Return(nil).Times(1)

	err := svc.DeleteJob(ctx, owner, existing.ID)

	assert.NoError(t, err)
}

func TestJobService_DeleteJob_CleanupOutlivesCanceledRequest(t *testing.T) {
	_, svc, deps := setupJobServiceTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	owner := employer()
	existing := &models.Job{ID: uuid.New(), UserID: owner.ID}
	applicants := []models.Applicant{{ApplicantID: uuid.New(), ResumeFilename: "Jane-Doe_job.pdf"}}

	deps.jobRepo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	deps.jobRepo.EXPECT().Delete(ctx, existing.ID).DoAndReturn(func(context.Context, uuid.UUID) ([]models.Applicant, error) {
		cancel() // client goes away right after the row is deleted
		return applicants, nil
	}).Times(1)
	deps.files.EXPECT().Delete(gomock.Any(), "Jane-Doe_job.pdf").DoAndReturn(func(fileCtx context.Context, _ string) error {
		return fileCtx.Err()
	}).Times(1)

	err := svc.DeleteJob(ctx, owner, existing.ID)

	require.NoError(t, err)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestJobService_DeleteJob_Forbidden(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)
	existing := &models.Job{ID: uuid.New(), UserID: uuid.New()}

	deps.jobRepo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)

	err := svc.DeleteJob(ctx, employer(), existing.ID)

	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestJobService_DeleteJob_NotFound(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)
	id := uuid.New()

	deps.jobRepo.EXPECT().GetByID(ctx, id).Return(nil, storage.ErrNotFound).Times(1)

	err := svc.DeleteJob(ctx, employer(), id)

	assert.ErrorIs(t, err, services.ErrJobNotFound)
}

func TestJobService_JobsInRadius(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)
	want := []models.Job{{ID: uuid.New()}}

	deps.geocoder.EXPECT().Geocode(ctx, "02108").Return(&geocoder.Result{Latitude: 42.35, Longitude: -71.06}, nil).Times(1)
	deps.jobRepo.EXPECT().FindWithinRadius(ctx, 42.35, -71.06, 50/3963.2).Return(want, nil).Times(1)

	jobs, err := svc.JobsInRadius(ctx, "02108", 50)

	require.NoError(t, err)
	assert.Equal(t, want, jobs)
}

func TestJobService_JobsInRadius_UnknownZipcode(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)

	deps.geocoder.EXPECT().Geocode(ctx, "00000").Return(nil, geocoder.ErrNoMatch).Times(1)

	jobs, err := svc.JobsInRadius(ctx, "00000", 10)

	assert.Nil(t, jobs)
	assert.ErrorIs(t, err, services.ErrLocationNotFound)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestJobService_JobsInRadius_InvalidDistance(t *testing.T) {
	ctx, svc, _ := setupJobServiceTest(t)

	for _, d := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		_, err := svc.JobsInRadius(ctx, "02108", d)
		assert.ErrorIs(t, err, services.ErrInvalidDistance)
	}
}

func TestJobService_Stats(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)
	want := []models.ExperienceStats{{Experience: "NO EXPERIENCE", TotalJobs: 2, AvgSalary: 50000}}

	deps.jobRepo.EXPECT().StatsByExperience(ctx, "golang").Return(want, nil).Times(1)

	stats, err := svc.Stats(ctx, "golang")

	require.NoError(t, err)
	assert.Equal(t, want, stats)
}

func TestJobService_Stats_NoMatches(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)

	deps.jobRepo.EXPECT().StatsByExperience(ctx, "cobol").Return([]models.ExperienceStats{}, nil).Times(1)

	stats, err := svc.Stats(ctx, "cobol")

	assert.Nil(t, stats)
	assert.ErrorIs(t, err, services.ErrNoStats)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Equal(t, "No stats found for - cobol", err.Error())
}

func TestJobService_Stats_RepoError(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)
	repoErr := errors.New("db connection failed")

	deps.jobRepo.EXPECT().StatsByExperience(ctx, "go").Return(nil, repoErr).Times(1)

	_, err := svc.Stats(ctx, "go")

	assert.ErrorIs(t, err, repoErr)
	assert.False(t, errors.Is(err, services.ErrNoStats))
}

func TestJobService_ListPublishedAndApplied(t *testing.T) {
	ctx, svc, deps := setupJobServiceTest(t)
	actor := employer()
	published := []models.Job{{ID: uuid.New(), UserID: actor.ID}}

	deps.jobRepo.EXPECT().ListByOwner(ctx, actor.ID).Return(published, nil).Times(1)
	deps.jobRepo.EXPECT().ListAppliedBy(ctx, actor.ID).Return(nil, nil).Times(1)

	got, err := svc.ListPublished(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, published, got)

	applied, err := svc.ListApplied(ctx, actor)
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.NotNil(t, applied)
}
