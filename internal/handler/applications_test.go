package handler

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	e := newTestEnv(t)
	employer := e.register("Alice", "alice@example.com", domain.RoleEmployer, nil)
	seeker := e.register("Sam", "sam@example.com", domain.RoleSeeker, nil)
	job := e.createJob(employer.Token, nil)

	rec := e.apply(seeker.Token, job.ID)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[ApplicationResponse](t, rec)
	assert.Equal(t, "Application submitted successfully", resp.Message)
	require.NotNil(t, resp.Application)
	assert.NotEmpty(t, resp.Application.ID)
	assert.Equal(t, job.ID, resp.Application.JobID)
	assert.Equal(t, seeker.ID, resp.Application.ApplicantID)
	assert.Equal(t, domain.ApplicationStatusApplied, resp.Application.Status)

	dup := requireError(t, e.apply(seeker.Token, job.ID), http.StatusConflict, ErrCodeConflict)
	assert.Equal(t, "You have already applied to this job", dup.Message)

	requireError(t, e.apply(seeker.Token, "missing"), http.StatusNotFound, ErrCodeNotFound)
	requireError(t, e.do(http.MethodPost, "/api/applications", map[string]string{}, seeker.Token), http.StatusBadRequest, ErrCodeValidation)
	requireError(t, e.apply(employer.Token, job.ID), http.StatusForbidden, ErrCodeForbidden)
	requireError(t, e.apply("", job.ID), http.StatusUnauthorized, ErrCodeUnauthenticated)
}

// Job status is informational and does not gate applications.
func TestApplyIgnoresJobStatus(t *testing.T) {
	e := newTestEnv(t)
	employer := e.register("Alice", "alice@example.com", domain.RoleEmployer, nil)
	seeker := e.register("Sam", "sam@example.com", domain.RoleSeeker, nil)

	for _, status := range []string{"Open", "Hiring", "Closed"} {
		job := e.createJob(employer.Token, map[string]any{"status": status})
		assert.Equal(t, http.StatusCreated, e.apply(seeker.Token, job.ID).Code, status)
		requireError(t, e.apply(seeker.Token, job.ID), http.StatusConflict, ErrCodeConflict)
	}
}

func TestConcurrentApply(t *testing.T) {
	e := newTestEnv(t)
	employer := e.register("Alice", "alice@example.com", domain.RoleEmployer, nil)
	seeker := e.register("Sam", "sam@example.com", domain.RoleSeeker, nil)
	job := e.createJob(employer.Token, nil)

	const n = 20
	codes := make(chan int, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- e.apply(seeker.Token, job.ID).Code
		}()
	}
	wg.Wait()
	close(codes)

	created, conflicts := 0, 0
	for code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, conflicts)

	count, err := e.repo.CountApplications(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestMyApplications(t *testing.T) {
	e := newTestEnv(t)
	employer := e.register("Alice", "alice@example.com", domain.RoleEmployer, map[string]any{"companyName": "Acme"})
	seeker := e.register("Sam", "sam@example.com", domain.RoleSeeker, nil)
	other := e.register("Kim", "kim@example.com", domain.RoleSeeker, nil)

	first := e.createJob(employer.Token, map[string]any{"title": "First"})
	second := e.createJob(employer.Token, map[string]any{"title": "Second"})
	require.Equal(t, http.StatusCreated, e.apply(seeker.Token, first.ID).Code)
	require.Equal(t, http.StatusCreated, e.apply(seeker.Token, second.ID).Code)
	require.Equal(t, http.StatusCreated, e.apply(other.Token, first.ID).Code)

	rec := e.do(http.MethodGet, "/api/applications/my-applications", nil, seeker.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	apps := decode[[]domain.Application](t, rec)
	require.Len(t, apps, 2)
	require.NotNil(t, apps[0].Job)
	assert.Equal(t, "Second", apps[0].Job.Title)
	assert.Equal(t, "Acme", apps[0].Job.CompanyName)
	assert.Equal(t, "First", apps[1].Job.Title)

	requireError(t, e.do(http.MethodGet, "/api/applications/my-applications", nil, employer.Token), http.StatusForbidden, ErrCodeForbidden)
}

func TestJobApplications(t *testing.T) {
	e := newTestEnv(t)
	owner := e.register("Alice", "alice@example.com", domain.RoleEmployer, nil)
	other := e.register("Bob", "bob@example.com", domain.RoleEmployer, nil)
	seeker := e.register("Sam", "sam@example.com", domain.RoleSeeker, nil)

	rec := e.do(http.MethodPut, "/api/users/profile", map[string]any{
		"skills":    []string{"Go"},
		"education": "BSc",
	}, seeker.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	job := e.createJob(owner.Token, nil)
	require.Equal(t, http.StatusCreated, e.apply(seeker.Token, job.ID).Code)

	path := "/api/applications/job/" + job.ID
	rec = e.do(http.MethodGet, path, nil, owner.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	apps := decode[[]domain.Application](t, rec)
	require.Len(t, apps, 1)
	require.NotNil(t, apps[0].Applicant)
	assert.Equal(t, seeker.ID, apps[0].Applicant.ID)
	assert.Equal(t, "Sam", apps[0].Applicant.Name)
	assert.Equal(t, "sam@example.com", apps[0].Applicant.Email)
	assert.Equal(t, []string{"Go"}, apps[0].Applicant.Skills)
	assert.Equal(t, "BSc", apps[0].Applicant.Education)

	requireError(t, e.do(http.MethodGet, path, nil, other.Token), http.StatusForbidden, ErrCodeForbidden)
	requireError(t, e.do(http.MethodGet, path, nil, seeker.Token), http.StatusForbidden, ErrCodeForbidden)
	requireError(t, e.do(http.MethodGet, "/api/applications/job/missing", nil, owner.Token), http.StatusNotFound, ErrCodeNotFound)
}

func TestUpdateApplicationStatus(t *testing.T) {
	e := newTestEnv(t)
	owner := e.register("Alice", "alice@example.com", domain.RoleEmployer, nil)
	other := e.register("Bob", "bob@example.com", domain.RoleEmployer, nil)
	seeker := e.register("Sam", "sam@example.com", domain.RoleSeeker, nil)

	job := e.createJob(owner.Token, nil)
	app := decode[ApplicationResponse](t, e.apply(seeker.Token, job.ID)).Application
	path := fmt.Sprintf("/api/applications/%s/status", app.ID)

	requireError(t, e.do(http.MethodPut, path, map[string]string{"status": "Shortlisted"}, other.Token), http.StatusForbidden, ErrCodeForbidden)
	requireError(t, e.do(http.MethodPut, path, map[string]string{"status": "Shortlisted"}, seeker.Token), http.StatusForbidden, ErrCodeForbidden)
	requireError(t, e.do(http.MethodPut, path, map[string]string{"status": "Hired"}, owner.Token), http.StatusBadRequest, ErrCodeValidation)
	requireError(t, e.do(http.MethodPut, path, map[string]string{}, owner.Token), http.StatusBadRequest, ErrCodeValidation)
	requireError(t, e.do(http.MethodPut, "/api/applications/missing/status", map[string]string{"status": "Rejected"}, owner.Token), http.StatusNotFound, ErrCodeNotFound)

	rec := e.do(http.MethodPut, path, map[string]string{"status": "Rejected"}, owner.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[ApplicationResponse](t, rec)
	assert.Equal(t, "Application status updated", resp.Message)
	assert.Equal(t, app.ID, resp.Application.ID)
	assert.Equal(t, domain.ApplicationStatusRejected, resp.Application.Status)

	mine := decode[[]domain.Application](t, e.do(http.MethodGet, "/api/applications/my-applications", nil, seeker.Token))
	require.Len(t, mine, 1)
	assert.Equal(t, domain.ApplicationStatusRejected, mine[0].Status)
}

// TestEmployerSeekerScenario walks through a full hiring round.
func TestEmployerSeekerScenario(t *testing.T) {
	e := newTestEnv(t)

	employer := e.register("Erin", "erin@acme.com", domain.RoleEmployer, map[string]any{"companyName": "Acme"})
	job := e.createJob(employer.Token, map[string]any{
		"title":       "Go Developer",
		"description": "Build APIs",
		"skills":      "Go, PostgreSQL",
		"location":    "Remote",
		"jobType":     "Full-time",
	})

	seeker := e.register("Sid", "sid@example.com", domain.RoleSeeker, nil)

	found := decode[[]domain.Job](t, e.do(http.MethodGet, "/api/jobs?search=go&skills=Go", nil, ""))
	require.Len(t, found, 1)
	assert.Equal(t, job.ID, found[0].ID)

	require.Equal(t, http.StatusCreated, e.apply(seeker.Token, job.ID).Code)
	requireError(t, e.apply(seeker.Token, job.ID), http.StatusConflict, ErrCodeConflict)

	applicants := decode[[]domain.Application](t, e.do(http.MethodGet, "/api/applications/job/"+job.ID, nil, employer.Token))
	require.Len(t, applicants, 1)
	assert.Equal(t, "Sid", applicants[0].Applicant.Name)

	rec := e.do(http.MethodPut, "/api/applications/"+applicants[0].ID+"/status", map[string]string{"status": "Shortlisted"}, employer.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	mine := decode[[]domain.Application](t, e.do(http.MethodGet, "/api/applications/my-applications", nil, seeker.Token))
	require.Len(t, mine, 1)
	assert.Equal(t, domain.ApplicationStatusShortlisted, mine[0].Status)
	assert.Equal(t, "Go Developer", mine[0].Job.Title)

	stats := decode[EmployerStats](t, e.do(http.MethodGet, "/api/jobs/my/stats", nil, employer.Token))
	assert.EqualValues(t, 1, stats.TotalJobs)
	assert.EqualValues(t, 1, stats.Total)
	assert.EqualValues(t, 1, stats.Shortlisted)
}
