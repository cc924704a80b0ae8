// Package repositorytest holds the behavioural contract every
// repository.Repository implementation is tested against.
package repositorytest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	"github.com/hirehub-dev/hirehub/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty repository. It is called once per subtest.
type Factory func(t *testing.T) repository.Repository

// ordering tests need distinct timestamps; mongo keeps milliseconds.
const tick = 3 * time.Millisecond

func Run(t *testing.T, newRepo Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newRepo) })
	t.Run("Jobs", func(t *testing.T) { testJobs(t, newRepo) })
	t.Run("Applications", func(t *testing.T) { testApplications(t, newRepo) })
	t.Run("Cascades", func(t *testing.T) { testCascades(t, newRepo) })
}

func mustCreateUser(t *testing.T, repo repository.Repository, name string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		Name:         name,
		Email:        fmt.Sprintf("%s-%d@example.com", name, time.Now().UnixNano()),
		PasswordHash: "hash",
		Role:         role,
	}
	if role == domain.RoleEmployer {
		u.CompanyName = name + " Inc"
		u.CompanyDescription = "We build things"
	}
	if role == domain.RoleSeeker {
		u.Skills = []string{"go", "sql"}
		u.Education = "BSc"
	}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	time.Sleep(tick)
	return u
}

func mustCreateJob(t *testing.T, repo repository.Repository, employer *domain.User, job domain.Job) *domain.Job {
	t.Helper()
	job.EmployerID = employer.ID
	job.CompanyName = employer.CompanyName
	if job.JobType == "" {
		job.JobType = domain.JobTypeFullTime
	}
	if job.Location == "" {
		job.Location = "Remote"
	}
	if job.Description == "" {
		job.Description = "A job"
	}
	require.NoError(t, repo.CreateJob(context.Background(), &job))
	time.Sleep(tick)
	return &job
}

func mustApply(t *testing.T, repo repository.Repository, job *domain.Job, seeker *domain.User) *domain.Application {
	t.Helper()
	app := &domain.Application{JobID: job.ID, ApplicantID: seeker.ID}
	require.NoError(t, repo.CreateApplication(context.Background(), app))
	time.Sleep(tick)
	return app
}

func testUsers(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		repo := newRepo(t)
		u := mustCreateUser(t, repo, "alice", domain.RoleSeeker)

		require.NotEmpty(t, u.ID)
		assert.False(t, u.CreatedAt.IsZero())
		assert.False(t, u.IsBlocked)

		byID, err := repo.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, byID.Email)
		assert.Equal(t, domain.RoleSeeker, byID.Role)
		assert.Equal(t, []string{"go", "sql"}, byID.Skills)
		assert.Equal(t, "hash", byID.PasswordHash)

		byEmail, err := repo.GetUserByEmail(ctx, u.Email)
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)
	})

	t.Run("not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetUserByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = repo.ToggleUserBlocked(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteUser(ctx, "00000000-0000-0000-0000-000000000000"), domain.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := newRepo(t)
		u := mustCreateUser(t, repo, "bob", domain.RoleSeeker)

		dup := &domain.User{Name: "Bob 2", Email: u.Email, PasswordHash: "x", Role: domain.RoleEmployer}
		assert.ErrorIs(t, repo.CreateUser(ctx, dup), domain.ErrDuplicateEmail)

		// emails are compared case-sensitively
		upper := &domain.User{Name: "Bob 3", Email: "X" + u.Email, PasswordHash: "x", Role: domain.RoleSeeker}
		assert.NoError(t, repo.CreateUser(ctx, upper))
	})

	t.Run("update profile writes present fields only", func(t *testing.T) {
		repo := newRepo(t)
		employer := mustCreateUser(t, repo, "carol", domain.RoleEmployer)

		name := "Carol"
		company := "Carol Corp"
		skills := []string{"rust"}
		got, err := repo.UpdateProfile(ctx, employer.ID, domain.ProfileUpdate{
			Name:        &name,
			CompanyName: &company,
			Skills:      &skills,
		})
		require.NoError(t, err)
		assert.Equal(t, "Carol", got.Name)
		assert.Equal(t, "Carol Corp", got.CompanyName)
		assert.Equal(t, "We build things", got.CompanyDescription)
		assert.Empty(t, got.Skills)
		assert.Equal(t, domain.RoleEmployer, got.Role)
		assert.Equal(t, employer.Email, got.Email)
		assert.Equal(t, "hash", got.PasswordHash)

		seeker := mustCreateUser(t, repo, "sid", domain.RoleSeeker)
		education := "MSc"
		got, err = repo.UpdateProfile(ctx, seeker.ID, domain.ProfileUpdate{
			Education:   &education,
			CompanyName: &company,
		})
		require.NoError(t, err)
		assert.Equal(t, "MSc", got.Education)
		assert.Equal(t, []string{"go", "sql"}, got.Skills)
		assert.Empty(t, got.CompanyName)

		_, err = repo.UpdateProfile(ctx, "00000000-0000-0000-0000-000000000000", domain.ProfileUpdate{Name: &name})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("single field writes", func(t *testing.T) {
		repo := newRepo(t)
		u := mustCreateUser(t, repo, "dana", domain.RoleSeeker)

		require.NoError(t, repo.SetPasswordHash(ctx, u.ID, "new-hash"))
		require.NoError(t, repo.SetResumeURL(ctx, u.ID, "/uploads/resumes/cv.pdf"))

		// a profile update after both writes leaves them alone
		education := "PhD"
		_, err := repo.UpdateProfile(ctx, u.ID, domain.ProfileUpdate{Education: &education})
		require.NoError(t, err)

		got, err := repo.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", got.PasswordHash)
		assert.Equal(t, "/uploads/resumes/cv.pdf", got.ResumeURL)
		assert.Equal(t, "PhD", got.Education)
		assert.Equal(t, u.Name, got.Name)

		missing := "00000000-0000-0000-0000-000000000000"
		assert.ErrorIs(t, repo.SetPasswordHash(ctx, missing, "x"), domain.ErrNotFound)
		assert.ErrorIs(t, repo.SetResumeURL(ctx, missing, "x"), domain.ErrNotFound)
	})

	t.Run("toggle blocked", func(t *testing.T) {
		repo := newRepo(t)
		u := mustCreateUser(t, repo, "dave", domain.RoleSeeker)

		blocked, err := repo.ToggleUserBlocked(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, blocked.IsBlocked)

		unblocked, err := repo.ToggleUserBlocked(ctx, u.ID)
		require.NoError(t, err)
		assert.False(t, unblocked.IsBlocked)
	})

	t.Run("list newest first and delete", func(t *testing.T) {
		repo := newRepo(t)
		first := mustCreateUser(t, repo, "erin", domain.RoleSeeker)
		second := mustCreateUser(t, repo, "frank", domain.RoleEmployer)

		users, err := repo.GetAllUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, second.ID, users[0].ID)
		assert.Equal(t, first.ID, users[1].ID)

		require.NoError(t, repo.DeleteUser(ctx, first.ID))
		users, err = repo.GetAllUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, second.ID, users[0].ID)
	})

	t.Run("stats", func(t *testing.T) {
		repo := newRepo(t)
		mustCreateUser(t, repo, "s1", domain.RoleSeeker)
		s2 := mustCreateUser(t, repo, "s2", domain.RoleSeeker)
		mustCreateUser(t, repo, "e1", domain.RoleEmployer)
		mustCreateUser(t, repo, "a1", domain.RoleAdmin)
		_, err := repo.ToggleUserBlocked(ctx, s2.ID)
		require.NoError(t, err)

		stats, err := repo.GetUserStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.UserStats{TotalUsers: 4, Seekers: 2, Employers: 1, Admins: 1, Blocked: 1}, *stats)
	})
}

func testJobs(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("create defaults and get expands employer", func(t *testing.T) {
		repo := newRepo(t)
		e := mustCreateUser(t, repo, "acme", domain.RoleEmployer)
		job := mustCreateJob(t, repo, e, domain.Job{Title: "Backend Engineer", Skills: []string{"go"}, Salary: "100k"})

		require.NotEmpty(t, job.ID)
		assert.Equal(t, domain.JobStatusOpen, job.Status)

		got, err := repo.GetJobByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, "Backend Engineer", got.Title)
		assert.Equal(t, []string{"go"}, got.Skills)
		assert.Equal(t, "100k", got.Salary)
		assert.Equal(t, e.ID, got.EmployerID)
		require.NotNil(t, got.Employer)
		assert.Equal(t, e.Name, got.Employer.Name)
		assert.Equal(t, e.CompanyName, got.Employer.CompanyName)
		assert.Equal(t, e.CompanyDescription, got.Employer.CompanyDescription)

		_, err = repo.GetJobByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("filters", func(t *testing.T) {
		repo := newRepo(t)
		e := mustCreateUser(t, repo, "globex", domain.RoleEmployer)
		react := mustCreateJob(t, repo, e, domain.Job{Title: "Frontend Dev", Description: "Build UIs with React", Skills: []string{"react", "css"}, Location: "Berlin", JobType: domain.JobTypeFullTime})
		intern := mustCreateJob(t, repo, e, domain.Job{Title: "REACT intern", Description: "Learn", Skills: []string{"js"}, Location: "Remote", JobType: domain.JobTypeInternship})
		backend := mustCreateJob(t, repo, e, domain.Job{Title: "Backend", Description: "Go services (100%)", Skills: []string{"go"}, Location: "berlin", JobType: domain.JobTypeContract, Status: domain.JobStatusClosed})

		ids := func(f repository.JobFilter) []string {
			jobs, err := repo.ListJobs(ctx, f)
			require.NoError(t, err)
			out := make([]string, 0, len(jobs))
			for _, j := range jobs {
				out = append(out, j.ID)
			}
			return out
		}

		assert.Equal(t, []string{backend.ID, intern.ID, react.ID}, ids(repository.JobFilter{}))
		assert.Equal(t, []string{intern.ID}, ids(repository.JobFilter{JobType: domain.JobTypeInternship}))
		assert.Equal(t, []string{intern.ID, react.ID}, ids(repository.JobFilter{Search: "react"}))
		assert.Equal(t, []string{backend.ID}, ids(repository.JobFilter{Search: "100%"}))
		assert.Empty(t, ids(repository.JobFilter{Search: "r.act"}))
		assert.Equal(t, []string{backend.ID, react.ID}, ids(repository.JobFilter{Location: "BERLIN"}))
		assert.Equal(t, []string{backend.ID, react.ID}, ids(repository.JobFilter{Skills: []string{"go", "css"}}))
		assert.Empty(t, ids(repository.JobFilter{Skills: []string{"Go"}}))
		assert.Equal(t, []string{react.ID}, ids(repository.JobFilter{Location: "berlin", Search: "react"}))
		assert.Equal(t, []string{backend.ID}, ids(repository.JobFilter{Status: domain.JobStatusClosed}))
		assert.Equal(t, []string{backend.ID, intern.ID}, ids(repository.JobFilter{Limit: 2}))

		jobs, err := repo.ListJobs(ctx, repository.JobFilter{JobType: domain.JobTypeInternship})
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		require.NotNil(t, jobs[0].Employer)
		assert.Equal(t, e.Name, jobs[0].Employer.Name)
		assert.Equal(t, e.CompanyName, jobs[0].Employer.CompanyName)
	})

	t.Run("by employer, update, delete", func(t *testing.T) {
		repo := newRepo(t)
		e1 := mustCreateUser(t, repo, "initech", domain.RoleEmployer)
		e2 := mustCreateUser(t, repo, "hooli", domain.RoleEmployer)
		a := mustCreateJob(t, repo, e1, domain.Job{Title: "A"})
		b := mustCreateJob(t, repo, e1, domain.Job{Title: "B"})
		mustCreateJob(t, repo, e2, domain.Job{Title: "C"})

		mine, err := repo.ListJobsByEmployer(ctx, e1.ID)
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, b.ID, mine[0].ID)
		assert.Equal(t, a.ID, mine[1].ID)

		a.Title = "A2"
		a.Status = domain.JobStatusHiring
		a.Skills = []string{"rust"}
		require.NoError(t, repo.UpdateJob(ctx, a))

		got, err := repo.GetJobByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "A2", got.Title)
		assert.Equal(t, domain.JobStatusHiring, got.Status)
		assert.Equal(t, []string{"rust"}, got.Skills)
		assert.Equal(t, "A job", got.Description)

		count, err := repo.CountJobs(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, count)

		require.NoError(t, repo.DeleteJob(ctx, a.ID))
		_, err = repo.GetJobByID(ctx, a.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteJob(ctx, a.ID), domain.ErrNotFound)

		missing := &domain.Job{ID: "00000000-0000-0000-0000-000000000000", Title: "x", JobType: domain.JobTypeContract, Status: domain.JobStatusOpen}
		assert.ErrorIs(t, repo.UpdateJob(ctx, missing), domain.ErrNotFound)
	})
}

func testApplications(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("apply once", func(t *testing.T) {
		repo := newRepo(t)
		e := mustCreateUser(t, repo, "umbrella", domain.RoleEmployer)
		s := mustCreateUser(t, repo, "sam", domain.RoleSeeker)
		job := mustCreateJob(t, repo, e, domain.Job{Title: "Backend Engineer"})

		ok, err := repo.HasApplied(ctx, job.ID, s.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		app := mustApply(t, repo, job, s)
		assert.Equal(t, domain.ApplicationStatusApplied, app.Status)
		require.NotEmpty(t, app.ID)

		ok, err = repo.HasApplied(ctx, job.ID, s.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		err = repo.CreateApplication(ctx, &domain.Application{JobID: job.ID, ApplicantID: s.ID})
		assert.ErrorIs(t, err, domain.ErrAlreadyApplied)

		apps, err := repo.ListApplicationsByJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Len(t, apps, 1)
	})

	t.Run("concurrent duplicates", func(t *testing.T) {
		repo := newRepo(t)
		e := mustCreateUser(t, repo, "wayne", domain.RoleEmployer)
		s := mustCreateUser(t, repo, "tim", domain.RoleSeeker)
		job := mustCreateJob(t, repo, e, domain.Job{Title: "Detective"})

		const n = 10
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = repo.CreateApplication(ctx, &domain.Application{JobID: job.ID, ApplicantID: s.ID})
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, domain.ErrAlreadyApplied)
		}
		assert.Equal(t, 1, succeeded)

		apps, err := repo.ListApplicationsByJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Len(t, apps, 1)
	})

	t.Run("listings expand references", func(t *testing.T) {
		repo := newRepo(t)
		e := mustCreateUser(t, repo, "stark", domain.RoleEmployer)
		s1 := mustCreateUser(t, repo, "peter", domain.RoleSeeker)
		s2 := mustCreateUser(t, repo, "miles", domain.RoleSeeker)
		j1 := mustCreateJob(t, repo, e, domain.Job{Title: "Intern"})
		j2 := mustCreateJob(t, repo, e, domain.Job{Title: "Engineer"})

		a1 := mustApply(t, repo, j1, s1)
		a2 := mustApply(t, repo, j2, s1)
		a3 := mustApply(t, repo, j1, s2)

		mine, err := repo.ListApplicationsByApplicant(ctx, s1.ID)
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, a2.ID, mine[0].ID)
		assert.Equal(t, a1.ID, mine[1].ID)
		require.NotNil(t, mine[0].Job)
		assert.Equal(t, "Engineer", mine[0].Job.Title)

		applicants, err := repo.ListApplicationsByJob(ctx, j1.ID)
		require.NoError(t, err)
		require.Len(t, applicants, 2)
		assert.Equal(t, a3.ID, applicants[0].ID)
		require.NotNil(t, applicants[1].Applicant)
		assert.Equal(t, s1.Name, applicants[1].Applicant.Name)
		assert.Equal(t, s1.Email, applicants[1].Applicant.Email)
		assert.Equal(t, []string{"go", "sql"}, applicants[1].Applicant.Skills)
		assert.Equal(t, "BSc", applicants[1].Applicant.Education)
	})

	t.Run("status and stats", func(t *testing.T) {
		repo := newRepo(t)
		e := mustCreateUser(t, repo, "oscorp", domain.RoleEmployer)
		other := mustCreateUser(t, repo, "lexcorp", domain.RoleEmployer)
		s1 := mustCreateUser(t, repo, "harry", domain.RoleSeeker)
		s2 := mustCreateUser(t, repo, "norman", domain.RoleSeeker)
		job := mustCreateJob(t, repo, e, domain.Job{Title: "Scientist"})
		otherJob := mustCreateJob(t, repo, other, domain.Job{Title: "Villain"})

		a1 := mustApply(t, repo, job, s1)
		mustApply(t, repo, job, s2)
		mustApply(t, repo, otherJob, s1)

		updated, err := repo.UpdateApplicationStatus(ctx, a1.ID, domain.ApplicationStatusShortlisted)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusShortlisted, updated.Status)
		assert.Equal(t, job.ID, updated.JobID)

		got, err := repo.GetApplicationByID(ctx, a1.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusShortlisted, got.Status)

		_, err = repo.UpdateApplicationStatus(ctx, "00000000-0000-0000-0000-000000000000", domain.ApplicationStatusRejected)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		stats, err := repo.GetApplicationStatsByEmployer(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStats{Total: 2, Applied: 1, Shortlisted: 1}, *stats)

		count, err := repo.CountApplications(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, count)
	})
}

func testCascades(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("deleting a job removes its applications", func(t *testing.T) {
		repo := newRepo(t)
		e := mustCreateUser(t, repo, "cyberdyne", domain.RoleEmployer)
		s := mustCreateUser(t, repo, "sarah", domain.RoleSeeker)
		job := mustCreateJob(t, repo, e, domain.Job{Title: "Engineer"})
		app := mustApply(t, repo, job, s)

		require.NoError(t, repo.DeleteJob(ctx, job.ID))

		_, err := repo.GetApplicationByID(ctx, app.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		mine, err := repo.ListApplicationsByApplicant(ctx, s.ID)
		require.NoError(t, err)
		assert.Empty(t, mine)
	})

	t.Run("deleting a user removes owned jobs and applications", func(t *testing.T) {
		repo := newRepo(t)
		e := mustCreateUser(t, repo, "tyrell", domain.RoleEmployer)
		s := mustCreateUser(t, repo, "rachael", domain.RoleSeeker)
		job := mustCreateJob(t, repo, e, domain.Job{Title: "Replicant"})
		other := mustCreateJob(t, repo, mustCreateUser(t, repo, "wallace", domain.RoleEmployer), domain.Job{Title: "Other"})
		mustApply(t, repo, job, s)
		kept := mustApply(t, repo, other, s)

		require.NoError(t, repo.DeleteUser(ctx, e.ID))

		_, err := repo.GetJobByID(ctx, job.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		mine, err := repo.ListApplicationsByApplicant(ctx, s.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, kept.ID, mine[0].ID)

		require.NoError(t, repo.DeleteUser(ctx, s.ID))
		_, err = repo.GetApplicationByID(ctx, kept.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
