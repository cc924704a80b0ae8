// Package memory is an in-process repository.Repository. It enforces the same
// uniqueness constraints as the database-backed stores and is used by tests and
// by local development with DATABASE_DRIVER=memory.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	"github.com/hirehub-dev/hirehub/backend/internal/repository"
)

type record struct {
	seq int64
}

type userRow struct {
	record
	user domain.User
}

type jobRow struct {
	record
	job domain.Job
}

type applicationRow struct {
	record
	app domain.Application
}

type Repository struct {
	mu  sync.RWMutex
	seq int64
	now func() time.Time

	users        map[string]*userRow
	emails       map[string]string // email -> user id
	jobs         map[string]*jobRow
	applications map[string]*applicationRow
	applied      map[[2]string]string // (job id, applicant id) -> application id
}

var _ repository.Repository = (*Repository)(nil)

func New() *Repository {
	return &Repository{
		now:          time.Now,
		users:        make(map[string]*userRow),
		emails:       make(map[string]string),
		jobs:         make(map[string]*jobRow),
		applications: make(map[string]*applicationRow),
		applied:      make(map[[2]string]string),
	}
}

func (r *Repository) Ping(ctx context.Context) error  { return ctx.Err() }
func (r *Repository) Close(ctx context.Context) error { return nil }

func (r *Repository) next() record {
	r.seq++
	return record{seq: r.seq}
}

func (r *Repository) timestamp() time.Time {
	return r.now().UTC()
}

func newestFirst[T any](rows []T, key func(T) (time.Time, int64)) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, si := key(rows[i])
		tj, sj := key(rows[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return si > sj
	})
}

/**********************************************
 * users
 **********************************************/

func copyUser(u *domain.User) *domain.User {
	c := *u
	c.Skills = slices.Clone(u.Skills)
	return &c
}

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.emails[user.Email]; exists {
		return domain.ErrDuplicateEmail
	}

	now := r.timestamp()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Skills == nil {
		user.Skills = []string{}
	}

	r.users[user.ID] = &userRow{record: r.next(), user: *copyUser(user)}
	r.emails[user.Email] = user.ID
	return nil
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyUser(&row.user), nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyUser(&r.users[id].user), nil
}

func (r *Repository) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := make([]*userRow, 0, len(r.users))
	for _, row := range r.users {
		rows = append(rows, row)
	}
	newestFirst(rows, func(row *userRow) (time.Time, int64) { return row.user.CreatedAt, row.seq })

	users := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, copyUser(&row.user))
	}
	return users, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	if update.Skills != nil {
		skills := slices.Clone(*update.Skills)
		update.Skills = &skills
	}
	row.user.ApplyProfile(update)
	if row.user.Skills == nil {
		row.user.Skills = []string{}
	}
	row.user.UpdatedAt = r.timestamp()
	return copyUser(&row.user), nil
}

func (r *Repository) SetPasswordHash(ctx context.Context, id string, passwordHash string) error {
	return r.setUser(id, func(u *domain.User) { u.PasswordHash = passwordHash })
}

func (r *Repository) SetResumeURL(ctx context.Context, id string, resumeURL string) error {
	return r.setUser(id, func(u *domain.User) { u.ResumeURL = resumeURL })
}

func (r *Repository) setUser(id string, set func(u *domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	set(&row.user)
	row.user.UpdatedAt = r.timestamp()
	return nil
}

func (r *Repository) ToggleUserBlocked(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	row.user.IsBlocked = !row.user.IsBlocked
	row.user.UpdatedAt = r.timestamp()
	return copyUser(&row.user), nil
}

func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}

	for jobID, job := range r.jobs {
		if job.job.EmployerID == id {
			r.deleteJobLocked(jobID)
		}
	}
	for appID, app := range r.applications {
		if app.app.ApplicantID == id {
			r.deleteApplicationLocked(appID)
		}
	}

	delete(r.emails, row.user.Email)
	delete(r.users, id)
	return nil
}

func (r *Repository) GetUserStats(ctx context.Context) (*domain.UserStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &domain.UserStats{}
	for _, row := range r.users {
		stats.TotalUsers++
		switch row.user.Role {
		case domain.RoleSeeker:
			stats.Seekers++
		case domain.RoleEmployer:
			stats.Employers++
		case domain.RoleAdmin:
			stats.Admins++
		}
		if row.user.IsBlocked {
			stats.Blocked++
		}
	}
	return stats, nil
}

/**********************************************
 * jobs
 **********************************************/

func copyJob(j *domain.Job) *domain.Job {
	c := *j
	c.Skills = slices.Clone(j.Skills)
	c.Employer = nil
	return &c
}

func (r *Repository) CreateJob(ctx context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[job.EmployerID]; !ok {
		return domain.ErrNotFound
	}

	now := r.timestamp()
	job.ID = uuid.NewString()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = domain.JobStatusOpen
	}
	if job.Skills == nil {
		job.Skills = []string{}
	}

	r.jobs[job.ID] = &jobRow{record: r.next(), job: *copyJob(job)}
	return nil
}

func (r *Repository) employerSummary(id string, withDescription bool) *domain.EmployerSummary {
	row, ok := r.users[id]
	if !ok {
		return nil
	}
	s := &domain.EmployerSummary{
		ID:          row.user.ID,
		Name:        row.user.Name,
		CompanyName: row.user.CompanyName,
	}
	if withDescription {
		s.CompanyDescription = row.user.CompanyDescription
	}
	return s
}

func (r *Repository) GetJobByID(ctx context.Context, id string) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	job := copyJob(&row.job)
	job.Employer = r.employerSummary(job.EmployerID, true)
	return job, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func matches(job *domain.Job, f repository.JobFilter) bool {
	if f.Search != "" && !containsFold(job.Title, f.Search) && !containsFold(job.Description, f.Search) {
		return false
	}
	if len(f.Skills) > 0 && !slices.ContainsFunc(job.Skills, func(s string) bool { return slices.Contains(f.Skills, s) }) {
		return false
	}
	if f.Location != "" && !containsFold(job.Location, f.Location) {
		return false
	}
	if f.JobType != "" && job.JobType != f.JobType {
		return false
	}
	if f.Status != "" && job.Status != f.Status {
		return false
	}
	return true
}

func (r *Repository) sortedJobs(keep func(*domain.Job) bool) []*jobRow {
	rows := make([]*jobRow, 0)
	for _, row := range r.jobs {
		if keep(&row.job) {
			rows = append(rows, row)
		}
	}
	newestFirst(rows, func(row *jobRow) (time.Time, int64) { return row.job.CreatedAt, row.seq })
	return rows
}

func (r *Repository) ListJobs(ctx context.Context, filter repository.JobFilter) ([]*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.sortedJobs(func(j *domain.Job) bool { return matches(j, filter) })
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}

	jobs := make([]*domain.Job, 0, len(rows))
	for _, row := range rows {
		job := copyJob(&row.job)
		job.Employer = r.employerSummary(job.EmployerID, false)
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (r *Repository) ListJobsByEmployer(ctx context.Context, employerID string) ([]*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.sortedJobs(func(j *domain.Job) bool { return j.EmployerID == employerID })
	jobs := make([]*domain.Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, copyJob(&row.job))
	}
	return jobs, nil
}

func (r *Repository) UpdateJob(ctx context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.jobs[job.ID]
	if !ok {
		return domain.ErrNotFound
	}

	stored := &row.job
	stored.Title = job.Title
	stored.Description = job.Description
	stored.Skills = slices.Clone(job.Skills)
	stored.Location = job.Location
	stored.Salary = job.Salary
	stored.JobType = job.JobType
	stored.Status = job.Status
	stored.UpdatedAt = r.timestamp()

	employer := job.Employer
	*job = *copyJob(stored)
	job.Employer = employer
	return nil
}

func (r *Repository) deleteJobLocked(id string) {
	for appID, app := range r.applications {
		if app.app.JobID == id {
			r.deleteApplicationLocked(appID)
		}
	}
	delete(r.jobs, id)
}

func (r *Repository) DeleteJob(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[id]; !ok {
		return domain.ErrNotFound
	}
	r.deleteJobLocked(id)
	return nil
}

func (r *Repository) CountJobs(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.jobs)), nil
}

/**********************************************
 * applications
 **********************************************/

func copyApplication(a *domain.Application) *domain.Application {
	c := *a
	c.Job = nil
	c.Applicant = nil
	return &c
}

func (r *Repository) CreateApplication(ctx context.Context, app *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[app.JobID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.users[app.ApplicantID]; !ok {
		return domain.ErrNotFound
	}

	key := [2]string{app.JobID, app.ApplicantID}
	if _, exists := r.applied[key]; exists {
		return domain.ErrAlreadyApplied
	}

	now := r.timestamp()
	app.ID = uuid.NewString()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = domain.ApplicationStatusApplied
	}

	r.applications[app.ID] = &applicationRow{record: r.next(), app: *copyApplication(app)}
	r.applied[key] = app.ID
	return nil
}

func (r *Repository) deleteApplicationLocked(id string) {
	row, ok := r.applications[id]
	if !ok {
		return
	}
	delete(r.applied, [2]string{row.app.JobID, row.app.ApplicantID})
	delete(r.applications, id)
}

func (r *Repository) HasApplied(ctx context.Context, jobID, applicantID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.applied[[2]string{jobID, applicantID}]
	return exists, nil
}

func (r *Repository) GetApplicationByID(ctx context.Context, id string) (*domain.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.applications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyApplication(&row.app), nil
}

func (r *Repository) sortedApplications(keep func(*domain.Application) bool) []*applicationRow {
	rows := make([]*applicationRow, 0)
	for _, row := range r.applications {
		if keep(&row.app) {
			rows = append(rows, row)
		}
	}
	newestFirst(rows, func(row *applicationRow) (time.Time, int64) { return row.app.CreatedAt, row.seq })
	return rows
}

func (r *Repository) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]*domain.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.sortedApplications(func(a *domain.Application) bool { return a.ApplicantID == applicantID })
	apps := make([]*domain.Application, 0, len(rows))
	for _, row := range rows {
		app := copyApplication(&row.app)
		if job, ok := r.jobs[app.JobID]; ok {
			app.Job = copyJob(&job.job)
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func (r *Repository) ListApplicationsByJob(ctx context.Context, jobID string) ([]*domain.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.sortedApplications(func(a *domain.Application) bool { return a.JobID == jobID })
	apps := make([]*domain.Application, 0, len(rows))
	for _, row := range rows {
		app := copyApplication(&row.app)
		if u, ok := r.users[app.ApplicantID]; ok {
			app.Applicant = &domain.ApplicantSummary{
				ID:        u.user.ID,
				Name:      u.user.Name,
				Email:     u.user.Email,
				Skills:    slices.Clone(u.user.Skills),
				Education: u.user.Education,
				ResumeURL: u.user.ResumeURL,
			}
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func (r *Repository) UpdateApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.applications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	row.app.Status = status
	row.app.UpdatedAt = r.timestamp()
	return copyApplication(&row.app), nil
}

func (r *Repository) CountApplications(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.applications)), nil
}

func (r *Repository) GetApplicationStatsByEmployer(ctx context.Context, employerID string) (*domain.ApplicationStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &domain.ApplicationStats{}
	for _, row := range r.applications {
		job, ok := r.jobs[row.app.JobID]
		if !ok || job.job.EmployerID != employerID {
			continue
		}
		stats.Total++
		switch row.app.Status {
		case domain.ApplicationStatusApplied:
			stats.Applied++
		case domain.ApplicationStatusShortlisted:
			stats.Shortlisted++
		case domain.ApplicationStatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}
