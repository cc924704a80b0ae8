// Package repository defines the persistence contract shared by the postgres,
// mongo and memory stores.
package repository

import (
	"context"

	"github.com/hirehub-dev/hirehub/backend/internal/domain"
)

// JobFilter narrows ListJobs. Zero values impose no constraint and all
// present filters are ANDed.
type JobFilter struct {
	// Search is a case-insensitive substring matched against title or description.
	Search string
	// Skills matches jobs whose skill list shares at least one element.
	Skills   []string
	Location string
	JobType  domain.JobType
	Status   domain.JobStatus
	Limit    int
}

type UserRepository interface {
	// CreateUser fills in ID and timestamps. Returns domain.ErrDuplicateEmail
	// when the email is taken.
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetAllUsers(ctx context.Context) ([]*domain.User, error)
	// UpdateProfile writes only the present fields of update that belong to
	// the stored user's role and returns the user after the write.
	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error)
	SetPasswordHash(ctx context.Context, id string, passwordHash string) error
	SetResumeURL(ctx context.Context, id string, resumeURL string) error
	// ToggleUserBlocked flips isBlocked in a single store operation.
	ToggleUserBlocked(ctx context.Context, id string) (*domain.User, error)
	// DeleteUser removes the user with the jobs they own and every
	// application referencing either.
	DeleteUser(ctx context.Context, id string) error
	GetUserStats(ctx context.Context) (*domain.UserStats, error)
}

type JobRepository interface {
	CreateJob(ctx context.Context, job *domain.Job) error
	// GetJobByID expands the employer with name, company name and description.
	GetJobByID(ctx context.Context, id string) (*domain.Job, error)
	// ListJobs returns the newest jobs first with the employer expanded to
	// name and company name.
	ListJobs(ctx context.Context, filter JobFilter) ([]*domain.Job, error)
	ListJobsByEmployer(ctx context.Context, employerID string) ([]*domain.Job, error)
	UpdateJob(ctx context.Context, job *domain.Job) error
	// DeleteJob removes the job and its applications.
	DeleteJob(ctx context.Context, id string) error
	CountJobs(ctx context.Context) (int64, error)
}

type ApplicationRepository interface {
	// CreateApplication returns domain.ErrAlreadyApplied when an application
	// for the same (job, applicant) pair exists. The check is enforced by the
	// store itself.
	CreateApplication(ctx context.Context, app *domain.Application) error
	HasApplied(ctx context.Context, jobID, applicantID string) (bool, error)
	GetApplicationByID(ctx context.Context, id string) (*domain.Application, error)
	// ListApplicationsByApplicant expands the job of every application.
	ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]*domain.Application, error)
	// ListApplicationsByJob expands the applicant of every application.
	ListApplicationsByJob(ctx context.Context, jobID string) ([]*domain.Application, error)
	UpdateApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus) (*domain.Application, error)
	CountApplications(ctx context.Context) (int64, error)
	GetApplicationStatsByEmployer(ctx context.Context, employerID string) (*domain.ApplicationStats, error)
}

type Repository interface {
	UserRepository
	JobRepository
	ApplicationRepository

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
