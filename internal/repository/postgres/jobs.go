package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	"github.com/hirehub-dev/hirehub/backend/internal/repository"
	"github.com/hirehub-dev/hirehub/backend/internal/utils"
)

const jobColumns = `
	j.id, j.title, j.description, j.skills, j.location, j.salary, j.job_type, j.status,
	j.employer_id, j.company_name, j.created_at, j.updated_at
`

func jobDst(job *domain.Job) []any {
	return []any{
		&job.ID, &job.Title, &job.Description, (*stringList)(&job.Skills), &job.Location, &job.Salary, &job.JobType, &job.Status,
		&job.EmployerID, &job.CompanyName, &job.CreatedAt, &job.UpdatedAt,
	}
}

func (r *Repository) CreateJob(ctx context.Context, job *domain.Job) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO jobs (
			id, title, description, skills, location, salary, job_type, status,
			employer_id, company_name, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
	`

	if job.Status == "" {
		job.Status = domain.JobStatusOpen
	}
	if job.Skills == nil {
		job.Skills = []string{}
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	args := []any{
		id, job.Title, job.Description, stringList(job.Skills), job.Location, job.Salary, job.JobType, job.Status,
		job.EmployerID, job.CompanyName, now,
	}
	if _, err := r.dbpool.ExecContext(ctx, query, args...); err != nil {
		return translateError(err)
	}

	job.ID = id
	job.CreatedAt = now
	job.UpdatedAt = now
	return nil
}

func (r *Repository) GetJobByID(ctx context.Context, id string) (*domain.Job, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + jobColumns + `, u.name, u.company_name, u.company_description
		FROM jobs j
		JOIN users u ON u.id = j.employer_id
		WHERE j.id = $1
	`

	job := &domain.Job{Employer: &domain.EmployerSummary{}}
	dst := append(jobDst(job), &job.Employer.Name, &job.Employer.CompanyName, &job.Employer.CompanyDescription)
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, translateError(err)
	}
	job.Employer.ID = job.EmployerID

	return job, nil
}

func (r *Repository) ListJobs(ctx context.Context, filter repository.JobFilter) ([]*domain.Job, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	conditions := make([]string, 0)
	args := make([]any, 0)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + utils.EscapeLike(filter.Search) + "%")
		conditions = append(conditions, fmt.Sprintf("(j.title ILIKE %s OR j.description ILIKE %s)", p, p))
	}
	if len(filter.Skills) > 0 {
		conditions = append(conditions, fmt.Sprintf("j.skills ?| %s::text[]", arg(filter.Skills)))
	}
	if filter.Location != "" {
		conditions = append(conditions, fmt.Sprintf("j.location ILIKE %s", arg("%"+utils.EscapeLike(filter.Location)+"%")))
	}
	if filter.JobType != "" {
		conditions = append(conditions, fmt.Sprintf("j.job_type = %s", arg(filter.JobType)))
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("j.status = %s", arg(filter.Status)))
	}

	query := `
		SELECT ` + jobColumns + `, u.name, u.company_name
		FROM jobs j
		JOIN users u ON u.id = j.employer_id
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY j.created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]*domain.Job, 0)
	for rows.Next() {
		job := &domain.Job{Employer: &domain.EmployerSummary{}}
		dst := append(jobDst(job), &job.Employer.Name, &job.Employer.CompanyName)
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		job.Employer.ID = job.EmployerID
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

func (r *Repository) ListJobsByEmployer(ctx context.Context, employerID string) ([]*domain.Job, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + jobColumns + ` FROM jobs j WHERE j.employer_id = $1 ORDER BY j.created_at DESC`

	rows, err := r.dbpool.QueryContext(ctx, query, employerID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	jobs := make([]*domain.Job, 0)
	for rows.Next() {
		job := &domain.Job{}
		if err := rows.Scan(jobDst(job)...); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

func (r *Repository) UpdateJob(ctx context.Context, job *domain.Job) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE jobs j
		SET
			title = $1,
			description = $2,
			skills = $3,
			location = $4,
			salary = $5,
			job_type = $6,
			status = $7,
			updated_at = $8
		WHERE j.id = $9
		RETURNING ` + jobColumns

	args := []any{
		job.Title, job.Description, stringList(job.Skills), job.Location, job.Salary, job.JobType, job.Status,
		time.Now().UTC(), job.ID,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(jobDst(job)...); err != nil {
		return translateError(err)
	}
	return nil
}

// DeleteJob relies on ON DELETE CASCADE for the job's applications.
func (r *Repository) DeleteJob(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	return expectAffected(res)
}

func (r *Repository) CountJobs(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int64
	if err := r.dbpool.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
