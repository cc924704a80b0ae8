package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
)

const applicationColumns = `a.id, a.job_id, a.applicant_id, a.status, a.created_at, a.updated_at`

func applicationDst(app *domain.Application) []any {
	return []any{&app.ID, &app.JobID, &app.ApplicantID, &app.Status, &app.CreatedAt, &app.UpdatedAt}
}

// CreateApplication relies on the (job_id, applicant_id) unique constraint, so
// concurrent duplicates end with exactly one row.
func (r *Repository) CreateApplication(ctx context.Context, app *domain.Application) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO applications (id, job_id, applicant_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`

	if app.Status == "" {
		app.Status = domain.ApplicationStatusApplied
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	if _, err := r.dbpool.ExecContext(ctx, query, id, app.JobID, app.ApplicantID, app.Status, now); err != nil {
		return translateError(err)
	}

	app.ID = id
	app.CreatedAt = now
	app.UpdatedAt = now
	return nil
}

func (r *Repository) HasApplied(ctx context.Context, jobID, applicantID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT EXISTS (SELECT 1 FROM applications WHERE job_id = $1 AND applicant_id = $2)`

	exists := false
	if err := r.dbpool.QueryRowContext(ctx, query, jobID, applicantID).Scan(&exists); err != nil {
		if errors.Is(translateError(err), domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return exists, nil
}

func (r *Repository) GetApplicationByID(ctx context.Context, id string) (*domain.Application, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + applicationColumns + ` FROM applications a WHERE a.id = $1`

	app := &domain.Application{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(applicationDst(app)...); err != nil {
		return nil, translateError(err)
	}
	return app, nil
}

func (r *Repository) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]*domain.Application, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + applicationColumns + `, ` + jobColumns + `
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.applicant_id = $1
		ORDER BY a.created_at DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query, applicantID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	apps := make([]*domain.Application, 0)
	for rows.Next() {
		app := &domain.Application{Job: &domain.Job{}}
		dst := append(applicationDst(app), jobDst(app.Job)...)
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *Repository) ListApplicationsByJob(ctx context.Context, jobID string) ([]*domain.Application, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + applicationColumns + `, u.name, u.email, u.skills, u.education, u.resume_url
		FROM applications a
		JOIN users u ON u.id = a.applicant_id
		WHERE a.job_id = $1
		ORDER BY a.created_at DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	apps := make([]*domain.Application, 0)
	for rows.Next() {
		app := &domain.Application{Applicant: &domain.ApplicantSummary{}}
		applicant := app.Applicant
		dst := append(applicationDst(app),
			&applicant.Name, &applicant.Email, (*stringList)(&applicant.Skills), &applicant.Education, &applicant.ResumeURL)
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		applicant.ID = app.ApplicantID
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *Repository) UpdateApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus) (*domain.Application, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE applications a
		SET status = $1, updated_at = $2
		WHERE a.id = $3
		RETURNING ` + applicationColumns

	app := &domain.Application{}
	if err := r.dbpool.QueryRowContext(ctx, query, status, time.Now().UTC(), id).Scan(applicationDst(app)...); err != nil {
		return nil, translateError(err)
	}
	return app, nil
}

func (r *Repository) CountApplications(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int64
	if err := r.dbpool.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repository) GetApplicationStatsByEmployer(ctx context.Context, employerID string) (*domain.ApplicationStats, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE a.status = 'Applied'),
			COUNT(*) FILTER (WHERE a.status = 'Shortlisted'),
			COUNT(*) FILTER (WHERE a.status = 'Rejected')
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE j.employer_id = $1
	`

	stats := &domain.ApplicationStats{}
	dst := []any{&stats.Total, &stats.Applied, &stats.Shortlisted, &stats.Rejected}
	if err := r.dbpool.QueryRowContext(ctx, query, employerID).Scan(dst...); err != nil {
		return nil, translateError(err)
	}
	return stats, nil
}
