package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
)

const userColumns = `
	id, name, email, password_hash, role, skills, education, resume_url,
	company_name, company_description, is_blocked, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, user *domain.User) error {
	dst := []any{
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role,
		(*stringList)(&user.Skills), &user.Education, &user.ResumeURL,
		&user.CompanyName, &user.CompanyDescription, &user.IsBlocked, &user.CreatedAt, &user.UpdatedAt,
	}
	return row.Scan(dst...)
}

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users (
			id, name, email, password_hash, role, skills, education, resume_url,
			company_name, company_description, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING is_blocked
	`

	id := uuid.NewString()
	now := time.Now().UTC()
	args := []any{
		id, user.Name, user.Email, user.PasswordHash, user.Role, stringList(user.Skills), user.Education, user.ResumeURL,
		user.CompanyName, user.CompanyDescription, now,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.IsBlocked); err != nil {
		return translateError(err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Skills == nil {
		user.Skills = []string{}
	}
	return nil
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user := &domain.User{}
	if err := scanUser(r.dbpool.QueryRowContext(ctx, query, id), user); err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user := &domain.User{}
	if err := scanUser(r.dbpool.QueryRowContext(ctx, query, email), user); err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

func (r *Repository) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		if err := scanUser(rows, user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// UpdateProfile guards the role specific columns with the stored role so a
// single statement can update any user.
func (r *Repository) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	args := make([]any, 0)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	sets := []string{"updated_at = " + arg(time.Now().UTC())}
	if update.Name != nil {
		sets = append(sets, "name = "+arg(*update.Name))
	}
	forRole := func(column string, role domain.Role, v any) {
		sets = append(sets, fmt.Sprintf("%s = CASE WHEN role = %s THEN %s ELSE %s END", column, arg(string(role)), arg(v), column))
	}
	if update.Skills != nil {
		forRole("skills", domain.RoleSeeker, stringList(*update.Skills))
	}
	if update.Education != nil {
		forRole("education", domain.RoleSeeker, *update.Education)
	}
	if update.CompanyName != nil {
		forRole("company_name", domain.RoleEmployer, *update.CompanyName)
	}
	if update.CompanyDescription != nil {
		forRole("company_description", domain.RoleEmployer, *update.CompanyDescription)
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ` + arg(id) + ` RETURNING ` + userColumns

	user := &domain.User{}
	if err := scanUser(r.dbpool.QueryRowContext(ctx, query, args...), user); err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

func (r *Repository) SetPasswordHash(ctx context.Context, id string, passwordHash string) error {
	return r.setUserColumn(ctx, id, "password_hash", passwordHash)
}

func (r *Repository) SetResumeURL(ctx context.Context, id string, resumeURL string) error {
	return r.setUserColumn(ctx, id, "resume_url", resumeURL)
}

// setUserColumn is only called with constant column names.
func (r *Repository) setUserColumn(ctx context.Context, id string, column string, value any) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `UPDATE users SET ` + column + ` = $1, updated_at = $2 WHERE id = $3`

	res, err := r.dbpool.ExecContext(ctx, query, value, time.Now().UTC(), id)
	if err != nil {
		return translateError(err)
	}
	return expectAffected(res)
}

func (r *Repository) ToggleUserBlocked(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE users
		SET is_blocked = NOT is_blocked, updated_at = $2
		WHERE id = $1
		RETURNING ` + userColumns

	user := &domain.User{}
	if err := scanUser(r.dbpool.QueryRowContext(ctx, query, id, time.Now().UTC()), user); err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

// DeleteUser relies on ON DELETE CASCADE for owned jobs and applications.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	return expectAffected(res)
}

func (r *Repository) GetUserStats(ctx context.Context) (*domain.UserStats, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE role = 'seeker'),
			COUNT(*) FILTER (WHERE role = 'employer'),
			COUNT(*) FILTER (WHERE role = 'admin'),
			COUNT(*) FILTER (WHERE is_blocked)
		FROM users
	`

	stats := &domain.UserStats{}
	dst := []any{&stats.TotalUsers, &stats.Seekers, &stats.Employers, &stats.Admins, &stats.Blocked}
	if err := r.dbpool.QueryRowContext(ctx, query).Scan(dst...); err != nil {
		return nil, err
	}
	return stats, nil
}
