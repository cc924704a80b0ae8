// Package seed fills a store with the initial admin and with random demo data.
package seed

import (
	"context"
	"errors"
	"math/rand"

	"github.com/hirehub-dev/hirehub/backend/internal/auth"
	"github.com/hirehub-dev/hirehub/backend/internal/config"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	"github.com/hirehub-dev/hirehub/backend/internal/repository"
	"github.com/hirehub-dev/hirehub/backend/internal/utils"
	"github.com/sirupsen/logrus"
)

type Seeder struct {
	cfg    *config.Config
	repo   repository.Repository
	logger *logrus.Logger
}

func New(cfg *config.Config, repo repository.Repository, logger *logrus.Logger) *Seeder {
	return &Seeder{cfg: cfg, repo: repo, logger: logger}
}

// EnsureAdmin creates the configured initial admin. An account that already
// uses the email is left alone and created is false.
func (s *Seeder) EnsureAdmin(ctx context.Context) (created bool, err error) {
	passwordHash, err := auth.HashPassword(s.cfg.InitialAdmin.Password)
	if err != nil {
		return false, err
	}

	admin := &domain.User{
		Name:         s.cfg.InitialAdmin.Name,
		Email:        s.cfg.InitialAdmin.Email,
		PasswordHash: passwordHash,
		Role:         domain.RoleAdmin,
		Skills:       []string{},
	}
	if err := s.repo.CreateUser(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// insertUsers creates up to n random users of role. Email collisions between
// generated names are skipped.
func (s *Seeder) insertUsers(ctx context.Context, role domain.Role, n int) ([]*domain.User, error) {
	users := make([]*domain.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := utils.GenerateRandomUser(role, s.cfg.Seed.Password, s.cfg.Seed.EmailDomain)
		if err != nil {
			return users, err
		}

		if err := s.repo.CreateUser(ctx, user); err != nil {
			if errors.Is(err, domain.ErrDuplicateEmail) {
				s.logger.WithField("email", user.Email).Warn("skipping duplicate random user")
				continue
			}
			return users, err
		}
		users = append(users, user)
	}
	return users, nil
}

// SeedEmployers inserts n random employers, each posting up to
// SEED_JOBS_PER_EMPLOYER random jobs.
func (s *Seeder) SeedEmployers(ctx context.Context, n int) (employers int, jobs int, err error) {
	users, err := s.insertUsers(ctx, domain.RoleEmployer, n)
	if err != nil {
		return len(users), 0, err
	}

	for _, employer := range users {
		count := 0
		if s.cfg.Seed.JobsPerUser > 0 {
			count = rand.Intn(s.cfg.Seed.JobsPerUser) + 1
		}
		for i := 0; i < count; i++ {
			if err := s.repo.CreateJob(ctx, utils.GenerateRandomJob(employer)); err != nil {
				return len(users), jobs, err
			}
			jobs++
		}
	}

	return len(users), jobs, nil
}

// SeedSeekers inserts n random seekers, each applying to up to
// SEED_MAX_APPLICATIONS of the jobs still accepting applications.
func (s *Seeder) SeedSeekers(ctx context.Context, n int) (seekers int, applications int, err error) {
	open, err := s.repo.ListJobs(ctx, repository.JobFilter{Status: domain.JobStatusOpen})
	if err != nil {
		return 0, 0, err
	}
	hiring, err := s.repo.ListJobs(ctx, repository.JobFilter{Status: domain.JobStatusHiring})
	if err != nil {
		return 0, 0, err
	}
	jobs := append(open, hiring...)

	users, err := s.insertUsers(ctx, domain.RoleSeeker, n)
	if err != nil {
		return len(users), 0, err
	}

	if len(jobs) == 0 {
		s.logger.Warn("no open jobs, seekers were created without applications")
		return len(users), 0, nil
	}

	for _, seeker := range users {
		for _, job := range utils.GenerateRandomSubset(jobs, s.cfg.Seed.MaxApplies) {
			app := &domain.Application{JobID: job.ID, ApplicantID: seeker.ID}
			if err := s.repo.CreateApplication(ctx, app); err != nil {
				if errors.Is(err, domain.ErrAlreadyApplied) {
					continue
				}
				return len(users), applications, err
			}
			applications++
		}
	}

	return len(users), applications, nil
}
