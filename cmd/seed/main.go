package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hirehub-dev/hirehub/backend/internal/config"
	"github.com/hirehub-dev/hirehub/backend/internal/database"
	"github.com/hirehub-dev/hirehub/backend/internal/logger"
	"github.com/hirehub-dev/hirehub/backend/internal/seed"
	"github.com/sirupsen/logrus"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "operation to run (1: ensure admin account, 2: insert random employers with jobs, 3: insert random seekers with applications)")
	flag.IntVar(&n, "n", 5, "number of users to insert")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	if cfg.Database.Driver == "memory" {
		log.Fatal("seeding the memory store has no effect, set DATABASE_DRIVER")
	}

	ctx := context.Background()

	repo, err := database.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer repo.Close(ctx)

	s := seed.New(cfg, repo, log)

	switch op {
	case 0:
		log.Error("no operation given")
	case 1:
		created, err := s.EnsureAdmin(ctx)
		if err != nil {
			log.WithError(err).Error("failed to create admin")
			return
		}
		if !created {
			log.WithField("email", cfg.InitialAdmin.Email).Info("admin already exists")
			return
		}
		log.WithField("email", cfg.InitialAdmin.Email).Info("admin created")
	case 2:
		if n <= 0 {
			log.Error("n must be positive")
			return
		}

		employers, jobs, err := s.SeedEmployers(ctx, n)
		entry := log.WithFields(logrus.Fields{"employers": employers, "jobs": jobs})
		if err != nil {
			entry.WithError(err).Error("failed to insert employers")
			return
		}
		entry.Info("inserted employers")
	case 3:
		if n <= 0 {
			log.Error("n must be positive")
			return
		}

		seekers, applications, err := s.SeedSeekers(ctx, n)
		entry := log.WithFields(logrus.Fields{"seekers": seekers, "applications": applications})
		if err != nil {
			entry.WithError(err).Error("failed to insert seekers")
			return
		}
		entry.Info("inserted seekers")
	default:
		log.Error("unknown operation")
	}
}
