package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hirehub-dev/hirehub/backend/internal/config"
	"github.com/hirehub-dev/hirehub/backend/internal/database"
	"github.com/hirehub-dev/hirehub/backend/internal/handler"
	"github.com/hirehub-dev/hirehub/backend/internal/logger"
	"github.com/hirehub-dev/hirehub/backend/internal/mail"
	"github.com/hirehub-dev/hirehub/backend/internal/seed"
	"github.com/hirehub-dev/hirehub/backend/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	/**********************************************
	 * load config
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	/**********************************************
	 * create logger
	 **********************************************/
	log := logger.New(cfg.LogLevel)

	/**********************************************
	 * connect database
	 **********************************************/
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	repo, err := database.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			log.WithError(err).Error("failed to close database")
		}
	}()
	log.WithField("driver", cfg.Database.Driver).Info("database connected")

	/**********************************************
	 * make sure the initial admin exists
	 **********************************************/
	created, err := seed.New(cfg, repo, log).EnsureAdmin(ctx)
	if err != nil {
		log.WithError(err).Fatal("failed to create initial admin")
	}
	if created {
		log.WithField("email", cfg.InitialAdmin.Email).Info("initial admin created")
	}

	/**********************************************
	 * connect redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("failed to connect redis")
	}

	/**********************************************
	 * resume storage and mailer
	 **********************************************/
	uploader, err := storage.New(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to create resume storage")
	}
	if closer, ok := uploader.(io.Closer); ok {
		defer closer.Close()
	}

	mailer, err := mail.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create mailer")
	}

	/**********************************************
	 * create handler
	 **********************************************/
	h, err := handler.NewHandler(cfg, repo, rdb, uploader, mailer, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create handler")
	}
	h.RegisterRoutes()

	/**********************************************
	 * start HTTP server
	 **********************************************/
	errorLog := log.WriterLevel(logrus.ErrorLevel)
	defer errorLog.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      h.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     stdlog.New(errorLog, "", 0),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.WithField("port", cfg.Server.Port).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server stopped unexpectedly")
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("failed to shut down server")
	}
	log.Info("server stopped")
}
