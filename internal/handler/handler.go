package handler

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/hirehub-dev/hirehub/backend/internal/auth"
	"github.com/hirehub-dev/hirehub/backend/internal/config"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	"github.com/hirehub-dev/hirehub/backend/internal/mail"
	"github.com/hirehub-dev/hirehub/backend/internal/repository"
	"github.com/hirehub-dev/hirehub/backend/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	validate    *validator.Validate
	translator  ut.Translator
	config      *config.Config
	repository  repository.Repository
	tokens      *auth.TokenIssuer
	redisClient *redis.Client
	uploader    storage.Uploader
	mailer      mail.Mailer
	logger      *logrus.Logger

	Mux *chi.Mux
}

func NewHandler(
	cfg *config.Config,
	repo repository.Repository,
	rdb *redis.Client,
	uploader storage.Uploader,
	mailer mail.Mailer,
	logger *logrus.Logger,
) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their json names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	tokens := auth.NewTokenIssuer(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.Expiration)*time.Second,
		cfg.JWT.Issuer,
	)

	return &Handler{
		validate:    validate,
		translator:  trans,
		config:      cfg,
		repository:  repo,
		tokens:      tokens,
		redisClient: rdb,
		uploader:    uploader,
		mailer:      mailer,
		logger:      logger,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestLogger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.config.Origins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Range", "X-Content-Range", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	h.Mux.NotFound(h.routeNotFound)
	h.Mux.MethodNotAllowed(h.methodNotAllowed)

	h.Mux.Get("/", h.Welcome)
	h.Mux.Get("/healthz", h.Healthz)

	// uploaded resumes are served from disk only for the local driver
	if local, ok := h.uploader.(*storage.LocalUploader); ok {
		prefix := strings.TrimRight(h.config.Storage.PublicPrefix, "/")
		h.Mux.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(local.Dir()))))
	}

	seekerOnly := h.RequiredRole([]domain.Role{domain.RoleSeeker})
	employerOnly := h.RequiredRole([]domain.Role{domain.RoleEmployer})
	adminOnly := h.RequiredRole([]domain.Role{domain.RoleAdmin})

	h.Mux.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.With(h.authenticate).Post("/logout", h.Logout)
			r.Route("/reset-password", func(r chi.Router) {
				r.Post("/require", h.RequireResetPassword)
				r.Post("/confirm", h.ConfirmResetPassword)
			})
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", h.ListJobs)
			r.Group(func(r chi.Router) {
				r.Use(h.authenticate)
				r.Use(employerOnly)
				r.Post("/", h.CreateJob)
				r.Get("/my/jobs", h.ListMyJobs)
				r.Get("/my/stats", h.GetMyJobStats)
			})
			r.Route("/{id}", func(r chi.Router) {
				r.With(h.jobCtx).Get("/", h.GetJob)
				r.With(h.authenticate, employerOnly, h.jobCtx, h.requireJobOwner).Put("/", h.UpdateJob)
				r.With(
					h.authenticate,
					h.RequiredRole([]domain.Role{domain.RoleEmployer, domain.RoleAdmin}),
					h.jobCtx,
					h.requireJobOwnerOrAdmin,
				).Delete("/", h.DeleteJob)
			})
		})

		r.Route("/applications", func(r chi.Router) {
			r.Use(h.authenticate)
			r.With(seekerOnly).Post("/", h.Apply)
			r.With(seekerOnly).Get("/my-applications", h.ListMyApplications)
			r.With(employerOnly, h.jobCtx, h.requireJobOwner).Get("/job/{id}", h.ListJobApplications)
			r.With(employerOnly, h.applicationCtx, h.requireApplicationJobOwner).Put("/{id}/status", h.UpdateApplicationStatus)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(h.authenticate)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
			r.Put("/profile/password", h.UpdateMyPassword)
			r.With(seekerOnly).Post("/resume", h.UploadResume)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/all", h.GetAllUsers)
				r.Get("/stats", h.GetUserStats)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.targetUserCtx)
					r.Use(h.preventOperateSelf)
					r.Put("/block", h.ToggleUserBlock)
					r.Delete("/", h.DeleteUser)
				})
			})
		})
	})
}

func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	h.messageResponse(w, r, http.StatusOK, "Welcome to HireHub API")
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.repository.Ping(r.Context()); err != nil {
		h.logger.WithError(err).Error("store ping failed")
		h.errorResponse(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, "Store unavailable")
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) routeNotFound(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r, "Route not found")
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.errorResponse(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
}
