package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	goerrors "github.com/go-errors/errors"
	"github.com/google/uuid"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	"github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-Id"

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		info := &requestInfo{ID: r.Header.Get(requestIDHeader)}
		if info.ID == "" {
			info.ID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, info.ID)

		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		ctx := context.WithValue(r.Context(), RequestInfoCtx, info)
		next.ServeHTTP(rw, r.WithContext(ctx))

		entry := h.logger.WithFields(logrus.Fields{
			"request_id": info.ID,
			"status":     rw.StatusCode,
			"ip":         r.RemoteAddr,
			"method":     r.Method,
			"path":       r.URL.Path,
			"duration":   time.Since(start).String(),
		})
		if info.UserID != "" {
			entry = entry.WithField("user_id", info.UserID)
		}

		switch {
		case rw.StatusCode >= http.StatusInternalServerError:
			entry.Error("request handled")
		case rw.StatusCode >= http.StatusBadRequest:
			entry.Warn("request handled")
		default:
			entry.Info("request handled")
		}
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			err := goerrors.Wrap(rec, 2)
			h.logger.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"stack":  err.ErrorStack(),
			}).Error(fmt.Sprintf("panic: %v", rec))
			h.errorResponse(w, r, http.StatusInternalServerError, ErrCodeInternal, "Internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}

func revokedTokenKey(jti string) string {
	return fmt.Sprintf("token_%s_revoked", jti)
}

func (h *Handler) redisContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(h.config.Redis.OperationTimeout)*time.Second)
}

// authenticate resolves the bearer token to a user. The user is reloaded on
// every request so a block or a deletion takes effect immediately.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, tokenString, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			h.unauthorized(w, r, "Not authorized, no token")
			return
		}

		claims, err := h.tokens.Validate(strings.TrimSpace(tokenString))
		if err != nil {
			h.unauthorized(w, r, "Not authorized, token failed")
			return
		}

		rctx, cancel := h.redisContext(r.Context())
		revoked, err := h.redisClient.Exists(rctx, revokedTokenKey(claims.ID)).Result()
		cancel()
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if revoked > 0 {
			h.unauthorized(w, r, "Not authorized, token revoked")
			return
		}

		myInfo, err := h.repository.GetUserByID(r.Context(), claims.UserID())
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				h.unauthorized(w, r, "Not authorized, user not found")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		if myInfo.IsBlocked {
			h.accountBlocked(w, r)
			return
		}

		if info := requestInfoFrom(r); info != nil {
			info.UserID = myInfo.ID
		}

		ctx := context.WithValue(r.Context(), ClaimsCtx, claims)
		ctx = context.WithValue(ctx, MyInfoCtx, myInfo)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequiredRole checks the role stored on the user, not the one in the token.
func (h *Handler) RequiredRole(roles []domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			myInfo := myInfoFrom(r)
			if !slices.Contains(roles, myInfo.Role) {
				h.forbidden(w, r, fmt.Sprintf("User role %s is not authorized to access this route", myInfo.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) jobCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		job, err := h.repository.GetJobByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				h.notFound(w, r, "Job not found")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), JobCtx, job)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireJobOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !jobFrom(r).OwnedBy(myInfoFrom(r).ID) {
			h.forbidden(w, r, "Not authorized to manage this job")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) requireJobOwnerOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		myInfo := myInfoFrom(r)
		if myInfo.Role != domain.RoleAdmin && !jobFrom(r).OwnedBy(myInfo.ID) {
			h.forbidden(w, r, "Not authorized to delete this job")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) applicationCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app, err := h.repository.GetApplicationByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				h.notFound(w, r, "Application not found")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), ApplicationCtx, app)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireApplicationJobOwner only lets the employer who posted the job act on
// its applications.
func (h *Handler) requireApplicationJobOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app := r.Context().Value(ApplicationCtx).(*domain.Application)

		job, err := h.repository.GetJobByID(r.Context(), app.JobID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				h.notFound(w, r, "Job not found")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		if !job.OwnedBy(myInfoFrom(r).ID) {
			h.forbidden(w, r, "Not authorized to update this application")
			return
		}

		ctx := context.WithValue(r.Context(), JobCtx, job)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) targetUserCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.repository.GetUserByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				h.notFound(w, r, "User not found")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), TargetUserCtx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) preventOperateSelf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := r.Context().Value(TargetUserCtx).(*domain.User)
		if target.ID == myInfoFrom(r).ID {
			h.badRequestMessage(w, r, "You cannot perform this action on your own account")
			return
		}
		next.ServeHTTP(w, r)
	})
}
