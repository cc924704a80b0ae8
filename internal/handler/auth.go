package handler

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hirehub-dev/hirehub/backend/internal/auth"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	"github.com/hirehub-dev/hirehub/backend/internal/utils"
	"github.com/redis/go-redis/v9"
)

// maxOTPAttempts wrong codes invalidate the pending reset.
const maxOTPAttempts = 5

type AuthResponse struct {
	Token string      `json:"token"`
	Role  domain.Role `json:"role"`
	ID    string      `json:"id"`
	Name  string      `json:"name"`
}

func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request, status int, user *domain.User) {
	token, _, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, status, AuthResponse{
		Token: token,
		Role:  user.Role,
		ID:    user.ID,
		Name:  user.Name,
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name               string      `json:"name" validate:"required,max=100"`
		Email              string      `json:"email" validate:"required,email"`
		Password           string      `json:"password" validate:"required,min=6,max=72"`
		Role               domain.Role `json:"role" validate:"omitempty,oneof=seeker employer"`
		CompanyName        string      `json:"companyName" validate:"max=200"`
		CompanyDescription string      `json:"companyDescription" validate:"max=2000"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		Skills:       []string{},
	}
	if user.Role == "" {
		user.Role = domain.RoleSeeker
	}
	if user.Role == domain.RoleEmployer {
		user.CompanyName = strings.TrimSpace(req.CompanyName)
		user.CompanyDescription = strings.TrimSpace(req.CompanyDescription)
	}

	if err := h.repository.CreateUser(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			h.conflict(w, r, "User already exists")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.issueToken(w, r, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user, err := h.repository.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.unauthorized(w, r, "Invalid email or password")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.unauthorized(w, r, "Invalid email or password")
		return
	}

	if user.IsBlocked {
		h.accountBlocked(w, r)
		return
	}

	h.issueToken(w, r, http.StatusOK, user)
}

// Logout revokes the presented token until it would have expired anyway.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	if ttl := claims.TTL(time.Now()); ttl > 0 {
		ctx, cancel := h.redisContext(r.Context())
		defer cancel()

		if err := h.redisClient.Set(ctx, revokedTokenKey(claims.ID), claims.UserID(), ttl).Err(); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	h.messageResponse(w, r, http.StatusOK, "Logged out successfully")
}

func resetPasswordOTPKey(userID string) string {
	return fmt.Sprintf("otp_%s_reset_password", userID)
}

func resetPasswordAttemptsKey(userID string) string {
	return fmt.Sprintf("otp_%s_reset_password_attempts", userID)
}

func (h *Handler) RequireResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	const sent = "If the email is registered, a reset code has been sent"

	user, err := h.repository.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// same answer as for a known address
			h.messageResponse(w, r, http.StatusOK, sent)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	otp, err := utils.GenerateRandomOTP(h.config.OTP.Length)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	ctx, cancel := h.redisContext(r.Context())
	defer cancel()

	expiration := time.Duration(h.config.OTP.Expiration) * time.Second
	_, err = h.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, resetPasswordOTPKey(user.ID), otp, expiration)
		pipe.Del(ctx, resetPasswordAttemptsKey(user.ID))
		return nil
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	data := domain.ResetPasswordMailData{
		Name:       user.Name,
		OTP:        otp,
		Expiration: h.config.OTP.Expiration / 60, // minutes in the email, seconds in the config
	}
	if err := h.mailer.SendResetPassword(r.Context(), user.Email, data); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.messageResponse(w, r, http.StatusOK, sent)
}

func (h *Handler) ConfirmResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		OTP      string `json:"otp" validate:"required,numeric"`
		Password string `json:"password" validate:"required,min=6,max=72"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	const invalidCode = "Invalid or expired code"

	user, err := h.repository.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.badRequestMessage(w, r, invalidCode)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	ctx, cancel := h.redisContext(r.Context())
	defer cancel()

	otpKey := resetPasswordOTPKey(user.ID)
	attemptsKey := resetPasswordAttemptsKey(user.ID)

	otp, err := h.redisClient.Get(ctx, otpKey).Result()
	if err != nil {
		switch {
		case errors.Is(err, redis.Nil):
			h.badRequestMessage(w, r, invalidCode)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if subtle.ConstantTimeCompare([]byte(otp), []byte(req.OTP)) != 1 {
		attempts, err := h.redisClient.Incr(ctx, attemptsKey).Result()
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if attempts == 1 {
			if err := h.redisClient.Expire(ctx, attemptsKey, time.Duration(h.config.OTP.Expiration)*time.Second).Err(); err != nil {
				h.internalServerError(w, r, err)
				return
			}
		}
		if attempts >= maxOTPAttempts {
			if err := h.redisClient.Del(ctx, otpKey, attemptsKey).Err(); err != nil {
				h.internalServerError(w, r, err)
				return
			}
		}
		h.badRequestMessage(w, r, invalidCode)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.SetPasswordHash(r.Context(), user.ID, passwordHash); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.badRequestMessage(w, r, invalidCode)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.redisClient.Del(ctx, otpKey, attemptsKey).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.messageResponse(w, r, http.StatusOK, "Password reset successfully")
}
