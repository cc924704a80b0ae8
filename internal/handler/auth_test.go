package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hirehub-dev/hirehub/backend/internal/auth"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	e := newTestEnv(t)

	resp := e.register("Alice", "alice@example.com", domain.RoleEmployer, map[string]any{
		"companyName":        "Acme",
		"companyDescription": "Rockets",
	})
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, domain.RoleEmployer, resp.Role)
	assert.Equal(t, "Alice", resp.Name)

	rec := e.do(http.MethodGet, "/api/users/profile", nil, resp.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	me := decode[domain.User](t, rec)
	assert.Equal(t, resp.ID, me.ID)
	assert.Equal(t, "alice@example.com", me.Email)
	assert.Equal(t, "Acme", me.CompanyName)
	assert.Equal(t, "Rockets", me.CompanyDescription)
	assert.False(t, me.IsBlocked)
}

func TestRegisterDefaultsToSeeker(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPost, "/api/auth/register", map[string]string{
		"name":        "Bob",
		"email":       "bob@example.com",
		"password":    testPassword,
		"companyName": "ignored",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[AuthResponse](t, rec)
	assert.Equal(t, domain.RoleSeeker, resp.Role)

	me := decode[domain.User](t, e.do(http.MethodGet, "/api/users/profile", nil, resp.Token))
	assert.Empty(t, me.CompanyName)
}

func TestRegisterValidation(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name string
		body any
	}{
		{"missing name", map[string]string{"email": "a@example.com", "password": testPassword}},
		{"invalid email", map[string]string{"name": "A", "email": "not-an-email", "password": testPassword}},
		{"short password", map[string]string{"name": "A", "email": "a@example.com", "password": "12345"}},
		{"admin role", map[string]string{"name": "A", "email": "a@example.com", "password": testPassword, "role": "admin"}},
		{"unknown role", map[string]string{"name": "A", "email": "a@example.com", "password": testPassword, "role": "recruiter"}},
		{"malformed json", `{"name": "A",`},
		{"empty body", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(http.MethodPost, "/api/auth/register", tt.body, "")
			requireError(t, rec, http.StatusBadRequest, ErrCodeValidation)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e := newTestEnv(t)
	e.register("Alice", "alice@example.com", domain.RoleSeeker, nil)

	rec := e.do(http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Alice Again",
		"email":    "alice@example.com",
		"password": testPassword,
		"role":     "employer",
	}, "")
	requireError(t, rec, http.StatusConflict, ErrCodeConflict)

	// emails are compared as given
	e.register("Alice Upper", "Alice@example.com", domain.RoleSeeker, nil)
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	registered := e.register("Alice", "alice@example.com", domain.RoleSeeker, nil)

	rec := e.login("alice@example.com", testPassword)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[AuthResponse](t, rec)
	assert.Equal(t, registered.ID, resp.ID)
	assert.Equal(t, domain.RoleSeeker, resp.Role)
	assert.NotEmpty(t, resp.Token)

	wrongPassword := requireError(t, e.login("alice@example.com", "wrong-password"), http.StatusUnauthorized, ErrCodeUnauthenticated)
	unknownEmail := requireError(t, e.login("nobody@example.com", testPassword), http.StatusUnauthorized, ErrCodeUnauthenticated)
	assert.Equal(t, wrongPassword.Message, unknownEmail.Message)

	requireError(t, e.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "alice@example.com"}, ""), http.StatusBadRequest, ErrCodeValidation)
}

func TestAuthenticate(t *testing.T) {
	e := newTestEnv(t)
	seeker := e.register("Alice", "alice@example.com", domain.RoleSeeker, nil)

	requireError(t, e.do(http.MethodGet, "/api/users/profile", nil, ""), http.StatusUnauthorized, ErrCodeUnauthenticated)
	requireError(t, e.do(http.MethodGet, "/api/users/profile", nil, "not-a-token"), http.StatusUnauthorized, ErrCodeUnauthenticated)

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "Basic "+seeker.Token)
	requireError(t, e.request(req, ""), http.StatusUnauthorized, ErrCodeUnauthenticated)

	req = httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "bearer "+seeker.Token)
	assert.Equal(t, http.StatusOK, e.request(req, "").Code)

	forged, _, err := auth.NewTokenIssuer("another-secret", time.Hour, "hirehub").Issue(seeker.ID, domain.RoleSeeker)
	require.NoError(t, err)
	requireError(t, e.do(http.MethodGet, "/api/users/profile", nil, forged), http.StatusUnauthorized, ErrCodeUnauthenticated)

	expired, _, err := auth.NewTokenIssuer(e.cfg.JWT.Secret, -time.Minute, "hirehub").Issue(seeker.ID, domain.RoleSeeker)
	require.NoError(t, err)
	requireError(t, e.do(http.MethodGet, "/api/users/profile", nil, expired), http.StatusUnauthorized, ErrCodeUnauthenticated)
}

func TestLogoutRevokesToken(t *testing.T) {
	e := newTestEnv(t)
	seeker := e.register("Alice", "alice@example.com", domain.RoleSeeker, nil)

	rec := e.do(http.MethodPost, "/api/auth/logout", nil, seeker.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Logged out successfully", decode[MessageResponse](t, rec).Message)

	requireError(t, e.do(http.MethodGet, "/api/users/profile", nil, seeker.Token), http.StatusUnauthorized, ErrCodeUnauthenticated)

	keys := e.redis.Keys()
	require.Len(t, keys, 1)
	ttl := e.redis.TTL(keys[0])
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Hour)

	// a fresh login is not affected
	fresh := decode[AuthResponse](t, e.login("alice@example.com", testPassword))
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/users/profile", nil, fresh.Token).Code)

	requireError(t, e.do(http.MethodPost, "/api/auth/logout", nil, ""), http.StatusUnauthorized, ErrCodeUnauthenticated)
}

func wrongOTP(otp string) string {
	if otp == "000000" {
		return "111111"
	}
	return "000000"
}

func (e *testEnv) requireReset(email string) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, "/api/auth/reset-password/require", map[string]string{"email": email}, "")
}

func (e *testEnv) confirmReset(email, otp, password string) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, "/api/auth/reset-password/confirm", map[string]string{
		"email":    email,
		"otp":      otp,
		"password": password,
	}, "")
}

func TestResetPassword(t *testing.T) {
	e := newTestEnv(t)
	e.register("Alice", "alice@example.com", domain.RoleSeeker, nil)

	rec := e.requireReset("alice@example.com")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	known := decode[MessageResponse](t, rec).Message

	sent := e.mailer.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice@example.com", sent[0].to)
	assert.Equal(t, "Alice", sent[0].data.Name)
	assert.Equal(t, 15, sent[0].data.Expiration)
	otp := sent[0].data.OTP
	assert.Len(t, otp, 6)

	// unknown addresses get the same answer and no mail
	rec = e.requireReset("nobody@example.com")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, known, decode[MessageResponse](t, rec).Message)
	assert.Len(t, e.mailer.all(), 1)

	requireError(t, e.confirmReset("alice@example.com", wrongOTP(otp), "newsecret"), http.StatusBadRequest, ErrCodeValidation)
	requireError(t, e.confirmReset("nobody@example.com", otp, "newsecret"), http.StatusBadRequest, ErrCodeValidation)
	requireError(t, e.confirmReset("alice@example.com", otp, "123"), http.StatusBadRequest, ErrCodeValidation)

	rec = e.confirmReset("alice@example.com", otp, "newsecret")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	requireError(t, e.login("alice@example.com", testPassword), http.StatusUnauthorized, ErrCodeUnauthenticated)
	assert.Equal(t, http.StatusOK, e.login("alice@example.com", "newsecret").Code)

	// the code is single use
	requireError(t, e.confirmReset("alice@example.com", otp, "another1"), http.StatusBadRequest, ErrCodeValidation)
	assert.Empty(t, e.redis.Keys())
}

func TestResetPasswordAttemptsExhausted(t *testing.T) {
	e := newTestEnv(t)
	e.register("Alice", "alice@example.com", domain.RoleSeeker, nil)

	require.Equal(t, http.StatusOK, e.requireReset("alice@example.com").Code)
	otp := e.mailer.all()[0].data.OTP

	for i := 0; i < maxOTPAttempts; i++ {
		requireError(t, e.confirmReset("alice@example.com", wrongOTP(otp), "newsecret"), http.StatusBadRequest, ErrCodeValidation)
	}

	requireError(t, e.confirmReset("alice@example.com", otp, "newsecret"), http.StatusBadRequest, ErrCodeValidation)
	assert.Equal(t, http.StatusOK, e.login("alice@example.com", testPassword).Code)

	// a new code starts a new round
	require.Equal(t, http.StatusOK, e.requireReset("alice@example.com").Code)
	otp = e.mailer.all()[1].data.OTP
	assert.Equal(t, http.StatusOK, e.confirmReset("alice@example.com", otp, "newsecret").Code)
}

func TestResetPasswordExpired(t *testing.T) {
	e := newTestEnv(t)
	e.register("Alice", "alice@example.com", domain.RoleSeeker, nil)

	require.Equal(t, http.StatusOK, e.requireReset("alice@example.com").Code)
	otp := e.mailer.all()[0].data.OTP

	e.redis.FastForward(16 * time.Minute)

	requireError(t, e.confirmReset("alice@example.com", otp, "newsecret"), http.StatusBadRequest, ErrCodeValidation)
}

func TestResetPasswordMailFailure(t *testing.T) {
	e := newTestEnv(t)
	e.register("Alice", "alice@example.com", domain.RoleSeeker, nil)
	e.mailer.err = errors.New("smtp down")

	resp := requireError(t, e.requireReset("alice@example.com"), http.StatusInternalServerError, ErrCodeInternal)
	assert.NotContains(t, resp.Message, "smtp")
}

func TestResetPasswordAttemptsCounterExpires(t *testing.T) {
	e := newTestEnv(t)
	seeker := e.register("Alice", "alice@example.com", domain.RoleSeeker, nil)

	require.Equal(t, http.StatusOK, e.requireReset("alice@example.com").Code)
	otp := e.mailer.all()[0].data.OTP

	requireError(t, e.confirmReset("alice@example.com", wrongOTP(otp), "newsecret"), http.StatusBadRequest, ErrCodeValidation)

	key := resetPasswordAttemptsKey(seeker.ID)
	require.True(t, e.redis.Exists(key))
	ttl := e.redis.TTL(key)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 15*time.Minute)

	// a failing store surfaces as an internal error, not as a wrong code
	e.redis.SetError("redis down")
	requireError(t, e.confirmReset("alice@example.com", wrongOTP(otp), "newsecret"), http.StatusInternalServerError, ErrCodeInternal)
}
