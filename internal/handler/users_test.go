package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) uploadResume(token, field, filename string, content []byte) *httptest.ResponseRecorder {
	e.t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(e.t, err)
		_, err = fw.Write(content)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, mw.WriteField("note", "hello"))
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/users/resume", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.request(req, token)
}

func TestUpdateProfile(t *testing.T) {
	e := newTestEnv(t)
	seeker := e.register("Sam", "sam@example.com", domain.RoleSeeker, nil)

	rec := e.do(http.MethodPut, "/api/users/profile", map[string]any{
		"skills":      "Go, SQL, Go",
		"education":   "MSc",
		"companyName": "Nope",
	}, seeker.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	me := decode[domain.User](t, rec)
	assert.Equal(t, "Sam", me.Name)
	assert.Equal(t, []string{"Go", "SQL"}, me.Skills)
	assert.Equal(t, "MSc", me.Education)
	assert.Empty(t, me.CompanyName)

	// absent fields are kept
	rec = e.do(http.MethodPut, "/api/users/profile", map[string]any{"name": "  Samuel "}, seeker.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	me = decode[domain.User](t, e.do(http.MethodGet, "/api/users/profile", nil, seeker.Token))
	assert.Equal(t, "Samuel", me.Name)
	assert.Equal(t, []string{"Go", "SQL"}, me.Skills)
	assert.Equal(t, "MSc", me.Education)

	// array entries are kept whole
	rec = e.do(http.MethodPut, "/api/users/profile", map[string]any{
		"skills": []string{" Node.js, Express ", "SQL", "SQL"},
	}, seeker.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"Node.js, Express", "SQL"}, decode[domain.User](t, rec).Skills)

	requireError(t, e.do(http.MethodPut, "/api/users/profile", map[string]any{"name": " "}, seeker.Token), http.StatusBadRequest, ErrCodeValidation)
	requireError(t, e.do(http.MethodPut, "/api/users/profile", map[string]any{"skills": 42}, seeker.Token), http.StatusBadRequest, ErrCodeValidation)
	requireError(t, e.do(http.MethodPut, "/api/users/profile", map[string]any{"name": "X"}, ""), http.StatusUnauthorized, ErrCodeUnauthenticated)
}

func TestUpdateEmployerProfile(t *testing.T) {
	e := newTestEnv(t)
	employer := e.register("Alice", "alice@example.com", domain.RoleEmployer, nil)

	rec := e.do(http.MethodPut, "/api/users/profile", map[string]any{
		"companyName":        "Acme",
		"companyDescription": "Rockets",
		"skills":             []string{"Go"},
	}, employer.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	me := decode[domain.User](t, rec)
	assert.Equal(t, "Acme", me.CompanyName)
	assert.Equal(t, "Rockets", me.CompanyDescription)
	assert.Empty(t, me.Skills)
}

func TestUpdateMyPassword(t *testing.T) {
	e := newTestEnv(t)
	seeker := e.register("Sam", "sam@example.com", domain.RoleSeeker, nil)

	wrong := requireError(t, e.do(http.MethodPut, "/api/users/profile/password", map[string]string{
		"oldPassword": "wrong-password",
		"newPassword": "newsecret",
	}, seeker.Token), http.StatusBadRequest, ErrCodeValidation)
	assert.Equal(t, "Current password is incorrect", wrong.Message)

	requireError(t, e.do(http.MethodPut, "/api/users/profile/password", map[string]string{
		"oldPassword": testPassword,
		"newPassword": "123",
	}, seeker.Token), http.StatusBadRequest, ErrCodeValidation)

	rec := e.do(http.MethodPut, "/api/users/profile/password", map[string]string{
		"oldPassword": testPassword,
		"newPassword": "newsecret",
	}, seeker.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Password updated successfully", decode[MessageResponse](t, rec).Message)

	requireError(t, e.login("sam@example.com", testPassword), http.StatusUnauthorized, ErrCodeUnauthenticated)
	assert.Equal(t, http.StatusOK, e.login("sam@example.com", "newsecret").Code)
}

func TestUploadResume(t *testing.T) {
	e := newTestEnv(t)
	seeker := e.register("Sam", "sam@example.com", domain.RoleSeeker, nil)
	content := []byte("%PDF-1.4 resume")

	rec := e.uploadResume(seeker.Token, "resume", "CV.PDF", content)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[ResumeResponse](t, rec)
	assert.Equal(t, "Resume uploaded successfully", resp.Message)
	assert.True(t, strings.HasPrefix(resp.ResumeURL, "/uploads/resumes/"+seeker.ID+"/"), resp.ResumeURL)
	assert.True(t, strings.HasSuffix(resp.ResumeURL, ".pdf"), resp.ResumeURL)

	me := decode[domain.User](t, e.do(http.MethodGet, "/api/users/profile", nil, seeker.Token))
	assert.Equal(t, resp.ResumeURL, me.ResumeURL)

	served := e.do(http.MethodGet, resp.ResumeURL, nil, "")
	require.Equal(t, http.StatusOK, served.Code)
	assert.Equal(t, content, served.Body.Bytes())
}

func TestUploadResumeRejected(t *testing.T) {
	e := newTestEnv(t)
	seeker := e.register("Sam", "sam@example.com", domain.RoleSeeker, nil)
	employer := e.register("Alice", "alice@example.com", domain.RoleEmployer, nil)

	requireError(t, e.uploadResume(seeker.Token, "resume", "cv.exe", []byte("MZ")), http.StatusBadRequest, ErrCodeValidation)
	requireError(t, e.uploadResume(seeker.Token, "resume", "cv.pdf", bytes.Repeat([]byte("a"), 2048)), http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge)
	requireError(t, e.uploadResume(seeker.Token, "", "", nil), http.StatusBadRequest, ErrCodeValidation)
	requireError(t, e.uploadResume(seeker.Token, "document", "cv.pdf", []byte("%PDF")), http.StatusBadRequest, ErrCodeValidation)
	requireError(t, e.do(http.MethodPost, "/api/users/resume", map[string]string{"resume": "x"}, seeker.Token), http.StatusBadRequest, ErrCodeValidation)
	requireError(t, e.uploadResume(employer.Token, "resume", "cv.pdf", []byte("%PDF")), http.StatusForbidden, ErrCodeForbidden)

	me := decode[domain.User](t, e.do(http.MethodGet, "/api/users/profile", nil, seeker.Token))
	assert.Empty(t, me.ResumeURL)
}

func TestAdminUsersAndStats(t *testing.T) {
	e := newTestEnv(t)
	admin := e.createAdmin()
	employer := e.register("Alice", "alice@example.com", domain.RoleEmployer, nil)
	seeker := e.register("Sam", "sam@example.com", domain.RoleSeeker, nil)
	e.register("Kim", "kim@example.com", domain.RoleSeeker, nil)

	job := e.createJob(employer.Token, nil)
	e.createJob(employer.Token, nil)
	require.Equal(t, http.StatusCreated, e.apply(seeker.Token, job.ID).Code)

	rec := e.do(http.MethodGet, "/api/users/all", nil, admin.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Len(t, decode[[]domain.User](t, rec), 4)

	rec = e.do(http.MethodGet, "/api/users/stats", nil, admin.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{
		"totalUsers": 4,
		"seekers": 2,
		"employers": 1,
		"admins": 1,
		"blocked": 0,
		"totalJobs": 2,
		"totalApplications": 1
	}`, rec.Body.String())

	requireError(t, e.do(http.MethodGet, "/api/users/all", nil, seeker.Token), http.StatusForbidden, ErrCodeForbidden)
	requireError(t, e.do(http.MethodGet, "/api/users/stats", nil, employer.Token), http.StatusForbidden, ErrCodeForbidden)
	requireError(t, e.do(http.MethodGet, "/api/users/all", nil, ""), http.StatusUnauthorized, ErrCodeUnauthenticated)
}

func TestToggleUserBlock(t *testing.T) {
	e := newTestEnv(t)
	admin := e.createAdmin()
	seeker := e.register("Sam", "sam@example.com", domain.RoleSeeker, nil)
	path := "/api/users/" + seeker.ID + "/block"

	rec := e.do(http.MethodPut, path, nil, admin.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[BlockResponse](t, rec)
	assert.True(t, resp.IsBlocked)
	assert.Equal(t, "User blocked successfully", resp.Message)

	// the existing token stops working immediately
	requireError(t, e.do(http.MethodGet, "/api/users/profile", nil, seeker.Token), http.StatusForbidden, ErrCodeAccountBlocked)
	requireError(t, e.login("sam@example.com", testPassword), http.StatusForbidden, ErrCodeAccountBlocked)

	stats := decode[AdminStats](t, e.do(http.MethodGet, "/api/users/stats", nil, admin.Token))
	assert.EqualValues(t, 1, stats.Blocked)

	rec = e.do(http.MethodPut, path, nil, admin.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp = decode[BlockResponse](t, rec)
	assert.False(t, resp.IsBlocked)
	assert.Equal(t, "User unblocked successfully", resp.Message)

	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/users/profile", nil, seeker.Token).Code)
	assert.Equal(t, http.StatusOK, e.login("sam@example.com", testPassword).Code)

	requireError(t, e.do(http.MethodPut, path, nil, seeker.Token), http.StatusForbidden, ErrCodeForbidden)
	requireError(t, e.do(http.MethodPut, "/api/users/missing/block", nil, admin.Token), http.StatusNotFound, ErrCodeNotFound)
}

func TestAdminCannotOperateSelf(t *testing.T) {
	e := newTestEnv(t)
	admin := e.createAdmin()

	requireError(t, e.do(http.MethodPut, "/api/users/"+admin.ID+"/block", nil, admin.Token), http.StatusBadRequest, ErrCodeValidation)
	requireError(t, e.do(http.MethodDelete, "/api/users/"+admin.ID, nil, admin.Token), http.StatusBadRequest, ErrCodeValidation)

	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/users/profile", nil, admin.Token).Code)
}

func TestDeleteUser(t *testing.T) {
	e := newTestEnv(t)
	admin := e.createAdmin()
	employer := e.register("Alice", "alice@example.com", domain.RoleEmployer, nil)
	seeker := e.register("Sam", "sam@example.com", domain.RoleSeeker, nil)

	job := e.createJob(employer.Token, nil)
	require.Equal(t, http.StatusCreated, e.apply(seeker.Token, job.ID).Code)

	rec := e.do(http.MethodDelete, "/api/users/"+employer.ID, nil, admin.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "User deleted successfully", decode[MessageResponse](t, rec).Message)

	// the employer's jobs and their applications go with them
	requireError(t, e.do(http.MethodGet, "/api/users/profile", nil, employer.Token), http.StatusUnauthorized, ErrCodeUnauthenticated)
	requireError(t, e.do(http.MethodGet, "/api/jobs/"+job.ID, nil, ""), http.StatusNotFound, ErrCodeNotFound)
	mine := decode[[]domain.Application](t, e.do(http.MethodGet, "/api/applications/my-applications", nil, seeker.Token))
	assert.Empty(t, mine)

	requireError(t, e.do(http.MethodDelete, "/api/users/"+employer.ID, nil, admin.Token), http.StatusNotFound, ErrCodeNotFound)

	// the address is free again
	e.register("Alice", "alice@example.com", domain.RoleSeeker, nil)
}

// serveAs calls next with user loaded into the request context, as
// authenticate would have done when the request started.
func (e *testEnv) serveAs(user *domain.User, req *http.Request, next http.HandlerFunc) *httptest.ResponseRecorder {
	ctx := context.WithValue(req.Context(), MyInfoCtx, user)
	rec := httptest.NewRecorder()
	next(rec, req.WithContext(ctx))
	return rec
}

func TestUpdateProfileDoesNotRevertConcurrentWrites(t *testing.T) {
	e := newTestEnv(t)
	seeker := e.register("Sam", "sam@example.com", domain.RoleSeeker, nil)

	stale, err := e.repo.GetUserByID(context.Background(), seeker.ID)
	require.NoError(t, err)

	rec := e.do(http.MethodPut, "/api/users/profile/password", map[string]string{
		"oldPassword": testPassword,
		"newPassword": "newsecret",
	}, seeker.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.uploadResume(seeker.Token, "resume", "cv.pdf", []byte("%PDF"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resumeURL := decode[ResumeResponse](t, rec).ResumeURL

	body, err := json.Marshal(map[string]string{"education": "MSc"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/api/users/profile", bytes.NewReader(body))
	rec = e.serveAs(stale, req, e.h.UpdateProfile)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	me := decode[domain.User](t, rec)
	assert.Equal(t, "MSc", me.Education)
	assert.Equal(t, resumeURL, me.ResumeURL)

	requireError(t, e.login("sam@example.com", testPassword), http.StatusUnauthorized, ErrCodeUnauthenticated)
	assert.Equal(t, http.StatusOK, e.login("sam@example.com", "newsecret").Code)
}

func TestUploadResumeDoesNotRevertPasswordChange(t *testing.T) {
	e := newTestEnv(t)
	seeker := e.register("Sam", "sam@example.com", domain.RoleSeeker, nil)

	stale, err := e.repo.GetUserByID(context.Background(), seeker.ID)
	require.NoError(t, err)

	rec := e.do(http.MethodPost, "/api/auth/reset-password/require", map[string]string{"email": "sam@example.com"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	otp := e.mailer.all()[0].data.OTP
	require.Equal(t, http.StatusOK, e.confirmReset("sam@example.com", otp, "newsecret").Code)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("resume", "cv.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/users/resume", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec = e.serveAs(stale, req, e.h.UploadResume)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	requireError(t, e.login("sam@example.com", testPassword), http.StatusUnauthorized, ErrCodeUnauthenticated)
	fresh := decode[AuthResponse](t, e.login("sam@example.com", "newsecret"))
	me := decode[domain.User](t, e.do(http.MethodGet, "/api/users/profile", nil, fresh.Token))
	assert.Equal(t, decode[ResumeResponse](t, rec).ResumeURL, me.ResumeURL)
}
