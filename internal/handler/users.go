package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/hirehub-dev/hirehub/backend/internal/auth"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	"github.com/hirehub-dev/hirehub/backend/internal/utils"
)

// multipart boundaries and headers on top of the file itself
const multipartOverhead = 64 << 10

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, myInfoFrom(r))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	myInfo := myInfoFrom(r)

	var req struct {
		Name               *string    `json:"name" validate:"omitnil,min=1,max=100"`
		Skills             *skillList `json:"skills"`
		Education          *string    `json:"education" validate:"omitnil,max=200"`
		CompanyName        *string    `json:"companyName" validate:"omitnil,max=200"`
		CompanyDescription *string    `json:"companyDescription" validate:"omitnil,max=2000"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user, err := h.repository.UpdateProfile(r.Context(), myInfo.ID, domain.ProfileUpdate{
		Name:               req.Name,
		Skills:             req.Skills.slice(),
		Education:          req.Education,
		CompanyName:        req.CompanyName,
		CompanyDescription: req.CompanyDescription,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.notFound(w, r, "User not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.writeJSON(w, r, http.StatusOK, user)
}

func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	myInfo := myInfoFrom(r)

	var req struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !auth.CheckPassword(myInfo.PasswordHash, req.OldPassword) {
		h.badRequestMessage(w, r, "Current password is incorrect")
		return
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.SetPasswordHash(r.Context(), myInfo.ID, passwordHash); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.notFound(w, r, "User not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.messageResponse(w, r, http.StatusOK, "Password updated successfully")
}

type ResumeResponse struct {
	Message   string `json:"message"`
	ResumeURL string `json:"resumeUrl"`
}

func (h *Handler) UploadResume(w http.ResponseWriter, r *http.Request) {
	myInfo := myInfoFrom(r)
	maxSize := h.config.Storage.MaxResumeSize
	tooLarge := fmt.Sprintf("Resume must not exceed %d bytes", maxSize)

	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.payloadTooLarge(w, r, tooLarge)
		default:
			h.badRequestMessage(w, r, "Request must be multipart/form-data")
		}
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("resume")
	if err != nil {
		h.badRequestMessage(w, r, "Please upload a file")
		return
	}
	defer file.Close()

	if header.Size > maxSize {
		h.payloadTooLarge(w, r, tooLarge)
		return
	}

	ext, contentType, err := utils.ValidateResumeFile(header.Filename)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	objectName := path.Join("resumes", myInfo.ID, uuid.NewString()+ext)
	resumeURL, err := h.uploader.Upload(r.Context(), objectName, contentType, file)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.SetResumeURL(r.Context(), myInfo.ID, resumeURL); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.notFound(w, r, "User not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.writeJSON(w, r, http.StatusOK, ResumeResponse{
		Message:   "Resume uploaded successfully",
		ResumeURL: resumeURL,
	})
}

func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetAllUsers(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, users)
}

type AdminStats struct {
	domain.UserStats
	TotalJobs         int64 `json:"totalJobs"`
	TotalApplications int64 `json:"totalApplications"`
}

func (h *Handler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	userStats, err := h.repository.GetUserStats(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	totalJobs, err := h.repository.CountJobs(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	totalApplications, err := h.repository.CountApplications(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, AdminStats{
		UserStats:         *userStats,
		TotalJobs:         totalJobs,
		TotalApplications: totalApplications,
	})
}

type BlockResponse struct {
	Message   string `json:"message"`
	IsBlocked bool   `json:"isBlocked"`
}

func (h *Handler) ToggleUserBlock(w http.ResponseWriter, r *http.Request) {
	target := r.Context().Value(TargetUserCtx).(*domain.User)

	user, err := h.repository.ToggleUserBlocked(r.Context(), target.ID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.notFound(w, r, "User not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	msg := "User unblocked successfully"
	if user.IsBlocked {
		msg = "User blocked successfully"
	}

	h.writeJSON(w, r, http.StatusOK, BlockResponse{
		Message:   msg,
		IsBlocked: user.IsBlocked,
	})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	target := r.Context().Value(TargetUserCtx).(*domain.User)

	if err := h.repository.DeleteUser(r.Context(), target.ID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.notFound(w, r, "User not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.messageResponse(w, r, http.StatusOK, "User deleted successfully")
}
