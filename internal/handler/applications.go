package handler

import (
	"errors"
	"net/http"

	"github.com/hirehub-dev/hirehub/backend/internal/domain"
)

type ApplicationResponse struct {
	Message     string              `json:"message"`
	Application *domain.Application `json:"application"`
}

// Apply checks for an earlier application first so the common duplicate case
// is answered without a failed insert. Concurrent duplicates are still caught
// by the store.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	myInfo := myInfoFrom(r)

	var req struct {
		JobID string `json:"jobId" validate:"required"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	job, err := h.repository.GetJobByID(r.Context(), req.JobID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.notFound(w, r, "Job not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	applied, err := h.repository.HasApplied(r.Context(), job.ID, myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if applied {
		h.conflict(w, r, "You have already applied to this job")
		return
	}

	app := &domain.Application{
		JobID:       job.ID,
		ApplicantID: myInfo.ID,
		Status:      domain.ApplicationStatusApplied,
	}
	if err := h.repository.CreateApplication(r.Context(), app); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyApplied):
			h.conflict(w, r, "You have already applied to this job")
		case errors.Is(err, domain.ErrNotFound):
			h.notFound(w, r, "Job not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.writeJSON(w, r, http.StatusCreated, ApplicationResponse{
		Message:     "Application submitted successfully",
		Application: app,
	})
}

func (h *Handler) ListMyApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.repository.ListApplicationsByApplicant(r.Context(), myInfoFrom(r).ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, apps)
}

func (h *Handler) ListJobApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.repository.ListApplicationsByJob(r.Context(), jobFrom(r).ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, apps)
}

func (h *Handler) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	app := r.Context().Value(ApplicationCtx).(*domain.Application)

	var req struct {
		Status domain.ApplicationStatus `json:"status" validate:"required,oneof=Applied Shortlisted Rejected"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.repository.UpdateApplicationStatus(r.Context(), app.ID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.notFound(w, r, "Application not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.writeJSON(w, r, http.StatusOK, ApplicationResponse{
		Message:     "Application status updated",
		Application: updated,
	})
}
