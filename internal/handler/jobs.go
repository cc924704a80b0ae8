package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	"github.com/hirehub-dev/hirehub/backend/internal/repository"
	"github.com/hirehub-dev/hirehub/backend/internal/utils"
)

func (h *Handler) parseJobFilter(r *http.Request) (repository.JobFilter, error) {
	q := r.URL.Query()

	filter := repository.JobFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Location: strings.TrimSpace(q.Get("location")),
		JobType:  domain.JobType(q.Get("jobType")),
		Status:   domain.JobStatus(q.Get("status")),
	}

	if raw := q.Get("skills"); raw != "" {
		filter.Skills = utils.ParseSkills(raw)
	}
	if filter.JobType != "" && !filter.JobType.Valid() {
		return filter, errors.New("jobType must be one of [Full-time Part-time Internship Contract]")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, errors.New("status must be one of [Open Closed Hiring]")
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return filter, errors.New("limit must be a positive integer")
		}
		filter.Limit = limit
	}

	return filter, nil
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseJobFilter(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	jobs, err := h.repository.ListJobs(r.Context(), filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, jobs)
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, jobFrom(r))
}

func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	myInfo := myInfoFrom(r)

	var req struct {
		Title       string           `json:"title" validate:"required,max=200"`
		Description string           `json:"description" validate:"required"`
		Skills      skillList        `json:"skills"`
		Location    string           `json:"location" validate:"required,max=200"`
		Salary      string           `json:"salary" validate:"max=100"`
		JobType     domain.JobType   `json:"jobType" validate:"required,oneof=Full-time Part-time Internship Contract"`
		Status      domain.JobStatus `json:"status" validate:"omitempty,oneof=Open Closed Hiring"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	companyName := myInfo.CompanyName
	if companyName == "" {
		companyName = domain.DefaultCompanyName
	}

	skills := []string(req.Skills)
	if skills == nil {
		skills = []string{}
	}

	job := &domain.Job{
		Title:       req.Title,
		Description: req.Description,
		Skills:      skills,
		Location:    req.Location,
		Salary:      strings.TrimSpace(req.Salary),
		JobType:     req.JobType,
		Status:      req.Status,
		EmployerID:  myInfo.ID,
		CompanyName: companyName,
	}

	if err := h.repository.CreateJob(r.Context(), job); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.notFound(w, r, "User not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.writeJSON(w, r, http.StatusCreated, job)
}

func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	job := jobFrom(r)

	var req struct {
		Title       *string           `json:"title" validate:"omitnil,min=1,max=200"`
		Description *string           `json:"description" validate:"omitnil,min=1"`
		Skills      *skillList        `json:"skills"`
		Location    *string           `json:"location" validate:"omitnil,min=1,max=200"`
		Salary      *string           `json:"salary" validate:"omitnil,max=100"`
		JobType     *domain.JobType   `json:"jobType" validate:"omitnil,oneof=Full-time Part-time Internship Contract"`
		Status      *domain.JobStatus `json:"status" validate:"omitnil,oneof=Open Closed Hiring"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	for _, s := range []*string{req.Title, req.Description, req.Location, req.Salary} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	job.Apply(domain.JobUpdate{
		Title:       req.Title,
		Description: req.Description,
		Skills:      req.Skills.slice(),
		Location:    req.Location,
		Salary:      req.Salary,
		JobType:     req.JobType,
		Status:      req.Status,
	})

	if err := h.repository.UpdateJob(r.Context(), job); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.notFound(w, r, "Job not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.writeJSON(w, r, http.StatusOK, job)
}

func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	job := jobFrom(r)

	if err := h.repository.DeleteJob(r.Context(), job.ID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.notFound(w, r, "Job not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.messageResponse(w, r, http.StatusOK, "Job deleted successfully")
}

func (h *Handler) ListMyJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.repository.ListJobsByEmployer(r.Context(), myInfoFrom(r).ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, jobs)
}

type EmployerStats struct {
	TotalJobs int64 `json:"totalJobs"`
	domain.ApplicationStats
}

func (h *Handler) GetMyJobStats(w http.ResponseWriter, r *http.Request) {
	myInfo := myInfoFrom(r)

	jobs, err := h.repository.ListJobsByEmployer(r.Context(), myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	stats, err := h.repository.GetApplicationStatsByEmployer(r.Context(), myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, EmployerStats{
		TotalJobs:        int64(len(jobs)),
		ApplicationStats: *stats,
	})
}
