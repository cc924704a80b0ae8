package domain

import "time"

type ApplicationStatus string

const (
	ApplicationStatusApplied     ApplicationStatus = "Applied"
	ApplicationStatusShortlisted ApplicationStatus = "Shortlisted"
	ApplicationStatusRejected    ApplicationStatus = "Rejected"
)

type Application struct {
	ID          string            `json:"id"`
	JobID       string            `json:"jobId"`
	ApplicantID string            `json:"applicantId"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`

	Job       *Job              `json:"job,omitempty"`
	Applicant *ApplicantSummary `json:"applicant,omitempty"`
}

// ApplicationStats counts the applications received by one employer's jobs.
type ApplicationStats struct {
	Total       int64 `json:"totalApplicants"`
	Applied     int64 `json:"applied"`
	Shortlisted int64 `json:"shortlisted"`
	Rejected    int64 `json:"rejected"`
}
