package domain

import "time"

type JobType string

const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeInternship JobType = "Internship"
	JobTypeContract   JobType = "Contract"
)

func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeInternship, JobTypeContract:
		return true
	}
	return false
}

type JobStatus string

const (
	JobStatusOpen   JobStatus = "Open"
	JobStatusClosed JobStatus = "Closed"
	JobStatusHiring JobStatus = "Hiring"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusOpen, JobStatusClosed, JobStatusHiring:
		return true
	}
	return false
}

// DefaultCompanyName is used when an employer posts before filling in a company name.
const DefaultCompanyName = "Company"

type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Skills      []string  `json:"skills"`
	Location    string    `json:"location"`
	Salary      string    `json:"salary,omitempty"`
	JobType     JobType   `json:"jobType"`
	Status      JobStatus `json:"status"`
	EmployerID  string    `json:"employerId"`
	CompanyName string    `json:"companyName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Employer is only set by queries that expand the employer reference.
	Employer *EmployerSummary `json:"employer,omitempty"`
}

type JobUpdate struct {
	Title       *string
	Description *string
	Skills      *[]string
	Location    *string
	Salary      *string
	JobType     *JobType
	Status      *JobStatus
}

func (j *Job) Apply(u JobUpdate) {
	if u.Title != nil {
		j.Title = *u.Title
	}
	if u.Description != nil {
		j.Description = *u.Description
	}
	if u.Skills != nil {
		j.Skills = *u.Skills
	}
	if u.Location != nil {
		j.Location = *u.Location
	}
	if u.Salary != nil {
		j.Salary = *u.Salary
	}
	if u.JobType != nil {
		j.JobType = *u.JobType
	}
	if u.Status != nil {
		j.Status = *u.Status
	}
}

func (j *Job) OwnedBy(userID string) bool {
	return j.EmployerID == userID
}
