package domain

import (
	"time"
)

type Role string

const (
	RoleSeeker   Role = "seeker"
	RoleEmployer Role = "employer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSeeker, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`

	// seeker profile
	Skills    []string `json:"skills"`
	Education string   `json:"education,omitempty"`
	ResumeURL string   `json:"resumeUrl,omitempty"`

	// employer profile
	CompanyName        string `json:"companyName,omitempty"`
	CompanyDescription string `json:"companyDescription,omitempty"`

	IsBlocked bool      `json:"isBlocked"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileUpdate carries the fields a user may change on their own profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name               *string
	Skills             *[]string
	Education          *string
	CompanyName        *string
	CompanyDescription *string
}

// ForRole drops the fields that do not belong to role. Seeker fields only
// apply to seekers and employer fields only to employers.
func (p ProfileUpdate) ForRole(role Role) ProfileUpdate {
	scoped := ProfileUpdate{Name: p.Name}
	switch role {
	case RoleSeeker:
		scoped.Skills = p.Skills
		scoped.Education = p.Education
	case RoleEmployer:
		scoped.CompanyName = p.CompanyName
		scoped.CompanyDescription = p.CompanyDescription
	}
	return scoped
}

// ApplyProfile copies the fields of p that are present and belong to the
// user's role onto u.
func (u *User) ApplyProfile(p ProfileUpdate) {
	p = p.ForRole(u.Role)
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Skills != nil {
		u.Skills = *p.Skills
	}
	if p.Education != nil {
		u.Education = *p.Education
	}
	if p.CompanyName != nil {
		u.CompanyName = *p.CompanyName
	}
	if p.CompanyDescription != nil {
		u.CompanyDescription = *p.CompanyDescription
	}
}

// EmployerSummary is the expanded employer reference embedded in a Job.
type EmployerSummary struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	CompanyName        string `json:"companyName,omitempty"`
	CompanyDescription string `json:"companyDescription,omitempty"`
}

// ApplicantSummary is the expanded applicant reference embedded in an Application.
type ApplicantSummary struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Skills    []string `json:"skills"`
	Education string   `json:"education,omitempty"`
	ResumeURL string   `json:"resumeUrl,omitempty"`
}

type UserStats struct {
	TotalUsers int64 `json:"totalUsers"`
	Seekers    int64 `json:"seekers"`
	Employers  int64 `json:"employers"`
	Admins     int64 `json:"admins"`
	Blocked    int64 `json:"blocked"`
}
