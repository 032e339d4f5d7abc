package profile

import (
	"time"

	"hirepath/internal/domain/session"
	"hirepath/internal/domain/skill"
)

type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Address string `json:"address"`
}

func (l Location) String() string {
	switch {
	case l.City != "" && l.Country != "":
		return l.City + ", " + l.Country
	case l.City != "":
		return l.City
	default:
		return l.Country
	}
}

type JobRole struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Level    string `json:"level,omitempty"`
	Category string `json:"category,omitempty"`
}

type ResumeScore struct {
	OverallScore float64    `json:"overall_score"`
	Summary      string     `json:"summary,omitempty"`
	AnalyzedAt   *time.Time `json:"analyzed_at,omitempty"`
}

type Profile struct {
	ID             int64         `json:"id"`
	Username       string        `json:"username"`
	Email          string        `json:"email"`
	FirstName      string        `json:"first_name"`
	LastName       string        `json:"last_name"`
	Role           session.Role  `json:"role"`
	Phone          string        `json:"phone,omitempty"`
	Bio            string        `json:"bio,omitempty"`
	JobTitle       string        `json:"job_title,omitempty"`
	LinkedInURL    string        `json:"linkedin_url,omitempty"`
	AvatarURL      string        `json:"avatarUrl,omitempty"`
	Location       Location      `json:"location"`
	Skills         []skill.Skill `json:"skills"`
	TargetJobRoles []JobRole     `json:"target_job_roles"`
	CurrentJobRole string        `json:"current_job_role,omitempty"`
	ResumeScore    *ResumeScore  `json:"resume_score,omitempty"`
}

func (p Profile) FullName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}

// Patch carries the fields of an explicit profile update; nil fields are left untouched.
type Patch struct {
	FirstName      *string   `json:"first_name,omitempty"`
	LastName       *string   `json:"last_name,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	Bio            *string   `json:"bio,omitempty"`
	JobTitle       *string   `json:"job_title,omitempty"`
	LinkedInURL    *string   `json:"linkedin_url,omitempty"`
	CurrentJobRole *string   `json:"current_job_role,omitempty"`
	Location       *Location `json:"location,omitempty"`
}

func (p Patch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil && p.Bio == nil &&
		p.JobTitle == nil && p.LinkedInURL == nil && p.CurrentJobRole == nil && p.Location == nil
}

type Company struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	Website     string    `json:"website,omitempty"`
	Size        string    `json:"size,omitempty"`
	LogoURL     string    `json:"logo_url,omitempty"`
	Location    Location  `json:"location"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

type CompanyInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	Website     string   `json:"website,omitempty"`
	Size        string   `json:"size,omitempty"`
	Location    Location `json:"location"`
}

// ResumeFeedback is the structured result of a resume upload. Its scores are server-computed.
type ResumeFeedback struct {
	OverallScore    float64  `json:"overall_score"`
	Summary         string   `json:"summary,omitempty"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	ExtractedSkills []string `json:"extracted_skills"`
}
