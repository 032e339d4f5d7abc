package job

import (
	"time"

	"hirepath/internal/domain/skill"
)

type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "FULL_TIME"
	EmploymentPartTime   EmploymentType = "PART_TIME"
	EmploymentContract   EmploymentType = "CONTRACT"
	EmploymentInternship EmploymentType = "INTERNSHIP"
)

type WorkType string

const (
	WorkOnsite WorkType = "ONSITE"
	WorkRemote WorkType = "REMOTE"
	WorkHybrid WorkType = "HYBRID"
)

type ExperienceLevel string

const (
	LevelEntry  ExperienceLevel = "ENTRY"
	LevelMid    ExperienceLevel = "MID"
	LevelSenior ExperienceLevel = "SENIOR"
	LevelLead   ExperienceLevel = "LEAD"
)

// Ref is a named reference to catalog data such as a course or certificate.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Job struct {
	ID                    int64           `json:"id"`
	Title                 string          `json:"title"`
	Description           string          `json:"description"`
	CompanyName           string          `json:"company_name,omitempty"`
	Location              string          `json:"location"`
	EmploymentType        EmploymentType  `json:"employment_type"`
	WorkType              WorkType        `json:"work_type"`
	ExperienceLevel       ExperienceLevel `json:"experience_level"`
	SkillsRequired        []skill.Skill   `json:"skills_required"`
	CoursesPreferred      []Ref           `json:"courses_preferred"`
	CertificatesPreferred []Ref           `json:"certificates_preferred"`
	ClosingDate           string          `json:"closing_date,omitempty"`
	IsActive              bool            `json:"is_active"`
	ApplicationsCount     int             `json:"applications_count"`
	CreatedAt             time.Time       `json:"created_at,omitzero"`
}

func (j Job) JobID() int64 {
	return j.ID
}

// Input is the payload of a job create or update.
type Input struct {
	Title                    string          `json:"title"`
	Description              string          `json:"description"`
	Location                 string          `json:"location"`
	EmploymentType           EmploymentType  `json:"employment_type"`
	WorkType                 WorkType        `json:"work_type"`
	ExperienceLevel          ExperienceLevel `json:"experience_level"`
	SkillsRequiredIDs        []int64         `json:"skills_required_ids"`
	CoursesPreferredIDs      []int64         `json:"courses_preferred_ids"`
	CertificatesPreferredIDs []int64         `json:"certificates_preferred_ids"`
	ClosingDate              string          `json:"closing_date,omitempty"`
	IsActive                 *bool           `json:"is_active,omitempty"`
}

// Normalized returns a copy whose id lists are never nil, matching what the backend expects.
func (in Input) Normalized() Input {
	if in.SkillsRequiredIDs == nil {
		in.SkillsRequiredIDs = []int64{}
	}
	if in.CoursesPreferredIDs == nil {
		in.CoursesPreferredIDs = []int64{}
	}
	if in.CertificatesPreferredIDs == nil {
		in.CertificatesPreferredIDs = []int64{}
	}
	return in
}
