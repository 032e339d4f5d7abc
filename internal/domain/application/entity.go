package application

import (
	"time"

	"hirepath/internal/domain/profile"
)

type Status string

const (
	StatusPending     Status = "PENDING"
	StatusReviewed    Status = "REVIEWED"
	StatusShortlisted Status = "SHORTLISTED"
	StatusRejected    Status = "REJECTED"
	StatusHired       Status = "HIRED"
)

var statuses = []Status{StatusPending, StatusReviewed, StatusShortlisted, StatusRejected, StatusHired}

// Statuses returns every pipeline status in pipeline order.
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

func (s Status) Valid() bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

type MatchDetails struct {
	SkillsMatched []string `json:"skills_matched"`
	SkillsMissing []string `json:"skills_missing"`
	Feedback      []string `json:"feedback"`
}

// Record joins a candidate to a job. MatchScore and MatchDetails are written by the server only.
type Record struct {
	ID              int64            `json:"id"`
	JobID           int64            `json:"job_id"`
	ApplicantID     int64            `json:"applicant_id"`
	Status          Status           `json:"status"`
	MatchScore      float64          `json:"match_score"`
	MatchDetails    MatchDetails     `json:"match_details"`
	CoverLetter     *string          `json:"cover_letter,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
	InterviewDate   *string          `json:"interview_date,omitempty"`
	AppliedAt       time.Time        `json:"applied_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	JobTitle        string           `json:"job_title,omitempty"`
	CompanyName     string           `json:"company_name,omitempty"`
	FirstName       string           `json:"first_name,omitempty"`
	LastName        string           `json:"last_name,omitempty"`
	Email           string           `json:"email,omitempty"`
	CurrentJobTitle string           `json:"current_job_title,omitempty"`
	Location        profile.Location `json:"location"`
}

func (r Record) RecordID() int64 {
	return r.ID
}

// StatusUpdate is the body of a status transition request.
type StatusUpdate struct {
	Status        Status  `json:"status"`
	Notes         *string `json:"notes,omitempty"`
	InterviewDate *string `json:"interview_date,omitempty"`
}

type ApplyInput struct {
	JobID       int64  `json:"job"`
	CoverLetter string `json:"cover_letter,omitempty"`
}

type TopMatch struct {
	JobTitle   string  `json:"job__title"`
	MatchScore float64 `json:"match_score"`
}

type GraduateStats struct {
	TotalApplications    int            `json:"totalApplications"`
	AverageMatchScore    float64        `json:"averageMatchScore"`
	RecentApplications   int            `json:"recentApplications"`
	ApplicationsByStatus map[Status]int `json:"applicationsByStatus"`
	TopMatchedJobs       []TopMatch     `json:"topMatchedJobs"`
}

type RecruiterStats struct {
	TotalJobs            int            `json:"totalJobs"`
	ActiveApplications   int            `json:"activeApplications"`
	Shortlisted          int            `json:"shortlisted"`
	Hired                int            `json:"hired"`
	ApplicationsByStatus map[Status]int `json:"applicationsByStatus,omitempty"`
}
