package dto

import (
	"hirepath/internal/domain/application"
	"hirepath/internal/workflow"
)

type ApplicationResponse struct {
	Application application.Record `json:"application"`
	Actions     []workflow.Action  `json:"actions"`
	Updating    bool               `json:"updating"`
}

type StatusRequest struct {
	Status        application.Status `json:"status"`
	Notes         string             `json:"notes"`
	InterviewDate string             `json:"interview_date"`
}

// Quick reports whether the request carries only a target status.
func (r StatusRequest) Quick() bool {
	return r.Notes == "" && r.InterviewDate == ""
}

type ApplyRequest struct {
	JobID       int64  `json:"job_id"`
	CoverLetter string `json:"cover_letter"`
}
