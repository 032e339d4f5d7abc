package workflow

import (
	"hirepath/internal/domain/application"
	"hirepath/internal/notify"
)

// Action describes one status transition as offered to the user.
type Action struct {
	Status      application.Status `json:"status"`
	Label       string             `json:"label"`
	Description string             `json:"description"`
	Tone        notify.Level       `json:"tone"`
	Optimistic  string             `json:"optimistic"`
}

var catalogue = map[application.Status]Action{
	application.StatusPending: {
		Status:      application.StatusPending,
		Label:       "Pending",
		Description: "Application is waiting for review",
		Tone:        notify.LevelInfo,
		Optimistic:  "Candidate moved back to pending",
	},
	application.StatusReviewed: {
		Status:      application.StatusReviewed,
		Label:       "Mark as Reviewed",
		Description: "Candidate profile has been reviewed",
		Tone:        notify.LevelSuccess,
		Optimistic:  "Candidate marked as reviewed!",
	},
	application.StatusShortlisted: {
		Status:      application.StatusShortlisted,
		Label:       "Shortlist",
		Description: "Move the candidate to the interview shortlist",
		Tone:        notify.LevelSuccess,
		Optimistic:  "Candidate shortlisted successfully!",
	},
	application.StatusRejected: {
		Status:      application.StatusRejected,
		Label:       "Reject",
		Description: "Candidate is not a fit for this role",
		Tone:        notify.LevelWarning,
		Optimistic:  "Candidate rejected",
	},
	application.StatusHired: {
		Status:      application.StatusHired,
		Label:       "Hire",
		Description: "Extend an offer to the candidate",
		Tone:        notify.LevelSuccess,
		Optimistic:  "Candidate hired! Congratulations!",
	},
}

func ActionFor(s application.Status) (Action, bool) {
	a, ok := catalogue[s]
	return a, ok
}

// ActionsFrom lists the actions offered for an application currently in s. The current status is
// never among them.
func ActionsFrom(s application.Status) []Action {
	next := application.Transitions(s)
	out := make([]Action, 0, len(next))
	for _, t := range next {
		if a, ok := catalogue[t]; ok {
			out = append(out, a)
		}
	}
	return out
}
