package store

import (
	"strings"

	"hirepath/internal/domain/application"
	"hirepath/internal/domain/job"
)

type ScoreBucket string

const (
	ScoreAny       ScoreBucket = ""
	ScoreExcellent ScoreBucket = "EXCELLENT"
	ScoreGood      ScoreBucket = "GOOD"
	ScoreFair      ScoreBucket = "FAIR"
	ScorePoor      ScoreBucket = "POOR"
)

func BucketFor(score float64) ScoreBucket {
	switch {
	case score >= 80:
		return ScoreExcellent
	case score >= 60:
		return ScoreGood
	case score >= 40:
		return ScoreFair
	default:
		return ScorePoor
	}
}

func ParseScoreBucket(s string) (ScoreBucket, bool) {
	b := ScoreBucket(strings.ToUpper(strings.TrimSpace(s)))
	switch b {
	case ScoreAny, ScoreExcellent, ScoreGood, ScoreFair, ScorePoor:
		return b, true
	}
	return ScoreAny, false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

// CandidateFilter narrows already-loaded candidates; it is never sent to the server. Zero
// fields match everything.
type CandidateFilter struct {
	Search   string
	Status   application.Status
	Score    ScoreBucket
	JobTitle string
}

func (f CandidateFilter) Match(r application.Record) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Score != ScoreAny && BucketFor(r.MatchScore) != f.Score {
		return false
	}
	if f.JobTitle != "" && !strings.EqualFold(r.JobTitle, f.JobTitle) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		name := r.FirstName + " " + r.LastName
		if !containsFold(name, q) && !containsFold(r.Email, q) &&
			!containsFold(r.JobTitle, q) && !containsFold(r.CurrentJobTitle, q) {
			return false
		}
	}
	return true
}

// Apply keeps server order.
func (f CandidateFilter) Apply(records []application.Record) []application.Record {
	out := make([]application.Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// CandidateSummary counts over loaded items. Total is the server count across all pages, so
// Loaded may be smaller than Total until every page is loaded.
type CandidateSummary struct {
	Total       int `json:"total"`
	Loaded      int `json:"loaded"`
	Shown       int `json:"shown"`
	Pending     int `json:"pending"`
	Shortlisted int `json:"shortlisted"`
	Excellent   int `json:"excellent"`
	Good        int `json:"good"`
}

func SummarizeCandidates(snap CollectionSnapshot[application.Record], f CandidateFilter) CandidateSummary {
	sum := CandidateSummary{
		Total:  snap.Count,
		Loaded: len(snap.Items),
	}
	for _, r := range snap.Items {
		switch r.Status {
		case application.StatusPending:
			sum.Pending++
		case application.StatusShortlisted:
			sum.Shortlisted++
		}
		switch BucketFor(r.MatchScore) {
		case ScoreExcellent:
			sum.Excellent++
		case ScoreGood:
			sum.Good++
		}
		if f.Match(r) {
			sum.Shown++
		}
	}
	return sum
}

// JobTitles lists the distinct job titles among loaded candidates in first-seen order.
func JobTitles(records []application.Record) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0)
	for _, r := range records {
		if r.JobTitle == "" {
			continue
		}
		if _, ok := seen[r.JobTitle]; ok {
			continue
		}
		seen[r.JobTitle] = struct{}{}
		out = append(out, r.JobTitle)
	}
	return out
}

type JobFilter struct {
	Search           string
	EmploymentTypes  []job.EmploymentType
	WorkTypes        []job.WorkType
	ExperienceLevels []job.ExperienceLevel
	Location         string
}

func oneOf[T comparable](v T, set []T) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func (f JobFilter) Match(j job.Job) bool {
	if !oneOf(j.EmploymentType, f.EmploymentTypes) || !oneOf(j.WorkType, f.WorkTypes) ||
		!oneOf(j.ExperienceLevel, f.ExperienceLevels) {
		return false
	}
	if loc := strings.ToLower(strings.TrimSpace(f.Location)); loc != "" && !containsFold(j.Location, loc) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	if containsFold(j.Title, q) || containsFold(j.CompanyName, q) || containsFold(j.Description, q) {
		return true
	}
	for _, s := range j.SkillsRequired {
		if containsFold(s.Name, q) {
			return true
		}
	}
	return false
}

func (f JobFilter) Apply(jobs []job.Job) []job.Job {
	out := make([]job.Job, 0, len(jobs))
	for _, j := range jobs {
		if f.Match(j) {
			out = append(out, j)
		}
	}
	return out
}
