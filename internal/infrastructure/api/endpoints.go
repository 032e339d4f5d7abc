package api

import (
	"strconv"
	"strings"
)

// Endpoints holds backend paths relative to the base URL. Paths containing "{id}" are expanded
// per call.
type Endpoints struct {
	Login            string
	Register         string
	Refresh          string
	Logout           string
	Profile          string
	ProfileUpdate    string
	Company          string
	CompanyCreate    string
	JobRoles         string
	ResumeUpload     string
	SkillCatalog     string
	SkillPopular     string
	SkillAdd         string
	SkillRemove      string
	SkillSet         string
	Jobs             string
	ActiveJobs       string
	MyJobs           string
	Job              string
	Candidates       string
	MyApplications   string
	Application      string
	Apply            string
	Withdraw         string
	ApplicationState string
	GraduateStats    string
	RecruiterStats   string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:            "/accounts/login/",
		Register:         "/accounts/register/",
		Refresh:          "/accounts/token/refresh/",
		Logout:           "/accounts/logout/",
		Profile:          "/accounts/profile/",
		ProfileUpdate:    "/profile/update/",
		Company:          "/companies/me/",
		CompanyCreate:    "/companies/create/",
		JobRoles:         "/accounts/job-roles/",
		ResumeUpload:     "/resumes/analyze/",
		SkillCatalog:     "/skills/",
		SkillPopular:     "/skills/popular/",
		SkillAdd:         "/accounts/skills/add/",
		SkillRemove:      "/accounts/skills/remove/{id}/",
		SkillSet:         "/accounts/skills/set/",
		Jobs:             "/jobs/",
		ActiveJobs:       "/jobs/active/",
		MyJobs:           "/jobs/me/",
		Job:              "/jobs/{id}/",
		Candidates:       "/applications/recruiter/candidates/",
		MyApplications:   "/applications/mine/",
		Application:      "/applications/{id}/",
		Apply:            "/applications/apply/",
		Withdraw:         "/applications/{id}/withdraw/",
		ApplicationState: "/applications/{id}/status/",
		GraduateStats:    "/applications/graduate/stats/",
		RecruiterStats:   "/applications/recruiter/stats/",
	}
}

// WithOverrides returns a copy of e with the named paths replaced. Names are matched case
// insensitively against the field names, e.g. "skill_add" or "SkillAdd".
func (e Endpoints) WithOverrides(overrides map[string]string) Endpoints {
	fields := map[string]*string{
		"login":            &e.Login,
		"register":         &e.Register,
		"refresh":          &e.Refresh,
		"logout":           &e.Logout,
		"profile":          &e.Profile,
		"profileupdate":    &e.ProfileUpdate,
		"company":          &e.Company,
		"companycreate":    &e.CompanyCreate,
		"jobroles":         &e.JobRoles,
		"resumeupload":     &e.ResumeUpload,
		"skillcatalog":     &e.SkillCatalog,
		"skillpopular":     &e.SkillPopular,
		"skilladd":         &e.SkillAdd,
		"skillremove":      &e.SkillRemove,
		"skillset":         &e.SkillSet,
		"jobs":             &e.Jobs,
		"activejobs":       &e.ActiveJobs,
		"myjobs":           &e.MyJobs,
		"job":              &e.Job,
		"candidates":       &e.Candidates,
		"myapplications":   &e.MyApplications,
		"application":      &e.Application,
		"apply":            &e.Apply,
		"withdraw":         &e.Withdraw,
		"applicationstate": &e.ApplicationState,
		"graduatestats":    &e.GraduateStats,
		"recruiterstats":   &e.RecruiterStats,
	}
	for name, path := range overrides {
		key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
		path = strings.TrimSpace(path)
		if p, ok := fields[key]; ok && path != "" {
			*p = path
		}
	}
	return e
}

func withID(path string, id int64) string {
	return strings.ReplaceAll(path, "{id}", strconv.FormatInt(id, 10))
}
