package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hirepath/internal/domain/application"
	"hirepath/internal/domain/session"
	"hirepath/internal/store"
	"hirepath/internal/workflow"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Review candidates who applied to your postings",
}

var candidatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidates with local filters",
	Long: `List candidates. --search, --status, --score and --job-title filter the
loaded records locally; --filter is sent to the server.

Examples:
  hirepath candidates list --score excellent
  hirepath candidates list --status pending --pages 3`,
	RunE: runCandidatesList,
}

var applicationsCmd = &cobra.Command{
	Use:   "applications",
	Short: "Track your job applications",
}

var applicationsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List your applications",
	RunE:  runApplicationsMine,
}

var applicationsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one application with its match details",
	Args:  cobra.ExactArgs(1),
	RunE:  runApplicationsShow,
}

var applicationsApplyCmd = &cobra.Command{
	Use:   "apply <job-id>",
	Short: "Apply to a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runApplicationsApply,
}

var applicationsWithdrawCmd = &cobra.Command{
	Use:   "withdraw <id>",
	Short: "Withdraw an application",
	Args:  cobra.ExactArgs(1),
	RunE:  runApplicationsWithdraw,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard statistics for your role",
	RunE:  runStats,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Move applications through the hiring pipeline",
	Long: `Status workflow commands for recruiters.

Examples:
  hirepath status actions 42
  hirepath status set 42 SHORTLISTED
  hirepath status set 42 HIRED --notes "Strong systems design" --interview-date 2026-11-02`,
}

var statusActionsCmd = &cobra.Command{
	Use:   "actions <id>",
	Short: "List the moves available for an application",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatusActions,
}

var statusSetCmd = &cobra.Command{
	Use:   "set <id> <status>",
	Short: "Move an application to a new status",
	Args:  cobra.ExactArgs(2),
	RunE:  runStatusSet,
}

func init() {
	candidatesListCmd.Flags().Int("pages", 1, "number of pages to load")
	candidatesListCmd.Flags().StringToString("filter", nil, "server-side filters (key=value)")
	candidatesListCmd.Flags().String("search", "", "match name, email or job title")
	candidatesListCmd.Flags().String("status", "", "PENDING, REVIEWED, SHORTLISTED, REJECTED or HIRED")
	candidatesListCmd.Flags().String("score", "", "EXCELLENT, GOOD, FAIR or POOR")
	candidatesListCmd.Flags().String("job-title", "", "exact job title")

	applicationsMineCmd.Flags().Int("pages", 1, "number of pages to load")
	applicationsMineCmd.Flags().StringToString("filter", nil, "server-side filters (key=value)")
	applicationsApplyCmd.Flags().String("cover-letter", "", "cover letter text")

	statusSetCmd.Flags().String("notes", "", "recruiter notes")
	statusSetCmd.Flags().String("interview-date", "", "interview date for SHORTLISTED or HIRED (YYYY-MM-DD)")

	candidatesCmd.AddCommand(candidatesListCmd)
	applicationsCmd.AddCommand(applicationsMineCmd, applicationsShowCmd, applicationsApplyCmd, applicationsWithdrawCmd)
	statusCmd.AddCommand(statusActionsCmd, statusSetCmd)
	rootCmd.AddCommand(candidatesCmd, applicationsCmd, statsCmd, statusCmd)
}

func candidateFilterFromFlags(cmd *cobra.Command) (store.CandidateFilter, error) {
	scoreFlag, _ := cmd.Flags().GetString("score")
	score, ok := store.ParseScoreBucket(scoreFlag)
	if !ok {
		return store.CandidateFilter{}, fmt.Errorf("invalid score %q: use EXCELLENT, GOOD, FAIR or POOR", scoreFlag)
	}
	var f store.CandidateFilter
	f.Score = score
	f.Search, _ = cmd.Flags().GetString("search")
	f.JobTitle, _ = cmd.Flags().GetString("job-title")
	status, _ := cmd.Flags().GetString("status")
	f.Status = application.Status(strings.ToUpper(strings.TrimSpace(status)))
	if f.Status != "" && !f.Status.Valid() {
		return store.CandidateFilter{}, fmt.Errorf("invalid status %q", status)
	}
	return f, nil
}

func printRecords(records []application.Record, withApplicant bool) error {
	if len(records) == 0 {
		fmt.Println("No applications found")
		return nil
	}
	w := newTable()
	if withApplicant {
		printTableHeader(w, "ID", "CANDIDATE", "JOB", "STATUS", "SCORE", "BUCKET")
	} else {
		printTableHeader(w, "ID", "JOB", "COMPANY", "STATUS", "SCORE", "BUCKET")
	}
	for _, r := range records {
		second := strings.TrimSpace(r.FirstName + " " + r.LastName)
		third := r.JobTitle
		if !withApplicant {
			second, third = r.JobTitle, r.CompanyName
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.0f\t%s\n",
			r.ID,
			truncate(second, 28),
			truncate(third, 28),
			r.Status,
			r.MatchScore,
			store.BucketFor(r.MatchScore),
		)
	}
	return w.Flush()
}

func runCandidatesList(cmd *cobra.Command, args []string) error {
	f, err := candidateFilterFromFlags(cmd)
	if err != nil {
		return err
	}
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	snap, err := loadPages(cmd,
		func(fl store.Filters) (store.CollectionSnapshot[application.Record], error) {
			return c.Applications.FetchCandidates(ctx, fl)
		},
		func() (store.CollectionSnapshot[application.Record], error) {
			return c.Applications.LoadMoreCandidates(ctx)
		},
	)
	if err != nil {
		return err
	}

	items, summary := c.Applications.FilteredCandidates(f)
	if !tableOutput() {
		return printStructured(map[string]any{
			"items":      items,
			"summary":    summary,
			"job_titles": store.JobTitles(snap.Items),
			"has_more":   snap.HasMore(),
		})
	}
	if err := printRecords(items, true); err != nil {
		return err
	}
	fmt.Printf("\nTotal %d | loaded %d | shown %d | pending %d | shortlisted %d | excellent %d | good %d\n",
		summary.Total, summary.Loaded, summary.Shown, summary.Pending, summary.Shortlisted, summary.Excellent, summary.Good)
	return nil
}

func runApplicationsMine(cmd *cobra.Command, args []string) error {
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	snap, err := loadPages(cmd,
		func(fl store.Filters) (store.CollectionSnapshot[application.Record], error) {
			return c.Applications.FetchMine(ctx, fl)
		},
		func() (store.CollectionSnapshot[application.Record], error) { return c.Applications.LoadMoreMine(ctx) },
	)
	if err != nil {
		return err
	}
	if !tableOutput() {
		return printStructured(map[string]any{"items": snap.Items, "count": snap.Count, "has_more": snap.HasMore()})
	}
	return printRecords(snap.Items, false)
}

func printRecord(rec application.Record, actions []workflow.Action) error {
	if !tableOutput() {
		return printStructured(map[string]any{"application": rec, "actions": actions})
	}
	fmt.Printf("Application %d: %s\n", rec.ID, rec.Status)
	if name := strings.TrimSpace(rec.FirstName + " " + rec.LastName); name != "" {
		fmt.Printf("Candidate: %s <%s>\n", name, rec.Email)
	}
	fmt.Printf("Job:       %s\n", rec.JobTitle)
	fmt.Printf("Match:     %.0f (%s)\n", rec.MatchScore, store.BucketFor(rec.MatchScore))
	if len(rec.MatchDetails.SkillsMatched) > 0 {
		fmt.Printf("Matched:   %s\n", strings.Join(rec.MatchDetails.SkillsMatched, ", "))
	}
	if len(rec.MatchDetails.SkillsMissing) > 0 {
		fmt.Printf("Missing:   %s\n", strings.Join(rec.MatchDetails.SkillsMissing, ", "))
	}
	if rec.InterviewDate != nil {
		fmt.Printf("Interview: %s\n", *rec.InterviewDate)
	}
	for _, a := range actions {
		fmt.Printf("  -> %-12s %s\n", a.Status, a.Description)
	}
	return nil
}

func runApplicationsShow(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	rec, err := c.Applications.Record(cmd.Context(), ids[0])
	if err != nil {
		return err
	}
	var actions []workflow.Action
	if cur, ok := c.Session.Current(); ok && cur.Role == session.RoleRecruiter {
		actions = c.Workflow.Actions(rec)
	}
	return printRecord(rec, actions)
}

func runApplicationsApply(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	letter, _ := cmd.Flags().GetString("cover-letter")
	rec, err := c.Applications.Apply(cmd.Context(), ids[0], letter)
	if err != nil {
		return err
	}
	return printRecord(rec, nil)
}

func runApplicationsWithdraw(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	if err := c.Applications.Withdraw(cmd.Context(), ids[0]); err != nil {
		return err
	}
	fmt.Printf("Application %d withdrawn\n", ids[0])
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	if err := c.Session.RequireAuth(); err != nil {
		return err
	}
	cur, _ := c.Session.Current()
	if cur.Role == session.RoleRecruiter {
		stats, err := c.Applications.RecruiterStats(cmd.Context())
		if err != nil {
			return err
		}
		return printStructured(stats)
	}
	stats, err := c.Applications.GraduateStats(cmd.Context())
	if err != nil {
		return err
	}
	return printStructured(stats)
}

func runStatusActions(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	if err := c.Session.RequireRole(session.RoleRecruiter); err != nil {
		return err
	}
	rec, err := c.Applications.Record(cmd.Context(), ids[0])
	if err != nil {
		return err
	}
	actions := c.Workflow.Actions(rec)
	if !tableOutput() {
		return printStructured(map[string]any{"status": rec.Status, "actions": actions})
	}
	if len(actions) == 0 {
		fmt.Printf("Application %d is %s; no further moves\n", rec.ID, rec.Status)
		return nil
	}
	w := newTable()
	printTableHeader(w, "STATUS", "ACTION", "DESCRIPTION")
	for _, a := range actions {
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.Status, a.Label, a.Description)
	}
	return w.Flush()
}

func runStatusSet(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args[:1])
	if err != nil {
		return err
	}
	to := application.Status(strings.ToUpper(strings.TrimSpace(args[1])))
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}

	feed, cancel := c.Notifications.Subscribe(4)
	defer cancel()

	notes, _ := cmd.Flags().GetString("notes")
	date, _ := cmd.Flags().GetString("interview-date")
	var rec application.Record
	if notes == "" && date == "" {
		rec, err = c.Workflow.QuickAction(cmd.Context(), ids[0], to)
	} else {
		rec, err = c.Workflow.DetailedUpdate(cmd.Context(), ids[0], to, workflow.Details{Notes: notes, InterviewDate: date})
	}
	drainNotifications(feed)
	if err != nil {
		return err
	}
	return printRecord(rec, c.Workflow.Actions(rec))
}
