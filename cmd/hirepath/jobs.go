package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"hirepath/internal/domain/job"
	"hirepath/internal/store"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Browse and manage job postings",
	Long: `Job postings. Graduates browse the active board; recruiters manage
their own postings.

Examples:
  hirepath jobs list --search golang --work-type REMOTE
  hirepath jobs mine
  hirepath jobs create -f posting.yaml
  hirepath jobs delete 12`,
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active job board",
	RunE:  runJobsList,
}

var jobsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List your own postings",
	RunE:  runJobsMine,
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one posting",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

var jobsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a posting from a YAML or JSON file",
	RunE:  runJobsCreate,
}

var jobsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace a posting from a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsUpdate,
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a posting",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsDelete,
}

func init() {
	for _, c := range []*cobra.Command{jobsListCmd, jobsMineCmd} {
		c.Flags().Int("pages", 1, "number of pages to load")
		c.Flags().StringToString("filter", nil, "server-side filters (key=value)")
	}
	jobsListCmd.Flags().String("search", "", "match title, description, company or location")
	jobsListCmd.Flags().String("location", "", "match location")
	jobsListCmd.Flags().StringSlice("employment-type", nil, "FULL_TIME, PART_TIME, CONTRACT or INTERNSHIP")
	jobsListCmd.Flags().StringSlice("work-type", nil, "ONSITE, REMOTE or HYBRID")
	jobsListCmd.Flags().StringSlice("experience-level", nil, "ENTRY, MID, SENIOR or LEAD")

	jobsCreateCmd.Flags().StringP("file", "f", "", "posting definition")
	_ = jobsCreateCmd.MarkFlagRequired("file")
	jobsUpdateCmd.Flags().StringP("file", "f", "", "posting definition")
	_ = jobsUpdateCmd.MarkFlagRequired("file")

	jobsCmd.AddCommand(jobsListCmd, jobsMineCmd, jobsShowCmd, jobsCreateCmd, jobsUpdateCmd, jobsDeleteCmd)
	rootCmd.AddCommand(jobsCmd)
}

// loadPages fetches the first page with filters and follows the cursor until pages are loaded or
// the server has no more.
func loadPages[T any](cmd *cobra.Command,
	fetch func(filters store.Filters) (store.CollectionSnapshot[T], error),
	more func() (store.CollectionSnapshot[T], error),
) (store.CollectionSnapshot[T], error) {
	pages, _ := cmd.Flags().GetInt("pages")
	filters, _ := cmd.Flags().GetStringToString("filter")

	snap, err := fetch(store.Filters(filters))
	if err != nil {
		return snap, err
	}
	for i := 1; i < pages && snap.HasMore(); i++ {
		if snap, err = more(); err != nil {
			return snap, err
		}
	}
	return snap, nil
}

func upperAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		out = append(out, strings.ToUpper(strings.TrimSpace(v)))
	}
	return out
}

func jobFilterFromFlags(cmd *cobra.Command) store.JobFilter {
	var f store.JobFilter
	f.Search, _ = cmd.Flags().GetString("search")
	f.Location, _ = cmd.Flags().GetString("location")
	et, _ := cmd.Flags().GetStringSlice("employment-type")
	for _, v := range upperAll(et) {
		f.EmploymentTypes = append(f.EmploymentTypes, job.EmploymentType(v))
	}
	wt, _ := cmd.Flags().GetStringSlice("work-type")
	for _, v := range upperAll(wt) {
		f.WorkTypes = append(f.WorkTypes, job.WorkType(v))
	}
	el, _ := cmd.Flags().GetStringSlice("experience-level")
	for _, v := range upperAll(el) {
		f.ExperienceLevels = append(f.ExperienceLevels, job.ExperienceLevel(v))
	}
	return f
}

func printJobs(jobs []job.Job, snap store.CollectionSnapshot[job.Job]) error {
	if !tableOutput() {
		return printStructured(map[string]any{
			"jobs":     jobs,
			"count":    snap.Count,
			"loaded":   snap.Shown(),
			"shown":    len(jobs),
			"has_more": snap.HasMore(),
		})
	}
	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}
	w := newTable()
	printTableHeader(w, "ID", "TITLE", "COMPANY", "LOCATION", "TYPE", "LEVEL")
	for _, j := range jobs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			j.ID,
			truncate(j.Title, 40),
			truncate(j.CompanyName, 24),
			truncate(j.Location, 20),
			j.WorkType,
			j.ExperienceLevel,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nShowing %d of %d loaded (%d total)\n", len(jobs), snap.Shown(), snap.Count)
	return nil
}

func runJobsList(cmd *cobra.Command, args []string) error {
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	snap, err := loadPages(cmd,
		func(f store.Filters) (store.CollectionSnapshot[job.Job], error) { return c.Jobs.FetchBoard(ctx, f) },
		func() (store.CollectionSnapshot[job.Job], error) { return c.Jobs.LoadMoreBoard(ctx) },
	)
	if err != nil {
		return err
	}
	return printJobs(jobFilterFromFlags(cmd).Apply(snap.Items), snap)
}

func runJobsMine(cmd *cobra.Command, args []string) error {
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	snap, err := loadPages(cmd,
		func(f store.Filters) (store.CollectionSnapshot[job.Job], error) { return c.Jobs.FetchMine(ctx, f) },
		func() (store.CollectionSnapshot[job.Job], error) { return c.Jobs.LoadMoreMine(ctx) },
	)
	if err != nil {
		return err
	}
	return printJobs(snap.Items, snap)
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	j, err := c.Jobs.Job(cmd.Context(), ids[0])
	if err != nil {
		return err
	}
	return printStructured(j)
}

// readJobInput decodes a posting file. YAML is a superset of JSON, so both formats go through the
// YAML decoder and are re-keyed by the JSON field names.
func readJobInput(path string) (job.Input, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return job.Input{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var generic map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return job.Input{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	b, err := json.Marshal(generic)
	if err != nil {
		return job.Input{}, err
	}
	var in job.Input
	if err := json.Unmarshal(b, &in); err != nil {
		return job.Input{}, fmt.Errorf("invalid posting in %s: %w", path, err)
	}
	return in, nil
}

func runJobsCreate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	in, err := readJobInput(path)
	if err != nil {
		return err
	}
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	j, err := c.Jobs.Create(cmd.Context(), in)
	if err != nil {
		return err
	}
	return printStructured(j)
}

func runJobsUpdate(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("file")
	in, err := readJobInput(path)
	if err != nil {
		return err
	}
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	j, err := c.Jobs.Update(cmd.Context(), ids[0], in)
	if err != nil {
		return err
	}
	return printStructured(j)
}

func runJobsDelete(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	if err := c.Jobs.Delete(cmd.Context(), ids[0]); err != nil {
		return err
	}
	fmt.Printf("Job %d deleted\n", ids[0])
	return nil
}
