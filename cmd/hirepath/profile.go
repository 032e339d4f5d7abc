package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"hirepath/internal/domain/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your profile",
	RunE:  runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	Long: `Update the fields given as flags. Omitted flags are left untouched.

Examples:
  hirepath profile update --bio "Backend engineer" --city Jakarta`,
	RunE: runProfileUpdate,
}

var profileRolesCmd = &cobra.Command{
	Use:   "job-roles <id>...",
	Short: "Replace your target job roles",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProfileRoles,
}

var profileResumeCmd = &cobra.Command{
	Use:   "resume <file>",
	Short: "Upload a resume for analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileResume,
}

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Show your company profile",
	RunE:  runCompanyShow,
}

var companyCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create your company profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompanyCreate,
}

var patchFlags = []string{"first-name", "last-name", "phone", "bio", "job-title", "linkedin", "current-role"}

func init() {
	profileCmd.Flags().Bool("refresh", false, "re-fetch instead of serving the cached copy")
	for _, f := range patchFlags {
		profileUpdateCmd.Flags().String(f, "", "new "+f)
	}
	profileUpdateCmd.Flags().String("city", "", "new city")
	profileUpdateCmd.Flags().String("country", "", "new country")

	companyCreateCmd.Flags().String("description", "", "company description")
	companyCreateCmd.Flags().String("industry", "", "industry")
	companyCreateCmd.Flags().String("website", "", "website URL")
	companyCreateCmd.Flags().String("size", "", "company size")
	companyCreateCmd.Flags().String("city", "", "city")
	companyCreateCmd.Flags().String("country", "", "country")

	profileCmd.AddCommand(profileUpdateCmd, profileRolesCmd, profileResumeCmd)
	companyCmd.AddCommand(companyCreateCmd)
	rootCmd.AddCommand(profileCmd, companyCmd)
}

func printProfile(p profile.Profile) error {
	if !tableOutput() {
		return printStructured(p)
	}
	fmt.Printf("%s <%s> %s\n", p.FullName(), p.Email, p.Role)
	if loc := p.Location.String(); loc != "" {
		fmt.Printf("Location: %s\n", loc)
	}
	if p.JobTitle != "" {
		fmt.Printf("Title:    %s\n", p.JobTitle)
	}
	fmt.Printf("Skills:   %d\n", len(p.Skills))
	for _, r := range p.TargetJobRoles {
		fmt.Printf("Target:   %s\n", r.Title)
	}
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
		if err := c.Profiles.Invalidate(cmd.Context(), "cli"); err != nil {
			return err
		}
	}
	p, err := c.Profiles.FetchProfile(cmd.Context())
	if err != nil {
		return err
	}
	return printProfile(p)
}

func optional(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	patch := profile.Patch{
		FirstName:      optional(cmd, "first-name"),
		LastName:       optional(cmd, "last-name"),
		Phone:          optional(cmd, "phone"),
		Bio:            optional(cmd, "bio"),
		JobTitle:       optional(cmd, "job-title"),
		LinkedInURL:    optional(cmd, "linkedin"),
		CurrentJobRole: optional(cmd, "current-role"),
	}
	if cmd.Flags().Changed("city") || cmd.Flags().Changed("country") {
		current, err := c.Profiles.FetchProfile(cmd.Context())
		if err != nil {
			return err
		}
		loc := current.Location
		if v := optional(cmd, "city"); v != nil {
			loc.City = *v
		}
		if v := optional(cmd, "country"); v != nil {
			loc.Country = *v
		}
		patch.Location = &loc
	}
	p, err := c.Profiles.UpdateProfile(cmd.Context(), patch)
	if err != nil {
		return err
	}
	return printProfile(p)
}

func parseIDs(args []string) ([]int64, error) {
	out := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", a)
		}
		out = append(out, id)
	}
	return out, nil
}

func runProfileRoles(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	if err := c.Profiles.SetJobRoles(cmd.Context(), ids); err != nil {
		return err
	}
	p, err := c.Profiles.FetchProfile(cmd.Context())
	if err != nil {
		return err
	}
	return printProfile(p)
}

func runProfileResume(cmd *cobra.Command, args []string) error {
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open resume: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(os.Stderr, "Uploading %s...\n", filepath.Base(args[0]))
	fb, err := c.Profiles.UploadResume(cmd.Context(), filepath.Base(args[0]), f)
	if err != nil {
		return err
	}
	if !tableOutput() {
		return printStructured(fb)
	}
	fmt.Printf("Overall score: %.0f\n", fb.OverallScore)
	for _, s := range fb.Strengths {
		fmt.Printf("  + %s\n", s)
	}
	for _, s := range fb.Improvements {
		fmt.Printf("  - %s\n", s)
	}
	return nil
}

func printCompany(co *profile.Company) error {
	if !tableOutput() {
		return printStructured(map[string]any{"company": co})
	}
	if co == nil {
		fmt.Println("No company profile yet. Create one with: hirepath company create <name>")
		return nil
	}
	fmt.Printf("%s (%s)\n", co.Name, co.Industry)
	if loc := co.Location.String(); loc != "" {
		fmt.Printf("Location: %s\n", loc)
	}
	if co.Website != "" {
		fmt.Printf("Website:  %s\n", co.Website)
	}
	return nil
}

func runCompanyShow(cmd *cobra.Command, args []string) error {
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	co, err := c.Profiles.FetchCompany(cmd.Context())
	if err != nil {
		return err
	}
	return printCompany(co)
}

func runCompanyCreate(cmd *cobra.Command, args []string) error {
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	in := profile.CompanyInput{Name: args[0]}
	in.Description, _ = cmd.Flags().GetString("description")
	in.Industry, _ = cmd.Flags().GetString("industry")
	in.Website, _ = cmd.Flags().GetString("website")
	in.Size, _ = cmd.Flags().GetString("size")
	in.Location.City, _ = cmd.Flags().GetString("city")
	in.Location.Country, _ = cmd.Flags().GetString("country")

	co, err := c.Profiles.CreateCompany(cmd.Context(), in)
	if err != nil {
		return err
	}
	return printCompany(co)
}
