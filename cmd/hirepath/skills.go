package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hirepath/internal/domain/skill"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Manage your skill inventory",
	Long: `Skill inventory commands. Every change re-fetches your profile so the
listed skills always match the server.

Examples:
  hirepath skills list
  hirepath skills add 7
  hirepath skills set 3 7 12
  hirepath skills catalog --search go`,
}

var skillsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your selected skills",
	RunE:  runSkillsList,
}

var skillsAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add one skill",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkillsAdd,
}

var skillsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove one skill",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkillsRemove,
}

var skillsSetCmd = &cobra.Command{
	Use:   "set <id>...",
	Short: "Replace the whole selection",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSkillsSet,
}

var skillsCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the global skill catalog",
	RunE:  runSkillsCatalog,
}

func init() {
	skillsCatalogCmd.Flags().String("search", "", "filter the catalog by name")
	skillsCatalogCmd.Flags().Bool("popular", false, "show the most selected skills instead")

	skillsCmd.AddCommand(skillsListCmd, skillsAddCmd, skillsRemoveCmd, skillsSetCmd, skillsCatalogCmd)
	rootCmd.AddCommand(skillsCmd)
}

func printSkills(skills []skill.Skill) error {
	if !tableOutput() {
		return printStructured(map[string]any{"skills": skills, "count": len(skills)})
	}
	if len(skills) == 0 {
		fmt.Println("No skills found")
		return nil
	}
	w := newTable()
	printTableHeader(w, "ID", "NAME", "CATEGORY")
	for _, s := range skills {
		fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID, s.Name, s.Category)
	}
	return w.Flush()
}

func runSkillsList(cmd *cobra.Command, args []string) error {
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	if _, err := c.Profiles.FetchProfile(cmd.Context()); err != nil {
		return err
	}
	return printSkills(c.Skills.Selected())
}

func runSkillsAdd(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	if err := c.Skills.AddSkill(cmd.Context(), ids[0]); err != nil {
		return err
	}
	return printSkills(c.Skills.Selected())
}

func runSkillsRemove(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	if err := c.Skills.RemoveSkill(cmd.Context(), ids[0]); err != nil {
		return err
	}
	return printSkills(c.Skills.Selected())
}

func runSkillsSet(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	if err := c.Skills.SetSkills(cmd.Context(), ids); err != nil {
		return err
	}
	return printSkills(c.Skills.Selected())
}

func runSkillsCatalog(cmd *cobra.Command, args []string) error {
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	var skills []skill.Skill
	if popular, _ := cmd.Flags().GetBool("popular"); popular {
		skills, err = c.Skills.Popular(cmd.Context())
	} else {
		search, _ := cmd.Flags().GetString("search")
		skills, err = c.Skills.Search(cmd.Context(), search)
	}
	if err != nil {
		return err
	}
	return printSkills(skills)
}
