package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hirepath/internal/delivery/http/dto"
	"hirepath/internal/domain/session"
	"hirepath/internal/infrastructure/api"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	Long: `Sign in with an email or username. The password is read from --password,
then HIREPATH_PASSWORD, then one line of standard input.`,
	RunE: runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the restored session",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().String("email", "", "email or username")
	loginCmd.Flags().String("password", "", "account password")

	signupCmd.Flags().String("email", "", "email address")
	signupCmd.Flags().String("password", "", "account password")
	signupCmd.Flags().String("first-name", "", "first name")
	signupCmd.Flags().String("last-name", "", "last name")
	signupCmd.Flags().String("role", string(session.RoleGraduate), "GRADUATE or RECRUITER")
	signupCmd.Flags().String("phone", "", "phone number")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
}

func readPassword(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p, nil
	}
	if p := os.Getenv("HIREPATH_PASSWORD"); p != "" {
		return p, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printSession() error {
	cur, ok := container.Session.Current()
	res := dto.NewSessionResponse(container.Session.State(), cur, ok)
	if !tableOutput() {
		return printStructured(res)
	}
	if !ok {
		fmt.Println("Not signed in")
		return nil
	}
	fmt.Printf("Signed in as %s (%s)\n", res.Email, res.Role)
	if res.ExpiresAt != nil {
		fmt.Printf("Token expires %s\n", res.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	email, _ := cmd.Flags().GetString("email")
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}
	if _, err := c.Session.Login(cmd.Context(), email, password); err != nil {
		return err
	}
	return printSession()
}

func runSignup(cmd *cobra.Command, args []string) error {
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}
	in := api.SignupInput{Password: password}
	in.Email, _ = cmd.Flags().GetString("email")
	in.FirstName, _ = cmd.Flags().GetString("first-name")
	in.LastName, _ = cmd.Flags().GetString("last-name")
	in.Phone, _ = cmd.Flags().GetString("phone")
	role, _ := cmd.Flags().GetString("role")
	in.Role = session.Role(strings.ToUpper(strings.TrimSpace(role)))

	if _, err := c.Session.Signup(cmd.Context(), in); err != nil {
		return err
	}
	return printSession()
}

func runLogout(cmd *cobra.Command, args []string) error {
	c, err := getContainer(cmd.Context())
	if err != nil {
		return err
	}
	if err := c.Session.Logout(cmd.Context()); err != nil {
		return err
	}
	if tableOutput() {
		fmt.Println("Signed out")
		return nil
	}
	return printSession()
}

func runWhoami(cmd *cobra.Command, args []string) error {
	if _, err := getContainer(cmd.Context()); err != nil {
		return err
	}
	return printSession()
}
