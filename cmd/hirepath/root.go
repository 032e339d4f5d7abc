package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"hirepath/internal/app"
	"hirepath/internal/config"
)

var (
	outputFormat string
	verbose      bool
	envFiles     []string

	cfg       config.Config
	container *app.Container
)

var rootCmd = &cobra.Command{
	Use:   "hirepath",
	Short: "Job-matching dashboard client",
	Long: `hirepath keeps a local, cached view of your job-matching account and
talks to the matching backend on your behalf.

Examples:
  hirepath login --email ana@example.com
  hirepath skills set 3 7
  hirepath candidates list --score excellent
  hirepath status set 42 SHORTLISTED
  hirepath serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFiles...); err != nil {
			return err
		}
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return nil
		}
		err := container.Close()
		container = nil
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, yaml, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log store and transport activity to stderr")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")
}

func newLogger() *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "", log.LstdFlags)
}

// getContainer builds the client components once per invocation. The persisted session is
// restored before it returns.
func getContainer(ctx context.Context) (*app.Container, error) {
	if container != nil {
		return container, nil
	}
	c, err := app.NewContainer(ctx, cfg, newLogger())
	if err != nil {
		return nil, err
	}
	container = c
	return c, nil
}
