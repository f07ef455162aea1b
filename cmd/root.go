package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "learno",
		Short:         "Learning path generator",
		Long:          "Learno generates a quiz for a topic, scores it and builds a roadmap of milestones. Without a subcommand it starts the API server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, serveOptions{})
		},
	}

	root.PersistentFlags().String("config", "configs", "Directory holding config.yaml")

	root.AddCommand(newServeCmd())
	root.AddCommand(newCoursesCmd())
	root.AddCommand(newProgressCmd())
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

// envOr returns the environment value for key, or def when unset.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
