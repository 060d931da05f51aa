package main

import (
	"github.com/spf13/cobra"

	"github.com/ahsan-courses/coursebot/internal/config"
)

// NewRootCmd builds the command tree. load assembles the application for the
// environment selected by --env; nil registers no subcommands needing it.
func NewRootCmd(version string, load appLoader) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "coursebot",
		Short:         "Course assistant chatbot with a local knowledge base",
		Long:          `Answers questions about Ahsan Courses from a retrieval-augmented knowledge base, captures leads and enrollments.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String("env", config.GetEnv(), "Config environment (local|prod)")

	rootCmd.AddCommand(NewVersionCmd())
	if load != nil {
		rootCmd.AddCommand(
			NewServeCmd(load),
			NewIngestCmd(load),
			NewSearchCmd(load),
		)
	}

	return rootCmd
}

// appFor loads the application for the command's --env flag.
func appFor(cmd *cobra.Command, load appLoader) (*app, error) {
	env, _ := cmd.Flags().GetString("env")
	return load(env)
}
