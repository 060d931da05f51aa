package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahsan-courses/coursebot/internal/version"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "coursebot", version.String())
		},
	}
}
