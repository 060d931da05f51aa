package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahsan-courses/coursebot/internal/domain"
)

func NewIngestCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Build the knowledge base snapshot",
		Long:  `Embed every document in the knowledge directory and write the snapshot served by the API.`,
		Args:  cobra.NoArgs,
		RunE:  makeIngestRunner(load),
	}
}

func makeIngestRunner(load appLoader) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := appFor(cmd, load)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, usage := domain.NewContextWithUsage(cmd.Context())
		if err := a.knowledge.Rebuild(ctx); err != nil {
			return fmt.Errorf("ingest %s: %w", a.corpus.Dir(), err)
		}

		st := a.knowledge.Status()
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents (dimension %d) into %s\n",
			st.Documents, st.Dimension, a.snapshots.Path())
		if usage.EmbeddingTokens > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Embedding tokens: %d\n", usage.EmbeddingTokens)
		}
		return nil
	}
}
