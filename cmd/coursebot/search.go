package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ahsan-courses/coursebot/internal/usecase/chat"
)

func NewSearchCmd(load appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Query the knowledge base",
		Long:  `Return the documents closest to the query from the persisted snapshot, nearest first.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  makeSearchRunner(load),
	}

	cmd.Flags().IntP("top-k", "k", chat.DefaultTopK, "Maximum documents")
	cmd.Flags().Bool("json", false, "Output in JSON format")
	return cmd
}

func makeSearchRunner(load appLoader) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		k, _ := cmd.Flags().GetInt("top-k")
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := appFor(cmd, load)
		if err != nil {
			return err
		}
		defer a.Close()

		docs, err := a.knowledge.Query(cmd.Context(), query, k)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(docs)
		}

		if len(docs) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No documents found. Run `coursebot ingest` to build the knowledge base.")
			return nil
		}
		for i, doc := range chat.Previews(docs, chat.SourcePreviewLen) {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, doc)
		}
		return nil
	}
}
