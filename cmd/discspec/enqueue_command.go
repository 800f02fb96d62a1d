package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"discspec/internal/service"
)

func newEnqueueCommand() *cobra.Command {
	var year int
	var sourceURL string
	var priority int
	var itemID string
	var maxAttempts int

	cmd := &cobra.Command{
		Use:   "enqueue <title>",
		Short: "Add a title to the scrape queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			job, err := a.jobSvc.Submit(cmd.Context(), service.JobSubmission{
				Title:            strings.Join(args, " "),
				ReleaseYear:      year,
				SourceURL:        sourceURL,
				CollectionItemID: itemID,
				Priority:         priority,
				MaxAttempts:      maxAttempts,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "enqueued job %d: %s\n", job.ID, job.Title)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Release year used for search matching")
	cmd.Flags().StringVar(&sourceURL, "url", "", "Direct release page URL, skips search")
	cmd.Flags().IntVar(&priority, "priority", 0, "Higher priority jobs are claimed first")
	cmd.Flags().StringVar(&itemID, "item", "", "Collection item to link the spec to")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Attempt cap before the job fails permanently (default 3)")

	return cmd
}
