package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"discspec/internal/domain"
)

func newProcessCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Claim and process one batch of pending jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			summary, err := a.worker.ProcessBatch(cmd.Context())
			if err != nil {
				return err
			}
			if summary.ProcessedCount == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no jobs due")
				return nil
			}

			rows := make([][]string, 0, len(summary.Results))
			for _, res := range summary.Results {
				rows = append(rows, []string{
					fmt.Sprintf("%d", res.JobID),
					string(res.Status),
					res.SpecID,
					formatRetryAfter(res.RetryAfter),
					res.Error,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Job", "Status", "Spec", "Retry after", "Error"}, rows))
			return nil
		},
	}
}

func formatRetryAfter(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatJobRow(job *domain.ScrapeJob) []string {
	year := ""
	if job.ReleaseYear > 0 {
		year = fmt.Sprintf("%d", job.ReleaseYear)
	}
	return []string{
		fmt.Sprintf("%d", job.ID),
		job.Title,
		year,
		string(job.Status),
		fmt.Sprintf("%d/%d", job.Attempts, job.MaxAttempts),
		job.ErrorMessage,
	}
}
