package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/knwl-ai/knwld/internal/jobs"
)

var jobsWatch bool

var jobsCmd = &cobra.Command{
	Use:   "jobs <job-id>",
	Short: "Inspect a background job",
	Long: `Show the status of a background job by ID.

With --watch, subscribes to the server's status stream and prints every
state change until the job finishes.

Examples:
  knwl jobs 7d8f1c2e-...          # Show current status
  knwl jobs 7d8f1c2e-... --watch  # Follow until terminal`,
	Args: cobra.ExactArgs(1),
	RunE: runJobs,
}

func init() {
	jobsCmd.Flags().BoolVarP(&jobsWatch, "watch", "w", false, "follow state changes until the job finishes")
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	id := args[0]

	if jobsWatch {
		return watchJob(ctx, id)
	}

	status, err := api.GetJob(ctx, id)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	printJob(status)
	return nil
}

func watchJob(ctx context.Context, id string) error {
	final, err := api.WatchJob(ctx, id, func(status jobs.Status) {
		fmt.Printf("[%s] %s\n", status.UpdatedAt.Format("15:04:05"), status.State)
	})
	if err != nil {
		return fmt.Errorf("watch job: %w", err)
	}

	fmt.Println()
	printJob(final)
	if final.State == jobs.StateFailed {
		return fmt.Errorf("job failed: %s", final.Error)
	}
	return nil
}

func printJob(status *jobs.Status) {
	fmt.Printf("Job: %s\n", status.JobID)
	fmt.Printf("  Type: %s\n", status.JobType)
	fmt.Printf("  State: %s\n", status.State)
	fmt.Printf("  Created: %s\n", status.CreatedAt.Format(time.RFC3339))
	fmt.Printf("  Updated: %s\n", status.UpdatedAt.Format(time.RFC3339))

	if status.Error != "" {
		fmt.Printf("  Error: %s\n", status.Error)
	}
	if status.Result != nil {
		pretty, err := json.MarshalIndent(status.Result, "  ", "  ")
		if err == nil {
			fmt.Printf("\nResult:\n  %s\n", pretty)
		}
	}
}
