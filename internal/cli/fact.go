package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/knwl-ai/knwld/internal/client"
)

var (
	factType string
	factID   string
	factWait bool
)

var factCmd = &cobra.Command{
	Use:   "fact <name> <content>",
	Short: "Add a fact to the knowledge graph",
	Long: `Add a single fact node to the knowledge graph. The fact is stored
as a background job on the server.

Examples:
  knwl fact "capital of France" "Paris is the capital of France"
  knwl fact "capital of France" "Paris is the capital of France" --type Geography
  knwl fact "favorite editor" "I use helix" --id fav-editor --wait`,
	Args: cobra.ExactArgs(2),
	RunE: runFact,
}

func init() {
	factCmd.Flags().StringVarP(&factType, "type", "t", "", "fact type (default Fact)")
	factCmd.Flags().StringVar(&factID, "id", "", "explicit node id for the fact")
	factCmd.Flags().BoolVarP(&factWait, "wait", "w", false, "wait for the job to finish")
	rootCmd.AddCommand(factCmd)
}

func runFact(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	accepted, err := api.AddFact(ctx, client.FactRequest{
		Name:    args[0],
		Content: args[1],
		Type:    factType,
		ID:      factID,
	})
	if err != nil {
		return fmt.Errorf("submit fact: %w", err)
	}

	if !factWait {
		fmt.Printf("Job %s submitted.\nUse 'knwl jobs %s' to check status.\n", accepted.JobID, accepted.JobID)
		return nil
	}

	return RunJobProgress(api, accepted.JobID)
}
