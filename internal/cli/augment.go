package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var augmentStrategy string

var augmentCmd = &cobra.Command{
	Use:   "augment <text>",
	Short: "Retrieve graph context for a piece of text",
	Long: `Retrieve relevant knowledge-graph context for the given text, for
use as RAG context in prompts.

Examples:
  knwl augment "deployment procedure for the billing service"
  knwl augment "SurrealDB indexes" --strategy vector`,
	Args: cobra.ExactArgs(1),
	RunE: runAugment,
}

func init() {
	augmentCmd.Flags().StringVar(&augmentStrategy, "strategy", "", "retrieval strategy: hybrid (default), fulltext or vector")
	rootCmd.AddCommand(augmentCmd)
}

func runAugment(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	result, err := api.Augment(ctx, args[0], augmentStrategy)
	if err != nil {
		return fmt.Errorf("augment: %w", err)
	}

	if result.Text == "" {
		fmt.Println("No relevant context found.")
		return nil
	}

	fmt.Println(result.Text)
	if verbose {
		fmt.Printf("\n(%d fragments, strategy %s)\n", len(result.Fragments), result.Strategy)
	}
	return nil
}
