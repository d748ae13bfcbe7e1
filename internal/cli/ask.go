package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	askStrategy   string
	askOutputFile string
	askSources    bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question and get a synthesized answer",
	Long: `Ask a question against the knowledge graph. The server retrieves
relevant nodes and synthesizes an answer using the configured LLM.

Examples:
  knwl ask "What do I know about SurrealDB?"
  knwl ask "Who wrote the auth service?" --strategy fulltext
  knwl ask "Summarize project X" -o summary.md`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askStrategy, "strategy", "", "retrieval strategy: hybrid (default), fulltext or vector")
	askCmd.Flags().StringVarP(&askOutputFile, "output", "o", "", "write the answer to a file")
	askCmd.Flags().BoolVar(&askSources, "sources", false, "print source nodes after the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	answer, err := api.Ask(ctx, args[0], askStrategy)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	if askOutputFile != "" {
		if err := os.WriteFile(askOutputFile, []byte(answer.Answer+"\n"), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Answer written to %s\n", askOutputFile)
	} else {
		fmt.Println(answer.Answer)
	}

	if askSources && len(answer.Sources) > 0 {
		fmt.Printf("\nSources (%s):\n", answer.Strategy)
		for _, src := range answer.Sources {
			fmt.Printf("  - %s [%s] %s\n", src.Name, src.Type, src.ID)
		}
	}
	return nil
}
