package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/knwl-ai/knwld/internal/client"
	"github.com/knwl-ai/knwld/internal/parser"
)

var (
	ingestText        string
	ingestName        string
	ingestDescription string
	ingestWait        bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document into the knowledge graph",
	Long: `Ingest text into the knowledge graph. The server chunks the text,
stores it and extracts entities and relations in the background.

Markdown files may carry a YAML frontmatter block; its name and
description fields are used as ingestion metadata unless overridden
with flags.

Examples:
  knwl ingest notes.md
  knwl ingest notes.md --wait
  knwl ingest --text "SurrealDB is a multi-model database" --name surrealdb`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestText, "text", "", "ingest literal text instead of a file")
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "name for the ingestion")
	ingestCmd.Flags().StringVar(&ingestDescription, "description", "", "description for the ingestion")
	ingestCmd.Flags().BoolVarP(&ingestWait, "wait", "w", false, "wait for the job to finish")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	req := client.IngestRequest{
		Text:        ingestText,
		Name:        ingestName,
		Description: ingestDescription,
	}

	if len(args) == 1 {
		if ingestText != "" {
			return fmt.Errorf("pass either a file or --text, not both")
		}
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}

		doc := parser.ParseDocument(string(raw))
		req.Text = doc.Content
		if req.Name == "" {
			req.Name = doc.Name
		}
		if req.Description == "" {
			req.Description = doc.Description
		}
	}

	if req.Text == "" {
		return fmt.Errorf("nothing to ingest: pass a file or --text")
	}

	ctx := context.Background()
	accepted, err := api.Ingest(ctx, req)
	if err != nil {
		return fmt.Errorf("submit ingestion: %w", err)
	}

	if !ingestWait {
		fmt.Printf("Job %s submitted.\nUse 'knwl jobs %s' to check status.\n", accepted.JobID, accepted.JobID)
		return nil
	}

	return RunJobProgress(api, accepted.JobID)
}
