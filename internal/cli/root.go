// Package cli provides the command-line interface for knwld.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/knwl-ai/knwld/internal/client"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	serverURL string
	verbose   bool

	// REST client shared by all commands.
	api *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "knwl",
	Short: "Knowledge graph client",
	Long: `knwl is the command-line client for the knwld knowledge graph server.

Ingest documents, add facts, ask questions and retrieve graph context.
Mutations run as background jobs on the server; the client can wait for
them or leave them running and poll later.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		api = client.New(serverURL)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "server URL (default KNWL_SERVER_URL or http://localhost:9030)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
