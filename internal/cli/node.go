package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Inspect or delete graph nodes",
}

var nodeGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a node by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runNodeGet,
}

var nodeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a node and its edges",
	Args:  cobra.ExactArgs(1),
	RunE:  runNodeDelete,
}

func init() {
	nodeCmd.AddCommand(nodeGetCmd)
	nodeCmd.AddCommand(nodeDeleteCmd)
	rootCmd.AddCommand(nodeCmd)
}

func runNodeGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	node, err := api.GetNode(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get node: %w", err)
	}

	fmt.Printf("Node: %s\n", node.ID)
	fmt.Printf("  Name: %s\n", node.Name)
	fmt.Printf("  Type: %s\n", node.Type)
	if node.Source != "" {
		fmt.Printf("  Source: %s\n", node.Source)
	}
	if !node.CreatedAt.IsZero() {
		fmt.Printf("  Created: %s\n", node.CreatedAt.Format(time.RFC3339))
	}
	if node.Content != "" {
		fmt.Printf("\n%s\n", node.Content)
	}
	return nil
}

func runNodeDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	result, err := api.DeleteNode(ctx, args[0])
	if err != nil {
		return fmt.Errorf("delete node: %w", err)
	}

	if !result.Deleted {
		fmt.Printf("Node %s did not exist.\n", result.ID)
		return nil
	}
	fmt.Printf("Deleted %s (%d edges removed).\n", result.ID, result.EdgesRemoved)
	return nil
}
