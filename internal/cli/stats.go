package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var statsServer bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show graph and server statistics",
	Long: `Show node and edge counts for the current namespace.

With --server-stats, also prints the server's runtime operation metrics
(timings reset on server restart).`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsServer, "server-stats", false, "include server runtime metrics")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	nodes, err := api.NodeCount(ctx)
	if err != nil {
		return fmt.Errorf("node count: %w", err)
	}
	edges, err := api.EdgeCount(ctx)
	if err != nil {
		return fmt.Errorf("edge count: %w", err)
	}

	fmt.Printf("Namespace: %s\n", nodes.Namespace)
	fmt.Printf("  Nodes: %d\n", nodes.Count)
	fmt.Printf("  Edges: %d\n", edges.Count)

	if !statsServer {
		return nil
	}

	snapshot, err := api.ServerStats(ctx)
	if err != nil {
		return fmt.Errorf("server stats: %w", err)
	}

	uptime := time.Duration(snapshot.UptimeSeconds * float64(time.Second))
	fmt.Printf("\nServer uptime: %s\n", uptime.Round(time.Second))

	if len(snapshot.Operations) == 0 {
		fmt.Println("No operations recorded yet.")
		return nil
	}

	ops := make([]string, 0, len(snapshot.Operations))
	for op := range snapshot.Operations {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	fmt.Printf("%-14s %8s %10s %10s %10s\n", "OPERATION", "COUNT", "AVG(ms)", "MIN(ms)", "MAX(ms)")
	for _, op := range ops {
		s := snapshot.Operations[op]
		fmt.Printf("%-14s %8d %10.1f %10d %10d\n", op, s.Count, s.AvgTimeMs, s.MinTimeMs, s.MaxTimeMs)
	}
	return nil
}
