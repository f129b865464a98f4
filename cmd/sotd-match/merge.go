package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/store"
)

var (
	mergeOutput string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <source1.db> <source2.db> [source3.db...]",
	Short: "Merge multiple result stores",
	Long: `Merge multiple result stores into a single output store.

This is useful for combining batch runs made on different machines or
for different months. Runs are keyed by ID, so a run already present in
the output is not copied twice.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.db", "Output store path")
}

func runMerge(cmd *cobra.Command, args []string) error {
	stats, err := store.Merge(store.MergeConfig{
		SourcePaths: args,
		DestPath:    mergeOutput,
	})
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Merge complete:\n")
	fmt.Fprintf(out, "  Sources processed: %d\n", stats.SourcesProcessed)
	fmt.Fprintf(out, "  Runs merged: %d\n", stats.RunsMerged)
	fmt.Fprintf(out, "  Results merged: %d\n", stats.ResultsMerged)
	fmt.Fprintf(out, "Output: %s\n", mergeOutput)
	return nil
}
