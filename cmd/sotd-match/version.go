package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/catalog"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/serve"
)

var (
	version = "dev"
	commit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the sotd-match version, the serve protocol version and the size of the embedded catalogs",
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "sotd-match v%s (commit %s)\n", version, commit)
	fmt.Fprintf(out, "Serve protocol: %s\n", serve.Version)
	fmt.Fprintf(out, "Built with %s for %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	loader := catalog.NewLoader()
	fmt.Fprintln(out, "Embedded catalogs:")
	for _, kind := range catalog.Kinds {
		c, err := loader.LoadBuiltin(kind)
		if err != nil {
			return fmt.Errorf("loading builtin %s catalog: %w", kind, err)
		}
		fmt.Fprintf(out, "  %-8s %4d entries %4d patterns\n", kind, len(c.Entries()), c.PatternCount())
	}
	return nil
}
