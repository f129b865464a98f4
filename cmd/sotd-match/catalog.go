package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/catalog"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/config"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/correct"
)

var (
	catalogFormat string
	catalogDir    string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate product catalogs",
	Long:  "Commands for listing and validating catalogs and correct matches",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded catalogs",
	Long:  "Display every catalog kind with its section, entry and rule counts",
	RunE:  runCatalogList,
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate catalogs",
	Long: `Load and compile every catalog, the correct-matches file and the
filtered-entries list, reporting each problem with its file and line.`,
	RunE: runCatalogValidate,
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogListCmd.Flags().StringVar(&catalogFormat, "format", "table", "Output format: table, json")
	catalogValidateCmd.Flags().StringVar(&catalogDir, "dir", "", "Catalog directory (default from config, else builtin)")
}

// catalogStat summarizes one compiled catalog.
type catalogStat struct {
	Kind     catalog.Kind `json:"kind"`
	Source   string       `json:"source"`
	Sections int          `json:"sections"`
	Entries  int          `json:"entries"`
	Rules    int          `json:"rules"`
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	e, _, err := newEngine()
	if err != nil {
		return err
	}

	stats := make([]catalogStat, 0, len(catalog.Kinds))
	for _, kind := range catalog.Kinds {
		c := e.Catalog(kind)
		stats = append(stats, catalogStat{
			Kind:     kind,
			Source:   sourceName(e.Config().Catalog.CatalogPath(string(kind))),
			Sections: len(c.Sections),
			Entries:  len(c.Catalog.Entries()),
			Rules:    c.RuleCount(),
		})
	}

	switch catalogFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(stats)
	case "table":
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KIND\tSECTIONS\tENTRIES\tRULES\tSOURCE")
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", s.Kind, s.Sections, s.Entries, s.Rules, s.Source)
		}
		w.Flush()
		fmt.Fprintf(cmd.OutOrStdout(), "\nCorrect matches: %d\n", e.Correct().Len())
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", catalogFormat)
	}
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cats := cfg.Catalog
	if catalogDir != "" {
		cats.Dir = catalogDir
	}

	out := cmd.OutOrStdout()
	failed := 0
	report := func(name string, err error) {
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL  %s: %v\n", name, err)
			return
		}
		fmt.Fprintf(out, "ok    %s\n", name)
	}

	for _, kind := range catalog.Kinds {
		report(string(kind), validateCatalog(cfg, cats, kind))
	}
	_, err = correct.LoadPath(cats.CorrectMatches)
	report("correct_matches", err)
	_, err = correct.LoadFilteredPath(cats.Filtered)
	report("filtered", err)

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(catalog.Kinds)+2)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func validateCatalog(cfg *config.Config, cats config.CatalogConfig, kind catalog.Kind) error {
	c, err := catalog.NewLoader().LoadPath(kind, cats.CatalogPath(string(kind)))
	if err != nil {
		return err
	}
	opts := catalog.CompileOptions{
		MatchTimeout:      cfg.Match.RegexTimeout,
		ProbeBacktracking: !cfg.Match.SkipProbe,
	}
	return catalog.Validate(c, opts)
}

func sourceName(path string) string {
	if path == "" {
		return "builtin"
	}
	return path
}
