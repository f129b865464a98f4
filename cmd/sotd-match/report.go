package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/store"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

var (
	reportStore  string
	reportRun    string
	reportFormat string
	reportColor  string
	reportTop    int
)

// styles holds the color formatters for human output.
type styles struct {
	heading   *color.Color
	id        *color.Color
	brand     *color.Color
	matched   *color.Color
	unmatched *color.Color
	metadata  *color.Color
}

// newStyles creates color formatters. enabled=false respects --color=never
// and NO_COLOR.
func newStyles(enabled bool) *styles {
	s := &styles{
		heading:   color.New(color.Bold),
		id:        color.New(color.FgHiGreen),
		brand:     color.New(color.Bold, color.FgHiBlue),
		matched:   color.New(color.FgGreen),
		unmatched: color.New(color.FgYellow),
		metadata:  color.New(color.FgHiBlack),
	}
	if !enabled {
		for _, c := range []*color.Color{s.heading, s.id, s.brand, s.matched, s.unmatched, s.metadata} {
			c.DisableColor()
		}
	}
	return s
}

func (s *styles) matchType(mt types.MatchType) string {
	if mt == types.MatchUnmatched {
		return s.unmatched.Sprint(mt)
	}
	return s.matched.Sprint(mt)
}

// colorEnabled resolves a --color flag value. auto enables color only when
// stdout is a terminal and NO_COLOR is unset.
func colorEnabled(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize a stored batch run",
	Long: `Read a batch run from the result store and print per-field counts
by match type plus the most frequent brands. Defaults to the latest run.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportStore, "store", "", "Path to result store (default from config)")
	reportCmd.Flags().StringVar(&reportRun, "run", "", "Run ID (default: latest run)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "human", "Output format: human, json")
	reportCmd.Flags().StringVar(&reportColor, "color", "auto", "Color output: auto, always, never")
	reportCmd.Flags().IntVar(&reportTop, "top", 5, "Brands to show per field")
}

func runReport(cmd *cobra.Command, args []string) error {
	path := reportStore
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Store.Path
	}
	if path == "" {
		return errors.New("no result store: pass --store or set SOTD_STORE_PATH")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("opening result store: %w", err)
	}

	s, err := store.New(store.Config{Path: path})
	if err != nil {
		return fmt.Errorf("opening result store: %w", err)
	}
	defer s.Close()

	run, err := selectRun(s, reportRun)
	if err != nil {
		return err
	}
	summary, err := s.Summary(run.ID)
	if err != nil {
		return fmt.Errorf("summarizing run %s: %w", run.ID, err)
	}

	switch reportFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			Run     *store.Run     `json:"run"`
			Summary *store.Summary `json:"summary"`
		}{run, summary})
	case "human":
		writeReportHuman(cmd.OutOrStdout(), run, summary, newStyles(colorEnabled(reportColor)))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", reportFormat)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func selectRun(s store.Store, id string) (*store.Run, error) {
	if id != "" {
		return s.GetRun(id)
	}
	runs, err := s.GetRuns()
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, store.ErrRunNotFound
	}
	return runs[len(runs)-1], nil
}

func writeReportHuman(out io.Writer, run *store.Run, summary *store.Summary, s *styles) {
	fmt.Fprintf(out, "%s %s\n", s.heading.Sprint("Run:"), s.id.Sprint(run.ID))
	fmt.Fprintf(out, "%s %s\n", s.heading.Sprint("Source:"), run.Source)
	fmt.Fprintf(out, "%s %s\n", s.heading.Sprint("Created:"), run.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "%s %d\n\n", s.heading.Sprint("Records:"), summary.Records)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tTOTAL\tMATCHED\tUNMATCHED\tFILTERED\tERRORS")
	for _, fs := range summary.Fields {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n", fs.Field, fs.Total, fs.Matched, fs.Unmatched, fs.Filtered, fs.Errors)
	}
	w.Flush()

	for _, fs := range summary.Fields {
		if len(fs.Brands) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n%s\n", s.heading.Sprintf("Top %s brands", fs.Field))
		for i, b := range fs.Brands {
			if reportTop > 0 && i >= reportTop {
				break
			}
			fmt.Fprintf(out, "  %-30s %d\n", s.brand.Sprint(b.Brand), b.Count)
		}
	}
}
