package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

var (
	matchContext string
	matchFormat  string
	matchColor   string
)

var matchCmd = &cobra.Command{
	Use:   "match <field> <text...>",
	Short: "Match one product string",
	Long: `Match a single string against the catalogs for one field
(razor, blade, brush or soap).

For blades, --context sets the razor format (DE, Half DE, GEM, AC, ...)
used to pick the right catalog section.`,
	Example: `  sotd-match match brush "DG B15 w/ C&H Zebra"
  sotd-match match blade --context GEM Accuforge`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&matchContext, "context", "", "Razor format used as blade context")
	matchCmd.Flags().StringVar(&matchFormat, "format", "human", "Output format: human, json")
	matchCmd.Flags().StringVar(&matchColor, "color", "auto", "Color output: auto, always, never")
}

func runMatch(cmd *cobra.Command, args []string) error {
	field, ok := types.ParseField(args[0])
	if !ok {
		return fmt.Errorf("unknown field %q: want razor, blade, brush or soap", args[0])
	}
	text := strings.Join(args[1:], " ")

	e, _, err := newEngine()
	if err != nil {
		return err
	}
	res, err := e.MatchWithContext(field, text, matchContext)
	if err != nil {
		return err
	}

	switch matchFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(res)
	case "human":
		writeResultHuman(cmd.OutOrStdout(), res, newStyles(colorEnabled(matchColor)))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", matchFormat)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func writeResultHuman(out io.Writer, res *types.MatchResult, s *styles) {
	fmt.Fprintf(out, "%s %s\n", s.heading.Sprint("Original:"), res.Original)
	fmt.Fprintf(out, "%s %s\n", s.heading.Sprint("Match:"), s.matchType(res.MatchType))
	if res.Filtered {
		fmt.Fprintf(out, "%s yes\n", s.heading.Sprint("Filtered:"))
	}
	if res.Error != "" {
		fmt.Fprintf(out, "%s %s\n", s.heading.Sprint("Error:"), res.Error)
	}
	if !res.IsMatched() {
		return
	}

	m := res.Matched
	writeField(out, s, "Brand", m.Brand)
	writeField(out, s, "Model", m.Model)
	writeField(out, s, "Format", m.Format)
	writeField(out, s, "Fiber", m.Fiber)
	if m.KnotSizeMM > 0 {
		writeField(out, s, "Knot size", formatSize(m.KnotSizeMM))
	}
	if res.HasSectionInfo() {
		writeField(out, s, "Section", fmt.Sprintf("%s (priority %d)", res.Section, res.Priority))
	}
	writeField(out, s, "Pattern", res.Pattern)
	writeComponent(out, s, "Handle", m.Handle)
	writeComponent(out, s, "Knot", m.Knot)
}

func writeField(out io.Writer, s *styles, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(out, "%s %s\n", s.heading.Sprint(label+":"), s.brand.Sprint(value))
}

func writeComponent(out io.Writer, s *styles, label string, c *types.ComponentMatch) {
	if c == nil {
		return
	}
	name := strings.TrimSpace(c.Brand + " " + c.Model)
	if name == "" {
		name = "(unresolved)"
	}
	fmt.Fprintf(out, "%s %s [%s] from %q\n", s.heading.Sprint(label+":"), s.brand.Sprint(name), s.matchType(c.MatchType), c.SourceText)
	if c.Fiber != "" || c.KnotSizeMM > 0 {
		var parts []string
		if c.Fiber != "" {
			parts = append(parts, c.Fiber)
		}
		if c.KnotSizeMM > 0 {
			parts = append(parts, formatSize(c.KnotSizeMM))
		}
		fmt.Fprintf(out, "  %s\n", s.metadata.Sprint(strings.Join(parts, ", ")))
	}
}

func formatSize(mm float64) string {
	return strconv.FormatFloat(mm, 'f', -1, 64) + "mm"
}
