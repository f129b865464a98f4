package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/normalize"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

// DefaultMatchTimeout bounds a single pattern evaluation.
const DefaultMatchTimeout = 100 * time.Millisecond

// errBacktracking is wrapped by CompileError when the load-time probe times out.
var errBacktracking = errors.New("catastrophic backtracking on probe input")

// probeInputs are evaluated against every pattern at load. A pattern that
// exceeds its timeout on any of them is rejected.
var probeInputs = []string{
	strings.Repeat("a", 40) + "!",
	strings.Repeat("1", 40) + "x",
	strings.Repeat("a ", 30) + "!",
	strings.Repeat("-", 40) + "\x00",
}

// CompileOptions configures pattern compilation.
type CompileOptions struct {
	// MatchTimeout bounds each pattern evaluation. Zero means DefaultMatchTimeout.
	MatchTimeout time.Duration
	// ProbeBacktracking runs every pattern against adversarial inputs at load.
	ProbeBacktracking bool
}

// DefaultCompileOptions returns the options used by the CLI and engine.
func DefaultCompileOptions() CompileOptions {
	return CompileOptions{
		MatchTimeout:      DefaultMatchTimeout,
		ProbeBacktracking: true,
	}
}

// Rule is one compiled pattern or alias of a catalog entry.
type Rule struct {
	Entry   *types.CatalogEntry
	Pattern string // regex source, or the alias text for alias rules
	Line    int
	Alias   bool

	re    *regexp2.Regexp
	alias string // normalized alias
}

// Span is the longest match of a rule in a string, measured in runes.
type Span struct {
	Start  int
	Length int
}

// Longest returns the longest match of r in text. text must already be
// normalized. Alias rules only match the whole string. Empty matches never
// count.
func (r *Rule) Longest(text string) (Span, bool, error) {
	if r.Alias {
		if r.alias != "" && r.alias == text {
			return Span{Start: 0, Length: utf8.RuneCountInString(text)}, true, nil
		}
		return Span{}, false, nil
	}

	m, err := r.re.FindStringMatch(text)
	if err != nil {
		return Span{}, false, err
	}
	var best Span
	found := false
	for m != nil {
		if m.Length > 0 && (!found || m.Length > best.Length) {
			best = Span{Start: m.Index, Length: m.Length}
			found = true
		}
		m, err = r.re.FindNextMatch(m)
		if err != nil {
			return best, found, err
		}
	}
	return best, found, nil
}

// CompiledSection holds a section's rules in declaration order.
type CompiledSection struct {
	Name     string
	Priority int
	Rules    []*Rule
}

// Compiled is a catalog whose patterns are ready to match. It is immutable
// and safe for concurrent use.
type Compiled struct {
	Catalog  *Catalog
	Sections []*CompiledSection
}

// Compile compiles every pattern of c. The first invalid pattern aborts
// compilation with a *CompileError.
func Compile(c *Catalog, opts CompileOptions) (*Compiled, error) {
	if opts.MatchTimeout <= 0 {
		opts.MatchTimeout = DefaultMatchTimeout
	}

	out := &Compiled{Catalog: c}
	for _, s := range c.Sections {
		cs := &CompiledSection{Name: s.Name, Priority: s.Priority}
		for _, e := range s.Entries {
			for i, pattern := range e.Patterns {
				line := 0
				if i < len(e.PatternLines) {
					line = e.PatternLines[i]
				}
				re, err := compilePattern(pattern, opts)
				if err != nil {
					return nil, &CompileError{
						File:    c.Path,
						Section: e.Section,
						Brand:   e.Brand,
						Model:   e.Model,
						Pattern: pattern,
						Line:    line,
						Err:     err,
					}
				}
				cs.Rules = append(cs.Rules, &Rule{Entry: e, Pattern: pattern, Line: line, re: re})
			}
			for _, a := range e.Aliases {
				cs.Rules = append(cs.Rules, &Rule{Entry: e, Pattern: a, Alias: true, alias: normalize.Text(a)})
			}
		}
		out.Sections = append(out.Sections, cs)
	}
	return out, nil
}

// Validate compiles c and discards the result.
func Validate(c *Catalog, opts CompileOptions) error {
	_, err := Compile(c, opts)
	return err
}

// Section returns the compiled section named name, compared as a format.
func (c *Compiled) Section(name string) (*CompiledSection, bool) {
	want := normalize.Format(name)
	for _, s := range c.Sections {
		if normalize.Format(s.Name) == want {
			return s, true
		}
	}
	return nil, false
}

// RuleCount returns the number of rules across all sections.
func (c *Compiled) RuleCount() int {
	n := 0
	for _, s := range c.Sections {
		n += len(s.Rules)
	}
	return n
}

// compilePattern compiles a case-insensitive pattern with a match timeout.
func compilePattern(pattern string, opts CompileOptions) (*regexp2.Regexp, error) {
	// Try RE2 mode first, fall back to full syntax for lookarounds and backreferences.
	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase|regexp2.RE2)
	if err != nil {
		re, err = regexp2.Compile(pattern, regexp2.IgnoreCase)
		if err != nil {
			return nil, err
		}
	}
	re.MatchTimeout = opts.MatchTimeout

	if opts.ProbeBacktracking {
		for _, in := range probeInputs {
			if _, err := re.MatchString(in); err != nil {
				return nil, fmt.Errorf("%w: %v", errBacktracking, err)
			}
		}
	}
	return re, nil
}
