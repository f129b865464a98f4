// Package fiber detects brush knot fibers and knot sizes in free text.
//
// It is the one shared fiber-detection utility: the brush content scorer and
// the brush matcher's fiber-only fallback both call it, so neither carries its
// own fiber regexes.
package fiber

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Canonical fiber names.
const (
	Badger    = "Badger"
	Boar      = "Boar"
	Synthetic = "Synthetic"
	Horse     = "Horse"
	Mixed     = "Mixed Badger/Boar"
)

// keywords maps lowercase keywords to their canonical fiber.
var keywords = map[string]string{
	"badger":      Badger,
	"silvertip":   Badger,
	"silver tip":  Badger,
	"two band":    Badger,
	"2 band":      Badger,
	"2-band":      Badger,
	"three band":  Badger,
	"3 band":      Badger,
	"best badger": Badger,
	"finest":      Badger,
	"manchurian":  Badger,
	"fanchurian":  Badger,
	"shd":         Badger,
	"gelo":        Badger,
	"boar":        Boar,
	"bristle":     Boar,
	"synthetic":   Synthetic,
	"synth":       Synthetic,
	"syn":         Synthetic,
	"plissoft":    Synthetic,
	"tuxedo":      Synthetic,
	"timberwolf":  Synthetic,
	"cashmere":    Synthetic,
	"nylon":       Synthetic,
	"g5a":         Synthetic,
	"g5b":         Synthetic,
	"g5c":         Synthetic,
	"horse":       Horse,
	"horsehair":   Horse,
}

// Detector finds fiber keywords with a single Aho-Corasick pass. It is safe
// for concurrent use.
type Detector struct {
	matcher  *ahocorasick.Matcher
	keywords []string
}

// hit is one keyword occurrence on word boundaries.
type hit struct {
	pos   int
	fiber string
}

var (
	defaultDetector = NewDetector()

	knotSizeMMRe  = regexp.MustCompile(`(?i)\b(\d{2}(?:\.\d+)?)\s*mm\b`)
	knotSizeDimRe = regexp.MustCompile(`(?i)\b(\d{2}(?:\.\d+)?)\s*[x×]\s*\d{2}(?:\.\d+)?\b`)
)

// NewDetector builds a detector over the canonical keyword table.
func NewDetector() *Detector {
	kws := make([]string, 0, len(keywords))
	for kw := range keywords {
		kws = append(kws, kw)
	}
	sort.Strings(kws)
	return &Detector{
		matcher:  ahocorasick.NewStringMatcher(kws),
		keywords: kws,
	}
}

// Detect returns the canonical fiber mentioned in text.
// Badger together with boar is reported as Mixed; otherwise the earliest
// mentioned fiber wins.
func (d *Detector) Detect(text string) (string, bool) {
	lower := strings.ToLower(text)
	found := d.matcher.MatchThreadSafe([]byte(lower))
	if len(found) == 0 {
		return "", false
	}

	var hits []hit
	for _, idx := range found {
		kw := d.keywords[idx]
		if pos := wordIndex(lower, kw); pos >= 0 {
			hits = append(hits, hit{pos: pos, fiber: keywords[kw]})
		}
	}
	if len(hits) == 0 {
		return "", false
	}

	seen := make(map[string]bool)
	for _, h := range hits {
		seen[h.fiber] = true
	}
	if seen[Badger] && seen[Boar] {
		return Mixed, true
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	return hits[0].fiber, true
}

// Detect runs the package-level detector.
func Detect(text string) (string, bool) {
	return defaultDetector.Detect(text)
}

// HasFiber reports whether text mentions any fiber keyword.
func HasFiber(text string) bool {
	_, ok := defaultDetector.Detect(text)
	return ok
}

// KnotSize extracts a knot size in millimetres ("26mm", "28 mm", "26x52").
func KnotSize(text string) (float64, bool) {
	for _, re := range []*regexp.Regexp{knotSizeMMRe, knotSizeDimRe} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return v, true
		}
	}
	return 0, false
}

// =============================================================================
// HELPERS
// =============================================================================

// wordIndex returns the first index of kw in s that sits on word boundaries.
func wordIndex(s, kw string) int {
	offset := 0
	for {
		i := strings.Index(s[offset:], kw)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(kw)
		if isBoundary(s, start-1) && isBoundary(s, end) {
			return start
		}
		offset = start + 1
	}
}

func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}
