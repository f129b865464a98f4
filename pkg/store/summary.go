package store

import (
	"sort"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

// Summary aggregates one run.
type Summary struct {
	RunID   string         `json:"run_id"`
	Records int            `json:"records"`
	Fields  []FieldSummary `json:"fields"`
}

// FieldSummary counts one field's results. Filtered results are not counted
// as unmatched.
type FieldSummary struct {
	Field       types.Field             `json:"field"`
	Total       int                     `json:"total"`
	Matched     int                     `json:"matched"`
	Unmatched   int                     `json:"unmatched"`
	Filtered    int                     `json:"filtered"`
	Errors      int                     `json:"errors"`
	ByMatchType map[types.MatchType]int `json:"by_match_type"`
	Brands      []BrandCount            `json:"brands,omitempty"`
}

// BrandCount is how often a brand was matched.
type BrandCount struct {
	Brand string `json:"brand"`
	Count int    `json:"count"`
}

// Field returns the summary of f.
func (s *Summary) Field(f types.Field) (*FieldSummary, bool) {
	for i := range s.Fields {
		if s.Fields[i].Field == f {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// Summarize builds a summary from results.
func Summarize(runID string, results []*types.RecordResult) *Summary {
	s := &Summary{RunID: runID, Records: len(results)}
	for _, f := range types.Fields {
		fs := FieldSummary{Field: f, ByMatchType: make(map[types.MatchType]int)}
		brands := make(map[string]int)
		for _, rr := range results {
			res := rr.Get(f)
			if res == nil {
				continue
			}
			fs.add(res.MatchType, res.Filtered, res.Error != "", 1)
			if res.IsMatched() && res.Matched.Brand != "" {
				brands[res.Matched.Brand]++
			}
		}
		fs.Brands = sortBrands(brands)
		s.Fields = append(s.Fields, fs)
	}
	return s
}

// add counts n results of one kind.
func (fs *FieldSummary) add(mt types.MatchType, filtered, failed bool, n int) {
	fs.Total += n
	fs.ByMatchType[mt] += n
	switch {
	case filtered:
		fs.Filtered += n
	case mt == types.MatchUnmatched:
		fs.Unmatched += n
	default:
		fs.Matched += n
	}
	if failed {
		fs.Errors += n
	}
}

// sortBrands orders brands by count, then name.
func sortBrands(counts map[string]int) []BrandCount {
	if len(counts) == 0 {
		return nil
	}
	out := make([]BrandCount, 0, len(counts))
	for b, n := range counts {
		out = append(out, BrandCount{Brand: b, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Brand < out[j].Brand
	})
	return out
}
