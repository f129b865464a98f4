package engine

import (
	"fmt"
	"strings"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/matcher"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

// MatchRecord matches every non-empty field of rec. The razor is matched
// first and its format becomes the blade context.
func (e *Engine) MatchRecord(rec *types.Record) *types.RecordResult {
	out := &types.RecordResult{ID: rec.ID}

	var format string
	if text := rec.Razor; strings.TrimSpace(text) != "" {
		res := e.safeMatch(rec.ID, types.FieldRazor, text, "")
		out.Razor = res
		format = RazorFormat(res)
	}
	for _, f := range []types.Field{types.FieldBlade, types.FieldBrush, types.FieldSoap} {
		text := rec.Text(f)
		if strings.TrimSpace(text) == "" {
			continue
		}
		var bladeFormat string
		if f == types.FieldBlade {
			bladeFormat = format
		}
		out.Set(f, e.safeMatch(rec.ID, f, text, bladeFormat))
	}
	return out
}

// RazorFormat is the blade context implied by a razor result: the razor's
// format attribute, DE for a matched razor without one, and empty for an
// unmatched razor.
func RazorFormat(res *types.MatchResult) string {
	if !res.IsMatched() {
		return ""
	}
	if res.Matched.Format != "" {
		return res.Matched.Format
	}
	return matcher.FormatDE
}

// safeMatch runs one matcher, turning a panic into an unmatched result with
// Error set.
func (e *Engine) safeMatch(id string, field types.Field, text, format string) (res *types.MatchResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("matching failed", "id", id, "field", field, "text", text, "panic", r)
			res = types.Unmatched(text)
			res.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	m, err := e.Matcher(field)
	if err != nil {
		res = types.Unmatched(text)
		res.Error = err.Error()
		return res
	}
	return m.MatchWithContext(text, format)
}
