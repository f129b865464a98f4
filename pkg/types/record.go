package types

// Record is one post's candidate product strings, as produced by field
// extraction.
type Record struct {
	ID    string `json:"id"`
	Razor string `json:"razor,omitempty"`
	Blade string `json:"blade,omitempty"`
	Brush string `json:"brush,omitempty"`
	Soap  string `json:"soap,omitempty"`
}

// Text returns the record's text for field.
func (r *Record) Text(f Field) string {
	switch f {
	case FieldRazor:
		return r.Razor
	case FieldBlade:
		return r.Blade
	case FieldBrush:
		return r.Brush
	case FieldSoap:
		return r.Soap
	}
	return ""
}

// RecordResult holds the per-field results of one record. Fields with empty
// input are absent.
type RecordResult struct {
	ID    string       `json:"id"`
	Razor *MatchResult `json:"razor,omitempty"`
	Blade *MatchResult `json:"blade,omitempty"`
	Brush *MatchResult `json:"brush,omitempty"`
	Soap  *MatchResult `json:"soap,omitempty"`
}

// Get returns the result for field.
func (r *RecordResult) Get(f Field) *MatchResult {
	switch f {
	case FieldRazor:
		return r.Razor
	case FieldBlade:
		return r.Blade
	case FieldBrush:
		return r.Brush
	case FieldSoap:
		return r.Soap
	}
	return nil
}

// Set stores the result for field.
func (r *RecordResult) Set(f Field, res *MatchResult) {
	switch f {
	case FieldRazor:
		r.Razor = res
	case FieldBlade:
		r.Blade = res
	case FieldBrush:
		r.Brush = res
	case FieldSoap:
		r.Soap = res
	}
}
