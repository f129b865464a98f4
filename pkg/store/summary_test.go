package store

import (
	"testing"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	sum := Summarize("run-1", sampleResults())
	assert.Equal(t, "run-1", sum.RunID)
	assert.Equal(t, 3, sum.Records)
	require.Len(t, sum.Fields, 4)

	razor, ok := sum.Field(types.FieldRazor)
	require.True(t, ok)
	assert.Equal(t, 2, razor.Total)
	assert.Equal(t, 2, razor.Matched)
	assert.Equal(t, 1, razor.ByMatchType[types.MatchExact])
	assert.Equal(t, 1, razor.ByMatchType[types.MatchBrand])
	assert.Equal(t, []BrandCount{{Brand: "Karve", Count: 2}}, razor.Brands)

	soap, ok := sum.Field(types.FieldSoap)
	require.True(t, ok)
	assert.Equal(t, 2, soap.Total)
	assert.Equal(t, 0, soap.Matched)
	assert.Equal(t, 1, soap.Filtered)
	assert.Equal(t, 1, soap.Unmatched)
	assert.Equal(t, 1, soap.Errors)
	assert.Nil(t, soap.Brands)

	brush, ok := sum.Field(types.FieldBrush)
	require.True(t, ok)
	assert.Equal(t, 1, brush.Matched)
	assert.Nil(t, brush.Brands, "combinations carry no top-level brand")
}

func TestSortBrands(t *testing.T) {
	got := sortBrands(map[string]int{"Zenith": 2, "Astra": 2, "Karve": 5})
	assert.Equal(t, []BrandCount{{"Karve", 5}, {"Astra", 2}, {"Zenith", 2}}, got)
	assert.Nil(t, sortBrands(nil))
}
