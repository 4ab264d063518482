package service

import "strings"

// AssetFilter applies the two portfolio noise predicates: the pre-pricing
// name-prefix exclusion for synthetic yield wrapper positions and the
// post-pricing minimum-USD-value floor.
type AssetFilter struct {
	excludedPrefixes []string
	minValueUSD      float64
}

// NewAssetFilter creates a new AssetFilter.
func NewAssetFilter(excludedPrefixes []string, minValueUSD float64) *AssetFilter {
	return &AssetFilter{
		excludedPrefixes: excludedPrefixes,
		minValueUSD:      minValueUSD,
	}
}

// ExcludedByName reports whether a token name marks a known synthetic
// wrapper position. Only leading and trailing whitespace is trimmed before
// the case-sensitive prefix check; applied before pricing so excluded tokens
// never cost an oracle call.
func (f *AssetFilter) ExcludedByName(name string) bool {
	trimmed := strings.TrimSpace(name)
	for _, prefix := range f.excludedPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// BelowValueFloor reports whether a priced asset is dust. Assets whose price
// fetch failed carry a zero value and are dropped by this same predicate.
func (f *AssetFilter) BelowValueFloor(valueUSD float64) bool {
	return valueUSD < f.minValueUSD
}
