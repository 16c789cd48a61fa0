package contextpack

import "regexp"

var (
	docsFacetPattern      = regexp.MustCompile(`(?i)doc|readme|guide|how to|tutorial|explain`)
	configFacetPattern    = regexp.MustCompile(`(?i)config|env|setting|yaml|json|deploy|docker`)
	contractsFacetPattern = regexp.MustCompile(`(?i)api|schema|proto|graphql|openapi|swagger|endpoint|contract`)
)

// decomposeFacets picks which facets a query touches. Code is always
// included; the others are added when the query text matches their
// trigger pattern.
func decomposeFacets(query string) []facetSpec {
	facets := []facetSpec{
		{name: "code", suffix: "code", limit: 8, priority: 0},
	}
	if docsFacetPattern.MatchString(query) {
		facets = append(facets, facetSpec{name: "docs", suffix: "docs", limit: 4, priority: 1})
	}
	if configFacetPattern.MatchString(query) {
		facets = append(facets, facetSpec{name: "config", suffix: "config", limit: 3, priority: 2})
	}
	if contractsFacetPattern.MatchString(query) {
		facets = append(facets, facetSpec{name: "contracts", suffix: "contracts", limit: 4, priority: 3})
	}
	return facets
}
