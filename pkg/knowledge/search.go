package knowledge

import (
	"strings"
	"unicode/utf8"
)

// DefaultLimit is the maximum number of records a search returns
// unless the caller asks for something else.
const DefaultLimit = 5

// tokenCutset is the punctuation stripped from the edges of each token.
const tokenCutset = ".,!?\"'"

// Filter is a single case-insensitive substring predicate against a column.
type Filter struct {
	Column string
	Token  string
}

// Tokenize splits free text into search tokens.
// Words of 2 characters or less are dropped, and surrounding punctuation is
// stripped from each surviving word. If nothing survives, the raw query is
// returned as the sole token so a search always has at least one predicate.
func Tokenize(query string) []string {
	var tokens []string
	for _, w := range strings.Fields(query) {
		if utf8.RuneCountInString(w) <= 2 {
			continue
		}
		tokens = append(tokens, strings.Trim(w, tokenCutset))
	}
	if len(tokens) == 0 {
		tokens = []string{query}
	}
	return tokens
}

// BuildFilters expands the query into a disjunctive filter set: one
// title predicate and one description predicate per token. A record
// matches if any token matches either column.
func BuildFilters(query string) []Filter {
	tokens := Tokenize(query)

	filters := make([]Filter, 0, 2*len(tokens))
	for _, t := range tokens {
		filters = append(filters, Filter{Column: "title", Token: t})
	}
	for _, t := range tokens {
		filters = append(filters, Filter{Column: "description", Token: t})
	}
	return filters
}

// orClause renders the filter set as a PostgREST "or" parameter value,
// e.g. (title.ilike.%keynote%,description.ilike.%keynote%).
func orClause(filters []Filter) string {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		parts = append(parts, f.Column+".ilike.%"+f.Token+"%")
	}
	return "(" + strings.Join(parts, ",") + ")"
}
