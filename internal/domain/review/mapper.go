package review

import "strings"

// InferMapping guesses which source column supplies each canonical field.
//
// Two passes per field: an exact match against the alias list (alias priority
// wins), then a substring fallback where an alias occurring inside a
// normalized header counts as a match (first matching column in input order
// wins). A field with no match stays unmapped. The result is advisory; the
// caller may override any field before applying it.
func InferMapping(columns []string, aliases AliasTable) Mapping {
	if aliases == nil {
		aliases = DefaultAliases()
	}

	normalized := make([]string, len(columns))
	for i, col := range columns {
		normalized[i] = normalizeHeader(col)
	}

	var mapping Mapping
	for _, field := range Fields() {
		mapping.setSource(field, pickColumn(columns, normalized, aliases[field]))
	}
	return mapping
}

func pickColumn(columns []string, normalized []string, aliases []string) string {
	for _, alias := range aliases {
		want := normalizeHeader(alias)
		for i, have := range normalized {
			if have == want {
				return columns[i]
			}
		}
	}

	for _, alias := range aliases {
		want := normalizeHeader(alias)
		if want == "" {
			continue
		}
		for i, have := range normalized {
			if strings.Contains(have, want) {
				return columns[i]
			}
		}
	}

	return ""
}

// normalizeHeader lower-cases and collapses internal whitespace so header
// variants like "Page  Label" and "page label" compare equal.
func normalizeHeader(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
