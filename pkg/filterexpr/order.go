package filterexpr

import (
	"fmt"
	"slices"
	"strings"
)

// OrderBy parses "key [asc|desc], ..." against the sortable keys. An empty
// clause yields the schema default.
func (p *Parser) OrderBy(raw string) ([]Term, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return slices.Clone(p.schema.DefaultOrder), nil
	}

	limit := p.schema.MaxTerms
	if limit <= 0 {
		limit = 2
	}

	var terms []Term
	for _, seg := range strings.Split(raw, ",") {
		parts := strings.Fields(seg)
		if len(parts) == 0 {
			continue
		}
		if len(parts) > 2 {
			return nil, fmt.Errorf("invalid segment %q", strings.TrimSpace(seg))
		}

		term := Term{Key: parts[0]}
		if !slices.Contains(p.schema.Sortable, term.Key) {
			return nil, fmt.Errorf("field %q cannot be used for ordering", term.Key)
		}
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				term.Desc = true
			default:
				return nil, fmt.Errorf("invalid direction %q for %q", parts[1], term.Key)
			}
		}
		if slices.ContainsFunc(terms, func(t Term) bool { return t.Key == term.Key }) {
			return nil, fmt.Errorf("duplicate key %q", term.Key)
		}
		if len(terms) == limit {
			return nil, fmt.Errorf("at most %d order keys are supported", limit)
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return slices.Clone(p.schema.DefaultOrder), nil
	}
	return terms, nil
}
