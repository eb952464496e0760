package filterexpr

import (
	"errors"
	"fmt"
	"strings"
)

// OrderSchema whitelists sortable keys and maps them to storage columns.
// Fallback is always appended so pagination stays stable.
type OrderSchema struct {
	Columns      map[string]string
	Default      string
	DefaultDesc  bool
	Fallback     string
	FallbackDesc bool
}

// OrderTerm is one validated key of an order_by clause.
type OrderTerm struct {
	Column string
	Desc   bool
}

// MaxOrderKeys bounds how many keys a caller may supply.
const MaxOrderKeys = 2

// ParseOrder parses clauses like "due_at desc, item_id".
func ParseOrder(raw string, schema OrderSchema) ([]OrderTerm, error) {
	if schema.Default == "" || schema.Fallback == "" {
		return nil, errors.New("order schema requires default and fallback keys")
	}
	column := func(key string) (string, error) {
		col, ok := schema.Columns[key]
		if !ok {
			return "", fmt.Errorf("field %q cannot be used for ordering", key)
		}
		return col, nil
	}

	var terms []OrderTerm
	seen := map[string]bool{}
	for _, segment := range strings.Split(raw, ",") {
		parts := strings.Fields(segment)
		if len(parts) == 0 {
			continue
		}
		if len(parts) > 2 {
			return nil, fmt.Errorf("invalid order segment %q", strings.TrimSpace(segment))
		}
		col, err := column(parts[0])
		if err != nil {
			return nil, err
		}
		if seen[col] {
			return nil, fmt.Errorf("duplicate order key %q", parts[0])
		}
		desc := false
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				desc = true
			default:
				return nil, fmt.Errorf("invalid direction %q for field %q", parts[1], parts[0])
			}
		}
		if len(terms) == MaxOrderKeys {
			return nil, fmt.Errorf("order_by supports at most %d keys", MaxOrderKeys)
		}
		seen[col] = true
		terms = append(terms, OrderTerm{Column: col, Desc: desc})
	}

	if len(terms) == 0 {
		col, err := column(schema.Default)
		if err != nil {
			return nil, err
		}
		seen[col] = true
		terms = append(terms, OrderTerm{Column: col, Desc: schema.DefaultDesc})
	}
	fallback, err := column(schema.Fallback)
	if err != nil {
		return nil, err
	}
	if !seen[fallback] {
		terms = append(terms, OrderTerm{Column: fallback, Desc: schema.FallbackDesc})
	}
	return terms, nil
}
