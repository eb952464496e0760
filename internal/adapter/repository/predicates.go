package repository

import (
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/samber/lo"

	"github.com/VastSea0/italiano-sub000/pkg/filterexpr"
)

// toPredicate translates a validated filter conjunct into an ent predicate.
func toPredicate(p filterexpr.Predicate) (*entsql.Predicate, error) {
	if ts, ok := p.Value.(time.Time); ok {
		p.Value = ts.UTC()
	}
	switch p.Op {
	case filterexpr.OpEQ:
		return entsql.EQ(p.Column, p.Value), nil
	case filterexpr.OpGTE:
		return entsql.GTE(p.Column, p.Value), nil
	case filterexpr.OpLTE:
		return entsql.LTE(p.Column, p.Value), nil
	case filterexpr.OpSW:
		prefix, ok := p.Value.(string)
		if !ok {
			return nil, fmt.Errorf("startsWith on %q requires a string", p.Field)
		}
		return entsql.HasPrefix(p.Column, prefix), nil
	case filterexpr.OpIN:
		values, ok := p.Value.([]string)
		if !ok {
			return nil, fmt.Errorf("in on %q requires a string list", p.Field)
		}
		return entsql.In(p.Column, lo.ToAnySlice(values)...), nil
	default:
		return nil, fmt.Errorf("operator %q is not supported", string(p.Op))
	}
}

func orderClauses(terms []filterexpr.OrderTerm) []string {
	return lo.Map(terms, func(term filterexpr.OrderTerm, _ int) string {
		if term.Desc {
			return entsql.Desc(term.Column)
		}
		return entsql.Asc(term.Column)
	})
}
