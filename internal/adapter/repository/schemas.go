package repository

import "github.com/VastSea0/italiano-sub000/pkg/filterexpr"

var listProgressSchema = filterexpr.Schema{
	Fields: map[string]filterexpr.Field{
		"status": {
			Kind: filterexpr.KindString,
			Ops:  []filterexpr.Op{filterexpr.OpEQ, filterexpr.OpIN},
		},
		"item_id": {
			Kind: filterexpr.KindString,
			Ops:  []filterexpr.Op{filterexpr.OpEQ, filterexpr.OpSW, filterexpr.OpIN},
		},
		"due_at": {
			Kind: filterexpr.KindTimestamp,
			Ops:  []filterexpr.Op{filterexpr.OpGTE, filterexpr.OpLTE},
		},
		"lapse_count": {
			Kind: filterexpr.KindNumber,
			Ops:  []filterexpr.Op{filterexpr.OpEQ, filterexpr.OpGTE, filterexpr.OpLTE},
		},
		"ease_factor": {
			Kind: filterexpr.KindNumber,
			Ops:  []filterexpr.Op{filterexpr.OpGTE, filterexpr.OpLTE},
		},
	},
	Order: filterexpr.OrderSchema{
		Columns: map[string]string{
			"due_at":      "due_at",
			"updated_at":  "updated_at",
			"ease_factor": "ease_factor_exact",
			"lapse_count": "lapse_count",
			"item_id":     "item_id",
		},
		Default:  "due_at",
		Fallback: "item_id",
	},
}
