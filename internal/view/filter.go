package view

import (
	"strings"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// ApplyFilters returns the records that satisfy every active filter. Enum
// columns (those with an options key) match by exact, case-sensitive
// equality; every other column matches by case-insensitive substring of the
// stringified value. Keys with no schema column are matched as free text.
func ApplyFilters(records []types.Record, schema types.Schema, filters types.Filters) []types.Record {
	active := filters.Active()
	out := make([]types.Record, 0, len(records))
	if len(active) == 0 {
		return append(out, records...)
	}

	preds := make([]func(types.Record) bool, 0, len(active))
	for key, value := range active {
		col, ok := schema.Column(key)
		if !ok {
			col = types.Column{Key: key, Type: types.ValueTypeString}
		}
		preds = append(preds, columnPredicate(col, value))
	}

	for _, r := range records {
		if r == nil {
			continue
		}
		keep := true
		for _, p := range preds {
			if !p(r) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

func columnPredicate(col types.Column, value string) func(types.Record) bool {
	if col.IsEnum() {
		return func(r types.Record) bool {
			return matchEnum(r, col.Key, value)
		}
	}
	needle := strings.ToLower(value)
	return func(r types.Record) bool {
		return matchText(r, col.Key, needle)
	}
}

// matchEnum reports whether the field equals value exactly. A missing field
// never matches. For array fields any element may match.
func matchEnum(r types.Record, key, value string) bool {
	v, ok := r.Get(key)
	if !ok {
		return false
	}
	switch list := v.(type) {
	case []any, []string:
		for _, item := range types.ToStrings(list) {
			if item == value {
				return true
			}
		}
		return false
	default:
		return types.Stringify(v) == value
	}
}

// matchText reports whether needle (already lower-cased) occurs in the
// stringified field value. A missing field is the empty string.
func matchText(r types.Record, key, needle string) bool {
	v, _ := r.Get(key)
	return strings.Contains(strings.ToLower(types.Stringify(v)), needle)
}
