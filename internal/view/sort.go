package view

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// DefaultLocale is the collation locale used when none is configured.
var DefaultLocale = language.Spanish

// ApplySort returns a stably sorted copy of records ordered by s, using the
// default locale for text columns.
func ApplySort(records []types.Record, schema types.Schema, s types.Sort) []types.Record {
	return sortRecords(records, schema, s, DefaultLocale)
}

func sortRecords(records []types.Record, schema types.Schema, s types.Sort, tag language.Tag) []types.Record {
	out := slices.Clone(records)
	if out == nil {
		out = []types.Record{}
	}
	if s.Key == "" {
		return out
	}

	col, ok := schema.Column(s.Key)
	if !ok {
		col = types.Column{Key: s.Key, Type: types.ValueTypeString}
	}

	var compare func(a, b types.Record) int
	if col.IsNumeric() {
		missing := col.MissingNumber()
		compare = func(a, b types.Record) int {
			return cmp.Compare(numberOf(a, col.Key, missing), numberOf(b, col.Key, missing))
		}
	} else {
		// A Collator keeps internal buffers and is not safe for concurrent
		// use, so each sort builds its own.
		coll := collate.New(tag)
		compare = func(a, b types.Record) int {
			return coll.CompareString(textOf(a, col.Key), textOf(b, col.Key))
		}
	}

	if s.Direction == types.Desc {
		asc := compare
		compare = func(a, b types.Record) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

func numberOf(r types.Record, key string, missing float64) float64 {
	if f, ok := types.ToNumber(r[key]); ok {
		return f
	}
	return missing
}

func textOf(r types.Record, key string) string {
	return types.Stringify(r[key])
}
