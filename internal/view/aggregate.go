package view

import (
	"cmp"
	"slices"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// Group is one bar of a count chart.
type Group struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Total is one bar of a sum chart.
type Total struct {
	Name string  `json:"name"`
	Sum  float64 `json:"sum"`
}

// AggregateByField counts records per stringified accessor value. Groups are
// returned in first-seen order and their counts sum to len(records). A
// missing value forms the "" group.
func AggregateByField(records []types.Record, acc Accessor) []Group {
	groups := []Group{}
	index := make(map[string]int)
	for _, r := range records {
		name := types.Stringify(safeAccess(acc, r))
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{Name: name})
		}
		groups[i].Count++
	}
	return groups
}

// TopN returns groups ordered by count descending, keeping input order for
// equal counts, truncated to n. A non-positive n keeps every group.
func TopN(groups []Group, n int) []Group {
	out := slices.Clone(groups)
	slices.SortStableFunc(out, func(a, b Group) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []Group{}
	}
	return out
}

// SumByField adds up the numeric accessor value across records. Missing and
// non-numeric values contribute 0; an empty slice sums to 0.
func SumByField(records []types.Record, acc Accessor) float64 {
	var sum float64
	for _, r := range records {
		if f, ok := types.ToNumber(safeAccess(acc, r)); ok {
			sum += f
		}
	}
	return sum
}

// SumGroups sums the value accessor per stringified group accessor value,
// in first-seen group order.
func SumGroups(records []types.Record, group, value Accessor) []Total {
	totals := []Total{}
	index := make(map[string]int)
	for _, r := range records {
		name := types.Stringify(safeAccess(group, r))
		i, ok := index[name]
		if !ok {
			i = len(totals)
			index[name] = i
			totals = append(totals, Total{Name: name})
		}
		if f, ok := types.ToNumber(safeAccess(value, r)); ok {
			totals[i].Sum += f
		}
	}
	return totals
}

// TopTotals returns totals ordered by sum descending, truncated to n.
func TopTotals(totals []Total, n int) []Total {
	out := slices.Clone(totals)
	slices.SortStableFunc(out, func(a, b Total) int {
		return cmp.Compare(b.Sum, a.Sum)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []Total{}
	}
	return out
}

func safeAccess(acc Accessor, r types.Record) any {
	if acc == nil || r == nil {
		return nil
	}
	return acc(r)
}
