package shell

import (
	"fmt"

	"github.com/mesh-intelligence/boardroom/internal/view"
	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// ChartResult is the evaluated aggregate of one chart. Only the field
// matching the chart kind is set.
type ChartResult struct {
	Chart  Chart        `json:"chart"`
	Groups []view.Group `json:"groups,omitempty"`
	Totals []view.Total `json:"totals,omitempty"`
	Sum    float64      `json:"sum"`
}

// Aggregate evaluates the named chart over the current view.
func (s *Session) Aggregate(name string) (ChartResult, error) {
	c, ok := s.module.Chart(name)
	if !ok {
		return ChartResult{}, fmt.Errorf("chart %q: %w", name, ErrUnknownChart)
	}
	return Evaluate(c, s.View(), s.opts.Translator), nil
}

// Evaluate computes chart c over records.
func Evaluate(c Chart, records []types.Record, tr types.Translator) ChartResult {
	group := view.Field(c.GroupBy)
	if c.Translate {
		group = view.Translated(c.GroupBy, view.OptionLabels(tr))
	}
	res := ChartResult{Chart: c}
	switch c.Kind {
	case ChartSum:
		res.Totals = view.TopTotals(view.SumGroups(records, group, view.Field(c.Value)), c.Top)
		res.Sum = view.SumByField(records, view.Field(c.Value))
	case ChartTotal:
		res.Sum = view.SumByField(records, view.Field(c.Value))
	default:
		res.Groups = view.TopN(view.AggregateByField(records, group), c.Top)
	}
	return res
}
