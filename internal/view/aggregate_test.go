package view

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

func TestAggregateByField(t *testing.T) {
	records := []types.Record{
		{"type": "TV"},
		{"type": "Online"},
		{"type": "TV"},
		{},
		{"type": "Print"},
		{"type": "Online"},
		{"type": "TV"},
	}
	got := AggregateByField(records, Field("type"))
	assert.Equal(t, []Group{
		{Name: "TV", Count: 3},
		{Name: "Online", Count: 2},
		{Name: "", Count: 1},
		{Name: "Print", Count: 1},
	}, got)

	assert.Equal(t, []Group{{Name: "TV", Count: 3}, {Name: "Online", Count: 2}}, TopN(got, 2))
	assert.Len(t, TopN(got, 0), 4)
	assert.Equal(t, []Group{}, TopN(nil, 5))
	assert.Equal(t, []Group{}, AggregateByField(nil, Field("type")))
}

func TestTopNStableOnTies(t *testing.T) {
	groups := []Group{{"a", 1}, {"b", 2}, {"c", 1}, {"d", 2}}
	assert.Equal(t, []Group{{"b", 2}, {"d", 2}, {"a", 1}, {"c", 1}}, TopN(groups, 10))
	assert.Equal(t, []Group{{"a", 1}, {"b", 2}, {"c", 1}, {"d", 2}}, groups, "input untouched")
}

func TestAggregateCountsSumProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	values := []any{"a", "b", nil, 1.0, []any{"x"}, map[string]any{"k": "v"}, true}
	for range 100 {
		records := make([]types.Record, rng.IntN(40))
		for i := range records {
			if rng.IntN(10) == 0 {
				continue
			}
			records[i] = types.Record{"f": values[rng.IntN(len(values))]}
		}
		total := 0
		for _, g := range AggregateByField(records, Field("f")) {
			total += g.Count
		}
		require.Equal(t, len(records), total)
	}
}

func TestAggregateTranslated(t *testing.T) {
	tr := types.TranslatorFunc(strings.ToUpper)
	records := []types.Record{{"type": "tv"}, {"type": "tv"}, {}}
	got := AggregateByField(records, Translated("type", tr))
	assert.Equal(t, []Group{{Name: "TV", Count: 2}, {Name: "", Count: 1}}, got)
}

func TestSumByField(t *testing.T) {
	tests := []struct {
		name    string
		records []types.Record
		want    float64
	}{
		{"empty", nil, 0},
		{"all missing", []types.Record{{}, {"amount": nil}}, 0},
		{"mixed", []types.Record{{"amount": 10.5}, {"amount": "4.5"}, {"amount": "abc"}, {}, {"amount": []any{1.0}}}, 15},
		{"negative", []types.Record{{"amount": -3.0}, {"amount": 1}}, -2},
		{"nil record", []types.Record{nil, {"amount": 2.0}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SumByField(tt.records, Field("amount")), 1e-9)
			assert.InDelta(t, tt.want, SumByField(tt.records, Number("amount")), 1e-9)
		})
	}
	assert.Zero(t, SumByField([]types.Record{{"amount": 1.0}}, nil))
}

func TestSumGroups(t *testing.T) {
	records := []types.Record{
		{"category": "Rent", "amount": 100.0},
		{"category": "Travel", "amount": 50.0},
		{"category": "Rent", "amount": "25"},
		{"category": "Travel"},
		{"amount": 7.0},
	}
	got := SumGroups(records, Field("category"), Field("amount"))
	assert.Equal(t, []Total{{"Rent", 125}, {"Travel", 50}, {"", 7}}, got)
	assert.Equal(t, []Total{{"Rent", 125}}, TopTotals(got, 1))
	assert.Equal(t, []Total{}, TopTotals(nil, 3))
}

func TestOptionLabels(t *testing.T) {
	tr := types.TranslatorFunc(func(key string) string {
		if key == "option.Online" {
			return "En línea"
		}
		return key
	})
	labels := OptionLabels(tr)
	assert.Equal(t, "En línea", labels.T("Online"))
	assert.Equal(t, "Print", labels.T("Print"))
	assert.Equal(t, "x", OptionLabels(nil).T("x"))

	got := AggregateByField([]types.Record{{"type": "Online"}, {"type": "Print"}}, Translated("type", labels))
	assert.Equal(t, []Group{{Name: "En línea", Count: 1}, {Name: "Print", Count: 1}}, got)
}
