package view

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

var pressSchema = types.Schema{
	{Key: "date", Label: "press.date", Type: types.ValueTypeDate, Sortable: true, Filterable: true},
	{Key: "outlet", Label: "press.outlet", Type: types.ValueTypeString, Sortable: true, Filterable: true},
	{Key: "type", Label: "press.type", Type: types.ValueTypeEnum, Sortable: true, Filterable: true, OptionsKey: "mediaTypes"},
	{Key: "themes", Label: "press.themes", Type: types.ValueTypeArray, Sortable: true, Filterable: true},
	{Key: "reach", Label: "press.reach", Type: types.ValueTypeNumber, Sortable: true},
	{Key: "amount", Label: "press.amount", Type: types.ValueTypeNumber, Sortable: true, Missing: types.MissingZero},
}

func ids(rs []types.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID()
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	records := []types.Record{
		{"id": "1", "outlet": "El Comercio", "type": "Print", "themes": []any{"Trade", "Health"}},
		{"id": "2", "outlet": "Radio Pichincha", "type": "Online", "themes": []any{"Health"}},
		{"id": "3", "outlet": "comercio digital", "type": "online"},
		{"id": "4", "type": "Online"},
		{"id": "5", "outlet": 42.0},
	}

	tests := []struct {
		name    string
		filters types.Filters
		want    []string
	}{
		{"no filters keeps everything", nil, []string{"1", "2", "3", "4", "5"}},
		{"All sentinel is no constraint", types.Filters{"type": types.FilterAll}, []string{"1", "2", "3", "4", "5"}},
		{"empty value is no constraint", types.Filters{"outlet": ""}, []string{"1", "2", "3", "4", "5"}},
		{"text is case-insensitive substring", types.Filters{"outlet": "COMERCIO"}, []string{"1", "3"}},
		{"enum is exact and case-sensitive", types.Filters{"type": "Online"}, []string{"2", "4"}},
		{"enum missing value never matches", types.Filters{"type": "Print"}, []string{"1"}},
		{"array text joins elements", types.Filters{"themes": "trade, hea"}, []string{"1"}},
		{"array text single element", types.Filters{"themes": "health"}, []string{"1", "2"}},
		{"numbers are stringified", types.Filters{"outlet": "42"}, []string{"5"}},
		{"filters are ANDed", types.Filters{"outlet": "radio", "type": "Online"}, []string{"2"}},
		{"AND with no overlap", types.Filters{"outlet": "radio", "type": "Print"}, []string{}},
		{"unknown key is free text", types.Filters{"notes": "x"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilters(records, pressSchema, tt.filters)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApplyFiltersEnumCaseScenario(t *testing.T) {
	records := []types.Record{{"id": "a", "type": "Online"}, {"id": "b", "type": "online"}}
	got := ApplyFilters(records, pressSchema, types.Filters{"type": "Online"})
	assert.Equal(t, []string{"a"}, ids(got))
}

func TestApplyFiltersEnumArrayMembership(t *testing.T) {
	schema := types.Schema{{Key: "themes", Type: types.ValueTypeArray, OptionsKey: "themes"}}
	records := []types.Record{
		{"id": "1", "themes": []any{"Trade", "Health"}},
		{"id": "2", "themes": []string{"health"}},
		{"id": "3"},
	}
	got := ApplyFilters(records, schema, types.Filters{"themes": "Health"})
	assert.Equal(t, []string{"1"}, ids(got))
}

func TestApplyFiltersMalformedRecordsDoNotPanic(t *testing.T) {
	records := []types.Record{
		nil,
		{},
		{"outlet": nil, "type": nil, "themes": nil},
		{"outlet": map[string]any{"nested": true}, "type": []any{nil, 3.0}, "themes": "not-a-list"},
		{"outlet": []any{[]any{"deep"}}, "themes": []any{map[string]any{}}},
	}
	require.NotPanics(t, func() {
		ApplyFilters(records, pressSchema, types.Filters{"outlet": "x", "type": "Online", "themes": "y"})
		ApplyFilters(records, pressSchema, types.Filters{"outlet": "deep"})
	})
	got := ApplyFilters(records, pressSchema, types.Filters{"outlet": "deep"})
	assert.Len(t, got, 1)
}

func TestApplyFiltersSubsetProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	outlets := []string{"El Comercio", "El Universo", "Radio Quito", "Ecuavisa", ""}
	typesList := []string{"Online", "online", "Print", "TV"}

	for iter := range 200 {
		records := make([]types.Record, rng.IntN(30))
		for i := range records {
			r := types.Record{"id": fmt.Sprintf("r%d", i)}
			if rng.IntN(4) > 0 {
				r["outlet"] = outlets[rng.IntN(len(outlets))]
			}
			if rng.IntN(4) > 0 {
				r["type"] = typesList[rng.IntN(len(typesList))]
			}
			records[i] = r
		}
		filters := types.Filters{}
		if rng.IntN(2) == 0 {
			filters["outlet"] = []string{"el", "RADIO", "visa", "zz"}[rng.IntN(4)]
		}
		if rng.IntN(2) == 0 {
			filters["type"] = typesList[rng.IntN(len(typesList))]
		}

		got := ApplyFilters(records, pressSchema, filters)

		inInput := make(map[string]bool, len(records))
		for _, r := range records {
			inInput[r.ID()] = true
		}
		for _, r := range got {
			require.True(t, inInput[r.ID()], "iteration %d: result not in input", iter)
			if want, ok := filters["outlet"]; ok {
				outlet, _ := r["outlet"].(string)
				require.Contains(t, strings.ToLower(outlet), strings.ToLower(want))
			}
			if want, ok := filters["type"]; ok {
				require.Equal(t, want, r["type"])
			}
		}
		require.LessOrEqual(t, len(got), len(records))
	}
}
