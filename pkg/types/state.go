package types

import "math"

var negInf = math.Inf(-1)

// FilterAll is the dropdown sentinel meaning "no constraint".
const FilterAll = "All"

// Filters maps a column key to its current filter value. An absent key, an
// empty value or FilterAll place no constraint on the column.
type Filters map[string]string

// Active returns the filters that constrain the view.
func (f Filters) Active() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		if v != "" && v != FilterAll {
			out[k] = v
		}
	}
	return out
}

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Sort is the single active sort column. An empty Key leaves the view in
// collection order.
type Sort struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// Toggle returns the sort state after the user selects key. Selecting the
// current key flips the direction; selecting a new key starts at
// defaultDir, which modules configure individually.
func (s Sort) Toggle(key string, defaultDir Direction) Sort {
	if key == s.Key && key != "" {
		return Sort{Key: key, Direction: s.Direction.Flip()}
	}
	if defaultDir != Desc {
		defaultDir = Asc
	}
	return Sort{Key: key, Direction: defaultDir}
}
