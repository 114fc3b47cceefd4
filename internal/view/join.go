package view

import "github.com/mesh-intelligence/boardroom/pkg/types"

// Match reports whether a secondary record relates to a primary record.
type Match func(primary, secondary types.Record) bool

// ContainsID matches secondary records whose fkField references the primary
// record's id. Array foreign keys match when they contain the id; scalar
// foreign keys match by equality. Records without an id never match.
func ContainsID(fkField string) Match {
	return func(primary, secondary types.Record) bool {
		id := primary.ID()
		if id == "" {
			return false
		}
		v, ok := secondary.Get(fkField)
		if !ok {
			return false
		}
		switch list := v.(type) {
		case []any, []string:
			for _, ref := range types.ToStrings(list) {
				if ref == id {
					return true
				}
			}
			return false
		default:
			return types.Stringify(v) == id
		}
	}
}

// Joined is a primary record augmented with its related secondary records.
type Joined struct {
	Record      types.Record `json:"record"`
	LastRelated types.Record `json:"lastRelated,omitempty"`
	Related     int          `json:"related"`
}

// JoinLatest attaches to every primary record the related secondary record
// with the greatest dateField (compared as strings, so ISO dates order
// chronologically) and the number of related records. When dates are equal
// the first related record encountered is kept.
func JoinLatest(primary, secondary []types.Record, match Match, dateField string) []Joined {
	out := make([]Joined, 0, len(primary))
	for _, p := range primary {
		j := Joined{Record: p}
		var latest string
		if match != nil && p != nil {
			for _, s := range secondary {
				if s == nil || !match(p, s) {
					continue
				}
				j.Related++
				d := types.Stringify(s[dateField])
				if j.LastRelated == nil || d > latest {
					j.LastRelated = s
					latest = d
				}
			}
		}
		out = append(out, j)
	}
	return out
}
