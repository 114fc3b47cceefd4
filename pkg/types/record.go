package types

import "maps"

// Field names every module shares. The audit fields are stamped by the form
// controller at write time.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldCreatedBy = "createdBy"
	FieldUpdatedAt = "updatedAt"
	FieldUpdatedBy = "updatedBy"
)

// Record is one domain entity: an activity, a press-log entry, a
// stakeholder, a cost line. Values are scalars, slices or nested maps as
// decoded from JSON.
type Record map[string]any

// ID returns the record's id field, or "" when it is absent or not a string.
func (r Record) ID() string {
	s, _ := r[FieldID].(string)
	return s
}

// Get returns the value stored under key and whether it is present and
// non-nil.
func (r Record) Get(key string) (any, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Clone returns a deep copy of the record. Slices and nested maps are
// copied so that edits on the clone never reach the original.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		cp := make([]any, len(t))
		for i, e := range t {
			cp[i] = cloneValue(e)
		}
		return cp
	case []string:
		cp := make([]string, len(t))
		copy(cp, t)
		return cp
	case map[string]any:
		cp := make(map[string]any, len(t))
		for k, e := range t {
			cp[k] = cloneValue(e)
		}
		return cp
	case Record:
		return t.Clone()
	default:
		return v
	}
}

// CloneAll returns deep copies of every record in rs.
func CloneAll(rs []Record) []Record {
	out := make([]Record, len(rs))
	for i, r := range rs {
		out[i] = r.Clone()
	}
	return out
}

// Merge returns a shallow copy of r with every key of patch applied.
func (r Record) Merge(patch Record) Record {
	out := make(Record, len(r)+len(patch))
	maps.Copy(out, r)
	maps.Copy(out, patch)
	return out
}
