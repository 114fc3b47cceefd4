package form

import (
	"time"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// DateLayout is the storage format of date fields.
const DateLayout = "2006-01-02"

// Template builds the working copy of a new record.
type Template func(now time.Time) types.Record

// SchemaTemplate returns a Template that fills every schema column with its
// type's default: today's date for date columns, the first option for enum
// columns, an empty array for array columns. Values in fixed override the
// defaults and are deep-copied into every record.
func SchemaTemplate(schema types.Schema, options types.Options, fixed types.Record) Template {
	return func(now time.Time) types.Record {
		r := make(types.Record, len(schema)+len(fixed))
		for _, col := range schema {
			if col.Key == types.FieldID {
				continue
			}
			switch {
			case col.Type == types.ValueTypeDate:
				r[col.Key] = now.Format(DateLayout)
			case col.Type == types.ValueTypeArray:
				r[col.Key] = []any{}
			case col.IsEnum():
				r[col.Key] = options.First(col.OptionsKey)
			default:
				if v, err := types.DefaultValue(col.Type); err == nil {
					r[col.Key] = v
				}
			}
		}
		for k, v := range fixed.Clone() {
			r[k] = v
		}
		return r
	}
}
