package view

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// Engine binds the view operations to one module's schema, option lists and
// collation locale.
type Engine struct {
	schema  types.Schema
	options types.Options
	locale  language.Tag
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocale sets the collation locale for text sorting.
func WithLocale(tag language.Tag) Option {
	return func(e *Engine) { e.locale = tag }
}

// WithOptions sets the enumerations used by enum columns.
func WithOptions(o types.Options) Option {
	return func(e *Engine) { e.options = o }
}

// New returns an Engine for schema.
func New(schema types.Schema, opts ...Option) *Engine {
	e := &Engine{schema: schema, locale: DefaultLocale}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ParseLocale parses a BCP 47 tag, falling back to DefaultLocale.
func ParseLocale(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return DefaultLocale
	}
	return tag
}

// Schema returns the engine's column schema.
func (e *Engine) Schema() types.Schema { return e.schema }

// Filter applies filters to records.
func (e *Engine) Filter(records []types.Record, filters types.Filters) []types.Record {
	return ApplyFilters(records, e.schema, filters)
}

// Sort orders records by s using the engine's locale.
func (e *Engine) Sort(records []types.Record, s types.Sort) []types.Record {
	return sortRecords(records, e.schema, s, e.locale)
}

// View filters then sorts records.
func (e *Engine) View(records []types.Record, filters types.Filters, s types.Sort) []types.Record {
	return e.Sort(e.Filter(records, filters), s)
}

// FilterChoices returns the dropdown choices for an enum column, led by the
// FilterAll sentinel. Columns without options return nil.
func (e *Engine) FilterChoices(key string) []string {
	col, ok := e.schema.Column(key)
	if !ok || !col.IsEnum() {
		return nil
	}
	return append([]string{types.FilterAll}, e.options[col.OptionsKey]...)
}

// Distinct returns the distinct non-empty stringified values of key across
// records, collated in the engine's locale. Array fields contribute each
// element.
func (e *Engine) Distinct(records []types.Record, key string) []string {
	seen := make(map[string]bool)
	out := []string{}
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, r := range records {
		v, ok := r.Get(key)
		if !ok {
			continue
		}
		switch list := v.(type) {
		case []any, []string:
			for _, item := range types.ToStrings(list) {
				add(item)
			}
		default:
			add(types.Stringify(v))
		}
	}
	coll := collate.New(e.locale)
	slices.SortFunc(out, coll.CompareString)
	return out
}
