package types

import "errors"

// ValueType determines how a column is filtered, sorted and defaulted.
type ValueType string

// Column value types.
const (
	ValueTypeString  ValueType = "string"
	ValueTypeNumber  ValueType = "number"
	ValueTypeBoolean ValueType = "boolean"
	ValueTypeArray   ValueType = "array"
	ValueTypeEnum    ValueType = "enum"
	ValueTypeDate    ValueType = "date"
)

// validValueTypes is the set of recognized column value types.
var validValueTypes = map[ValueType]bool{
	ValueTypeString:  true,
	ValueTypeNumber:  true,
	ValueTypeBoolean: true,
	ValueTypeArray:   true,
	ValueTypeEnum:    true,
	ValueTypeDate:    true,
}

// IsValid reports whether vt is a recognized value type.
func (vt ValueType) IsValid() bool {
	return validValueTypes[vt]
}

// MissingPolicy chooses the sort value of a numeric column whose field is
// missing or not a number.
type MissingPolicy string

const (
	// MissingNegInf ranks missing values below every number.
	MissingNegInf MissingPolicy = "neg_inf"
	// MissingZero treats missing values as 0. Finance amount columns use it.
	MissingZero MissingPolicy = "zero"
)

// Column describes one record field for table, filter and sort purposes.
// Sortable and Filterable mark the columns a client may sort or filter by.
// The view engine applies any key it is given, so outer surfaces check the
// flags before passing client input on.
type Column struct {
	Key        string        `json:"key" yaml:"key"`
	Label      string        `json:"label" yaml:"label"`
	Type       ValueType     `json:"type" yaml:"type"`
	Sortable   bool          `json:"sortable" yaml:"sortable"`
	Filterable bool          `json:"filterable" yaml:"filterable"`
	OptionsKey string        `json:"optionsKey,omitempty" yaml:"options_key,omitempty"`
	Missing    MissingPolicy `json:"missing,omitempty" yaml:"missing,omitempty"`
	Hidden     bool          `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// IsEnum reports whether the column filters by exact match against a fixed
// enumeration.
func (c Column) IsEnum() bool {
	return c.OptionsKey != ""
}

// IsNumeric reports whether the column sorts numerically.
func (c Column) IsNumeric() bool {
	return c.Type == ValueTypeNumber
}

// MissingNumber returns the sort value used for a missing numeric field.
func (c Column) MissingNumber() float64 {
	if c.Missing == MissingZero {
		return 0
	}
	return negInf
}

// Schema is the ordered list of columns a module renders.
type Schema []Column

// Column returns the column with the given key.
func (s Schema) Column(key string) (Column, bool) {
	for _, c := range s {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// Visible returns the columns that are not hidden, in order.
func (s Schema) Visible() Schema {
	out := make(Schema, 0, len(s))
	for _, c := range s {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

// Validate checks that every column has a key and a known type, that keys
// are unique and that enum columns name their options.
func (s Schema) Validate() error {
	seen := make(map[string]bool, len(s))
	for _, c := range s {
		if c.Key == "" {
			return ErrInvalidColumn
		}
		if !c.Type.IsValid() {
			return ErrInvalidValueType
		}
		if seen[c.Key] {
			return ErrDuplicateColumn
		}
		if c.Type == ValueTypeEnum && c.OptionsKey == "" {
			return ErrMissingOptions
		}
		seen[c.Key] = true
	}
	return nil
}

// Options maps an options key to the fixed enumeration it names.
type Options map[string][]string

// First returns the first option under key, or "" when there is none.
func (o Options) First(key string) string {
	if vals := o[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// DefaultValue returns the zero value a form template uses for a column
// type: "" for text, enum and date, 0 for numbers, false for booleans and an
// empty slice for arrays. Callers override dates and enums as needed.
func DefaultValue(vt ValueType) (any, error) {
	switch vt {
	case ValueTypeString, ValueTypeEnum, ValueTypeDate:
		return "", nil
	case ValueTypeNumber:
		return float64(0), nil
	case ValueTypeBoolean:
		return false, nil
	case ValueTypeArray:
		return []any{}, nil
	default:
		return nil, ErrInvalidValueType
	}
}

// Schema errors.
var (
	ErrInvalidColumn    = errors.New("column key must not be empty")
	ErrInvalidValueType = errors.New("invalid value type")
	ErrDuplicateColumn  = errors.New("duplicate column key")
	ErrMissingOptions   = errors.New("enum column has no options key")
)
