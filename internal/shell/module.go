package shell

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/boardroom/internal/form"
	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// SourceField names the field that carries the originating path of records
// in a merged module view.
const SourceField = "source"

// ChartKind selects how a chart aggregates the view.
type ChartKind string

// Chart kinds.
const (
	ChartCount ChartKind = "count" // records per group, top N
	ChartSum   ChartKind = "sum"   // sum of Value per group, top N
	ChartTotal ChartKind = "total" // sum of Value over the whole view
)

// Chart describes one aggregate a module renders next to its table.
type Chart struct {
	Name      string    `json:"name" yaml:"name"`
	Kind      ChartKind `json:"kind" yaml:"kind"`
	GroupBy   string    `json:"groupBy,omitempty" yaml:"group_by,omitempty"`
	Value     string    `json:"value,omitempty" yaml:"value,omitempty"`
	Top       int       `json:"top,omitempty" yaml:"top,omitempty"`
	Translate bool      `json:"translate,omitempty" yaml:"translate,omitempty"`
}

// Join attaches to each view record the latest related record from another
// path observed by the module.
type Join struct {
	Path      string `json:"path" yaml:"path"`
	FKField   string `json:"fkField" yaml:"fk_field"`
	DateField string `json:"dateField" yaml:"date_field"`
}

// Module declares one dashboard module: the paths it observes, its column
// schema and how its form behaves. Paths[0] is the path records are written
// to.
type Module struct {
	Name      string        `json:"name"`
	Title     string        `json:"title"`
	Paths     []string      `json:"paths"`
	Schema    types.Schema  `json:"schema"`
	Options   types.Options `json:"options,omitempty"`
	Template  form.Template `json:"-"`
	AdminOnly bool          `json:"adminOnly"`

	// Merged modules show the records of every path in one view, each
	// tagged with SourceField. Merged modules are read-only.
	Merged bool `json:"merged,omitempty"`

	DefaultSort     types.Sort        `json:"defaultSort"`
	NewKeyDirection types.Direction   `json:"newKeyDirection"`
	NumberPolicy    form.NumberPolicy `json:"-"`
	DedupTags       bool              `json:"dedupTags,omitempty"`
	Charts          []Chart           `json:"charts,omitempty"`
	Join            *Join             `json:"join,omitempty"`
}

// Module errors.
var (
	ErrNoPaths       = errors.New("module observes no paths")
	ErrUnknownChart  = errors.New("unknown chart")
	ErrReadOnly      = errors.New("module is read-only")
	ErrStoreRequired = errors.New("store is required")
	ErrClosed        = errors.New("session is closed")
)

// Primary returns the path records are written to.
func (m *Module) Primary() string {
	if len(m.Paths) == 0 {
		return ""
	}
	return m.Paths[0]
}

// Chart returns the chart named name.
func (m *Module) Chart(name string) (Chart, bool) {
	for _, c := range m.Charts {
		if c.Name == name {
			return c, true
		}
	}
	return Chart{}, false
}

// Validate checks the module declaration.
func (m *Module) Validate() error {
	if len(m.Paths) == 0 {
		return ErrNoPaths
	}
	for _, p := range m.Paths {
		if !types.ValidCollection(p) {
			return fmt.Errorf("module %s path %q: %w", m.Name, p, types.ErrInvalidPath)
		}
	}
	if err := m.Schema.Validate(); err != nil {
		return fmt.Errorf("module %s schema: %w", m.Name, err)
	}
	for _, c := range m.Schema {
		if c.IsEnum() && len(m.Options[c.OptionsKey]) == 0 {
			return fmt.Errorf("module %s column %s options %q: %w", m.Name, c.Key, c.OptionsKey, types.ErrMissingOptions)
		}
	}
	if m.Join != nil && !m.observes(m.Join.Path) {
		return fmt.Errorf("module %s join path %q: %w", m.Name, m.Join.Path, types.ErrInvalidPath)
	}
	return nil
}

func (m *Module) observes(path string) bool {
	for _, p := range m.Paths {
		if p == path {
			return true
		}
	}
	return false
}
