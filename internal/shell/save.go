package shell

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/boardroom/internal/form"
	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// Record returns a copy of the record with id from the primary path.
func (s *Session) Record(id string) (types.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.snapshots[s.module.Primary()] {
		if r.ID() == id {
			return r.Clone(), true
		}
	}
	return nil, false
}

// Save submits fields through a form controller. An empty id creates a
// record from the module template; otherwise fields are applied on top of
// the stored record. Strings given for numeric columns are parsed with the
// module's number policy and array columns go through the tag rules.
func (s *Session) Save(ctx context.Context, id string, fields types.Record) (form.Result, error) {
	var initial types.Record
	if id != "" {
		existing, ok := s.Record(id)
		if !ok {
			return form.Result{}, fmt.Errorf("record %s: %w", id, types.ErrNotFound)
		}
		initial = existing
	}
	ctrl, err := s.NewForm(initial, nil)
	if err != nil {
		return form.Result{}, err
	}
	defer ctrl.Stop()

	for k, v := range fields {
		if k == types.FieldID {
			continue
		}
		col, ok := s.module.Schema.Column(k)
		switch {
		case ok && col.IsNumeric():
			if raw, isText := v.(string); isText {
				ctrl.SetNumber(k, raw)
				continue
			}
			ctrl.Set(k, v)
		case ok && col.Type == types.ValueTypeArray:
			ctrl.Set(k, []any{})
			for _, item := range types.ToStrings(v) {
				ctrl.AddItem(k, item)
			}
		default:
			ctrl.Set(k, v)
		}
	}
	return ctrl.Submit(ctx), nil
}
