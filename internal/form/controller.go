package form

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// DefaultCloseDelay keeps the success message visible before the form
// closes.
const DefaultCloseDelay = time.Second

// Message keys reported by Message.
const (
	MessageSaved  = "form.saved"
	MessageFailed = "form.failed"
)

// NumberPolicy decides what a numeric field holds when its input does not
// parse.
type NumberPolicy int

// Number parse policies.
const (
	ParseFailZero NumberPolicy = iota
	ParseFailEmpty
)

// State is the outcome of a submission attempt.
type State string

// Submission states.
const (
	StateNotReady  State = "not_ready"
	StateForbidden State = "forbidden"
	StateBusy      State = "busy"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// MessageKey returns the translation key describing s.
func (s State) MessageKey() string {
	switch s {
	case StateSucceeded:
		return MessageSaved
	case StateFailed:
		return MessageFailed
	}
	return "form." + string(s)
}

// Result reports a submission. Record is the value handed to the store,
// with audit fields still holding types.ServerTimestamp.
type Result struct {
	State  State        `json:"state"`
	Record types.Record `json:"record,omitempty"`
	Err    error        `json:"-"`
}

// Config binds a controller to its module and collaborators.
type Config struct {
	Store        types.Store
	Identity     *types.Identity
	Path         string // collection path
	Template     Template
	AdminOnly    bool
	NumberPolicy NumberPolicy
	DedupTags    bool
	CloseDelay   time.Duration
	OnClose      func(types.Record)
	Logger       *slog.Logger
	Clock        func() time.Time
}

// Authorize applies the submission gate shared by writes and deletes. It
// returns false with StateNotReady when the store or identity is missing and
// false with StateForbidden when an admin-only module is used by a non-admin.
func Authorize(store types.Store, id *types.Identity, adminOnly bool) (State, bool) {
	if store == nil || !id.Present() {
		return StateNotReady, false
	}
	if !id.CanWrite(adminOnly) {
		return StateForbidden, false
	}
	return "", true
}

// Controller holds the working copy of one record.
type Controller struct {
	cfg Config
	log *slog.Logger

	mu       sync.Mutex
	working  types.Record
	editing  bool
	inFlight bool
	message  string
	timer    *time.Timer
}

// New returns a controller editing initial, or creating a new record from
// the configured template when initial is nil or has no id.
func New(cfg Config, initial types.Record) *Controller {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.CloseDelay == 0 {
		cfg.CloseDelay = DefaultCloseDelay
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{
		cfg: cfg,
		log: log.With("component", "form", "path", cfg.Path),
	}
	if initial.ID() != "" {
		c.working = initial.Clone()
		c.editing = true
		return c
	}
	if cfg.Template != nil {
		c.working = cfg.Template(cfg.Clock())
	}
	if c.working == nil {
		c.working = types.Record{}
	}
	for k, v := range initial.Clone() {
		c.working[k] = v
	}
	return c
}

// Editing reports whether the controller updates an existing record.
func (c *Controller) Editing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing
}

// Value returns a deep copy of the working record.
func (c *Controller) Value() types.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.working.Clone()
}

// Set replaces one field of the working copy.
func (c *Controller) Set(field string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.working[field] = value
}

// SetNumber parses raw as a float and stores it in field. Input that does
// not parse to a finite number stores 0 or "" according to the number
// policy.
func (c *Controller) SetNumber(field, raw string) {
	var v any
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	switch {
	case err == nil && !math.IsNaN(f) && !math.IsInf(f, 0):
		v = f
	case c.cfg.NumberPolicy == ParseFailEmpty:
		v = ""
	default:
		v = float64(0)
	}
	c.Set(field, v)
}

// AddItem appends value to the array field. Duplicates are kept unless the
// controller was configured with DedupTags.
func (c *Controller) AddItem(field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := c.items(field)
	if c.cfg.DedupTags && slices.Contains(items, value) {
		return
	}
	c.working[field] = toAny(append(items, value))
}

// RemoveItem removes every occurrence of value from the array field.
func (c *Controller) RemoveItem(field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := slices.DeleteFunc(c.items(field), func(s string) bool { return s == value })
	c.working[field] = toAny(items)
}

func (c *Controller) items(field string) []string {
	v, ok := c.working.Get(field)
	if !ok {
		return []string{}
	}
	return types.ToStrings(v)
}

func toAny(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}

// CanSubmit reports whether the submit control is enabled.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.inFlight && c.cfg.Store != nil && c.cfg.Identity.Present()
}

// Loading reports whether a submission is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Message returns the translation key of the last inline message, or "".
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// Submit writes the working copy as a create or an update. New records get a
// store-generated key as both their path segment and their id field. Audit
// fields carry types.ServerTimestamp and the acting user's id. On success
// OnClose runs after the close delay; on failure the controller returns to
// an editable state with MessageFailed and nothing is retried.
func (c *Controller) Submit(ctx context.Context) Result {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return Result{State: StateBusy}
	}
	if state, ok := Authorize(c.cfg.Store, c.cfg.Identity, c.cfg.AdminOnly); !ok {
		c.mu.Unlock()
		if state == StateNotReady {
			c.log.Debug("submit skipped, store or identity not ready")
		}
		return Result{State: state}
	}
	c.inFlight = true
	c.message = ""
	rec := c.working.Clone()
	editing := c.editing
	c.mu.Unlock()

	user := c.cfg.Identity.UserID
	if editing {
		rec[types.FieldUpdatedAt] = types.ServerTimestamp
		rec[types.FieldUpdatedBy] = user
	} else {
		key, err := c.cfg.Store.GenerateKey(c.cfg.Path)
		if err != nil {
			return c.fail(fmt.Errorf("generating key: %w", err))
		}
		rec[types.FieldID] = key
		rec[types.FieldCreatedAt] = types.ServerTimestamp
		rec[types.FieldCreatedBy] = user
	}

	path := types.JoinPath(c.cfg.Path, rec.ID())
	if err := c.cfg.Store.Write(ctx, path, rec); err != nil {
		return c.fail(fmt.Errorf("writing %s: %w", path, err))
	}

	c.mu.Lock()
	c.inFlight = false
	c.message = MessageSaved
	if !editing {
		c.working[types.FieldID] = rec.ID()
		c.editing = true
	}
	if c.cfg.OnClose != nil {
		closed := rec.Clone()
		c.timer = time.AfterFunc(c.cfg.CloseDelay, func() { c.cfg.OnClose(closed) })
	}
	c.mu.Unlock()

	c.log.Info("record saved", "id", rec.ID(), "created", !editing)
	return Result{State: StateSucceeded, Record: rec}
}

func (c *Controller) fail(err error) Result {
	c.mu.Lock()
	c.inFlight = false
	c.message = MessageFailed
	c.mu.Unlock()
	c.log.Warn("submit failed", "error", err)
	return Result{State: StateFailed, Err: err}
}

// Stop cancels a pending close callback.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
