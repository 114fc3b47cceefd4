package shell

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/mesh-intelligence/boardroom/internal/form"
	"github.com/mesh-intelligence/boardroom/internal/view"
	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// Options configures a Session.
type Options struct {
	Logger     *slog.Logger
	Locale     language.Tag
	Translator types.Translator
	CloseDelay time.Duration
	Clock      func() time.Time
}

// event is one store callback, tagged with the path it belongs to.
type event struct {
	path    string
	records []types.Record
	err     error
}

// Session is a live, filterable and sortable view of one module.
type Session struct {
	module   *Module
	store    types.Store
	identity *types.Identity
	engine   *view.Engine
	opts     Options
	log      *slog.Logger

	mu        sync.RWMutex
	snapshots map[string][]types.Record
	loaded    map[string]bool
	loading   bool
	errs      map[string]error
	filters   types.Filters
	sort      types.Sort
	view      []types.Record

	changes    chan struct{}
	loadedCh   chan struct{}
	loadedOnce sync.Once
	unsubs     []func()
	done       <-chan struct{}
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// Open subscribes to every path of module and returns the session. The
// session starts in the loading state. It is released by Close or when ctx
// ends.
func Open(ctx context.Context, store types.Store, module *Module, identity *types.Identity, opts Options) (*Session, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if err := module.Validate(); err != nil {
		return nil, fmt.Errorf("opening module: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Locale == language.Und {
		opts.Locale = view.DefaultLocale
	}
	if opts.Translator == nil {
		opts.Translator = types.IdentityTranslator
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		module:    module,
		store:     store,
		identity:  identity,
		engine:    view.New(module.Schema, view.WithLocale(opts.Locale), view.WithOptions(module.Options)),
		opts:      opts,
		log:       opts.Logger.With("component", "shell", "module", module.Name),
		snapshots: make(map[string][]types.Record, len(module.Paths)),
		loaded:    make(map[string]bool, len(module.Paths)),
		errs:      make(map[string]error),
		loading:   true,
		filters:   types.Filters{},
		sort:      module.DefaultSort,
		view:      []types.Record{},
		changes:   make(chan struct{}, 1),
		loadedCh:  make(chan struct{}),
		done:      ctx.Done(),
		cancel:    cancel,
	}

	// One channel per path, merged by the supervisor. The goroutines run
	// before subscribing so that a store delivering synchronously from
	// Subscribe does not block.
	merged := make(chan event)
	for _, path := range module.Paths {
		ch := make(chan event)
		s.wg.Add(1)
		go s.forward(ctx, ch, merged)
		s.unsubs = append(s.unsubs, store.Subscribe(path,
			func(records []types.Record) { s.send(ctx, ch, event{path: path, records: records}) },
			func(err error) { s.send(ctx, ch, event{path: path, err: err}) },
		))
	}
	s.wg.Add(1)
	go s.supervise(ctx, merged)

	s.log.Debug("session opened", "paths", module.Paths)
	return s, nil
}

func (s *Session) send(ctx context.Context, ch chan<- event, ev event) {
	select {
	case ch <- ev:
	case <-ctx.Done():
	}
}

func (s *Session) forward(ctx context.Context, in <-chan event, out chan<- event) {
	defer s.wg.Done()
	for {
		select {
		case ev := <-in:
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// supervise is the only goroutine that applies store events to the session.
func (s *Session) supervise(ctx context.Context, in <-chan event) {
	defer s.wg.Done()
	defer s.release()
	for {
		select {
		case ev := <-in:
			s.apply(ev)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) apply(ev event) {
	s.mu.Lock()
	if ev.err != nil {
		s.errs[ev.path] = ev.err
		s.log.Warn("subscription failed", "path", ev.path, "error", ev.err)
		// Stale data stays visible; only the loading state ends.
		s.loading = false
	} else {
		s.snapshots[ev.path] = ev.records
		s.loaded[ev.path] = true
		delete(s.errs, ev.path)
		if s.allLoaded() {
			s.loading = false
		}
		s.recompute()
	}
	done := !s.loading
	s.mu.Unlock()

	if done {
		s.loadedOnce.Do(func() { close(s.loadedCh) })
	}
	s.notify()
}

func (s *Session) allLoaded() bool {
	for _, p := range s.module.Paths {
		if !s.loaded[p] {
			return false
		}
	}
	return true
}

// collection returns the records the view is computed from. Callers hold mu.
func (s *Session) collection() []types.Record {
	if !s.module.Merged {
		return s.snapshots[s.module.Primary()]
	}
	var out []types.Record
	for _, p := range s.module.Paths {
		for _, r := range s.snapshots[p] {
			tagged := r.Merge(types.Record{SourceField: p})
			out = append(out, tagged)
		}
	}
	return out
}

// recompute rebuilds the view. Callers hold mu for writing.
func (s *Session) recompute() {
	s.view = s.engine.View(s.collection(), s.filters, s.sort)
}

func (s *Session) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func (s *Session) release() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
	s.log.Debug("session released")
}

// Close releases every subscription and waits for the session goroutines to
// exit. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
	})
}

// Module returns the session's module.
func (s *Session) Module() *Module { return s.module }

// Engine returns the view engine bound to the module schema.
func (s *Session) Engine() *view.Engine { return s.engine }

// View returns the filtered and sorted records.
func (s *Session) View() []types.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Record{}, s.view...)
}

// Snapshot returns the latest records delivered for path.
func (s *Session) Snapshot(path string) []types.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Record{}, s.snapshots[path]...)
}

// Loading reports whether some path has not delivered yet.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the subscription error of the first failing path. A path
// recovers once it delivers a snapshot again.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.module.Paths {
		if err := s.errs[p]; err != nil {
			return err
		}
	}
	return nil
}

// Filters returns a copy of the current filter state.
func (s *Session) Filters() types.Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(types.Filters, len(s.filters))
	for k, v := range s.filters {
		out[k] = v
	}
	return out
}

// Sort returns the current sort state.
func (s *Session) Sort() types.Sort {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sort
}

// SetFilter sets the filter for key. An empty value or types.FilterAll
// clears it.
func (s *Session) SetFilter(key, value string) {
	s.mu.Lock()
	if value == "" || value == types.FilterAll {
		delete(s.filters, key)
	} else {
		s.filters[key] = value
	}
	s.recompute()
	s.mu.Unlock()
	s.notify()
}

// ClearFilters removes every filter.
func (s *Session) ClearFilters() {
	s.mu.Lock()
	s.filters = types.Filters{}
	s.recompute()
	s.mu.Unlock()
	s.notify()
}

// SetSort replaces the sort state.
func (s *Session) SetSort(sort types.Sort) {
	s.mu.Lock()
	s.sort = sort
	s.recompute()
	s.mu.Unlock()
	s.notify()
}

// ToggleSort selects key as the sort column. Selecting the current column
// flips its direction; a new column starts at the module's new-key
// direction.
func (s *Session) ToggleSort(key string) types.Sort {
	s.mu.Lock()
	s.sort = s.sort.Toggle(key, s.module.NewKeyDirection)
	s.recompute()
	sort := s.sort
	s.mu.Unlock()
	s.notify()
	return sort
}

// Changes signals after every snapshot, error, filter or sort change.
// Signals coalesce; receivers should re-read the session state.
func (s *Session) Changes() <-chan struct{} {
	return s.changes
}

// WaitLoaded blocks until the session leaves the loading state. It returns
// ErrClosed if the session closes first.
func (s *Session) WaitLoaded(ctx context.Context) error {
	select {
	case <-s.loadedCh:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Joined attaches to each view record the latest related record of the
// module's join path. It returns nil for modules without a join.
func (s *Session) Joined() []view.Joined {
	j := s.module.Join
	if j == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view.JoinLatest(s.view, s.snapshots[j.Path], view.ContainsID(j.FKField), j.DateField)
}

// NewForm returns a form controller for the module's primary path, editing
// initial when it carries an id.
func (s *Session) NewForm(initial types.Record, onClose func(types.Record)) (*form.Controller, error) {
	if s.module.Merged {
		return nil, ErrReadOnly
	}
	return form.New(form.Config{
		Store:        s.store,
		Identity:     s.identity,
		Path:         s.module.Primary(),
		Template:     s.module.Template,
		AdminOnly:    s.module.AdminOnly,
		NumberPolicy: s.module.NumberPolicy,
		DedupTags:    s.module.DedupTags,
		CloseDelay:   s.opts.CloseDelay,
		OnClose:      onClose,
		Logger:       s.opts.Logger,
		Clock:        s.opts.Clock,
	}, initial), nil
}

// CanWrite reports whether the session identity may create, edit or delete
// records, so callers can hide write actions.
func (s *Session) CanWrite() bool {
	if s.module.Merged {
		return false
	}
	_, ok := form.Authorize(s.store, s.identity, s.module.AdminOnly)
	return ok
}

// Delete removes the record with id from the primary path after confirm
// returns true. It passes the same gate as form submission.
func (s *Session) Delete(ctx context.Context, id string, confirm func() bool) form.Result {
	if s.module.Merged {
		return form.Result{State: form.StateForbidden}
	}
	if state, ok := form.Authorize(s.store, s.identity, s.module.AdminOnly); !ok {
		return form.Result{State: state}
	}
	if confirm == nil || !confirm() {
		return form.Result{State: form.StateCancelled}
	}
	path := types.JoinPath(s.module.Primary(), id)
	if err := s.store.Remove(ctx, path); err != nil {
		s.log.Warn("delete failed", "id", id, "error", err)
		return form.Result{State: form.StateFailed, Err: fmt.Errorf("removing %s: %w", path, err)}
	}
	s.log.Info("record deleted", "id", id)
	return form.Result{State: form.StateSucceeded}
}
