// Package storetest provides an in-memory types.Store that records every
// call, for tests of packages that talk to a store.
package storetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// WriteCall holds a single recorded Write for test assertions.
type WriteCall struct {
	Path  string
	Value types.Record
}

type subscriber struct {
	path       string
	onSnapshot func([]types.Record)
	onError    func(error)
	active     bool
}

// Fake is a test-friendly Store. Snapshots are only delivered when the test
// calls Emit or Fail, so delivery order is fully under test control.
type Fake struct {
	mu          sync.Mutex
	Writes      []WriteCall
	Removes     []string
	WriteErr    error
	RemoveErr   error
	KeyErr      error
	Gate        chan struct{} // when set, Write blocks until it is closed or receives
	subs        []*subscriber
	nextKey     int
	unsubscribe int
}

var _ types.Store = (*Fake)(nil)

// Subscribe records the callbacks for path.
func (f *Fake) Subscribe(path string, onSnapshot func([]types.Record), onError func(error)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &subscriber{path: path, onSnapshot: onSnapshot, onError: onError, active: true}
	f.subs = append(f.subs, s)
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			s.active = false
			f.unsubscribe++
		})
	}
}

// Write records the call, then waits on Gate if one is set.
func (f *Fake) Write(ctx context.Context, path string, value types.Record) error {
	f.mu.Lock()
	gate := f.Gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Writes = append(f.Writes, WriteCall{Path: path, Value: value.Clone()})
	return f.WriteErr
}

// Remove records the call.
func (f *Fake) Remove(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Removes = append(f.Removes, path)
	return f.RemoveErr
}

// GenerateKey returns key-1, key-2, ... unless KeyErr is set.
func (f *Fake) GenerateKey(string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.KeyErr != nil {
		return "", f.KeyErr
	}
	f.nextKey++
	return fmt.Sprintf("key-%d", f.nextKey), nil
}

// Emit delivers records to every active subscriber of path.
func (f *Fake) Emit(path string, records []types.Record) {
	for _, s := range f.active(path) {
		s.onSnapshot(types.CloneAll(records))
	}
}

// Fail delivers err to every active subscriber of path.
func (f *Fake) Fail(path string, err error) {
	for _, s := range f.active(path) {
		if s.onError != nil {
			s.onError(err)
		}
	}
}

func (f *Fake) active(path string) []*subscriber {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*subscriber
	for _, s := range f.subs {
		if s.active && s.path == path {
			out = append(out, s)
		}
	}
	return out
}

// Subscribed returns the paths with an active subscription, in
// subscription order.
func (f *Fake) Subscribed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []string{}
	for _, s := range f.subs {
		if s.active {
			out = append(out, s.path)
		}
	}
	return out
}

// Unsubscribed returns how many subscriptions have been released.
func (f *Fake) Unsubscribed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unsubscribe
}

// WriteCalls returns a copy of the recorded writes.
func (f *Fake) WriteCalls() []WriteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]WriteCall(nil), f.Writes...)
}

// SetGate installs a gate that blocks Write until released.
func (f *Fake) SetGate(gate chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Gate = gate
}
