package sqlite

import (
	"context"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// subscription delivers snapshots and errors to one subscriber on its own
// goroutine, in the order they were offered. A pending snapshot is replaced
// by a newer one, and a newer snapshot also supersedes a pending error, so a
// slow subscriber only ever sees the latest state.
type subscription struct {
	onSnapshot func([]types.Record)
	onError    func(error)

	mu      sync.Mutex
	pending []delivery
	wake    chan struct{}

	done     chan struct{}
	stopOnce sync.Once
}

// delivery is one queued callback: records, or err when set.
type delivery struct {
	records []types.Record
	err     error
}

func newSubscription(onSnapshot func([]types.Record), onError func(error)) *subscription {
	s := &subscription{
		onSnapshot: onSnapshot,
		onError:    onError,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}
		for {
			d, ok := s.next()
			if !ok {
				break
			}
			select {
			case <-s.done:
				return
			default:
			}
			if d.err != nil {
				if s.onError != nil {
					s.onError(d.err)
				}
			} else if s.onSnapshot != nil {
				s.onSnapshot(d.records)
			}
		}
	}
}

func (s *subscription) next() (delivery, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return delivery{}, false
	}
	d := s.pending[0]
	s.pending = s.pending[1:]
	return d, true
}

// offerSnapshot queues records, dropping everything not yet delivered.
func (s *subscription) offerSnapshot(records []types.Record) {
	s.mu.Lock()
	s.pending = append(s.pending[:0], delivery{records: records})
	s.mu.Unlock()
	s.signal()
}

// offerError queues err after any pending snapshot, replacing an error not
// yet delivered.
func (s *subscription) offerError(err error) {
	s.mu.Lock()
	if n := len(s.pending); n > 0 && s.pending[n-1].err != nil {
		s.pending[n-1] = delivery{err: err}
	} else {
		s.pending = append(s.pending, delivery{err: err})
	}
	s.mu.Unlock()
	s.signal()
}

func (s *subscription) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// Subscribe registers callbacks for the collection at path. The current
// snapshot is delivered asynchronously; later snapshots follow every write,
// remove and external reload. An invalid path or a detached backend is
// reported through onError. The returned function is idempotent.
func (b *Backend) Subscribe(path string, onSnapshot func([]types.Record), onError func(error)) func() {
	s := newSubscription(onSnapshot, onError)

	if !types.ValidCollection(path) {
		s.offerError(fmt.Errorf("subscribing to %q: %w", path, types.ErrInvalidPath))
		return s.stop
	}

	// Registering under mu orders the initial snapshot before any snapshot
	// published by a later write.
	b.mu.RLock()
	b.subMu.Lock()
	id := b.nextSub
	b.nextSub++
	if b.subs[path] == nil {
		b.subs[path] = make(map[int]*subscription)
	}
	b.subs[path][id] = s
	b.subMu.Unlock()

	var (
		snapshot []types.Record
		err      error
	)
	if b.attached {
		snapshot, err = b.snapshotLocked(context.Background(), path)
	} else {
		err = types.ErrStoreDetached
	}
	if err != nil {
		s.offerError(fmt.Errorf("subscribing to %q: %w", path, err))
	} else {
		s.offerSnapshot(snapshot)
	}
	b.mu.RUnlock()

	return func() {
		b.subMu.Lock()
		delete(b.subs[path], id)
		if len(b.subs[path]) == 0 {
			delete(b.subs, path)
		}
		b.subMu.Unlock()
		s.stop()
	}
}

// publish sends a snapshot of collection to its subscribers. Each
// subscriber gets its own copy.
func (b *Backend) publish(collection string, snapshot []types.Record) {
	for _, s := range b.subscribers(collection) {
		s.offerSnapshot(types.CloneAll(snapshot))
	}
}

// publishError reports err to the subscribers of collection.
func (b *Backend) publishError(collection string, err error) {
	for _, s := range b.subscribers(collection) {
		s.offerError(err)
	}
}

func (b *Backend) subscribers(collection string) []*subscription {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	out := make([]*subscription, 0, len(b.subs[collection]))
	for _, s := range b.subs[collection] {
		out = append(out, s)
	}
	return out
}
