package types

import (
	"context"
	"errors"
	"strings"
)

// Store is a realtime document store keyed by opaque IDs. Subscribers
// receive the full collection at a path every time it changes.
type Store interface {
	// Subscribe registers callbacks for the collection at path. The first
	// snapshot is delivered asynchronously. The returned function releases
	// the subscription; calling it more than once is safe.
	Subscribe(path string, onSnapshot func([]Record), onError func(error)) (unsubscribe func())

	// Write stores the full value at path (collection/id), replacing any
	// previous value. ServerTimestamp values are resolved by the store.
	Write(ctx context.Context, path string, value Record) error

	// Remove deletes the value at path (collection/id).
	Remove(ctx context.Context, path string) error

	// GenerateKey returns a new unique key for a child of the collection
	// at path.
	GenerateKey(path string) (string, error)
}

// serverTimestamp is the type of the ServerTimestamp sentinel.
type serverTimestamp struct{}

// MarshalJSON encodes the sentinel as a server-value marker so that an
// unresolved record can still be shown to clients.
func (serverTimestamp) MarshalJSON() ([]byte, error) {
	return []byte(`{".sv":"timestamp"}`), nil
}

// ServerTimestamp is a placeholder that the Store replaces with its own
// clock reading when a record is written.
var ServerTimestamp any = serverTimestamp{}

// IsServerTimestamp reports whether v is the ServerTimestamp sentinel.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// Store errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrInvalidPath     = errors.New("invalid store path")
	ErrNotFound        = errors.New("record not found")
	ErrInvalidData     = errors.New("invalid record data")
)

// SplitPath splits a record path of the form collection/id. It returns
// ErrInvalidPath when either part is empty or the path has more segments.
func SplitPath(path string) (collection, id string, err error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidPath
	}
	return parts[0], parts[1], nil
}

// JoinPath builds the record path for id inside collection.
func JoinPath(collection, id string) string {
	return strings.Trim(collection, "/") + "/" + id
}

// ValidCollection reports whether path names a collection (a single,
// non-empty segment without separators).
func ValidCollection(path string) bool {
	p := strings.Trim(path, "/")
	return p != "" && !strings.Contains(p, "/") && !strings.ContainsAny(p, `\.`)
}
