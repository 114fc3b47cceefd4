package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// GenerateKey returns a new UUID v7 key for a record in the collection at
// path. Keys sort in creation order.
func (b *Backend) GenerateKey(path string) (string, error) {
	if !types.ValidCollection(path) {
		return "", fmt.Errorf("generating key for %q: %w", path, types.ErrInvalidPath)
	}
	return generateUUID(), nil
}

// Write stores value at path (collection/id), replacing any previous value.
// A value without an id gets the path's id; a different id is rejected.
// ServerTimestamp sentinels are replaced with the backend clock in RFC 3339
// UTC. Subscribers of the collection receive a new snapshot.
func (b *Backend) Write(ctx context.Context, path string, value types.Record) error {
	collection, id, err := types.SplitPath(path)
	if err != nil || !types.ValidCollection(collection) {
		return fmt.Errorf("writing %q: %w", path, types.ErrInvalidPath)
	}
	if value == nil {
		return fmt.Errorf("writing %q: %w", path, types.ErrInvalidData)
	}

	rec := resolveTimestamps(value.Clone(), b.clock().UTC().Format(time.RFC3339))
	switch v := rec[types.FieldID].(type) {
	case nil:
		rec[types.FieldID] = id
	case string:
		if v != id {
			return fmt.Errorf("writing %q: record id %q: %w", path, v, types.ErrInvalidData)
		}
	default:
		return fmt.Errorf("writing %q: %w", path, types.ErrInvalidData)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", path, err)
	}

	query, args, err := upsertRecord(collection, id, string(data))
	if err != nil {
		return fmt.Errorf("building write for %q: %w", path, err)
	}

	b.mu.Lock()
	if !b.attached {
		b.mu.Unlock()
		return types.ErrStoreDetached
	}
	err = b.mutateLocked(ctx, collection, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
	if err == nil {
		// Publishing under the lock keeps snapshot order equal to write order.
		err = b.publishLocked(ctx, collection)
	}
	b.mu.Unlock()
	if err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}
	return nil
}

// Remove deletes the record at path (collection/id). It returns ErrNotFound
// when there is no such record.
func (b *Backend) Remove(ctx context.Context, path string) error {
	collection, id, err := types.SplitPath(path)
	if err != nil || !types.ValidCollection(collection) {
		return fmt.Errorf("removing %q: %w", path, types.ErrInvalidPath)
	}

	query, args, err := deleteRecord(collection, id)
	if err != nil {
		return fmt.Errorf("building remove for %q: %w", path, err)
	}

	b.mu.Lock()
	if !b.attached {
		b.mu.Unlock()
		return types.ErrStoreDetached
	}
	err = b.mutateLocked(ctx, collection, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err == nil && n == 0 {
			err = types.ErrNotFound
		}
		return err
	})
	if err == nil {
		// Publishing under the lock keeps snapshot order equal to write order.
		err = b.publishLocked(ctx, collection)
	}
	b.mu.Unlock()
	if err != nil {
		return fmt.Errorf("removing %q: %w", path, err)
	}
	return nil
}

// Get returns the record at path (collection/id).
func (b *Backend) Get(ctx context.Context, path string) (types.Record, error) {
	collection, id, err := types.SplitPath(path)
	if err != nil {
		return nil, fmt.Errorf("getting %q: %w", path, types.ErrInvalidPath)
	}

	query, args, err := selectRecord(collection, id)
	if err != nil {
		return nil, fmt.Errorf("building get for %q: %w", path, err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	var value string
	err = b.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %q: %w", path, err)
	}
	return decodeRecord(value)
}

// List returns the records of collection ordered by id.
func (b *Backend) List(ctx context.Context, collection string) ([]types.Record, error) {
	if !types.ValidCollection(collection) {
		return nil, fmt.Errorf("listing %q: %w", collection, types.ErrInvalidPath)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.snapshotLocked(ctx, collection)
}

// Collections returns the names of the collections holding records.
func (b *Backend) Collections(ctx context.Context) ([]string, error) {
	query, args, err := selectCollections()
	if err != nil {
		return nil, fmt.Errorf("building collections query: %w", err)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// publishLocked sends the current collection to its subscribers. Callers
// hold mu.
func (b *Backend) publishLocked(ctx context.Context, collection string) error {
	if len(b.subscribers(collection)) == 0 {
		return nil
	}
	snapshot, err := b.snapshotLocked(ctx, collection)
	if err != nil {
		return err
	}
	b.publish(collection, snapshot)
	return nil
}

// snapshotLocked reads the whole collection. Callers hold mu.
func (b *Backend) snapshotLocked(ctx context.Context, collection string) ([]types.Record, error) {
	query, args, err := selectCollection(collection)
	if err != nil {
		return nil, fmt.Errorf("building query for %s: %w", collection, err)
	}
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer rows.Close()

	records := []types.Record{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", collection, err)
		}
		rec, err := decodeRecord(value)
		if err != nil {
			b.log.Warn("skipping undecodable record", "collection", collection, "error", err)
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", collection, err)
	}
	return records, nil
}

// mutateLocked runs change and rewrites the collection's JSONL file in one
// transaction. The database keeps the change only when the file was
// written. Callers hold mu for writing.
func (b *Backend) mutateLocked(ctx context.Context, collection string, change func(*sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := change(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := b.persistLocked(ctx, tx, collection); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", collection, err)
	}
	return nil
}

// persistLocked rewrites the collection's JSONL file from the rows visible
// to tx. Callers hold mu for writing.
func (b *Backend) persistLocked(ctx context.Context, tx *sql.Tx, collection string) error {
	query, args, err := selectCollection(collection)
	if err != nil {
		return fmt.Errorf("building query for %s: %w", collection, err)
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("querying %s: %w", collection, err)
	}
	defer rows.Close()

	var lines []json.RawMessage
	var size int
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return fmt.Errorf("scanning %s: %w", collection, err)
		}
		lines = append(lines, json.RawMessage(value))
		size += len(value) + 1
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating %s: %w", collection, err)
	}

	if err := writeJSONL(collectionFile(b.dataDir, collection), lines); err != nil {
		return fmt.Errorf("persisting %s: %w", collection, err)
	}
	data := make([]byte, 0, size)
	for _, l := range lines {
		data = append(append(data, l...), '\n')
	}
	b.persisted[collection] = data
	return nil
}

func decodeRecord(value string) (types.Record, error) {
	var rec types.Record
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return rec, nil
}

// resolveTimestamps replaces every ServerTimestamp sentinel in rec, at any
// depth, with now.
func resolveTimestamps(rec types.Record, now string) types.Record {
	for k, v := range rec {
		rec[k] = resolveValue(v, now)
	}
	return rec
}

func resolveValue(v any, now string) any {
	if types.IsServerTimestamp(v) {
		return now
	}
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = resolveValue(e, now)
		}
	case types.Record:
		resolveTimestamps(t, now)
	case []any:
		for i, e := range t {
			t[i] = resolveValue(e, now)
		}
	}
	return v
}
