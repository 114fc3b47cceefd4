// This file loads collection JSONL files into SQLite. Loading runs on attach
// for every file in the data directory and again for a single collection
// when the watcher sees its file change.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// loadAllJSONL inserts every collection file in dataDir into db. Loading is
// transactional: all files load or the database stays empty. It returns the
// names of the loaded collections.
func loadAllJSONL(db *sql.DB, dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("reading data dir: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	var collections []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		collection, ok := collectionOf(e.Name())
		if !ok {
			continue
		}
		records, err := readJSONL(collectionFile(dataDir, collection))
		if err != nil {
			return nil, err
		}
		if err := replaceCollection(tx, collection, records); err != nil {
			return nil, fmt.Errorf("loading %s: %w", collection, err)
		}
		collections = append(collections, collection)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing load transaction: %w", err)
	}
	sort.Strings(collections)
	return collections, nil
}

// reloadCollection replaces the rows of one collection with the contents of
// its file.
func reloadCollection(db *sql.DB, dataDir, collection string) error {
	records, err := readJSONL(collectionFile(dataDir, collection))
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning reload transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replaceCollection(tx, collection, records); err != nil {
		return fmt.Errorf("reloading %s: %w", collection, err)
	}
	return tx.Commit()
}

// replaceCollection deletes the collection's rows and inserts records.
// Lines that are not JSON objects or that lack a string id are skipped, as
// are later duplicates of an id. Unknown fields are kept.
func replaceCollection(tx *sql.Tx, collection string, records []json.RawMessage) error {
	query, args, err := deleteCollection(collection)
	if err != nil {
		return fmt.Errorf("building delete for %s: %w", collection, err)
	}
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("clearing %s: %w", collection, err)
	}

	for _, raw := range records {
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil || obj.ID == "" {
			continue
		}
		query, args, err := insertIgnore(collection, obj.ID, string(raw))
		if err != nil {
			return fmt.Errorf("building insert for %s/%s: %w", collection, obj.ID, err)
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("inserting %s/%s: %w", collection, obj.ID, err)
		}
	}
	return nil
}
