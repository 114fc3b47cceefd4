package sqlite

import (
	sq "github.com/Masterminds/squirrel"
)

const recordsTable = "records"

// builder emits SQLite placeholders.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// selectCollection reads every value of collection in id order.
func selectCollection(collection string) (string, []any, error) {
	return builder.Select("value").
		From(recordsTable).
		Where(sq.Eq{"collection": collection}).
		OrderBy("id").
		ToSql()
}

// selectRecord reads one value.
func selectRecord(collection, id string) (string, []any, error) {
	return builder.Select("value").
		From(recordsTable).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
}

// upsertRecord inserts value or replaces the stored one.
func upsertRecord(collection, id, value string) (string, []any, error) {
	return builder.Insert(recordsTable).
		Columns("collection", "id", "value").
		Values(collection, id, value).
		Suffix("ON CONFLICT (collection, id) DO UPDATE SET value = excluded.value").
		ToSql()
}

// insertIgnore inserts value unless the id is already loaded. The first
// line with an id wins.
func insertIgnore(collection, id, value string) (string, []any, error) {
	return builder.Insert(recordsTable).
		Options("OR IGNORE").
		Columns("collection", "id", "value").
		Values(collection, id, value).
		ToSql()
}

// deleteRecord removes one record.
func deleteRecord(collection, id string) (string, []any, error) {
	return builder.Delete(recordsTable).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
}

// deleteCollection removes every record of collection.
func deleteCollection(collection string) (string, []any, error) {
	return builder.Delete(recordsTable).
		Where(sq.Eq{"collection": collection}).
		ToSql()
}

// selectCollections lists the collections holding at least one record.
func selectCollections() (string, []any, error) {
	return builder.Select("DISTINCT collection").
		From(recordsTable).
		OrderBy("collection").
		ToSql()
}
