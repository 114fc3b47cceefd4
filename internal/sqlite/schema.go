package sqlite

// Schema DDL. Every collection shares one table; a record's JSON value is
// stored whole and decoded on read.
const (
	createRecords = `CREATE TABLE records (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (collection, id)
);`

	createRecordsIndex = `CREATE INDEX idx_records_collection ON records (collection);`
)

// schemaStatements lists the DDL run on every attach, in order.
var schemaStatements = []string{createRecords, createRecordsIndex}
