// Package export writes module views as spreadsheets and JSONL.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// Formats accepted by Write.
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// ErrUnknownFormat is returned for export formats other than csv and jsonl.
var ErrUnknownFormat = errors.New("unknown export format")

// Header returns the translated header of every visible column. A column
// without a label uses its key.
func Header(schema types.Schema, tr types.Translator) []string {
	if tr == nil {
		tr = types.IdentityTranslator
	}
	cols := schema.Visible()
	out := make([]string, len(cols))
	for i, c := range cols {
		label := c.Label
		if label == "" {
			label = c.Key
		}
		out[i] = tr.T(label)
	}
	return out
}

// Row renders one record over the visible columns. Arrays are joined with
// types.ListSeparator, enum codes are kept as stored and missing fields are
// empty.
func Row(schema types.Schema, r types.Record) []string {
	cols := schema.Visible()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = types.Stringify(r[c.Key])
	}
	return out
}

// WriteCSV writes a header row and one row per record.
func WriteCSV(w io.Writer, records []types.Record, schema types.Schema, tr types.Translator) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(schema, tr)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(Row(schema, r)); err != nil {
			return fmt.Errorf("writing record %s: %w", r.ID(), err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// WriteJSONL writes one JSON object per line, every field included.
func WriteJSONL(w io.Writer, records []types.Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding record %s: %w", r.ID(), err)
		}
		if _, err := bw.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("writing record %s: %w", r.ID(), err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing jsonl: %w", err)
	}
	return nil
}

// Write exports records in format.
func Write(w io.Writer, format string, records []types.Record, schema types.Schema, tr types.Translator) error {
	switch format {
	case FormatCSV, "":
		return WriteCSV(w, records, schema, tr)
	case FormatJSONL:
		return WriteJSONL(w, records)
	default:
		return fmt.Errorf("export format %q: %w", format, ErrUnknownFormat)
	}
}

// Filename returns the download name for a module export taken at now.
func Filename(module, format string, now time.Time) string {
	if format == "" {
		format = FormatCSV
	}
	return fmt.Sprintf("%s-%s.%s", module, now.Format("2006-01-02"), format)
}
