package dataprocessing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	apperrors "vacstat/internal/errors"
)

// utf8BOM is the byte-order mark some exporters prepend to UTF-8 CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// maxDropSamples bounds the number of offending rows kept in a DropReport.
const maxDropSamples = 5

// RequiredColumns lists the header fields the vacancy CSV must carry.
var RequiredColumns = []string{
	"name",
	"salary_from",
	"salary_to",
	"salary_currency",
	"area_name",
	"published_at",
}

// Table holds the raw contents of a vacancy CSV after ingestion filtering:
// the header row and every accepted data row.
type Table struct {
	Header []string
	Rows   [][]string
}

// Row returns data row i zipped with the header into a column-name map.
func (t *Table) Row(i int) map[string]string {
	row := make(map[string]string, len(t.Header))
	for j, col := range t.Header {
		row[col] = t.Rows[i][j]
	}
	return row
}

// DroppedRow is one sample entry of a rejected input row.
type DroppedRow struct {
	Line   int
	Fields []string
	Reason string
}

// DropReport makes ingestion data loss observable: every row rejected by
// the shape filter is counted, and a bounded sample is retained.
type DropReport struct {
	Scanned int
	Dropped int
	Samples []DroppedRow
}

func (r *DropReport) add(line int, fields []string, reason string) {
	r.Dropped++
	if len(r.Samples) < maxDropSamples {
		r.Samples = append(r.Samples, DroppedRow{Line: line, Fields: fields, Reason: reason})
	}
}

// Reader ingests a vacancy CSV and applies the row shape filter: any row
// with an empty field, or with a field count different from the header's,
// is dropped and counted.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a vacancy CSV reader.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// Read loads the CSV at path. It fails with an INPUT error when the file
// cannot be opened, an EMPTY_INPUT error when there is no header or no
// data row survives filtering, and a VALIDATION error when a required
// column is missing from the header. The file handle is closed on every
// exit path.
func (r *Reader) Read(ctx context.Context, path string) (*Table, *DropReport, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, apperrors.NewInputError(fmt.Sprintf("cannot open input file %s", path), err)
	}
	defer file.Close()

	buffered := bufio.NewReader(file)
	if err := skipBOM(buffered); err != nil {
		return nil, nil, apperrors.NewInputError(fmt.Sprintf("cannot read input file %s", path), err)
	}

	cr := csv.NewReader(buffered)
	// Field count mismatches are handled by the shape filter, not the parser.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, apperrors.NewEmptyInputError("input file has no header row")
		}
		return nil, nil, apperrors.NewParsingError("cannot read header row", err)
	}

	if err := checkColumns(header); err != nil {
		return nil, nil, err
	}

	table := &Table{Header: header}
	report := &DropReport{}
	line := 1

	for {
		line++
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		report.Scanned++
		if err != nil {
			report.add(line, nil, err.Error())
			continue
		}
		if reason, ok := rejectRow(header, fields); !ok {
			report.add(line, fields, reason)
			continue
		}
		table.Rows = append(table.Rows, fields)
	}

	if len(table.Rows) == 0 {
		return nil, nil, apperrors.NewEmptyInputError("input file has no data rows")
	}

	r.logger.InfoContext(ctx, "vacancy CSV ingested",
		slog.String("path", path),
		slog.Int("accepted_rows", len(table.Rows)),
		slog.Int("dropped_rows", report.Dropped))

	return table, report, nil
}

// skipBOM discards a leading UTF-8 byte-order mark if present.
func skipBOM(r *bufio.Reader) error {
	prefix, err := r.Peek(len(utf8BOM))
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if bytes.Equal(prefix, utf8BOM) {
		if _, err := r.Discard(len(utf8BOM)); err != nil {
			return err
		}
	}
	return nil
}

// checkColumns verifies every required column is present in the header.
func checkColumns(header []string) error {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	for _, col := range RequiredColumns {
		if !present[col] {
			return apperrors.NewValidationError(
				fmt.Sprintf("input header is missing required column %q", col))
		}
	}
	return nil
}

// rejectRow applies the shape filter and returns the rejection reason.
func rejectRow(header, fields []string) (string, bool) {
	if len(fields) != len(header) {
		return fmt.Sprintf("field count %d does not match header count %d", len(fields), len(header)), false
	}
	for i, field := range fields {
		if field == "" {
			return fmt.Sprintf("empty field %q", header[i]), false
		}
	}
	return "", true
}
