// Package storage implements the currency-rates table loader: a small
// SQLite-backed batch job that replaces a table with the contents of a CSV
// file.
package storage

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	apperrors "vacstat/internal/errors"
)

// Store wraps a SQLite database handle.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens the SQLite database at path (":memory:" for an in-memory
// database) and verifies the connection.
func NewStore(logger *slog.Logger, path string) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open database", err)
	}
	// Single connection: the loader is a synchronous batch job, and an
	// in-memory database exists per connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("failed to connect to database", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("failed to configure database", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadCSV replaces table with the contents of the CSV at csvPath. The
// table schema is derived from the CSV header (all TEXT columns); any
// existing table of the same name is dropped first. The whole load runs in
// one transaction.
func (s *Store) LoadCSV(ctx context.Context, csvPath, table string) (int, error) {
	header, rows, err := readCSV(csvPath)
	if err != nil {
		return 0, err
	}

	if err := s.ReplaceTable(ctx, table, header, rows); err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "currency table loaded",
		slog.String("table", table),
		slog.String("csv", csvPath),
		slog.Int("rows", len(rows)))

	return len(rows), nil
}

// ReplaceTable drops table if it exists, recreates it with TEXT columns
// named after header, and inserts every row.
func (s *Store) ReplaceTable(ctx context.Context, table string, header []string, rows [][]string) error {
	if len(header) == 0 {
		return apperrors.NewValidationError("cannot create a table without columns")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return apperrors.NewStorageError("failed to drop existing table", err)
	}

	cols := make([]string, len(header))
	for i, col := range header {
		cols[i] = quoteIdent(col) + " TEXT"
	}
	createStmt := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(cols, ", "))
	if _, err := tx.ExecContext(ctx, createStmt); err != nil {
		return apperrors.NewStorageError("failed to create table", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(header)), ", ")
	insertStmt := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(table), placeholders)
	stmt, err := tx.PrepareContext(ctx, insertStmt)
	if err != nil {
		return apperrors.NewStorageError("failed to prepare insert", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(header) {
			return apperrors.NewValidationError(
				fmt.Sprintf("row %d has %d fields, header has %d", i+1, len(row), len(header)))
		}
		args := make([]interface{}, len(row))
		for j, v := range row {
			args[j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to insert row %d", i+1), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("failed to commit load", err)
	}

	return nil
}

// Rows returns the full contents of table in insertion order.
func (s *Store) Rows(ctx context.Context, table string) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query table", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read columns", err)
	}

	var out [][]string
	for rows.Next() {
		values := make([]string, len(columns))
		scans := make([]interface{}, len(columns))
		for i := range values {
			scans[i] = &values[i]
		}
		if err := rows.Scan(scans...); err != nil {
			return nil, apperrors.NewStorageError("failed to scan row", err)
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to iterate rows", err)
	}

	return out, nil
}

// readCSV loads the header and all data rows of the CSV at path.
func readCSV(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, apperrors.NewInputError(fmt.Sprintf("cannot open CSV file %s", path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, apperrors.NewEmptyInputError("CSV file has no header row")
		}
		return nil, nil, apperrors.NewParsingError("cannot read CSV header", err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, apperrors.NewParsingError("cannot read CSV rows", err)
	}

	return header, rows, nil
}

// quoteIdent quotes a SQL identifier taken from untrusted CSV input.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
