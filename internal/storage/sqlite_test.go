package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vacstat/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(nil, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func writeCurrencyCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "currencies.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestStore_LoadCSV(t *testing.T) {
	store := newTestStore(t)
	path := writeCurrencyCSV(t, "date,USD,EUR\n2022-01,74.5,84.1\n2022-02,76.2,86.3\n")

	n, err := store.LoadCSV(context.Background(), path, "currency_rates")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := store.Rows(context.Background(), "currency_rates")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2022-01", "74.5", "84.1"}, rows[0])
	assert.Equal(t, []string{"2022-02", "76.2", "86.3"}, rows[1])
}

func TestStore_LoadCSV_ReplacesExistingTable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := writeCurrencyCSV(t, "date,USD\n2022-01,74.5\n2022-02,76.2\n")
	_, err := store.LoadCSV(ctx, first, "currency_rates")
	require.NoError(t, err)

	// Second load replaces the table entirely, schema included.
	second := writeCurrencyCSV(t, "date,USD,EUR,KZT\n2023-01,89.1,97.4,0.19\n")
	n, err := store.LoadCSV(ctx, second, "currency_rates")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, err := store.Rows(ctx, "currency_rates")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"2023-01", "89.1", "97.4", "0.19"}, rows[0])
}

func TestStore_LoadCSV_MissingFile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LoadCSV(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), "t")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInput))
}

func TestStore_LoadCSV_EmptyFile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LoadCSV(context.Background(), writeCurrencyCSV(t, ""), "t")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeEmptyInput))
}

func TestStore_ReplaceTable_QuotedIdentifiers(t *testing.T) {
	store := newTestStore(t)

	// Column and table names straight from a CSV header must be quoted.
	err := store.ReplaceTable(context.Background(), "weird table",
		[]string{"select", "from"}, [][]string{{"a", "b"}})
	require.NoError(t, err)

	rows, err := store.Rows(context.Background(), "weird table")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"a", "b"}, rows[0])
}

func TestStore_ReplaceTable_NoColumns(t *testing.T) {
	store := newTestStore(t)

	err := store.ReplaceTable(context.Background(), "t", nil, nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestStore_ReplaceTable_ShapeMismatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.ReplaceTable(ctx, "t", []string{"a", "b"}, [][]string{{"only"}})
	require.Error(t, err)

	// The failed load must not leave a partial table behind.
	_, err = store.Rows(ctx, "t")
	assert.Error(t, err)
}

func TestStore_PersistsAcrossConnections(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "currencies.db")
	ctx := context.Background()

	store, err := NewStore(nil, dbPath)
	require.NoError(t, err)
	_, err = store.LoadCSV(ctx, writeCurrencyCSV(t, "date,USD\n2022-01,74.5\n"), "currency_rates")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(nil, dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	rows, err := reopened.Rows(ctx, "currency_rates")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"2022-01", "74.5"}, rows[0])
}
