package exporter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFExporter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.pdf")

	err := NewPDFExporter(nil).Write(context.Background(), testStatistics(), "", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 4)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestPDFExporter_Write_WithChart(t *testing.T) {
	dir := t.TempDir()
	stats := testStatistics()

	chartPaths, err := NewChartExporter(nil).Write(context.Background(), stats, dir, "graph")
	require.NoError(t, err)

	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, NewPDFExporter(nil).Write(context.Background(), stats, chartPaths[0], path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(1000))
}

func TestFormatShare(t *testing.T) {
	tests := []struct {
		share float64
		want  string
	}{
		{0.4581, "45.81%"},
		{0.01, "1.00%"},
		{0, "0.00%"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatShare(tt.share))
	}
}
