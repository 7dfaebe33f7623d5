package exporter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacstat/pkg/contracts/domain"
)

// pngMagic is the PNG file signature.
var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func writeFile(path string) error {
	return os.WriteFile(path, []byte("x"), 0644)
}

func TestChartExporter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")

	paths, err := NewChartExporter(nil).Write(context.Background(), testStatistics(), dir, "graph")
	require.NoError(t, err)
	require.Len(t, paths, 4)

	expected := []string{
		"graph_salary_by_year.png",
		"graph_count_by_year.png",
		"graph_salary_by_city.png",
		"graph_share_by_city.png",
	}
	for i, name := range expected {
		assert.Equal(t, filepath.Join(dir, name), paths[i])

		data, err := os.ReadFile(paths[i])
		require.NoError(t, err)
		require.Greater(t, len(data), len(pngMagic))
		assert.Equal(t, pngMagic, data[:len(pngMagic)], "%s is not a PNG", name)
	}
}

func TestChartExporter_Write_SingleYear(t *testing.T) {
	stats := &domain.Statistics{
		Profession:         "Analyst",
		Years:              []int{2022},
		SalaryByYear:       map[int]int{2022: 48000},
		CountByYear:        map[int]int{2022: 120},
		SalaryByYearNeeded: map[int]int{2022: 51000},
		CountByYearNeeded:  map[int]int{2022: 14},
		TopAreasBySalary:   []domain.AreaEntry{{Area: "Moscow", Value: 57354}},
		TopAreasByShare:    []domain.AreaEntry{{Area: "Moscow", Value: 1}},
	}

	paths, err := NewChartExporter(nil).Write(context.Background(), stats, t.TempDir(), "graph")
	require.NoError(t, err)
	require.Len(t, paths, 4)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Greater(t, len(data), len(pngMagic))
		assert.Equal(t, pngMagic, data[:len(pngMagic)])
	}
}

func TestChartExporter_Write_FlatSeries(t *testing.T) {
	stats := testStatistics()
	stats.SalaryByYear = map[int]int{2007: 40000, 2008: 40000}
	stats.SalaryByYearNeeded = map[int]int{2007: 40000, 2008: 40000}
	stats.CountByYear = map[int]int{2007: 7, 2008: 7}
	stats.CountByYearNeeded = map[int]int{2007: 7, 2008: 7}

	_, err := NewChartExporter(nil).Write(context.Background(), stats, t.TempDir(), "graph")
	require.NoError(t, err)
}

func TestFlatRange(t *testing.T) {
	assert.Nil(t, flatRange([]float64{1, 2}))

	r := flatRange([]float64{2022})
	require.NotNil(t, r)
	assert.Equal(t, 2021.0, r.Min)
	assert.Equal(t, 2023.0, r.Max)

	r = flatRange([]float64{0, 0, 0})
	require.NotNil(t, r)
	assert.Equal(t, -1.0, r.Min)
	assert.Equal(t, 1.0, r.Max)
}

func TestChartExporter_Write_NoRankedAreas(t *testing.T) {
	stats := testStatistics()
	stats.TopAreasBySalary = nil

	_, err := NewChartExporter(nil).Write(context.Background(), stats, t.TempDir(), "graph")
	assert.Error(t, err)
}

func TestChartExporter_Write_BadDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, writeFile(blocker))

	_, err := NewChartExporter(nil).Write(context.Background(), testStatistics(),
		filepath.Join(blocker, "charts"), "graph")
	assert.Error(t, err)
}
