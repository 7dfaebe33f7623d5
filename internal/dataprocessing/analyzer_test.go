package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vacstat/internal/errors"
	"vacstat/pkg/contracts/domain"
)

func vacancy(year int, area string, reference float64, needed bool) domain.VacancyRecord {
	return domain.VacancyRecord{
		Name:     "vacancy",
		AreaName: area,
		Year:     year,
		Needed:   needed,
		Salary:   domain.NormalizedSalary{Reference: reference},
	}
}

func TestAnalyzer_Run_Empty(t *testing.T) {
	analyzer := NewAnalyzer(slog.Default(), DefaultAnalyzerConfig())

	_, err := analyzer.Run(context.Background(), "Analyst", nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeEmptyInput))
}

func TestAnalyzer_Run_YearAggregates(t *testing.T) {
	records := []domain.VacancyRecord{
		vacancy(2007, "Moscow", 4, true),
		vacancy(2007, "Moscow", 6, false),
		vacancy(2008, "Moscow", 11, false),
	}

	stats, err := NewAnalyzer(nil, DefaultAnalyzerConfig()).Run(context.Background(), "Analyst", records)
	require.NoError(t, err)

	assert.Equal(t, []int{2007, 2008}, stats.Years)
	// floor(10/2) = 5, floor(11/1) = 11
	assert.Equal(t, map[int]int{2007: 5, 2008: 11}, stats.SalaryByYear)
	assert.Equal(t, map[int]int{2007: 2, 2008: 1}, stats.CountByYear)
}

func TestAnalyzer_Run_ZeroFillsFilteredSubset(t *testing.T) {
	// 2008 exists in the full dataset but has no profession match: the
	// filtered aggregates must still carry it with count 0 and average 0.
	records := []domain.VacancyRecord{
		vacancy(2007, "Moscow", 100, true),
		vacancy(2008, "Moscow", 200, false),
	}

	stats, err := NewAnalyzer(nil, DefaultAnalyzerConfig()).Run(context.Background(), "Analyst", records)
	require.NoError(t, err)

	assert.Equal(t, map[int]int{2007: 1, 2008: 0}, stats.CountByYearNeeded)
	assert.Equal(t, map[int]int{2007: 100, 2008: 0}, stats.SalaryByYearNeeded)
}

func TestAnalyzer_Run_PrunesRareAreas(t *testing.T) {
	// 99 Moscow records and one Tula record: Tula's share is exactly 1%
	// and must be pruned (threshold is inclusive).
	var records []domain.VacancyRecord
	for i := 0; i < 99; i++ {
		records = append(records, vacancy(2022, "Moscow", 100, false))
	}
	records = append(records, vacancy(2022, "Tula", 100000, false))

	stats, err := NewAnalyzer(nil, DefaultAnalyzerConfig()).Run(context.Background(), "Analyst", records)
	require.NoError(t, err)

	require.Len(t, stats.TopAreasBySalary, 1)
	assert.Equal(t, "Moscow", stats.TopAreasBySalary[0].Area)
	require.Len(t, stats.TopAreasByShare, 1)
	assert.Equal(t, 0.99, stats.TopAreasByShare[0].Value)
}

func TestAnalyzer_Run_TopAreasTruncatedAndSorted(t *testing.T) {
	// Twelve areas, ten records each: all survive pruning, only the ten
	// highest-paid remain after ranking.
	var records []domain.VacancyRecord
	for i := 0; i < 12; i++ {
		area := fmt.Sprintf("City-%02d", i)
		for j := 0; j < 10; j++ {
			records = append(records, vacancy(2022, area, float64((i+1)*1000), false))
		}
	}

	stats, err := NewAnalyzer(nil, DefaultAnalyzerConfig()).Run(context.Background(), "Analyst", records)
	require.NoError(t, err)

	require.Len(t, stats.TopAreasBySalary, 10)
	assert.Equal(t, "City-11", stats.TopAreasBySalary[0].Area)
	assert.Equal(t, 12000.0, stats.TopAreasBySalary[0].Value)
	// The two lowest-paid cities are dropped.
	for _, entry := range stats.TopAreasBySalary {
		assert.NotEqual(t, "City-00", entry.Area)
		assert.NotEqual(t, "City-01", entry.Area)
	}
	// Descending order throughout.
	for i := 1; i < len(stats.TopAreasBySalary); i++ {
		assert.GreaterOrEqual(t,
			stats.TopAreasBySalary[i-1].Value,
			stats.TopAreasBySalary[i].Value)
	}
}

func TestAnalyzer_Run_TieBreakIsFirstSeenOrder(t *testing.T) {
	var records []domain.VacancyRecord
	for _, area := range []string{"Alpha", "Beta", "Gamma"} {
		for i := 0; i < 10; i++ {
			records = append(records, vacancy(2022, area, 500, false))
		}
	}

	stats, err := NewAnalyzer(nil, DefaultAnalyzerConfig()).Run(context.Background(), "Analyst", records)
	require.NoError(t, err)

	require.Len(t, stats.TopAreasBySalary, 3)
	assert.Equal(t, "Alpha", stats.TopAreasBySalary[0].Area)
	assert.Equal(t, "Beta", stats.TopAreasBySalary[1].Area)
	assert.Equal(t, "Gamma", stats.TopAreasBySalary[2].Area)
}

func TestAnalyzer_Run_ShareRounding(t *testing.T) {
	// 2 of 3 records in Moscow: share 0.6667 after rounding to 4 places.
	records := []domain.VacancyRecord{
		vacancy(2022, "Moscow", 100, false),
		vacancy(2022, "Moscow", 100, false),
		vacancy(2022, "Kazan", 100, false),
	}

	stats, err := NewAnalyzer(nil, DefaultAnalyzerConfig()).Run(context.Background(), "Analyst", records)
	require.NoError(t, err)

	require.Len(t, stats.TopAreasByShare, 2)
	assert.Equal(t, 0.6667, stats.TopAreasByShare[0].Value)
	assert.Equal(t, 0.3333, stats.TopAreasByShare[1].Value)
}

func TestAnalyzer_Run_Idempotent(t *testing.T) {
	records := []domain.VacancyRecord{
		vacancy(2007, "Moscow", 100, true),
		vacancy(2008, "Kazan", 250, false),
		vacancy(2008, "Moscow", 300, true),
	}

	analyzer := NewAnalyzer(nil, DefaultAnalyzerConfig())
	first, err := analyzer.Run(context.Background(), "Analyst", records)
	require.NoError(t, err)
	second, err := analyzer.Run(context.Background(), "Analyst", records)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAverageSalary(t *testing.T) {
	assert.Equal(t, 5, averageSalary(10, 2))
	assert.Equal(t, 3, averageSalary(10, 3)) // floored
	assert.Equal(t, 0, averageSalary(0, 0))
}
