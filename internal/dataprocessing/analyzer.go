package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"

	apperrors "vacstat/internal/errors"
	"vacstat/pkg/contracts/domain"
)

// AnalyzerConfig holds configuration options for the Analyzer.
type AnalyzerConfig struct {
	// TopAreas bounds the ranked area views.
	TopAreas int

	// MinAreaShare is the pruning threshold: an area whose vacancy share
	// is at or below it is dropped before averaging.
	MinAreaShare float64
}

// DefaultAnalyzerConfig returns the configuration the statistics were
// originally published with: top ten areas, one percent pruning threshold.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		TopAreas:     10,
		MinAreaShare: 0.01,
	}
}

// Analyzer computes yearly and geographic salary aggregates over a set of
// normalized vacancy records in a single pass per grouping dimension.
type Analyzer struct {
	logger       *slog.Logger
	topAreas     int
	minAreaShare float64
}

// NewAnalyzer creates an aggregation pipeline with the given configuration.
func NewAnalyzer(logger *slog.Logger, cfg AnalyzerConfig) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TopAreas <= 0 {
		cfg.TopAreas = 10
	}
	return &Analyzer{
		logger:       logger,
		topAreas:     cfg.TopAreas,
		minAreaShare: cfg.MinAreaShare,
	}
}

// Run builds the full statistics for one dataset: year aggregates over all
// records and over the profession-filtered subset (both zero-filled against
// the full year set), and the pruned, ranked area views.
func (a *Analyzer) Run(ctx context.Context, profession string, records []domain.VacancyRecord) (*domain.Statistics, error) {
	if len(records) == 0 {
		return nil, apperrors.NewEmptyInputError("no records to aggregate")
	}

	years := allYears(records)

	needed := make([]domain.VacancyRecord, 0, len(records))
	for _, record := range records {
		if record.Needed {
			needed = append(needed, record)
		}
	}

	salaryByYear, countByYear := a.byYear(records, years)
	salaryNeeded, countNeeded := a.byYear(needed, years)
	topSalary, topShare := a.byArea(records)

	stats := &domain.Statistics{
		Profession:         profession,
		Years:              years,
		SalaryByYear:       salaryByYear,
		CountByYear:        countByYear,
		SalaryByYearNeeded: salaryNeeded,
		CountByYearNeeded:  countNeeded,
		TopAreasBySalary:   topSalary,
		TopAreasByShare:    topShare,
	}

	a.logger.InfoContext(ctx, "aggregation complete",
		slog.Int("records", len(records)),
		slog.Int("profession_records", len(needed)),
		slog.Int("years", len(years)),
		slog.Int("ranked_areas", len(topSalary)))

	return stats, nil
}

// byYear accumulates count and average salary per year, zero-filling every
// year of the full dataset that is absent from this subset.
func (a *Analyzer) byYear(records []domain.VacancyRecord, allYears []int) (avg, count map[int]int) {
	sum := make(map[int]float64, len(allYears))
	count = make(map[int]int, len(allYears))

	for _, record := range records {
		sum[record.Year] += record.Salary.Reference
		count[record.Year]++
	}

	for _, year := range allYears {
		if _, ok := count[year]; !ok {
			sum[year] = 0
			count[year] = 0
		}
	}

	avg = make(map[int]int, len(count))
	for year, n := range count {
		avg[year] = averageSalary(sum[year], n)
	}
	return avg, count
}

// byArea accumulates per-area aggregates, prunes areas whose share of the
// input is at or below the threshold, and ranks the survivors. Pruning
// happens before averaging; area aggregates are never zero-filled.
func (a *Analyzer) byArea(records []domain.VacancyRecord) (topSalary, topShare []domain.AreaEntry) {
	var order []string
	sum := make(map[string]float64)
	count := make(map[string]int)

	for _, record := range records {
		if _, ok := count[record.AreaName]; !ok {
			order = append(order, record.AreaName)
		}
		sum[record.AreaName] += record.Salary.Reference
		count[record.AreaName]++
	}

	total := float64(len(records))
	salaries := make([]domain.AreaEntry, 0, len(order))
	shares := make([]domain.AreaEntry, 0, len(order))
	for _, area := range order {
		share := float64(count[area]) / total
		if share <= a.minAreaShare {
			continue
		}
		salaries = append(salaries, domain.AreaEntry{
			Area:  area,
			Value: float64(averageSalary(sum[area], count[area])),
		})
		shares = append(shares, domain.AreaEntry{
			Area:  area,
			Value: math.Round(share*10000) / 10000,
		})
	}

	return rankTop(salaries, a.topAreas), rankTop(shares, a.topAreas)
}

// averageSalary computes floor(sum/count), or 0 when the bucket is empty.
func averageSalary(sum float64, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Floor(sum / float64(count)))
}

// rankTop sorts entries by value descending and keeps the first n. The
// sort is stable so ties keep their first-seen order.
func rankTop(entries []domain.AreaEntry, n int) []domain.AreaEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// allYears returns the sorted set of years present in the records.
func allYears(records []domain.VacancyRecord) []int {
	seen := make(map[int]bool)
	var years []int
	for _, record := range records {
		if !seen[record.Year] {
			seen[record.Year] = true
			years = append(years, record.Year)
		}
	}
	sort.Ints(years)
	return years
}
