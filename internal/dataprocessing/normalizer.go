package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	apperrors "vacstat/internal/errors"
	"vacstat/pkg/contracts/domain"
)

// NormalizerConfig holds configuration options for the Normalizer.
type NormalizerConfig struct {
	// CurrencyRates maps a currency code to its conversion rate into the
	// reference currency.
	CurrencyRates map[string]float64

	// TargetProfession marks records whose name contains it (case-sensitive
	// substring match).
	TargetProfession string

	// Strict aborts normalization on the first bad record instead of
	// skipping and counting it.
	Strict bool
}

// SkipReport counts records the normalizer rejected and why.
type SkipReport struct {
	UnknownCurrency int
	MalformedYear   int
	BadSalaryBound  int
}

// Total returns the number of skipped records.
func (r *SkipReport) Total() int {
	return r.UnknownCurrency + r.MalformedYear + r.BadSalaryBound
}

func (r *SkipReport) count(err error) {
	switch {
	case apperrors.IsType(err, apperrors.ErrTypeUnknownCurrency):
		r.UnknownCurrency++
	case apperrors.IsType(err, apperrors.ErrTypeMalformedYear):
		r.MalformedYear++
	default:
		r.BadSalaryBound++
	}
}

// Normalizer turns raw CSV rows into typed vacancy records with salaries
// converted into the reference currency.
type Normalizer struct {
	logger     *slog.Logger
	rates      map[string]float64
	profession string
	strict     bool
}

// NewNormalizer creates a record normalizer with the given configuration.
func NewNormalizer(logger *slog.Logger, cfg NormalizerConfig) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		logger:     logger,
		rates:      cfg.CurrencyRates,
		profession: cfg.TargetProfession,
		strict:     cfg.Strict,
	}
}

// Records normalizes every row of the table. Records with an unknown
// currency, a malformed publication year or a non-numeric salary bound are
// skipped and counted, or abort the run in strict mode.
func (n *Normalizer) Records(ctx context.Context, table *Table) ([]domain.VacancyRecord, *SkipReport, error) {
	records := make([]domain.VacancyRecord, 0, len(table.Rows))
	report := &SkipReport{}

	for i := range table.Rows {
		record, err := n.Record(table.Row(i))
		if err != nil {
			if n.strict {
				return nil, report, err
			}
			report.count(err)
			n.logger.WarnContext(ctx, "skipping record",
				slog.Int("row", i+1),
				slog.String("error", err.Error()))
			continue
		}
		records = append(records, record)
	}

	n.logger.InfoContext(ctx, "records normalized",
		slog.Int("accepted", len(records)),
		slog.Int("skipped", report.Total()))

	return records, report, nil
}

// Record normalizes a single raw row.
func (n *Normalizer) Record(row map[string]string) (domain.VacancyRecord, error) {
	salary, err := NewSalary(row, n.rates)
	if err != nil {
		return domain.VacancyRecord{}, err
	}

	year, err := publishedYear(row["published_at"])
	if err != nil {
		return domain.VacancyRecord{}, err
	}

	return domain.VacancyRecord{
		Name:        row["name"],
		AreaName:    row["area_name"],
		PublishedAt: row["published_at"],
		Year:        year,
		Salary:      salary,
		Needed:      strings.Contains(row["name"], n.profession),
	}, nil
}

// NewSalary derives a normalized salary from a raw row. Bounds are floored
// before averaging; the average itself is converted unfloored.
func NewSalary(row map[string]string, rates map[string]float64) (domain.NormalizedSalary, error) {
	from, err := salaryBound(row, "salary_from")
	if err != nil {
		return domain.NormalizedSalary{}, err
	}
	to, err := salaryBound(row, "salary_to")
	if err != nil {
		return domain.NormalizedSalary{}, err
	}

	currency := row["salary_currency"]
	rate, ok := rates[currency]
	if !ok {
		return domain.NormalizedSalary{}, apperrors.NewUnknownCurrencyError(currency)
	}

	average := float64(from+to) / 2
	return domain.NormalizedSalary{
		From:      from,
		To:        to,
		Currency:  currency,
		Average:   average,
		Reference: average * rate,
	}, nil
}

// salaryBound parses one salary bound and floors it to a whole unit.
func salaryBound(row map[string]string, column string) (int, error) {
	raw := row[column]
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.NewParsingError(
			"salary bound "+column+" is not numeric", err).
			WithContext(column, raw)
	}
	return int(math.Floor(value)), nil
}

// publishedYear extracts the leading four characters of the publication
// date as a year.
func publishedYear(publishedAt string) (int, error) {
	if len(publishedAt) < 4 {
		return 0, apperrors.NewMalformedYearError(publishedAt, nil)
	}
	year, err := strconv.Atoi(publishedAt[:4])
	if err != nil {
		return 0, apperrors.NewMalformedYearError(publishedAt, err)
	}
	return year, nil
}
