package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "vacstat/internal/errors"
	"vacstat/pkg/contracts/domain"
)

const (
	yearSheet = "Year statistics"
	citySheet = "City statistics"

	// maxColumnWidth caps auto-sized column widths.
	maxColumnWidth = 100
)

// ExcelExporter writes the statistics workbook: one sheet of yearly
// aggregates, one sheet of ranked city aggregates.
type ExcelExporter struct {
	logger *slog.Logger
}

// NewExcelExporter creates a spreadsheet exporter.
func NewExcelExporter(logger *slog.Logger) *ExcelExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelExporter{logger: logger}
}

// Write renders stats into an xlsx workbook at path.
func (e *ExcelExporter) Write(ctx context.Context, stats *domain.Statistics, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create report directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", yearSheet); err != nil {
		return apperrors.NewStorageError("failed to name year sheet", err)
	}
	if _, err := f.NewSheet(citySheet); err != nil {
		return apperrors.NewStorageError("failed to create city sheet", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return apperrors.NewStorageError("failed to register cell styles", err)
	}

	if err := e.writeYearSheet(f, stats, styles); err != nil {
		return err
	}
	if err := e.writeCitySheet(f, stats, styles); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err)
	}

	e.logger.InfoContext(ctx, "workbook written",
		slog.String("path", path),
		slog.Int("years", len(stats.Years)),
		slog.Int("ranked_areas", len(stats.TopAreasBySalary)))

	return nil
}

// sheetStyles holds the style IDs shared by both sheets.
type sheetStyles struct {
	header  int
	cell    int
	percent int
}

func newSheetStyles(f *excelize.File) (*sheetStyles, error) {
	thin := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: thin,
	})
	if err != nil {
		return nil, err
	}
	cell, err := f.NewStyle(&excelize.Style{Border: thin})
	if err != nil {
		return nil, err
	}
	// Builtin format 10: 0.00%
	percentFmt := 10
	percent, err := f.NewStyle(&excelize.Style{Border: thin, NumFmt: percentFmt})
	if err != nil {
		return nil, err
	}

	return &sheetStyles{header: header, cell: cell, percent: percent}, nil
}

func (e *ExcelExporter) writeYearSheet(f *excelize.File, stats *domain.Statistics, styles *sheetStyles) error {
	headers := []string{
		"Year",
		"Average salary",
		"Average salary - " + stats.Profession,
		"Vacancy count",
		"Vacancy count - " + stats.Profession,
	}

	rows := make([][]interface{}, 0, len(stats.Years))
	for _, year := range stats.Years {
		rows = append(rows, []interface{}{
			year,
			stats.SalaryByYear[year],
			stats.SalaryByYearNeeded[year],
			stats.CountByYear[year],
			stats.CountByYearNeeded[year],
		})
	}

	return writeSheet(f, yearSheet, headers, rows, styles, nil)
}

func (e *ExcelExporter) writeCitySheet(f *excelize.File, stats *domain.Statistics, styles *sheetStyles) error {
	headers := []string{"City", "Salary level", "", "City", "Vacancy share"}

	height := len(stats.TopAreasBySalary)
	if len(stats.TopAreasByShare) > height {
		height = len(stats.TopAreasByShare)
	}

	rows := make([][]interface{}, height)
	for i := range rows {
		row := make([]interface{}, 5)
		if i < len(stats.TopAreasBySalary) {
			row[0] = stats.TopAreasBySalary[i].Area
			row[1] = int(stats.TopAreasBySalary[i].Value)
		}
		if i < len(stats.TopAreasByShare) {
			row[3] = stats.TopAreasByShare[i].Area
			row[4] = stats.TopAreasByShare[i].Value
		}
		rows[i] = row
	}

	// Vacancy share column renders as a percentage.
	percentCols := map[int]bool{4: true}
	return writeSheet(f, citySheet, headers, rows, styles, percentCols)
}

// writeSheet fills one sheet with a styled header row and bordered data
// rows, then auto-sizes the columns. The spacer column (empty header) is
// left unstyled.
func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}, styles *sheetStyles, percentCols map[int]bool) error {
	widths := make([]int, len(headers))

	for col, title := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return apperrors.NewStorageError("bad header coordinates", err)
		}
		if title == "" {
			continue
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return apperrors.NewStorageError("failed to write header cell", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, styles.header); err != nil {
			return apperrors.NewStorageError("failed to style header cell", err)
		}
		widths[col] = len(title)
	}

	for i, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return apperrors.NewStorageError("bad cell coordinates", err)
			}
			if value == nil {
				continue
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return apperrors.NewStorageError("failed to write cell", err)
			}
			style := styles.cell
			if percentCols[col] {
				style = styles.percent
			}
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return apperrors.NewStorageError("failed to style cell", err)
			}
			if l := len(fmt.Sprint(value)); l > widths[col] {
				widths[col] = l
			}
		}
	}

	for col, width := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return apperrors.NewStorageError("bad column number", err)
		}
		w := float64(width + 2)
		if w > maxColumnWidth {
			w = maxColumnWidth
		}
		if err := f.SetColWidth(sheet, name, name, w); err != nil {
			return apperrors.NewStorageError("failed to size column", err)
		}
	}

	return nil
}
