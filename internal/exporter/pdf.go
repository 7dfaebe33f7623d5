package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	apperrors "vacstat/internal/errors"
	"vacstat/pkg/contracts/domain"
)

// PDFExporter renders the statistics as a printable report: the year table,
// the two ranked city tables and an optional embedded chart image.
type PDFExporter struct {
	logger *slog.Logger
}

// NewPDFExporter creates a PDF report exporter.
func NewPDFExporter(logger *slog.Logger) *PDFExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExporter{logger: logger}
}

// Write renders stats into a PDF at path. chartPath may name a PNG to embed
// on the first page; pass an empty string to skip it.
func (p *PDFExporter) Write(ctx context.Context, stats *domain.Statistics, chartPath, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create report directory", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Vacancy statistics - "+stats.Profession, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, "Vacancy statistics: "+stats.Profession, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	p.yearTable(pdf, stats)

	if chartPath != "" {
		pdf.Ln(6)
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.ImageOptions(chartPath, 15, pdf.GetY(), 180, 0, false, opts, 0, "")
	}

	pdf.AddPage()
	p.cityTables(pdf, stats)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return apperrors.NewStorageError("failed to write PDF report", err)
	}

	p.logger.InfoContext(ctx, "PDF report written", slog.String("path", path))
	return nil
}

func (p *PDFExporter) yearTable(pdf *gofpdf.Fpdf, stats *domain.Statistics) {
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, "Statistics by year", "", 1, "L", false, 0, "")

	headers := []string{
		"Year",
		"Average salary",
		"Average salary - " + stats.Profession,
		"Vacancy count",
		"Vacancy count - " + stats.Profession,
	}
	widths := []float64{20, 40, 45, 40, 45}

	p.headerRow(pdf, headers, widths)

	pdf.SetFont("Arial", "", 9)
	for _, year := range stats.Years {
		cells := []string{
			strconv.Itoa(year),
			strconv.Itoa(stats.SalaryByYear[year]),
			strconv.Itoa(stats.SalaryByYearNeeded[year]),
			strconv.Itoa(stats.CountByYear[year]),
			strconv.Itoa(stats.CountByYearNeeded[year]),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 6, cell, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (p *PDFExporter) cityTables(pdf *gofpdf.Fpdf, stats *domain.Statistics) {
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, "Statistics by city", "", 1, "L", false, 0, "")

	widths := []float64{55, 35}

	p.headerRow(pdf, []string{"City", "Salary level"}, widths)
	pdf.SetFont("Arial", "", 9)
	for _, entry := range stats.TopAreasBySalary {
		pdf.CellFormat(widths[0], 6, entry.Area, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, strconv.Itoa(int(entry.Value)), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)

	p.headerRow(pdf, []string{"City", "Vacancy share"}, widths)
	pdf.SetFont("Arial", "", 9)
	for _, entry := range stats.TopAreasByShare {
		pdf.CellFormat(widths[0], 6, entry.Area, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, FormatShare(entry.Value), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
}

func (p *PDFExporter) headerRow(pdf *gofpdf.Fpdf, headers []string, widths []float64) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

// FormatShare renders a vacancy share fraction as a percentage with two
// decimal places, the way the published report displays it.
func FormatShare(share float64) string {
	return fmt.Sprintf("%.2f%%", share*100)
}
