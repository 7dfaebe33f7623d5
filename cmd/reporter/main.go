// Command reporter runs the vacancy statistics pipeline: it ingests the
// vacancy CSV, aggregates salaries by year and area, and writes the xlsx
// workbook, the chart images and the PDF report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"vacstat/internal/config"
	"vacstat/internal/dataprocessing"
	"vacstat/internal/exporter"
	"vacstat/internal/infrastructure"
	"vacstat/pkg/contracts"
)

const (
	formatTable  = "table"
	formatReport = "report"
)

func main() {
	inPath := flag.String("in", "", "input vacancy CSV (defaults to the configured path)")
	outDir := flag.String("out", "", "output directory for report artifacts (defaults to the configured path)")
	profession := flag.String("profession", "", "target profession substring (defaults to the configured value)")
	configPath := flag.String("config", "", "path to a YAML config file")
	format := flag.String("format", formatReport, "output format: table (xlsx only) or report (xlsx, charts and PDF)")
	strict := flag.Bool("strict", false, "abort on unknown currency or malformed year instead of skipping")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionString())
		return
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Flags override configuration.
	if *inPath != "" {
		cfg.Input.Path = *inPath
	}
	if *outDir != "" {
		cfg.Report.OutputDir = *outDir
	}
	if *profession != "" {
		cfg.Input.TargetProfession = *profession
	}
	if *strict {
		cfg.Pipeline.Strict = true
	}
	if *format != formatTable && *format != formatReport {
		slog.Error("unknown format", "format", *format)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.NewRunContext(context.Background())

	logger.InfoContext(ctx, "starting vacancy statistics pipeline",
		slog.String("version", contracts.Version),
		slog.String("input", cfg.Input.Path),
		slog.String("profession", cfg.Input.TargetProfession),
		slog.String("output_dir", cfg.Report.OutputDir),
		slog.String("format", *format))

	if err := run(ctx, logger, cfg, *format); err != nil {
		logger.ErrorContext(ctx, "pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "pipeline finished")
}

// run executes the whole pipeline under the given configuration.
func run(ctx context.Context, logger *slog.Logger, cfg *config.Config, format string) error {
	reader := dataprocessing.NewReader(logger)
	table, dropped, err := reader.Read(ctx, cfg.Input.Path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if dropped.Dropped > 0 {
		logger.WarnContext(ctx, "malformed rows dropped during ingestion",
			slog.Int("dropped", dropped.Dropped),
			slog.Int("scanned", dropped.Scanned))
	}

	normalizer := dataprocessing.NewNormalizer(logger, dataprocessing.NormalizerConfig{
		CurrencyRates:    cfg.Pipeline.CurrencyRates,
		TargetProfession: cfg.Input.TargetProfession,
		Strict:           cfg.Pipeline.Strict,
	})
	records, skipped, err := normalizer.Records(ctx, table)
	if err != nil {
		return fmt.Errorf("normalize records: %w", err)
	}
	if skipped.Total() > 0 {
		logger.WarnContext(ctx, "records skipped during normalization",
			slog.Int("unknown_currency", skipped.UnknownCurrency),
			slog.Int("malformed_year", skipped.MalformedYear),
			slog.Int("bad_salary_bound", skipped.BadSalaryBound))
	}

	analyzer := dataprocessing.NewAnalyzer(logger, dataprocessing.AnalyzerConfig{
		TopAreas:     cfg.Pipeline.TopAreas,
		MinAreaShare: cfg.Pipeline.MinAreaShare,
	})
	stats, err := analyzer.Run(ctx, cfg.Input.TargetProfession, records)
	if err != nil {
		return fmt.Errorf("aggregate records: %w", err)
	}

	excelPath := filepath.Join(cfg.Report.OutputDir, cfg.Report.ExcelFile)
	if err := exporter.NewExcelExporter(logger).Write(ctx, stats, excelPath); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	if format == formatTable {
		return nil
	}

	chartPaths, err := exporter.NewChartExporter(logger).Write(ctx, stats,
		cfg.Report.OutputDir, cfg.Report.ChartPrefix)
	if err != nil {
		return fmt.Errorf("write charts: %w", err)
	}

	pdfPath := filepath.Join(cfg.Report.OutputDir, cfg.Report.PDFFile)
	if err := exporter.NewPDFExporter(logger).Write(ctx, stats, chartPaths[0], pdfPath); err != nil {
		return fmt.Errorf("write PDF report: %w", err)
	}

	return nil
}
