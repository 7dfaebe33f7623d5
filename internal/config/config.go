package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Input    InputConfig    `yaml:"input" envconfig:"INPUT"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Report   ReportConfig   `yaml:"report" envconfig:"REPORT"`
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// InputConfig describes the vacancy CSV to ingest
type InputConfig struct {
	Path             string `yaml:"path" envconfig:"PATH" default:"vacancies_by_year.csv" validate:"required"`
	TargetProfession string `yaml:"target_profession" envconfig:"TARGET_PROFESSION" default:"Analyst" validate:"required"`
}

// PipelineConfig controls aggregation behavior
type PipelineConfig struct {
	// CurrencyRates maps a salary currency code to its conversion rate
	// into the reference currency.
	CurrencyRates map[string]float64 `yaml:"currency_rates" envconfig:"CURRENCY_RATES" validate:"required,min=1"`

	// Strict aborts the run on an unknown currency or malformed year
	// instead of skipping and counting the record.
	Strict bool `yaml:"strict" envconfig:"STRICT" default:"false"`

	// TopAreas bounds the ranked area views.
	TopAreas int `yaml:"top_areas" envconfig:"TOP_AREAS" default:"10" validate:"min=1"`

	// MinAreaShare is the pruning threshold: areas whose vacancy share is
	// at or below it are dropped before averaging.
	MinAreaShare float64 `yaml:"min_area_share" envconfig:"MIN_AREA_SHARE" default:"0.01" validate:"gte=0,lt=1"`
}

// ReportConfig describes where report artifacts are written
type ReportConfig struct {
	OutputDir   string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"reports" validate:"required"`
	ExcelFile   string `yaml:"excel_file" envconfig:"EXCEL_FILE" default:"report.xlsx"`
	ChartPrefix string `yaml:"chart_prefix" envconfig:"CHART_PREFIX" default:"graph"`
	PDFFile     string `yaml:"pdf_file" envconfig:"PDF_FILE" default:"report.pdf"`
}

// DatabaseConfig configures the currency table loader utility
type DatabaseConfig struct {
	Path        string `yaml:"path" envconfig:"PATH" default:"currencies.db"`
	Table       string `yaml:"table" envconfig:"TABLE" default:"currency_rates"`
	CurrencyCSV string `yaml:"currency_csv" envconfig:"CURRENCY_CSV" default:"currencies.csv"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/vacstat.log"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom loads configuration from the given YAML file (may be empty for
// env-only configuration), applies environment overrides and validates the
// result.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		mergeConfigs(cfg, fileCfg)
	}

	// Environment variables take precedence over the file
	if err := envconfig.Process("VACSTAT", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// fileConfig mirrors Config for YAML decoding. Pointer fields distinguish
// an absent key from an explicit zero value, so a file can set knobs like
// min_area_share to 0 or override a default back to false.
type fileConfig struct {
	Input struct {
		Path             *string `yaml:"path"`
		TargetProfession *string `yaml:"target_profession"`
	} `yaml:"input"`
	Pipeline struct {
		CurrencyRates map[string]float64 `yaml:"currency_rates"`
		Strict        *bool              `yaml:"strict"`
		TopAreas      *int               `yaml:"top_areas"`
		MinAreaShare  *float64           `yaml:"min_area_share"`
	} `yaml:"pipeline"`
	Report struct {
		OutputDir   *string `yaml:"output_dir"`
		ExcelFile   *string `yaml:"excel_file"`
		ChartPrefix *string `yaml:"chart_prefix"`
		PDFFile     *string `yaml:"pdf_file"`
	} `yaml:"report"`
	Database struct {
		Path        *string `yaml:"path"`
		Table       *string `yaml:"table"`
		CurrencyCSV *string `yaml:"currency_csv"`
	} `yaml:"database"`
	Logging struct {
		Level    *string `yaml:"level"`
		Format   *string `yaml:"format"`
		Output   *string `yaml:"output"`
		FilePath *string `yaml:"file_path"`
	} `yaml:"logging"`
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*fileConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs overlays every value the file actually sets onto the
// defaults.
func mergeConfigs(dst *Config, file *fileConfig) {
	if file.Input.Path != nil {
		dst.Input.Path = *file.Input.Path
	}
	if file.Input.TargetProfession != nil {
		dst.Input.TargetProfession = *file.Input.TargetProfession
	}
	if len(file.Pipeline.CurrencyRates) > 0 {
		dst.Pipeline.CurrencyRates = file.Pipeline.CurrencyRates
	}
	if file.Pipeline.Strict != nil {
		dst.Pipeline.Strict = *file.Pipeline.Strict
	}
	if file.Pipeline.TopAreas != nil {
		dst.Pipeline.TopAreas = *file.Pipeline.TopAreas
	}
	if file.Pipeline.MinAreaShare != nil {
		dst.Pipeline.MinAreaShare = *file.Pipeline.MinAreaShare
	}
	if file.Report.OutputDir != nil {
		dst.Report.OutputDir = *file.Report.OutputDir
	}
	if file.Report.ExcelFile != nil {
		dst.Report.ExcelFile = *file.Report.ExcelFile
	}
	if file.Report.ChartPrefix != nil {
		dst.Report.ChartPrefix = *file.Report.ChartPrefix
	}
	if file.Report.PDFFile != nil {
		dst.Report.PDFFile = *file.Report.PDFFile
	}
	if file.Database.Path != nil {
		dst.Database.Path = *file.Database.Path
	}
	if file.Database.Table != nil {
		dst.Database.Table = *file.Database.Table
	}
	if file.Database.CurrencyCSV != nil {
		dst.Database.CurrencyCSV = *file.Database.CurrencyCSV
	}
	if file.Logging.Level != nil {
		dst.Logging.Level = *file.Logging.Level
	}
	if file.Logging.Format != nil {
		dst.Logging.Format = *file.Logging.Format
	}
	if file.Logging.Output != nil {
		dst.Logging.Output = *file.Logging.Output
	}
	if file.Logging.FilePath != nil {
		dst.Logging.FilePath = *file.Logging.FilePath
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	for code, rate := range c.Pipeline.CurrencyRates {
		if rate <= 0 {
			return fmt.Errorf("currency rate for %q must be positive, got %v", code, rate)
		}
	}

	// JSON is the only supported log format
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	return nil
}

// findConfigFile returns the path to the config file
func findConfigFile() string {
	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use defaults and env vars only
}

// Default returns default configuration. The currency table matches the
// static rates the statistics were originally published with.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Path:             "vacancies_by_year.csv",
			TargetProfession: "Analyst",
		},
		Pipeline: PipelineConfig{
			CurrencyRates: map[string]float64{
				"AZN": 35,
				"BYR": 23.91,
				"EUR": 59.90,
				"GEL": 21.74,
				"KGS": 0.76,
				"KZT": 0.13,
				"RUR": 1,
				"UAH": 1.64,
				"USD": 60.66,
				"UZS": 0.0055,
			},
			Strict:       false,
			TopAreas:     10,
			MinAreaShare: 0.01,
		},
		Report: ReportConfig{
			OutputDir:   "reports",
			ExcelFile:   "report.xlsx",
			ChartPrefix: "graph",
			PDFFile:     "report.pdf",
		},
		Database: DatabaseConfig{
			Path:        "currencies.db",
			Table:       "currency_rates",
			CurrencyCSV: "currencies.csv",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/vacstat.log",
		},
	}
}
