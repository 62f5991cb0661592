// Package config loads and validates oceanstat settings from a YAML file,
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidewater-labs/oceanstat/internal/dataset"
	"github.com/tidewater-labs/oceanstat/internal/report/plotpage"
)

// Sentinel validation errors.
var (
	// ErrYearOrder indicates a start year after the end year.
	ErrYearOrder = errors.New("start year must not be after end year")

	// ErrBadWorkers indicates a negative worker count.
	ErrBadWorkers = errors.New("workers must not be negative")

	// ErrBadTheme indicates a report theme other than light or dark.
	ErrBadTheme = errors.New("theme must be light or dark")

	// ErrBadLogLevel indicates an unknown log level name.
	ErrBadLogLevel = errors.New("log level must be debug, info, warn, or error")
)

// Config holds all settings of one oceanstat invocation.
type Config struct {
	Case    CaseConfig    `mapstructure:"case"`
	Output  OutputConfig  `mapstructure:"output"`
	Diags   DiagsConfig   `mapstructure:"diagnostics"`
	Runtime RuntimeConfig `mapstructure:"runtime"`
	Logging LoggingConfig `mapstructure:"logging"`
	Report  ReportConfig  `mapstructure:"report"`
}

// CaseConfig identifies the model case and bounds the years to analyze.
// Zero years leave that side unbounded.
type CaseConfig struct {
	Name      string `mapstructure:"name"`
	RunDir    string `mapstructure:"run_dir"`
	StartYear int    `mapstructure:"start_year"`
	EndYear   int    `mapstructure:"end_year"`
}

// OutputConfig locates everything a run writes.
type OutputConfig struct {
	NCDir    string `mapstructure:"nc_dir"`
	StoreDir string `mapstructure:"store_dir"`
	HTMLDir  string `mapstructure:"html_dir"`
}

// DiagsConfig selects the diagnostics to run and their variables.
type DiagsConfig struct {
	MOC         bool     `mapstructure:"moc"`
	SurfaceVars []string `mapstructure:"surface_vars"`
	ForcingVars []string `mapstructure:"forcing_vars"`
}

// RuntimeConfig tunes the file-reading pool. Zero workers sizes the pool
// from the memory budget.
type RuntimeConfig struct {
	Workers      int    `mapstructure:"workers"`
	MemoryBudget string `mapstructure:"memory_budget"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// ReportConfig controls the HTML renderer.
type ReportConfig struct {
	Title string `mapstructure:"title"`
	Theme string `mapstructure:"theme"`
}

// Validate checks the well-formedness of the loaded settings. Presence of
// the case name and run directory is enforced by the commands that need
// them, so flags can supply either one.
func (c *Config) Validate() error {
	if c.Case.StartYear != 0 && c.Case.EndYear != 0 && c.Case.StartYear > c.Case.EndYear {
		return fmt.Errorf("%w: %d > %d", ErrYearOrder, c.Case.StartYear, c.Case.EndYear)
	}

	if c.Runtime.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrBadWorkers, c.Runtime.Workers)
	}

	_, err := dataset.ParseBudget(c.Runtime.MemoryBudget)
	if err != nil {
		return err
	}

	_, err = c.PageTheme()
	if err != nil {
		return err
	}

	_, err = c.LogLevel()

	return err
}

// YearRange returns the configured year selection.
func (c *Config) YearRange() dataset.YearRange {
	return dataset.YearRange{Start: c.Case.StartYear, End: c.Case.EndYear}
}

// MemoryBudgetBytes returns the parsed memory budget, zero for unlimited.
func (c *Config) MemoryBudgetBytes() (int64, error) {
	return dataset.ParseBudget(c.Runtime.MemoryBudget)
}

// PageTheme maps the configured theme name onto the report theme.
func (c *Config) PageTheme() (plotpage.Theme, error) {
	switch c.Report.Theme {
	case string(plotpage.ThemeLight), "":
		return plotpage.ThemeLight, nil
	case string(plotpage.ThemeDark):
		return plotpage.ThemeDark, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrBadTheme, c.Report.Theme)
	}
}

// LogLevel maps the configured level name onto a slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrBadLogLevel, c.Logging.Level)
	}
}
