package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewater-labs/oceanstat/internal/config"
	"github.com/tidewater-labs/oceanstat/internal/dataset"
	"github.com/tidewater-labs/oceanstat/internal/report/plotpage"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".oceanstat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Empty(t, cfg.Case.Name)
	assert.Equal(t, config.DefaultNCDir, cfg.Output.NCDir)
	assert.Equal(t, config.DefaultStoreDir, cfg.Output.StoreDir)
	assert.Equal(t, config.DefaultHTMLDir, cfg.Output.HTMLDir)
	assert.True(t, cfg.Diags.MOC)
	assert.Equal(t, config.DefaultSurfaceVars, cfg.Diags.SurfaceVars)
	assert.Equal(t, config.DefaultForcingVars, cfg.Diags.ForcingVars)
	assert.Equal(t, config.DefaultWorkers, cfg.Runtime.Workers)
	assert.Equal(t, config.DefaultMemoryBudget, cfg.Runtime.MemoryBudget)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, config.DefaultReportTitle, cfg.Report.Title)
	assert.Equal(t, config.DefaultReportTheme, cfg.Report.Theme)
}

func TestLoad_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `case:
  name: tidecase
  run_dir: /data/tidecase/run
  start_year: 5
  end_year: 30
output:
  nc_dir: out/nc
  store_dir: out/diags
diagnostics:
  moc: false
  surface_vars:
    - tos
    - sos
runtime:
  workers: 4
  memory_budget: 8GiB
logging:
  level: debug
report:
  title: Tidecase Diagnostics
  theme: dark
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tidecase", cfg.Case.Name)
	assert.Equal(t, "/data/tidecase/run", cfg.Case.RunDir)
	assert.Equal(t, dataset.YearRange{Start: 5, End: 30}, cfg.YearRange())
	assert.Equal(t, "out/nc", cfg.Output.NCDir)
	assert.False(t, cfg.Diags.MOC)
	assert.Equal(t, []string{"tos", "sos"}, cfg.Diags.SurfaceVars)
	assert.Equal(t, 4, cfg.Runtime.Workers)
	assert.Equal(t, "Tidecase Diagnostics", cfg.Report.Title)

	theme, err := cfg.PageTheme()
	require.NoError(t, err)
	assert.Equal(t, plotpage.ThemeDark, theme)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	budget, err := cfg.MemoryBudgetBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(8*1024*1024*1024), budget)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("OCEANSTAT_RUNTIME_WORKERS", "6")
	t.Setenv("OCEANSTAT_REPORT_THEME", "dark")

	cfg, err := config.Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Runtime.Workers)
	assert.Equal(t, "dark", cfg.Report.Theme)
}

func TestLoad_MissingExplicitFile_Errors(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() config.Config {
		return config.Config{
			Runtime: config.RuntimeConfig{MemoryBudget: "1GiB"},
			Logging: config.LoggingConfig{Level: "info"},
			Report:  config.ReportConfig{Theme: "light"},
		}
	}

	tests := []struct {
		name string
		mut  func(*config.Config)
		want error
	}{
		{name: "years reversed", mut: func(c *config.Config) { c.Case.StartYear = 10; c.Case.EndYear = 5 }, want: config.ErrYearOrder},
		{name: "negative workers", mut: func(c *config.Config) { c.Runtime.Workers = -1 }, want: config.ErrBadWorkers},
		{name: "bad budget", mut: func(c *config.Config) { c.Runtime.MemoryBudget = "lots" }, want: dataset.ErrInvalidSizeFormat},
		{name: "bad theme", mut: func(c *config.Config) { c.Report.Theme = "sepia" }, want: config.ErrBadTheme},
		{name: "bad level", mut: func(c *config.Config) { c.Logging.Level = "loud" }, want: config.ErrBadLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			require.NoError(t, cfg.Validate())

			tt.mut(&cfg)
			require.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidate_UnboundedYearsAllowed(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Case:    config.CaseConfig{StartYear: 10},
		Runtime: config.RuntimeConfig{MemoryBudget: ""},
	}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, dataset.YearRange{Start: 10}, cfg.YearRange())
}
