package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".oceanstat"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for oceanstat settings.
const envPrefix = "OCEANSTAT"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// Load reads configuration from file, env vars, and defaults. If configPath
// is non-empty it is used as the explicit config file path; otherwise the
// config file is searched in CWD and $HOME. A missing config file is not an
// error; defaults are used.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("case.name", "")
	viperCfg.SetDefault("case.run_dir", "")
	viperCfg.SetDefault("case.start_year", 0)
	viperCfg.SetDefault("case.end_year", 0)

	viperCfg.SetDefault("output.nc_dir", DefaultNCDir)
	viperCfg.SetDefault("output.store_dir", DefaultStoreDir)
	viperCfg.SetDefault("output.html_dir", DefaultHTMLDir)

	viperCfg.SetDefault("diagnostics.moc", DefaultMOC)
	viperCfg.SetDefault("diagnostics.surface_vars", DefaultSurfaceVars)
	viperCfg.SetDefault("diagnostics.forcing_vars", DefaultForcingVars)

	viperCfg.SetDefault("runtime.workers", DefaultWorkers)
	viperCfg.SetDefault("runtime.memory_budget", DefaultMemoryBudget)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)

	viperCfg.SetDefault("report.title", DefaultReportTitle)
	viperCfg.SetDefault("report.theme", DefaultReportTheme)
}
