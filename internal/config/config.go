package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Dataset names one indicator CSV.
type Dataset struct {
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
}

// Config is the full server configuration.
type Config struct {
	Listen         string    `mapstructure:"listen"`
	Datasets       []Dataset `mapstructure:"datasets"`
	GeographyPath  string    `mapstructure:"geography_path"`
	GovernmentPath string    `mapstructure:"government_path"`
	OverridesPath  string    `mapstructure:"overrides_path"` // optional name-fix/ISO YAML
	ProjectionSeed int64     `mapstructure:"projection_seed"`
}

// Load reads configuration from file, env and defaults.
// Precedence: env (CIADASH_*) > config file > defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CIADASH")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("listen", ":8080")
	v.SetDefault("geography_path", "Datasets/geography_data.csv")
	v.SetDefault("government_path", "Datasets/government_and_civics_data.csv")
	v.SetDefault("overrides_path", "")
	v.SetDefault("projection_seed", 42)
	v.SetDefault("datasets", []map[string]interface{}{
		{"name": "Energy Analyst", "path": "Datasets/energyAnalyst.csv"},
	})

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
