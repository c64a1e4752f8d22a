// Package config loads host configuration from defaults, an optional file
// and MEGS_* environment variables.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/megs-sim/megs/errors"
)

// EnvPrefix is the prefix of environment variable overrides, for example
// MEGS_MODULES_ROOT.
const EnvPrefix = "MEGS"

// Config holds all host settings.
type Config struct {
	Modules  ModulesConfig  `mapstructure:"modules"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Contract ContractConfig `mapstructure:"contract"`
	Log      LogConfig      `mapstructure:"log"`
	Run      RunConfig      `mapstructure:"run"`
}

// ModulesConfig locates logic modules on disk.
type ModulesConfig struct {
	Root      string `mapstructure:"root"`
	Extension string `mapstructure:"extension"`
}

// EngineConfig configures the execution engine.
type EngineConfig struct {
	// MemoryLimitPages caps each instance's memory in 64KB pages. 0 means
	// the engine default.
	MemoryLimitPages uint32 `mapstructure:"memory_limit_pages"`
}

// ContractConfig selects the contract modules are checked against.
type ContractConfig struct {
	// File is an HCL contract manifest. Empty means the built-in contract.
	File string `mapstructure:"file"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RunConfig configures the headless runner.
type RunConfig struct {
	Ticks int `mapstructure:"ticks"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Modules: ModulesConfig{
			Root:      "assets/modules",
			Extension: ".wasm",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Run: RunConfig{Ticks: 1},
	}
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables apply. The file format follows its extension
// (yaml, toml or json).
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("modules.root", defaults.Modules.Root)
	v.SetDefault("modules.extension", defaults.Modules.Extension)
	v.SetDefault("engine.memory_limit_pages", defaults.Engine.MemoryLimitPages)
	v.SetDefault("contract.file", defaults.Contract.File)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("run.ticks", defaults.Run.Ticks)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.New(errors.PhaseConfig, errors.KindIO).
				Path(path).
				Detail("read configuration").
				Cause(err).
				Build()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that decoding alone does not constrain.
func (c *Config) Validate() error {
	if c.Modules.Root == "" {
		return errors.InvalidInput(errors.PhaseConfig, "modules.root must not be empty")
	}
	if c.Modules.Extension != "" && !strings.HasPrefix(c.Modules.Extension, ".") {
		return errors.InvalidInput(errors.PhaseConfig, "modules.extension must start with a dot")
	}
	if c.Run.Ticks < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "run.ticks must not be negative")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("log.format must be console or json").
			Value(c.Log.Format).
			Build()
	}
	return nil
}
