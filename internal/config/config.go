// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/prospector/internal/enrich"
	"github.com/sells-group/prospector/internal/scheduler"
	"github.com/sells-group/prospector/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig      `yaml:"store" mapstructure:"store"`
	Serper    SerperConfig     `yaml:"serper" mapstructure:"serper"`
	Brave     BraveConfig      `yaml:"brave" mapstructure:"brave"`
	Enrich    enrich.Config    `yaml:"enrich" mapstructure:"enrich"`
	Scheduler scheduler.Config `yaml:"scheduler" mapstructure:"scheduler"`
	Server    ServerConfig     `yaml:"server" mapstructure:"server"`
	Log       LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string            `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string            `yaml:"database_url" mapstructure:"database_url"`
	Pool        *store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// SerperConfig holds Serper.dev search API settings.
type SerperConfig struct {
	Key        string `yaml:"key" mapstructure:"key"`
	DailyLimit int    `yaml:"daily_limit" mapstructure:"daily_limit"`
}

// BraveConfig holds Brave Search API settings.
type BraveConfig struct {
	Key        string `yaml:"key" mapstructure:"key"`
	DailyLimit int    `yaml:"daily_limit" mapstructure:"daily_limit"`
}

// ServerConfig configures the HTTP server and scheduled batches.
type ServerConfig struct {
	Port          int    `yaml:"port" mapstructure:"port"`
	BatchSchedule string `yaml:"batch_schedule" mapstructure:"batch_schedule"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// BudgetLimits maps each provider with a configured credential to its
// daily call limit. Providers without a key are simply never consulted.
func (c *Config) BudgetLimits() map[string]int {
	limits := make(map[string]int, 2)
	if c.Serper.Key != "" {
		limits["serper"] = c.Serper.DailyLimit
	}
	if c.Brave.Key != "" {
		limits["brave"] = c.Brave.DailyLimit
	}
	return limits
}

// Validate checks the configuration for the given run mode. Modes map
// to CLI commands: "enrich" and "batch" need a database; "serve"
// additionally needs a listen port.
func (c *Config) Validate(mode string) error {
	var problems []string

	requireDB := func() {
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	}

	switch mode {
	case "enrich", "batch":
		requireDB()
	case "serve":
		requireDB()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Enrich.MaxRounds < 0 || c.Enrich.MaxRounds > 10 {
		problems = append(problems, "enrich.max_rounds must be between 0 and 10")
	}
	if c.Scheduler.BatchSize < 0 || c.Scheduler.BatchSize > 500 {
		problems = append(problems, "scheduler.batch_size must be between 0 and 500")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROSPECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "prospector.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.batch_schedule", "0 6 * * *")
	v.SetDefault("serper.daily_limit", 100)
	v.SetDefault("brave.daily_limit", 50)
	v.SetDefault("enrich.max_rounds", 5)
	v.SetDefault("enrich.target_completeness", 80)
	v.SetDefault("enrich.gaps_per_round", 3)
	v.SetDefault("enrich.call_delay", "500ms")
	v.SetDefault("scheduler.batch_size", 20)
	v.SetDefault("scheduler.target_completeness", 80)
	v.SetDefault("scheduler.cooldown_days", 7)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
