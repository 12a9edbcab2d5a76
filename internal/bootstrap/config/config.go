package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"surveydq/internal/bootstrap/logging"
	"surveydq/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	DQ       DQConfig       `mapstructure:"dq"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// DQConfig carries the data-quality thresholds. Values are injected into the
// detector and rule checkers at construction, never read from globals.
type DQConfig struct {
	TimeWindowHours    int    `mapstructure:"time_window_hours"`
	MinDurationMinutes int    `mapstructure:"min_duration_minutes"`
	MaxDelayDays       int    `mapstructure:"max_delay_days"`
	Timezone           string `mapstructure:"timezone"`
	Limit              int    `mapstructure:"limit"`
	ResolveMissing     bool   `mapstructure:"resolve_missing"`
	ReportDir          string `mapstructure:"report_dir"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SDQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Int("dq_time_window_hours", cfg.DQ.TimeWindowHours),
	)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "surveydq")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".data/surveydq.sqlite")
	v.SetDefault("dq.time_window_hours", 24)
	v.SetDefault("dq.min_duration_minutes", 15)
	v.SetDefault("dq.max_delay_days", 2)
	v.SetDefault("dq.timezone", "Local")
	v.SetDefault("dq.limit", 0)
	v.SetDefault("dq.resolve_missing", true)
	v.SetDefault("dq.report_dir", "reports")
}
