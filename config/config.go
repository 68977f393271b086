package config

import (
	"log/slog"
	"net"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	DefaultFailureThreshold = 5
	DefaultSuccessThreshold = 2
	DefaultTimeout          = "30s"
	DefaultResetTimeout     = "60s"
)

// DefaultCategories are the model-invocation categories guarded when the
// deployment does not configure its own set.
var DefaultCategories = []string{"crossover", "mutation", "evaluation", "variant_generation"}

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type BreakerConfig struct {
	FailureThreshold int      `mapstructure:"failure_threshold"`
	SuccessThreshold int      `mapstructure:"success_threshold"`
	Timeout          string   `mapstructure:"timeout"`
	ResetTimeout     string   `mapstructure:"reset_timeout"`
	Categories       []string `mapstructure:"categories"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Breaker BreakerConfig `mapstructure:"breaker"`
	Logging LoggingConfig `mapstructure:"logging"`
}

func Load() (*Config, error) {
	viper.SetDefault("server.environment", EnvDev)
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("breaker.failure_threshold", DefaultFailureThreshold)
	viper.SetDefault("breaker.success_threshold", DefaultSuccessThreshold)
	viper.SetDefault("breaker.timeout", DefaultTimeout)
	viper.SetDefault("breaker.reset_timeout", DefaultResetTimeout)
	viper.SetDefault("breaker.categories", DefaultCategories)
	viper.SetDefault("logging.level", LogLevelInfo)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Info("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	cfg.sanitize()

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

// sanitize replaces absent or invalid breaker tunables with their defaults.
// A bad tunable is an operator mistake worth a warning, not a failed startup.
func (c *Config) sanitize() {
	if c.Breaker.FailureThreshold <= 0 {
		slog.Warn("invalid breaker.failure_threshold, using default",
			slog.Int("value", c.Breaker.FailureThreshold),
			slog.Int("default", DefaultFailureThreshold))
		c.Breaker.FailureThreshold = DefaultFailureThreshold
	}

	if c.Breaker.SuccessThreshold <= 0 {
		slog.Warn("invalid breaker.success_threshold, using default",
			slog.Int("value", c.Breaker.SuccessThreshold),
			slog.Int("default", DefaultSuccessThreshold))
		c.Breaker.SuccessThreshold = DefaultSuccessThreshold
	}

	if d, err := time.ParseDuration(c.Breaker.Timeout); err != nil || d <= 0 {
		slog.Warn("invalid breaker.timeout, using default",
			slog.String("value", c.Breaker.Timeout),
			slog.String("default", DefaultTimeout))
		c.Breaker.Timeout = DefaultTimeout
	}

	if d, err := time.ParseDuration(c.Breaker.ResetTimeout); err != nil || d <= 0 {
		slog.Warn("invalid breaker.reset_timeout, using default",
			slog.String("value", c.Breaker.ResetTimeout),
			slog.String("default", DefaultResetTimeout))
		c.Breaker.ResetTimeout = DefaultResetTimeout
	}

	if len(c.Breaker.Categories) == 0 {
		c.Breaker.Categories = DefaultCategories
	}
}

// TimeoutDuration returns the parsed primary-call timeout. Call after Load;
// sanitize guarantees the value parses.
func (b BreakerConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(b.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultTimeout)
	}
	return d
}

// ResetTimeoutDuration returns the parsed open-state reset timeout.
func (b BreakerConfig) ResetTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(b.ResetTimeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultResetTimeout)
	}
	return d
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.Breaker,
			validation.Required,
			validation.By(func(value interface{}) error {
				bc, ok := value.(BreakerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a BreakerConfig")
				}
				return validation.ValidateStruct(&bc,
					validation.Field(&bc.Categories,
						validation.Required,
						validation.Length(1, 0),
						validation.Each(validation.Required, validation.By(validateCategory)),
					),
				)
			}),
		),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateCategory(value interface{}) error {
	category, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if strings.TrimSpace(category) == "" {
		return validation.NewError("validation_empty_category", "category cannot be blank")
	}

	return nil
}
