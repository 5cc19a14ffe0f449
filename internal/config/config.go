package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Vision      VisionConfig      `yaml:"vision" mapstructure:"vision"`
	Canonical   CanonicalConfig   `yaml:"canonical" mapstructure:"canonical"`
	Suggest     SuggestConfig     `yaml:"suggest" mapstructure:"suggest"`
	Classify    ClassifyConfig    `yaml:"classify" mapstructure:"classify"`
	Sufficiency SufficiencyConfig `yaml:"sufficiency" mapstructure:"sufficiency"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// VisionConfig configures the vision detection service client.
type VisionConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	Key            string  `yaml:"key" mapstructure:"key"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// CanonicalConfig configures label canonicalization.
type CanonicalConfig struct {
	SimilarityFloor float64 `yaml:"similarity_floor" mapstructure:"similarity_floor"`
}

// SuggestConfig configures alternative suggestions.
type SuggestConfig struct {
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" mapstructure:"fuzzy_threshold"`
}

// ClassifyConfig configures detection classification.
type ClassifyConfig struct {
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency"`
}

// SufficiencyConfig configures sufficiency checks.
type SufficiencyConfig struct {
	SnapshotPath string `yaml:"snapshot_path" mapstructure:"snapshot_path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PANTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "pantry.db")
	v.SetDefault("vision.base_url", "http://localhost:9090")
	v.SetDefault("vision.timeout_secs", 30)
	v.SetDefault("vision.requests_per_sec", 2.0)
	v.SetDefault("canonical.similarity_floor", 0.75)
	v.SetDefault("suggest.fuzzy_threshold", 0.6)
	v.SetDefault("classify.max_concurrency", 8)
	v.SetDefault("sufficiency.snapshot_path", "inventory-snapshot.json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks that the configuration is usable for a given mode.
// Modes gate which sections are required: "analyze" needs the vision
// service, "serve" needs a listen port, everything needs a store.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			problems = append(problems, "store.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	if c.Canonical.SimilarityFloor < 0 || c.Canonical.SimilarityFloor > 1 {
		problems = append(problems, "canonical.similarity_floor must be between 0 and 1")
	}
	if c.Suggest.FuzzyThreshold < 0 || c.Suggest.FuzzyThreshold > 1 {
		problems = append(problems, "suggest.fuzzy_threshold must be between 0 and 1")
	}
	if c.Classify.MaxConcurrency < 1 || c.Classify.MaxConcurrency > 64 {
		problems = append(problems, "classify.max_concurrency must be between 1 and 64")
	}

	switch mode {
	case "analyze":
		if c.Vision.BaseURL == "" {
			problems = append(problems, "vision.base_url is required")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "offline":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
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
