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
	Journal    JournalConfig    `yaml:"journal" mapstructure:"journal"`
	Auth       ServiceConfig    `yaml:"auth" mapstructure:"auth"`
	DocStore   ServiceConfig    `yaml:"docstore" mapstructure:"docstore"`
	Extractor  ServiceConfig    `yaml:"extractor" mapstructure:"extractor"`
	Similarity SimilarityConfig `yaml:"similarity" mapstructure:"similarity"`
	Tags       TagsConfig       `yaml:"tags" mapstructure:"tags"`
	Risk       ServiceConfig    `yaml:"risk" mapstructure:"risk"`
	Library    ServiceConfig    `yaml:"library" mapstructure:"library"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// JournalConfig configures the local session journal backend.
type JournalConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServiceConfig holds credentials and endpoint for one remote service.
type ServiceConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SimilarityConfig holds similarity service settings.
type SimilarityConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst     int     `yaml:"burst" mapstructure:"burst"`
}

// TagsConfig holds tag service settings.
type TagsConfig struct {
	Key          string `yaml:"key" mapstructure:"key"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	CacheTTLSecs int    `yaml:"cache_ttl_secs" mapstructure:"cache_ttl_secs"`
}

// ServerConfig configures the serve-mode HTTP front-end.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
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
	v.SetEnvPrefix("WORKBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.database_url", "workbench.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("auth.base_url", "https://auth.clauselens.io")
	// Keys default to empty so AutomaticEnv can bind them without a config
	// file entry.
	for _, key := range []string{
		"auth.key", "docstore.key", "extractor.key",
		"similarity.key", "tags.key", "risk.key", "library.key",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("docstore.base_url", "https://docs.clauselens.io")
	v.SetDefault("extractor.base_url", "https://extract.clauselens.io")
	v.SetDefault("similarity.base_url", "https://similar.clauselens.io")
	v.SetDefault("similarity.rate_limit", 5)
	v.SetDefault("similarity.burst", 10)
	v.SetDefault("tags.base_url", "https://tags.clauselens.io")
	v.SetDefault("tags.cache_ttl_secs", 120)
	v.SetDefault("risk.base_url", "https://risk.clauselens.io")
	v.SetDefault("library.base_url", "https://library.clauselens.io")

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
