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
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	FTP       FTPConfig       `yaml:"ftp" mapstructure:"ftp"`
	Paths     PathsConfig     `yaml:"paths" mapstructure:"paths"`
	Pricing   PricingConfig   `yaml:"pricing" mapstructure:"pricing"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds the external resolution settings. A blank Key puts
// the pipeline in degraded mode: flagged cells stay unresolved.
type AnthropicConfig struct {
	Key                  string  `yaml:"key" mapstructure:"key"`
	Model                string  `yaml:"model" mapstructure:"model"`
	MaxTokens            int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxBatchSize         int     `yaml:"max_batch_size" mapstructure:"max_batch_size"`
	MinBatchSize         int     `yaml:"min_batch_size" mapstructure:"min_batch_size"`
	MaxConcurrentBatches int     `yaml:"max_concurrent_batches" mapstructure:"max_concurrent_batches"`
	RequestsPerSecond    float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// FTPConfig holds credentials for the source workbook drop server.
type FTPConfig struct {
	User        string `yaml:"user" mapstructure:"user"`
	Password    string `yaml:"password" mapstructure:"password"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// PathsConfig points at override files for the shipped tables. Blank means
// use the defaults compiled in.
type PathsConfig struct {
	Schema   string `yaml:"schema" mapstructure:"schema"`
	Tables   string `yaml:"tables" mapstructure:"tables"`
	Brands   string `yaml:"brands" mapstructure:"brands"`
	Master   string `yaml:"master" mapstructure:"master"`
	Report   string `yaml:"report" mapstructure:"report"`
	WorkDir  string `yaml:"work_dir" mapstructure:"work_dir"`
	Manifest string `yaml:"manifest" mapstructure:"manifest"`
}

// PricingConfig holds currency → EUR exchange rate overrides.
type PricingConfig struct {
	ExchangeRates map[string]float64 `yaml:"exchange_rates" mapstructure:"exchange_rates"`
}

// ServerConfig configures the report server.
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
	v.SetEnvPrefix("SHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("anthropic.key", "") // registered so SHELF_ANTHROPIC_KEY binds
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.max_batch_size", 50)
	v.SetDefault("anthropic.min_batch_size", 10)
	v.SetDefault("anthropic.max_concurrent_batches", 4)
	v.SetDefault("anthropic.requests_per_second", 2.0)
	v.SetDefault("ftp.timeout_secs", 30)
	v.SetDefault("paths.master", "master.xlsx")
	v.SetDefault("paths.report", "quality_report.json")
	v.SetDefault("paths.work_dir", "sources")
	v.SetDefault("paths.manifest", "manifest.yaml")

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
