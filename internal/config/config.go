// Package config loads the application configuration from an optional
// config.yaml, a .env file, and SATDOWNLOAD_-prefixed environment
// variables, and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Download    DownloadConfig    `yaml:"download" mapstructure:"download"`
	Credentials CredentialsConfig `yaml:"credentials" mapstructure:"credentials"`
	GOES16      GOES16Config      `yaml:"goes16" mapstructure:"goes16"`
	AIRS        AIRSConfig        `yaml:"airs" mapstructure:"airs"`
	Gridsat     GridsatConfig     `yaml:"gridsat" mapstructure:"gridsat"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// DownloadConfig configures the shared fetch and orchestration behavior.
type DownloadConfig struct {
	Workers     int     `yaml:"workers" mapstructure:"workers"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	HostRate    float64 `yaml:"host_rate" mapstructure:"host_rate"`
	HostBurst   int     `yaml:"host_burst" mapstructure:"host_burst"`
}

// Timeout returns the per-request timeout as a duration.
func (d DownloadConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSecs) * time.Second
}

// CredentialsConfig holds the username and password for archives that
// require an account (the AIRS EOSDIS archive). Values come from flags,
// SATDOWNLOAD_CREDENTIALS_USERNAME / _PASSWORD, or a .env file.
type CredentialsConfig struct {
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
}

// GOES16Config configures the GOES-16 imagery archive.
type GOES16Config struct {
	Bucket           string `yaml:"bucket" mapstructure:"bucket"`
	AWSRegion        string `yaml:"aws_region" mapstructure:"aws_region"`
	Endpoint         string `yaml:"endpoint" mapstructure:"endpoint"`
	Product          string `yaml:"product" mapstructure:"product"`
	ToleranceMinutes int    `yaml:"tolerance_minutes" mapstructure:"tolerance_minutes"`
}

// Tolerance returns the catalog matching tolerance.
func (g GOES16Config) Tolerance() time.Duration {
	return time.Duration(g.ToleranceMinutes) * time.Minute
}

// AIRSConfig configures the AIRS Level-3 retrieval archive.
type AIRSConfig struct {
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	ToleranceHours int    `yaml:"tolerance_hours" mapstructure:"tolerance_hours"`
}

// Tolerance returns the catalog matching tolerance.
func (a AIRSConfig) Tolerance() time.Duration {
	return time.Duration(a.ToleranceHours) * time.Hour
}

// GridsatConfig configures the Gridsat-B1 brightness-temperature archive.
// ArchiveURL is a printf format with one %d verb for the year; an ftp://
// scheme selects the FTP mirror instead of the THREDDS catalog.
type GridsatConfig struct {
	ArchiveURL     string `yaml:"archive_url" mapstructure:"archive_url"`
	ToleranceHours int    `yaml:"tolerance_hours" mapstructure:"tolerance_hours"`
}

// Tolerance returns the catalog matching tolerance.
func (g GridsatConfig) Tolerance() time.Duration {
	return time.Duration(g.ToleranceHours) * time.Hour
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from a .env file, an optional config.yaml in
// the working directory, and the environment.
func Load() (*Config, error) {
	// Credentials commonly live in a .env file; a missing file is fine.
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SATDOWNLOAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("download.workers", 1)
	v.SetDefault("download.max_retries", 3)
	v.SetDefault("download.timeout_secs", 60)
	v.SetDefault("download.user_agent", "satdownload/1.0")
	v.SetDefault("download.host_rate", 4)
	v.SetDefault("download.host_burst", 8)
	v.SetDefault("goes16.bucket", "noaa-goes16")
	v.SetDefault("goes16.aws_region", "us-east-1")
	v.SetDefault("goes16.product", "ABI-L1b-RadF")
	v.SetDefault("goes16.tolerance_minutes", 30)
	v.SetDefault("airs.base_url", "https://acdisc.gesdisc.eosdis.nasa.gov/opendap/Aqua_AIRS_Level3/AIRS3STD.006/")
	v.SetDefault("airs.tolerance_hours", 24)
	v.SetDefault("gridsat.archive_url", "https://www.ncei.noaa.gov/thredds/catalog/cdr/gridsat/%d/catalog.xml")
	v.SetDefault("gridsat.tolerance_hours", 3)

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

// InitLogger builds the global zap logger from the log configuration.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
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
