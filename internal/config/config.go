// Package config loads server settings from flags, SHOPLIST_* environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "SHOPLIST"

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type BackupConfig struct {
	Dir        string        `mapstructure:"dir"`
	Passphrase string        `mapstructure:"passphrase"`
	Interval   time.Duration `mapstructure:"interval"`
	Retention  time.Duration `mapstructure:"retention"`
	S3         S3Config      `mapstructure:"s3"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Period   time.Duration `mapstructure:"period"`
}

type Config struct {
	Port      string          `mapstructure:"port"`
	DBPath    string          `mapstructure:"db_path"`
	Log       LogConfig       `mapstructure:"log"`
	Backup    BackupConfig    `mapstructure:"backup"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "shoplist.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("backup.dir", "backups")
	v.SetDefault("backup.passphrase", "")
	v.SetDefault("backup.interval", time.Duration(0))
	v.SetDefault("backup.retention", 30*24*time.Hour)
	v.SetDefault("backup.s3.endpoint", "")
	v.SetDefault("backup.s3.bucket", "")
	v.SetDefault("backup.s3.region", "auto")
	v.SetDefault("backup.s3.access_key", "")
	v.SetDefault("backup.s3.secret_key", "")
	v.SetDefault("rate_limit.requests", 10)
	v.SetDefault("rate_limit.period", time.Minute)
}

// Load parses args (without the program name) and returns the merged
// configuration. A missing config file is only an error when it was named
// explicitly.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("shoplist", pflag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	fs.String("port", "", "HTTP listen port")
	fs.String("db-path", "", "SQLite database file")
	fs.String("log-level", "", "debug, info, warn or error")
	fs.String("log-format", "", "text or json")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range map[string]string{
		"port":       "port",
		"db_path":    "db-path",
		"log.level":  "log-level",
		"log.format": "log-format",
	} {
		if f := fs.Lookup(flag); f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	path := *configPath
	if path == "" {
		path = os.Getenv(envPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found", path)
			}
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Backup.Interval < 0 {
		return fmt.Errorf("backup.interval must not be negative")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Period <= 0 {
		return fmt.Errorf("rate_limit requests and period must be positive")
	}
	return nil
}
