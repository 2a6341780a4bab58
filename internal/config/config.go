package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override (VISA_LOG_LEVEL, ...)
const EnvPrefix = "VISA"

// Config holds the CLI configuration
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	S3        S3Config        `mapstructure:"s3"`
}

// LogConfig controls the global logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // auto, console or json
}

// ArtifactsConfig locates pipeline artifacts on local disk
type ArtifactsConfig struct {
	Dir string `mapstructure:"dir"`
}

// S3Config holds the remote artifact store settings. Credentials are read
// from the environment by the store itself.
type S3Config struct {
	Bucket   string `mapstructure:"bucket"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
	BaseURL  string `mapstructure:"base_url"`
	Prefix   string `mapstructure:"prefix"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("artifacts.dir", "artifact")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.base_url", "")
	v.SetDefault("s3.prefix", "artifacts/")
}

// Load builds the configuration from defaults, the optional YAML file at
// path and VISA_* environment variables, in increasing precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Log.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be auto, console or json", c.Log.Format)
	}
	return nil
}
