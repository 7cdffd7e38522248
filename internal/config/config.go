package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ENTITIES_SERVICE_STORAGE_DRIVER
const EnvPrefix = "ENTITIES_SERVICE"

// Config is the service configuration
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Entities      EntitiesConfig      `mapstructure:"entities"`
	Storage       StorageConfig       `mapstructure:"storage"`
}

// ServerConfig configures the hertz listener
type ServerConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	Mode               string        `mapstructure:"mode"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	MaxRequestBodySize int           `mapstructure:"max_request_body_size"` // MB
}

// LogConfig configures pkg/logger
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	AddSource bool   `mapstructure:"add_source"`
}

// ObservabilityConfig toggles the metrics listener
type ObservabilityConfig struct {
	EnableMetrics bool `mapstructure:"enable_metrics"`
	MetricsPort   int  `mapstructure:"metrics_port"`
}

// JWTConfig configures token signing
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRefresh time.Duration `mapstructure:"max_refresh"`
}

// AuthConfig controls account creation
type AuthConfig struct {
	AllowRegistration bool   `mapstructure:"allow_registration"`
	AdminUsername     string `mapstructure:"admin_username"` // bootstrap account, created at startup when set
	AdminPassword     string `mapstructure:"admin_password"`
}

// EntitiesConfig is handed to the validation engine
type EntitiesConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	Metaschema   string `mapstructure:"metaschema"`
	StrictShapes bool   `mapstructure:"strict_shapes"`
}

// StorageConfig selects the document store
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // badger, memory
	Path   string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.max_request_body_size", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("observability.enable_metrics", false)
	v.SetDefault("observability.metrics_port", 9090)

	v.SetDefault("jwt.timeout", time.Hour)
	v.SetDefault("jwt.max_refresh", 24*time.Hour)

	v.SetDefault("auth.allow_registration", false)

	v.SetDefault("entities.base_url", "http://onto-ns.com/meta")
	v.SetDefault("entities.metaschema", "http://onto-ns.com/meta/0.3/EntitySchema")
	v.SetDefault("entities.strict_shapes", false)

	v.SetDefault("storage.driver", "badger")
	v.SetDefault("storage.path", "./data/entities")
}

// Load reads the configuration. An empty path searches ./configs and . and falls back to defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks values viper cannot type-check
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server mode: %s, must be 'debug' or 'release'", c.Server.Mode)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s, must be 'json' or 'text'", c.Log.Format)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt.secret must be at least 32 characters for security")
	}

	if (c.Auth.AdminUsername == "") != (c.Auth.AdminPassword == "") {
		return fmt.Errorf("auth.admin_username and auth.admin_password must be set together")
	}

	if c.Observability.EnableMetrics && (c.Observability.MetricsPort <= 0 || c.Observability.MetricsPort > 65535) {
		return fmt.Errorf("invalid metrics port: %d", c.Observability.MetricsPort)
	}
	if c.Observability.EnableMetrics && c.Observability.MetricsPort == c.Server.Port {
		return fmt.Errorf("observability.metrics_port must differ from server.port")
	}

	if c.Entities.BaseURL == "" {
		return fmt.Errorf("entities.base_url is required")
	}

	switch c.Storage.Driver {
	case "memory":
	case "badger":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the badger driver")
		}
	default:
		return fmt.Errorf("invalid storage driver: %s, must be 'badger' or 'memory'", c.Storage.Driver)
	}

	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetReadTimeout() time.Duration {
	return c.Server.ReadTimeout
}

func (c *Config) GetWriteTimeout() time.Duration {
	return c.Server.WriteTimeout
}
