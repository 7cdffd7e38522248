package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bytedance/sonic"

	"github.com/SINTEF/entities-service/internal/soft"
)

// DefaultServer is used until a server is configured or logged in to
const DefaultServer = "http://localhost:8000"

// Keys lists the settings `config set` and `config unset` accept
var Keys = []string{"server", "base_url", "metaschema", "strict_shapes"}

// Config stores CLI configuration
type Config struct {
	Server       string `json:"server"`
	BaseURL      string `json:"base_url,omitempty"`
	Metaschema   string `json:"metaschema,omitempty"`
	StrictShapes bool   `json:"strict_shapes,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	Username     string `json:"username,omitempty"`
}

// GetConfigPath returns the configuration file path (~/.entities-service/config.json)
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".entities-service", "config.json"), nil
}

// Load loads configuration from file
func Load() (*Config, error) {
	configFile, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return &Config{Server: DefaultServer}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}

	return &cfg, nil
}

// Save saves configuration to file
func (c *Config) Save() error {
	configFile, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := sonic.ConfigStd.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file holds the access token
	if err := os.WriteFile(configFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsAuthenticated checks if user is logged in
func (c *Config) IsAuthenticated() bool {
	return c.AccessToken != ""
}

// Get returns the value of a settable key as text
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "server":
		return c.Server, nil
	case "base_url":
		return c.BaseURL, nil
	case "metaschema":
		return c.Metaschema, nil
	case "strict_shapes":
		return strconv.FormatBool(c.StrictShapes), nil
	default:
		return "", unknownKey(key)
	}
}

// Set assigns a settable key. Values are checked before they are stored.
func (c *Config) Set(key, value string) error {
	switch key {
	case "server":
		if value == "" {
			return fmt.Errorf("server must not be empty")
		}
		c.Server = value
	case "base_url", "metaschema":
		probe := soft.Options{BaseNamespace: c.BaseURL, Metaschema: c.Metaschema, StrictShapes: c.StrictShapes}
		if key == "base_url" {
			probe.BaseNamespace = value
		} else {
			probe.Metaschema = value
		}
		if _, err := soft.NewValidator(probe); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		if key == "base_url" {
			c.BaseURL = value
		} else {
			c.Metaschema = value
		}
	case "strict_shapes":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("strict_shapes must be true or false, got %q", value)
		}
		c.StrictShapes = b
	default:
		return unknownKey(key)
	}
	return nil
}

// Unset restores a settable key to its default
func (c *Config) Unset(key string) error {
	switch key {
	case "server":
		c.Server = DefaultServer
	case "base_url":
		c.BaseURL = ""
	case "metaschema":
		c.Metaschema = ""
	case "strict_shapes":
		c.StrictShapes = false
	default:
		return unknownKey(key)
	}
	return nil
}

// Validator builds the engine from the configured base namespace and metaschema
func (c *Config) Validator(strictShapes bool) (*soft.Validator, error) {
	return soft.NewValidator(soft.Options{
		BaseNamespace: c.BaseURL,
		Metaschema:    c.Metaschema,
		StrictShapes:  c.StrictShapes || strictShapes,
	})
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown key %q, must be one of %v", key, Keys)
}
