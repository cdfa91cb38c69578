package server

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/loveletter/internal/store"
)

// Config is the complete server configuration.
type Config struct {
	Server  ServerSettings
	Storage StorageSettings
}

// fileConfig is the HCL file layout. Both blocks are optional.
type fileConfig struct {
	Server  *ServerSettings  `hcl:"server,block"`
	Storage *StorageSettings `hcl:"storage,block"`
}

// ServerSettings contains listener and match settings.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	LogLevel string `hcl:"log_level,optional"`
	// IdleTimeout is a Go duration string such as "24h".
	IdleTimeout string `hcl:"idle_timeout,optional"`
	// TurnHistory is how many recent turns each match reports to players.
	TurnHistory int `hcl:"turn_history,optional"`
}

// StorageSettings selects where matches are persisted.
type StorageSettings struct {
	Driver string `hcl:"driver,optional"`
	Path   string `hcl:"path,optional"`
}

// envOverrides are read from the environment after the file.
type envOverrides struct {
	Address       string        `env:"LOVELETTER_ADDRESS"`
	LogLevel      string        `env:"LOVELETTER_LOG_LEVEL"`
	IdleTimeout   time.Duration `env:"LOVELETTER_IDLE_TIMEOUT"`
	StorageDriver string        `env:"LOVELETTER_STORAGE_DRIVER"`
	StoragePath   string        `env:"LOVELETTER_STORAGE_PATH"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:     "localhost:8080",
			LogLevel:    "info",
			IdleTimeout: "24h",
			TurnHistory: 10,
		},
		Storage: StorageSettings{
			Driver: store.DriverMemory,
		},
	}
}

// LoadConfig reads an HCL file, falling back to defaults when it does not
// exist, then applies environment overrides.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			parser := hclparse.NewParser()
			file, diags := parser.ParseHCLFile(filename)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
			}

			var loaded fileConfig
			if diags := gohcl.DecodeBody(file.Body, nil, &loaded); diags.HasErrors() {
				return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
			}
			var overlay Config
			if loaded.Server != nil {
				overlay.Server = *loaded.Server
			}
			if loaded.Storage != nil {
				overlay.Storage = *loaded.Storage
			}
			config.merge(overlay)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// merge copies every value set in other over c.
func (c *Config) merge(other Config) {
	if other.Server.Address != "" {
		c.Server.Address = other.Server.Address
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
	if other.Server.IdleTimeout != "" {
		c.Server.IdleTimeout = other.Server.IdleTimeout
	}
	if other.Server.TurnHistory != 0 {
		c.Server.TurnHistory = other.Server.TurnHistory
	}
	if other.Storage.Driver != "" {
		c.Storage.Driver = other.Storage.Driver
	}
	if other.Storage.Path != "" {
		c.Storage.Path = other.Storage.Path
	}
}

func (c *Config) applyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	c.merge(Config{
		Server: ServerSettings{
			Address:  o.Address,
			LogLevel: o.LogLevel,
		},
		Storage: StorageSettings{
			Driver: o.StorageDriver,
			Path:   o.StoragePath,
		},
	})
	if o.IdleTimeout > 0 {
		c.Server.IdleTimeout = o.IdleTimeout.String()
	}
	return nil
}

// Validate checks the configuration for values the server cannot use.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("address is required")
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}
	d, err := time.ParseDuration(c.Server.IdleTimeout)
	if err != nil {
		return fmt.Errorf("invalid idle timeout %q: %w", c.Server.IdleTimeout, err)
	}
	if d <= 0 {
		return fmt.Errorf("idle timeout must be positive, got %s", d)
	}
	if c.Server.TurnHistory < 0 {
		return fmt.Errorf("turn history must not be negative, got %d", c.Server.TurnHistory)
	}

	switch c.Storage.Driver {
	case store.DriverMemory:
	case store.DriverFile, store.DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage driver %s needs a path", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("invalid storage driver %q", c.Storage.Driver)
	}
	return nil
}

// IdleTimeout returns the parsed idle timeout. Call Validate first.
func (c *Config) IdleTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.IdleTimeout)
	return d
}
