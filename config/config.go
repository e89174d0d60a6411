// Package config handles intcode.toml settings.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/colorfulnotion/intcode/log"
)

// Config is the file form of the CLI settings. Command line flags override
// whatever is loaded here.
type Config struct {
	Log     LogConfig     `toml:"log"`
	VM      VMConfig      `toml:"vm"`
	Store   StoreConfig   `toml:"store"`
	Bridge  BridgeConfig  `toml:"bridge"`
	Tracing TracingConfig `toml:"tracing"`

	// Path is the file the config was read from (empty for defaults).
	Path string `toml:"-"`
}

// LogConfig configures the log package.
type LogConfig struct {
	Level   string `toml:"level"`
	Modules string `toml:"modules"` // comma separated, e.g. "vm,host"
	JSON    bool   `toml:"json"`
}

// VMConfig configures machines started by the CLI.
type VMConfig struct {
	ChannelCapacity int  `toml:"channel-capacity"`
	Trace           bool `toml:"trace"`
}

// StoreConfig configures the program library.
type StoreConfig struct {
	Path string `toml:"path"`
}

// BridgeConfig configures the websocket bridge.
type BridgeConfig struct {
	Listen string `toml:"listen"`
}

// TracingConfig configures OpenTelemetry export. An empty endpoint disables
// export.
type TracingConfig struct {
	OTLPEndpoint string `toml:"otlp-endpoint"`
	Insecure     bool   `toml:"insecure"`
}

const (
	DefaultLogLevel = "info"
	DefaultListen   = ":8080"
	DefaultFileName = "intcode.toml"
)

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: DefaultLogLevel},
		VM:     VMConfig{ChannelCapacity: 50},
		Store:  StoreConfig{Path: defaultStorePath()},
		Bridge: BridgeConfig{Listen: DefaultListen},
	}
}

func defaultStorePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".intcode", "programs")
	}
	return filepath.Join(dir, "intcode", "programs")
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values; unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", undecoded[0].String(), path)
	}
	c.Path = path

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadOrDefault loads path when it is set, else DefaultFileName from the
// working directory when that exists, else the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultFileName); err == nil {
		return Load(DefaultFileName)
	}
	return Default(), nil
}

// Validate checks values the decoder cannot.
func (c *Config) Validate() error {
	if c.VM.ChannelCapacity < 0 {
		return fmt.Errorf("vm.channel-capacity must not be negative, got %d", c.VM.ChannelCapacity)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
