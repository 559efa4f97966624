// Package config reads the songdex CLI configuration from ~/.songdex/songdex.yaml.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Log selects the CLI log output.
type Log struct {
	// Format is "text" or "json".
	Format string `yaml:"format,omitempty"`
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty"`
}

// Config is the in-memory representation of ~/.songdex/songdex.yaml.
type Config struct {
	LibraryDir     string   `yaml:"library_dir"`
	MusicFolder    string   `yaml:"music_folder,omitempty"`
	Extensions     []string `yaml:"extensions,omitempty"`
	Workers        int      `yaml:"workers,omitempty"`
	SearchLimit    int      `yaml:"search_limit,omitempty"`
	ExtractionRate float64  `yaml:"extraction_rate,omitempty"`
	Compression    string   `yaml:"compression,omitempty"`
	Log            Log      `yaml:"log,omitempty"`
}

// Dir returns the absolute path to ~/.songdex/.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".songdex"), nil
}

// Path returns the absolute path to ~/.songdex/songdex.yaml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "songdex.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		LibraryDir:  "~/.songdex",
		Compression: "zstd",
		Log:         Log{Format: "text", Level: "info"},
	}
}

// Load reads and parses the file at path. A missing file yields Default.
// Paths are expanded and unset fields take their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	}

	if cfg.LibraryDir == "" {
		cfg.LibraryDir = Default().LibraryDir
	}
	if cfg.LibraryDir, err = ExpandPath(cfg.LibraryDir); err != nil {
		return nil, err
	}
	if cfg.MusicFolder, err = ExpandPath(cfg.MusicFolder); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save marshals cfg and writes it to path, creating its directory.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	switch c.Compression {
	case "", "none", "lz4", "zstd":
	default:
		return fmt.Errorf("unknown compression %q", c.Compression)
	}
	if c.Workers < 0 || c.SearchLimit < 0 || c.ExtractionRate < 0 {
		return errors.New("workers, search_limit and extraction_rate must not be negative")
	}
	return nil
}

// LogLevel parses Log.Level. An empty level is info.
func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return l, nil
}
