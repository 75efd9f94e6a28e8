// Package config loads devarray settings from an optional YAML file and
// DEVARRAY_* environment variables, in that order of precedence (env wins).
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/qrv0/devarray/internal/snapshot"
)

// Config holds the tunables shared by the CLI commands.
type Config struct {
	// BlockSize is the default thread-block size for launches.
	BlockSize int `yaml:"block_size"`
	// Workers is the goroutine count per launch; 0 means one per core.
	Workers int `yaml:"workers"`
	Log     Log `yaml:"log"`
	// Compression is the snapshot data compression: none, zstd or lz4.
	Compression string `yaml:"compression"`
}

type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		BlockSize:   128,
		Log:         Log{Level: "info", Format: "text"},
		Compression: "lz4",
	}
}

// Load reads path on top of Default, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	ints := map[string]*int{
		"DEVARRAY_BLOCK":   &c.BlockSize,
		"DEVARRAY_WORKERS": &c.Workers,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("config: %s=%q: %w", key, v, err)
			}
			*dst = n
		}
	}
	if v, ok := lookup("DEVARRAY_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("DEVARRAY_LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	if v, ok := lookup("DEVARRAY_COMPRESSION"); ok {
		c.Compression = v
	}
	return nil
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	if c.BlockSize < 1 {
		return fmt.Errorf("config: block_size %d must be positive", c.BlockSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers %d must not be negative", c.Workers)
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("config: log format %q must be text or json", c.Log.Format)
	}
	if _, err := snapshot.ParseCompression(c.Compression); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (l Log) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}
	return lvl, nil
}

// NewLogger builds the process logger writing to w.
func (l Log) NewLogger(w io.Writer) (*slog.Logger, error) {
	lvl, err := l.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(l.Format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
