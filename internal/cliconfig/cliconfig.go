package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the workstate CLI configuration file layout.
type Config struct {
	// DataDir is where embedded backends (badger, bolt) keep their databases.
	DataDir string `toml:"data_dir"`
	// Options holds per-scheme client options, e.g. [options.s3] region = "us-east-1".
	Options map[string]map[string]string `toml:"options"`
}

// Load reads and parses a TOML config file from the given path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DefaultPath returns ~/.workstate/config.toml if the user home directory is
// accessible.
func DefaultPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".workstate", "config.toml")
	}
	return ""
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// SchemeOptions returns the configured options for scheme, never nil.
func (c Config) SchemeOptions(scheme string) map[string]string {
	opts := make(map[string]string)
	if c.DataDir != "" {
		opts["data_dir"] = c.DataDir
	}
	for k, v := range c.Options[scheme] {
		opts[k] = v
	}
	return opts
}
