package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/obentoo/pacnews/internal/common/output"
	"github.com/obentoo/pacnews/internal/common/pacman"
	"github.com/obentoo/pacnews/internal/newscheck"
)

var (
	ErrInvalidEngine    = errors.New("invalid news engine: must be 'css' or 'xpath'")
	ErrInvalidFormat    = errors.New("invalid output format: must be 'text', 'json' or 'yaml'")
	ErrInvalidURL       = errors.New("invalid URL")
	ErrInvalidTimeout   = errors.New("invalid news timeout")
	ErrInvalidRetries   = errors.New("news retries must not be negative")
	ErrInvalidWidth     = errors.New("output width must not be negative")
	ErrUnsupportedExt   = errors.New("unsupported config file extension")
	ErrEmptyPacmanValue = errors.New("pacman binary and config file must be set")
)

// Config represents the application configuration
type Config struct {
	Pacman PacmanConfig `yaml:"pacman" toml:"pacman"`
	News   NewsConfig   `yaml:"news" toml:"news"`
	Match  MatchConfig  `yaml:"match" toml:"match"`
	Output OutputConfig `yaml:"output" toml:"output"`
}

// PacmanConfig holds the paths and binaries used to query package state
type PacmanConfig struct {
	Conf     string `yaml:"conf" toml:"conf"`         // pacman.conf location
	DBPath   string `yaml:"dbpath" toml:"dbpath"`     // Overrides DBPath from pacman.conf
	LogFile  string `yaml:"logfile" toml:"logfile"`   // Overrides LogFile from pacman.conf
	Binary   string `yaml:"binary" toml:"binary"`     // pacman executable
	Fakeroot string `yaml:"fakeroot" toml:"fakeroot"` // Empty runs the refresh without fakeroot
	Refresh  bool   `yaml:"refresh" toml:"refresh"`   // Sync databases into a temporary dbpath first
}

// NewsConfig holds news index settings
type NewsConfig struct {
	URL       string `yaml:"url" toml:"url"`
	BaseURL   string `yaml:"base_url" toml:"base_url"` // Relative article links resolve against this
	Engine    string `yaml:"engine" toml:"engine"`     // "css" or "xpath"
	Timeout   string `yaml:"timeout" toml:"timeout"`   // Go duration, e.g. "30s"
	Retries   int    `yaml:"retries" toml:"retries"`
	UserAgent string `yaml:"user_agent,omitempty" toml:"user_agent,omitempty"`
}

// MatchConfig holds correlation settings
type MatchConfig struct {
	Marker    string `yaml:"marker" toml:"marker"`       // Log text of a full upgrade
	Direction string `yaml:"direction" toml:"direction"` // "before" or "since"
}

// OutputConfig holds report rendering settings
type OutputConfig struct {
	Format string `yaml:"format" toml:"format"`
	Width  int    `yaml:"width" toml:"width"` // Truncate text report titles to fit; 0 disables
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Pacman: PacmanConfig{
			Conf:     pacman.DefaultConfigFile,
			Binary:   "pacman",
			Fakeroot: "fakeroot",
			Refresh:  true,
		},
		News: NewsConfig{
			URL:     newscheck.DefaultNewsURL,
			BaseURL: newscheck.DefaultBaseURL,
			Engine:  newscheck.EngineCSS,
			Timeout: "30s",
		},
		Match: MatchConfig{
			Marker:    newscheck.DefaultMarker,
			Direction: newscheck.PublishedBefore.String(),
		},
		Output: OutputConfig{
			Format: output.FormatText,
		},
	}
}

// ConfigPaths returns all possible config file paths in priority order
// 1. ~/.config/pacnews/config.yaml (XDG standard - priority)
// 2. ~/.config/pacnews/config.toml
// 3. ~/.pacnews/config.yaml (legacy fallback)
func ConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	// Check XDG_CONFIG_HOME first, fallback to ~/.config
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		filepath.Join(xdgConfig, "pacnews", "config.yaml"),
		filepath.Join(xdgConfig, "pacnews", "config.toml"),
		filepath.Join(home, ".pacnews", "config.yaml"),
	}, nil
}

// FindConfigPath returns the first existing config file path
// Returns the default path if no config file exists yet
func FindConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	// No config exists, return default (XDG) path for creation
	return paths[0], nil
}

// Load reads configuration from the first available config file
func Load() (*Config, error) {
	configPath, err := FindConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads configuration from a specific file path.
// A missing file is created with the default configuration.
// Keys absent from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml", ".yaml", ".yml", "":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExt, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if saveErr := cfg.SaveTo(path); saveErr != nil {
				return nil, saveErr
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := Default()
	if ext == ".toml" {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}

// SaveTo writes configuration to a specific file path.
// The encoding follows the file extension.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := c.Encode(filepath.Ext(path))
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Encode renders the configuration as TOML for ".toml" and YAML otherwise
func (c *Config) Encode(ext string) ([]byte, error) {
	if strings.EqualFold(ext, ".toml") {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return yaml.Marshal(c)
}

// Validate checks every value the news check depends on
func (c *Config) Validate() error {
	if c.Pacman.Binary == "" || c.Pacman.Conf == "" {
		return ErrEmptyPacmanValue
	}

	switch c.News.Engine {
	case newscheck.EngineCSS, newscheck.EngineXPath:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidEngine, c.News.Engine)
	}

	if _, err := newscheck.ParseDirection(c.Match.Direction); err != nil {
		return err
	}

	switch c.Output.Format {
	case output.FormatText, output.FormatJSON, output.FormatYAML:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidFormat, c.Output.Format)
	}
	if c.Output.Width < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWidth, c.Output.Width)
	}

	for name, raw := range map[string]string{"news.url": c.News.URL, "news.base_url": c.News.BaseURL} {
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("%w: %s = %q", ErrInvalidURL, name, raw)
		}
	}

	if _, err := c.News.TimeoutDuration(); err != nil {
		return err
	}
	if c.News.Retries < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidRetries, c.News.Retries)
	}

	return nil
}

// TimeoutDuration parses the per-request timeout
func (n NewsConfig) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(n.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, n.Timeout)
	}
	return d, nil
}

// RunnerConfig builds the pacman runner settings. DBPath and LogFile not set
// here are read from pacman.conf; a missing pacman.conf leaves pacman defaults.
func (c *Config) RunnerConfig() (pacman.RunnerConfig, error) {
	rc := pacman.RunnerConfig{
		Binary:     c.Pacman.Binary,
		Fakeroot:   c.Pacman.Fakeroot,
		ConfigFile: c.Pacman.Conf,
		DBPath:     expandHome(c.Pacman.DBPath),
		LogFile:    expandHome(c.Pacman.LogFile),
		Refresh:    c.Pacman.Refresh,
	}

	if rc.DBPath != "" && rc.LogFile != "" {
		return rc, nil
	}

	opts, err := pacman.LoadConf(rc.ConfigFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return rc, fmt.Errorf("reading %s: %w", rc.ConfigFile, err)
		}
		opts = &pacman.Options{DBPath: pacman.DefaultDBPath, LogFile: pacman.DefaultLogFile}
	}

	if rc.DBPath == "" {
		rc.DBPath = opts.DBPath
	}
	if rc.LogFile == "" {
		rc.LogFile = opts.LogFile
	}

	return rc, nil
}

// expandHome expands a leading ~ to the user's home directory
func expandHome(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
