package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/itu-lang/itu/internal/lexer"
)

// EnvVar names the environment variable consulted when no path is given.
const EnvVar = "ITU_CONFIG"

// Output formats accepted by `itu parse`.
const (
	FormatSexpr = "sexpr"
	FormatYAML  = "yaml"
)

// Config holds the settings shared by the itu command line tools.
type Config struct {
	Lexer  LexerConfig  `toml:"lexer"`
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`
}

// LexerConfig holds tokenizer settings
type LexerConfig struct {
	IndentWidth int `toml:"indent_width"`
}

// OutputConfig holds tree and diagnostic presentation settings
type OutputConfig struct {
	Format string `toml:"format"`
	Color  *bool  `toml:"color"` // nil means "decide from the terminal"
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadFromEnv loads the file named by path, or by ITU_CONFIG when path is
// empty. Without either it returns the defaults.
func LoadFromEnv(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Lexer.IndentWidth == 0 {
		c.Lexer.IndentWidth = lexer.DefaultIndentWidth
	}
	if c.Output.Format == "" {
		c.Output.Format = FormatSexpr
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Lexer.IndentWidth < 1 {
		return fmt.Errorf("lexer.indent_width must be positive, got %d", c.Lexer.IndentWidth)
	}

	switch c.Output.Format {
	case FormatSexpr, FormatYAML:
	default:
		return fmt.Errorf("output.format must be %q or %q, got %q", FormatSexpr, FormatYAML, c.Output.Format)
	}

	if _, err := c.Log.level(); err != nil {
		return err
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}
	return nil
}

var errUnknownLevel = errors.New("unknown log level")

func (l LogConfig) level() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log.level %q: %w", l.Level, errUnknownLevel)
}

// Logger builds a logger writing to w. verbose forces debug level.
func (c *Config) Logger(w io.Writer, verbose bool) *slog.Logger {
	level, err := c.Log.level()
	if err != nil {
		level = slog.LevelWarn
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// UseColor resolves the color setting; isTerminal is used when it is unset.
func (c *Config) UseColor(isTerminal bool) bool {
	if c.Output.Color != nil {
		return *c.Output.Color
	}
	return isTerminal
}
