// Package config loads the client configuration from a YAML file and
// environment overrides, and builds the application logger.
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

// Environment variables that override file values.
const (
	EnvBaseURL     = "DRAWGEN_BASE_URL"
	EnvLogFile     = "DRAWGEN_LOG_FILE"
	EnvLogLevel    = "DRAWGEN_LOG_LEVEL"
	EnvTemplateDir = "DRAWGEN_TEMPLATE_DIR"
	EnvOutputDir   = "DRAWGEN_OUTPUT_DIR"
	EnvEditorAddr  = "DRAWGEN_EDITOR_ADDR"
)

const appDir = ".drawgen"

// Config holds all configuration values.
type Config struct {
	BaseURL     string `yaml:"base_url"`
	LogFile     string `yaml:"log_file"`
	LogLevel    string `yaml:"log_level"`
	TemplateDir string `yaml:"template_dir"`
	OutputDir   string `yaml:"output_dir"`
	EditorAddr  string `yaml:"editor_addr"` // empty disables the editor bridge
	Template    string `yaml:"template"`    // default system-prompt template
}

// Default returns the configuration used when nothing is set. Paths live
// under home.
func Default(home string) Config {
	base := filepath.Join(home, appDir)
	return Config{
		BaseURL:     "http://localhost:8000",
		LogFile:     filepath.Join(base, "drawgen.log"),
		LogLevel:    "INFO",
		TemplateDir: filepath.Join(base, "templates"),
		OutputDir:   filepath.Join(base, "diagrams"),
	}
}

// DefaultPath returns the config file location under home.
func DefaultPath(home string) string {
	return filepath.Join(home, appDir, "config.yaml")
}

// Load reads the file at path over the defaults and then applies
// environment overrides looked up with getenv. A missing file is an error
// only when required is true, i.e. the user named it explicitly.
func Load(home, path string, required bool, getenv func(string) string) (Config, error) {
	cfg := Default(home)

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !required:
	case err != nil:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	override(&cfg.BaseURL, getenv(EnvBaseURL))
	override(&cfg.LogFile, getenv(EnvLogFile))
	override(&cfg.LogLevel, getenv(EnvLogLevel))
	override(&cfg.TemplateDir, getenv(EnvTemplateDir))
	override(&cfg.OutputDir, getenv(EnvOutputDir))
	override(&cfg.EditorAddr, getenv(EnvEditorAddr))

	cfg.TemplateDir = expandHome(home, cfg.TemplateDir)
	cfg.OutputDir = expandHome(home, cfg.OutputDir)
	cfg.LogFile = expandHome(home, cfg.LogFile)
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}

// Level parses LogLevel. Unknown values mean INFO.
func (c Config) Level() slog.Level {
	return parseLogLevel(c.LogLevel)
}

func override(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func expandHome(home, p string) string {
	if p == "~" {
		return home
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		return filepath.Join(home, rest)
	}
	return p
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
