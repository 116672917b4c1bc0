package config_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/drawgen/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	t.Parallel()
	home := t.TempDir()

	cfg, err := config.Load(home, config.DefaultPath(home), false, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, config.Default(home), cfg)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoad_RequiredFileMissing(t *testing.T) {
	t.Parallel()
	home := t.TempDir()
	_, err := config.Load(home, filepath.Join(home, "nope.yaml"), true, envMap(nil))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_FileAndEnv(t *testing.T) {
	t.Parallel()
	home := t.TempDir()
	path := filepath.Join(home, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: http://backend:9000/
log_level: debug
template_dir: ~/prompts
editor_addr: 127.0.0.1:7777
template: flowchart
`), 0o644))

	cfg, err := config.Load(home, path, true, envMap(map[string]string{
		config.EnvOutputDir:  "/srv/diagrams",
		config.EnvEditorAddr: "",
		config.EnvLogLevel:   "warn",
	}))
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9000", cfg.BaseURL)
	assert.Equal(t, filepath.Join(home, "prompts"), cfg.TemplateDir)
	assert.Equal(t, "/srv/diagrams", cfg.OutputDir)
	assert.Equal(t, "127.0.0.1:7777", cfg.EditorAddr)
	assert.Equal(t, "flowchart", cfg.Template)
	assert.Equal(t, slog.LevelWarn, cfg.Level())
	assert.Equal(t, config.Default(home).LogFile, cfg.LogFile)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()
	home := t.TempDir()
	path := filepath.Join(home, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: [\n"), 0o644))

	_, err := config.Load(home, path, false, envMap(nil))
	assert.Error(t, err)
}

func TestConfig_Level(t *testing.T) {
	t.Parallel()
	tests := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, config.Config{LogLevel: in}.Level(), in)
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	t.Parallel()
	var stderr, file bytes.Buffer
	logger := config.SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("generation started", "record", 1)

	assert.Contains(t, stderr.String(), "generation started")
	assert.NotContains(t, stderr.String(), "hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry))
	assert.Equal(t, "generation started", entry["msg"])
	assert.Equal(t, float64(1), entry["record"])
}

func TestSetupLogger_WritesFile(t *testing.T) {
	t.Parallel()
	logFile := filepath.Join(t.TempDir(), "logs", "drawgen.log")
	var stderr bytes.Buffer

	logger, cleanup := config.SetupLogger(&stderr, logFile, slog.LevelDebug)
	logger.Debug("hello")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, stderr.String(), "hello")
}

func TestSetupLogger_NoFile(t *testing.T) {
	t.Parallel()
	var stderr bytes.Buffer
	logger, cleanup := config.SetupLogger(&stderr, "", slog.LevelInfo)
	logger.Info("only stderr")
	assert.NoError(t, cleanup())
	assert.Contains(t, stderr.String(), "only stderr")
}
