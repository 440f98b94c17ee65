package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "memory", cfg.Persistence.Driver)
	assert.Equal(t, 50, cfg.Domain().HistoryLimit)
	assert.Equal(t, 50.0, cfg.Domain().NodeSpacing)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mindgraph.yaml")
	writeFile(t, path, `
serverAddress: ":9090"
logLevel: debug
layout:
  timeout: 750ms
  nodeSpacing: 40
editor:
  autoLayout: false
keybinds:
  createChildNode: "Ctrl+Enter"
`)
	t.Setenv("SERVER_ADDRESS", ":7070")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.ServerAddress, "environment wins over file")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 750*time.Millisecond, cfg.Layout.Timeout)
	assert.Equal(t, 40.0, cfg.Domain().NodeSpacing)
	assert.Equal(t, 80.0, cfg.Layout.LayerSpacing, "unset keys keep defaults")
	assert.False(t, cfg.Editor.AutoLayout)
	assert.Equal(t, "Ctrl+Enter", cfg.Keybinds["createChildNode"])
}

func TestLoadConfig_PathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	writeFile(t, path, "environment: staging\n")
	t.Setenv(ConfigPathEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "persistence: [")
	_, err := LoadConfig(bad)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("PERSISTENCE_DRIVER", "postgres")
	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_DynamoDBNeedsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	writeFile(t, path, "persistence:\n  driver: dynamodb\n  dynamoDBTable: \"\"\n")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindgraph.yaml")
	writeFile(t, path, "keybinds:\n  undo: \"Ctrl+u\"\n")

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond

	changes := make(chan *Config, 4)
	w.OnChange(func(c *Config) { changes <- c })
	w.Start()
	defer w.Stop()

	assert.Equal(t, "Ctrl+u", w.Current().Keybinds["undo"])

	writeFile(t, path, "keybinds:\n  undo: \"Ctrl+y\"\n")
	select {
	case c := <-changes:
		assert.Equal(t, "Ctrl+y", c.Keybinds["undo"])
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
	assert.Equal(t, "Ctrl+y", w.Current().Keybinds["undo"])
}

func TestWatcher_KeepsConfigOnInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindgraph.yaml")
	writeFile(t, path, "logLevel: warn\n")

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)

	writeFile(t, path, "logLevel: loud\n")
	w.reload()
	assert.Equal(t, "warn", w.Current().LogLevel)
}
