package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gridpilot.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30, cfg.Width)
	assert.Equal(t, 0.15, cfg.Density)
	assert.Equal(t, 300*time.Millisecond, cfg.Pacing().Tick)
	assert.Equal(t, 2*time.Second, cfg.Pacing().GoalPause)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative density", func(c *Config) { c.Density = -0.1 }},
		{"density too high", func(c *Config) { c.Density = 0.9 }},
		{"unknown frontend", func(c *Config) { c.Frontend = "web" }},
		{"zero tick", func(c *Config) { c.TickInterval = 0 }},
		{"negative pause", func(c *Config) { c.GoalPause = -time.Second }},
		{"zero cell size", func(c *Config) { c.CellSize = 0 }},
		{"headless without episodes", func(c *Config) { c.Frontend = FrontendHeadless; c.Episodes = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
width = 12
height = 8
density = 0.25
seed = 99
frontend = "headless"
tick_interval = "50ms"
colour = "blue"
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Width)
	assert.Equal(t, 8, cfg.Height)
	assert.Equal(t, 0.25, cfg.Density)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, FrontendHeadless, cfg.Frontend)
	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 2*time.Second, cfg.GoalPause, "unset keys keep their defaults")
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "colour")
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadFile(writeConfig(t, "width = ["))
	assert.Error(t, err)
}

func TestParseFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "width = 12\nheight = 8\nfrontend = \"headless\"\n")

	cfg, err := Parse([]string{"-config", path, "-width", "20", "-tick", "1s"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Width)
	assert.Equal(t, 8, cfg.Height)
	assert.Equal(t, FrontendHeadless, cfg.Frontend)
	assert.Equal(t, time.Second, cfg.TickInterval)

	opts := cfg.SimulationOptions()
	assert.Equal(t, 20, opts.Width)
	assert.Equal(t, 8, opts.Height)
}

func TestParseRejectsInvalid(t *testing.T) {
	var out bytes.Buffer
	_, err := Parse([]string{"-density", "0.95"}, &out)
	assert.Error(t, err)

	_, err = Parse([]string{"-no-such-flag"}, &out)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "no-such-flag")
}

func TestNewLogger(t *testing.T) {
	var stderr bytes.Buffer

	cfg := Default()
	cfg.Frontend = FrontendHeadless
	cfg.LogLevel = "debug"
	logger, closer, err := cfg.NewLogger(&stderr)
	require.NoError(t, err)
	defer closer.Close()
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	logger.Info("hello")
	assert.Contains(t, stderr.String(), "hello")

	stderr.Reset()
	cfg.Frontend = FrontendTerminal
	logger, _, err = cfg.NewLogger(&stderr)
	require.NoError(t, err)
	logger.Info("hidden")
	assert.Empty(t, stderr.String())

	cfg.LogFile = filepath.Join(t.TempDir(), "sim.log")
	logger, closer, err = cfg.NewLogger(&stderr)
	require.NoError(t, err)
	logger.WithField("episode", 1).Info("to file")
	require.NoError(t, closer.Close())
	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"episode":1`)
}
