package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{ConfigDirs: []string{t.TempDir()}})
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.DataDir, cfg.DataDir)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, def.BusyTimeout, cfg.BusyTimeout)
	assert.Equal(t, 2*time.Second, cfg.LockTimeout)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := "data_dir: /tmp/tlogg-test\nlog_level: debug\nbusy_timeout: 250ms\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	cfg, err := Load(Options{ConfigDirs: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/tlogg-test", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.BusyTimeout)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.ConfigFile)
	assert.Equal(t, filepath.Join("/tmp/tlogg-test", "tlogg.sqlite"), cfg.DBPath())
	assert.Equal(t, filepath.Join("/tmp/tlogg-test", "tlogg.lock"), cfg.LockPath())
}

func TestLoadExplicitTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = \"dracula\"\nlock_timeout = \"5s\"\n"), 0644))

	cfg, err := Load(Options{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, "dracula", cfg.Theme)
	assert.Equal(t, 5*time.Second, cfg.LockTimeout)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(Options{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log_level: error\n"), 0644))
	t.Setenv("TLOGG_LOG_LEVEL", "info")
	t.Setenv("TLOGG_RETRY_BACKOFF", "20ms")

	cfg, err := Load(Options{ConfigDirs: []string{dir}})
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 20*time.Millisecond, cfg.RetryBackoff)
}

func TestFlagOverridesEnv(t *testing.T) {
	t.Setenv("TLOGG_DATA_DIR", "/from/env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("data-dir", "", "")
	require.NoError(t, flags.Parse([]string{"--data-dir", "/from/flag"}))

	cfg, err := Load(Options{ConfigDirs: []string{t.TempDir()}, Flags: flags})
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.DataDir)

	// an unset flag does not shadow the environment
	unset := pflag.NewFlagSet("test", pflag.ContinueOnError)
	unset.String("data-dir", "", "")
	cfg, err = Load(Options{ConfigDirs: []string{t.TempDir()}, Flags: unset})
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.DataDir)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.DataDir = " "
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data_dir")

	cfg = DefaultConfig()
	cfg.LockTimeout = 0
	assert.Error(t, cfg.Validate())

	t.Setenv("TLOGG_BUSY_TIMEOUT", "-1s")
	_, err = Load(Options{ConfigDirs: []string{t.TempDir()}})
	assert.Error(t, err)
}
