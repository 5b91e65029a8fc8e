package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
base_path: /dev/lp-test
dry_run: true
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/lp-test", cfg.BasePath)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.Verify, "unset keys keep their defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("PPDEV_TEST_BASE", "/tmp/parport")
	path := writeFile(t, t.TempDir(), "config.yaml", "base_path: ${PPDEV_TEST_BASE}\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/parport", cfg.BasePath)
}

func TestLoadMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ppdev"), 0o755))
	writeFile(t, filepath.Join(dir, "ppdev"), "config.yaml", "sim: true\n")

	assert.Equal(t, filepath.Join(dir, "ppdev", "config.yaml"), DefaultPath())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Sim)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "base_path: [unterminated\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "config: parse")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvBasePath:  "/dev/other",
		EnvDryRun:    "1",
		EnvVerify:    "false",
		EnvLogFormat: "json",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "/dev/other", cfg.BasePath)
	assert.True(t, cfg.DryRun)
	assert.False(t, cfg.Verify)
	assert.False(t, cfg.Sim)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	env[EnvSim] = "maybe"
	assert.ErrorContains(t, cfg.ApplyEnv(lookup), EnvSim)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, LoadDotEnv(filepath.Join(dir, ".env")))

	t.Setenv(EnvLogLevel, "")
	require.NoError(t, os.Unsetenv(EnvLogLevel))
	path := writeFile(t, dir, ".env", EnvLogLevel+"=trace\n")
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "trace", os.Getenv(EnvLogLevel))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.BasePath = " "
	assert.ErrorContains(t, cfg.Validate(), "base_path")

	cfg = Default()
	cfg.Log.Format = "xml"
	assert.ErrorContains(t, cfg.Validate(), "log.format")

	cfg = Default()
	cfg.Log.Level = "loud"
	assert.ErrorContains(t, cfg.Validate(), "log.level")

	cfg = Default()
	cfg.Log.Level = "DEBUG"
	cfg.Log.Format = "JSON"
	assert.NoError(t, cfg.Validate())
}
