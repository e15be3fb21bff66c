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

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 1, cfg.Download.Workers)
	assert.Equal(t, 3, cfg.Download.MaxRetries)
	assert.Equal(t, 60*time.Second, cfg.Download.Timeout())
	assert.Equal(t, "satdownload/1.0", cfg.Download.UserAgent)
	assert.InDelta(t, 4, cfg.Download.HostRate, 0.001)
	assert.Equal(t, 8, cfg.Download.HostBurst)
	assert.Equal(t, "noaa-goes16", cfg.GOES16.Bucket)
	assert.Equal(t, "us-east-1", cfg.GOES16.AWSRegion)
	assert.Equal(t, "ABI-L1b-RadF", cfg.GOES16.Product)
	assert.Equal(t, 30*time.Minute, cfg.GOES16.Tolerance())
	assert.Equal(t, "https://acdisc.gesdisc.eosdis.nasa.gov/opendap/Aqua_AIRS_Level3/AIRS3STD.006/", cfg.AIRS.BaseURL)
	assert.Equal(t, 24*time.Hour, cfg.AIRS.Tolerance())
	assert.Equal(t, "https://www.ncei.noaa.gov/thredds/catalog/cdr/gridsat/%d/catalog.xml", cfg.Gridsat.ArchiveURL)
	assert.Equal(t, 3*time.Hour, cfg.Gridsat.Tolerance())
	assert.Empty(t, cfg.Credentials.Username)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
  format: json
download:
  workers: 4
goes16:
  product: ABI-L2-CMIPM
  tolerance_minutes: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 4, cfg.Download.Workers)
	assert.Equal(t, "ABI-L2-CMIPM", cfg.GOES16.Product)
	assert.Equal(t, 10*time.Minute, cfg.GOES16.Tolerance())
	// Defaults still apply for unset values
	assert.Equal(t, 3, cfg.Download.MaxRetries)
	assert.Equal(t, "noaa-goes16", cfg.GOES16.Bucket)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
download:
  workers: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("SATDOWNLOAD_LOG_LEVEL", "warn")
	t.Setenv("SATDOWNLOAD_DOWNLOAD_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 8, cfg.Download.Workers)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("SATDOWNLOAD_CREDENTIALS_USERNAME", "earthdata-user")
	t.Setenv("SATDOWNLOAD_CREDENTIALS_PASSWORD", "hunter2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "earthdata-user", cfg.Credentials.Username)
	assert.Equal(t, "hunter2", cfg.Credentials.Password)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	env := "SATDOWNLOAD_CREDENTIALS_USERNAME=dotenv-user\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0644))
	t.Cleanup(func() { os.Unsetenv("SATDOWNLOAD_CREDENTIALS_USERNAME") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dotenv-user", cfg.Credentials.Username)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
