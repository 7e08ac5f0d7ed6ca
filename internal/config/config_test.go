package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
platforms_file: /etc/mbedls/platforms.yaml
database: /tmp/boards.db
mount_types: [vfat, msdos]
dev_root: /tmp/dev
timeout: 2s
logging:
  level: debug
  format: json
  file: /var/log/mbedls.log
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/etc/mbedls/platforms.yaml", cfg.PlatformsFile)
	assert.Equal(t, "/tmp/boards.db", cfg.Database)
	assert.Equal(t, []string{"vfat", "msdos"}, cfg.MountTypes)
	assert.Equal(t, "/tmp/dev", cfg.DevRoot)
	assert.Empty(t, cfg.MountsFile)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/var/log/mbedls.log", cfg.Logging.File)
	assert.Equal(t, 10, cfg.Logging.MaxSize)
}

func TestLoad_DefaultsForMissingFields(t *testing.T) {
	cfg, err := Load(writeConfig(t, "dev_root: /tmp/dev\n"))
	require.NoError(t, err)

	assert.Equal(t, defaultConfig.Database, cfg.Database)
	assert.Equal(t, defaultConfig.Timeout, cfg.Timeout)
	assert.Equal(t, defaultConfig.Logging.Level, cfg.Logging.Level)
	assert.Equal(t, defaultConfig.Logging.Format, cfg.Logging.Format)
	assert.Nil(t, cfg.MountTypes)
}

func TestLoad_ExplicitMissingFileIsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "timeout: [not a duration\n"))
	assert.Error(t, err)
}

func TestLoad_SearchPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".config", "mbedls"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".config", "mbedls", "config.yaml"), []byte("database: /tmp/home.db\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	if _, err := os.Stat("/etc/mbedls/config.yaml"); err == nil {
		t.Skip("system config present")
	}

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/home.db", cfg.Database)
}

func TestDefault_IsCopy(t *testing.T) {
	a := Default()
	a.Database = "changed"
	assert.Equal(t, "/var/lib/mbedls/inventory.db", Default().Database)
}
