package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPath(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		envValue string
		want     string
	}{
		{"flag takes precedence", "/path/from/flag", "/path/from/env", "/path/from/flag"},
		{"env when no flag", "", "/path/from/env", "/path/from/env"},
		{"empty when neither", "", "", ""},
		{"whitespace flag", "  ", "/path/from/env", "/path/from/env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NOXDNS_CONFIG", tt.envValue)
			got := ResolveConfigPath(tt.flag)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadDefault(t *testing.T) {
	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:53", cfg.Server.Bind)
	assert.Equal(t, "8.8.8.8:53", cfg.Upstream.Address)
	assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "blocklist.txt", cfg.Filtering.File)
	assert.False(t, cfg.QueryLog.Enabled)
	assert.False(t, cfg.Admin.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	content := `
server:
  bind: "127.0.0.1:5353"
upstream:
  address: "1.1.1.1:53"
  timeout: "2s"
filtering:
  file: "custom-blocklist.txt"
logging:
  level: "debug"
  format: "json"
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(Overrides{ConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:5353", cfg.Server.Bind)
	assert.Equal(t, "1.1.1.1:53", cfg.Upstream.Address)
	assert.Equal(t, 2*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "custom-blocklist.txt", cfg.Filtering.File)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load(Overrides{ConfigPath: "/nonexistent/path/to/config.yaml"})
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  bind: [invalid"), 0644))

	_, err := Load(Overrides{ConfigPath: path})
	assert.Error(t, err)
}

func TestNormalizeInvalidBind(t *testing.T) {
	content := `
server:
  bind: "not-a-host-port"
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(Overrides{ConfigPath: path})
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NOXDNS_SERVER_BIND", "192.168.1.1:53")
	t.Setenv("NOXDNS_UPSTREAM_ADDRESS", "1.1.1.1:53")
	t.Setenv("NOXDNS_LOGGING_LEVEL", "debug")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.1:53", cfg.Server.Bind)
	assert.Equal(t, "1.1.1.1:53", cfg.Upstream.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestCLIFlagsWinOverFileAndEnv(t *testing.T) {
	content := "server:\n  bind: \"127.0.0.1:1\"\n"
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("NOXDNS_SERVER_BIND", "10.0.0.1:1")

	cfg, err := Load(Overrides{ConfigPath: path, Bind: "0.0.0.0:9999"})
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", cfg.Server.Bind)
}

func TestQueryLogAndAdminFlagsEnableTheirFeatures(t *testing.T) {
	cfg, err := Load(Overrides{QueryLog: "/tmp/q.db", AdminBind: "127.0.0.1:9090"})
	require.NoError(t, err)
	assert.True(t, cfg.QueryLog.Enabled)
	assert.Equal(t, "/tmp/q.db", cfg.QueryLog.Path)
	assert.True(t, cfg.Admin.Enabled)
	assert.Equal(t, "127.0.0.1:9090", cfg.Admin.Bind)
}
