package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.ConnectionString)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "logs", cfg.LogDir)
}

func TestLoad(t *testing.T) {
	yaml := `
connectionString: "server=localhost;user id=sa"
debug: true
logDir: /var/log/mssql-mcp
`

	cfg, err := Load(strings.NewReader(yaml))
	require.NoError(t, err)

	assert.Equal(t, "server=localhost;user id=sa", cfg.ConnectionString)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/var/log/mssql-mcp", cfg.LogDir)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(strings.NewReader(`connectionString: "server=db"`))
	require.NoError(t, err)

	assert.Equal(t, "server=db", cfg.ConnectionString)
	assert.Equal(t, "logs", cfg.LogDir)
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(strings.NewReader(`connectionString: [`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`connectionString: "server=db"`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "server=db", cfg.ConnectionString)
}

func TestLoadFileMissingFallsBackToDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "absent.yaml")} {
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("MSSQL_CONNECTION_STRING", "server=env")
	t.Setenv("MSSQL_MCP_DEBUG", "true")
	t.Setenv("MSSQL_MCP_LOG_DIR", "/tmp/wire")

	cfg := FromEnv(Default())
	assert.Equal(t, "server=env", cfg.ConnectionString)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/tmp/wire", cfg.LogDir)
}

func TestFromEnvIgnoresInvalidDebug(t *testing.T) {
	t.Setenv("MSSQL_MCP_DEBUG", "banana")

	cfg := FromEnv(Default())
	assert.False(t, cfg.Debug)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate())

	cfg.ConnectionString = "server=db"
	assert.NoError(t, cfg.Validate())
}
