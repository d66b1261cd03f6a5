package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_DRIVER", "DATABASE_HOST", "DATABASE_PORT", "IMPORT_SESSION_TTL_MINUTES", "IMPORT_SWEEP_INTERVAL_SECONDS", "LOG_LEVEL", "IMPORT_MAPPER", "SERVER_INTERNAL_PORT", "COACHING_AT_RISK_THRESHOLD_DAYS", "TEXTGEN_MODEL"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigurationMissingFileUsesDefaults(t *testing.T) {
	clearConfigEnv(t)
	c, err := LoadConfiguration(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.Database.Driver)
	assert.Equal(t, DefaultAtRiskThresholdDays, c.Coaching.AtRiskThresholdDays)
	assert.Equal(t, DefaultModel, c.TextGeneration.Model)
	assert.Equal(t, 500, c.TextGeneration.MappingMaxTokens)
	assert.Equal(t, 200, c.TextGeneration.MessageMaxTokens)
}

func TestLoadConfigurationJSON(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"database": {"driver": "mysql", "host": "db", "port": 3307},
		"coaching": {"at_risk_threshold_days": 9}
	}`), 0600))

	c, err := LoadConfiguration(path)
	require.NoError(t, err)
	assert.Equal(t, "mysql", c.Database.Driver)
	assert.Equal(t, "db", c.Database.Host)
	assert.Equal(t, 3307, c.Database.Port)
	assert.Equal(t, 9, c.Coaching.AtRiskThresholdDays)
	// untouched sections keep their defaults
	assert.Equal(t, 30, c.Import.SessionTTLMinutes)
}

func TestLoadConfigurationYAML(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  internal_port: 9090
import:
  mapper: rules
log:
  level: debug
`), 0600))

	c, err := LoadConfiguration(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Server.InternalPort)
	assert.Equal(t, "rules", c.Import.Mapper)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoadConfigurationBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"database":`), 0600))

	_, err := LoadConfiguration(path)
	assert.Error(t, err)
}

func TestGetEnvironmentConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")
	t.Setenv("SERVER_INTERNAL_PORT", "8181")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("COACHING_AT_RISK_THRESHOLD_DAYS", "3")
	t.Setenv("IMPORT_MAPPER", "llm")

	c := DefaultConfiguration()
	GetEnvironmentConfig(&c)

	assert.Equal(t, "mysql", c.Database.Driver)
	assert.Equal(t, 8181, c.Server.InternalPort)
	assert.Equal(t, "sk-test", c.TextGeneration.APIKey)
	assert.Equal(t, 3, c.Coaching.AtRiskThresholdDays)
	assert.Equal(t, "llm", c.Import.Mapper)
}

func TestLoadConfigurationImportDurationsFallBack(t *testing.T) {
	clearConfigEnv(t)
	for name, body := range map[string]string{
		"zero":     `{"import": {"session_ttl_minutes": 0, "sweep_interval_seconds": 0}}`,
		"negative": `{"import": {"session_ttl_minutes": -5, "sweep_interval_seconds": -1}}`,
	} {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(body), 0600))

		c, err := LoadConfiguration(path)
		require.NoError(t, err, name)
		assert.Equal(t, DefaultImportSessionTTLMinutes, c.Import.SessionTTLMinutes, name)
		assert.Equal(t, DefaultImportSweepIntervalSeconds, c.Import.SweepIntervalSeconds, name)
	}

	t.Setenv("IMPORT_SWEEP_INTERVAL_SECONDS", "0")
	c, err := LoadConfiguration("")
	require.NoError(t, err)
	assert.Equal(t, DefaultImportSweepIntervalSeconds, c.Import.SweepIntervalSeconds)
}
