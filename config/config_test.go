package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAppName = "issue-tracker-test"

func requiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("ISSUE_TRACKER_TEST_AUTH_SECRET",
		"0123456789abcdef0123456789abcdef")
	t.Setenv("ISSUE_TRACKER_TEST_DATABASE_USERNAME", "tracker")
	t.Setenv("ISSUE_TRACKER_TEST_DATABASE_PASSWORD", "tracker")
	t.Setenv("ISSUE_TRACKER_TEST_DATABASE_DATABASE", "tracker")
}

func TestLoadDefaults(t *testing.T) {
	requiredEnv(t)

	cfg, err := Load(testAppName, Defaults...)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.False(t, cfg.ProductionEnvironment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 60, cfg.Auth.AccessTTLMinutes)
	assert.Equal(t, 24*60, cfg.Auth.RefreshTTLMinutes)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	requiredEnv(t)
	t.Setenv("ISSUE_TRACKER_TEST_PORT", "9000")
	t.Setenv("ISSUE_TRACKER_TEST_LOG_LEVEL", "debug")
	t.Setenv("ISSUE_TRACKER_TEST_DATABASE_HOST", "db.internal")

	cfg, err := Load(testAppName, Defaults...)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	requiredEnv(t)
	t.Setenv("ISSUE_TRACKER_TEST_AUTH_SECRET", "")

	_, err := Load(testAppName, Defaults...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validating config")
}

func TestLoadRejectsShortSecret(t *testing.T) {
	requiredEnv(t)
	t.Setenv("ISSUE_TRACKER_TEST_AUTH_SECRET", "too-short")

	_, err := Load(testAppName, Defaults...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validating config")
}
