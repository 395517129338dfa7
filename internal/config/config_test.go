package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("MAYA_PUBLIC_KEY", "pk-test")
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Server.Debug)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "alumnilink", cfg.MongoDB.DBName)
	assert.Equal(t, "https://pg-sandbox.paymaya.com", cfg.Maya.BaseURL)
	assert.Equal(t, "0 8 * * 1", cfg.Newsletter.CronSchedule)
	assert.Equal(t, "0 6 1 * *", cfg.Reporting.ExportCronSchedule)
}

func TestLoadReadsOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_DEBUG", "true")
	t.Setenv("MONGODB_DB_NAME", "alumnilink_test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, "alumnilink_test", cfg.MongoDB.DBName)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("MAYA_PUBLIC_KEY", "pk-test")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
}

func TestLoadRequiresMayaPublicKey(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("MAYA_PUBLIC_KEY", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAYA_PUBLIC_KEY")
}

func TestValidateNilConfig(t *testing.T) {
	var cfg *Config
	assert.Error(t, cfg.Validate())
}
