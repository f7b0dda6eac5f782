package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsToLiteProfile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProfileLite, cfg.Profile)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./syncserver.db", cfg.Database.SQLitePath)
	assert.Equal(t, 30*time.Second, cfg.Sync.Timeout)
	assert.Equal(t, 3, cfg.Fallback.DisconnectThreshold)
	assert.Equal(t, int64(5000), cfg.Fallback.NormalIntervalMs)
	assert.Equal(t, 1000, cfg.Conflict.MaxRecords)
}

func TestConfig_Validate_RejectsUnknownProfile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Profile = "bogus"
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_RejectsBadPort(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_StandardProfileRequiresDatabaseHost(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Profile = ProfileStandard
	cfg.Database.Host = ""
	assert.Error(t, cfg.Validate())

	cfg.Database.Host = "db.internal"
	cfg.Database.Database = "syncserver"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_RejectsInvertedFallbackBounds(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Fallback.MinIntervalMs = 5000
	cfg.Fallback.MaxIntervalMs = 1000
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_RejectsNonPositiveConflictRetention(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Conflict.MaxRecords = 0
	assert.Error(t, cfg.Validate())

	cfg, err = Load("")
	require.NoError(t, err)
	cfg.Conflict.RetentionDays = 0
	assert.Error(t, cfg.Validate())
}
