package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaultsKeepsSetValues(t *testing.T) {
	values := Config{RunAddr: ":9999"}

	applyDefaults(&values, defaultConfig)

	assert.Equal(t, ":9999", values.RunAddr)
	assert.Equal(t, "info", values.LogLevel)
	assert.Equal(t, EnvironmentDevelopment, values.Environment)
	assert.Equal(t, 10*time.Second, values.DBConnectionTimeout)
}

const testJSON = `{
	"server_address": ":3000",
	"file_storage_path": "json_storage.json",
	"database_dsn": "json-dsn",
	"session_secrets": ["json-secret"],
	"trusted_subnet": "10.0.0.0/8"
}`

const testYAML = `
server_address: ":3100"
redis_address: "localhost:6379"
redis_db: 2
session_secrets:
  - yaml-new
  - yaml-old
`

func writeTempConfig(t *testing.T, pattern, content string) string {
	t.Helper()
	fileName := filepath.Join(t.TempDir(), pattern)
	require.NoError(t, os.WriteFile(fileName, []byte(content), 0o600))
	return fileName
}

func TestDefaults(t *testing.T) {
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.RunAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.IsProduction())
	assert.Len(t, cfg.SessionSecrets, 1, "a development secret is generated")
}

func TestConfigPriorityJSONOnly(t *testing.T) {
	t.Setenv("CONFIG", writeTempConfig(t, "config.json", testJSON))

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.RunAddr)
	assert.Equal(t, "json_storage.json", cfg.DBFileName)
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN)
	assert.Equal(t, []string{"json-secret"}, cfg.SessionSecrets)
	assert.Equal(t, "10.0.0.0/8", cfg.TrustedSubnet)
}

func TestConfigYAMLFile(t *testing.T) {
	t.Setenv("CONFIG", writeTempConfig(t, "config.yaml", testYAML))

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":3100", cfg.RunAddr)
	assert.Equal(t, "localhost:6379", cfg.RedisAddress)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, []string{"yaml-new", "yaml-old"}, cfg.SessionSecrets)
}

func TestConfigPriorityJSONPlusEnv(t *testing.T) {
	t.Setenv("CONFIG", writeTempConfig(t, "config.json", testJSON))
	t.Setenv("SERVER_ADDRESS", ":4000")
	t.Setenv("SESSION_SECRETS", "env-new,env-old")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.RunAddr) // env overrides json
	assert.Equal(t, []string{"env-new", "env-old"}, cfg.SessionSecrets)
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN) // from JSON
}

func TestConfigPriorityAllSources(t *testing.T) {
	t.Setenv("CONFIG", writeTempConfig(t, "config.json", testJSON))
	t.Setenv("SERVER_ADDRESS", ":4000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := New(WithArgs([]string{"-a", ":6000", "-s", "cli-secret"}))
	require.NoError(t, err)

	assert.Equal(t, ":6000", cfg.RunAddr) // CLI > ENV > JSON
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, []string{"cli-secret"}, cfg.SessionSecrets)
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN) // from JSON
}

func TestConfigFileFromFlag(t *testing.T) {
	cfg, err := New(WithArgs([]string{"-c", writeTempConfig(t, "config.yml", testYAML)}))
	require.NoError(t, err)

	assert.Equal(t, ":3100", cfg.RunAddr)
}

func TestConfigEnvOnly(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_CONNECTION_TIMEOUT", "3s")
	t.Setenv("GITHUB_ADMIN_ID", "12345")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.RunAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.DBConnectionTimeout)
	assert.Equal(t, "12345", cfg.GithubAdminID)
}

func TestValidation(t *testing.T) {
	type tTestCase struct {
		name  string
		key   string
		value string
	}
	testCases := []tTestCase{
		{"bad log level", "LOG_LEVEL", "loud"},
		{"bad subnet", "TRUSTED_SUBNET", "10.0.0.0"},
		{"bad environment", "ENVIRONMENT", "staging"},
		{"bad user service url", "USER_SERVICE_URL", "not a url"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Setenv(testCase.key, testCase.value)

			_, err := New(WithDisableFlagsParsing(true))
			assert.Error(t, err)
		})
	}
}

func TestProductionRequiresSessionSecrets(t *testing.T) {
	t.Setenv("ENVIRONMENT", EnvironmentProduction)

	_, err := New(WithDisableFlagsParsing(true))
	assert.Error(t, err)

	t.Setenv("SESSION_SECRETS", "prod-secret")
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
