package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigContent = `
[development]
host = "localhost"
port = 8080
log_level = "trace"
log_to_stdout = true
postgres_host = "localhost"
postgres_port = "5432"
postgres_db_name = "fittrack"
redis_host = "localhost"
redis_port = "6379"
login_rate_limit_allowed_per_min = 10
chat_model = "gpt-4o-mini"
recommend_model = "gpt-4o-mini"
workout_cache_minutes = 15

[production]
host = ""
port = 8081
log_level = "debug"
sentry_enabled = true
tracing_enabled = true
postgres_db_name = "fittrack"
chat_model = "gpt-4o"
recommend_model = "gpt-4o-mini"
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigContent), 0o600))
	return path
}

func TestLoad_Development(t *testing.T) {
	cfg, err := Load("development", writeTestConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.True(t, cfg.LogToStdout)
	assert.False(t, cfg.SentryEnabled)
	assert.Equal(t, "fittrack", cfg.PostgresDBName)
	assert.Equal(t, 10, cfg.LoginRateLimitAllowedPerMin)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	assert.Equal(t, 15, cfg.WorkoutCacheMin)
}

func TestLoad_ProductionAliases(t *testing.T) {
	path := writeTestConfig(t)

	for _, env := range []string{"prod", "production"} {
		cfg, err := Load(env, path)
		require.NoError(t, err)
		assert.Equal(t, 8081, cfg.Port)
		assert.True(t, cfg.SentryEnabled)
		assert.True(t, cfg.TracingEnabled)
	}
}

func TestLoad_UnknownEnv(t *testing.T) {
	_, err := Load("staging", writeTestConfig(t))
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("development", filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
