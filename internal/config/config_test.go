package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
api:
  environment: test
  base_url: localhost:8080
  port: "8080"
  allowed_cors_domains:
    - http://localhost:3000
  jwt_signing_key: 0123456789abcdef0123
  session_ttl: 2h
  login_rate_per_minute: 30
  login_burst: 3
  log_level: debug
gin:
  mode: test
postgres:
  host: localhost
  port: "5432"
  user: election
  password: secret
  db: election
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	conf, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "test", conf.API.Environment)
	assert.Equal(t, "8080", conf.API.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, conf.API.AllowedCORSDomains)
	assert.Equal(t, 2*time.Hour, conf.API.SessionTTL)
	assert.Equal(t, 30, conf.API.LoginRatePerMinute)
	assert.Equal(t, "test", conf.Gin.Mode)
	assert.Equal(t, "election", conf.Postgres.DB)
	assert.Equal(t, "disable", conf.Postgres.SSLMode, "default applies")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("POSTGRES_HOST", "db.internal")

	conf, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, "db.internal", conf.Postgres.Host)
}

func TestLoad_DatabaseURL(t *testing.T) {
	withoutPostgres := validConfig[:strings.Index(validConfig, "postgres:")]

	t.Run("replaces postgres section", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://election:secret@db:5432/election")

		conf, err := Load(writeConfig(t, withoutPostgres))
		require.NoError(t, err)
		assert.Equal(t, "postgres://election:secret@db:5432/election", conf.DatabaseURL)
	})

	t.Run("postgres section required without it", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")

		_, err := Load(writeConfig(t, withoutPostgres))
		assert.Error(t, err)
	})
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing signing key",
			content: "api:\n  port: \"8080\"\ngin:\n  mode: test\npostgres:\n  host: h\n  port: \"5432\"\n  user: u\n  db: d\n",
		},
		{
			name:    "bad port",
			content: "api:\n  port: \"http\"\n  jwt_signing_key: 0123456789abcdef0123\ngin:\n  mode: test\npostgres:\n  host: h\n  port: \"5432\"\n  user: u\n  db: d\n",
		},
		{
			name:    "unknown gin mode",
			content: "api:\n  port: \"8080\"\n  jwt_signing_key: 0123456789abcdef0123\ngin:\n  mode: fast\npostgres:\n  host: h\n  port: \"5432\"\n  user: u\n  db: d\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoadAndWatch(t *testing.T) {
	path := writeConfig(t, validConfig)

	var level atomic.Value
	conf, err := LoadAndWatch(path, func(c *AppConfig) {
		level.Store(c.API.LogLevel)
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", conf.API.LogLevel)

	updated := strings.Replace(validConfig, "log_level: debug", "log_level: warn", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	assert.Eventually(t, func() bool {
		v, _ := level.Load().(string)
		return v == "warn"
	}, 5*time.Second, 50*time.Millisecond)
}
