package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_NAME", "PORT", "DATABASE_URL", "DATABASE_MAX_CONNS", "LISTING_SOURCE", "POSTGREST_URL", "POSTGREST_API_KEY",
	"STORAGE_URL", "STORAGE_SERVICE_KEY", "STORAGE_BUCKET", "WHATSAPP_NUMBER", "AUTH_JWT_SECRET",
	"CORS_ALLOWED_ORIGINS", "RABBITMQ_ENABLED", "RABBITMQ_URL", "FLUENTBIT_ENABLED", "FLUENTBIT_HOST",
	"FLUENTBIT_PORT", "FLUENTBIT_LOG_LEVEL", "STDOUT_LOG_LEVEL", "AGGREGATOR_REFRESH_INTERVAL", "AGGREGATOR_FETCH_TIMEOUT",
}

// clearEnv сбрасывает переменные и переходит в пустой каталог без .env
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Chdir(t.TempDir())
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/listings")
	t.Setenv("WHATSAPP_NUMBER", "+1 (555) 000-1111")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "listing-service", cfg.AppName)
	assert.Equal(t, "8080", cfg.Rest.PORT)
	assert.Equal(t, SourcePostgres, cfg.ListingSource)
	assert.Equal(t, "property-images", cfg.Storage.Bucket)
	assert.Equal(t, 5*time.Minute, cfg.Aggregator.RefreshInterval)
	assert.Equal(t, "debug", cfg.StdoutLogger.Level)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.False(t, cfg.AdminEnabled())
	assert.NotEmpty(t, cfg.Warnings)
}

func TestLoadConfig_PostgRESTSource(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTING_SOURCE", "PostgREST")
	t.Setenv("POSTGREST_URL", "https://project.example")
	t.Setenv("POSTGREST_API_KEY", "anon")
	t.Setenv("WHATSAPP_NUMBER", "15550001111")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("AGGREGATOR_REFRESH_INTERVAL", "30s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, SourcePostgREST, cfg.ListingSource)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Rest.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Aggregator.RefreshInterval)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{"WHATSAPP_NUMBER": "1"}},
		{"missing postgrest key", map[string]string{"LISTING_SOURCE": "postgrest", "POSTGREST_URL": "http://x", "WHATSAPP_NUMBER": "1"}},
		{"unknown source", map[string]string{"LISTING_SOURCE": "mysql", "WHATSAPP_NUMBER": "1"}},
		{"missing whatsapp number", map[string]string{"DATABASE_URL": "postgres://x"}},
		{"rabbitmq without url", map[string]string{"DATABASE_URL": "postgres://x", "WHATSAPP_NUMBER": "1", "RABBITMQ_ENABLED": "true"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_BadValuesFallBackWithWarnings(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("WHATSAPP_NUMBER", "1")
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("DATABASE_MAX_CONNS", "many")
	t.Setenv("AGGREGATOR_REFRESH_INTERVAL", "soon")
	t.Setenv("FLUENTBIT_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Database.MaxConns)
	assert.Equal(t, 5*time.Minute, cfg.Aggregator.RefreshInterval)
	assert.False(t, cfg.FluentBit.Enabled)
	assert.True(t, cfg.AdminEnabled())
	assert.Len(t, cfg.Warnings, 3)
}

func TestLoadConfig_ExplicitEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DATABASE_URL=postgres://file\nWHATSAPP_NUMBER=123\nPORT=9090\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Rest.PORT)
	assert.Equal(t, "postgres://file", cfg.Database.URL)

	_, err = LoadConfig(filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
}
