package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "countries_db", cfg.Mongo.Database)
	assert.Equal(t, "countries", cfg.Mongo.Collection)
	assert.Equal(t, "migrations_history", cfg.Mongo.MigrationsCollection)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Contains(t, cfg.Upstream.CountriesURL, "restcountries.com/v2/all")
	assert.Equal(t, "https://open.er-api.com/v6/latest/USD", cfg.Upstream.RatesURL)
	assert.Equal(t, time.Duration(0), cfg.Refresh.Interval)
	assert.False(t, cfg.Refresh.OnStart)
	assert.Equal(t, 5, cfg.Refresh.Workers)
	assert.Equal(t, "file", cfg.Artifact.Backend)
	assert.Equal(t, "cache", cfg.Artifact.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("REFRESH_INTERVAL", "1h")
	t.Setenv("REFRESH_ON_START", "true")
	t.Setenv("ARTIFACT_BACKEND", "minio")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.ConnectionURI())
	assert.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, time.Hour, cfg.Refresh.Interval)
	assert.True(t, cfg.Refresh.OnStart)
	assert.Equal(t, "minio", cfg.Artifact.Backend)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MONGO_DATABASE=from_dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("MONGO_DATABASE") })

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from_dotenv", cfg.Mongo.Database)
}

func TestMongoConfig_ConnectionURI(t *testing.T) {
	tests := []struct {
		name string
		cfg  MongoConfig
		want string
	}{
		{"explicit uri wins", MongoConfig{URI: "mongodb://x:1", Host: "h", Port: "2"}, "mongodb://x:1"},
		{"host and port", MongoConfig{Host: "localhost", Port: "27017"}, "mongodb://localhost:27017"},
		{"with credentials", MongoConfig{Host: "db", Port: "27017", User: "admin", Pass: "p@ss"}, "mongodb://admin:p%40ss@db:27017"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.ConnectionURI())
		})
	}
}
