package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psidex/arat/internal/enrollment"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, "", cfg.GRPCListen)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultQueryTimeout, cfg.Neo4j.QueryTimeout.Duration)
	assert.Equal(t, DefaultHealthInterval, cfg.HealthInterval.Duration)
	assert.Equal(t, enrollment.DefaultBounds(), cfg.Limits)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
listen: 0.0.0.0:9000
grpcListen: 127.0.0.1:9001
logLevel: debug
healthInterval: 1m
neo4j:
  database: arat
  queryTimeout: 5s
limits:
  max: 200
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, "127.0.0.1:9001", cfg.GRPCListen)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, time.Minute, cfg.HealthInterval.Duration)
	assert.Equal(t, "arat", cfg.Neo4j.Database)
	assert.Equal(t, 5*time.Second, cfg.Neo4j.QueryTimeout.Duration)
	assert.Equal(t, enrollment.Bounds{Min: enrollment.MinLimit, Max: 200, Default: enrollment.DefaultLimit}, cfg.Limits)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "listen: [unterminated"},
		{"bad duration", "neo4j:\n  queryTimeout: soon\n"},
		{"inverted limits", "limits:\n  min: 100\n  max: 20\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyEnv(t *testing.T) {
	path := writeConfig(t, `
neo4j:
  uri: bolt://file:7687
  user: file-user
  password: file-password
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	env := map[string]string{
		EnvURI:  "neo4j://env:7687",
		EnvUser: "env-user",
	}
	cfg.ApplyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	sc := cfg.StoreConfig()
	assert.Equal(t, "neo4j://env:7687", sc.URI)
	assert.Equal(t, "env-user", sc.Username)
	assert.Equal(t, "file-password", sc.Password, "unset variables leave the file value")
	assert.Equal(t, DefaultQueryTimeout, sc.QueryTimeout)
}
