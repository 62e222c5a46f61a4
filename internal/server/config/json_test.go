package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("loads from json", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{
			"endpoint_addr_http":   "127.0.0.1:9000",
			"database_dsn":         "postgres://db",
			"secret_key":           "my_secret_key",
			"token_ttl":            "1h",
			"bcrypt_cost":          12,
			"log_format":           "console",
			"log_level":            "warn",
			"cors_allowed_origins": []string{"http://localhost:5173"},
			"admin_users":          []string{"root"},
		})
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		require.NoError(t, parseJson(cfg))

		assert.Equal(t, "127.0.0.1:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, time.Hour, cfg.TokenTTL)
		assert.Equal(t, 12, cfg.BcryptCost)
		assert.Equal(t, "console", cfg.LogFormat)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
		assert.Equal(t, []string{"root"}, cfg.AdminUsers)
	})

	t.Run("no config flag leaves config untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}
		cfg := &Config{SecretKey: "key", TokenTTL: time.Minute}
		require.NoError(t, parseJson(cfg))
		assert.Equal(t, &Config{SecretKey: "key", TokenTTL: time.Minute}, cfg)
	})

	t.Run("partial file keeps other fields", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{"token_ttl": 60000000000})
		os.Args = []string{"testbin", "-c", path}
		cfg := &Config{SecretKey: "keep"}
		require.NoError(t, parseJson(cfg))
		assert.Equal(t, "keep", cfg.SecretKey)
		assert.Equal(t, time.Minute, cfg.TokenTTL)
	})

	t.Run("missing file", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "nope.json")}
		require.Error(t, parseJson(&Config{}))
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
		os.Args = []string{"testbin", "-c", path}
		require.Error(t, parseJson(&Config{}))
	})
}
