package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func Test_parseFile_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	jsonPath := writeTempFile(t, "cfg.json", `{
		"endpoint_addr_http": "www.example:8080",
		"endpoint_addr_grpc": "www.example:9000",
		"database_driver": "sqlite",
		"database_dsn": "notes.db",
		"secret_key": "my_secret_key",
		"token_validity_duration": "100000s",
		"password_hash_cost": 12,
		"image_storage": "s3",
		"image_dir": "/tmp/img",
		"s3_root_user": "user",
		"s3_root_password": "password",
		"s3_bucket": "bucket",
		"s3_region": "region",
		"s3_base_endpoint": "base_endpoint",
		"log_level": "debug",
		"log_format": "zerolog"
	}`)

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", jsonPath}

		cfg := &Config{}
		parseFile(cfg)

		assert.Equal(t, "www.example:8080", cfg.EndpointAddrHTTP)
		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "sqlite", cfg.DatabaseDriver)
		assert.Equal(t, "notes.db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 100000*time.Second, cfg.TokenValidityDuration)
		assert.Equal(t, 12, cfg.PasswordHashCost)
		assert.Equal(t, "s3", cfg.ImageStorage)
		assert.Equal(t, "/tmp/img", cfg.ImageDir)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "zerolog", cfg.LogFormat)
	})

	t.Run("loads from yaml", func(t *testing.T) {
		yamlPath := writeTempFile(t, "cfg.yaml", "endpoint_addr_http: \":8081\"\ntoken_validity_duration: 1m\nlog_format: text\n")
		os.Args = []string{"testbin", "-c", yamlPath}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFile(cfg)

		assert.Equal(t, ":8081", cfg.EndpointAddrHTTP)
		assert.Equal(t, time.Minute, cfg.TokenValidityDuration)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC, "absent keys keep current values")
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddrHTTP:      "defaults:80",
			DatabaseDSN:           "notes.db",
			SecretKey:             "key",
			TokenValidityDuration: 2 * time.Minute,
		}
		parseFile(cfg)

		assert.Equal(t, "defaults:80", cfg.EndpointAddrHTTP)
		assert.Equal(t, "notes.db", cfg.DatabaseDSN)
		assert.Equal(t, "key", cfg.SecretKey)
		assert.Equal(t, 2*time.Minute, cfg.TokenValidityDuration)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := writeTempFile(t, "bad.json", `{ this is not valid json`)
		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseFile(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "nope.json")}

		cfg := &Config{}
		require.Panics(t, func() { parseFile(cfg) })
	})
}
