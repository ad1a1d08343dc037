package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:8080", "-r", "127.0.0.1:9090", "-n", "sqlite", "-d", "db", "-s", "secret",
			"-t", "60", "-m", "s3", "-i", "/data/img", "-u", "user", "-p", "password", "-b", "bucket",
			"-g", "us-west-1", "-e", "http://endpoint", "-l", "debug",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddrHTTP:      "127.0.0.1:8080",
				EndpointAddrGRPC:      "127.0.0.1:9090",
				DatabaseDriver:        "sqlite",
				DatabaseDSN:           "db",
				SecretKey:             "secret",
				TokenValidityDuration: 1 * time.Minute,
				ImageStorage:          "s3",
				ImageDir:              "/data/img",
				S3RootUser:            "user",
				S3RootPassword:        "password",
				S3Bucket:              "bucket",
				S3Region:              "us-west-1",
				S3BaseEndpoint:        "http://endpoint",
				LogLevel:              "debug",
			}},
		{name: "config flag is ignored", args: []string{"cmd", "-c", "cfg.json", "-s", "secret"},
			expected: &Config{SecretKey: "secret"}},
		{name: "bad int panics", args: []string{"cmd", "-t", "forever"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
