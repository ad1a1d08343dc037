package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the notes CLI.
//
// Fields:
//   - ServerURL: base URL of the notes REST API.
//   - TokenFile: where login stores the token for later commands.
//   - RequestTimeout: per-request deadline.
type Config struct {
	ServerURL      string
	TokenFile      string
	RequestTimeout time.Duration
}

// EnvServerURL overrides the server URL when set.
const EnvServerURL = "NOTES_SERVER"

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.TokenFile = defaultTokenFile()
	c.RequestTimeout = 10 * time.Second
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".gophnotes", "token")
	}
	return filepath.Join(home, ".gophnotes", "token")
}

// LoadConfig builds a Config from defaults, an optional JSON file (-c),
// NOTES_SERVER and flags, later sources winning. It returns the
// remaining positional arguments: the command and its operands.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	f, err := parseFlags(args)
	if err != nil {
		return nil, nil, err
	}

	if f.configFile != "" {
		if err := parseJSON(cfg, f.configFile); err != nil {
			return nil, nil, err
		}
	}

	if v := os.Getenv(EnvServerURL); v != "" {
		cfg.ServerURL = v
	}

	f.apply(cfg)

	return cfg, f.rest, nil
}
