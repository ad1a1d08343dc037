// Package config loads runtime configuration for the notes CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. The NOTES_SERVER environment variable.
//  4. Command-line flags in front of the command, which override earlier values.
//
// # JSON schema
//
// Timeouts use timex.Duration, so values can be either strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:3000",
//	  "token_file": "/home/me/.gophnotes/token",
//	  "request_timeout": "10s"
//	}
package config
