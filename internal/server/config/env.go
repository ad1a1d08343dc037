package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable the server reads.
const EnvPrefix = "NOTES_"

// parseEnv overlays Config with NOTES_* environment variables. A .env file in
// the working directory is loaded first when present; variables already set
// in the process environment win over it.
//
// Recognized variables:
//
//	NOTES_HTTP_ADDR, NOTES_GRPC_ADDR, NOTES_DATABASE_DRIVER, NOTES_DATABASE_DSN,
//	NOTES_SECRET_KEY, NOTES_TOKEN_VALIDITY (Go duration or seconds),
//	NOTES_PASSWORD_HASH_COST, NOTES_IMAGE_STORAGE, NOTES_IMAGE_DIR,
//	NOTES_S3_USER, NOTES_S3_PASSWORD, NOTES_S3_BUCKET, NOTES_S3_REGION,
//	NOTES_S3_ENDPOINT, NOTES_LOG_LEVEL, NOTES_LOG_FORMAT
//
// Malformed numeric or duration values panic.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	envString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	envString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	envString(&config.DatabaseDriver, "DATABASE_DRIVER")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.SecretKey, "SECRET_KEY")

	if v, ok := lookup("TOKEN_VALIDITY"); ok {
		d, err := parseDuration(v)
		if err != nil {
			panic(err)
		}
		config.TokenValidityDuration = d
	}

	if v, ok := lookup("PASSWORD_HASH_COST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.PasswordHashCost = n
	}

	envString(&config.ImageStorage, "IMAGE_STORAGE")
	envString(&config.ImageDir, "IMAGE_DIR")
	envString(&config.S3RootUser, "S3_USER")
	envString(&config.S3RootPassword, "S3_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_ENDPOINT")
	envString(&config.LogLevel, "LOG_LEVEL")
	envString(&config.LogFormat, "LOG_FORMAT")
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func envString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

// parseDuration accepts either a Go duration ("100000s", "24h") or a bare
// number of seconds.
func parseDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}
