package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/flagx"
	"github.com/joho/godotenv"
)

// envPrefix namespaces every environment variable read by the server.
const envPrefix = "TRACKER_"

// loadDotenv is a seam for godotenv.Load.
var loadDotenv = godotenv.Load

// parseEnv loads an optional dotenv file (-env flag, or ./.env when present)
// into the process environment and then overlays TRACKER_* variables.
// Variables already set in the environment win over the dotenv file.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := loadDotenv(path); err != nil {
			panic(err)
		}
	} else if err := loadDotenv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	config.HTTPAddr = getEnv("HTTP_ADDR", config.HTTPAddr)
	config.DatabaseDSN = getEnv("DATABASE_DSN", config.DatabaseDSN)
	config.SecretKey = getEnv("SECRET_KEY", config.SecretKey)
	config.SessionTokenValidityDuration = getEnvDuration("SESSION_TOKEN_VALIDITY", config.SessionTokenValidityDuration)
	config.CookieSecure = getEnvBool("COOKIE_SECURE", config.CookieSecure)
	config.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", config.RequestTimeout)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)
	config.RedisURL = getEnv("REDIS_URL", config.RedisURL)
	config.AuthRateLimit = getEnvInt("AUTH_RATE_LIMIT", config.AuthRateLimit)
	config.S3RootUser = getEnv("S3_ROOT_USER", config.S3RootUser)
	config.S3RootPassword = getEnv("S3_ROOT_PASSWORD", config.S3RootPassword)
	config.S3Bucket = getEnv("S3_BUCKET", config.S3Bucket)
	config.S3Region = getEnv("S3_REGION", config.S3Region)
	config.S3BaseEndpoint = getEnv("S3_BASE_ENDPOINT", config.S3BaseEndpoint)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
