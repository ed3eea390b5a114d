package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable name read here.
const EnvPrefix = "DIARY_"

// parseEnv loads an optional dotenv file (DIARY_ENV_FILE, default ".env")
// without overriding variables already set, then copies every DIARY_*
// variable that is present over config. Malformed values panic.
func parseEnv(config *Config) {
	envFile := os.Getenv(EnvPrefix + "ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if err := applyEnv(config, os.LookupEnv); err != nil {
		panic(err)
	}
}

type lookupFunc func(key string) (string, bool)

func applyEnv(config *Config, lookup lookupFunc) error {
	strs := map[string]*string{
		"HTTP_ADDR":        &config.HTTPAddr,
		"DATABASE_DSN":     &config.DatabaseDSN,
		"SECRET_KEY":       &config.SecretKey,
		"S3_ROOT_USER":     &config.S3RootUser,
		"S3_ROOT_PASSWORD": &config.S3RootPassword,
		"S3_BUCKET":        &config.S3Bucket,
		"S3_REGION":        &config.S3Region,
		"S3_BASE_ENDPOINT": &config.S3BaseEndpoint,
		"STORAGE_BACKEND":  &config.StorageBackend,
		"MINIO_ENDPOINT":   &config.MinioEndpoint,
		"LOG_FORMAT":       &config.LogFormat,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_VALIDITY": &config.AccessTokenValidityDuration,
		"SIGNED_URL_TTL":        &config.SignedURLTTL,
		"SWEEP_INTERVAL":        &config.SweepInterval,
		"SWEEP_GRACE":           &config.SweepGrace,
	}
	for name, dst := range durations {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
	}

	bools := map[string]*bool{
		"MINIO_USE_SSL":  &config.MinioUseSSL,
		"CASCADE_DELETE": &config.CascadeDelete,
	}
	for name, dst := range bools {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
	}

	return nil
}
