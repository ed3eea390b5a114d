package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophdiary/internal/flagx"
	"github.com/dmitrijs2005/gophdiary/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Interval fields
// use timex.Duration so both "1h" and integer nanoseconds are accepted.
// Pointer fields distinguish "absent" from the zero value.
type JsonConfig struct {
	HTTPAddr                    string          `json:"http_addr"`
	DatabaseDSN                 string          `json:"database_dsn"`
	SecretKey                   string          `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	S3RootUser                  string          `json:"s3_root_user"`
	S3RootPassword              string          `json:"s3_root_password"`
	S3Bucket                    string          `json:"s3_bucket"`
	S3Region                    string          `json:"s3_region"`
	S3BaseEndpoint              string          `json:"s3_base_endpoint"`
	StorageBackend              string          `json:"storage_backend"`
	MinioEndpoint               string          `json:"minio_endpoint"`
	MinioUseSSL                 *bool           `json:"minio_use_ssl"`
	SignedURLTTL                *timex.Duration `json:"signed_url_ttl"`
	CascadeDelete               *bool           `json:"cascade_delete"`
	SweepInterval               *timex.Duration `json:"sweep_interval"`
	SweepGrace                  *timex.Duration `json:"sweep_grace"`
	LogFormat                   string          `json:"log_format"`
}

// parseJson loads the file named by -c / -config, if any, and copies every
// field present in it over config. An unreadable or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	if err := applyJsonFile(config, jsonConfigFile); err != nil {
		panic(err)
	}
}

func applyJsonFile(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.MinioEndpoint, c.MinioEndpoint)
	setString(&config.LogFormat, c.LogFormat)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.SignedURLTTL != nil {
		config.SignedURLTTL = c.SignedURLTTL.Duration
	}
	if c.SweepInterval != nil {
		config.SweepInterval = c.SweepInterval.Duration
	}
	if c.SweepGrace != nil {
		config.SweepGrace = c.SweepGrace.Duration
	}
	if c.MinioUseSSL != nil {
		config.MinioUseSSL = *c.MinioUseSSL
	}
	if c.CascadeDelete != nil {
		config.CascadeDelete = *c.CascadeDelete
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
