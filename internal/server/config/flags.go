package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gophdiary/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-t duration   access token validity (e.g., "24h")
//	-u string     storage root user
//	-p string     storage root password
//	-b string     bucket name
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-k string     storage backend: s3 | minio
//	-m string     minio endpoint host:port
//	-l string     log format: json | zap
//	-ttl duration default signed URL lifetime
//	-cascade      delete media together with their entry
//	-sweep duration  orphan sweep interval, 0 disables
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-t", "-u", "-p", "-b", "-g", "-e", "-k", "-m", "-l", "-ttl", "-cascade", "-sweep",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.AccessTokenValidityDuration, "t", config.AccessTokenValidityDuration, "access token validity duration")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "storage root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "storage root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.StorageBackend, "k", config.StorageBackend, "storage backend (s3|minio)")
	fs.StringVar(&config.MinioEndpoint, "m", config.MinioEndpoint, "minio endpoint")

	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format (json|zap)")
	fs.DurationVar(&config.SignedURLTTL, "ttl", config.SignedURLTTL, "default signed URL lifetime")
	fs.BoolVar(&config.CascadeDelete, "cascade", config.CascadeDelete, "delete media with their entry")
	fs.DurationVar(&config.SweepInterval, "sweep", config.SweepInterval, "orphan sweep interval (0 disables)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
