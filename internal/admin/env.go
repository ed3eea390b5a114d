// Package admin implements diaryadm, the operator CLI that works directly
// against the diary database and media bucket.
package admin

import (
	"context"
	"database/sql"
	"io"
	"os"

	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"github.com/dmitrijs2005/gophdiary/internal/server"
	"github.com/dmitrijs2005/gophdiary/internal/server/config"
	"github.com/dmitrijs2005/gophdiary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdiary/internal/server/storage"
	"golang.org/x/term"
)

// Env holds the process-facing dependencies of the commands. Tests replace
// the functions to avoid a real database, bucket or terminal.
type Env struct {
	Out io.Writer
	In  io.Reader

	LoadConfig   func(path string) (*config.Config, error)
	OpenDatabase func(ctx context.Context, dsn string) (*sql.DB, repomanager.RepositoryManager, error)
	OpenBucket   func(ctx context.Context, cfg *config.Config) (storage.Bucket, error)
	NewLogger    func(format string) (logging.Logger, error)
	ReadPassword func(fd int) ([]byte, error)
}

func DefaultEnv() *Env {
	return &Env{
		Out:          os.Stdout,
		In:           os.Stdin,
		LoadConfig:   config.LoadFileAndEnv,
		OpenDatabase: server.OpenDatabase,
		OpenBucket:   storage.New,
		NewLogger:    logging.New,
		ReadPassword: term.ReadPassword,
	}
}

// session is what a single command run has opened.
type session struct {
	cfg    *config.Config
	db     *sql.DB
	m      repomanager.RepositoryManager
	bucket storage.Bucket
	log    logging.Logger
}

func (s *session) Close() error {
	_ = logging.Sync(s.log)
	return s.db.Close()
}

func (e *Env) open(ctx context.Context, configPath string, withBucket bool) (*session, error) {
	cfg, err := e.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	log, err := e.NewLogger(cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	db, m, err := e.OpenDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, db: db, m: m, log: log}
	if withBucket {
		s.bucket, err = e.OpenBucket(ctx, cfg)
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}
