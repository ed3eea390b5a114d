// Package server wires configuration, the database, the media bucket and the
// services together and runs the REST API with the optional orphan sweeper.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"github.com/dmitrijs2005/gophdiary/internal/server/auth"
	"github.com/dmitrijs2005/gophdiary/internal/server/config"
	"github.com/dmitrijs2005/gophdiary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdiary/internal/server/rest"
	"github.com/dmitrijs2005/gophdiary/internal/server/services"
	"github.com/dmitrijs2005/gophdiary/internal/server/storage"
	"golang.org/x/sync/errgroup"
)

const pingTimeout = 5 * time.Second

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	userService  *services.UserService
	diaryService *services.DiaryService
	sweeper      *services.OrphanSweeper
}

// OpenDatabase opens the pgx pool behind database/sql, checks connectivity
// and returns the repository manager for it.
func OpenDatabase(ctx context.Context, dsn string) (*sql.DB, repomanager.RepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	m, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}
	return db, m, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, m, err := OpenDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	bucket, err := storage.New(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	return &App{
		config:       c,
		logger:       logger,
		db:           db,
		userService:  services.NewUserService(db, m, c),
		diaryService: services.NewDiaryService(db, m, bucket, auth.ContextSession{}, logger, c),
		sweeper:      services.NewOrphanSweeper(db, m, bucket, logger),
	}, nil
}

// Run blocks until SIGINT/SIGTERM/SIGQUIT or until the HTTP server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.db.Close()
	defer func() { _ = logging.Sync(app.logger) }()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s := rest.NewRESTServer(app.config.HTTPAddr, app.logger, app.userService, app.diaryService, app.config.SecretKey)
		return s.Run(ctx)
	})

	if app.config.SweepInterval > 0 {
		g.Go(func() error {
			app.sweeper.Run(ctx, app.config.SweepInterval, app.config.SweepGrace)
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "app stopped with error", "error", err)
	}
	return err
}
