// Package rest exposes the diary over HTTP/JSON using gin.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"github.com/dmitrijs2005/gophdiary/internal/server/models"
	"github.com/gin-gonic/gin"
)

const (
	maxUploadMemory = 32 << 20
	shutdownTimeout = 10 * time.Second
)

// DiaryAPI is the part of services.DiaryService the handlers call.
type DiaryAPI interface {
	CreateEntry(ctx context.Context, title, body string) (*models.Entry, error)
	ListEntries(ctx context.Context) ([]*models.Entry, error)
	ListEntriesWithIndicators(ctx context.Context) ([]models.EntryWithIndicators, error)
	GetEntryDetails(ctx context.Context, id string) (*models.EntryDetails, error)
	DeleteEntry(ctx context.Context, id string) error
	AttachMedia(ctx context.Context, entryID string, file models.LocalFile, kind models.MediaKind) (string, error)
	ListMedia(ctx context.Context, entryID string) ([]*models.Media, error)
	IndicatorsForEntries(ctx context.Context, entryIDs []string) (map[string]models.Indicators, error)
	GetSignedURL(ctx context.Context, storagePath string, ttl time.Duration) (string, error)
}

// UserAPI is the part of services.UserService the handlers call.
type UserAPI interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type RESTServer struct {
	address   string
	users     UserAPI
	diary     DiaryAPI
	logger    logging.Logger
	jwtSecret []byte
	engine    *gin.Engine
}

func NewRESTServer(a string, l logging.Logger, us UserAPI, ds DiaryAPI, secretKey string) *RESTServer {
	s := &RESTServer{
		address:   a,
		logger:    l.With("module", "rest_server"),
		users:     us,
		diary:     ds,
		jwtSecret: []byte(secretKey),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the configured router, mainly for httptest.
func (s *RESTServer) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *RESTServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
