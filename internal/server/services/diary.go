// Package services contains the server-side business logic. DiaryService is
// the core: entry CRUD, media attachment, indicator aggregation and signed
// URL issuance, always on behalf of the caller resolved by a SessionProvider.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/dbx"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"github.com/dmitrijs2005/gophdiary/internal/server/config"
	"github.com/dmitrijs2005/gophdiary/internal/server/models"
	"github.com/dmitrijs2005/gophdiary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdiary/internal/server/storage"
	"github.com/google/uuid"
)

// DefaultSignedURLTTL applies when neither the caller nor the config sets one.
const DefaultSignedURLTTL = time.Hour

// SessionProvider resolves the authenticated caller. It returns
// common.ErrUnauthenticated when there is none.
type SessionProvider interface {
	CurrentUserID(ctx context.Context) (string, error)
}

type DiaryService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	bucket        storage.Bucket
	session       SessionProvider
	log           logging.Logger
	signedURLTTL  time.Duration
	cascadeDelete bool
	now           func() time.Time
}

func NewDiaryService(db *sql.DB, m repomanager.RepositoryManager, bucket storage.Bucket,
	session SessionProvider, log logging.Logger, cfg *config.Config) *DiaryService {
	ttl := cfg.SignedURLTTL
	if ttl <= 0 {
		ttl = DefaultSignedURLTTL
	}
	return &DiaryService{
		db:            db,
		repomanager:   m,
		bucket:        bucket,
		session:       session,
		log:           log.With("module", "diary"),
		signedURLTTL:  ttl,
		cascadeDelete: cfg.CascadeDelete,
		now:           time.Now,
	}
}

func (s *DiaryService) caller(ctx context.Context) (string, error) {
	id, err := s.session.CurrentUserID(ctx)
	if err != nil {
		if errors.Is(err, common.ErrUnauthenticated) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", common.ErrUnauthenticated, err)
	}
	if id == "" {
		return "", common.ErrUnauthenticated
	}
	return id, nil
}

func queryFailed(err error) error {
	return fmt.Errorf("%w: %w", common.ErrQueryFailed, err)
}

// canonicalID returns id in the lowercase hyphenated form Postgres hands
// back for uuid columns. ok is false when id cannot match a row at all, which
// callers treat as "no such row" rather than sending it to the database.
func canonicalID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// CreateEntry inserts an entry owned by the caller and returns the stored row.
func (s *DiaryService) CreateEntry(ctx context.Context, title, body string) (*models.Entry, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	e, err := s.repomanager.Entries(s.db).Create(ctx, &models.Entry{UserID: userID, Title: title, Body: body})
	if err != nil {
		return nil, queryFailed(err)
	}

	s.log.Info(ctx, "entry created", "entry_id", e.ID, "user_id", userID)
	return e, nil
}

// ListEntries returns the caller's entries, newest first.
func (s *DiaryService) ListEntries(ctx context.Context) ([]*models.Entry, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	return s.listEntries(ctx, userID)
}

func (s *DiaryService) listEntries(ctx context.Context, userID string) ([]*models.Entry, error) {
	list, err := s.repomanager.Entries(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, queryFailed(err)
	}
	return list, nil
}

// GetEntry returns nil, nil when no row is visible to the caller.
func (s *DiaryService) GetEntry(ctx context.Context, id string) (*models.Entry, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	id, ok := canonicalID(id)
	if !ok {
		return nil, nil
	}

	e, err := s.repomanager.Entries(s.db).GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, queryFailed(err)
	}
	return e, nil
}

// DeleteEntry is idempotent. Media rows and blobs are left alone unless
// cascade delete is enabled.
func (s *DiaryService) DeleteEntry(ctx context.Context, id string) error {
	userID, err := s.caller(ctx)
	if err != nil {
		return err
	}
	id, ok := canonicalID(id)
	if !ok {
		return nil
	}

	if !s.cascadeDelete {
		if err := s.repomanager.Entries(s.db).DeleteByID(ctx, userID, id); err != nil {
			return queryFailed(err)
		}
		return nil
	}

	var paths []string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		paths, err = s.repomanager.Media(tx).DeleteByEntryID(ctx, userID, id)
		if err != nil {
			return err
		}
		return s.repomanager.Entries(tx).DeleteByID(ctx, userID, id)
	})
	if err != nil {
		return queryFailed(err)
	}

	if len(paths) > 0 {
		if err := s.bucket.Remove(ctx, paths...); err != nil {
			s.log.Warn(ctx, "media blobs left behind after entry delete",
				"entry_id", id, "paths", paths, "error", err)
		}
	}
	return nil
}
