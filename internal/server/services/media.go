package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/server/models"
)

// StoragePath builds "{entryID}/{unixMillis}-{fileName}".
func StoragePath(entryID string, at time.Time, fileName string) string {
	return fmt.Sprintf("%s/%d-%s", entryID, at.UnixMilli(), fileName)
}

// entryIDFromPath returns the first path segment, which is the owning entry.
func entryIDFromPath(p string) string {
	id, _, _ := strings.Cut(p, "/")
	return id
}

// AttachMedia uploads file under the entry's prefix and then records the
// media row, returning the storage path. A failed upload leaves no row. A
// failed insert leaves the uploaded blob behind for the orphan sweep.
func (s *DiaryService) AttachMedia(ctx context.Context, entryID string, file models.LocalFile, kind models.MediaKind) (string, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return "", err
	}

	if _, err := models.ParseMediaKind(string(kind)); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	name := path.Base(file.Name)
	if file.Content == nil || name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("%w: file name and content are required", common.ErrValidation)
	}
	id, ok := canonicalID(entryID)
	if !ok {
		return "", fmt.Errorf("%w: entry %s", common.ErrorNotFound, entryID)
	}
	entryID = id

	if _, err := s.repomanager.Entries(s.db).GetByID(ctx, userID, entryID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("%w: entry %s", common.ErrorNotFound, entryID)
		}
		return "", queryFailed(err)
	}

	storagePath := StoragePath(entryID, s.now(), name)

	data, err := io.ReadAll(file.Content)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}

	if err := s.bucket.Upload(ctx, storagePath, data, file.MimeType, false); err != nil {
		return "", err
	}

	m, err := s.repomanager.Media(s.db).Create(ctx, userID, &models.Media{
		EntryID:     entryID,
		Kind:        kind,
		StoragePath: storagePath,
	})
	if err != nil {
		s.log.Warn(ctx, "media row insert failed, blob orphaned",
			"entry_id", entryID, "storage_path", storagePath, "error", err)
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("%w: entry %s", common.ErrorNotFound, entryID)
		}
		return "", queryFailed(err)
	}

	s.log.Info(ctx, "media attached", "entry_id", entryID, "media_id", m.ID, "kind", string(kind), "size", len(data))
	return storagePath, nil
}

// ListMedia returns the media of one of the caller's entries, newest first.
func (s *DiaryService) ListMedia(ctx context.Context, entryID string) ([]*models.Media, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	entryID, ok := canonicalID(entryID)
	if !ok {
		return []*models.Media{}, nil
	}

	list, err := s.repomanager.Media(s.db).ListByEntryID(ctx, userID, entryID)
	if err != nil {
		return nil, queryFailed(err)
	}
	return list, nil
}

// GetSignedURL issues a fresh read URL for one of the caller's objects.
// ttl <= 0 selects the configured default. Paths outside the caller's
// entries fail with common.ErrSigningFailed, same as missing objects.
func (s *DiaryService) GetSignedURL(ctx context.Context, storagePath string, ttl time.Duration) (string, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = s.signedURLTTL
	}

	entryID, ok := canonicalID(entryIDFromPath(storagePath))
	if !ok {
		return "", fmt.Errorf("%w: %s", common.ErrSigningFailed, storagePath)
	}
	if _, err := s.repomanager.Entries(s.db).GetByID(ctx, userID, entryID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("%w: %s", common.ErrSigningFailed, storagePath)
		}
		return "", queryFailed(err)
	}

	return s.bucket.SignURL(ctx, storagePath, ttl)
}

// GetEntryDetails returns the entry with its media, each carrying a fresh
// signed URL, or nil when the entry is not visible. Media whose blob cannot
// be signed are returned with an empty URL.
func (s *DiaryService) GetEntryDetails(ctx context.Context, id string) (*models.EntryDetails, error) {
	e, err := s.GetEntry(ctx, id)
	if err != nil || e == nil {
		return nil, err
	}

	list, err := s.ListMedia(ctx, id)
	if err != nil {
		return nil, err
	}

	details := &models.EntryDetails{Entry: e, Media: make([]models.MediaWithURL, 0, len(list))}
	for _, m := range list {
		u, err := s.bucket.SignURL(ctx, m.StoragePath, s.signedURLTTL)
		if err != nil {
			s.log.Warn(ctx, "signed url unavailable", "storage_path", m.StoragePath, "error", err)
		}
		details.Media = append(details.Media, models.MediaWithURL{Media: *m, URL: u})
	}
	return details, nil
}
