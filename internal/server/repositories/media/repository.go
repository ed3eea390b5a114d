package media

import (
	"context"

	"github.com/dmitrijs2005/gophdiary/internal/server/models"
)

// Repository persists media rows. Every read and write is scoped to the
// owner of the parent entry.
type Repository interface {
	Create(ctx context.Context, userID string, m *models.Media) (*models.Media, error)
	SelectKinds(ctx context.Context, userID string, entryIDs []string) ([]models.MediaKindRow, error)
	ListByEntryID(ctx context.Context, userID, entryID string) ([]*models.Media, error)
	DeleteByEntryID(ctx context.Context, userID, entryID string) ([]string, error)
	ExistingPaths(ctx context.Context, paths []string) (map[string]bool, error)
}
