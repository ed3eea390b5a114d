package entries

import (
	"context"

	"github.com/dmitrijs2005/gophdiary/internal/server/models"
)

// Repository is the owner-scoped view of the entries table. Every method
// takes the caller's user id; rows of other users are invisible.
type Repository interface {
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Entry, error)
	GetByID(ctx context.Context, userID, id string) (*models.Entry, error)
	DeleteByID(ctx context.Context, userID, id string) error
}
