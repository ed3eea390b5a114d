// Package media provides the PostgreSQL-backed repository for media rows.
package media

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/dbx"
	"github.com/dmitrijs2005/gophdiary/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements media storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a media row only if the parent entry exists and belongs to
// userID. Returns common.ErrorNotFound when no row was inserted.
func (r *PostgresRepository) Create(ctx context.Context, userID string, m *models.Media) (*models.Media, error) {
	query := `
		INSERT INTO media (id, entry_id, kind, storage_path)
		SELECT $1::uuid, $2::uuid, $3, $4
		WHERE EXISTS (SELECT 1 FROM entries WHERE id = $2 AND user_id = $5)
		RETURNING created_at
	`
	stored := *m
	stored.ID = uuid.NewString()

	rows, err := r.db.QueryContext(ctx, query, stored.ID, m.EntryID, string(m.Kind), m.StoragePath, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		if err := rows.Scan(&stored.CreatedAt); err != nil {
			return nil, err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	switch n {
	case 1:
		return &stored, nil
	case 0:
		return nil, common.ErrorNotFound
	default:
		return nil, fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// SelectKinds returns (entry_id, kind) pairs for media attached to any of
// entryIDs that userID owns. An empty id list issues no query.
func (r *PostgresRepository) SelectKinds(ctx context.Context, userID string, entryIDs []string) ([]models.MediaKindRow, error) {
	if len(entryIDs) == 0 {
		return nil, nil
	}

	query := `SELECT m.entry_id, m.kind FROM media m
		JOIN entries e ON e.id = m.entry_id
		WHERE e.user_id = $1 AND m.entry_id IN (` + dbx.Placeholders(2, len(entryIDs)) + `)`

	args := append([]any{userID}, dbx.StringArgs(entryIDs)...)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select media kinds: %w", err)
	}
	defer rows.Close()

	var result []models.MediaKindRow
	for rows.Next() {
		var item models.MediaKindRow
		if err := rows.Scan(&item.EntryID, &item.Kind); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListByEntryID returns the media of one entry, newest first.
func (r *PostgresRepository) ListByEntryID(ctx context.Context, userID, entryID string) ([]*models.Media, error) {
	query := `SELECT m.id, m.entry_id, m.kind, m.storage_path, m.created_at FROM media m
		JOIN entries e ON e.id = m.entry_id
		WHERE m.entry_id = $1 AND e.user_id = $2
		ORDER BY m.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, entryID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select media: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Media, 0)
	for rows.Next() {
		var (
			item models.Media
			kind string
		)
		if err := rows.Scan(&item.ID, &item.EntryID, &kind, &item.StoragePath, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Kind = models.MediaKind(kind)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteByEntryID removes all media rows of an owned entry and returns the
// storage paths they referenced.
func (r *PostgresRepository) DeleteByEntryID(ctx context.Context, userID, entryID string) ([]string, error) {
	query := `DELETE FROM media m USING entries e
		WHERE m.entry_id = e.id AND m.entry_id = $1 AND e.user_id = $2
		RETURNING m.storage_path`

	rows, err := r.db.QueryContext(ctx, query, entryID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete media: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}

// ExistingPaths reports which of paths are referenced by some media row.
// It is not owner scoped and is meant for maintenance jobs only.
func (r *PostgresRepository) ExistingPaths(ctx context.Context, paths []string) (map[string]bool, error) {
	result := make(map[string]bool, len(paths))
	if len(paths) == 0 {
		return result, nil
	}

	query := `SELECT storage_path FROM media WHERE storage_path IN (` + dbx.Placeholders(1, len(paths)) + `)`
	rows, err := r.db.QueryContext(ctx, query, dbx.StringArgs(paths)...)
	if err != nil {
		return nil, fmt.Errorf("failed to select storage paths: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		result[p] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
