package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"github.com/dmitrijs2005/gophdiary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdiary/internal/server/storage"
)

// Paths are checked against the media table in chunks of this size.
const sweepLookupBatch = 500

// OrphanSweeper removes bucket objects that no media row references. It
// cleans up after AttachMedia calls whose insert failed after the upload.
type OrphanSweeper struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	bucket      storage.Bucket
	log         logging.Logger
	now         func() time.Time
}

func NewOrphanSweeper(db *sql.DB, m repomanager.RepositoryManager, bucket storage.Bucket, log logging.Logger) *OrphanSweeper {
	return &OrphanSweeper{
		db:          db,
		repomanager: m,
		bucket:      bucket,
		log:         log.With("module", "sweeper"),
		now:         time.Now,
	}
}

// Sweep deletes unreferenced objects older than grace and reports how many
// it removed. Younger objects are skipped because their row may still be
// on its way. Running it twice is harmless.
func (w *OrphanSweeper) Sweep(ctx context.Context, grace time.Duration) (int, error) {
	objects, err := w.bucket.List(ctx, "")
	if err != nil {
		return 0, err
	}

	cutoff := w.now().Add(-grace)
	var candidates []string
	for _, o := range objects {
		if o.LastModified.Before(cutoff) {
			candidates = append(candidates, o.Key)
		}
	}

	repo := w.repomanager.Media(w.db)
	var orphans []string
	for start := 0; start < len(candidates); start += sweepLookupBatch {
		chunk := candidates[start:min(start+sweepLookupBatch, len(candidates))]
		known, err := repo.ExistingPaths(ctx, chunk)
		if err != nil {
			return 0, queryFailed(err)
		}
		for _, p := range chunk {
			if !known[p] {
				orphans = append(orphans, p)
			}
		}
	}

	if len(orphans) == 0 {
		return 0, nil
	}
	if err := w.bucket.Remove(ctx, orphans...); err != nil {
		return 0, err
	}

	w.log.Info(ctx, "orphaned blobs removed", "count", len(orphans), "scanned", len(objects))
	return len(orphans), nil
}

// Run sweeps every interval until ctx is done. Failures are logged and
// the next tick tries again.
func (w *OrphanSweeper) Run(ctx context.Context, interval, grace time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Sweep(ctx, grace); err != nil {
				w.log.Error(ctx, "orphan sweep failed", "error", err)
			}
		}
	}
}
