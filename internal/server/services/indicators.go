package services

import (
	"context"

	"github.com/dmitrijs2005/gophdiary/internal/server/models"
)

// foldIndicators gives every id in ids an all-false set, then ORs in each
// row's kind. Rows for ids not in ids and unknown kinds are ignored.
func foldIndicators(ids []string, rows []models.MediaKindRow) map[string]models.Indicators {
	result := make(map[string]models.Indicators, len(ids))
	for _, id := range ids {
		result[id] = models.Indicators{}
	}

	for _, r := range rows {
		ind, ok := result[r.EntryID]
		if !ok {
			continue
		}
		switch models.MediaKind(r.Kind) {
		case models.MediaImage:
			ind.HasImage = true
		case models.MediaAudio:
			ind.HasAudio = true
		case models.MediaVideo:
			ind.HasVideo = true
		default:
			continue
		}
		result[r.EntryID] = ind
	}
	return result
}

// ListEntriesWithIndicators returns the caller's entries, newest first, each
// with its indicator set. Media kinds for all entries come from one query.
func (s *DiaryService) ListEntriesWithIndicators(ctx context.Context) ([]models.EntryWithIndicators, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.listEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return []models.EntryWithIndicators{}, nil
	}

	ids := make([]string, len(list))
	for i, e := range list {
		ids[i] = e.ID
	}

	rows, err := s.repomanager.Media(s.db).SelectKinds(ctx, userID, ids)
	if err != nil {
		return nil, queryFailed(err)
	}
	folded := foldIndicators(ids, rows)

	result := make([]models.EntryWithIndicators, len(list))
	for i, e := range list {
		result[i] = models.EntryWithIndicators{Entry: *e, Indicators: folded[e.ID]}
	}
	return result, nil
}

// IndicatorsForEntries returns an indicator set for every id in entryIDs,
// all-false for ids without media or not visible to the caller. An empty
// input returns an empty map without touching the database.
func (s *DiaryService) IndicatorsForEntries(ctx context.Context, entryIDs []string) (map[string]models.Indicators, error) {
	if len(entryIDs) == 0 {
		return map[string]models.Indicators{}, nil
	}

	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	queryIDs := make([]string, 0, len(entryIDs))
	seen := make(map[string]bool, len(entryIDs))
	for _, id := range entryIDs {
		if c, ok := canonicalID(id); ok && !seen[c] {
			seen[c] = true
			queryIDs = append(queryIDs, c)
		}
	}

	var rows []models.MediaKindRow
	if len(queryIDs) > 0 {
		rows, err = s.repomanager.Media(s.db).SelectKinds(ctx, userID, queryIDs)
		if err != nil {
			return nil, queryFailed(err)
		}
	}
	folded := foldIndicators(queryIDs, rows)

	// Keyed by the caller's spelling; looked up by the canonical one.
	result := make(map[string]models.Indicators, len(entryIDs))
	for _, id := range entryIDs {
		c, _ := canonicalID(id)
		result[id] = folded[c]
	}
	return result, nil
}
