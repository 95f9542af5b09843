package db

import (
	"context"

	"keywordpyramid/internal/models"
)

// BatchRowError records a single row that failed inside a batch flush.
// Index is the row's position within the batch.
type BatchRowError struct {
	Index int
	Err   error
}

// keywordUpsert inserts a keyword or, on a keyword-text conflict, updates
// its numeric fields and merges metadata. xmax = 0 distinguishes a fresh
// insert from the conflict path.
const keywordUpsert = `
	INSERT INTO keywords (keyword, search_volume, difficulty, cpc, competition,
		priority_tier, aio_status, product_category, user_intent, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (keyword) DO UPDATE SET
		search_volume = EXCLUDED.search_volume,
		difficulty = EXCLUDED.difficulty,
		cpc = EXCLUDED.cpc,
		competition = EXCLUDED.competition,
		priority_tier = EXCLUDED.priority_tier,
		product_category = COALESCE(EXCLUDED.product_category, keywords.product_category),
		user_intent = COALESCE(EXCLUDED.user_intent, keywords.user_intent),
		metadata = keywords.metadata || EXCLUDED.metadata,
		updated_at = NOW()
	RETURNING (xmax = 0) AS inserted
`

// UpsertKeywordBatch flushes one import batch inside a single transaction.
// Each row runs under its own savepoint so a failed row is recorded and
// skipped while the rest of the batch still commits. This is deliberately
// weaker than AutoClassifyKeywords' all-or-nothing transaction: streaming
// import favors availability over atomicity.
func (d *DB) UpsertKeywordBatch(ctx context.Context, batch []models.Keyword) (inserted, updated int, rowErrs []BatchRowError, err error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return 0, 0, nil, err
	}
	defer tx.Rollback(ctx)

	for i, kw := range batch {
		metadata := kw.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		aioStatus := kw.AIOStatus
		if aioStatus == "" {
			aioStatus = models.AIOInactive
		}

		// Nested Begin opens a savepoint on the outer transaction.
		sp, spErr := tx.Begin(ctx)
		if spErr != nil {
			return 0, 0, nil, spErr
		}

		var fresh bool
		scanErr := sp.QueryRow(ctx, keywordUpsert,
			kw.Keyword,
			kw.SearchVolume,
			kw.Difficulty,
			kw.CPC,
			kw.Competition,
			kw.PriorityTier,
			aioStatus,
			kw.ProductCategory,
			kw.UserIntent,
			metadata,
		).Scan(&fresh)

		if scanErr != nil {
			sp.Rollback(ctx)
			rowErrs = append(rowErrs, BatchRowError{Index: i, Err: scanErr})
			continue
		}
		if commitErr := sp.Commit(ctx); commitErr != nil {
			rowErrs = append(rowErrs, BatchRowError{Index: i, Err: commitErr})
			continue
		}

		if fresh {
			inserted++
		} else {
			updated++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, nil, err
	}
	return inserted, updated, rowErrs, nil
}
