package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"keywordpyramid/internal/models"
)

// TrackPerformance upserts one (keyword, date) performance row and, when
// the metrics carry clicks, bumps the keyword's cumulative traffic counter.
// A second call for the same day overwrites the daily row rather than
// duplicating it. The traffic bump is a relative increment at the store so
// concurrent writers never lose updates.
func (d *DB) TrackPerformance(ctx context.Context, keywordID uuid.UUID, metrics models.DailyMetrics) (*models.KeywordPerformance, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO keyword_performance (keyword_id, date, impressions, clicks, ctr, avg_position, aio_appearances)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (keyword_id, date) DO UPDATE SET
			impressions = EXCLUDED.impressions,
			clicks = EXCLUDED.clicks,
			ctr = EXCLUDED.ctr,
			avg_position = EXCLUDED.avg_position,
			aio_appearances = EXCLUDED.aio_appearances
		RETURNING id, keyword_id, date, impressions, clicks, ctr, avg_position, aio_appearances, created_at
	`

	var perf models.KeywordPerformance
	err = tx.QueryRow(ctx, query,
		keywordID,
		metrics.Date,
		metrics.Impressions,
		metrics.Clicks,
		metrics.CTR,
		metrics.AvgPosition,
		metrics.AIOAppearances,
	).Scan(
		&perf.ID,
		&perf.KeywordID,
		&perf.Date,
		&perf.Impressions,
		&perf.Clicks,
		&perf.CTR,
		&perf.AvgPosition,
		&perf.AIOAppearances,
		&perf.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrKeywordNotFound
		}
		return nil, err
	}

	if metrics.Clicks > 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE keywords SET traffic = traffic + $1, updated_at = NOW() WHERE id = $2`,
			metrics.Clicks, keywordID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &perf, nil
}

// GetPerformanceHistory returns the most recent performance rows for a
// keyword, newest first.
func (d *DB) GetPerformanceHistory(ctx context.Context, keywordID uuid.UUID, limit int) ([]models.KeywordPerformance, error) {
	if limit < 1 || limit > 365 {
		limit = 90
	}

	rows, err := d.Pool.Query(ctx, `
		SELECT id, keyword_id, date, impressions, clicks, ctr, avg_position, aio_appearances, created_at
		FROM keyword_performance
		WHERE keyword_id = $1
		ORDER BY date DESC
		LIMIT $2
	`, keywordID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.KeywordPerformance
	for rows.Next() {
		var perf models.KeywordPerformance
		if err := rows.Scan(
			&perf.ID,
			&perf.KeywordID,
			&perf.Date,
			&perf.Impressions,
			&perf.Clicks,
			&perf.CTR,
			&perf.AvgPosition,
			&perf.AIOAppearances,
			&perf.CreatedAt,
		); err != nil {
			return nil, err
		}
		history = append(history, perf)
	}
	return history, rows.Err()
}
