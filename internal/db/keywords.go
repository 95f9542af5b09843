package db

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"keywordpyramid/internal/classifier"
	"keywordpyramid/internal/models"
)

// keywordColumns is the standard column list for keyword queries.
const keywordColumns = `id, keyword, search_volume, difficulty, cpc, competition,
	priority_tier, aio_status, current_rank, previous_rank, traffic, traffic_value,
	product_category, user_intent, metadata, created_at, updated_at`

// sortColumns whitelists the scalar columns a listing may be ordered by.
var sortColumns = map[string]bool{
	"keyword":       true,
	"search_volume": true,
	"difficulty":    true,
	"cpc":           true,
	"competition":   true,
	"priority_tier": true,
	"current_rank":  true,
	"traffic":       true,
	"traffic_value": true,
	"created_at":    true,
	"updated_at":    true,
}

// scanKeyword scans a row into a Keyword struct.
func scanKeyword(row pgx.Row) (*models.Keyword, error) {
	var kw models.Keyword
	err := row.Scan(
		&kw.ID,
		&kw.Keyword,
		&kw.SearchVolume,
		&kw.Difficulty,
		&kw.CPC,
		&kw.Competition,
		&kw.PriorityTier,
		&kw.AIOStatus,
		&kw.CurrentRank,
		&kw.PreviousRank,
		&kw.Traffic,
		&kw.TrafficValue,
		&kw.ProductCategory,
		&kw.UserIntent,
		&kw.Metadata,
		&kw.CreatedAt,
		&kw.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeywordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &kw, nil
}

// scanKeywords scans multiple rows into a slice of Keywords.
func scanKeywords(rows pgx.Rows) ([]models.Keyword, error) {
	defer rows.Close()

	var keywords []models.Keyword
	for rows.Next() {
		var kw models.Keyword
		if err := rows.Scan(
			&kw.ID,
			&kw.Keyword,
			&kw.SearchVolume,
			&kw.Difficulty,
			&kw.CPC,
			&kw.Competition,
			&kw.PriorityTier,
			&kw.AIOStatus,
			&kw.CurrentRank,
			&kw.PreviousRank,
			&kw.Traffic,
			&kw.TrafficValue,
			&kw.ProductCategory,
			&kw.UserIntent,
			&kw.Metadata,
			&kw.CreatedAt,
			&kw.UpdatedAt,
		); err != nil {
			return nil, err
		}
		keywords = append(keywords, kw)
	}

	return keywords, rows.Err()
}

// buildFilterClauses translates a KeywordFilter into WHERE clauses and
// positional arguments starting at $1.
func buildFilterClauses(filter models.KeywordFilter) ([]string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, strings.Replace(clause, "$?", "$"+strconv.Itoa(len(args)), 1))
	}

	if filter.Tier != "" {
		add("priority_tier = $?", filter.Tier)
	}
	if filter.AIOStatus != "" {
		add("aio_status = $?", filter.AIOStatus)
	}
	if filter.Category != "" {
		add("product_category = $?", filter.Category)
	}
	if filter.MinVolume != nil {
		add("search_volume >= $?", *filter.MinVolume)
	}
	if filter.MaxVolume != nil {
		add("search_volume <= $?", *filter.MaxVolume)
	}
	if filter.Search != "" {
		add("keyword ILIKE $?", "%"+filter.Search+"%")
	}

	return clauses, args
}

// ListKeywords returns one page of keywords matching the filter plus the
// total match count.
func (d *DB) ListKeywords(ctx context.Context, filter models.KeywordFilter, page, perPage int, sortBy, sortDir string) ([]models.Keyword, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 500 {
		perPage = 50
	}
	if !sortColumns[sortBy] {
		sortBy = "search_volume"
	}
	if strings.ToLower(sortDir) != "asc" {
		sortDir = "DESC"
	} else {
		sortDir = "ASC"
	}

	clauses, args := buildFilterClauses(filter)
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM keywords` + where
	if err := d.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + keywordColumns + ` FROM keywords` + where +
		` ORDER BY ` + sortBy + ` ` + sortDir + ` NULLS LAST` +
		` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	keywords, err := scanKeywords(rows)
	return keywords, total, err
}

// GetKeywordByID retrieves a keyword by its ID.
func (d *DB) GetKeywordByID(ctx context.Context, id uuid.UUID) (*models.Keyword, error) {
	query := `SELECT ` + keywordColumns + ` FROM keywords WHERE id = $1`
	return scanKeyword(d.Pool.QueryRow(ctx, query, id))
}

// GetKeywordByText retrieves a keyword by its unique text.
func (d *DB) GetKeywordByText(ctx context.Context, keyword string) (*models.Keyword, error) {
	query := `SELECT ` + keywordColumns + ` FROM keywords WHERE keyword = $1`
	return scanKeyword(d.Pool.QueryRow(ctx, query, keyword))
}

// CreateKeyword inserts a new keyword row. The caller is expected to have
// classified it already; an unclassified row keeps a NULL tier until
// AutoClassifyKeywords runs.
func (d *DB) CreateKeyword(ctx context.Context, kw *models.Keyword) error {
	if kw.Metadata == nil {
		kw.Metadata = map[string]any{}
	}
	if kw.AIOStatus == "" {
		kw.AIOStatus = models.AIOInactive
	}

	query := `
		INSERT INTO keywords (keyword, search_volume, difficulty, cpc, competition,
			priority_tier, aio_status, current_rank, previous_rank, traffic, traffic_value,
			product_category, user_intent, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`

	err := d.Pool.QueryRow(ctx, query,
		kw.Keyword,
		kw.SearchVolume,
		kw.Difficulty,
		kw.CPC,
		kw.Competition,
		kw.PriorityTier,
		kw.AIOStatus,
		kw.CurrentRank,
		kw.PreviousRank,
		kw.Traffic,
		kw.TrafficValue,
		kw.ProductCategory,
		kw.UserIntent,
		kw.Metadata,
	).Scan(&kw.ID, &kw.CreatedAt, &kw.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateKeyword
		}
		return err
	}

	return nil
}

// KeywordUpdate carries the fields of a partial keyword update. Nil fields
// are left untouched.
type KeywordUpdate struct {
	SearchVolume    *int64          `json:"search_volume"`
	Difficulty      *float64        `json:"difficulty"`
	CPC             *float64        `json:"cpc"`
	Competition     *float64        `json:"competition"`
	PriorityTier    *string         `json:"priority_tier"`
	AIOStatus       *string         `json:"aio_status"`
	CurrentRank     *int            `json:"current_rank"`
	PreviousRank    *int            `json:"previous_rank"`
	TrafficValue    *float64        `json:"traffic_value"`
	ProductCategory *string         `json:"product_category"`
	UserIntent      *string         `json:"user_intent"`
	Metadata        *map[string]any `json:"metadata"`
}

// UpdateKeyword applies the provided fields to a keyword and refreshes its
// updated_at timestamp. Returns the updated row.
func (d *DB) UpdateKeyword(ctx context.Context, id uuid.UUID, update KeywordUpdate) (*models.Keyword, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{}

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if update.SearchVolume != nil {
		set("search_volume", *update.SearchVolume)
	}
	if update.Difficulty != nil {
		set("difficulty", *update.Difficulty)
	}
	if update.CPC != nil {
		set("cpc", *update.CPC)
	}
	if update.Competition != nil {
		set("competition", *update.Competition)
	}
	if update.PriorityTier != nil {
		set("priority_tier", *update.PriorityTier)
	}
	if update.AIOStatus != nil {
		set("aio_status", *update.AIOStatus)
	}
	if update.CurrentRank != nil {
		set("current_rank", *update.CurrentRank)
	}
	if update.PreviousRank != nil {
		set("previous_rank", *update.PreviousRank)
	}
	if update.TrafficValue != nil {
		set("traffic_value", *update.TrafficValue)
	}
	if update.ProductCategory != nil {
		set("product_category", *update.ProductCategory)
	}
	if update.UserIntent != nil {
		set("user_intent", *update.UserIntent)
	}
	if update.Metadata != nil {
		set("metadata", *update.Metadata)
	}

	args = append(args, id)
	query := `UPDATE keywords SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + keywordColumns

	return scanKeyword(d.Pool.QueryRow(ctx, query, args...))
}

// DeleteKeyword deletes a keyword by ID. Performance history is removed by
// the foreign-key cascade.
func (d *DB) DeleteKeyword(ctx context.Context, id uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `DELETE FROM keywords WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrKeywordNotFound
	}
	return nil
}

// AutoClassifyKeywords assigns a priority tier to every unclassified
// keyword inside one all-or-nothing transaction and returns the count of
// rows assigned to each tier. On any failure the whole operation rolls
// back and no tier is persisted.
func (d *DB) AutoClassifyKeywords(ctx context.Context) (map[string]int, error) {
	rows, err := d.Pool.Query(ctx,
		`SELECT id, search_volume, difficulty, cpc FROM keywords WHERE priority_tier IS NULL`)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		id         uuid.UUID
		volume     int64
		difficulty *float64
		cpc        float64
	}
	var candidates []candidate
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.id, &c.volume, &c.difficulty, &c.cpc); err != nil {
			rows.Close()
			return nil, err
		}
		candidates = append(candidates, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	if len(candidates) == 0 {
		return counts, nil
	}

	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return nil, &TransactionError{Op: "auto-classify", Err: err}
	}
	defer tx.Rollback(ctx)

	for _, c := range candidates {
		tier := classifier.Classify(c.volume, c.difficulty, c.cpc)
		if _, err := tx.Exec(ctx,
			`UPDATE keywords SET priority_tier = $1, updated_at = NOW() WHERE id = $2`,
			tier, c.id); err != nil {
			return nil, &TransactionError{Op: "auto-classify", Err: err}
		}
		counts[tier]++
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &TransactionError{Op: "auto-classify", Err: err}
	}
	return counts, nil
}

// CountUnclassified returns the number of keywords with no priority tier.
func (d *DB) CountUnclassified(ctx context.Context) (int64, error) {
	var n int64
	err := d.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM keywords WHERE priority_tier IS NULL`).Scan(&n)
	return n, err
}
