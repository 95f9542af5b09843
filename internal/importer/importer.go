// Package importer streams keyword CSV files into the store. Rows are
// validated and classified one at a time, accumulated into fixed-size
// batches, and flushed in per-batch transactions with progress reported
// after every flush. One bad row never aborts the import.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"keywordpyramid/internal/classifier"
	"keywordpyramid/internal/db"
	"keywordpyramid/internal/models"
	"keywordpyramid/internal/validation"
)

// DefaultBatchSize is the number of rows accumulated before a flush.
const DefaultBatchSize = 100

// columnAliases maps logical fields to the header names accepted for them.
var columnAliases = map[string][]string{
	"keyword":          {"keyword", "term", "query"},
	"search_volume":    {"search_volume", "volume", "monthly_volume"},
	"difficulty":       {"difficulty", "kd", "keyword_difficulty"},
	"cpc":              {"cpc", "cost_per_click"},
	"competition":      {"competition"},
	"priority_tier":    {"priority_tier", "tier"},
	"aio_status":       {"aio_status"},
	"product_category": {"product_category", "category"},
	"user_intent":      {"user_intent", "intent"},
}

// ProgressFunc observes incremental progress after every flushed batch.
type ProgressFunc func(models.ImportProgress)

// Importer consumes tabular keyword data and upserts it in batches.
type Importer struct {
	db        *db.DB
	batchSize int
}

// New creates an importer with the default batch size.
func New(database *db.DB) *Importer {
	return &Importer{db: database, batchSize: DefaultBatchSize}
}

// NewWithBatchSize creates an importer with a custom batch size.
func NewWithBatchSize(database *db.DB, batchSize int) *Importer {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Importer{db: database, batchSize: batchSize}
}

// Run streams the CSV from r to completion. The returned result always
// carries whatever was committed, including when err is non-nil (a broken
// stream leaves prior batches committed).
func (im *Importer) Run(ctx context.Context, r io.Reader, onProgress ProgressFunc) (*models.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return &models.ImportResult{}, fmt.Errorf("failed to read header: %w", err)
	}
	columns, err := mapHeader(header)
	if err != nil {
		return &models.ImportResult{}, err
	}

	result := &models.ImportResult{Errors: []models.RowError{}}
	batch := make([]models.Keyword, 0, im.batchSize)
	rowNumbers := make([]int, 0, im.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		inserted, updated, rowErrs, flushErr := im.db.UpsertKeywordBatch(ctx, batch)
		if flushErr != nil {
			return flushErr
		}
		result.Imported += inserted
		result.Updated += updated
		for _, re := range rowErrs {
			result.Errors = append(result.Errors, models.RowError{
				Row:     rowNumbers[re.Index],
				Message: re.Err.Error(),
			})
		}
		batch = batch[:0]
		rowNumbers = rowNumbers[:0]
		if onProgress != nil {
			onProgress(models.ImportProgress{Processed: result.TotalRows, Total: result.TotalRows})
		}
		return nil
	}

	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			var parseErr *csv.ParseError
			if errors.As(readErr, &parseErr) {
				// A malformed line is a row error; the stream continues.
				result.TotalRows++
				result.Errors = append(result.Errors, models.RowError{
					Row:     result.TotalRows,
					Message: readErr.Error(),
				})
				continue
			}
			// The source stream broke: keep what was already flushed.
			if flushErr := flush(); flushErr != nil {
				return result, flushErr
			}
			return result, fmt.Errorf("import stream failed: %w", readErr)
		}

		result.TotalRows++
		kw, rowErr := parseRow(header, columns, record)
		if rowErr != nil {
			result.Errors = append(result.Errors, models.RowError{
				Row:     result.TotalRows,
				Message: rowErr.Error(),
			})
			continue
		}

		batch = append(batch, *kw)
		rowNumbers = append(rowNumbers, result.TotalRows)
		if len(batch) >= im.batchSize {
			if err := flush(); err != nil {
				return result, err
			}
		}
	}

	if err := flush(); err != nil {
		return result, err
	}
	return result, nil
}

// mapHeader resolves logical fields to column positions, honoring aliases.
// The keyword column is mandatory.
func mapHeader(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.ToLower(strings.TrimSpace(name))] = i
	}

	columns := make(map[string]int)
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if pos, ok := positions[alias]; ok {
				columns[field] = pos
				break
			}
		}
	}

	if _, ok := columns["keyword"]; !ok {
		return nil, fmt.Errorf("no keyword column found in header %v", header)
	}
	return columns, nil
}

// parseRow validates and coerces one record into a keyword, computing the
// tier when the row does not carry one. Unmapped columns land in metadata.
func parseRow(header []string, columns map[string]int, record []string) (*models.Keyword, error) {
	field := func(name string) string {
		pos, ok := columns[name]
		if !ok || pos >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[pos])
	}

	keyword := validation.NormalizeKeyword(field("keyword"))
	if err := validation.ValidateKeywordText(keyword); err != nil {
		return nil, err
	}

	volume, err := parseInt("search_volume", field("search_volume"))
	if err != nil {
		return nil, err
	}
	difficulty, err := parseOptionalFloat("difficulty", field("difficulty"))
	if err != nil {
		return nil, err
	}
	cpc, err := parseFloat("cpc", field("cpc"))
	if err != nil {
		return nil, err
	}
	competition, err := parseOptionalFloat("competition", field("competition"))
	if err != nil {
		return nil, err
	}

	var tier *string
	if raw := field("priority_tier"); raw != "" {
		normalized := strings.ToUpper(raw)
		tier = &normalized
	}
	var aioStatus string
	if raw := field("aio_status"); raw != "" {
		aioStatus = strings.ToLower(raw)
	}
	var aioPtr *string
	if aioStatus != "" {
		aioPtr = &aioStatus
	}

	if err := validation.ValidateKeywordFields(volume, difficulty, competition, cpc, tier, aioPtr); err != nil {
		return nil, err
	}

	if tier == nil {
		computed := classifier.Classify(volume, difficulty, cpc)
		tier = &computed
	}

	kw := &models.Keyword{
		Keyword:      keyword,
		SearchVolume: volume,
		Difficulty:   difficulty,
		CPC:          cpc,
		Competition:  competition,
		PriorityTier: tier,
		AIOStatus:    aioStatus,
		Metadata:     map[string]any{},
	}
	if category := field("product_category"); category != "" {
		kw.ProductCategory = &category
	}
	if intent := field("user_intent"); intent != "" {
		kw.UserIntent = &intent
	}

	// Columns outside the known set are preserved as metadata and merged
	// on conflict.
	mapped := make(map[int]bool, len(columns))
	for _, pos := range columns {
		mapped[pos] = true
	}
	for i, value := range record {
		if mapped[i] || i >= len(header) {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(header[i]))
		if name != "" {
			kw.Metadata[name] = value
		}
	}

	return kw, nil
}

func parseInt(fieldName, raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, validation.Errorf(fieldName, "invalid integer %q", raw)
	}
	return v, nil
}

func parseFloat(fieldName, raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, validation.Errorf(fieldName, "invalid number %q", raw)
	}
	return v, nil
}

func parseOptionalFloat(fieldName, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, validation.Errorf(fieldName, "invalid number %q", raw)
	}
	return &v, nil
}
