// Package keywords composes the keyword repository with the cache-aside
// accessor and the broadcast publisher. All read paths go through the
// cache; all write paths invalidate the affected entries and emit an
// update event.
package keywords

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"keywordpyramid/internal/cache"
	"keywordpyramid/internal/classifier"
	"keywordpyramid/internal/db"
	"keywordpyramid/internal/events"
	"keywordpyramid/internal/metrics"
	"keywordpyramid/internal/models"
	"keywordpyramid/internal/validation"
)

// Cache key namespaces owned by this service.
const (
	resourceKeywords = "keywords"
	resourcePyramid  = "pyramid"
)

// TTLs reflect staleness tolerance against recomputation cost: list views
// are cheap to rebuild and short-lived, the pyramid aggregate is the
// heaviest query and lives longest.
type TTLConfig struct {
	List    time.Duration
	Item    time.Duration
	Pyramid time.Duration
}

// DefaultTTLs returns the standard TTL policy.
func DefaultTTLs() TTLConfig {
	return TTLConfig{
		List:    5 * time.Minute,
		Item:    30 * time.Minute,
		Pyramid: time.Hour,
	}
}

// Service exposes the keyword component contracts.
type Service struct {
	db        *db.DB
	cache     *cache.Cache
	publisher *events.Publisher
	ttl       TTLConfig
}

// NewService wires a keyword service. publisher may be nil in tests.
func NewService(database *db.DB, c *cache.Cache, publisher *events.Publisher, ttl TTLConfig) *Service {
	return &Service{db: database, cache: c, publisher: publisher, ttl: ttl}
}

// ListParams bundles filter, pagination and sort for a listing call.
type ListParams struct {
	Filter  models.KeywordFilter
	Page    int
	PerPage int
	SortBy  string
	SortDir string
}

// signature serializes the full filter+pagination+sort shape so identical
// queries share one cache entry and distinct queries never collide.
func (p ListParams) signature() string {
	params := map[string]string{
		"tier":     p.Filter.Tier,
		"status":   p.Filter.AIOStatus,
		"category": p.Filter.Category,
		"search":   p.Filter.Search,
		"page":     strconv.Itoa(p.Page),
		"per_page": strconv.Itoa(p.PerPage),
		"sort":     p.SortBy,
		"dir":      p.SortDir,
	}
	if p.Filter.MinVolume != nil {
		params["min_volume"] = strconv.FormatInt(*p.Filter.MinVolume, 10)
	}
	if p.Filter.MaxVolume != nil {
		params["max_volume"] = strconv.FormatInt(*p.Filter.MaxVolume, 10)
	}
	return cache.Signature(params)
}

// List returns one page of keywords plus the total count, cached by the
// full query signature.
func (s *Service) List(ctx context.Context, params ListParams) (*models.KeywordPage, error) {
	key := cache.Key(resourceKeywords, "list", params.signature())
	return cache.GetOrCompute(ctx, s.cache, key, s.ttl.List, func(ctx context.Context) (*models.KeywordPage, error) {
		keywords, total, err := s.db.ListKeywords(ctx, params.Filter, params.Page, params.PerPage, params.SortBy, params.SortDir)
		if err != nil {
			return nil, err
		}
		if keywords == nil {
			keywords = []models.Keyword{}
		}
		page := params.Page
		if page < 1 {
			page = 1
		}
		perPage := params.PerPage
		if perPage < 1 || perPage > 500 {
			perPage = 50
		}
		return &models.KeywordPage{Keywords: keywords, Total: total, Page: page, PerPage: perPage}, nil
	})
}

// Get returns a single keyword by ID, cached individually.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Keyword, error) {
	key := cache.Key(resourceKeywords, "item", id.String())
	return cache.GetOrCompute(ctx, s.cache, key, s.ttl.Item, func(ctx context.Context) (*models.Keyword, error) {
		return s.db.GetKeywordByID(ctx, id)
	})
}

// CreateInput is the payload for Create.
type CreateInput struct {
	Keyword         string         `json:"keyword"`
	SearchVolume    int64          `json:"search_volume"`
	Difficulty      *float64       `json:"difficulty"`
	CPC             float64        `json:"cpc"`
	Competition     *float64       `json:"competition"`
	PriorityTier    *string        `json:"priority_tier"`
	AIOStatus       string         `json:"aio_status"`
	ProductCategory *string        `json:"product_category"`
	UserIntent      *string        `json:"user_intent"`
	Metadata        map[string]any `json:"metadata"`
}

// Create inserts a new keyword, computing its tier when the caller omits
// one. Invalidates list and pyramid caches; the item cache needs nothing
// since the id is new.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Keyword, error) {
	input.Keyword = validation.NormalizeKeyword(input.Keyword)
	if err := validation.ValidateKeywordText(input.Keyword); err != nil {
		return nil, err
	}
	var aioStatus *string
	if input.AIOStatus != "" {
		aioStatus = &input.AIOStatus
	}
	if err := validation.ValidateKeywordFields(input.SearchVolume, input.Difficulty, input.Competition, input.CPC, input.PriorityTier, aioStatus); err != nil {
		return nil, err
	}

	tier := input.PriorityTier
	if tier == nil {
		computed := classifier.Classify(input.SearchVolume, input.Difficulty, input.CPC)
		tier = &computed
	}

	kw := &models.Keyword{
		Keyword:         input.Keyword,
		SearchVolume:    input.SearchVolume,
		Difficulty:      input.Difficulty,
		CPC:             input.CPC,
		Competition:     input.Competition,
		PriorityTier:    tier,
		AIOStatus:       input.AIOStatus,
		ProductCategory: input.ProductCategory,
		UserIntent:      input.UserIntent,
		Metadata:        input.Metadata,
	}
	if err := s.db.CreateKeyword(ctx, kw); err != nil {
		return nil, err
	}

	s.invalidateViews(ctx)
	s.publish(ctx, events.KeywordCreated, kw)
	return kw, nil
}

// Update applies a partial update and refreshes the updated timestamp.
// Invalidates the item entry plus all list and pyramid views.
func (s *Service) Update(ctx context.Context, id uuid.UUID, update db.KeywordUpdate) (*models.Keyword, error) {
	volume := int64(0)
	if update.SearchVolume != nil {
		volume = *update.SearchVolume
	}
	cpc := 0.0
	if update.CPC != nil {
		cpc = *update.CPC
	}
	if err := validation.ValidateKeywordFields(volume, update.Difficulty, update.Competition, cpc, update.PriorityTier, update.AIOStatus); err != nil {
		return nil, err
	}

	kw, err := s.db.UpdateKeyword(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.Key(resourceKeywords, "item", id.String()))
	s.invalidateViews(ctx)
	s.publish(ctx, events.KeywordUpdated, kw)
	return kw, nil
}

// Delete removes a keyword and its performance history.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.db.DeleteKeyword(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.Key(resourceKeywords, "item", id.String()))
	s.invalidateViews(ctx)
	s.publish(ctx, events.KeywordDeleted, map[string]string{"id": id.String()})
	return nil
}

// AutoClassify assigns tiers to all unclassified keywords in one
// all-or-nothing transaction and returns counts per assigned tier.
func (s *Service) AutoClassify(ctx context.Context) (map[string]int, error) {
	counts, err := s.db.AutoClassifyKeywords(ctx)
	if err != nil {
		return nil, err
	}

	if len(counts) > 0 {
		for tier, n := range counts {
			metrics.KeywordsClassified.WithLabelValues(tier).Add(float64(n))
		}
		s.cache.InvalidateAll(ctx, cache.OperationPattern(resourceKeywords, "item"), cache.OperationPattern(resourceKeywords, "list"), cache.Pattern(resourcePyramid))
		s.publish(ctx, events.KeywordsClassified, counts)
	}
	return counts, nil
}

// TrackPerformance upserts one day of metrics for a keyword and bumps its
// traffic counter by the clicks value.
func (s *Service) TrackPerformance(ctx context.Context, id uuid.UUID, metrics models.DailyMetrics) (*models.KeywordPerformance, error) {
	perf, err := s.db.TrackPerformance(ctx, id, metrics)
	if err != nil {
		return nil, err
	}

	if metrics.Clicks > 0 {
		// Traffic changed, so item and aggregate views are stale.
		s.cache.Invalidate(ctx, cache.Key(resourceKeywords, "item", id.String()))
		s.invalidateViews(ctx)
	}
	return perf, nil
}

// PerformanceHistory returns recent daily metrics for a keyword, newest
// first. Uncached: history is append-mostly and read rarely.
func (s *Service) PerformanceHistory(ctx context.Context, id uuid.UUID, limit int) ([]models.KeywordPerformance, error) {
	return s.db.GetPerformanceHistory(ctx, id, limit)
}

// Pyramid returns the tier-grouped aggregate view, cached as one entry.
func (s *Service) Pyramid(ctx context.Context) (*models.Pyramid, error) {
	key := cache.Key(resourcePyramid, "view")
	return cache.GetOrCompute(ctx, s.cache, key, s.ttl.Pyramid, func(ctx context.Context) (*models.Pyramid, error) {
		return s.db.GetPyramid(ctx)
	})
}

// InvalidateAfterImport clears every cached view after a bulk import.
func (s *Service) InvalidateAfterImport(ctx context.Context) {
	s.cache.InvalidateAll(ctx, cache.Pattern(resourceKeywords), cache.Pattern(resourcePyramid))
}

// invalidateViews drops all filtered list views and the pyramid: any of
// them could include the changed record.
func (s *Service) invalidateViews(ctx context.Context) {
	s.cache.InvalidateAll(ctx, cache.OperationPattern(resourceKeywords, "list"), cache.Pattern(resourcePyramid))
}

func (s *Service) publish(ctx context.Context, event string, payload any) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, event, payload)
	}
}
