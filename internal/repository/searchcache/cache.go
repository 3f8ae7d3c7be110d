package searchcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/placesearch/internal/db"
	"github.com/kailas-cloud/placesearch/internal/domain/geo"
	"github.com/kailas-cloud/placesearch/internal/domain/search/result"
)

// Default expirations.
const (
	DefaultRegionTTL     = 30 * time.Minute
	DefaultCategoriesTTL = 24 * time.Hour
)

// store is the consumer interface for the search cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Options configures key layout and expirations.
type Options struct {
	Prefix        string // e.g. "placesearch:"
	Env           string // e.g. "prod"; isolates environments sharing one Redis
	RegionTTL     time.Duration
	CategoriesTTL time.Duration
}

// Cache stores category search results per position grid cell and the category list.
type Cache struct {
	store         store
	base          string
	regionTTL     time.Duration
	categoriesTTL time.Duration
	logger        *zap.Logger
}

// New creates a search cache over s.
func New(s store, opts Options, logger *zap.Logger) *Cache {
	if opts.RegionTTL <= 0 {
		opts.RegionTTL = DefaultRegionTTL
	}
	if opts.CategoriesTTL <= 0 {
		opts.CategoriesTTL = DefaultCategoriesTTL
	}
	base := opts.Prefix
	if opts.Env != "" {
		base += opts.Env + ":"
	}
	return &Cache{
		store:         s,
		base:          base + "place:",
		regionTTL:     opts.RegionTTL,
		categoriesTTL: opts.CategoriesTTL,
		logger:        logger,
	}
}

// Get returns the cached items for the grid cell containing (lat, lng).
// found is false on a miss; an entry holding zero items is a hit.
func (c *Cache) Get(ctx context.Context, category string, lat, lng float64) ([]result.Cached, bool, error) {
	key := c.regionKey(category, lat, lng)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}

	var dtos []itemDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		c.logger.Warn("Dropping undecodable search cache entry", zap.String("key", key), zap.Error(err))
		return nil, false, nil
	}
	return fromDTOs(dtos), true, nil
}

// Put stores items for the grid cell containing (lat, lng).
func (c *Cache) Put(ctx context.Context, category string, lat, lng float64, items []result.Cached) error {
	key := c.regionKey(category, lat, lng)
	data, err := json.Marshal(toDTOs(items))
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.regionTTL); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// InvalidateCategory removes every cached region of a category and returns how many were removed.
func (c *Cache) InvalidateCategory(ctx context.Context, category string) (int64, error) {
	pattern := c.base + "region:" + escapeGlob(keySegment(category)) + ":*"
	keys, err := c.store.Scan(ctx, pattern)
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := c.store.Del(ctx, keys...)
	if err != nil {
		return 0, fmt.Errorf("delete %d keys: %w", len(keys), err)
	}
	c.logger.Info("Search cache invalidated",
		zap.String("category", category),
		zap.Int64("deleted", n),
	)
	return n, nil
}

// Categories returns the cached category list.
func (c *Cache) Categories(ctx context.Context) ([]string, bool, error) {
	key := c.categoriesKey()
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	var cats []string
	if err := json.Unmarshal(data, &cats); err != nil {
		c.logger.Warn("Dropping undecodable category cache entry", zap.String("key", key), zap.Error(err))
		return nil, false, nil
	}
	return cats, true, nil
}

// PutCategories stores the category list.
func (c *Cache) PutCategories(ctx context.Context, categories []string) error {
	if categories == nil {
		categories = []string{}
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	if err := c.store.SetWithTTL(ctx, c.categoriesKey(), data, c.categoriesTTL); err != nil {
		return fmt.Errorf("set categories: %w", err)
	}
	return nil
}

// InvalidateCategories drops the cached category list.
func (c *Cache) InvalidateCategories(ctx context.Context) error {
	if _, err := c.store.Del(ctx, c.categoriesKey()); err != nil {
		return fmt.Errorf("delete categories: %w", err)
	}
	return nil
}

func (c *Cache) regionKey(category string, lat, lng float64) string {
	var b strings.Builder
	b.WriteString(c.base)
	b.WriteString("region:")
	b.WriteString(keySegment(category))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(geo.GridCell(lat)))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(geo.GridCell(lng)))
	return b.String()
}

func (c *Cache) categoriesKey() string {
	return c.base + "categories:all"
}

// keySegment encodes the key separator so a category is always exactly one segment.
func keySegment(s string) string {
	if !strings.ContainsAny(s, "%:") {
		return s
	}
	return segmentReplacer.Replace(s)
}

var segmentReplacer = strings.NewReplacer("%", "%25", ":", "%3A")

// escapeGlob quotes the Redis glob metacharacters in s.
func escapeGlob(s string) string {
	if !strings.ContainsAny(s, `*?[]\`) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
