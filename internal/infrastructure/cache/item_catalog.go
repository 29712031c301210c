package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/comfort/backend/internal/domain/catalog"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultItemKeyPrefix = "catalog:item:"

// cachedItem is the stored form of a catalog item
type cachedItem struct {
	Code     string            `json:"code"`
	Name     string            `json:"name"`
	Rate     int64             `json:"rate"`
	Weight   float64           `json:"weight"`
	Children []cachedChildItem `json:"children,omitempty"`
}

type cachedChildItem struct {
	ItemCode string `json:"item_code"`
	ItemName string `json:"item_name"`
	Qty      int64  `json:"qty"`
}

func encodeItem(item *catalog.Item) ([]byte, error) {
	c := cachedItem{Code: item.Code, Name: item.Name, Rate: item.Rate, Weight: item.Weight}
	for _, ch := range item.Children {
		c.Children = append(c.Children, cachedChildItem{ItemCode: ch.ItemCode, ItemName: ch.ItemName, Qty: ch.Qty})
	}
	return json.Marshal(c)
}

func decodeItem(data []byte) (*catalog.Item, error) {
	var c cachedItem
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	item := &catalog.Item{Code: c.Code, Name: c.Name, Rate: c.Rate, Weight: c.Weight}
	for _, ch := range c.Children {
		item.Children = append(item.Children, catalog.ChildItem{ItemCode: ch.ItemCode, ItemName: ch.ItemName, Qty: ch.Qty})
	}
	return item, nil
}

// RedisItemCatalog is a read-through cache over an item repository. Redis
// failures are logged and the repository is read directly, so a cache outage
// never fails an order operation.
type RedisItemCatalog struct {
	next      catalog.ItemRepository
	client    redis.UniversalClient
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

// RedisItemCatalogOption configures a RedisItemCatalog
type RedisItemCatalogOption func(*RedisItemCatalog)

// WithKeyPrefix namespaces the cache keys
func WithKeyPrefix(prefix string) RedisItemCatalogOption {
	return func(c *RedisItemCatalog) {
		c.keyPrefix = prefix
	}
}

// WithLogger sets the logger for cache failures
func WithLogger(logger *zap.Logger) RedisItemCatalogOption {
	return func(c *RedisItemCatalog) {
		c.logger = logger
	}
}

// NewRedisItemCatalog wraps next with a cache whose entries live for ttl
func NewRedisItemCatalog(next catalog.ItemRepository, client redis.UniversalClient, ttl time.Duration, opts ...RedisItemCatalogOption) *RedisItemCatalog {
	c := &RedisItemCatalog{
		next:      next,
		client:    client,
		ttl:       ttl,
		keyPrefix: defaultItemKeyPrefix,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisItemCatalog) key(code string) string {
	return c.keyPrefix + code
}

// GetItems serves cached codes from Redis and loads the rest from the repository
func (c *RedisItemCatalog) GetItems(ctx context.Context, codes []string) (catalog.Lookup, error) {
	if len(codes) == 0 {
		return catalog.Lookup{}, nil
	}

	lookup, missing := c.readCached(ctx, codes)
	if len(missing) == 0 {
		return lookup, nil
	}

	loaded, err := c.next.GetItems(ctx, missing)
	if err != nil {
		return nil, err
	}
	c.store(ctx, loaded)
	lookup.Merge(loaded)
	return lookup, nil
}

func (c *RedisItemCatalog) readCached(ctx context.Context, codes []string) (catalog.Lookup, []string) {
	lookup := catalog.Lookup{}
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = c.key(code)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("item cache read failed", zap.Error(err))
		return lookup, codes
	}

	var missing []string
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, codes[i])
			continue
		}
		item, err := decodeItem([]byte(raw))
		if err != nil {
			c.logger.Warn("dropping undecodable cached item", zap.String("item_code", codes[i]), zap.Error(err))
			missing = append(missing, codes[i])
			continue
		}
		lookup[item.Code] = item
	}
	return lookup, missing
}

func (c *RedisItemCatalog) store(ctx context.Context, items catalog.Lookup) {
	if len(items) == 0 {
		return
	}
	_, err := c.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for code, item := range items {
			data, err := encodeItem(item)
			if err != nil {
				return fmt.Errorf("failed to encode item %s: %w", code, err)
			}
			p.Set(ctx, c.key(code), data, c.ttl)
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("item cache write failed", zap.Int("items", len(items)), zap.Error(err))
	}
}

// Save writes through to the repository and evicts the cached entry
func (c *RedisItemCatalog) Save(ctx context.Context, item *catalog.Item) error {
	if err := c.next.Save(ctx, item); err != nil {
		return err
	}
	return c.Invalidate(ctx, item.Code)
}

// Invalidate evicts codes from the cache
func (c *RedisItemCatalog) Invalidate(ctx context.Context, codes ...string) error {
	if len(codes) == 0 {
		return nil
	}
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = c.key(code)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to evict cached items: %w", err)
	}
	return nil
}

var _ catalog.ItemRepository = (*RedisItemCatalog)(nil)
