package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
	"github.com/skillerhq/skiller/internal/config"
)

// RateSource looks up the exchange rate from one currency to another.
// Implementations cache aggressively; rates move slowly relative to the
// analysis workload.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

// RateCache stores a fetched rate table per base currency.
type RateCache interface {
	Get(ctx context.Context, base string) (map[string]float64, bool)
	Set(ctx context.Context, base string, rates map[string]float64)
}

// CurrencyClient implements RateSource against a freecurrencyapi-style
// endpoint, with a pluggable cache in front of it.
type CurrencyClient struct {
	http   *resty.Client
	apiKey string
	cache  RateCache
}

// NewCurrencyClient creates a currency API client. A nil cache falls back
// to an in-process map cache with the configured TTL.
func NewCurrencyClient(cfg *config.CurrencyConfig, cache RateCache) *CurrencyClient {
	if cache == nil {
		cache = NewMemoryRateCache(cfg.CacheTTL)
	}
	return &CurrencyClient{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout),
		apiKey: cfg.APIKey,
		cache:  cache,
	}
}

type ratesResponse struct {
	Data map[string]float64 `json:"data"`
}

// Rate returns the multiplier converting an amount in `from` to `to`.
func (c *CurrencyClient) Rate(ctx context.Context, from, to string) (float64, error) {
	if from == to {
		return 1.0, nil
	}

	rates, ok := c.cache.Get(ctx, from)
	if !ok {
		fetched, err := c.fetchRates(ctx, from)
		if err != nil {
			return 0, err
		}
		c.cache.Set(ctx, from, fetched)
		rates = fetched
	}

	rate, ok := rates[to]
	if !ok {
		return 0, fmt.Errorf("no exchange rate from %s to %s", from, to)
	}
	return rate, nil
}

func (c *CurrencyClient) fetchRates(ctx context.Context, base string) (map[string]float64, error) {
	var result ratesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("apikey", c.apiKey).
		SetQueryParam("base_currency", base).
		SetResult(&result).
		Get("/latest")
	if err != nil {
		return nil, fmt.Errorf("exchange rate request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("exchange rate API returned status %d", resp.StatusCode())
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("exchange rate API returned no rates for %s", base)
	}
	return result.Data, nil
}

// MemoryRateCache is an in-process RateCache with per-entry expiry.
type MemoryRateCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryRateEntry
}

type memoryRateEntry struct {
	rates   map[string]float64
	expires time.Time
}

// NewMemoryRateCache creates a map-backed rate cache.
func NewMemoryRateCache(ttl time.Duration) *MemoryRateCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryRateCache{
		ttl:     ttl,
		entries: make(map[string]memoryRateEntry),
	}
}

func (c *MemoryRateCache) Get(ctx context.Context, base string) (map[string]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[base]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.rates, true
}

func (c *MemoryRateCache) Set(ctx context.Context, base string, rates map[string]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[base] = memoryRateEntry{rates: rates, expires: time.Now().Add(c.ttl)}
}

// RedisRateCache is a Redis-backed RateCache for deployments where several
// processes share one rate table.
type RedisRateCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisRateCache parses redisURL, verifies connectivity, and returns a
// Redis-backed cache.
func NewRedisRateCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisRateCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisRateCache{rdb: rdb, ttl: ttl}, nil
}

func (c *RedisRateCache) key(base string) string {
	return "skiller:rates:" + base
}

func (c *RedisRateCache) Get(ctx context.Context, base string) (map[string]float64, bool) {
	raw, err := c.rdb.Get(ctx, c.key(base)).Bytes()
	if err != nil {
		return nil, false
	}
	var rates map[string]float64
	if err := json.Unmarshal(raw, &rates); err != nil {
		return nil, false
	}
	return rates, true
}

func (c *RedisRateCache) Set(ctx context.Context, base string, rates map[string]float64) {
	raw, err := json.Marshal(rates)
	if err != nil {
		return
	}
	// Best effort: a failed cache write only costs a refetch later.
	c.rdb.Set(ctx, c.key(base), raw, c.ttl)
}
