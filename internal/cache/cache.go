package cache

import (
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a typed, expiring in-memory map. It is safe for concurrent use.
type Cache[K comparable, V any] struct {
	cache       *gocache.Cache
	keyToString func(K) string
	logger      *slog.Logger
}

type CacheConfig struct {
	TTL    time.Duration
	Logger *slog.Logger
}

func NewCache[K comparable, V any](config CacheConfig, keyToString func(K) string) *Cache[K, V] {
	if config.TTL == 0 {
		config.TTL = 1 * time.Hour
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	config.Logger.Debug("Cache initialized", "ttl", config.TTL)

	return &Cache[K, V]{
		cache:       gocache.New(config.TTL, config.TTL/2),
		keyToString: keyToString,
		logger:      config.Logger,
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	value, found := c.cache.Get(c.keyToString(key))
	if !found {
		var zero V
		return zero, false
	}

	if typedValue, ok := value.(V); ok {
		return typedValue, true
	}

	var zero V
	return zero, false
}

func (c *Cache[K, V]) Set(key K, value V) {
	stringKey := c.keyToString(key)
	c.cache.Set(stringKey, value, gocache.DefaultExpiration)
	c.logger.Debug("Cache stored", "key", stringKey)
}

func (c *Cache[K, V]) Len() int {
	return c.cache.ItemCount()
}

func (c *Cache[K, V]) Clear() {
	c.cache.Flush()
}
