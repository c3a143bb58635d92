package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Belphemur/PlutoDownloader/internal/config"
)

// Provider names accepted by New and the cache.type setting.
const (
	ProviderMemory = "memory"
	ProviderRedis  = "redis"
	ProviderSQLite = "sqlite"
)

const (
	defaultSize = 500
	defaultTTL  = time.Hour
)

// ProviderConfig holds what a provider needs to build a cache.
type ProviderConfig struct {
	// Size caps the number of entries. Ignored by redis, which relies on server eviction.
	Size int

	// MaxBytes caps the total size of the values kept by the memory provider. Zero means
	// only Size applies.
	MaxBytes int64

	// TTL is how long an entry lives after Set.
	TTL time.Duration

	OnEvict EvictCallback

	// Logger receives backend errors. Nil discards them.
	Logger Logger

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// SQLitePath is the database file of the sqlite provider, or ":memory:".
	SQLitePath string

	// KeyPrefix namespaces redis keys and sqlite rows. Defaults to "plutodl:<group>:".
	KeyPrefix string

	// Group labels the cache metrics. A non-empty group wraps the cache with instrumentation.
	Group string
}

// withDefaults fills unset sizing fields.
func (c ProviderConfig) withDefaults() ProviderConfig {
	if c.Size <= 0 {
		c.Size = defaultSize
	}
	if c.TTL <= 0 {
		c.TTL = defaultTTL
	}
	if c.KeyPrefix == "" {
		group := c.Group
		if group == "" {
			group = "default"
		}
		c.KeyPrefix = "plutodl:" + group + ":"
	}
	return c
}

// Provider builds a Cache from its configuration.
type Provider func(cfg ProviderConfig) (Cache, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

// Register makes a provider available under name. It panics on a nil provider or a
// duplicate name.
func Register(name string, p Provider) {
	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("cache: Register provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("cache: provider %q already registered", name))
	}
	providers[name] = p
}

// New builds a cache with the named provider. When cfg.Group is set the cache counts
// hits, misses and evictions under that group and reports its size at scrape time.
func New(name string, cfg ProviderConfig) (Cache, error) {
	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("cache: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}

	cfg = cfg.withDefaults()
	if cfg.Group == "" {
		return p(cfg)
	}

	group := cfg.Group
	onEvict := cfg.OnEvict
	cfg.OnEvict = func(key string, value []byte) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if onEvict != nil {
			onEvict(key, value)
		}
	}

	inner, err := p(cfg)
	if err != nil {
		return nil, err
	}
	return newInstrumentedCache(inner, group), nil
}

// NewFromConfig builds the cache described by the cache.* settings for group.
func NewFromConfig(cfg *config.Config, group string, logger Logger) (Cache, error) {
	ttl, err := time.ParseDuration(cfg.Cache.TTL)
	if err != nil {
		return nil, fmt.Errorf("cache: invalid ttl %q: %w", cfg.Cache.TTL, err)
	}
	return New(cfg.Cache.Type, ProviderConfig{
		Size:          cfg.Cache.Size,
		MaxBytes:      cfg.Cache.MaxBytes,
		TTL:           ttl,
		Logger:        logger,
		RedisAddress:  cfg.Cache.Redis.Address,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
		SQLitePath:    cfg.Cache.SQLite.Path,
		Group:         group,
	})
}

// RegisteredProviders returns the provider names in sorted order.
func RegisteredProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
