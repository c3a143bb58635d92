package cache

// EvictCallback is called when an entry leaves the cache because of capacity or expiry.
// Redis and sqlite do not report evictions; only the memory provider invokes it.
type EvictCallback func(key string, value []byte)

// Logger receives backend failures. Cache operations never return errors: a failing
// backend behaves like an empty cache.
type Logger interface {
	Error(msg string, err error)
}

// Cache stores thumbnail bytes keyed by their source URL.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	Get(key string) ([]byte, bool)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte)

	// Contains reports whether key is present without refreshing it.
	Contains(key string) bool

	// Len returns the number of stored entries.
	Len() int

	// Close releases connections held by the backend.
	Close() error
}
