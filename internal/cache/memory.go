package cache

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

func init() {
	Register(ProviderMemory, newMemoryCache)
}

// memoryCache keeps thumbnails in an expiring LRU bounded by entry count and,
// when MaxBytes is set, by the total size of the stored images.
type memoryCache struct {
	entries  *lru.LRU[string, []byte]
	maxBytes int64
	bytes    atomic.Int64

	// setMu serializes the replace-then-trim sequence of Set. The eviction callback
	// runs under the LRU's own lock and must not take it.
	setMu sync.Mutex
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	m := &memoryCache{maxBytes: cfg.MaxBytes}
	onEvict := cfg.OnEvict
	m.entries = lru.NewLRU[string, []byte](cfg.Size, func(key string, value []byte) {
		m.bytes.Add(-int64(len(value)))
		if onEvict != nil {
			onEvict(key, value)
		}
	}, cfg.TTL)
	return m, nil
}

func (m *memoryCache) Get(key string) ([]byte, bool) {
	return m.entries.Get(key)
}

// Set stores value and then drops least recently used images until the byte budget
// holds again. An image larger than the whole budget is not stored.
func (m *memoryCache) Set(key string, value []byte) {
	size := int64(len(value))
	if m.maxBytes > 0 && size > m.maxBytes {
		return
	}

	m.setMu.Lock()
	defer m.setMu.Unlock()

	if old, ok := m.entries.Peek(key); ok {
		m.bytes.Add(-int64(len(old)))
	} else {
		// An expired entry not yet swept is replaced silently by Add; remove it first so
		// its bytes are released through the eviction callback
		m.entries.Remove(key)
	}
	m.entries.Add(key, value)
	m.bytes.Add(size)

	for m.maxBytes > 0 && m.bytes.Load() > m.maxBytes {
		if _, _, ok := m.entries.RemoveOldest(); !ok {
			break
		}
	}
}

func (m *memoryCache) Contains(key string) bool {
	return m.entries.Contains(key)
}

func (m *memoryCache) Len() int {
	return m.entries.Len()
}

// Bytes returns the total size of the stored values.
func (m *memoryCache) Bytes() int64 {
	return m.bytes.Load()
}

// Close keeps the entries; a process-local cache has nothing to release.
func (m *memoryCache) Close() error {
	return nil
}
