package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// instrumentedCache reports the traffic of one cache group. Contains and Len are
// served by the embedded cache untouched.
type instrumentedCache struct {
	Cache
	group string

	hits        prometheus.Counter
	misses      prometheus.Counter
	writes      prometheus.Counter
	servedBytes prometheus.Counter
}

// newInstrumentedCache resolves the group's counters once and registers a collector
// reading inner.Len at scrape time, since expiry happens outside our control.
func newInstrumentedCache(inner Cache, group string) *instrumentedCache {
	registerEntriesCollector(group, inner.Len)
	return &instrumentedCache{
		Cache:       inner,
		group:       group,
		hits:        HitsTotal.WithLabelValues(group),
		misses:      MissesTotal.WithLabelValues(group),
		writes:      WritesTotal.WithLabelValues(group),
		servedBytes: ServedBytesTotal.WithLabelValues(group),
	}
}

func (c *instrumentedCache) Get(key string) ([]byte, bool) {
	val, ok := c.Cache.Get(key)
	if !ok {
		c.misses.Inc()
		return nil, false
	}
	c.hits.Inc()
	c.servedBytes.Add(float64(len(val)))
	return val, true
}

func (c *instrumentedCache) Set(key string, value []byte) {
	c.writes.Inc()
	c.Cache.Set(key, value)
}

func (c *instrumentedCache) Close() error {
	unregisterEntriesCollector(c.group)
	return c.Cache.Close()
}
