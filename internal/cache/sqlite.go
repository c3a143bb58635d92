package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

func init() {
	Register(ProviderSQLite, newSQLiteCache)
}

const (
	sqliteOpenTimeout = 5 * time.Second
	sqliteOpTimeout   = 2 * time.Second
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS cache_entries (
		namespace  TEXT NOT NULL,
		cache_key  TEXT NOT NULL,
		value      BLOB NOT NULL,
		expires_at INTEGER NOT NULL,
		PRIMARY KEY (namespace, cache_key)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at)`,
}

// sqliteCache stores thumbnails in a SQLite file so later runs of the CLI reuse the
// images fetched by earlier ones. Entries are namespaced by KeyPrefix; expires_at is
// in Unix milliseconds.
type sqliteCache struct {
	db        *sql.DB
	namespace string
	ttl       time.Duration
	size      int
	logger    Logger
	now       func() time.Time
}

func newSQLiteCache(cfg ProviderConfig) (Cache, error) {
	if cfg.SQLitePath == "" {
		return nil, errors.New("cache: sqlite provider needs a database path")
	}
	if cfg.SQLitePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("cache: create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("cache: open sqlite %s: %w", cfg.SQLitePath, err)
	}
	// ":memory:" databases live per connection, and the CLI has a single writer anyway
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpenTimeout)
	defer cancel()
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("cache: init sqlite %s: %w", cfg.SQLitePath, err)
		}
	}

	c := &sqliteCache{
		db:        db,
		namespace: cfg.KeyPrefix,
		ttl:       cfg.TTL,
		size:      cfg.Size,
		logger:    cfg.Logger,
		now:       time.Now,
	}
	c.prune(ctx)
	return c, nil
}

func (c *sqliteCache) nowMillis() int64 {
	return c.now().UnixMilli()
}

func (c *sqliteCache) logError(msg string, err error) {
	if c.logger != nil {
		c.logger.Error(msg, err)
	}
}

func (c *sqliteCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	var value []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE namespace = ? AND cache_key = ? AND expires_at > ?`,
		c.namespace, key, c.nowMillis(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		c.logError("sqlite cache get failed", err)
		return nil, false
	}
	return value, true
}

// Set upserts the value and then trims the namespace to Size entries, dropping the
// ones closest to expiry first.
func (c *sqliteCache) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	expiresAt := c.now().Add(c.ttl).UnixMilli()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO cache_entries (namespace, cache_key, value, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(namespace, cache_key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		c.namespace, key, value, expiresAt,
	)
	if err != nil {
		c.logError("sqlite cache set failed", err)
		return
	}

	if c.size <= 0 {
		return
	}
	_, err = c.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE namespace = ? AND cache_key NOT IN (
			SELECT cache_key FROM cache_entries WHERE namespace = ?
			ORDER BY expires_at DESC, rowid DESC LIMIT ?
		)`,
		c.namespace, c.namespace, c.size,
	)
	if err != nil {
		c.logError("sqlite cache trim failed", err)
	}
}

func (c *sqliteCache) Contains(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	var one int
	err := c.db.QueryRowContext(ctx,
		`SELECT 1 FROM cache_entries WHERE namespace = ? AND cache_key = ? AND expires_at > ?`,
		c.namespace, key, c.nowMillis(),
	).Scan(&one)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		c.logError("sqlite cache contains failed", err)
	}
	return err == nil
}

func (c *sqliteCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	var n int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cache_entries WHERE namespace = ? AND expires_at > ?`,
		c.namespace, c.nowMillis(),
	).Scan(&n)
	if err != nil {
		c.logError("sqlite cache len failed", err)
		return 0
	}
	return n
}

// prune deletes expired rows of every namespace.
func (c *sqliteCache) prune(ctx context.Context) {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE expires_at <= ?`, c.nowMillis()); err != nil {
		c.logError("sqlite cache prune failed", err)
	}
}

func (c *sqliteCache) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()
	c.prune(ctx)
	return c.db.Close()
}
