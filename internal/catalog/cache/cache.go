// Package cache puts a badger-backed TTL cache in front of a catalog.Catalog.
// Cache failures are logged and fall through to the catalog; only catalog
// errors reach the caller, and they are never cached.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/storyspine/storyspine-server/internal/catalog"
	"github.com/storyspine/storyspine-server/internal/domain"
)

// Key prefixes. Volumes and searches live in one keyspace.
const (
	VolumePrefix = "vol:"
	SearchPrefix = "q:"
)

// Catalog caches volume lookups and searches for a fixed TTL.
type Catalog struct {
	next   catalog.Catalog
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

var _ catalog.Catalog = (*Catalog)(nil)

// Open opens (or creates) the cache under dir. An empty dir keeps the cache in memory.
func Open(dir string, next catalog.Catalog, ttl time.Duration, logger *slog.Logger) (*Catalog, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open catalog cache: %w", err)
	}
	return &Catalog{next: next, db: db, ttl: ttl, logger: logger}, nil
}

// Close flushes and closes the cache.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// GetByExternalID serves a cached volume or fetches and caches it.
func (c *Catalog) GetByExternalID(ctx context.Context, externalID string) (*domain.CatalogBook, error) {
	key := VolumeKey(externalID)

	var book domain.CatalogBook
	if c.load(key, &book) {
		return &book, nil
	}

	fetched, err := c.next.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	c.store(key, fetched)
	return fetched, nil
}

// Search serves cached results for the same normalized query and size.
func (c *Catalog) Search(ctx context.Context, query string, maxResults int) ([]domain.CatalogSearchResult, error) {
	key := SearchKey(query, maxResults)

	var results []domain.CatalogSearchResult
	if c.load(key, &results) {
		return results, nil
	}

	fetched, err := c.next.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	c.store(key, fetched)
	return fetched, nil
}

// VolumeKey is the cache key of one volume.
func VolumeKey(externalID string) string {
	return VolumePrefix + externalID
}

// SearchKey is the cache key of one search.
func SearchKey(query string, maxResults int) string {
	q := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return SearchPrefix + strconv.Itoa(maxResults) + ":" + q
}

func (c *Catalog) load(key string, out any) bool {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	switch {
	case err == nil:
		return true
	case errors.Is(err, badger.ErrKeyNotFound):
		return false
	default:
		c.logger.Warn("catalog cache read failed", "key", key, "error", err)
		return false
	}
}

func (c *Catalog) store(key string, value any) {
	if c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("catalog cache encode failed", "key", key, "error", err)
		return
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), data).WithTTL(c.ttl))
	})
	if err != nil {
		c.logger.Warn("catalog cache write failed", "key", key, "error", err)
	}
}

// Entry describes one cached key for inspection.
type Entry struct {
	Key       string
	Size      int64
	ExpiresAt time.Time
}

// Entries walks every live key with the given prefix.
func (c *Catalog) Entries(prefix string, fn func(Entry) error) error {
	return c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			e := Entry{Key: string(item.Key()), Size: item.ValueSize()}
			if exp := item.ExpiresAt(); exp > 0 {
				e.ExpiresAt = time.Unix(int64(exp), 0)
			}
			if err := fn(e); err != nil {
				return err
			}
		}
		return nil
	})
}
