// Package cache provides the optional pass-through table cache: a TTL'd
// in-memory map backed by JSON files on disk. It is a plain read-through
// store keyed by operation parameters; there is no eviction policy beyond
// TTL expiry.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hsliu/cnstock/internal/common"
	"github.com/hsliu/cnstock/internal/errors"
	"github.com/hsliu/cnstock/internal/market"
)

// Cache stores tables in memory and on disk with independent TTLs.
type Cache struct {
	mu      sync.Mutex
	mem     map[string]memEntry
	dir     string
	memTTL  time.Duration
	diskTTL time.Duration
	enabled bool
	log     *common.Logger
	now     func() time.Time
}

type memEntry struct {
	table   *market.Table
	savedAt time.Time
}

// New creates a cache from configuration. A disabled cache is valid and
// turns Get/Put into no-ops.
func New(cfg common.CacheConfig, log *common.Logger) *Cache {
	return &Cache{
		mem:     make(map[string]memEntry),
		dir:     cfg.Dir,
		memTTL:  cfg.GetMemTTL(),
		diskTTL: cfg.GetDiskTTL(),
		enabled: cfg.Enabled,
		log:     log,
		now:     time.Now,
	}
}

// Key derives a stable cache key from an operation name and its parameters.
// json.Marshal sorts map keys, so equal parameter sets hash identically.
func Key(op string, params map[string]any) string {
	data, err := json.Marshal(params)
	if err != nil {
		data = []byte(fmt.Sprint(params))
	}
	sum := sha256.Sum256(append([]byte(op+"\x00"), data...))
	return hex.EncodeToString(sum[:])
}

// Get returns a cached table, preferring memory over disk. Expired or
// unreadable disk entries are removed. A disk hit refreshes the memory
// entry.
func (c *Cache) Get(op string, params map[string]any) (*market.Table, bool) {
	if c == nil || !c.enabled {
		return nil, false
	}
	key := Key(op, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.mem[key]; ok {
		if c.now().Sub(entry.savedAt) < c.memTTL {
			return entry.table, true
		}
		delete(c.mem, key)
	}

	path := c.filePath(key)
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if c.now().Sub(info.ModTime()) >= c.diskTTL {
		_ = os.Remove(path)
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var table market.Table
	if err := json.Unmarshal(data, &table); err != nil {
		c.log.Warn().Str("file", path).Err(errors.CacheFailed(err)).Msg("Removing corrupt cache file")
		_ = os.Remove(path)
		return nil, false
	}

	c.mem[key] = memEntry{table: &table, savedAt: c.now()}
	return &table, true
}

// Put stores a table in memory and on disk. Empty tables are never cached.
// Disk failures are logged and otherwise ignored: the cache is best-effort.
func (c *Cache) Put(op string, params map[string]any, table *market.Table) {
	if c == nil || !c.enabled || table.Empty() {
		return
	}
	key := Key(op, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.mem[key] = memEntry{table: table, savedAt: c.now()}

	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		c.log.Warn().Str("dir", c.dir).Err(errors.CacheFailed(err)).Msg("Failed to create cache directory")
		return
	}
	data, err := json.Marshal(table)
	if err != nil {
		c.log.Warn().Err(errors.CacheFailed(err)).Msg("Failed to marshal table for cache")
		return
	}
	if err := os.WriteFile(c.filePath(key), data, 0o600); err != nil {
		c.log.Warn().Str("file", c.filePath(key)).Err(errors.CacheFailed(err)).Msg("Failed to write cache file")
	}
}

func (c *Cache) filePath(key string) string {
	return filepath.Join(c.dir, key+".json")
}
