package ingest

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/cortexai/roster/internal/store"
)

const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	transcript *Transcript
	expiresAt  time.Time
}

// Cache keeps parsed transcripts by path so repeated session resets do not
// re-read the file. Concurrent misses for one path share a single load.
// Cached transcripts are never mutated; every Seed builds a fresh store.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	sf      singleflight.Group
	ttl     time.Duration
	rules   Rules
}

func NewCache(ttl time.Duration, rules Rules) *Cache {
	return &Cache{entries: make(map[string]cacheEntry), ttl: ttl, rules: rules}
}

func (c *Cache) get(path string) (*Transcript, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[path]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.transcript, true
}

func (c *Cache) set(path string, t *Transcript) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = cacheEntry{transcript: t, expiresAt: time.Now().Add(c.ttl)}
}

// Transcript returns the parsed transcript at path, loading it on a miss.
func (c *Cache) Transcript(path string) (*Transcript, error) {
	if t, ok := c.get(path); ok {
		log.Debug().Str("path", path).Msg("transcript cache hit")
		return t, nil
	}
	v, err, _ := c.sf.Do(path, func() (interface{}, error) {
		if t, ok := c.get(path); ok {
			return t, nil
		}
		t, err := LoadTranscript(path)
		if err != nil {
			return nil, err
		}
		c.set(path, t)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Transcript), nil
}

// Seed builds a fresh store from the cached transcript at path.
func (c *Cache) Seed(path string) (*store.Context, error) {
	t, err := c.Transcript(path)
	if err != nil {
		return nil, err
	}
	return BuildStore(t, c.rules), nil
}
