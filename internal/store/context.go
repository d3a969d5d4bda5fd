// Package store holds the shared record store that tool handlers read and
// mutate during a run: a generic key/value bag plus the People table.
package store

import (
	"errors"
	"maps"
	"sort"
	"sync"
)

// ErrNoStore is returned by handlers invoked without a Context. It is a
// precondition failure and ends the run.
var ErrNoStore = errors.New("record store is required")

// Well-known keys.
const (
	KeyPeople              = "people"
	KeyLastOperation       = "last_operation"
	KeyLastResultSummary   = "last_result_summary"
	KeySearchKeyword       = "search_keyword"
	KeyMergedFrom          = "merged_from"
	KeyMergedTo            = "merged_to"
	KeyTranscriptProcessed = "transcript_processed"
	KeyTranscriptMetadata  = "original_transcript_metadata"
)

// Context is the record store for one run. It is owned by a single run at a
// time; the internal lock only keeps concurrent readers consistent.
type Context struct {
	mu    sync.RWMutex
	data  map[string]any
	input map[string]any
}

// New creates a store. input is copied and never changes afterwards.
func New(input map[string]any) *Context {
	return &Context{
		data:  make(map[string]any),
		input: maps.Clone(input),
	}
}

// Set stores value under key, overwriting any previous value.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

// Get returns the value under key, or def when absent.
func (c *Context) Get(key string, def any) any {
	if v, ok := c.Lookup(key); ok {
		return v
	}
	return def
}

func (c *Context) Lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

// Update merges values into the store, overwriting on conflict.
func (c *Context) Update(values map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	maps.Copy(c.data, values)
}

// GetString returns the value under key when it is a string.
func (c *Context) GetString(key string) string {
	s, _ := c.Get(key, "").(string)
	return s
}

// Keys returns the stored keys in sorted order.
func (c *Context) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// InputData returns a copy of the seed input.
func (c *Context) InputData() map[string]any {
	return maps.Clone(c.input)
}

// People returns the person table, creating it under KeyPeople on first use.
// A foreign value stored under the key is replaced by an empty table.
func (c *Context) People() *People {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.data[KeyPeople].(*People); ok {
		return t
	}
	t := NewPeople()
	c.data[KeyPeople] = t
	return t
}

// Snapshot returns a JSON-friendly copy of the store, with the person table
// rendered as name → person.
func (c *Context) Snapshot() map[string]any {
	c.mu.RLock()
	out := make(map[string]any, len(c.data))
	var people *People
	for k, v := range c.data {
		if t, ok := v.(*People); ok && k == KeyPeople {
			people = t
			continue
		}
		out[k] = v
	}
	c.mu.RUnlock()

	if people != nil {
		byName := make(map[string]PersonView, people.Len())
		for _, v := range people.Views() {
			byName[v.Name] = v
		}
		out[KeyPeople] = byName
	}
	return out
}
