package models

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/Protocol-Lattice/research-agent/src/cache"
)

// CachedLLM wraps a Generator and caches completions by (system, prompt).
type CachedLLM struct {
	Generator Generator
	Cache     *cache.LRUCache
	FilePath  string

	saveMu sync.Mutex
}

// NewCachedLLM creates a new CachedLLM wrapper. A non-empty filePath is
// loaded immediately and rewritten after every miss.
func NewCachedLLM(gen Generator, size int, ttl time.Duration, filePath string) *CachedLLM {
	c := &CachedLLM{
		Generator: gen,
		Cache:     cache.NewLRUCache(size, ttl),
		FilePath:  filePath,
	}
	if filePath != "" {
		c.load()
	}
	return c
}

func (c *CachedLLM) load() {
	f, err := os.Open(c.FilePath)
	if err != nil {
		return // missing file is a cold cache
	}
	defer f.Close()

	var dump map[string]cache.Entry
	if err := json.NewDecoder(f).Decode(&dump); err == nil {
		c.Cache.Restore(dump)
	}
}

func (c *CachedLLM) save() {
	if c.FilePath == "" {
		return
	}
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	// Atomic write: write to temp, then rename
	tmp := c.FilePath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return
	}
	if err := json.NewEncoder(f).Encode(c.Cache.Dump()); err != nil {
		f.Close()
		os.Remove(tmp)
		return
	}
	f.Close()
	os.Rename(tmp, c.FilePath)
}

// Generate checks the cache before calling the wrapped generator. Errors are never cached.
func (c *CachedLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	key := cache.Key(system, prompt)
	if text, ok := c.Cache.Get(key); ok {
		return text, nil
	}

	text, err := c.Generator.Generate(ctx, system, prompt)
	if err != nil {
		return "", err
	}

	c.Cache.Set(key, text)
	c.save()
	return text, nil
}

// TryCreateCachedLLM wraps gen when RESEARCH_LLM_CACHE_SIZE is set.
// RESEARCH_LLM_CACHE_TTL (seconds) and RESEARCH_LLM_CACHE_PATH tune it.
func TryCreateCachedLLM(gen Generator) Generator {
	size, err := strconv.Atoi(os.Getenv("RESEARCH_LLM_CACHE_SIZE"))
	if err != nil || size <= 0 {
		return gen
	}

	ttl := 24 * time.Hour
	if sec, err := strconv.Atoi(os.Getenv("RESEARCH_LLM_CACHE_TTL")); err == nil && sec > 0 {
		ttl = time.Duration(sec) * time.Second
	}

	path := os.Getenv("RESEARCH_LLM_CACHE_PATH")
	if path == "" {
		path = ".research_cache.json"
	}
	return NewCachedLLM(gen, size, ttl, path)
}
