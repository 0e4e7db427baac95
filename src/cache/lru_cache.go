package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Entry is a cached completion together with its expiry.
type Entry struct {
	Text      string    `json:"text"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LRUCache is a thread-safe completion cache with a capacity bound and a TTL.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	order    *list.List
	now      func() time.Time
}

type node struct {
	key   string
	entry Entry
}

// NewLRUCache creates a cache holding at most capacity entries, each valid for ttl.
func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	if capacity <= 0 {
		capacity = 128
	}
	return &LRUCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the cached text for key. Expired entries are dropped on access.
func (c *LRUCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return "", false
	}
	n := elem.Value.(*node)
	if c.expired(n.entry) {
		c.order.Remove(elem)
		delete(c.items, key)
		return "", false
	}
	c.order.MoveToFront(elem)
	return n.entry.Text, true
}

// Set stores text under key, evicting the least recently used entry when full.
func (c *LRUCache) Set(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := Entry{Text: text, ExpiresAt: c.now().Add(c.ttl)}
	if elem, ok := c.items[key]; ok {
		elem.Value.(*node).entry = e
		c.order.MoveToFront(elem)
		return
	}
	c.items[key] = c.order.PushFront(&node{key: key, entry: e})
	c.evict()
}

// Len reports the number of live and not-yet-collected entries.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear drops every entry.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element, c.capacity)
	c.order.Init()
}

// Dump snapshots the unexpired entries for persistence.
func (c *LRUCache) Dump() map[string]Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]Entry, len(c.items))
	for k, elem := range c.items {
		e := elem.Value.(*node).entry
		if c.expired(e) {
			continue
		}
		out[k] = e
	}
	return out
}

// Restore replaces the cache content with dump, skipping expired entries.
func (c *LRUCache) Restore(dump map[string]Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element, c.capacity)
	c.order.Init()
	for k, e := range dump {
		if c.expired(e) {
			continue
		}
		c.items[k] = c.order.PushFront(&node{key: k, entry: e})
	}
	c.evict()
}

func (c *LRUCache) expired(e Entry) bool {
	return c.ttl > 0 && c.now().After(e.ExpiresAt)
}

func (c *LRUCache) evict() {
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*node).key)
	}
}

// Key hashes the parts of a request into a fixed-size cache key.
// Parts are length-prefixed so ("ab","c") and ("a","bc") differ.
func Key(parts ...string) string {
	h := sha256.New()
	var lenBuf [8]byte
	for _, p := range parts {
		n := uint64(len(p))
		for i := range lenBuf {
			lenBuf[i] = byte(n >> (8 * i))
		}
		h.Write(lenBuf[:])
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
