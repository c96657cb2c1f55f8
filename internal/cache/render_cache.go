// Package cache holds rendered post content so repeated page loads skip link detection
package cache

import (
	"encoding/hex"
	"fmt"
	"html/template"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

type renderEntry struct {
	html      template.HTML
	createdAt time.Time
	lastUsed  time.Time
	size      int64
}

// RenderCache maps post content to its rendered HTML.
// Rendering is deterministic, so an entry never goes stale; maxAge only bounds memory.
type RenderCache struct {
	mutex       sync.Mutex
	cache       map[string]*renderEntry
	maxEntries  int
	maxAge      time.Duration
	cleanupTick time.Duration
	stopCleanup chan struct{}
	stopOnce    sync.Once
	cachedSize  int64
	hits        int64
	misses      int64
}

// NewRenderCache creates a cache with the given limits and starts its cleanup goroutine
func NewRenderCache(maxEntries int, maxAge time.Duration) *RenderCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	rc := &RenderCache{
		cache:       make(map[string]*renderEntry),
		maxEntries:  maxEntries,
		maxAge:      maxAge,
		cleanupTick: time.Minute,
		stopCleanup: make(chan struct{}),
	}
	go rc.cleanupLoop()
	return rc
}

// Get returns the cached HTML of content
func (rc *RenderCache) Get(content string) (template.HTML, bool) {
	key := hashContent(content)
	rc.mutex.Lock()
	defer rc.mutex.Unlock()
	e, ok := rc.cache[key]
	if !ok || (rc.maxAge > 0 && time.Since(e.createdAt) > rc.maxAge) {
		rc.misses++
		return "", false
	}
	e.lastUsed = time.Now()
	rc.hits++
	return e.html, true
}

// Set stores the rendered HTML of content, evicting the least recently used entry when full
func (rc *RenderCache) Set(content string, html template.HTML) {
	key := hashContent(content)
	now := time.Now()
	rc.mutex.Lock()
	defer rc.mutex.Unlock()
	if old, ok := rc.cache[key]; ok {
		rc.cachedSize -= old.size
	} else if len(rc.cache) >= rc.maxEntries {
		rc.evictOldest()
	}
	size := int64(len(html))
	rc.cache[key] = &renderEntry{html: html, createdAt: now, lastUsed: now, size: size}
	rc.cachedSize += size
}

// Len returns the number of cached entries
func (rc *RenderCache) Len() int {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()
	return len(rc.cache)
}

// Stats returns cache counters
func (rc *RenderCache) Stats() map[string]interface{} {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()
	total := rc.hits + rc.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(rc.hits) / float64(total) * 100
	}
	return map[string]interface{}{
		"entries":     len(rc.cache),
		"max_entries": rc.maxEntries,
		"max_age":     rc.maxAge.String(),
		"size":        humanSize(rc.cachedSize),
		"hits":        rc.hits,
		"misses":      rc.misses,
		"hit_rate":    hitRate,
	}
}

// Stop shuts down the cleanup goroutine
func (rc *RenderCache) Stop() {
	rc.stopOnce.Do(func() { close(rc.stopCleanup) })
}

// evictOldest removes the least recently used entry. Caller holds the mutex.
func (rc *RenderCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, e := range rc.cache {
		if oldestKey == "" || e.lastUsed.Before(oldest) {
			oldestKey = key
			oldest = e.lastUsed
		}
	}
	if oldestKey != "" {
		rc.cachedSize -= rc.cache[oldestKey].size
		delete(rc.cache, oldestKey)
	}
}

func (rc *RenderCache) cleanupLoop() {
	ticker := time.NewTicker(rc.cleanupTick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rc.cleanup(time.Now())
		case <-rc.stopCleanup:
			return
		}
	}
}

// cleanup removes entries older than maxAge
func (rc *RenderCache) cleanup(now time.Time) int {
	if rc.maxAge <= 0 {
		return 0
	}
	rc.mutex.Lock()
	defer rc.mutex.Unlock()
	removed := 0
	for key, e := range rc.cache {
		if now.Sub(e.createdAt) > rc.maxAge {
			rc.cachedSize -= e.size
			delete(rc.cache, key)
			removed++
		}
	}
	return removed
}

// hashContent keeps keys short for long posts
func hashContent(content string) string {
	sum := blake2b.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func humanSize(size int64) string {
	if size < 1024 {
		return fmt.Sprintf("%d bytes", size)
	}
	if size < 1024*1024 {
		return fmt.Sprintf("%.2f KB", float64(size)/1024.0)
	}
	return fmt.Sprintf("%.2f MB", float64(size)/(1024.0*1024.0))
}
