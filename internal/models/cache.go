package models

import (
	"html/template"
	"time"

	"github.com/go-while/go-postboard/internal/cache"
)

// Global render cache instance, nil means disabled
var renderCache *cache.RenderCache

// InitRenderCache enables caching of RenderContent results. maxEntries <= 0 disables it.
func InitRenderCache(maxEntries int, maxAge time.Duration) {
	if renderCache != nil {
		renderCache.Stop()
		renderCache = nil
	}
	if maxEntries <= 0 {
		return
	}
	renderCache = cache.NewRenderCache(maxEntries, maxAge)
}

// GetRenderCache returns the global render cache instance
func GetRenderCache() *cache.RenderCache {
	return renderCache
}

func getCachedRender(content string) (template.HTML, bool) {
	if renderCache == nil {
		return "", false
	}
	return renderCache.Get(content)
}

func setCachedRender(content string, html template.HTML) {
	if renderCache == nil {
		return
	}
	renderCache.Set(content, html)
}
