package controllers

import (
	"net/http"

	"github.com/rmadriz/portfolio-backend/api/responses"
	"github.com/rmadriz/portfolio-backend/internal/cache"
	"github.com/rmadriz/portfolio-backend/pkg/logger"
)

// CacheStats exposes hit/miss counters and key counts for the admin panel.
func CacheStats(responseCache *cache.Cache, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, responseCache.Stats(r.Context()))
	}
}

// CacheFlush drops every cached response.
func CacheFlush(responseCache *cache.Cache, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed := responseCache.Flush(r.Context())
		responses.WriteSuccess(w, map[string]any{"status": "flushed", "removed": removed})
	}
}
