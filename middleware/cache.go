package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Chandrasura25/Social-media-backend-case-study/utils"
)

// CacheKeyFunc derives the cache key for a request. An empty key skips the cache.
type CacheKeyFunc func(ctx *gin.Context) string

// PostsCacheKey keys the public posts list by its full request URI.
func PostsCacheKey(ctx *gin.Context) string {
	return utils.PostsListCachePrefix + ctx.Request.URL.RequestURI()
}

// FeedCacheKey scopes the key to the caller so feeds are never shared.
// It must run after AuthRequired.
func FeedCacheKey(ctx *gin.Context) string {
	uid := CurrentUserID(ctx)
	if uid == 0 {
		return ""
	}
	return utils.FeedCachePrefixFor(uid) + ctx.Request.URL.RequestURI()
}

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CacheResponse serves GET responses from cache and stores successful ones.
// Concurrent misses for one key may both compute; the last write wins.
func CacheResponse(cache utils.Cache, ttl time.Duration, key CacheKeyFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodGet {
			ctx.Next()
			return
		}
		k := key(ctx)
		if k == "" {
			ctx.Next()
			return
		}

		if b, ok := cache.Get(ctx.Request.Context(), k); ok {
			ctx.Header("X-Cache", "HIT")
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
			ctx.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: ctx.Writer}
		ctx.Writer = rec
		ctx.Header("X-Cache", "MISS")
		ctx.Next()

		if rec.Status() == http.StatusOK && rec.body.Len() > 0 {
			cache.Set(ctx.Request.Context(), k, rec.body.Bytes(), ttl)
		}
	}
}
