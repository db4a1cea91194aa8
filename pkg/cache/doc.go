// Package cache provides optional Redis-backed caching of Cloud
// Controller responses.
//
// The Cloud Controller does not emit cache validators, so the cache is
// purely a short-TTL absorber: it keeps the bulk collection pages warm
// between closely spaced report runs without a risk of holding stale
// data for long.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager
//	manager := cache.NewManager(redisClient)
//
//	// Create cache key (the full page URL is the key)
//	key := cache.Key{URL: "https://api.sys.example.com/v3/apps?per_page=100"}
//
//	// Get from cache
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Cache miss - fetch from the Cloud Controller
//	}
//
// # HTTP Response Caching
//
//	// Convert HTTP response to cache entry with a fixed TTL
//	entry, err := cache.ResponseToEntry(resp, 5*time.Minute)
//	if err != nil {
//		return err
//	}
//
//	// Store in cache
//	if err := manager.Set(ctx, key, entry); err != nil {
//		return err
//	}
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - capi_cache_hits_total{layer="redis"} - Cache hits
//   - capi_cache_misses_total - Cache misses
//   - capi_cache_size_bytes{layer="redis"} - Cache size
//   - capi_cache_errors_total{operation} - Cache operation errors
package cache
