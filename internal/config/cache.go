package config

import "time"

// CacheConfig drives the Redis response cache on the public catalog
// browse endpoint.  Only GET responses are cached; the key is derived
// from route and query string.  When disabled or Redis is unreachable
// the middleware is a pass-through.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads cache settings from environment variables.
// The short default TTL keeps availability numbers close to live
// while still absorbing browse traffic during the selection rush.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 15*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
