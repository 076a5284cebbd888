package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is off.
// Methods lists the HTTP methods to cache (GET, HEAD). KeyStrategy decides
// which parts of the request contribute to the key; Prefix namespaces keys
// and MaxBodyBytes bounds what is stored per entry.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

func setCacheDefaults(v *viper.Viper) {
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.methods", "GET")
	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("cache.key_strategy", "route_query")
	v.SetDefault("cache.prefix", "cache")
	v.SetDefault("cache.max_body_bytes", 1048576)

	_ = v.BindEnv("cache.enabled", "HOLIDAZE_CACHE_ENABLED", "CACHE_ENABLED")
	_ = v.BindEnv("cache.methods", "HOLIDAZE_CACHE_METHODS", "CACHE_METHODS")
	_ = v.BindEnv("cache.ttl", "HOLIDAZE_CACHE_TTL", "CACHE_TTL")
	_ = v.BindEnv("cache.key_strategy", "HOLIDAZE_CACHE_KEY_STRATEGY", "CACHE_KEY_STRATEGY")
	_ = v.BindEnv("cache.prefix", "HOLIDAZE_CACHE_PREFIX", "CACHE_PREFIX")
	_ = v.BindEnv("cache.max_body_bytes", "HOLIDAZE_CACHE_MAX_BODY_BYTES", "CACHE_MAX_BODY_BYTES")
}

func loadCacheConfig(v *viper.Viper) CacheConfig {
	return CacheConfig{
		Enabled:      v.GetBool("cache.enabled"),
		Methods:      parseMethods(v.GetString("cache.methods")),
		TTL:          parseDur(v.GetString("cache.ttl"), time.Second),
		KeyStrategy:  v.GetString("cache.key_strategy"),
		Prefix:       v.GetString("cache.prefix"),
		MaxBodyBytes: v.GetInt("cache.max_body_bytes"),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}

func parseDur(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return d
}
