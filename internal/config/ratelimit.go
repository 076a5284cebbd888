package config

import (
	"time"

	"github.com/spf13/viper"
)

// RateLimitConfig configures the Redis token bucket.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

func setRateLimitDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.capacity", 60)
	v.SetDefault("rate_limit.refill_tokens", 1)
	v.SetDefault("rate_limit.refill_interval", "1s")
	v.SetDefault("rate_limit.ttl", "10m")
	v.SetDefault("rate_limit.key_strategy", "ip_user_route")
	v.SetDefault("rate_limit.prefix", "rl")
	v.SetDefault("rate_limit.debug", false)
	v.SetDefault("rate_limit.burst", -1)
	v.SetDefault("rate_limit.refill_every", "")

	_ = v.BindEnv("rate_limit.enabled", "HOLIDAZE_RATE_LIMIT_ENABLED", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.capacity", "HOLIDAZE_RATE_LIMIT_CAPACITY", "RATE_LIMIT_CAPACITY")
	_ = v.BindEnv("rate_limit.refill_tokens", "HOLIDAZE_RATE_LIMIT_REFILL_TOKENS", "RATE_LIMIT_REFILL_TOKENS")
	_ = v.BindEnv("rate_limit.refill_interval", "HOLIDAZE_RATE_LIMIT_REFILL_INTERVAL", "RATE_LIMIT_REFILL_INTERVAL")
	_ = v.BindEnv("rate_limit.ttl", "HOLIDAZE_RATE_LIMIT_TTL", "RATE_LIMIT_TTL")
	_ = v.BindEnv("rate_limit.key_strategy", "HOLIDAZE_RATE_LIMIT_KEY_STRATEGY", "RATE_LIMIT_KEY_STRATEGY")
	_ = v.BindEnv("rate_limit.prefix", "HOLIDAZE_RATE_LIMIT_PREFIX", "RATE_LIMIT_PREFIX")
	_ = v.BindEnv("rate_limit.debug", "HOLIDAZE_RATE_LIMIT_DEBUG", "RATE_LIMIT_DEBUG")
	_ = v.BindEnv("rate_limit.burst", "HOLIDAZE_RATE_LIMIT_BURST", "RATE_LIMIT_BURST")
	_ = v.BindEnv("rate_limit.refill_every", "HOLIDAZE_RATE_LIMIT_REFILL_EVERY", "RATE_LIMIT_REFILL_EVERY")
}

func loadRateLimitConfig(v *viper.Viper) RateLimitConfig {
	rl := RateLimitConfig{
		Enabled:        v.GetBool("rate_limit.enabled"),
		Capacity:       v.GetInt("rate_limit.capacity"),
		RefillTokens:   v.GetInt("rate_limit.refill_tokens"),
		RefillInterval: parseDur(v.GetString("rate_limit.refill_interval"), time.Second),
		TTL:            parseDur(v.GetString("rate_limit.ttl"), 10*time.Minute),
		KeyStrategy:    v.GetString("rate_limit.key_strategy"),
		Prefix:         v.GetString("rate_limit.prefix"),
		Debug:          v.GetBool("rate_limit.debug"),
	}
	// BURST and REFILL_EVERY are shorthands that override the long form.
	if b := v.GetInt("rate_limit.burst"); b > 0 {
		rl.Capacity = b
	}
	if every := parseDur(v.GetString("rate_limit.refill_every"), 0); every > 0 {
		rl.RefillTokens = 1
		rl.RefillInterval = every
	}
	if rl.Capacity < 1 {
		rl.Capacity = 1
	}
	if rl.RefillTokens < 1 {
		rl.RefillTokens = 1
	}
	if rl.RefillInterval <= 0 {
		rl.RefillInterval = time.Second
	}
	if minTTL := 5 * rl.RefillInterval; rl.TTL < minTTL {
		rl.TTL = minTTL
	}
	return rl
}
