package config

// Redis backs the distributed rate limiter and the public response cache.
// If the server cannot be reached at startup NewRedisClient returns nil and
// both middlewares degrade to pass-through.

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// RedisConfig holds the client parameters.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

func setRedisDefaults(v *viper.Viper) {
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tls", false)

	_ = v.BindEnv("redis.addr", "HOLIDAZE_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("redis.host", "HOLIDAZE_REDIS_HOST", "REDIS_HOST")
	_ = v.BindEnv("redis.port", "HOLIDAZE_REDIS_PORT", "REDIS_PORT")
	_ = v.BindEnv("redis.password", "HOLIDAZE_REDIS_PASSWORD", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "HOLIDAZE_REDIS_DB", "REDIS_DB")
	_ = v.BindEnv("redis.tls", "HOLIDAZE_REDIS_TLS", "REDIS_TLS")
}

// REDIS_HOST and REDIS_PORT together take precedence over REDIS_ADDR.
func loadRedisConfig(v *viper.Viper) RedisConfig {
	addr := strings.TrimSpace(v.GetString("redis.addr"))
	host, port := strings.TrimSpace(v.GetString("redis.host")), strings.TrimSpace(v.GetString("redis.port"))
	if host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	return RedisConfig{
		Addr:     addr,
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
		TLS:      v.GetBool("redis.tls"),
	}
}

// NewRedisClient connects and pings the server with a short timeout.
// It returns nil when the server is unreachable.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
