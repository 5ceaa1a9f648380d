package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	ShardCount    int           // number of resource shards (fixed per deployment)
	FanoutTimeout time.Duration // per-shard budget for fan-out reads
	SessionTTL    time.Duration // session token lifetime
	IdleUnitTTL   time.Duration // evict in-memory units idle longer than this
	GCInterval    time.Duration // interval to run idle unit eviction

	SeedFile       string        // path to the seed catalog yaml (optional, empty = seeding disabled)
	ReloadInterval time.Duration // interval to reload the seed catalog (default: 24h)

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	RateLimitBurst  int  // token bucket burst per IP
	RateLimitPerMin int  // token refill per IP per minute
	TrustProxy      bool // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("GUIDE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("GUIDE_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("GUIDE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("GUIDE_PRETTY_LOG", true),

		// Cluster layout
		ShardCount:    getenvInt("GUIDE_SHARD_COUNT", 4),
		FanoutTimeout: mustDuration("GUIDE_FANOUT_TIMEOUT", 2*time.Second),
		SessionTTL:    mustDuration("GUIDE_SESSION_TTL", 7*24*time.Hour),
		IdleUnitTTL:   mustDuration("GUIDE_IDLE_UNIT_TTL", 10*time.Minute),
		GCInterval:    mustDuration("GUIDE_GC_INTERVAL", time.Minute),

		// Seed catalog
		SeedFile:       getenv("GUIDE_SEED_FILE", ""), // Optional, empty = seeding disabled
		ReloadInterval: mustDuration("GUIDE_RELOAD_SOURCE_INTERVAL", 24*time.Hour),

		// Redis settings
		RedisAddr:             requireEnv("GUIDE_REDIS_ADDR"),
		RedisUser:             getenv("GUIDE_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("GUIDE_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("GUIDE_REDIS_PASSWORD", ""),
		RedisDB:               requireEnvInt("GUIDE_REDIS_DB"),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Abuse limits
		RateLimitBurst:  getenvInt("GUIDE_RATE_LIMIT_BURST", 20),
		RateLimitPerMin: getenvInt("GUIDE_RATE_LIMIT_PER_MIN", 60),
		TrustProxy:      mustBool("GUIDE_TRUST_PROXY", true),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: GUIDE_REDIS_PASSWORD is required when GUIDE_REDIS_PASSWORD_REQUIRED=true")
	}

	if cfg.ShardCount < 1 {
		panic(fmt.Sprintf("❌ FATAL: GUIDE_SHARD_COUNT must be at least 1, got %d", cfg.ShardCount))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
