package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline, store reads included

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Store string // "redis" | "memory"

	CompetitionFile string        // competition YAML, empty = no provisioning
	ReloadInterval  time.Duration // interval to re-apply the competition file, 0 = never
	WatchFile       bool          // re-apply the competition file when it changes

	AdminToken    string // bearer token granting the admin capability
	HistoryWindow int    // recent checks attached to uptime projections

	RateLimitRPS   float64 // steady requests per second per client IP, 0 = unlimited
	RateLimitBurst int

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // dial timeout
	RedisRT               time.Duration // read timeout
	RedisWT               time.Duration // write timeout
	RedisMaxWait          time.Duration // max wait between connection retries
	RedisPingTimeout      time.Duration // timeout of each ping attempt
	RedisPoolSize         int
	RedisConnectTimeout   time.Duration // total time to retry connecting
	RedisRetryInterval    time.Duration // first wait between retries, doubled each time
	RedisWarnThreshold    int           // failed attempts logged as warnings before errors

	AllowedCIDRS []string // restrict /metrics, /infra and /reload (e.g. "10.0.0.0/8, 127.0.0.1")
	TrustProxy   bool     // true => trust X-Forwarded-For and friends
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SCOREBOARD_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SCOREBOARD_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("SCOREBOARD_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("SCOREBOARD_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SCOREBOARD_PRETTY_LOG", true),

		Store: strings.ToLower(getenv("SCOREBOARD_STORE", StoreRedis)),

		// Provisioning
		CompetitionFile: getenv("SCOREBOARD_COMPETITION_FILE", ""),
		ReloadInterval:  mustDuration("SCOREBOARD_RELOAD_INTERVAL", time.Hour),
		WatchFile:       mustBool("SCOREBOARD_WATCH_FILE", true),

		// Scoring API
		AdminToken:     requireEnv("SCOREBOARD_ADMIN_TOKEN"),
		HistoryWindow:  getenvInt("SCOREBOARD_HISTORY_WINDOW", 10),
		RateLimitRPS:   getenvFloat("SCOREBOARD_RATE_LIMIT_RPS", 20),
		RateLimitBurst: getenvInt("SCOREBOARD_RATE_LIMIT_BURST", 40),

		// Access restrictions
		AllowedCIDRS: parseAllowedIPs(getenv("SCOREBOARD_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("SCOREBOARD_TRUST_PROXY", false),
	}

	switch cfg.Store {
	case StoreMemory:
	case StoreRedis:
		loadRedis(cfg)
	default:
		panic(fmt.Sprintf("❌ FATAL: SCOREBOARD_STORE must be %q or %q, got %q", StoreRedis, StoreMemory, cfg.Store))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

func loadRedis(cfg *Config) {
	cfg.RedisAddr = requireEnv("SCOREBOARD_REDIS_ADDR")
	cfg.RedisUser = getenv("SCOREBOARD_REDIS_USERNAME", "default")
	cfg.RedisPasswordRequired = mustBool("SCOREBOARD_REDIS_PASSWORD_REQUIRED", true)
	cfg.RedisPassword = getenv("SCOREBOARD_REDIS_PASSWORD", "")
	cfg.RedisDB = getenvInt("SCOREBOARD_REDIS_DB", 0)
	cfg.RedisDT = mustDuration("SCOREBOARD_REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.RedisRT = mustDuration("SCOREBOARD_REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.RedisWT = mustDuration("SCOREBOARD_REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.RedisMaxWait = mustDuration("SCOREBOARD_REDIS_MAX_WAIT", 10*time.Second)
	cfg.RedisPingTimeout = mustDuration("SCOREBOARD_REDIS_PING_TIMEOUT", 5*time.Second)
	cfg.RedisPoolSize = getenvInt("SCOREBOARD_REDIS_POOL_SIZE", 10)
	cfg.RedisConnectTimeout = mustDuration("SCOREBOARD_REDIS_CONNECT_TIMEOUT", 30*time.Second)
	cfg.RedisRetryInterval = mustDuration("SCOREBOARD_REDIS_RETRY_INTERVAL", 2*time.Second)
	cfg.RedisWarnThreshold = getenvInt("SCOREBOARD_REDIS_WARN_THRESHOLD", 3)

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: SCOREBOARD_REDIS_PASSWORD is required when SCOREBOARD_REDIS_PASSWORD_REQUIRED=true")
	}
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	out := *c
	out.AdminToken = "***REDACTED***"
	if out.RedisPassword != "" {
		out.RedisPassword = "***REDACTED***"
	}
	return out
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

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
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

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	return splitAndTrim(allowed)
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
