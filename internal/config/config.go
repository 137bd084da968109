package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	AuthMode            string
	OIDCIssuerURL       string
	OIDCAudience        string
	OIDCJWKSURL         string
	OIDCClockSkewSecs   int
	JWKSCacheTTLSeconds int
	JWKSMaxStaleSeconds int
	HS256Secret         string

	PlatformAdminEmails []string

	ConfigCacheTTLSeconds int
	ModuleGateFailOpen    bool
	LimitCheckFailOpen    bool

	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitMaxKeys       int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:               addr,
		PostgresDSN:            os.Getenv("POSTGRES_DSN"),
		LogLevel:               envDefault("LOG_LEVEL", "info"),
		AuthMode:               envDefault("AUTH_MODE", "oidc"),
		OIDCIssuerURL:          os.Getenv("OIDC_ISSUER_URL"),
		OIDCAudience:           os.Getenv("OIDC_AUDIENCE"),
		OIDCJWKSURL:            os.Getenv("OIDC_JWKS_URL"),
		OIDCClockSkewSecs:      envIntDefault("OIDC_CLOCK_SKEW_SECONDS", 60),
		JWKSCacheTTLSeconds:    envIntDefault("JWKS_CACHE_TTL_SECONDS", 300),
		JWKSMaxStaleSeconds:    envIntDefault("JWKS_MAX_STALE_SECONDS", 900),
		HS256Secret:            os.Getenv("HS256_SECRET"),
		PlatformAdminEmails:    envCSV("PLATFORM_ADMIN_EMAILS"),
		ConfigCacheTTLSeconds:  envIntDefault("CONFIG_CACHE_TTL_SECONDS", 30),
		ModuleGateFailOpen:     envBoolDefault("MODULE_GATE_FAIL_OPEN", true),
		LimitCheckFailOpen:     envBoolDefault("LIMIT_CHECK_FAIL_OPEN", true),
		RateLimitRequests:      envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds: envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitMaxKeys:       envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                envIntDefault("REDIS_DB", 0),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}

// envCSV splits a comma-separated list, trimming whitespace and lowercasing
// entries so email comparisons stay case-insensitive.
func envCSV(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) ConfigCacheTTL() time.Duration {
	if c.ConfigCacheTTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.ConfigCacheTTLSeconds) * time.Second
}

func (c Config) JWKSCacheTTL() time.Duration {
	if c.JWKSCacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.JWKSCacheTTLSeconds) * time.Second
}

func (c Config) JWKSMaxStale() time.Duration {
	if c.JWKSMaxStaleSeconds <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.JWKSMaxStaleSeconds) * time.Second
}

func (c Config) RateLimitWindow() time.Duration {
	if c.RateLimitWindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}
