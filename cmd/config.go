package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// RedisAddr empty selects the in-process side-effect dispatcher.
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	SideEffectStream string
	SideEffectGroup  string

	AuthMaxClockSkew      time.Duration
	TrustProxyHeaders     bool
	RateLimitRPS          float64
	RateLimitBurst        int
	TransitionMaxAttempts int
	OutboxRedeliverAfter  time.Duration
	BodyLimit             string
	LogLevel              slog.Level
}

// LoadConfig reads the environment, after merging an optional .env file.
// Variables already set in the environment win over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return ConfigFromLookup(os.LookupEnv)
}

// ConfigFromLookup builds a Config from lookup, applying defaults to unset keys.
func ConfigFromLookup(lookup func(string) (string, bool)) (Config, error) {
	r := envReader{lookup: lookup}

	cfg := Config{
		HTTPPort:   r.str("HTTP_PORT", "8080"),
		DBHost:     r.str("DB_HOST", "localhost"),
		DBPort:     r.str("DB_PORT", "5432"),
		DBUser:     r.str("DB_USER", "postgres"),
		DBPassword: r.str("DB_PASSWORD", ""),
		DBName:     r.str("DB_NAME", "orderhub"),
		DBSslMode:  r.str("DB_SSLMODE", "disable"),

		RedisAddr:        r.str("REDIS_ADDR", ""),
		RedisPassword:    r.str("REDIS_PASSWORD", ""),
		RedisDB:          r.integer("REDIS_DB", 0),
		SideEffectStream: r.str("SIDE_EFFECT_STREAM", "orderhub:transitions"),
		SideEffectGroup:  r.str("SIDE_EFFECT_GROUP", "orderhub-effects"),

		AuthMaxClockSkew:      r.duration("AUTH_MAX_CLOCK_SKEW", 300*time.Second),
		TrustProxyHeaders:     r.boolean("TRUST_PROXY_HEADERS", false),
		RateLimitRPS:          r.float("RATE_LIMIT_RPS", 20),
		RateLimitBurst:        r.integer("RATE_LIMIT_BURST", 40),
		TransitionMaxAttempts: r.integer("TRANSITION_MAX_ATTEMPTS", 3),
		OutboxRedeliverAfter:  r.duration("OUTBOX_REDELIVER_AFTER", 30*time.Second),
		BodyLimit:             r.str("BODY_LIMIT", "1M"),
		LogLevel:              r.level("LOG_LEVEL", slog.LevelInfo),
	}

	if len(r.errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(r.errs, "; "))
	}
	if cfg.TransitionMaxAttempts < 1 {
		return Config{}, fmt.Errorf("invalid configuration: TRANSITION_MAX_ATTEMPTS must be at least 1")
	}
	return cfg, nil
}

// DSN returns the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []string
}

func (r *envReader) raw(key string) (string, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (r *envReader) str(key, def string) string {
	if v, ok := r.raw(key); ok {
		return v
	}
	return def
}

func (r *envReader) integer(key string, def int) int {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (r *envReader) float(key string, def float64) float64 {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s: %q is not a number", key, v))
		return def
	}
	return f
}

func (r *envReader) boolean(key string, def bool) bool {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

// duration accepts Go durations ("90s") or a bare number of seconds.
func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}

func (r *envReader) level(key string, def slog.Level) slog.Level {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s: %q is not a log level", key, v))
		return def
	}
	return level
}
