package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	Environment   string
	SigningKey    string
	DefaultLocale string
	Redis         RedisConfig
	Session       SessionConfig
	Payment       PaymentConfig
	RateLimit     RateLimitConfig
}

// RedisConfig configures the optional Redis session store. An empty URL keeps
// sessions in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SessionConfig bounds how long a pre-check session lives.
type SessionConfig struct {
	TTL         time.Duration
	ReportDelay time.Duration
}

// PaymentConfig drives the mock checkout.
type PaymentConfig struct {
	SuccessRate float64
	Latency     time.Duration
	Seed        int64
}

// RateLimitConfig caps requests per client IP and minute for each endpoint class.
type RateLimitConfig struct {
	Disabled          bool
	CheckoutPerMinute int
	WritePerMinute    int
	ReadPerMinute     int
}

const devSigningKey = "dev-secret-key-change-in-production"

// IsProduction reports whether the process runs with production settings.
func (s Server) IsProduction() bool { return s.Environment == "production" }

// Load reads .env files (when present) and then the environment.
func Load(files ...string) (Server, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return Server{}, fmt.Errorf("load %s: %w", f, err)
			}
		}
	}
	return FromEnv()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:          getEnv("PRECHECK_ADDR", ":8080"),
		Environment:   getEnv("PRECHECK_ENVIRONMENT", "development"),
		SigningKey:    getEnv("PRECHECK_SIGNING_KEY", devSigningKey),
		DefaultLocale: getEnv("PRECHECK_DEFAULT_LOCALE", "en"),
	}

	var err error
	if cfg.Redis, err = redisFromEnv(); err != nil {
		return Server{}, err
	}
	if cfg.Session.TTL, err = durationEnv("PRECHECK_SESSION_TTL", 2*time.Hour); err != nil {
		return Server{}, err
	}
	if cfg.Session.ReportDelay, err = durationEnv("PRECHECK_REPORT_DELAY", 0); err != nil {
		return Server{}, err
	}
	if cfg.Payment.Latency, err = durationEnv("PRECHECK_PAYMENT_LATENCY", 1500*time.Millisecond); err != nil {
		return Server{}, err
	}
	if cfg.Payment.SuccessRate, err = floatEnv("PRECHECK_PAYMENT_SUCCESS_RATE", 0.9); err != nil {
		return Server{}, err
	}
	if cfg.Payment.SuccessRate < 0 || cfg.Payment.SuccessRate > 1 {
		return Server{}, fmt.Errorf("PRECHECK_PAYMENT_SUCCESS_RATE must be between 0 and 1, got %v", cfg.Payment.SuccessRate)
	}
	seed, err := intEnv("PRECHECK_PAYMENT_SEED", int(time.Now().UnixNano()))
	if err != nil {
		return Server{}, err
	}
	cfg.Payment.Seed = int64(seed)

	if cfg.RateLimit, err = rateLimitFromEnv(); err != nil {
		return Server{}, err
	}

	if cfg.IsProduction() && cfg.SigningKey == devSigningKey {
		return Server{}, fmt.Errorf("PRECHECK_SIGNING_KEY must be set in production")
	}
	return cfg, nil
}

func redisFromEnv() (RedisConfig, error) {
	cfg := RedisConfig{URL: os.Getenv("REDIS_URL")}
	var err error
	if cfg.PoolSize, err = intEnv("REDIS_POOL_SIZE", 10); err != nil {
		return cfg, err
	}
	if cfg.MinIdleConns, err = intEnv("REDIS_MIN_IDLE_CONNS", 2); err != nil {
		return cfg, err
	}
	if cfg.DialTimeout, err = durationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second); err != nil {
		return cfg, err
	}
	if cfg.ReadTimeout, err = durationEnv("REDIS_READ_TIMEOUT", 3*time.Second); err != nil {
		return cfg, err
	}
	if cfg.WriteTimeout, err = durationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func rateLimitFromEnv() (RateLimitConfig, error) {
	cfg := RateLimitConfig{Disabled: os.Getenv("PRECHECK_RATELIMIT_DISABLED") == "true"}
	var err error
	if cfg.CheckoutPerMinute, err = intEnv("PRECHECK_RATELIMIT_CHECKOUT_PER_MINUTE", 10); err != nil {
		return cfg, err
	}
	if cfg.WritePerMinute, err = intEnv("PRECHECK_RATELIMIT_WRITE_PER_MINUTE", 120); err != nil {
		return cfg, err
	}
	if cfg.ReadPerMinute, err = intEnv("PRECHECK_RATELIMIT_READ_PER_MINUTE", 300); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
