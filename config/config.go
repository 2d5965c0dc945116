// Package config lê a configuração do processo a partir de variáveis de
// ambiente, com um .env opcional carregado antes.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	ListenAddr       string        `env:"LISTEN_ADDR" envDefault:":8080"`
	AppEnv           string        `env:"APP_ENV" envDefault:"development"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT"`
	CORSAllowOrigins []string      `env:"CORS_ALLOW_ORIGINS" envSeparator:","`
	MetricsEnabled   bool          `env:"METRICS_ENABLED" envDefault:"false"`
	CountCacheTTL    time.Duration `env:"COUNT_CACHE_TTL" envDefault:"60s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	ConcurrencyMax     int           `env:"CONCURRENCY_MAX" envDefault:"100"`
	ConcurrencyTimeout time.Duration `env:"CONCURRENCY_TIMEOUT" envDefault:"0s"`

	Notion    NotionConfig
	Database  DatabaseConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
}

type NotionConfig struct {
	APIKey             string        `env:"NOTION_API_KEY"`
	FeedbackDatabaseID string        `env:"NOTION_FEEDBACK_DATABASE_ID"`
	WaitlistDatabaseID string        `env:"NOTION_WAITLIST_DATABASE_ID"`
	BaseURL            string        `env:"NOTION_BASE_URL" envDefault:"https://api.notion.com"`
	RPS                float64       `env:"NOTION_RPS" envDefault:"3"`
	Timeout            time.Duration `env:"NOTION_TIMEOUT" envDefault:"10s"`
}

// FeedbackConfigured informa se há credencial e database para feedback.
func (n NotionConfig) FeedbackConfigured() bool {
	return n.APIKey != "" && n.FeedbackDatabaseID != ""
}

func (n NotionConfig) WaitlistConfigured() bool {
	return n.APIKey != "" && n.WaitlistDatabaseID != ""
}

type DatabaseConfig struct {
	URL         string `env:"DATABASE_URL"`
	AutoMigrate bool   `env:"DATABASE_AUTO_MIGRATE" envDefault:"true"`
}

type RateLimitConfig struct {
	Backend       string        `env:"RATE_LIMIT_BACKEND" envDefault:"memory"`
	FeedbackLimit int           `env:"FEEDBACK_RATE_LIMIT" envDefault:"5"`
	CountLimit    int           `env:"COUNT_RATE_LIMIT" envDefault:"30"`
	Window        time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`
	// 0 desliga a limpeza periódica do contador em memória
	CleanupEvery time.Duration `env:"RATE_LIMIT_CLEANUP_EVERY" envDefault:"0s"`
	AddHeaders   bool          `env:"RATE_LIMIT_HEADERS" envDefault:"false"`
	StatsEnabled bool          `env:"RATE_STATS_ENABLED" envDefault:"false"`
	StatsTTL     time.Duration `env:"RATE_STATS_TTL" envDefault:"24h"`
	// "minute" guarda um hash por minuto; "none" só os totais
	StatsBucket    string `env:"RATE_STATS_BUCKET" envDefault:"minute"`
	StatsTrackKeys bool   `env:"RATE_STATS_TRACK_KEYS" envDefault:"false"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

func (c Config) Production() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// NeedsRedis indica se algum componente configurado usa o Redis.
func (c Config) NeedsRedis() bool {
	return c.RateLimit.Backend == BackendRedis || c.RateLimit.StatsEnabled
}

func (c Config) Validate() error {
	switch c.RateLimit.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("RATE_LIMIT_BACKEND must be %q or %q, got %q", BackendMemory, BackendRedis, c.RateLimit.Backend)
	}
	if c.NeedsRedis() && strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("REDIS_ADDR is required when RATE_LIMIT_BACKEND=redis or RATE_STATS_ENABLED=true")
	}
	switch strings.ToLower(strings.TrimSpace(c.RateLimit.StatsBucket)) {
	case "minute", "none":
	default:
		return fmt.Errorf("RATE_STATS_BUCKET must be \"minute\" or \"none\", got %q", c.RateLimit.StatsBucket)
	}
	if c.RateLimit.Window <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be > 0")
	}
	if c.RateLimit.FeedbackLimit < 0 || c.RateLimit.CountLimit < 0 {
		return errors.New("rate limits must be >= 0")
	}
	if c.ConcurrencyMax < 0 {
		return errors.New("CONCURRENCY_MAX must be >= 0")
	}
	// em produção não há origens de desenvolvimento; sem lista o CORS bloquearia tudo
	if c.Production() && !hasOrigin(c.CORSAllowOrigins) {
		return errors.New("CORS_ALLOW_ORIGINS is required when APP_ENV=production")
	}
	return nil
}

func hasOrigin(origins []string) bool {
	for _, o := range origins {
		if strings.TrimSpace(o) != "" {
			return true
		}
	}
	return false
}

// Load carrega os arquivos .env informados (ou ./.env), sem sobrescrever
// variáveis já definidas, e então lê o ambiente.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return parse(env.Options{})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
