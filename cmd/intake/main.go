package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"form-intake/config"
	"form-intake/intake/application"
	"form-intake/intake/domain"
	"form-intake/intake/httpapi"
	"form-intake/intake/infra/notion"
	"form-intake/intake/infra/postgres"
	"form-intake/logger"
	"form-intake/middleware/cors"
	"form-intake/middleware/ratelimit"
	rldomain "form-intake/middleware/ratelimit/domain"
	rlinfra "form-intake/middleware/ratelimit/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "intake: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	env := cfg.AppEnv
	if cfg.Production() {
		env = "production"
	}
	logCfg := logger.ForEnvironment(env, cfg.LogLevel)
	if cfg.LogFormat != "" {
		logCfg.Format = cfg.LogFormat
	}
	log := logger.New(logCfg)
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	health := map[string]httpapi.HealthCheck{}

	// Redis: contador compartilhado entre instâncias e/ou estatísticas
	var rdb *redis.Client
	if cfg.NeedsRedis() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancelPing()
		if err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		health["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var counter rldomain.Counter
	switch cfg.RateLimit.Backend {
	case config.BackendRedis:
		counter = rlinfra.NewRedisCounter(rdb)
	default:
		mem := rlinfra.NewMemoryCounter(
			rlinfra.WithIdleTTL(cfg.RateLimit.Window),
			rlinfra.WithCleanupEvery(cfg.RateLimit.CleanupEvery),
		)
		mem.StartJanitor(ctx)
		counter = mem
	}

	var stats rlinfra.MultiStats
	if cfg.RateLimit.StatsEnabled {
		stats = append(stats, rlinfra.NewRedisStatsStore(rdb,
			rlinfra.WithStatsTTL(cfg.RateLimit.StatsTTL),
			rlinfra.WithStatsBucket(cfg.RateLimit.StatsBucket),
			rlinfra.WithStatsTrackKeys(cfg.RateLimit.StatsTrackKeys),
		))
	}

	var metrics http.Handler
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		promStats, err := rlinfra.NewPrometheusStatsStore(reg)
		if err != nil {
			return fmt.Errorf("register rate limit metrics: %w", err)
		}
		stats = append(stats, promStats)
		metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer func() { _ = st.db.Close() }()
		health["postgres"] = st.db.PingContext
	}

	handlers := httpapi.NewHandlers(
		&application.FeedbackService{Store: st.feedback, Logger: log},
		&application.WaitlistService{Repo: st.repo, Mirror: st.mirror, Logger: log},
		&application.CountService{Pager: st.pager, TTL: cfg.CountCacheTTL, Logger: log},
		log,
	)

	deps := httpapi.Deps{
		Handlers:            handlers,
		Logger:              log,
		CORS:                cors.DefaultConfig(cors.Origins(cfg.Production(), cfg.CORSAllowOrigins)),
		Counter:             counter,
		FeedbackRule:        rldomain.Rule{MaxRequests: cfg.RateLimit.FeedbackLimit, Window: cfg.RateLimit.Window},
		CountRule:           rldomain.Rule{MaxRequests: cfg.RateLimit.CountLimit, Window: cfg.RateLimit.Window},
		AddRateLimitHeaders: cfg.RateLimit.AddHeaders,
		Concurrency: ratelimit.ConcurrencyOptions{
			Max:            cfg.ConcurrencyMax,
			AcquireTimeout: cfg.ConcurrencyTimeout,
		},
		Metrics: metrics,
		Health:  health,
	}
	if len(stats) > 0 {
		deps.Stats = stats
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httpapi.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
	}()

	log.Info("intake listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("env", cfg.AppEnv),
		zap.String("rate_limit_backend", cfg.RateLimit.Backend),
		zap.Int("feedback_limit", cfg.RateLimit.FeedbackLimit),
		zap.Int("count_limit", cfg.RateLimit.CountLimit),
		zap.Duration("window", cfg.RateLimit.Window),
		zap.Int("concurrency_max", cfg.ConcurrencyMax),
		zap.Bool("feedback_store", st.feedback != nil),
		zap.Bool("waitlist_repository", st.repo != nil),
		zap.Bool("waitlist_mirror", st.mirror != nil),
		zap.Bool("metrics", cfg.MetricsEnabled),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	log.Info("intake stopped")
	return nil
}

type stores struct {
	db       *sql.DB
	feedback domain.FeedbackStore
	repo     domain.WaitlistRepository
	mirror   domain.WaitlistMirror
	pager    domain.WaitlistPager
}

// openStores conecta o que estiver configurado. Credencial ausente não é
// fatal: o endpoint correspondente responde "não configurado".
func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (stores, error) {
	var s stores

	if cfg.Notion.APIKey != "" {
		client := notion.New(cfg.Notion.APIKey,
			notion.WithBaseURL(cfg.Notion.BaseURL),
			notion.WithTimeout(cfg.Notion.Timeout),
			notion.WithRateLimit(cfg.Notion.RPS, max(1, int(cfg.Notion.RPS))),
		)
		if cfg.Notion.FeedbackConfigured() {
			s.feedback = notion.NewFeedbackStore(client, cfg.Notion.FeedbackDatabaseID)
		}
		if cfg.Notion.WaitlistConfigured() {
			ws := notion.NewWaitlistStore(client, cfg.Notion.WaitlistDatabaseID)
			s.mirror, s.pager = ws, ws
		}
	}
	if s.feedback == nil {
		log.Warn("notion feedback database not configured")
	}
	if s.pager == nil {
		log.Warn("notion waitlist database not configured")
	}

	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL not set, waitlist signups will fail")
		return s, nil
	}

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return stores{}, err
	}
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db, log); err != nil {
			_ = db.Close()
			return stores{}, err
		}
	}
	s.db = db
	s.repo = postgres.NewWaitlistRepository(db)
	return s, nil
}
