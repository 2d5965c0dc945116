// Servidor local: mesmas rotas do intake, com stores em memória e origens
// de desenvolvimento liberadas no CORS. Não precisa de credenciais.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"form-intake/config"
	"form-intake/intake/application"
	"form-intake/intake/httpapi"
	"form-intake/intake/infra/memory"
	"form-intake/logger"
	"form-intake/middleware/cors"
	"form-intake/middleware/ratelimit"
	rldomain "form-intake/middleware/ratelimit/domain"
	rlinfra "form-intake/middleware/ratelimit/infra"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "devserver: %v\n", err)
		os.Exit(1)
	}
	addr := cfg.ListenAddr
	if os.Getenv("LISTEN_ADDR") == "" {
		addr = ":8081"
	}

	log := logger.New(logger.ForEnvironment("development", "debug"))
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	counter := rlinfra.NewMemoryCounter(
		rlinfra.WithIdleTTL(cfg.RateLimit.Window),
		rlinfra.WithCleanupEvery(time.Minute),
	)
	counter.StartJanitor(ctx)

	stats := rlinfra.NewMemoryStatsStore(rlinfra.WithTrackKeys(true))
	docs := memory.NewDocumentStore()
	repo := memory.NewWaitlistRepository()

	router := httpapi.NewRouter(httpapi.Deps{
		Handlers: httpapi.NewHandlers(
			&application.FeedbackService{Store: docs, Logger: log},
			&application.WaitlistService{Repo: repo, Mirror: docs, Logger: log},
			&application.CountService{Pager: docs, TTL: cfg.CountCacheTTL, Logger: log},
			log,
		),
		Logger:              log,
		CORS:                cors.DefaultConfig(cors.Origins(false, cfg.CORSAllowOrigins)),
		Counter:             counter,
		FeedbackRule:        rldomain.Rule{MaxRequests: cfg.RateLimit.FeedbackLimit, Window: cfg.RateLimit.Window},
		CountRule:           rldomain.Rule{MaxRequests: cfg.RateLimit.CountLimit, Window: cfg.RateLimit.Window},
		Stats:               stats,
		AddRateLimitHeaders: true,
		Concurrency:         ratelimit.ConcurrencyOptions{Max: 50},
	})

	mux := http.NewServeMux()
	mux.Handle("/", router)
	// inspeção do estado em memória
	mux.HandleFunc("GET /debug/state", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{
			"feedback":         docs.Feedback(),
			"waitlist":         repo.Entries(),
			"waitlist_mirror":  len(docs.Waitlist()),
			"ratelimit_keys":   counter.Len(),
			"ratelimit_total":  stats.Total(),
			"ratelimit_by_ns":  stats.ByNamespace(),
			"ratelimit_by_key": stats.ByKey(),
		})
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("devserver listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server error", zap.Error(err))
	}
}
