package ratelimit

import (
	"encoding/json"
	"net/http"
	"time"

	"form-intake/logger"
	"form-intake/middleware/ratelimit/application"
	"form-intake/middleware/ratelimit/domain"
	"form-intake/middleware/ratelimit/infra"

	"go.uber.org/zap"
)

const DefaultBusyMessage = "Service is busy. Please try again shortly."

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	Message        string

	// Pool substitui o semáforo criado a partir de Max.
	Pool   domain.SlotPool
	Logger *zap.Logger
}

// ConcurrencyMiddleware limita as requisições em voo no processo inteiro.
// Sem Pool e com Max <= 0 o middleware é desligado.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	pool := opts.Pool
	if pool == nil {
		if opts.Max <= 0 {
			return func(next http.Handler) http.Handler { return next }
		}
		pool = infra.NewChanPool(opts.Max)
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.Message == "" {
		opts.Message = DefaultBusyMessage
	}

	svc := application.ConcurrencyService{Pool: pool, AcquireTimeout: opts.AcquireTimeout}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				logger.FromContextOr(r.Context(), opts.Logger).Warn("concurrency limit reached",
					zap.String("path", r.URL.Path),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(opts.RejectStatus)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": opts.Message})
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
