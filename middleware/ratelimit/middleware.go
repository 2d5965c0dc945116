package ratelimit

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"form-intake/middleware/ratelimit/application"
	"form-intake/middleware/ratelimit/domain"

	"go.uber.org/zap"
)

const DefaultMessage = "Too many requests. Please try again later."

type KeyFunc func(r *http.Request) string

type Options struct {
	// Namespace separa as janelas de cada regra (ex.: "feedback"), mesmo com
	// o Counter compartilhado entre endpoints.
	Namespace string
	Counter   domain.Counter
	Rule      domain.Rule
	Clock     domain.Clock
	Stats     domain.StatsStore
	KeyFn     KeyFunc
	KeyHeader string

	RejectStatus        int
	Message             string
	AddRateLimitHeaders bool

	Logger *zap.Logger
}

// ClientIP resolve o IP do cliente a partir dos headers do proxy:
// primeiro valor de X-Forwarded-For, depois X-Real-IP, senão "unknown".
//
// Vários clientes podem cair no mesmo valor (proxy compartilhado ou "unknown"),
// então a justiça por usuário é best-effort.
func ClientIP(h http.Header) string {
	if xff := h.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(h.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return "unknown"
}

func DefaultKeyFunc(keyHeader string) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}
		return ClientIP(r.Header)
	}
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.Message == "" {
		opts.Message = DefaultMessage
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	log := opts.Logger.With(zap.String("ratelimit", opts.Namespace))

	svc := application.Service{
		Counter: opts.Counter,
		Rule:    opts.Rule,
		Clock:   opts.Clock,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)
			if opts.Namespace != "" {
				key = opts.Namespace + ":" + key
			}

			dec, err := svc.Decide(r.Context(), domain.Key(key))
			if err != nil {
				log.Warn("rate limit counter failed, allowing request", zap.Error(err))
			}

			if opts.Stats != nil {
				if err := opts.Stats.Record(r.Context(), domain.StatsEvent{
					Namespace: opts.Namespace,
					Key:       domain.Key(key),
					Allowed:   dec.Allowed,
					Method:    r.Method,
					Path:      r.URL.Path,
					At:        time.Now(),
				}); err != nil {
					log.Debug("rate limit stats not recorded", zap.Error(err))
				}
			}

			if opts.AddRateLimitHeaders && dec.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", formatInt(dec.Limit))
				w.Header().Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
				w.Header().Set("X-RateLimit-Reset", formatInt(int(dec.ResetAt.Unix())))
			}

			if !dec.Allowed {
				w.Header().Set("Retry-After", formatInt(int(dec.RetryAfter.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(opts.RejectStatus)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": opts.Message})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
