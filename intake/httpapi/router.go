package httpapi

import (
	"context"
	"net/http"
	"time"

	"form-intake/middleware/cors"
	"form-intake/middleware/ratelimit"
	rldomain "form-intake/middleware/ratelimit/domain"
	"form-intake/middleware/requestlog"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	NamespaceFeedback      = "feedback"
	NamespaceWaitlistCount = "waitlist-count"
)

// HealthCheck verifica uma dependência para o /healthz.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Handlers *Handlers
	Logger   *zap.Logger
	CORS     cors.Config

	// Counter é compartilhado pelas regras; cada uma usa o próprio namespace.
	Counter             rldomain.Counter
	RateClock           rldomain.Clock
	FeedbackRule        rldomain.Rule
	CountRule           rldomain.Rule
	Stats               rldomain.StatsStore
	AddRateLimitHeaders bool

	Concurrency ratelimit.ConcurrencyOptions

	// Metrics, quando não nil, é servido em GET /metrics.
	Metrics http.Handler
	Health  map[string]HealthCheck
}

// NewRouter monta a cadeia: log/recover -> CORS -> limite de concorrência ->
// rotas. Rotas com método errado respondem 405 antes do rate limit.
func NewRouter(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := d.Handlers
	if h == nil {
		h = NewHandlers(nil, nil, nil, log)
	}

	limit := func(namespace string, rule rldomain.Rule) func(http.Handler) http.Handler {
		return ratelimit.Middleware(ratelimit.Options{
			Namespace:           namespace,
			Counter:             d.Counter,
			Rule:                rule,
			Clock:               d.RateClock,
			Stats:               d.Stats,
			AddRateLimitHeaders: d.AddRateLimitHeaders,
			Logger:              log,
		})
	}

	r := chi.NewRouter()
	r.Use(requestlog.Middleware(log))
	r.Use(cors.Middleware(d.CORS))
	r.Use(ratelimit.ConcurrencyMiddleware(d.Concurrency))

	r.MethodNotAllowed(methodNotAllowed)
	r.NotFound(notFound)

	r.Get("/healthz", healthz(d.Health))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.With(limit(NamespaceFeedback, d.FeedbackRule)).Post("/feedback", h.Feedback)
		r.Post("/waitlist", h.Waitlist)
		r.With(limit(NamespaceWaitlistCount, d.CountRule)).Get("/waitlist-count", h.WaitlistCount)
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthz(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(checks) == 0 {
			writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		res := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				res.Checks[name] = "down"
				res.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			res.Checks[name] = "up"
		}
		writeJSON(w, status, res)
	}
}
