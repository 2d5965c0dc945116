package infra

import (
	"context"

	"form-intake/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStatsStore expõe as decisões do rate limit como o contador
// intake_ratelimit_decisions_total{namespace, decision}.
//
// A chave (IP) nunca vira label, para não explodir a cardinalidade.
type PrometheusStatsStore struct {
	decisions *prometheus.CounterVec
}

func NewPrometheusStatsStore(reg prometheus.Registerer) (*PrometheusStatsStore, error) {
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "intake",
		Subsystem: "ratelimit",
		Name:      "decisions_total",
		Help:      "Rate limit decisions by rule namespace and outcome.",
	}, []string{"namespace", "decision"})

	if err := reg.Register(decisions); err != nil {
		return nil, err
	}
	return &PrometheusStatsStore{decisions: decisions}, nil
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	decision := "denied"
	if ev.Allowed {
		decision = "allowed"
	}
	s.decisions.WithLabelValues(ev.Namespace, decision).Inc()
	return nil
}

// MultiStats repassa cada evento para todos os stores, devolvendo o primeiro erro.
type MultiStats []domain.StatsStore

func (m MultiStats) Record(ctx context.Context, ev domain.StatsEvent) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
