package domain

import (
	"context"
	"time"
)

// StatsEvent representa uma decisão do rate limit para uma rota.
//
// Namespace identifica a regra (ex.: "feedback", "waitlist-count"), já que
// cada endpoint tem seu próprio limite.
//
// Observação: cuidado com cardinalidade de Key (IP do cliente). Só guarde por
// chave quando isso for explicitamente habilitado.
type StatsEvent struct {
	Namespace string
	Key       Key
	Allowed   bool

	Method string
	Path   string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas do rate limit
// (memória, Redis, Prometheus).
//
// O middleware trata erro como best-effort: nunca derruba a request.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
