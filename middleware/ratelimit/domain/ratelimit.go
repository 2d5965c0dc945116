package domain

// Camada de domínio do rate limit por janela fixa.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

type Key string

// Rule define quantas requisições uma chave pode fazer dentro de uma janela fixa.
type Rule struct {
	MaxRequests int
	Window      time.Duration
}

// Window é o estado de uma chave: quantas requisições já foram contadas
// e quando a janela atual termina.
//
// Uma janela nova (Count=1, ResetAt=now+Window) substitui a anterior
// assim que now > ResetAt.
type Window struct {
	Count   int
	ResetAt time.Time
}

// Counter registra uma requisição para a chave e devolve o estado da janela
// já incrementado.
//
// A implementação pode ser em memória (um processo) ou compartilhada (Redis).
type Counter interface {
	Hit(ctx context.Context, key Key, rule Rule) (Window, error)
}

type Decision struct {
	Allowed bool

	Limit     int
	Remaining int
	ResetAt   time.Time

	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}

// Clock permite controlar o tempo nos testes (expiração de janela, TTL de cache).
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
