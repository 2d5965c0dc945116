package application

import (
	"context"
	"time"

	"form-intake/middleware/ratelimit/domain"
)

// ConcurrencyService aplica o timeout de espera por vaga sobre um SlotPool.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire devolve (release, ok). Sem Pool sempre libera; com AcquireTimeout
// <= 0 espera enquanto o ctx da requisição viver.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), bool) {
	if s.Pool == nil {
		return func() {}, true
	}
	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}
	return s.Pool.Acquire(ctx)
}
