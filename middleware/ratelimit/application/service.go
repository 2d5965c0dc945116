package application

import (
	"context"
	"time"

	"form-intake/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do rate limit por janela fixa.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Counter domain.Counter
	Rule    domain.Rule
	Clock   domain.Clock
}

// Decide conta a requisição da chave e decide se ela passa.
//
// A requisição é bloqueada quando a contagem já incrementada passa de
// Rule.MaxRequests. Com janela fixa, rajadas na virada da janela podem
// admitir até 2x MaxRequests em pouco tempo.
//
// Se o contador falhar, a decisão é liberar (fail-open) e o erro é devolvido
// para quem chamou registrar.
func (s Service) Decide(ctx context.Context, key domain.Key) (domain.Decision, error) {
	if s.Counter == nil || s.Rule.MaxRequests <= 0 {
		return domain.Decision{Allowed: true}, nil
	}
	clock := s.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}

	win, err := s.Counter.Hit(ctx, key, s.Rule)
	if err != nil {
		return domain.Decision{Allowed: true, Limit: s.Rule.MaxRequests}, err
	}

	dec := domain.Decision{
		Allowed:   win.Count <= s.Rule.MaxRequests,
		Limit:     s.Rule.MaxRequests,
		Remaining: s.Rule.MaxRequests - win.Count,
		ResetAt:   win.ResetAt,
	}
	if dec.Remaining < 0 {
		dec.Remaining = 0
	}
	if !dec.Allowed {
		dec.RetryAfter = win.ResetAt.Sub(clock.Now())
		if dec.RetryAfter < time.Second {
			dec.RetryAfter = time.Second
		}
	}
	return dec, nil
}
