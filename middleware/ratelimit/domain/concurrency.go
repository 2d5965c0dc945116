package domain

import "context"

// SlotPool limita o número de requisições em voo no processo.
//
// Acquire bloqueia até haver vaga ou até ctx encerrar. O release devolvido
// libera a vaga; chamadas repetidas não têm efeito.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}
