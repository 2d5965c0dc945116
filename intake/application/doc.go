// Package application contém os casos de uso dos formulários: enviar feedback,
// entrar na lista de espera e contar inscritos.
//
// Não conhece HTTP; recebe os campos crus do corpo JSON e devolve erros
// tipados (domain.ValidationError, domain.ErrNotConfigured) para o handler
// traduzir em status.
package application

import (
	"context"
	"fmt"

	"form-intake/logger"

	"go.uber.org/zap"
)

func loggerFor(ctx context.Context, base *zap.Logger) *zap.Logger {
	return logger.FromContextOr(ctx, base)
}

// asString devolve v se for string; qualquer outro tipo JSON vira "".
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// settle roda fn e devolve o erro dela, convertendo panic em erro: uma
// goroutine do errgroup não pode derrubar o processo.
func settle(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn()
}
