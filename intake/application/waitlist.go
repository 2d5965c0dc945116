package application

import (
	"context"
	"fmt"
	"strings"

	"form-intake/intake/domain"
	"form-intake/intake/sanitize"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type WaitlistInput struct {
	Email    any `json:"email"`
	Name     any `json:"name"`
	Company  any `json:"company"`
	LinkedIn any `json:"linkedin"`
	Reason   any `json:"reason"`
}

// waitlistForm usa a checagem frouxa de e-mail e não exige nome: nome vazio
// cai na mensagem de tamanho mínimo.
type waitlistForm struct {
	Email   string `json:"email" validate:"loose_email"`
	Name    string `json:"name" validate:"min=2"`
	Company string `json:"company" validate:"required"`
	Reason  string `json:"reason" validate:"min=10"`
}

var waitlistMessages = map[string]string{
	"email.loose_email": "Please enter a valid email address",
	"name.min":          "Name must be at least 2 characters",
	"company.required":  "Company is required",
	"reason.min":        "Please tell us a bit more (at least 10 characters)",
}

// WaitlistService grava a inscrição no store relacional (obrigatório) e
// espelha no store de documentos (opcional).
type WaitlistService struct {
	Repo   domain.WaitlistRepository
	Mirror domain.WaitlistMirror
	Clock  domain.Clock
	Logger *zap.Logger
}

// ValidateWaitlist só apara espaços; a checagem de e-mail aqui é a frouxa
// (sanitize.LooksLikeEmail), diferente da do feedback.
func ValidateWaitlist(in WaitlistInput) (domain.WaitlistEntry, error) {
	email := strings.TrimSpace(asString(in.Email))
	e := domain.WaitlistEntry{
		Email:    sanitize.NormalizeEmail(email),
		Name:     strings.TrimSpace(asString(in.Name)),
		Company:  strings.TrimSpace(asString(in.Company)),
		LinkedIn: strings.TrimSpace(asString(in.LinkedIn)),
		Reason:   strings.TrimSpace(asString(in.Reason)),
	}

	form := waitlistForm{Email: email, Name: e.Name, Company: e.Company, Reason: e.Reason}
	if err := firstInvalid(form, waitlistMessages); err != nil {
		return domain.WaitlistEntry{}, err
	}
	return e, nil
}

// Join valida e dispara as duas gravações ao mesmo tempo, esperando as duas
// terminarem. Só a falha do store relacional falha a chamada.
func (s *WaitlistService) Join(ctx context.Context, in WaitlistInput) error {
	entry, err := ValidateWaitlist(in)
	if err != nil {
		return err
	}

	log := loggerFor(ctx, s.Logger)
	if s.Repo == nil {
		log.Error("waitlist repository is not configured")
		return domain.ErrNotConfigured
	}

	clock := s.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}
	now := clock.Now().UTC()
	entry.CreatedAt, entry.UpdatedAt = now, now

	// cada tarefa guarda o próprio resultado e devolve nil, então Wait espera
	// as duas mesmo que uma falhe
	var repoErr, mirrorErr error
	var g errgroup.Group
	g.Go(func() error {
		repoErr = settle(func() error { return s.Repo.UpsertWaitlist(ctx, entry) })
		return nil
	})
	if s.Mirror != nil {
		g.Go(func() error {
			mirrorErr = settle(func() error { return s.Mirror.MirrorWaitlist(ctx, entry) })
			return nil
		})
	}
	_ = g.Wait()

	if mirrorErr != nil {
		log.Warn("waitlist mirror write failed", zap.Error(mirrorErr))
	}
	if repoErr != nil {
		return fmt.Errorf("upsert waitlist entry: %w", repoErr)
	}

	log.Info("waitlist entry saved", zap.Bool("mirrored", s.Mirror != nil && mirrorErr == nil))
	return nil
}
