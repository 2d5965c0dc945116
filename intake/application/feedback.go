package application

import (
	"context"
	"fmt"

	"form-intake/intake/domain"
	"form-intake/intake/sanitize"

	"go.uber.org/zap"
)

const (
	maxNameLength    = 100
	maxEmailLength   = 254
	maxTypeLength    = 50
	maxMessageLength = 5000

	DefaultFeedbackType = "Feedback"
)

// FeedbackInput são os campos crus do corpo JSON. Campos que não forem string
// são tratados como vazios.
type FeedbackInput struct {
	Name    any `json:"name"`
	Email   any `json:"email"`
	Type    any `json:"type"`
	Message any `json:"message"`
}

// feedbackForm é o que se valida depois da sanitização. A ordem dos campos
// é a ordem das checagens.
type feedbackForm struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email_shape"`
	Message string `json:"message" validate:"required,min=10"`
}

var feedbackMessages = map[string]string{
	"name.required":     "Name is required",
	"name.min":          "Name must be at least 2 characters",
	"email.required":    "Email is required",
	"email.email_shape": "Please enter a valid email address",
	"message.required":  "Message is required",
	"message.min":       "Message must be at least 10 characters",
}

type FeedbackService struct {
	Store  domain.FeedbackStore
	Clock  domain.Clock
	Logger *zap.Logger
}

// ValidateFeedback sanitiza os campos e valida na ordem nome, e-mail,
// mensagem. O primeiro erro encontrado é o único devolvido.
func ValidateFeedback(in FeedbackInput) (domain.Feedback, error) {
	f := domain.Feedback{
		Name:    sanitize.Text(in.Name, maxNameLength),
		Email:   sanitize.Text(in.Email, maxEmailLength),
		Type:    sanitize.Text(in.Type, maxTypeLength),
		Message: sanitize.Text(in.Message, maxMessageLength),
	}

	if err := firstInvalid(feedbackForm{Name: f.Name, Email: f.Email, Message: f.Message}, feedbackMessages); err != nil {
		return domain.Feedback{}, err
	}

	if f.Type == "" {
		f.Type = DefaultFeedbackType
	}
	return f, nil
}

// Submit valida e grava o feedback com o horário do servidor e o IP do cliente.
func (s *FeedbackService) Submit(ctx context.Context, in FeedbackInput, clientIP string) error {
	f, err := ValidateFeedback(in)
	if err != nil {
		return err
	}

	log := loggerFor(ctx, s.Logger)
	if s.Store == nil {
		log.Error("feedback store is not configured")
		return domain.ErrNotConfigured
	}

	clock := s.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}
	f.ClientIP = clientIP
	f.SubmittedAt = clock.Now().UTC()

	if err := s.Store.SaveFeedback(ctx, f); err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}

	log.Info("feedback received", zap.String("type", f.Type))
	return nil
}
