// Package domain define as entidades dos formulários (feedback e lista de
// espera) e as portas para os stores externos.
//
// Nada aqui conhece HTTP, Notion ou Postgres.
package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured indica que um store obrigatório não tem credenciais.
// O detalhe fica no log; o cliente recebe uma mensagem genérica.
var ErrNotConfigured = errors.New("store not configured")

// ValidationError é um erro de campo do formulário, com mensagem para o usuário.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

type Feedback struct {
	Name        string
	Email       string
	Type        string
	Message     string
	ClientIP    string
	SubmittedAt time.Time
}

// WaitlistEntry é único por Email (já normalizado). Reenvios atualizam
// Name, Company, LinkedIn e Reason e preservam CreatedAt.
type WaitlistEntry struct {
	Email     string
	Name      string
	Company   string
	LinkedIn  string
	Reason    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FeedbackStore grava um feedback no store de documentos.
type FeedbackStore interface {
	SaveFeedback(ctx context.Context, f Feedback) error
}

// WaitlistRepository é o store relacional (obrigatório) da lista de espera.
type WaitlistRepository interface {
	UpsertWaitlist(ctx context.Context, e WaitlistEntry) error
}

// WaitlistMirror é a cópia opcional da lista de espera no store de documentos.
type WaitlistMirror interface {
	MirrorWaitlist(ctx context.Context, e WaitlistEntry) error
}

// Page é uma página da consulta paginada por cursor.
// NextCursor só é válido quando HasMore é true.
type Page struct {
	Count      int
	HasMore    bool
	NextCursor string
}

// WaitlistPager percorre a lista de espera no store de documentos.
// Cursor vazio pede a primeira página.
type WaitlistPager interface {
	WaitlistPage(ctx context.Context, cursor string, pageSize int) (Page, error)
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
