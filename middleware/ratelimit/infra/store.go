package infra

import (
	"context"
	"sync"
	"time"

	"form-intake/middleware/ratelimit/domain"
)

// MemoryCounter é o contador de janela fixa em memória, compartilhado por
// todos os endpoints do processo.
//
// O estado vive enquanto o processo viver (some em restart/cold start).
// Sem janitor, o mapa cresce com cada IP distinto; StartJanitor remove
// janelas já vencidas.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]*domain.Window
	clock   domain.Clock

	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type MemoryCounterOption func(*MemoryCounter)

func WithClock(c domain.Clock) MemoryCounterOption {
	return func(s *MemoryCounter) { s.clock = c }
}

// WithIdleTTL define quanto tempo uma janela vencida ainda fica no mapa antes
// de ser removida pelo Cleanup.
func WithIdleTTL(d time.Duration) MemoryCounterOption {
	return func(s *MemoryCounter) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) MemoryCounterOption {
	return func(s *MemoryCounter) { s.cleanupEvery = d }
}

func NewMemoryCounter(opts ...MemoryCounterOption) *MemoryCounter {
	s := &MemoryCounter{
		entries: make(map[string]*domain.Window),
		clock:   domain.SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryCounter) CleanupEvery() time.Duration { return s.cleanupEvery }

// Hit implementa domain.Counter.
func (s *MemoryCounter) Hit(_ context.Context, key domain.Key, rule domain.Rule) (domain.Window, error) {
	return s.hit(string(key), rule.Window), nil
}

// IsRateLimited conta uma requisição para key e informa se ela passou de
// maxRequests dentro da janela atual.
func (s *MemoryCounter) IsRateLimited(key string, maxRequests int, window time.Duration) bool {
	return s.hit(key, window).Count > maxRequests
}

func (s *MemoryCounter) hit(key string, window time.Duration) domain.Window {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || now.After(ent.ResetAt) {
		ent = &domain.Window{Count: 1, ResetAt: now.Add(window)}
		s.entries[key] = ent
		return *ent
	}

	ent.Count++
	return *ent
}

// Len retorna quantas chaves estão no mapa.
func (s *MemoryCounter) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup remove janelas que terminaram há mais de idleTTL.
func (s *MemoryCounter) Cleanup() {
	cutoff := s.clock.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.ResetAt.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa janelas vencidas periodicamente.
// Pare cancelando o contexto.
func (s *MemoryCounter) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context no janitor.
type DoneContext interface {
	Done() <-chan struct{}
}
