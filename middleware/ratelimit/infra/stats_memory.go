package infra

import (
	"context"
	"sync"

	"form-intake/middleware/ratelimit/domain"
)

type Counters struct {
	Allowed int64
	Denied  int64
}

func (c *Counters) add(allowed bool) {
	if allowed {
		c.Allowed++
		return
	}
	c.Denied++
}

// MemoryStatsStore guarda contadores de decisões em memória, por namespace
// (regra) e, opcionalmente, por chave.
//
// Não faz expiração; útil para testes e para o servidor de desenvolvimento.
type MemoryStatsStore struct {
	mu          sync.Mutex
	total       Counters
	byNamespace map[string]Counters
	byKey       map[string]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byNamespace: make(map[string]Counters),
		byKey:       make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Allowed)

	c := s.byNamespace[ev.Namespace]
	c.add(ev.Allowed)
	s.byNamespace[ev.Namespace] = c

	if s.trackKeys {
		k := s.byKey[string(ev.Key)]
		k.add(ev.Allowed)
		s.byKey[string(ev.Key)] = k
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByNamespace() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byNamespace))
	for k, v := range s.byNamespace {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByKey() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}
