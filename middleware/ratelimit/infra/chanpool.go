package infra

import (
	"context"
	"sync"
	"sync/atomic"
)

// ChanPool é um semáforo de capacidade fixa sobre um channel.
type ChanPool struct {
	sem      chan struct{}
	inFlight atomic.Int64
}

func NewChanPool(capacity int) *ChanPool {
	return &ChanPool{sem: make(chan struct{}, capacity)}
}

func (p *ChanPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, false
	}

	p.inFlight.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			p.inFlight.Add(-1)
			<-p.sem
		})
	}, true
}

// InFlight é o número de vagas ocupadas agora.
func (p *ChanPool) InFlight() int { return int(p.inFlight.Load()) }

func (p *ChanPool) Cap() int { return cap(p.sem) }
